package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, doc *Document, section, key string) string {
	t.Helper()
	sec, ok := doc.Section(section)
	require.True(t, ok, "section %q missing", section)
	v, ok := sec.Get(key)
	require.True(t, ok, "key %q missing in %q", key, section)
	return v
}

func TestClassify(t *testing.T) {
	tests := []struct {
		line    string
		kind    tokenKind
		keyLike bool
	}{
		{"", tokenBlank, false},
		{"   \t", tokenBlank, false},
		{"Painel_Logistica:", tokenSection, true},
		{"  title: \"Painel\"", tokenScalar, true},
		{"  description: >", tokenFoldOpen, true},
		{"  imagem: logistica.png", tokenScalar, true},
		{"Linha um", tokenText, false},
		{"veja em http://x.com", tokenScalar, false},
		{"\tNested:", tokenScalar, true},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			tok := classify(tt.line)
			assert.Equal(t, tt.kind, tok.kind)
			assert.Equal(t, tt.keyLike, tok.keyLike)
		})
	}
}

func TestParse_QuotedScalars(t *testing.T) {
	doc := Parse("A:\n  title: \"Hello: world\"\n  empty: \"\"\n  bare: plain value\n  half: \"open\n")

	assert.Equal(t, "Hello: world", get(t, doc, "A", "title"))
	assert.Equal(t, "", get(t, doc, "A", "empty"))
	assert.Equal(t, "plain value", get(t, doc, "A", "bare"))
	assert.Equal(t, `"open`, get(t, doc, "A", "half"))

	v, _ := doc.sections["A"].Value("title")
	assert.False(t, v.Folded)
}

func TestParse_FoldAccumulation(t *testing.T) {
	doc := Parse("A:\n  description: >\n    first line\n  second line  \nthird line\n")

	v, ok := doc.sections["A"].Value("description")
	require.True(t, ok)
	assert.Equal(t, "first line second line third line", v.Text)
	assert.True(t, v.Folded)
}

func TestParse_FoldTermination(t *testing.T) {
	text := "A:\n" +
		"  description: >\n" +
		"    some text\n" +
		"  note: done\n" +
		"B:\n" +
		"  other: >\n" +
		"    more\n" +
		"C:\n" +
		"  x: \"1\"\n"
	doc := Parse(text)

	assert.Equal(t, "some text", get(t, doc, "A", "description"))
	assert.Equal(t, "done", get(t, doc, "A", "note"))
	assert.Equal(t, "more", get(t, doc, "B", "other"))
	assert.Equal(t, "1", get(t, doc, "C", "x"))
	assert.Equal(t, []string{"A", "B", "C"}, doc.Names())
}

func TestParse_FoldEndsOnKeyLookingProse(t *testing.T) {
	doc := Parse("A:\n  description: >\n    the plan\n    Note: keep it short\n")

	assert.Equal(t, "the plan", get(t, doc, "A", "description"))
	assert.Equal(t, "keep it short", get(t, doc, "A", "Note"))
}

func TestParse_FoldKeepsProseWithSpacedColon(t *testing.T) {
	doc := Parse("A:\n  description: >\n    see the docs at http://x.com\n    Final note: fine\n")

	assert.Equal(t, "see the docs at http://x.com Final note: fine", get(t, doc, "A", "description"))
}

func TestParse_EmptyFoldStoresNothing(t *testing.T) {
	doc := Parse("A:\n  description: >\n  title: \"T\"\n")

	sec, _ := doc.Section("A")
	_, ok := sec.Get("description")
	assert.False(t, ok)
	assert.Equal(t, "T", get(t, doc, "A", "title"))
}

func TestParse_LastWriteWins(t *testing.T) {
	doc := Parse("A:\n  title: first\n  other: x\n  title: \"second\"\n")

	assert.Equal(t, "second", get(t, doc, "A", "title"))
	sec, _ := doc.Section("A")
	assert.Equal(t, []string{"title", "other"}, sec.Keys())
}

func TestParse_DuplicateSectionReplaces(t *testing.T) {
	doc := Parse("A:\n  title: one\n  old: x\nB:\n  k: v\nA:\n  title: two\n")

	assert.Equal(t, "two", get(t, doc, "A", "title"))
	sec, _ := doc.Section("A")
	_, ok := sec.Get("old")
	assert.False(t, ok)
	assert.Equal(t, []string{"A", "B"}, doc.Names())
}

func TestParse_BareKeyDropsFollowingText(t *testing.T) {
	doc := Parse("A:\n  description:\n    dropped line\n  title: kept\n")

	sec, _ := doc.Section("A")
	_, ok := sec.Get("description")
	assert.False(t, ok)
	assert.Equal(t, "kept", get(t, doc, "A", "title"))
	assert.Equal(t, 1, sec.Len())
}

func TestParse_EntriesBeforeFirstSectionAreDiscarded(t *testing.T) {
	doc := Parse("  orphan: value\n  story: >\n    lost text\nA:\n  k: v\n")

	assert.Equal(t, []string{"A"}, doc.Names())
	sec, _ := doc.Section("A")
	assert.Equal(t, []string{"k"}, sec.Keys())
}

func TestParse_IndentedHeaderIsAKey(t *testing.T) {
	doc := Parse("A:\n  Inner:\n  k: v\n")

	assert.Equal(t, []string{"A"}, doc.Names())
	assert.Equal(t, "v", get(t, doc, "A", "k"))
}

func TestParse_CRLFAndBlankLines(t *testing.T) {
	doc := Parse("A:\r\n\r\n  title: \"T\"\r\n  description: >\r\n    one\r\n\r\n    two\r\n")

	assert.Equal(t, "T", get(t, doc, "A", "title"))
	assert.Equal(t, "one two", get(t, doc, "A", "description"))
}

func TestParse_Empty(t *testing.T) {
	doc := Parse("")
	assert.Equal(t, 0, doc.Len())
	assert.Empty(t, doc.Names())

	_, ok := doc.Section("anything")
	assert.False(t, ok)
}

func TestParse_UnclassifiableLinesIgnored(t *testing.T) {
	doc := Parse("just prose\nA:\n  - list item\n  k: v\n")

	assert.Equal(t, []string{"A"}, doc.Names())
	sec, _ := doc.Section("A")
	assert.Equal(t, []string{"k"}, sec.Keys())
}

func TestParse_EachCallBuildsFreshDocument(t *testing.T) {
	text := "A:\n  k: v\n"
	first := Parse(text)
	second := Parse(text)

	assert.NotSame(t, first, second)
	assert.Equal(t, first.Names(), second.Names())
}
