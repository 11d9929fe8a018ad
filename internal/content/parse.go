package content

import (
	"regexp"
	"strings"
)

// keyPattern marks a line that starts a new key or section. Any such line
// ends an open fold, even when the author meant it as prose.
var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_]+:`)

const foldMarker = ">"

type tokenKind int

const (
	tokenBlank tokenKind = iota
	tokenSection
	tokenScalar
	tokenFoldOpen
	tokenText
)

func (k tokenKind) String() string {
	switch k {
	case tokenBlank:
		return "blank"
	case tokenSection:
		return "section"
	case tokenScalar:
		return "scalar"
	case tokenFoldOpen:
		return "fold-open"
	default:
		return "text"
	}
}

// token is one classified input line. keyLike is kept separately from kind
// because a fold ends on any key-looking line, whatever its kind.
type token struct {
	kind    tokenKind
	text    string
	keyLike bool
	name    string
	key     string
	value   string
	quoted  bool
}

func classify(raw string) token {
	text := strings.TrimSpace(raw)
	tok := token{text: text, keyLike: keyPattern.MatchString(text)}

	switch {
	case text == "":
		tok.kind = tokenBlank
	case !hasLeadingSpace(raw) && strings.HasSuffix(text, ":"):
		tok.kind = tokenSection
		tok.name = text[:len(text)-1]
	case strings.Contains(text, ":"):
		i := strings.Index(text, ":")
		tok.key = strings.TrimSpace(text[:i])
		tok.value = strings.TrimSpace(text[i+1:])
		switch {
		case isQuoted(tok.value):
			tok.kind = tokenScalar
			tok.value = tok.value[1 : len(tok.value)-1]
			tok.quoted = true
		case tok.value == foldMarker:
			tok.kind = tokenFoldOpen
		default:
			tok.kind = tokenScalar
		}
	default:
		tok.kind = tokenText
	}
	return tok
}

func hasLeadingSpace(raw string) bool {
	return raw != "" && (raw[0] == ' ' || raw[0] == '\t')
}

func isQuoted(v string) bool {
	return len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"'
}

type state int

const (
	stateIdle state = iota
	stateInSection
	stateFoldOpen
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "Idle"
	case stateInSection:
		return "InSection"
	default:
		return "FoldOpen"
	}
}

type builder struct {
	state   state
	doc     *Document
	section *Section // nil until the first section header
	foldKey string
	fold    strings.Builder
}

// Parse builds a Document from the restricted two-level format used by the
// content file. It never fails: lines that fit no rule are dropped.
func Parse(text string) *Document {
	b := &builder{doc: newDocument()}
	for _, line := range strings.Split(text, "\n") {
		b.step(classify(line))
	}
	b.flush()
	return b.doc
}

func (b *builder) step(tok token) {
	if tok.kind == tokenBlank {
		return
	}

	if b.state == stateFoldOpen {
		if !tok.keyLike {
			b.appendFold(tok.text)
			return
		}
		b.closeFold()
	}

	switch tok.kind {
	case tokenSection:
		b.flush()
		b.section = newSection(tok.name)
		b.state = stateInSection
	case tokenScalar:
		if tok.value == "" && !tok.quoted {
			// A bare `key:` is not a fold opener. The key stays pending with
			// nothing stored and the text lines after it are dropped.
			return
		}
		b.store(tok.key, Value{Text: tok.value})
	case tokenFoldOpen:
		b.foldKey = tok.key
		b.fold.Reset()
		b.state = stateFoldOpen
	}
}

func (b *builder) appendFold(line string) {
	if b.fold.Len() > 0 {
		b.fold.WriteByte(' ')
	}
	b.fold.WriteString(line)
	b.store(b.foldKey, Value{Text: b.fold.String(), Folded: true})
}

func (b *builder) closeFold() {
	b.foldKey = ""
	b.fold.Reset()
	if b.section != nil {
		b.state = stateInSection
	} else {
		b.state = stateIdle
	}
}

// store writes into the open section. Entries seen before any section header
// have nowhere to go and are discarded.
func (b *builder) store(key string, v Value) {
	if b.section != nil {
		b.section.set(key, v)
	}
}

func (b *builder) flush() {
	if b.section != nil {
		b.doc.put(b.section)
	}
}
