// Package assets maps image paths written on an authoring machine to the URLs
// the server actually serves them at.
package assets

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"
)

// ImagePattern selects the files bundled into the table.
const ImagePattern = "**/*.{png,PNG,jpg,JPG,jpeg,JPEG,gif,GIF,svg,SVG,webp,WEBP,avif,ico}"

// FallbackPrefix is where unmatched filenames are guessed to live.
const FallbackPrefix = "/images/"

// Table maps each bundled image's source path to its served URL. It is
// immutable once built.
type Table struct {
	keys  []string
	urls  map[string]string
	files map[string]string
	fsys  fs.FS
}

// NewTable builds a table from source path to served URL pairs.
func NewTable(entries map[string]string) *Table {
	t := &Table{urls: make(map[string]string, len(entries)), files: map[string]string{}}
	for k, v := range entries {
		t.urls[k] = v
		t.keys = append(t.keys, k)
	}
	sort.Strings(t.keys)
	return t
}

// Scan walks dir inside fsys and registers every image under a fingerprinted
// URL below prefix: images/sub/foo.png becomes <prefix>/sub/foo-1a2b3c4d.png.
func Scan(fsys fs.FS, dir, prefix string) (*Table, error) {
	t := &Table{urls: map[string]string{}, files: map[string]string{}, fsys: fsys}
	prefix = strings.TrimSuffix(prefix, "/")
	dir = path.Clean(dir)

	pattern := path.Join(dir, ImagePattern)
	err := doublestar.GlobWalk(fsys, pattern, func(p string, d fs.DirEntry) error {
		if d.IsDir() {
			return nil
		}
		sum, err := fingerprint(fsys, p)
		if err != nil {
			return err
		}
		rel := p
		if dir != "." {
			rel = strings.TrimPrefix(p, dir+"/")
		}
		served := hashedName(rel, sum)

		// Keys always carry a directory so filename suffix matching works.
		key := p
		if dir == "." {
			key = "./" + p
		}
		t.keys = append(t.keys, key)
		t.urls[key] = prefix + "/" + escapePath(served)
		t.files[served] = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan images in %s: %w", dir, err)
	}
	sort.Strings(t.keys)
	return t, nil
}

func fingerprint(fsys fs.FS, p string) (string, error) {
	b, err := fs.ReadFile(fsys, p)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", p, err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])[:8], nil
}

func hashedName(rel, sum string) string {
	ext := path.Ext(rel)
	return strings.TrimSuffix(rel, ext) + "-" + sum + ext
}

func escapePath(p string) string {
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}

// Len reports the number of registered images.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.keys)
}

// Keys returns the registered source paths in lookup order.
func (t *Table) Keys() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.keys...)
}

// Resolve turns a stored image path into a servable URL. Absolute web paths
// and http(s) URLs pass through; anything else is matched by filename.
func (t *Table) Resolve(raw string) string {
	if raw == "" {
		return raw
	}
	if strings.HasPrefix(raw, "/") || isHTTPURL(raw) {
		return raw
	}

	name := filename(raw)
	if t != nil {
		for _, k := range t.keys {
			if strings.HasSuffix(k, "/"+name) || strings.HasSuffix(k, `\`+name) {
				return t.urls[k]
			}
		}
	}
	return FallbackPrefix + name
}

// Open returns the file behind a served path, relative to the table prefix.
func (t *Table) Open(served string) (fsys fs.FS, name string, ok bool) {
	if t == nil || t.fsys == nil {
		return nil, "", false
	}
	name, ok = t.files[strings.TrimPrefix(served, "/")]
	return t.fsys, name, ok
}

func filename(p string) string {
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}

func isHTTPURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

var (
	defaultOnce  sync.Once
	defaultTable atomic.Pointer[Table]
)

// Init installs the process-wide table. Only the first call has any effect;
// it reports whether this call installed t.
func Init(t *Table) bool {
	installed := false
	defaultOnce.Do(func() {
		defaultTable.Store(t)
		installed = true
	})
	return installed
}

// Default returns the process-wide table, or nil before Init.
func Default() *Table {
	return defaultTable.Load()
}

// Resolve resolves raw against the process-wide table. Before Init every
// relative path falls back to FallbackPrefix.
func Resolve(raw string) string {
	return defaultTable.Load().Resolve(raw)
}
