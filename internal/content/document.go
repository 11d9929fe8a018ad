package content

// Value is a sub-key value of a section. Folded values were collected from
// continuation lines after a `>` opener.
type Value struct {
	Text   string
	Folded bool
}

// Section is one top-level block of the content file.
type Section struct {
	Name   string
	keys   []string
	values map[string]Value
}

func newSection(name string) *Section {
	return &Section{Name: name, values: make(map[string]Value)}
}

func (s *Section) set(key string, v Value) {
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = v
}

// Get returns the text stored under key.
func (s *Section) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v.Text, ok
}

// Value returns the full value stored under key.
func (s *Section) Value(key string) (Value, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Keys returns the sub-keys in first-seen order.
func (s *Section) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Len reports the number of stored sub-keys.
func (s *Section) Len() int { return len(s.keys) }

// Document is the parsed content file: section name to Section, in input order.
type Document struct {
	order    []string
	sections map[string]*Section
}

func newDocument() *Document {
	return &Document{sections: make(map[string]*Section)}
}

// put stores sec, replacing any earlier section with the same name while
// keeping that name's original position.
func (d *Document) put(sec *Section) {
	if _, ok := d.sections[sec.Name]; !ok {
		d.order = append(d.order, sec.Name)
	}
	d.sections[sec.Name] = sec
}

// Section looks up a section by name.
func (d *Document) Section(name string) (*Section, bool) {
	if d == nil {
		return nil, false
	}
	sec, ok := d.sections[name]
	return sec, ok
}

// Names returns the section names in input order.
func (d *Document) Names() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Len reports the number of sections.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.order)
}
