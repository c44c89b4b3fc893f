// Package symbols implements the symbol table consulted by #ifdef, #ifndef
// and #if, together with its built-in presets and environment overrides.
package symbols

import (
	"sort"
	"strings"

	"github.com/raymyers/pypre/pkg/diag"
	"github.com/raymyers/pypre/pkg/literal"
)

// Symbol is a named literal value.
type Symbol struct {
	Name       string        `yaml:"name"`
	Value      literal.Value `yaml:"value"`
	Overridden bool          `yaml:"overridden,omitempty"`
}

// Table maps symbol names to values. A Table belongs to a single run and
// is not safe for concurrent use.
type Table struct {
	syms map[string]*Symbol
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{syms: make(map[string]*Symbol)}
}

// NewPresetTable creates a table holding the presets for plat.
func NewPresetTable(plat Platform) *Table {
	t := NewTable()
	for _, s := range plat.Presets() {
		t.Define(s.Name, s.Value)
	}
	return t
}

// Define sets name to v, replacing any previous value. The overridden
// mark of an existing symbol is kept.
func (t *Table) Define(name string, v literal.Value) {
	if s, ok := t.syms[name]; ok {
		s.Value = v
		return
	}
	t.syms[name] = &Symbol{Name: name, Value: v}
}

// Undefine removes name. Removing an undefined name is a no-op.
func (t *Table) Undefine(name string) {
	delete(t.syms, name)
}

// IsDefined reports whether name is in the table.
func (t *Table) IsDefined(name string) bool {
	_, ok := t.syms[name]
	return ok
}

// Lookup returns the value of name.
func (t *Table) Lookup(name string) (literal.Value, bool) {
	s, ok := t.syms[name]
	if !ok {
		return literal.None(), false
	}
	return s.Value, true
}

// Overridden reports whether name was replaced by an environment override.
func (t *Table) Overridden(name string) bool {
	s, ok := t.syms[name]
	return ok && s.Overridden
}

func (t *Table) markOverridden(name string) {
	if s, ok := t.syms[name]; ok {
		s.Overridden = true
	}
}

// Len returns the number of symbols.
func (t *Table) Len() int {
	return len(t.syms)
}

// Symbols returns a snapshot of all symbols sorted by name.
func (t *Table) Symbols() []Symbol {
	out := make([]Symbol, 0, len(t.syms))
	for _, s := range t.syms {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Clone returns an independent copy of t.
func (t *Table) Clone() *Table {
	c := NewTable()
	for name, s := range t.syms {
		cp := *s
		c.syms[name] = &cp
	}
	return c
}

// ApplyCmdlineDefines applies -U names and then -D definitions. A define
// is NAME or NAME=VALUE; VALUE uses literal syntax and a bare NAME is
// defined as None.
func (t *Table) ApplyCmdlineDefines(defines, undefines []string) error {
	for _, name := range undefines {
		t.Undefine(strings.TrimSpace(name))
	}

	for _, d := range defines {
		name, raw, hasValue := strings.Cut(d, "=")
		name = strings.TrimSpace(name)
		if !IsName(name) {
			return diag.Errorf(diag.SyntaxKind, "invalid define %q: bad name", d)
		}
		v := literal.None()
		if hasValue {
			var err error
			v, err = literal.Parse(raw)
			if err != nil {
				return diag.Wrap(diag.SyntaxKind, err, "invalid value for define %q", name)
			}
		}
		t.Define(name, v)
	}
	return nil
}

// IsName reports whether s is a valid symbol name: one or more ASCII
// letters, digits or underscores.
func IsName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
			return false
		}
	}
	return true
}
