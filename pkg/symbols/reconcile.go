package symbols

import (
	"os"

	"github.com/raymyers/pypre/pkg/diag"
	"github.com/raymyers/pypre/pkg/literal"
)

// LookupFunc looks up an environment variable, like os.LookupEnv.
type LookupFunc func(name string) (string, bool)

// OSLookup reads the process environment.
var OSLookup LookupFunc = os.LookupEnv

// NoLookup is an empty environment.
func NoLookup(string) (string, bool) { return "", false }

// MapLookup returns a LookupFunc backed by m.
func MapLookup(m map[string]string) LookupFunc {
	return func(name string) (string, bool) {
		v, ok := m[name]
		return v, ok
	}
}

var versionComponents = [3]string{PythonMajorVersion, PythonMinorVersion, PythonMicroVersion}

// Reconcile replaces presets with environment overrides and makes the
// four version symbols consistent. A variable named after a preset must
// hold literal syntax of the preset's type. Running Reconcile again with
// the same environment leaves the table unchanged.
func (t *Table) Reconcile(lookup LookupFunc) error {
	if lookup == nil {
		lookup = NoLookup
	}

	for _, name := range PresetNames {
		if !t.IsDefined(name) {
			continue
		}
		raw, ok := lookup(name)
		if !ok {
			continue
		}
		v, err := literal.Parse(raw)
		if err != nil {
			return diag.Wrap(diag.SyntaxKind, err, "error parsing value %q for constant named %q", raw, name)
		}
		if err := checkPresetType(name, v); err != nil {
			return err
		}
		t.Define(name, v)
		t.markOverridden(name)
	}

	return t.reconcileVersion()
}

func checkPresetType(name string, v literal.Value) error {
	switch name {
	case PythonVersion:
		if v.Kind() != literal.TupleKind || v.Len() != 3 {
			return diag.Errorf(diag.TypeKind, "value of %q must be a tuple of three integers, got %s", name, v)
		}
		for _, e := range v.Elems() {
			if e.Kind() != literal.IntKind {
				return diag.Errorf(diag.TypeKind, "value of %q must be a tuple of three integers, got %s", name, v)
			}
		}
		return nil
	case PythonMajorVersion, PythonMinorVersion, PythonMicroVersion:
		return expectKind(name, v, literal.IntKind)
	case OS, Arch:
		return expectKind(name, v, literal.StringKind)
	case Is64:
		return expectKind(name, v, literal.BoolKind)
	}
	return nil
}

func expectKind(name string, v literal.Value, want literal.Kind) error {
	if v.Kind() != want {
		return diag.Errorf(diag.TypeKind, "value of %q must be of type %s, got %s", name, want, v.Kind())
	}
	return nil
}

func (t *Table) reconcileVersion() error {
	if t.Overridden(PythonVersion) {
		pv, _ := t.Lookup(PythonVersion)
		for i, name := range versionComponents {
			want := pv.Index(i)
			if t.Overridden(name) {
				got, _ := t.Lookup(name)
				if !got.Equal(want) {
					return diag.Errorf(diag.ConflictKind,
						"%q and %q specify conflicting Python versions", PythonVersion, name)
				}
				continue
			}
			t.Define(name, want)
		}
		return nil
	}

	major, minor, micro := t.Overridden(PythonMajorVersion), t.Overridden(PythonMinorVersion), t.Overridden(PythonMicroVersion)
	switch {
	case major:
		if !minor {
			t.Define(PythonMinorVersion, literal.Int(0))
		}
		if !micro {
			t.Define(PythonMicroVersion, literal.Int(0))
		}
	case minor:
		t.Define(PythonMajorVersion, literal.Int(3))
		if !micro {
			t.Define(PythonMicroVersion, literal.Int(0))
		}
	case micro:
		t.Define(PythonMajorVersion, literal.Int(3))
	}

	var parts [3]literal.Value
	for i, name := range versionComponents {
		v, ok := t.Lookup(name)
		if !ok {
			// A removed component leaves the triple as it is.
			return nil
		}
		parts[i] = v
	}
	if t.IsDefined(PythonVersion) {
		t.Define(PythonVersion, literal.Tuple(parts[:]...))
	}
	return nil
}
