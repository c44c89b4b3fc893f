package symbols

import (
	"testing"

	"github.com/raymyers/pypre/pkg/diag"
	"github.com/raymyers/pypre/pkg/literal"
)

var testPlatform = Platform{
	PythonVersion: [3]int{3, 11, 4},
	OS:            "Linux",
	Arch:          "aarch64",
	Is64:          true,
}

func versionOf(t *testing.T, tab *Table) (pv literal.Value, major, minor, micro int64) {
	t.Helper()
	pv, _ = tab.Lookup(PythonVersion)
	v, _ := tab.Lookup(PythonMajorVersion)
	major = v.AsInt()
	v, _ = tab.Lookup(PythonMinorVersion)
	minor = v.AsInt()
	v, _ = tab.Lookup(PythonMicroVersion)
	micro = v.AsInt()
	return
}

func TestPresets(t *testing.T) {
	tab := NewPresetTable(testPlatform)
	if tab.Len() != len(PresetNames) {
		t.Fatalf("Len() = %d, want %d", tab.Len(), len(PresetNames))
	}
	pv, major, minor, micro := versionOf(t, tab)
	if !pv.Equal(literal.IntTuple(3, 11, 4)) || major != 3 || minor != 11 || micro != 4 {
		t.Errorf("version presets = %s %d.%d.%d", pv, major, minor, micro)
	}
	if v, _ := tab.Lookup(Is64); !v.Equal(literal.Bool(true)) || v.Kind() != literal.BoolKind {
		t.Errorf("IS64 = %s", v)
	}
}

func TestReconcileNoEnvironment(t *testing.T) {
	tab := NewPresetTable(testPlatform)
	if err := tab.Reconcile(nil); err != nil {
		t.Fatalf("Reconcile error: %v", err)
	}
	pv, _, _, _ := versionOf(t, tab)
	if !pv.Equal(literal.IntTuple(3, 11, 4)) {
		t.Errorf("PYTHON_VERSION = %s", pv)
	}
	for _, name := range PresetNames {
		if tab.Overridden(name) {
			t.Errorf("%s marked overridden", name)
		}
	}
}

func TestReconcileVersions(t *testing.T) {
	tests := []struct {
		name   string
		env    map[string]string
		expect [3]int
	}{
		{
			name:   "full version",
			env:    map[string]string{"PYTHON_VERSION": "(3, 9, 1)"},
			expect: [3]int{3, 9, 1},
		},
		{
			name:   "full version with matching component",
			env:    map[string]string{"PYTHON_VERSION": "(2, 7, 18)", "PYTHON_MINOR_VERSION": "7"},
			expect: [3]int{2, 7, 18},
		},
		{
			name:   "major only",
			env:    map[string]string{"PYTHON_MAJOR_VERSION": "2"},
			expect: [3]int{2, 0, 0},
		},
		{
			name:   "major and micro",
			env:    map[string]string{"PYTHON_MAJOR_VERSION": "2", "PYTHON_MICRO_VERSION": "5"},
			expect: [3]int{2, 0, 5},
		},
		{
			name:   "minor only",
			env:    map[string]string{"PYTHON_MINOR_VERSION": "6"},
			expect: [3]int{3, 6, 0},
		},
		{
			name:   "minor and micro",
			env:    map[string]string{"PYTHON_MINOR_VERSION": "6", "PYTHON_MICRO_VERSION": "9"},
			expect: [3]int{3, 6, 9},
		},
		{
			name:   "micro only keeps preset minor",
			env:    map[string]string{"PYTHON_MICRO_VERSION": "2"},
			expect: [3]int{3, 11, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tab := NewPresetTable(testPlatform)
			if err := tab.Reconcile(MapLookup(tt.env)); err != nil {
				t.Fatalf("Reconcile error: %v", err)
			}
			pv, major, minor, micro := versionOf(t, tab)
			got := [3]int{int(major), int(minor), int(micro)}
			if got != tt.expect {
				t.Errorf("components = %v, want %v", got, tt.expect)
			}
			if !pv.Equal(literal.IntTuple(tt.expect[0], tt.expect[1], tt.expect[2])) {
				t.Errorf("PYTHON_VERSION = %s, want %v", pv, tt.expect)
			}
		})
	}
}

func TestReconcileOverridesStrings(t *testing.T) {
	tab := NewPresetTable(testPlatform)
	env := MapLookup(map[string]string{"ARCH": "'x86_64'", "OS": `"Darwin"`, "IS64": "False"})
	if err := tab.Reconcile(env); err != nil {
		t.Fatalf("Reconcile error: %v", err)
	}
	if v, _ := tab.Lookup(Arch); !v.Equal(literal.Str("x86_64")) {
		t.Errorf("ARCH = %s", v)
	}
	if v, _ := tab.Lookup(OS); !v.Equal(literal.Str("Darwin")) {
		t.Errorf("OS = %s", v)
	}
	if v, _ := tab.Lookup(Is64); v.Truthy() {
		t.Errorf("IS64 = %s", v)
	}
	if !tab.Overridden(Arch) || tab.Overridden(PythonVersion) {
		t.Error("overridden marks are wrong")
	}
}

func TestReconcileErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		kind diag.Kind
	}{
		{"unparseable", map[string]string{"ARCH": "x86_64"}, diag.SyntaxKind},
		{"code", map[string]string{"OS": "__import__('os').getcwd()"}, diag.SyntaxKind},
		{"arch not string", map[string]string{"ARCH": "64"}, diag.TypeKind},
		{"is64 not bool", map[string]string{"IS64": "1"}, diag.TypeKind},
		{"major not int", map[string]string{"PYTHON_MAJOR_VERSION": "'3'"}, diag.TypeKind},
		{"major bool", map[string]string{"PYTHON_MAJOR_VERSION": "True"}, diag.TypeKind},
		{"version not tuple", map[string]string{"PYTHON_VERSION": "3"}, diag.TypeKind},
		{"version too short", map[string]string{"PYTHON_VERSION": "(3, 9)"}, diag.TypeKind},
		{"version not ints", map[string]string{"PYTHON_VERSION": "(3, 9, 'a')"}, diag.TypeKind},
		{"conflict", map[string]string{"PYTHON_VERSION": "(3, 9, 1)", "PYTHON_MAJOR_VERSION": "2"}, diag.ConflictKind},
		{"conflict micro", map[string]string{"PYTHON_VERSION": "(3, 9, 1)", "PYTHON_MICRO_VERSION": "0"}, diag.ConflictKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewPresetTable(testPlatform).Reconcile(MapLookup(tt.env))
			if err == nil {
				t.Fatal("expected error")
			}
			if !diag.Is(err, tt.kind) {
				t.Errorf("error = %v, want %v", err, tt.kind)
			}
		})
	}
}

func TestReconcileIdempotent(t *testing.T) {
	envs := []map[string]string{
		{"PYTHON_MINOR_VERSION": "6"},
		{"PYTHON_MICRO_VERSION": "2"},
		{"PYTHON_VERSION": "(2, 7, 18)", "ARCH": "'armv7l'"},
	}
	for _, env := range envs {
		tab := NewPresetTable(testPlatform)
		if err := tab.Reconcile(MapLookup(env)); err != nil {
			t.Fatalf("first Reconcile error: %v", err)
		}
		first := tab.Clone()
		if err := tab.Reconcile(MapLookup(env)); err != nil {
			t.Fatalf("second Reconcile error: %v", err)
		}
		for _, s := range first.Symbols() {
			v, _ := tab.Lookup(s.Name)
			if !v.Equal(s.Value) || tab.Overridden(s.Name) != s.Overridden {
				t.Errorf("env %v: %s changed from %s to %s", env, s.Name, s.Value, v)
			}
		}
	}
}

func TestHostPlatform(t *testing.T) {
	p := HostPlatform()
	if p.OS == "" || p.Arch == "" {
		t.Errorf("HostPlatform() = %+v", p)
	}
	if p.PythonVersion != DefaultPythonVersion {
		t.Errorf("PythonVersion = %v, want default", p.PythonVersion)
	}
}

func TestMachineNames(t *testing.T) {
	tests := []struct {
		goos, goarch, expect string
	}{
		{"linux", "amd64", "x86_64"},
		{"windows", "amd64", "AMD64"},
		{"linux", "arm64", "aarch64"},
		{"darwin", "arm64", "arm64"},
		{"linux", "386", "i686"},
		{"plan9", "mips", "mips"},
	}
	for _, tt := range tests {
		if got := machineName(tt.goos, tt.goarch); got != tt.expect {
			t.Errorf("machineName(%s, %s) = %q, want %q", tt.goos, tt.goarch, got, tt.expect)
		}
	}
	if osName("darwin") != "Darwin" || osName("linux") != "Linux" {
		t.Error("osName mapping is wrong")
	}
}
