package preproc

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/raymyers/pypre/pkg/diag"
	"github.com/raymyers/pypre/pkg/symbols"
)

var testPlatform = &symbols.Platform{
	PythonVersion: [3]int{3, 12, 0},
	OS:            "Darwin",
	Arch:          "arm64",
	Is64:          true,
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// clearPresetEnv removes preset overrides the host environment may carry.
func clearPresetEnv(t *testing.T) {
	t.Helper()
	for _, name := range symbols.PresetNames {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func TestPreprocessString(t *testing.T) {
	res, err := PreprocessString("#if OS = 'Darwin'\nmac\n#else\nother\n#endif\n", &Options{
		Platform:  testPlatform,
		IgnoreEnv: true,
	})
	if err != nil {
		t.Fatalf("PreprocessString error: %v", err)
	}
	if res.Output != "mac\n" {
		t.Errorf("Output = %q, want %q", res.Output, "mac\n")
	}
	if res.Symbols.Len() != len(symbols.PresetNames) {
		t.Errorf("symbol count = %d", res.Symbols.Len())
	}
}

func TestPreprocessNilOptions(t *testing.T) {
	clearPresetEnv(t)
	res, err := PreprocessString("plain", nil)
	if err != nil {
		t.Fatalf("PreprocessString error: %v", err)
	}
	if res.Output != "plain" {
		t.Errorf("Output = %q", res.Output)
	}
	if !res.Symbols.IsDefined(symbols.PythonVersion) {
		t.Error("presets should be defined")
	}
}

func TestPreprocessFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "mod.py", "#define X\n#ifdef X\nimport x\n#endif\n")

	res, err := Preprocess(path, &Options{Platform: testPlatform, IgnoreEnv: true})
	if err != nil {
		t.Fatalf("Preprocess error: %v", err)
	}
	if res.Output != "import x\n" {
		t.Errorf("Output = %q", res.Output)
	}

	_, err = Preprocess(filepath.Join(dir, "missing.py"), nil)
	if err == nil || !strings.Contains(err.Error(), "missing.py") {
		t.Errorf("missing file error = %v", err)
	}
}

func TestPreprocessReader(t *testing.T) {
	var warnings bytes.Buffer
	res, err := PreprocessReader(strings.NewReader("#warn hi\nbody"), &Options{
		Platform:  testPlatform,
		IgnoreEnv: true,
		Warnings:  &warnings,
	})
	if err != nil {
		t.Fatalf("PreprocessReader error: %v", err)
	}
	if res.Output != "body" {
		t.Errorf("Output = %q", res.Output)
	}
	if warnings.String() != "hi\n" {
		t.Errorf("warnings = %q", warnings.String())
	}
}

func TestDefinesAndUndefines(t *testing.T) {
	res, err := PreprocessString("#ifdef ARCH\narch\n#endif\n#if LEVEL > 2\nhigh\n#endif", &Options{
		Platform:  testPlatform,
		IgnoreEnv: true,
		Defines:   []string{"LEVEL=3"},
		Undefines: []string{"ARCH"},
	})
	if err != nil {
		t.Fatalf("PreprocessString error: %v", err)
	}
	if res.Output != "high" {
		t.Errorf("Output = %q", res.Output)
	}
}

func TestEnvFile(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "a.env", "ARCH=\"'x86_64'\"\nOS=\"'Linux'\"\n")
	second := writeFile(t, dir, "b.env", "OS=\"'FreeBSD'\"\n")

	res, err := PreprocessString("#if ARCH = 'x86_64'\nx86\n#endif\n#if OS = 'FreeBSD'\nbsd\n#endif", &Options{
		Platform:  testPlatform,
		IgnoreEnv: true,
		EnvFiles:  []string{first, second},
	})
	if err != nil {
		t.Fatalf("PreprocessString error: %v", err)
	}
	if res.Output != "x86\nbsd" {
		t.Errorf("Output = %q", res.Output)
	}
	if !res.Symbols.Overridden(symbols.Arch) {
		t.Error("ARCH should be marked overridden")
	}
}

func TestEnvFileMissing(t *testing.T) {
	_, err := PreprocessString("x", &Options{
		Platform: testPlatform,
		EnvFiles: []string{filepath.Join(t.TempDir(), "nope.env")},
	})
	if err == nil {
		t.Fatal("expected error for missing env file")
	}
}

func TestProcessEnvironmentWins(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, dir, "o.env", "PYTHON_MAJOR_VERSION=2\n")
	t.Setenv("PYTHON_MAJOR_VERSION", "4")

	lookup, err := Environment(&Options{EnvFiles: []string{envFile}})
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := lookup("PYTHON_MAJOR_VERSION"); v != "4" {
		t.Errorf("process environment should win, got %q", v)
	}

	lookup, err = Environment(&Options{EnvFiles: []string{envFile}, IgnoreEnv: true})
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := lookup("PYTHON_MAJOR_VERSION"); v != "2" {
		t.Errorf("IgnoreEnv should use only the file, got %q", v)
	}
}

func TestEnvironmentOverrideErrors(t *testing.T) {
	clearPresetEnv(t)
	t.Setenv("IS64", "'yes'")
	_, err := PreprocessString("x", &Options{Platform: testPlatform})
	if !diag.Is(err, diag.TypeKind) {
		t.Errorf("error = %v, want TypeKind", err)
	}

	_, err = PreprocessString("x", &Options{Platform: testPlatform, IgnoreEnv: true})
	if err != nil {
		t.Errorf("IgnoreEnv run failed: %v", err)
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		input  string
		expect [3]int
		ok     bool
	}{
		{"Python 3.11.4\n", [3]int{3, 11, 4}, true},
		{"Python 2.7.18", [3]int{2, 7, 18}, true},
		{"Python 3.13", [3]int{3, 13, 0}, true},
		{"Python 3.12.0rc1", [3]int{3, 12, 0}, true},
		{"pypy 7", [3]int{}, false},
		{"", [3]int{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseVersion(tt.input)
		if ok != tt.ok || got != tt.expect {
			t.Errorf("ParseVersion(%q) = %v, %v; want %v, %v", tt.input, got, ok, tt.expect, tt.ok)
		}
	}
}

func TestHostPlatform(t *testing.T) {
	plat := HostPlatform()
	if plat.OS == "" || plat.Arch == "" {
		t.Errorf("HostPlatform() = %+v", plat)
	}
	if plat.PythonVersion[0] == 0 {
		t.Errorf("PythonVersion = %v", plat.PythonVersion)
	}
}
