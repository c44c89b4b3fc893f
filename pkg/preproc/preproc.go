// Package preproc connects the directive engine to files, streams and the
// process environment.
package preproc

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/raymyers/pypre/pkg/directive"
	"github.com/raymyers/pypre/pkg/symbols"
)

// Options configures the preprocessing step
type Options struct {
	Defines   []string  // -D NAME[=VALUE]
	Undefines []string  // -U NAME
	EnvFiles  []string  // dotenv files with override variables
	IgnoreEnv bool      // do not read overrides from the process environment
	Warnings  io.Writer // #warn destination
	Platform  *symbols.Platform
}

// Result is the outcome of a successful run.
type Result struct {
	Output  string
	Symbols *symbols.Table
}

// Preprocess reads filename and runs the engine over it.
func Preprocess(filename string, opts *Options) (*Result, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	return PreprocessString(string(content), opts)
}

// PreprocessReader reads all of r and runs the engine over it.
func PreprocessReader(r io.Reader, opts *Options) (*Result, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return PreprocessString(string(content), opts)
}

// PreprocessString runs the engine over source.
func PreprocessString(source string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = &Options{}
	}

	lookup, err := Environment(opts)
	if err != nil {
		return nil, err
	}

	plat := opts.Platform
	if plat == nil {
		host := HostPlatform()
		plat = &host
	}

	out, tab, err := directive.Process(source, directive.Config{
		Platform:  plat,
		Lookup:    lookup,
		Defines:   opts.Defines,
		Undefines: opts.Undefines,
		Warnings:  opts.Warnings,
	})
	if err != nil {
		return nil, err
	}
	return &Result{Output: out, Symbols: tab}, nil
}

// Environment builds the override lookup for opts. Values from the
// process environment win over values from dotenv files, and later files
// win over earlier ones.
func Environment(opts *Options) (symbols.LookupFunc, error) {
	fileVars := map[string]string{}
	for _, f := range opts.EnvFiles {
		vars, err := godotenv.Read(f)
		if err != nil {
			return nil, fmt.Errorf("reading env file %s: %w", f, err)
		}
		for k, v := range vars {
			fileVars[k] = v
		}
	}

	if opts.IgnoreEnv {
		return symbols.MapLookup(fileVars), nil
	}
	return func(name string) (string, bool) {
		if v, ok := os.LookupEnv(name); ok {
			return v, true
		}
		v, ok := fileVars[name]
		return v, ok
	}, nil
}

// HostPlatform is symbols.HostPlatform with the version of the Python
// interpreter on PATH, when one is found.
func HostPlatform() symbols.Platform {
	plat := symbols.HostPlatform()
	if v, ok := DetectPythonVersion(); ok {
		plat.PythonVersion = v
	}
	return plat
}

// DetectPythonVersion asks the interpreter on PATH for its version.
func DetectPythonVersion() ([3]int, bool) {
	interp := findInterpreter()
	if interp == "" {
		return [3]int{}, false
	}

	cmd := exec.Command(interp, "--version")
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out // Python 2 prints its version on stderr
	if err := cmd.Run(); err != nil {
		return [3]int{}, false
	}
	return ParseVersion(out.String())
}

var versionRE = regexp.MustCompile(`Python\s+(\d+)\.(\d+)(?:\.(\d+))?`)

// ParseVersion extracts the version triple from "Python X.Y.Z" output.
// A missing micro component is 0.
func ParseVersion(s string) ([3]int, bool) {
	m := versionRE.FindStringSubmatch(s)
	if m == nil {
		return [3]int{}, false
	}
	var v [3]int
	for i := 0; i < 3; i++ {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return [3]int{}, false
		}
		v[i] = n
	}
	return v, true
}

// findInterpreter searches for a Python interpreter on the system
func findInterpreter() string {
	candidates := []string{"python3", "python"}

	for _, cmd := range candidates {
		if path, err := exec.LookPath(cmd); err == nil {
			return path
		}
	}
	return ""
}
