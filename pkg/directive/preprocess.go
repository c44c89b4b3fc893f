// Package directive implements the directive engine: it scans a document
// line by line, applies #define/#undef to a symbol table, resolves
// #ifdef/#ifndef/#if blocks and handles #warn and #error.
package directive

import (
	"fmt"
	"io"
	"strings"

	"github.com/raymyers/pypre/pkg/diag"
	"github.com/raymyers/pypre/pkg/literal"
	"github.com/raymyers/pypre/pkg/symbols"
)

// Line is one line of the document with its 1-based source line number.
type Line struct {
	Text string
	No   int
}

// SplitLines splits source on newlines and numbers the lines.
func SplitLines(source string) []Line {
	parts := strings.Split(source, "\n")
	lines := make([]Line, len(parts))
	for i, s := range parts {
		lines[i] = Line{Text: s, No: i + 1}
	}
	return lines
}

// JoinLines joins the text of lines with newlines.
func JoinLines(lines []Line) string {
	var sb strings.Builder
	for i, ln := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(ln.Text)
	}
	return sb.String()
}

// Options configures a Preprocessor.
type Options struct {
	// Warnings receives #warn messages. Nil discards them.
	Warnings io.Writer
	// Dispatcher overrides the directive grammar. Nil uses NewDispatcher.
	Dispatcher *Dispatcher
}

// Preprocessor runs the directive engine over documents. Its symbol
// table is mutated by each run.
type Preprocessor struct {
	symbols    *symbols.Table
	dispatcher *Dispatcher
	warnings   io.Writer
}

// NewPreprocessor creates a preprocessor that reads and updates tab.
func NewPreprocessor(tab *symbols.Table, opts Options) *Preprocessor {
	if tab == nil {
		tab = symbols.NewTable()
	}
	d := opts.Dispatcher
	if d == nil {
		d = NewDispatcher()
	}
	w := opts.Warnings
	if w == nil {
		w = io.Discard
	}
	return &Preprocessor{symbols: tab, dispatcher: d, warnings: w}
}

// Symbols returns the symbol table.
func (p *Preprocessor) Symbols() *symbols.Table {
	return p.symbols
}

// PreprocessString processes a whole document. Directive lines never
// reach the output. On error nothing is returned.
func (p *Preprocessor) PreprocessString(source string) (string, error) {
	out, err := p.PreprocessLines(SplitLines(source))
	if err != nil {
		return "", err
	}
	return JoinLines(out), nil
}

// PreprocessLines is the main loop. Lines that match no directive are
// kept. A matched directive is removed and its handler replaces the lines
// after it, so a directive exposed at the front of a kept branch is
// examined next.
func (p *Preprocessor) PreprocessLines(lines []Line) ([]Line, error) {
	out := make([]Line, 0, len(lines))
	rest := lines

	for len(rest) > 0 {
		ln := rest[0]
		rest = rest[1:]

		d, handle, err := p.dispatcher.Match(ln)
		if err != nil {
			return nil, err
		}
		if d == nil {
			out = append(out, ln)
			continue
		}

		rest, err = handle(p, d, rest)
		if err != nil {
			return nil, diag.AtLine(err, ln.No)
		}
	}

	return out, nil
}

func handleDefine(p *Preprocessor, d *Directive, rest []Line) ([]Line, error) {
	name, raw := d.Arg(0), strings.TrimSpace(d.Arg(1))

	v := literal.None()
	if raw != "" {
		var err error
		v, err = literal.Parse(raw)
		if err != nil {
			return nil, diag.Wrap(diag.SyntaxKind, err, "error parsing literal value for %q", name)
		}
	}
	p.symbols.Define(name, v)
	return rest, nil
}

func handleUndef(p *Preprocessor, d *Directive, rest []Line) ([]Line, error) {
	p.symbols.Undefine(d.Arg(0))
	return rest, nil
}

func handleWarn(p *Preprocessor, d *Directive, rest []Line) ([]Line, error) {
	fmt.Fprintln(p.warnings, d.Arg(0))
	return rest, nil
}

func handleError(p *Preprocessor, d *Directive, rest []Line) ([]Line, error) {
	return nil, &diag.Error{Kind: diag.FatalKind, Msg: d.Arg(0), Line: d.Line}
}

// Config describes a complete run: presets, environment and command-line
// symbols.
type Config struct {
	// Platform supplies the presets. Nil uses symbols.HostPlatform.
	Platform *symbols.Platform
	// Lookup reads environment overrides. Nil means no overrides.
	Lookup    symbols.LookupFunc
	Defines   []string
	Undefines []string
	Warnings  io.Writer
}

// NewSymbolTable builds the table a run starts with: presets, then
// environment reconciliation, then -U and -D.
func NewSymbolTable(cfg Config) (*symbols.Table, error) {
	plat := symbols.HostPlatform()
	if cfg.Platform != nil {
		plat = *cfg.Platform
	}
	tab := symbols.NewPresetTable(plat)
	if err := tab.Reconcile(cfg.Lookup); err != nil {
		return nil, err
	}
	if err := tab.ApplyCmdlineDefines(cfg.Defines, cfg.Undefines); err != nil {
		return nil, err
	}
	return tab, nil
}

// Process runs the engine over source with a fresh symbol table and
// returns the output and the final table.
func Process(source string, cfg Config) (string, *symbols.Table, error) {
	tab, err := NewSymbolTable(cfg)
	if err != nil {
		return "", nil, err
	}
	p := NewPreprocessor(tab, Options{Warnings: cfg.Warnings})
	out, err := p.PreprocessString(source)
	if err != nil {
		return "", nil, err
	}
	return out, tab, nil
}
