package directive

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/raymyers/pypre/pkg/diag"
)

// Handler applies a matched directive. rest holds the lines after the
// directive line; the returned slice replaces them.
type Handler func(p *Preprocessor, d *Directive, rest []Line) ([]Line, error)

// Directive is a line recognized by the Dispatcher.
type Directive struct {
	Pattern string   // name of the grammar entry that matched
	Keyword string   // define, undef, ifdef, ifndef, if, warn or error
	Args    []string // submatches of the entry's grammar
	Text    string   // trimmed line
	Line    int      // 1-based source line
}

// Arg returns the i-th submatch, or "" if there is none.
func (d *Directive) Arg(i int) string {
	if i < len(d.Args) {
		return d.Args[i]
	}
	return ""
}

type entry struct {
	name    string
	keyword string
	re      *regexp.Regexp
	handle  Handler
}

// Dispatcher matches lines against an ordered list of grammar entries.
// Entries are tried in order and the first match wins, so more specific
// forms are listed before the general ones they overlap with.
type Dispatcher struct {
	entries []entry
}

// Opening keywords whose malformed use is an error rather than text.
var openingKeywords = map[string]bool{
	"#define": true,
	"#undef":  true,
	"#ifdef":  true,
	"#ifndef": true,
	"#if":     true,
}

// NewDispatcher returns the dispatcher for the directive grammar.
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{}
	d.add("define", "define", `^#define\s+(\w+)(?:\s+(.*))?$`, handleDefine)
	d.add("undef", "undef", `^#undef\s+(\w+)$`, handleUndef)
	d.add("ifdef", "ifdef", `^#ifdef\s+(\w+)$`, handleIfdef)
	d.add("ifndef", "ifndef", `^#ifndef\s+(\w+)$`, handleIfndef)
	d.add("if-compare", "if", `^#if\s+(\S+)\s+([=<>!])\s+(\S+)$`, handleIf)
	d.add("if-value", "if", `^#if\s+(.+)$`, handleIf)
	d.add("warn", "warn", `^#warn(?:\s+(.*))?$`, handleWarn)
	d.add("error", "error", `^#error(?:\s+(.*))?$`, handleError)
	return d
}

func (d *Dispatcher) add(name, keyword, pattern string, h Handler) {
	d.entries = append(d.entries, entry{
		name:    name,
		keyword: keyword,
		re:      regexp.MustCompile(pattern),
		handle:  h,
	})
}

// Patterns returns the entry names in priority order.
func (d *Dispatcher) Patterns() []string {
	names := make([]string, len(d.entries))
	for i, e := range d.entries {
		names[i] = e.name
	}
	return names
}

// Match tests ln against the grammar. It returns nil for ordinary text,
// including stray #else and #endif markers. A line that starts with an
// opening keyword but fits no entry is a ParseKind error.
func (d *Dispatcher) Match(ln Line) (*Directive, Handler, error) {
	trimmed := strings.TrimSpace(ln.Text)
	if !strings.HasPrefix(trimmed, "#") {
		return nil, nil, nil
	}

	for _, e := range d.entries {
		m := e.re.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		return &Directive{
			Pattern: e.name,
			Keyword: e.keyword,
			Args:    m[1:],
			Text:    trimmed,
			Line:    ln.No,
		}, e.handle, nil
	}

	if kw := firstField(trimmed); openingKeywords[kw] {
		return nil, nil, &diag.Error{
			Kind: diag.ParseKind,
			Msg:  fmt.Sprintf("malformed '%s' directive: %q", kw, trimmed),
			Line: ln.No,
		}
	}
	return nil, nil, nil
}

func firstField(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return ""
}
