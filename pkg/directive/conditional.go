// conditional.go implements resolution of #ifdef, #ifndef and #if blocks.

package directive

import (
	"fmt"
	"strings"

	"github.com/raymyers/pypre/pkg/diag"
)

// Block locates the parts of one conditional block within the lines that
// follow its opening directive. Else is -1 when the block has no #else.
type Block struct {
	Else  int
	Endif int
}

// FindBlock scans rest for the #else and #endif that belong to the
// directive opened on line opening. Nested blocks are only counted: any
// line starting with #if opens one and #endif closes it. Nothing inside
// them is evaluated.
func FindBlock(rest []Line, opening int, keyword string) (Block, error) {
	blk := Block{Else: -1, Endif: -1}
	depth := 0

	for n, ln := range rest {
		trimmed := strings.TrimSpace(ln.Text)
		if strings.HasPrefix(trimmed, "#if") {
			depth++
			continue
		}

		switch firstField(trimmed) {
		case "#else":
			if depth > 0 {
				continue
			}
			if blk.Else >= 0 {
				return blk, &diag.Error{
					Kind: diag.ParseKind,
					Msg:  fmt.Sprintf("duplicate '#else' in '#%s' block opened on line %d", keyword, opening),
					Line: ln.No,
				}
			}
			blk.Else = n
		case "#endif":
			if depth == 0 {
				blk.Endif = n
				return blk, nil
			}
			depth--
		}
	}

	return blk, &diag.Error{
		Kind: diag.ParseKind,
		Msg:  fmt.Sprintf("unterminated conditional: '#%s' without '#endif'", keyword),
		Line: opening,
	}
}

// Resolve returns the lines that survive when the block's test is cond,
// followed by everything after its #endif. rest is not modified.
func (b Block) Resolve(rest []Line, cond bool) []Line {
	var kept []Line
	switch {
	case cond && b.Else >= 0:
		kept = rest[:b.Else]
	case cond:
		kept = rest[:b.Endif]
	case b.Else >= 0:
		kept = rest[b.Else+1 : b.Endif]
	}

	after := rest[b.Endif+1:]
	out := make([]Line, 0, len(kept)+len(after))
	out = append(out, kept...)
	return append(out, after...)
}

// resolveBlock finds the block opened by d and keeps the branch selected
// by cond.
func resolveBlock(d *Directive, rest []Line, cond bool) ([]Line, error) {
	blk, err := FindBlock(rest, d.Line, d.Keyword)
	if err != nil {
		return nil, err
	}
	return blk.Resolve(rest, cond), nil
}

func handleIfdef(p *Preprocessor, d *Directive, rest []Line) ([]Line, error) {
	return resolveBlock(d, rest, p.symbols.IsDefined(d.Arg(0)))
}

func handleIfndef(p *Preprocessor, d *Directive, rest []Line) ([]Line, error) {
	return resolveBlock(d, rest, !p.symbols.IsDefined(d.Arg(0)))
}

// handleIf evaluates the condition before looking for the block, so a
// malformed condition is reported even when #endif is missing too.
func handleIf(p *Preprocessor, d *Directive, rest []Line) ([]Line, error) {
	cond, err := p.EvaluateCondition(strings.Fields(d.Text)[1:])
	if err != nil {
		return nil, err
	}
	return resolveBlock(d, rest, cond)
}
