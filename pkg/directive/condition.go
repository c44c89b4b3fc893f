package directive

import (
	"strings"

	"github.com/raymyers/pypre/pkg/diag"
	"github.com/raymyers/pypre/pkg/literal"
)

type comparison func(a, b literal.Value) (bool, error)

var comparisons = map[string]comparison{
	"=": func(a, b literal.Value) (bool, error) { return a.Equal(b), nil },
	"!": func(a, b literal.Value) (bool, error) { return !a.Equal(b), nil },
	">": func(a, b literal.Value) (bool, error) {
		c, err := a.Compare(b)
		return c > 0, err
	},
	"<": func(a, b literal.Value) (bool, error) {
		c, err := a.Compare(b)
		return c < 0, err
	},
}

// EvaluateCondition evaluates the operands of an #if directive. One
// operand is tested for truthiness; three operands are LHS OP RHS with OP
// one of = > < !. Each operand names a symbol or is a literal.
func (p *Preprocessor) EvaluateCondition(operands []string) (bool, error) {
	switch len(operands) {
	case 1:
		v, err := p.resolveOperand(operands[0])
		if err != nil {
			return false, err
		}
		return v.Truthy(), nil

	case 3:
		cmp, ok := comparisons[operands[1]]
		if !ok {
			return false, diag.Errorf(diag.ParseKind, "unknown comparison operator %q", operands[1])
		}
		lhs, err := p.resolveOperand(operands[0])
		if err != nil {
			return false, err
		}
		rhs, err := p.resolveOperand(operands[2])
		if err != nil {
			return false, err
		}
		return cmp(lhs, rhs)
	}

	return false, diag.Errorf(diag.ParseKind, "malformed condition: '#if %s'", strings.Join(operands, " "))
}

// resolveOperand looks tok up as a symbol and falls back to parsing it as
// a literal.
func (p *Preprocessor) resolveOperand(tok string) (literal.Value, error) {
	if v, ok := p.symbols.Lookup(tok); ok {
		return v, nil
	}
	v, err := literal.Parse(tok)
	if err != nil {
		return literal.None(), diag.Wrap(diag.SyntaxKind, err, "error parsing operand %q", tok)
	}
	return v, nil
}
