package formula

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"statement_analyzer/pkg/models"
)

// =============================================================================
// LEXER
// =============================================================================

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokLParen
	tokRParen
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// lex tokenizes a formula. The Unicode multiply/divide signs users
// paste from formula text are normalized to their ASCII operators.
func lex(formula string) ([]token, error) {
	src := strings.NewReplacer("×", "*", "÷", "/").Replace(formula)
	var toks []token
	runes := []rune(src)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '+':
			toks = append(toks, token{tokPlus, "+", i})
			i++
		case r == '-':
			toks = append(toks, token{tokMinus, "-", i})
			i++
		case r == '*':
			toks = append(toks, token{tokStar, "*", i})
			i++
		case r == '/':
			toks = append(toks, token{tokSlash, "/", i})
			i++
		case r == '(':
			toks = append(toks, token{tokLParen, "(", i})
			i++
		case r == ')':
			toks = append(toks, token{tokRParen, ")", i})
			i++
		case unicode.IsDigit(r) || r == '.':
			start := i
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				i++
			}
			text := string(runes[start:i])
			if _, err := strconv.ParseFloat(text, 64); err != nil {
				return nil, fmt.Errorf("invalid number %q", text)
			}
			toks = append(toks, token{tokNumber, text, start})
		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			toks = append(toks, token{tokIdent, string(runes[start:i]), start})
		default:
			return nil, fmt.Errorf("unexpected character %q at position %d", string(r), i)
		}
	}
	toks = append(toks, token{tokEOF, "", len(runes)})
	return toks, nil
}

// =============================================================================
// PARSER - recursive descent over the usual precedence grammar
// =============================================================================

type node interface {
	// vars appends every identifier in the subtree, in source order.
	vars(out []string) []string
}

type numberNode struct{ value float64 }

type varNode struct{ name string }

type unaryNode struct {
	op      tokenKind
	operand node
}

type binaryNode struct {
	op          tokenKind
	left, right node
}

func (n *numberNode) vars(out []string) []string { return out }
func (n *varNode) vars(out []string) []string    { return append(out, n.name) }
func (n *unaryNode) vars(out []string) []string  { return n.operand.vars(out) }
func (n *binaryNode) vars(out []string) []string { return n.right.vars(n.left.vars(out)) }

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) parseExpr() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		k := p.peek().kind
		if k != tokPlus && k != tokMinus {
			return left, nil
		}
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: k, left: left, right: right}
	}
}

func (p *parser) parseTerm() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		k := p.peek().kind
		if k != tokStar && k != tokSlash {
			return left, nil
		}
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: k, left: left, right: right}
	}
}

func (p *parser) parseUnary() (node, error) {
	if p.peek().kind == tokMinus {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryNode{op: tokMinus, operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		v, _ := strconv.ParseFloat(t.text, 64)
		return &numberNode{value: v}, nil
	case tokIdent:
		return &varNode{name: t.text}, nil
	case tokLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokRParen {
			return nil, fmt.Errorf("unbalanced parentheses")
		}
		p.next()
		return inner, nil
	case tokEOF:
		return nil, fmt.Errorf("unexpected end of formula")
	default:
		return nil, fmt.Errorf("unexpected token %q at position %d", t.text, t.pos)
	}
}

// Parse validates a formula and returns its AST. Every identifier must
// be a registered variable; unknown names are a syntax error, not a
// missing-data condition.
func Parse(formula string) (node, error) {
	if strings.TrimSpace(formula) == "" {
		return nil, &models.FormulaSyntaxError{Formula: formula, Reason: "formula cannot be empty"}
	}
	toks, err := lex(formula)
	if err != nil {
		return nil, &models.FormulaSyntaxError{Formula: formula, Reason: err.Error()}
	}
	p := &parser{toks: toks}
	root, err := p.parseExpr()
	if err != nil {
		return nil, &models.FormulaSyntaxError{Formula: formula, Reason: err.Error()}
	}
	if t := p.peek(); t.kind != tokEOF {
		reason := fmt.Sprintf("unexpected token %q at position %d", t.text, t.pos)
		if t.kind == tokRParen {
			reason = "unbalanced parentheses"
		}
		return nil, &models.FormulaSyntaxError{Formula: formula, Reason: reason}
	}
	for _, name := range root.vars(nil) {
		if !Known(name) {
			return nil, &models.FormulaSyntaxError{
				Formula: formula,
				Reason:  fmt.Sprintf("unknown variable %q", name),
			}
		}
	}
	return root, nil
}

// ExtractVariables returns the unique registered variables a formula
// references, in first-appearance order.
func ExtractVariables(formula string) ([]string, error) {
	root, err := Parse(formula)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	for _, name := range root.vars(nil) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out, nil
}

// =============================================================================
// EVALUATION
// =============================================================================

// errDivZero is the internal not-a-number signal. It never escapes
// Evaluate; callers see an N/A result instead.
type errDivZero struct{}

func (errDivZero) Error() string { return "division by zero" }

func eval(n node, env map[string]float64) (float64, error) {
	switch t := n.(type) {
	case *numberNode:
		return t.value, nil
	case *varNode:
		return env[t.name], nil
	case *unaryNode:
		v, err := eval(t.operand, env)
		if err != nil {
			return 0, err
		}
		return -v, nil
	case *binaryNode:
		l, err := eval(t.left, env)
		if err != nil {
			return 0, err
		}
		r, err := eval(t.right, env)
		if err != nil {
			return 0, err
		}
		switch t.op {
		case tokPlus:
			return l + r, nil
		case tokMinus:
			return l - r, nil
		case tokStar:
			return l * r, nil
		default:
			if r == 0 {
				return 0, errDivZero{}
			}
			return l / r, nil
		}
	}
	return 0, fmt.Errorf("unknown node type %T", n)
}

// Options tune how a single evaluation treats its inputs.
type Options struct {
	// AssumeZero lists variables that default to 0 when missing
	// instead of making the whole result N/A (e.g. inventories in the
	// quick ratio). Using a default downgrades data quality.
	AssumeZero []string
}

// Evaluate runs a ratio definition against the current year document,
// with previous supplying the prior period for averaged variables.
// Missing operands and zero denominators yield an N/A result, never an
// error; only structurally invalid formulas return one.
func Evaluate(def models.RatioDefinition, current, previous *models.YearDocument, opts Options) (models.ComputedRatio, error) {
	out := models.ComputedRatio{
		Unit:           def.Unit,
		Formula:        def.Formula,
		Interpretation: def.Interpretation,
		IsCustom:       def.IsCustom,
		DataQuality:    models.QualityComplete,
	}

	root, err := Parse(def.Formula)
	if err != nil {
		return out, err
	}

	assumed := make(map[string]bool, len(opts.AssumeZero))
	for _, name := range opts.AssumeZero {
		assumed[name] = true
	}

	env := make(map[string]float64)
	seen := make(map[string]bool)
	var missing []string
	var notes []string
	for _, name := range root.vars(nil) {
		// A variable used twice resolves once and lands in
		// missing_fields at most once.
		if seen[name] {
			continue
		}
		seen[name] = true
		res := Resolve(name, current, previous)
		switch {
		case res.OK:
			env[name] = res.Value
			if res.Estimated {
				out.DataQuality = models.QualityEstimated
			}
		case assumed[name]:
			env[name] = 0
			if out.DataQuality == models.QualityComplete {
				out.DataQuality = models.QualityPartial
			}
			notes = append(notes, name+" assumed to be 0")
		default:
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		out.Value = models.NA
		out.MissingFields = missing
		out.Interpretation = "Insufficient data to calculate"
		return out, nil
	}

	value, evalErr := eval(root, env)
	if evalErr != nil {
		if _, ok := evalErr.(errDivZero); ok {
			out.Value = models.NA
			out.Note = "division by zero"
			out.Interpretation = "Insufficient data to calculate"
			return out, nil
		}
		return out, &models.FormulaSyntaxError{Formula: def.Formula, Reason: evalErr.Error()}
	}

	if def.Unit == models.UnitPercent {
		value *= 100
	}
	out.Value = models.Value(value)
	out.Note = strings.Join(notes, "; ")
	return out, nil
}
