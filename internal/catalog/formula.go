package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Formula is a small typed arithmetic expression evaluated against a fixed
// variable namespace: caster.* and target.* attribute references plus the
// constants declared on the owning ability. It is parsed and validated when
// the catalog loads, never at execution time.
type Formula struct {
	src  string
	root exprNode
}

// formulaAttrs is the attribute namespace available to caster./target. refs.
var formulaAttrs = map[string]bool{
	"attack":         true,
	"defense":        true,
	"counter_attack": true,
	"max_defense":    true,
	"deploy_cost":    true,
	"operation_cost": true,
}

// AttrFunc resolves a namespaced attribute to its current value. The second
// return is false when the attribute has no value in this evaluation (for
// example target.* with no target card).
type AttrFunc func(name string) (int, bool)

// Env supplies the variable bindings for one evaluation.
type Env struct {
	Caster    AttrFunc
	Target    AttrFunc
	Constants map[string]int
}

// ParseFormula compiles the expression source. The grammar is
//
//	expr   = term (("+" | "-") term)*
//	term   = factor (("*" | "/") factor)*
//	factor = number | ident | scope "." ident | "-" factor | "(" expr ")"
func ParseFormula(src string) (*Formula, error) {
	p := &formulaParser{input: src}
	p.next()
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, fmt.Errorf("formula %q: unexpected %q", src, p.tok.text)
	}
	return &Formula{src: src, root: root}, nil
}

// Source returns the original expression text.
func (f *Formula) Source() string {
	return f.src
}

// Eval computes the expression value. Evaluation only fails on division by
// zero or an unbound variable; both indicate the catalog validation contract
// was bypassed and are surfaced to the caller rather than panicking.
func (f *Formula) Eval(env Env) (int, error) {
	if f == nil || f.root == nil {
		return 0, fmt.Errorf("formula is empty")
	}
	return f.root.eval(env)
}

// Validate checks every identifier against the namespace: scoped references
// must use a known scope and attribute, bare identifiers must be declared
// constants.
func (f *Formula) Validate(constants map[string]int) error {
	if f == nil || f.root == nil {
		return fmt.Errorf("formula is empty")
	}
	return f.root.validate(constants)
}

// ReferencesTarget reports whether the expression reads any target.*
// attribute. Evaluating such a formula without a bound target fails, so the
// loader rejects it wherever no target can ever bind.
func (f *Formula) ReferencesTarget() bool {
	if f == nil || f.root == nil {
		return false
	}
	return referencesScope(f.root, "target")
}

func referencesScope(n exprNode, scope string) bool {
	switch node := n.(type) {
	case attrNode:
		return node.scope == scope
	case unaryNode:
		return referencesScope(node.operand, scope)
	case binaryNode:
		return referencesScope(node.left, scope) || referencesScope(node.right, scope)
	}
	return false
}

// UnmarshalYAML parses the formula from its YAML string form.
func (f *Formula) UnmarshalYAML(node *yaml.Node) error {
	var src string
	if err := node.Decode(&src); err != nil {
		return err
	}
	parsed, err := ParseFormula(src)
	if err != nil {
		return err
	}
	*f = *parsed
	return nil
}

// MarshalYAML emits the original source text.
func (f *Formula) MarshalYAML() (any, error) {
	return f.src, nil
}

type exprNode interface {
	eval(env Env) (int, error)
	validate(constants map[string]int) error
}

type literalNode struct{ value int }

func (n literalNode) eval(Env) (int, error) { return n.value, nil }
func (n literalNode) validate(map[string]int) error { return nil }

type constNode struct{ name string }

func (n constNode) eval(env Env) (int, error) {
	v, ok := env.Constants[n.name]
	if !ok {
		return 0, fmt.Errorf("constant %q is not bound", n.name)
	}
	return v, nil
}

func (n constNode) validate(constants map[string]int) error {
	if _, ok := constants[n.name]; !ok {
		return fmt.Errorf("unknown constant %q", n.name)
	}
	return nil
}

type attrNode struct {
	scope string // "caster" or "target"
	attr  string
}

func (n attrNode) eval(env Env) (int, error) {
	var fn AttrFunc
	switch n.scope {
	case "caster":
		fn = env.Caster
	case "target":
		fn = env.Target
	}
	if fn == nil {
		return 0, fmt.Errorf("scope %q is not bound", n.scope)
	}
	v, ok := fn(n.attr)
	if !ok {
		return 0, fmt.Errorf("%s.%s has no value", n.scope, n.attr)
	}
	return v, nil
}

func (n attrNode) validate(map[string]int) error {
	if n.scope != "caster" && n.scope != "target" {
		return fmt.Errorf("unknown scope %q", n.scope)
	}
	if !formulaAttrs[n.attr] {
		return fmt.Errorf("unknown attribute %q", n.attr)
	}
	return nil
}

type unaryNode struct{ operand exprNode }

func (n unaryNode) eval(env Env) (int, error) {
	v, err := n.operand.eval(env)
	if err != nil {
		return 0, err
	}
	return -v, nil
}

func (n unaryNode) validate(constants map[string]int) error {
	return n.operand.validate(constants)
}

type binaryNode struct {
	op          byte
	left, right exprNode
}

func (n binaryNode) eval(env Env) (int, error) {
	l, err := n.left.eval(env)
	if err != nil {
		return 0, err
	}
	r, err := n.right.eval(env)
	if err != nil {
		return 0, err
	}
	switch n.op {
	case '+':
		return l + r, nil
	case '-':
		return l - r, nil
	case '*':
		return l * r, nil
	case '/':
		if r == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return l / r, nil
	}
	return 0, fmt.Errorf("unknown operator %q", n.op)
}

func (n binaryNode) validate(constants map[string]int) error {
	if err := n.left.validate(constants); err != nil {
		return err
	}
	return n.right.validate(constants)
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokOp // + - * / ( ) .
)

type token struct {
	kind tokenKind
	text string
}

type formulaParser struct {
	input string
	pos   int
	tok   token
}

func (p *formulaParser) next() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
	if p.pos >= len(p.input) {
		p.tok = token{kind: tokEOF}
		return
	}
	c := p.input[p.pos]
	switch {
	case c >= '0' && c <= '9':
		start := p.pos
		for p.pos < len(p.input) && p.input[p.pos] >= '0' && p.input[p.pos] <= '9' {
			p.pos++
		}
		p.tok = token{kind: tokNumber, text: p.input[start:p.pos]}
	case c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
		start := p.pos
		for p.pos < len(p.input) && isIdentChar(p.input[p.pos]) {
			p.pos++
		}
		p.tok = token{kind: tokIdent, text: p.input[start:p.pos]}
	case strings.ContainsRune("+-*/().", rune(c)):
		p.pos++
		p.tok = token{kind: tokOp, text: string(c)}
	default:
		// Surface the bad byte as an identifier-like token; the parser will
		// reject it with position context.
		p.pos++
		p.tok = token{kind: tokIdent, text: string(c)}
	}
}

func isIdentChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (p *formulaParser) parseExpr() (exprNode, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokOp && (p.tok.text == "+" || p.tok.text == "-") {
		op := p.tok.text[0]
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *formulaParser) parseTerm() (exprNode, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokOp && (p.tok.text == "*" || p.tok.text == "/") {
		op := p.tok.text[0]
		p.next()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *formulaParser) parseFactor() (exprNode, error) {
	switch {
	case p.tok.kind == tokNumber:
		v, err := strconv.Atoi(p.tok.text)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", p.tok.text)
		}
		p.next()
		return literalNode{value: v}, nil

	case p.tok.kind == tokIdent:
		name := p.tok.text
		p.next()
		if p.tok.kind == tokOp && p.tok.text == "." {
			p.next()
			if p.tok.kind != tokIdent {
				return nil, fmt.Errorf("expected attribute after %q.", name)
			}
			attr := p.tok.text
			p.next()
			return attrNode{scope: name, attr: attr}, nil
		}
		return constNode{name: name}, nil

	case p.tok.kind == tokOp && p.tok.text == "-":
		p.next()
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return unaryNode{operand: operand}, nil

	case p.tok.kind == tokOp && p.tok.text == "(":
		p.next()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokOp || p.tok.text != ")" {
			return nil, fmt.Errorf("missing closing parenthesis")
		}
		p.next()
		return inner, nil
	}
	if p.tok.kind == tokEOF {
		return nil, fmt.Errorf("unexpected end of formula")
	}
	return nil, fmt.Errorf("unexpected token %q", p.tok.text)
}
