// Package parser implements a Pratt parser producing the named AST
// (ast.RawExpr) from a token stream, following the prefix/infix
// parse-function-table idiom of
// CWBudde-go-dws/internal/parser/parser.go. That teacher grammar is a
// full statement language and leans on panic-mode recovery
// (pushBlockContext/synchronize) across many statement forms; this
// grammar parses a single expression, so recovery is unnecessary and is
// not carried over — the first error simply stops the parse (see
// DESIGN.md).
package parser

import (
	"fmt"

	"github.com/matthew-healy/uplp/internal/ast"
	"github.com/matthew-healy/uplp/internal/interner"
	"github.com/matthew-healy/uplp/internal/lexer"
	"github.com/matthew-healy/uplp/internal/types"
	"github.com/matthew-healy/uplp/internal/value"
	"github.com/matthew-healy/uplp/pkg/token"
)

// Precedence levels, lowest to highest, per spec.md §6: `&&` binds
// loosest, then `==`, then `+`/`-`, then `*`/`/`; application binds
// tighter than every binary operator.
const (
	lowest int = iota
	precAnd
	precEq
	precSum
	precProduct
)

var precedences = map[token.Type]int{
	token.AND:   precAnd,
	token.EQ:    precEq,
	token.PLUS:  precSum,
	token.MINUS: precSum,
	token.STAR:  precProduct,
	token.SLASH: precProduct,
}

var binOps = map[token.Type]ast.BinOp{
	token.AND:   ast.And,
	token.EQ:    ast.Eq,
	token.PLUS:  ast.Add,
	token.MINUS: ast.Sub,
	token.STAR:  ast.Mul,
	token.SLASH: ast.Div,
}

// atomStart is the set of tokens that can open an application argument
// (spec.md §6's Atoms production).
var atomStart = map[token.Type]bool{
	token.NUM:    true,
	token.TRUE:   true,
	token.FALSE:  true,
	token.IDENT:  true,
	token.LPAREN: true,
}

// Parser holds the lexer and two-token lookahead needed by the Pratt
// loop, plus the interner shared with the rest of the pipeline.
type Parser struct {
	l   *lexer.Lexer
	in  *interner.Interner
	cur token.Token
	pk  token.Token
}

// New constructs a Parser reading from l, interning identifiers into in.
func New(l *lexer.Lexer, in *interner.Interner) *Parser {
	p := &Parser{l: l, in: in}
	p.advance()
	p.advance()
	return p
}

// Parse parses a complete expression followed by EOF.
func Parse(source string, in *interner.Interner) (ast.RawExpr, error) {
	p := New(lexer.New(source), in)
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.cur.Type != token.EOF {
		return nil, unexpectedToken(p.cur, "end of input")
	}
	return e, nil
}

func (p *Parser) advance() {
	p.cur = p.pk
	p.pk = p.l.NextToken()
}

func (p *Parser) expect(tt token.Type, desc string) (token.Token, error) {
	if p.cur.Type != tt {
		return token.Token{}, unexpectedToken(p.cur, desc)
	}
	t := p.cur
	p.advance()
	return t, nil
}

// parseExpr parses the full expression grammar: the keyword-led forms
// (let, let rec, if, lambda), then binary-operator precedence climbing
// over application chains of atoms, then an optional trailing `: type`
// ascription.
func (p *Parser) parseExpr() (ast.RawExpr, error) {
	e, err := p.parseForm()
	if err != nil {
		return nil, err
	}
	if p.cur.Type == token.COLON {
		at := p.cur.Pos
		p.advance()
		ty, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return ast.RawAscribed{Base: ast.NewBase(at), Expr: e, Type: ty}, nil
	}
	return e, nil
}

func (p *Parser) parseForm() (ast.RawExpr, error) {
	switch p.cur.Type {
	case token.LET:
		return p.parseLet()
	case token.IF:
		return p.parseIf()
	case token.PIPE:
		return p.parseLambda()
	default:
		return p.parseBinary(lowest)
	}
}

func (p *Parser) parseLet() (ast.RawExpr, error) {
	at := p.cur.Pos
	p.advance() // 'let'

	recursive := false
	if p.cur.Type == token.REC {
		recursive = true
		p.advance()
	}

	nameTok, err := p.expect(token.IDENT, "identifier")
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.ASSIGN, "'='"); err != nil {
		return nil, err
	}

	binding, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.IN, "'in'"); err != nil {
		return nil, err
	}

	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	return ast.RawLet{
		Base:      ast.NewBase(at),
		Recursive: recursive,
		Name:      p.in.Intern(nameTok.Literal),
		NameText:  nameTok.Literal,
		Binding:   binding,
		Body:      body,
	}, nil
}

func (p *Parser) parseIf() (ast.RawExpr, error) {
	at := p.cur.Pos
	p.advance() // 'if'

	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.THEN, "'then'"); err != nil {
		return nil, err
	}
	then, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ELSE, "'else'"); err != nil {
		return nil, err
	}
	els, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	return ast.RawIfThenElse{Base: ast.NewBase(at), Cond: cond, Then: then, Else: els}, nil
}

// parseLambda parses `|param[: τ][, param[: τ]]*| body`, desugaring a
// multi-parameter parameter list to a chain of nested single-argument
// RawLambda nodes, per the Open Question decision recorded in
// DESIGN.md: curried single-argument lambdas are canonical, and a
// surface multi-parameter list is sugar resolved here, before scope
// checking ever sees it.
func (p *Parser) parseLambda() (ast.RawExpr, error) {
	at := p.cur.Pos
	p.advance() // '|'

	type param struct {
		name interner.ID
		text string
		ann  *types.Type
	}
	var params []param

	for {
		nameTok, err := p.expect(token.IDENT, "parameter name")
		if err != nil {
			return nil, err
		}
		pr := param{name: p.in.Intern(nameTok.Literal), text: nameTok.Literal}
		if p.cur.Type == token.COLON {
			p.advance()
			ty, err := p.parseType()
			if err != nil {
				return nil, err
			}
			pr.ann = &ty
		}
		params = append(params, pr)

		if p.cur.Type != token.COMMA {
			break
		}
		p.advance()
	}

	if _, err := p.expect(token.PIPE, "'|'"); err != nil {
		return nil, err
	}

	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	for i := len(params) - 1; i >= 0; i-- {
		pr := params[i]
		body = ast.RawLambda{
			Base:       ast.NewBase(at),
			Param:      pr.name,
			ParamText:  pr.text,
			Annotation: pr.ann,
			Body:       body,
		}
	}
	return body, nil
}

// parseBinary implements precedence climbing over the four binary
// operator levels, with each operand parsed by parseApp.
func (p *Parser) parseBinary(prec int) (ast.RawExpr, error) {
	left, err := p.parseApp()
	if err != nil {
		return nil, err
	}

	for {
		opPrec, ok := precedences[p.cur.Type]
		if !ok || opPrec <= prec {
			return left, nil
		}
		opTok := p.cur
		p.advance()
		right, err := p.parseBinary(opPrec)
		if err != nil {
			return nil, err
		}
		left = ast.RawOp{Base: ast.NewBase(opTok.Pos), Left: left, Op: binOps[opTok.Type], Right: right}
	}
}

// parseApp parses a left-associative chain of atom applications:
// `f a b c` is `((f a) b) c`.
func (p *Parser) parseApp() (ast.RawExpr, error) {
	f, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for atomStart[p.cur.Type] {
		at := f.Pos()
		a, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		f = ast.RawApp{Base: ast.NewBase(at), Func: f, Arg: a}
	}
	return f, nil
}

func (p *Parser) parseAtom() (ast.RawExpr, error) {
	at := p.cur.Pos
	switch p.cur.Type {
	case token.NUM:
		lit := p.cur.Literal
		p.advance()
		n, err := parseNum(lit)
		if err != nil {
			return nil, err
		}
		return ast.RawLiteral{Base: ast.NewBase(at), Value: value.Num(n)}, nil
	case token.MINUS:
		// A '-' directly before a number literal is that literal's sign.
		if p.pk.Type != token.NUM {
			return nil, unexpectedToken(p.cur, "an expression")
		}
		p.advance()
		lit := p.cur.Literal
		p.advance()
		n, err := parseNum(lit)
		if err != nil {
			return nil, err
		}
		return ast.RawLiteral{Base: ast.NewBase(at), Value: value.Num(-n)}, nil
	case token.TRUE:
		p.advance()
		return ast.RawLiteral{Base: ast.NewBase(at), Value: value.Bool(true)}, nil
	case token.FALSE:
		p.advance()
		return ast.RawLiteral{Base: ast.NewBase(at), Value: value.Bool(false)}, nil
	case token.IDENT:
		text := p.cur.Literal
		p.advance()
		return ast.RawVar{Base: ast.NewBase(at), Name: p.in.Intern(text), Text: text}, nil
	case token.LPAREN:
		p.advance()
		if p.cur.Type == token.RPAREN {
			p.advance()
			return ast.RawLiteral{Base: ast.NewBase(at), Value: value.Unit{}}, nil
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN, "')'"); err != nil {
			return nil, err
		}
		return e, nil
	case token.ILLEGAL:
		return nil, invalidToken(p.cur)
	default:
		return nil, unexpectedToken(p.cur, "an expression")
	}
}

func parseNum(lit string) (float64, error) {
	var f float64
	if _, err := fmt.Sscanf(lit, "%g", &f); err != nil {
		return 0, fmt.Errorf("parser: malformed numeric literal %q", lit)
	}
	return f, nil
}

// parseType parses the type grammar: primitive names, parenthesised
// types, and the right-associative arrow.
func (p *Parser) parseType() (types.Type, error) {
	left, err := p.parseTypeAtom()
	if err != nil {
		return types.Type{}, err
	}
	if p.cur.Type == token.ARROW {
		p.advance()
		right, err := p.parseType()
		if err != nil {
			return types.Type{}, err
		}
		return types.NewArrow(left, right), nil
	}
	return left, nil
}

func (p *Parser) parseTypeAtom() (types.Type, error) {
	switch p.cur.Type {
	case token.LPAREN:
		p.advance()
		ty, err := p.parseType()
		if err != nil {
			return types.Type{}, err
		}
		if _, err := p.expect(token.RPAREN, "')'"); err != nil {
			return types.Type{}, err
		}
		return ty, nil
	case token.IDENT:
		name := p.cur.Literal
		p.advance()
		switch name {
		case "Num":
			return types.NewPrimitive(types.Num), nil
		case "Bool":
			return types.NewPrimitive(types.Bool), nil
		case "Unit":
			return types.NewPrimitive(types.Unit), nil
		default:
			return types.Type{}, unexpectedToken(token.Token{Type: token.IDENT, Literal: name}, "Num, Bool, or Unit")
		}
	default:
		return types.Type{}, unexpectedToken(p.cur, "a type")
	}
}
