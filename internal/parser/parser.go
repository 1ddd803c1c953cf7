package parser

import (
	"errors"
	"fmt"

	"github.com/cash-shell/cash/internal/lexer"
	"github.com/cash-shell/cash/internal/redir"
)

var (
	errEmptyCommand      = errors.New("empty command")
	errEmptyPipeline     = errors.New("empty command in pipeline")
	errEmptyAndOr        = errors.New("empty command in AND/OR list")
	errLex               = errors.New("lex error")
	errUnterminatedGroup = errors.New("unexpected end of input, unterminated '('")
)

// Parser is a recursive-descent parser with two-token lookahead over a
// Lexer. A Parser reused for a nested "( ... )" group becomes a subparser
// by flipping isSub around the nested parseProgram call; it shares the
// same Lexer cursor, matching the original's subparser-shares-the-lexer
// design without needing a separate struct.
type Parser struct {
	lx      *lexer.Lexer
	input   []byte
	current lexer.Token
	next    lexer.Token
	isSub   bool
}

// New constructs a Parser over input and primes its two-token lookahead.
func New(input []byte) *Parser {
	p := &Parser{lx: lexer.New(input), input: input}
	p.current = p.lx.Next()
	p.next = p.lx.Next()
	return p
}

// Parse parses the entire input as a top-level Program.
func Parse(input []byte) (*Program, error) {
	return New(input).Parse()
}

// Parse runs the parser to completion, returning the first error
// encountered (parsing is not resumed after an error, matching the
// original's sticky error flag).
func (p *Parser) Parse() (*Program, error) {
	return p.parseProgram()
}

func (p *Parser) parseProgram() (*Program, error) {
	prog := &Program{}
	for p.current.Type != lexer.EOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		prog.Statements = append(prog.Statements, *stmt)
		if p.current.Type == lexer.RPAREN && p.isSub {
			break
		}
	}
	return prog, nil
}

func (p *Parser) parseStatement() (*Statement, error) {
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if expr.IsEmptyCommand() {
		if err := p.skipTerminators(); err != nil {
			return nil, err
		}
		if p.current.Type != lexer.EOF {
			return nil, errEmptyCommand
		}
		return &Statement{Expr: *expr}, nil
	}

	if p.isSub && p.current.Type == lexer.RPAREN {
		return &Statement{Expr: *expr}, nil
	}

	if err := p.skipTerminators(); err != nil {
		return nil, err
	}
	return &Statement{Expr: *expr}, nil
}

func (p *Parser) skipTerminators() error {
	for p.current.Type == lexer.LINE_BREAK || p.current.Type == lexer.SEMICOLON {
		if _, err := p.advance(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) parseExpr() (*Expr, error) {
	left, err := p.parseNotExpr()
	if err != nil {
		return nil, err
	}

	var begin int
	haveBegin := false
	for p.current.Type == lexer.AND || p.current.Type == lexer.OR {
		tok := p.current
		if left.IsEmptyCommand() {
			return nil, errEmptyAndOr
		}
		if !haveBegin {
			begin = left.Span.Start
			haveBegin = true
		}
		if _, err := p.advance(); err != nil {
			return nil, err
		}

		right, err := p.parseNotExpr()
		if err != nil {
			return nil, err
		}
		if right.IsEmptyCommand() {
			return nil, errEmptyAndOr
		}

		kind := ExprAnd
		if tok.Type == lexer.OR {
			kind = ExprOr
		}
		end := right.Span.End
		left = &Expr{
			Kind:  kind,
			Left:  left,
			Right: right,
			Span:  Span{begin, end},
			Text:  string(p.input[begin:end]),
		}
	}

	if p.current.Type == lexer.AMP {
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		left.Background = true
	}
	return left, nil
}

func (p *Parser) parseNotExpr() (*Expr, error) {
	begin := p.current.Start
	isNot := false
	if p.current.Type == lexer.NOT {
		isNot = true
		if _, err := p.advance(); err != nil {
			return nil, err
		}
	}

	sub, err := p.parsePipeline()
	if err != nil {
		return nil, err
	}
	if !isNot {
		return sub, nil
	}
	if sub.IsEmptyCommand() {
		return nil, errEmptyCommand
	}
	end := sub.Span.End
	return &Expr{
		Kind: ExprNot,
		Left: sub,
		Span: Span{begin, end},
		Text: string(p.input[begin:end]),
	}, nil
}

func (p *Parser) parsePipeline() (*Expr, error) {
	begin := p.current.Start
	left, err := p.parseTerminal()
	if err != nil {
		return nil, err
	}

	for p.current.Type == lexer.PIPE {
		if left.IsEmptyCommand() {
			return nil, errEmptyPipeline
		}
		if _, err := p.advance(); err != nil {
			return nil, err
		}

		right, err := p.parseTerminal()
		if err != nil {
			return nil, err
		}
		if right.IsEmptyCommand() {
			return nil, errEmptyPipeline
		}

		end := right.Span.End
		left = &Expr{
			Kind:  ExprPipeline,
			Left:  left,
			Right: right,
			Span:  Span{begin, end},
			Text:  string(p.input[begin:end]),
		}
	}
	return left, nil
}

func (p *Parser) parseTerminal() (*Expr, error) {
	if p.current.Type == lexer.LPAREN {
		return p.parseSubshell()
	}
	return p.parseCommand()
}

func (p *Parser) parseSubshell() (*Expr, error) {
	begin := p.current.Start
	if _, err := p.advance(); err != nil { // consume '('
		return nil, err
	}

	wasSub := p.isSub
	p.isSub = true
	prog, err := p.parseProgram()
	p.isSub = wasSub
	if err != nil {
		return nil, err
	}

	if p.current.Type != lexer.RPAREN {
		return nil, errUnterminatedGroup
	}
	end := p.current.End
	if _, err := p.advance(); err != nil { // consume ')'
		return nil, err
	}

	return &Expr{
		Kind:     ExprSubshell,
		Subshell: prog,
		Span:     Span{begin, end},
		Text:     string(p.input[begin:end]),
	}, nil
}

func (p *Parser) parseCommand() (*Expr, error) {
	var cmd Command
	begin := p.current.Start
	end := begin

loop:
	for p.current.Type != lexer.EOF {
		switch p.current.Type {
		case lexer.WORD:
			tok := p.current
			end = tok.End
			if !cmd.HasName {
				cmd.Name = tok.Word
				cmd.HasName = true
			} else {
				cmd.Args = append(cmd.Args, tok.Word)
			}
			if _, err := p.advance(); err != nil {
				return nil, err
			}

		case lexer.REDIRECT:
			tok := p.current
			if _, err := p.advance(); err != nil {
				return nil, err
			}
			if err := p.parseRedirection(&cmd, tok, &end); err != nil {
				return nil, err
			}

		case lexer.RPAREN:
			if !p.isSub {
				return nil, fmt.Errorf("unexpected ')'")
			}
			break loop

		case lexer.PIPE, lexer.AND, lexer.OR, lexer.SEMICOLON, lexer.LINE_BREAK, lexer.AMP:
			break loop

		case lexer.ERROR:
			return nil, errLex

		default:
			return nil, fmt.Errorf("unexpected token %s", p.current.Type)
		}
	}

	return &Expr{
		Kind:    ExprCommand,
		Command: cmd,
		Span:    Span{begin, end},
		Text:    string(p.input[begin:end]),
	}, nil
}

func (p *Parser) parseRedirection(cmd *Command, tok lexer.Token, end *int) error {
	r := Redirection{Kind: tok.RedirKind, LeftFD: tok.RedirLeft, RightFD: -1}
	*end = tok.End

	if tok.RedirKind == redir.DupOut {
		r.RightFD = tok.RedirRight
	} else {
		if p.current.Type != lexer.WORD {
			return fmt.Errorf("expected filename after redirection")
		}
		fnTok := p.current
		r.FileName = fnTok.Word
		r.HasFile = true
		*end = fnTok.End
		if _, err := p.advance(); err != nil {
			return err
		}
	}

	cmd.Redirs = append(cmd.Redirs, r)
	return nil
}

func (p *Parser) advance() (lexer.Token, error) {
	cur := p.current
	if cur.Type == lexer.ERROR {
		return cur, errLex
	}
	if cur.Type != lexer.EOF {
		p.current = p.next
		p.next = p.lx.Next()
	}
	return cur, nil
}
