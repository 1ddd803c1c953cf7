// Package lexer implements cash's single-pass tokenizer. It is grounded on
// original_source/src/parser/lexer.c (the leading-number/redirection
// backtrack, the quote and substitution state machine) generalized to the
// richer redirection grammar SPEC_FULL.md adds (>>, <>, >&N, &>, &>>).
package lexer

import (
	"strconv"

	"github.com/cash-shell/cash/internal/redir"
	"github.com/cash-shell/cash/internal/word"
)

// punctuation mirrors the original's kPunctuation table: bytes that end a
// word and must not be swallowed by the default literal-run branch.
var punctuation = [128]bool{
	'>': true, '|': true, '<': true, '(': true, ')': true,
	'\'': true, '"': true, ';': true, '&': true, '`': true,
	'$': true, '\t': true, '\n': true, '\r': true, ' ': true,
}

func isPunct(c byte) bool {
	return c < 128 && punctuation[c]
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isNameByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// Lexer tokenizes a byte buffer. It is cheap to construct and Reset lets a
// caller reuse one across REPL lines without reallocating.
type Lexer struct {
	input []byte
	pos   int

	tokenStart int

	line, col int // position of the next byte to be consumed
	firstLine  int
	firstCol   int

	err bool
}

// New constructs a Lexer over input. input is not copied; the caller must
// not mutate it while tokens referencing it are in use.
func New(input []byte) *Lexer {
	l := &Lexer{}
	l.Reset(input)
	return l
}

// Reset rebinds the lexer to a new input buffer without reallocating any
// internal queues, mirroring reset_lexer in the original.
func (l *Lexer) Reset(input []byte) {
	l.input = input
	l.pos = 0
	l.tokenStart = 0
	l.line, l.col = 1, 1
	l.firstLine, l.firstCol = 1, 1
	l.err = false
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) peek() byte {
	if l.atEnd() {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekAt(off int) byte {
	p := l.pos + off
	if p >= len(l.input) {
		return 0
	}
	return l.input[p]
}

func (l *Lexer) advance() byte {
	if l.atEnd() {
		return 0
	}
	c := l.input[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

func (l *Lexer) skipWS() {
	for !l.atEnd() {
		c := l.peek()
		if c == ' ' || c == '\t' || c == '\r' {
			l.advance()
			continue
		}
		break
	}
}

// Next returns the next token. Once an ERROR or EOF token has been
// returned, every subsequent call returns EOF again.
func (l *Lexer) Next() Token {
	if l.err {
		return l.eofToken()
	}
	return l.lex()
}

// TokenizeAll pre-tokenizes the entire buffer, stopping after (and
// including) the first EOF or ERROR token. The parser pulls tokens one at
// a time through Next; TokenizeAll is used by the lexer's own tests.
func (l *Lexer) TokenizeAll() []Token {
	var toks []Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Type == EOF || tok.Type == ERROR {
			break
		}
	}
	return toks
}

func (l *Lexer) lex() Token {
	l.skipWS()
	l.firstLine, l.firstCol = l.line, l.col
	l.tokenStart = l.pos

	if l.atEnd() {
		return l.eofToken()
	}

	c := l.peek()

	if isDigit(c) {
		backtrack := l.pos
		for isDigit(l.peek()) {
			l.advance()
		}
		if l.peek() == '>' || l.peek() == '<' {
			leftFD, _ := strconv.Atoi(string(l.input[backtrack:l.pos]))
			return l.finishRedirect(leftFD, true)
		}
		l.pos = backtrack
		l.line, l.col = l.firstLine, l.firstCol
		return l.consumeWord()
	}

	switch c {
	case '(':
		l.advance()
		return l.makeToken(LPAREN)
	case ')':
		l.advance()
		return l.makeToken(RPAREN)
	case ';':
		l.advance()
		return l.makeToken(SEMICOLON)
	case '!':
		l.advance()
		return l.makeToken(NOT)
	case '\n':
		return l.consumeLines()
	case '&':
		l.advance()
		switch l.peek() {
		case '&':
			l.advance()
			return l.makeToken(AND)
		case '>':
			return l.finishAmpRedirect()
		default:
			return l.makeToken(AMP)
		}
	case '|':
		l.advance()
		if l.peek() == '|' {
			l.advance()
			return l.makeToken(OR)
		}
		return l.makeToken(PIPE)
	case '>', '<':
		return l.finishRedirect(-1, false)
	default:
		return l.consumeWord()
	}
}

// finishRedirect parses the punctuation suffix of a '<' or '>' operator;
// the cursor is positioned at the operator itself.
func (l *Lexer) finishRedirect(leftFD int, hasLeft bool) Token {
	op := l.advance()
	switch op {
	case '<':
		if l.peek() == '>' {
			l.advance()
			return l.makeRedirectToken(redir.InOut, leftFD, hasLeft, -1)
		}
		return l.makeRedirectToken(redir.In, leftFD, hasLeft, -1)
	case '>':
		if l.peek() == '>' {
			l.advance()
			return l.makeRedirectToken(redir.AppendOut, leftFD, hasLeft, -1)
		}
		if l.peek() == '&' {
			l.advance()
			right, ok := l.consumeDigits()
			if !ok {
				return l.errorToken()
			}
			return l.makeRedirectToken(redir.DupOut, leftFD, hasLeft, right)
		}
		return l.makeRedirectToken(redir.Out, leftFD, hasLeft, -1)
	}
	return l.errorToken()
}

// finishAmpRedirect handles '&>' and '&>>'; the cursor is positioned right
// after the '&', at the '>'.
func (l *Lexer) finishAmpRedirect() Token {
	l.advance() // '>'
	if l.peek() == '>' {
		l.advance()
		return l.makeRedirectToken(redir.AppendOutErr, -1, false, -1)
	}
	return l.makeRedirectToken(redir.OutErr, -1, false, -1)
}

func (l *Lexer) consumeDigits() (int, bool) {
	start := l.pos
	for isDigit(l.peek()) {
		l.advance()
	}
	if l.pos == start {
		return 0, false
	}
	n, err := strconv.Atoi(string(l.input[start:l.pos]))
	if err != nil {
		return 0, false
	}
	return n, true
}

func (l *Lexer) consumeLines() Token {
	for {
		l.advance() // '\n'
		l.skipWS()
		if l.peek() != '\n' {
			break
		}
	}
	tok := l.makeToken(LINE_BREAK)
	tok.LastLine = tok.FirstLine + 1
	tok.LastColumn = 1
	return tok
}

func (l *Lexer) consumeWord() Token {
	w := word.Empty()
	for {
		if l.err {
			return l.errorToken()
		}
		c := l.peek()
		switch {
		case c == '\'':
			l.consumeSQ(&w)
		case c == '"':
			l.advance()
			l.consumeDQ(&w)
		case c == '$':
			l.consumeSub(&w)
		case !l.atEnd() && !isPunct(c):
			l.consumeLiteral(&w)
		default:
			tok := l.makeToken(WORD)
			tok.Word = w
			return tok
		}
	}
}

func (l *Lexer) consumeLiteral(w *word.Word) {
	start := l.pos
	escapes := 0
	for !l.atEnd() && !isPunct(l.peek()) {
		if l.peek() == '\\' {
			escapes++
			l.advance()
		}
		l.advance()
	}
	w.PushLiteral(word.Literal, l.input[start:l.pos], escapes)
}

func (l *Lexer) consumeSQ(w *word.Word) {
	l.advance() // opening '
	start := l.pos
	for !l.atEnd() && l.peek() != '\'' {
		l.advance()
	}
	if l.atEnd() {
		l.err = true
		return
	}
	w.PushLiteral(word.SQuoted, l.input[start:l.pos], 0)
	l.advance() // closing '
}

// consumeDQ consumes the body of a double-quoted string; the opening quote
// has already been consumed by the caller. Embedded $ substitutions split
// the quoted text into alternating DQuoted/VarSub components, flattening
// the original's substitution_in_quotes state machine into one loop.
func (l *Lexer) consumeDQ(w *word.Word) {
	start := l.pos
	escapes := 0
	for {
		if l.atEnd() {
			l.err = true
			return
		}
		switch l.peek() {
		case '"':
			w.PushLiteral(word.DQuoted, l.input[start:l.pos], escapes)
			l.advance()
			return
		case '$':
			w.PushLiteral(word.DQuoted, l.input[start:l.pos], escapes)
			l.consumeSub(w)
			start = l.pos
			escapes = 0
		case '\\':
			l.advance()
			escapes++
			l.advance()
		default:
			l.advance()
		}
	}
}

func (l *Lexer) consumeSub(w *word.Word) {
	l.advance() // '$'
	switch l.peek() {
	case '?', '#':
		name := l.peek()
		l.advance()
		w.PushSub(word.VarSub, []byte{name})
		return
	}
	start := l.pos
	for !l.atEnd() && isNameByte(l.peek()) {
		l.advance()
	}
	w.PushSub(word.VarSub, l.input[start:l.pos])
}

func (l *Lexer) makeToken(t Type) Token {
	return Token{
		Type:        t,
		FirstLine:   l.firstLine,
		FirstColumn: l.firstCol,
		LastLine:    l.line,
		LastColumn:  l.col,
		Start:       l.tokenStart,
		End:         l.pos,
	}
}

func (l *Lexer) makeRedirectToken(kind redir.Kind, leftFD int, hasLeft bool, rightFD int) Token {
	if !hasLeft {
		leftFD = kind.DefaultLeftFD()
	}
	tok := l.makeToken(REDIRECT)
	tok.RedirKind = kind
	tok.RedirLeft = leftFD
	tok.RedirRight = rightFD
	return tok
}

func (l *Lexer) errorToken() Token {
	l.err = true
	tok := l.makeToken(ERROR)
	return tok
}

func (l *Lexer) eofToken() Token {
	return Token{
		Type:        EOF,
		FirstLine:   l.firstLine,
		FirstColumn: l.firstCol,
		LastLine:    l.line,
		LastColumn:  l.col,
		Start:       l.pos,
		End:         l.pos,
	}
}
