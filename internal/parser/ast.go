// Package parser implements cash's recursive-descent parser, grounded on
// original_source/src/parser/parser.c for the grammar's empty-command
// rejection rules and subshell sub-parsing, generalized to SPEC_FULL.md's
// richer redirection and word grammar.
package parser

import (
	"github.com/cash-shell/cash/internal/redir"
	"github.com/cash-shell/cash/internal/word"
)

// ExprKind discriminates the Expr sum type.
type ExprKind int

const (
	ExprCommand ExprKind = iota
	ExprSubshell
	ExprPipeline
	ExprAnd
	ExprOr
	ExprNot
)

// Span is a byte-offset range into the original input.
type Span struct {
	Start, End int
}

// Redirection is a single parsed redirection: exactly one of RightFD (>= 0)
// or HasFile is set.
type Redirection struct {
	Kind     redir.Kind
	LeftFD   int
	RightFD  int // -1 if absent
	FileName word.Word
	HasFile  bool
}

// Command is a name word, its arguments, and any redirections. Name may be
// absent (HasName == false) when the command consists only of
// redirections.
type Command struct {
	Name    word.Word
	HasName bool
	Args    []word.Word
	Redirs  []Redirection
}

// IsEmpty reports whether the command has neither a name nor redirections
// — the shape the grammar rejects as an operand of &&/||/|.
func (c Command) IsEmpty() bool {
	return !c.HasName && len(c.Redirs) == 0
}

// Expr is the AST sum type: Command, Subshell, Pipeline, And, Or, Not.
// Pipeline/And/Or use Left/Right; Not uses Left only; Subshell uses
// Program; Command uses Command.
type Expr struct {
	Kind       ExprKind
	Background bool
	Span       Span
	Text       string // source text covering Span, used as a job label

	Command  Command
	Subshell *Program

	Left, Right *Expr
}

// IsEmptyCommand reports whether e is an ExprCommand wrapping an empty
// Command (see Command.IsEmpty), the shape rejected as a pipeline/AND-OR
// operand.
func (e *Expr) IsEmptyCommand() bool {
	return e.Kind == ExprCommand && e.Command.IsEmpty()
}

// Statement is a single top-level (or subshell-level) expression.
type Statement struct {
	Expr Expr
}

// Program is an ordered list of statements.
type Program struct {
	Statements []Statement
}
