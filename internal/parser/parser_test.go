package parser

import (
	"testing"

	"github.com/cash-shell/cash/internal/redir"
)

func parseOK(t *testing.T, src string) *Program {
	t.Helper()
	prog, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse(%q): unexpected error: %v", src, err)
	}
	return prog
}

func TestParseSimpleCommand(t *testing.T) {
	prog := parseOK(t, "echo hello world")
	if len(prog.Statements) != 1 {
		t.Fatalf("got %d statements, want 1", len(prog.Statements))
	}
	e := prog.Statements[0].Expr
	if e.Kind != ExprCommand {
		t.Fatalf("kind = %v, want ExprCommand", e.Kind)
	}
	if !e.Command.HasName {
		t.Fatalf("command has no name")
	}
	if len(e.Command.Args) != 2 {
		t.Fatalf("got %d args, want 2", len(e.Command.Args))
	}
}

func TestParsePipeline(t *testing.T) {
	prog := parseOK(t, "a | b | c")
	e := prog.Statements[0].Expr
	if e.Kind != ExprPipeline {
		t.Fatalf("kind = %v, want ExprPipeline", e.Kind)
	}
	// Left-associative: ((a|b)|c)
	if e.Right.Kind != ExprCommand {
		t.Fatalf("rightmost stage kind = %v, want ExprCommand", e.Right.Kind)
	}
	if e.Left.Kind != ExprPipeline {
		t.Fatalf("left stage kind = %v, want ExprPipeline", e.Left.Kind)
	}
}

func TestParseAndOr(t *testing.T) {
	prog := parseOK(t, "a && b || c")
	e := prog.Statements[0].Expr
	// Left-associative over AND/OR at one precedence level: ((a&&b)||c)
	if e.Kind != ExprOr {
		t.Fatalf("kind = %v, want ExprOr", e.Kind)
	}
	if e.Left.Kind != ExprAnd {
		t.Fatalf("left kind = %v, want ExprAnd", e.Left.Kind)
	}
}

func TestParseNot(t *testing.T) {
	prog := parseOK(t, "! a")
	e := prog.Statements[0].Expr
	if e.Kind != ExprNot {
		t.Fatalf("kind = %v, want ExprNot", e.Kind)
	}
	if e.Left.Kind != ExprCommand {
		t.Fatalf("left kind = %v, want ExprCommand", e.Left.Kind)
	}
}

func TestParseBackgroundFlagOnOutermostExprOnly(t *testing.T) {
	prog := parseOK(t, "a && b &")
	e := prog.Statements[0].Expr
	if !e.Background {
		t.Fatalf("outermost expr should carry Background=true")
	}
	if e.Left.Background {
		t.Fatalf("nested left expr should not carry its own Background flag")
	}
}

func TestParseSubshell(t *testing.T) {
	prog := parseOK(t, "( echo a ; echo b )")
	e := prog.Statements[0].Expr
	if e.Kind != ExprSubshell {
		t.Fatalf("kind = %v, want ExprSubshell", e.Kind)
	}
	if e.Subshell == nil || len(e.Subshell.Statements) != 2 {
		t.Fatalf("subshell program = %+v, want 2 statements", e.Subshell)
	}
}

func TestParseSubshellInPipeline(t *testing.T) {
	// spec.md's worked E2E scenario: a subshell as a pipeline stage.
	prog := parseOK(t, "( echo a ; echo b ) | wc -l")
	e := prog.Statements[0].Expr
	if e.Kind != ExprPipeline {
		t.Fatalf("kind = %v, want ExprPipeline", e.Kind)
	}
	if e.Left.Kind != ExprSubshell {
		t.Fatalf("left stage kind = %v, want ExprSubshell", e.Left.Kind)
	}
	if e.Right.Kind != ExprCommand {
		t.Fatalf("right stage kind = %v, want ExprCommand", e.Right.Kind)
	}
}

func TestParseRedirections(t *testing.T) {
	prog := parseOK(t, "cmd < in > out 2>&1")
	cmd := prog.Statements[0].Expr.Command
	if len(cmd.Redirs) != 3 {
		t.Fatalf("got %d redirs, want 3", len(cmd.Redirs))
	}
	if cmd.Redirs[0].Kind != redir.In || !cmd.Redirs[0].HasFile {
		t.Fatalf("redir 0 = %+v", cmd.Redirs[0])
	}
	if cmd.Redirs[1].Kind != redir.Out || !cmd.Redirs[1].HasFile {
		t.Fatalf("redir 1 = %+v", cmd.Redirs[1])
	}
	if cmd.Redirs[2].Kind != redir.DupOut || cmd.Redirs[2].HasFile {
		t.Fatalf("redir 2 = %+v", cmd.Redirs[2])
	}
	if cmd.Redirs[2].LeftFD != 2 || cmd.Redirs[2].RightFD != 1 {
		t.Fatalf("redir 2 fds = %d,%d, want 2,1", cmd.Redirs[2].LeftFD, cmd.Redirs[2].RightFD)
	}
}

func TestParseBareRedirectionNoName(t *testing.T) {
	prog := parseOK(t, "> out")
	cmd := prog.Statements[0].Expr.Command
	if cmd.HasName {
		t.Fatalf("expected no command name")
	}
	if len(cmd.Redirs) != 1 {
		t.Fatalf("got %d redirs, want 1", len(cmd.Redirs))
	}
	if cmd.IsEmpty() {
		t.Fatalf("a bare redirection is not an empty command")
	}
}

func TestParseMultipleStatements(t *testing.T) {
	prog := parseOK(t, "a; b\nc")
	if len(prog.Statements) != 3 {
		t.Fatalf("got %d statements, want 3", len(prog.Statements))
	}
}

func TestEmptyCommandRejectedAsAndOrOperand(t *testing.T) {
	_, err := Parse([]byte("&& b"))
	if err == nil {
		t.Fatalf("expected an error for an empty left operand of &&")
	}
}

func TestEmptyCommandRejectedAsPipelineOperand(t *testing.T) {
	_, err := Parse([]byte("| b"))
	if err == nil {
		t.Fatalf("expected an error for an empty left operand of |")
	}
}

func TestEmptyCommandRejectedAsNotOperand(t *testing.T) {
	_, err := Parse([]byte("! ;"))
	if err == nil {
		t.Fatalf("expected an error for an empty operand of !")
	}
}

func TestUnterminatedSubshellIsAnError(t *testing.T) {
	_, err := Parse([]byte("( echo a"))
	if err == nil {
		t.Fatalf("expected an error for an unterminated subshell group")
	}
}

func TestStrayCloseParenIsAnError(t *testing.T) {
	_, err := Parse([]byte("echo a )"))
	if err == nil {
		t.Fatalf("expected an error for a stray ')' outside a subshell")
	}
}

func TestRedirectionWithoutFilenameIsAnError(t *testing.T) {
	_, err := Parse([]byte("cmd >"))
	if err == nil {
		t.Fatalf("expected an error for a redirection with no filename")
	}
}

func TestTextSpanCoversSourceSlice(t *testing.T) {
	src := "a && b"
	prog := parseOK(t, src)
	e := prog.Statements[0].Expr
	if e.Text != src {
		t.Fatalf("Text = %q, want %q", e.Text, src)
	}
}

func TestEmptyProgramParsesToNoStatements(t *testing.T) {
	prog := parseOK(t, "")
	if len(prog.Statements) != 0 {
		t.Fatalf("got %d statements, want 0", len(prog.Statements))
	}
}

func TestBlankLinesOnlyParsesToOneEmptyStatement(t *testing.T) {
	// A line break alone parses as a single empty-command statement (an
	// empty command is rejected as an operand of &&/||/!/|, or when more
	// input follows it).
	prog := parseOK(t, "\n\n\n")
	if len(prog.Statements) != 1 {
		t.Fatalf("got %d statements, want 1", len(prog.Statements))
	}
	if !prog.Statements[0].Expr.IsEmptyCommand() {
		t.Fatalf("expected the lone statement to be an empty command")
	}
}
