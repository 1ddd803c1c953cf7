// Package word implements the ShellString word model: an ordered sequence
// of literal, quoted, and substitution components assembled by the lexer
// and later collapsed into a single byte string by the expander.
package word

// Kind identifies the flavor of a single word component.
type Kind int

const (
	Literal Kind = iota
	DQuoted
	SQuoted
	VarSub
	BracedSub
	CmdSub
)

// Component is one piece of a Word. Bytes holds the raw source text for
// Literal/DQuoted/SQuoted components; Name holds the substitution name for
// VarSub/BracedSub/CmdSub components.
type Component struct {
	Kind    Kind
	Bytes   []byte
	Escapes int
	Name    string
}

// Word is an immutable-after-construction sequence of components. The
// lexer is the only writer; every other package treats it as read-only.
type Word struct {
	Components []Component
}

// Empty returns a Word with no components (expands to the empty string).
func Empty() Word {
	return Word{}
}

// PushLiteral appends a Literal, DQuoted, or SQuoted component. The source
// bytes are copied so the Word no longer references the lexer's input
// buffer.
func (w *Word) PushLiteral(kind Kind, b []byte, escapes int) {
	cp := make([]byte, len(b))
	copy(cp, b)
	w.Components = append(w.Components, Component{Kind: kind, Bytes: cp, Escapes: escapes})
}

// PushSub appends a VarSub, BracedSub, or CmdSub component.
func (w *Word) PushSub(kind Kind, name []byte) {
	w.Components = append(w.Components, Component{Kind: kind, Name: string(name)})
}

// Empty reports whether the word has no components at all (as opposed to
// expanding to an empty string, which a single empty VarSub can also do).
func (w Word) Empty() bool {
	return len(w.Components) == 0
}
