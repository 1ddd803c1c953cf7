// Package redir defines the redirection kinds shared by the lexer, parser,
// interpreter and job manager.
package redir

import "os"

// Kind identifies the shape of a single redirection operator.
type Kind int

const (
	In Kind = iota
	Out
	InOut
	OutErr
	AppendOut
	AppendOutErr
	DupOut
)

func (k Kind) String() string {
	switch k {
	case In:
		return "<"
	case Out:
		return ">"
	case InOut:
		return "<>"
	case OutErr:
		return "&>"
	case AppendOut:
		return ">>"
	case AppendOutErr:
		return "&>>"
	case DupOut:
		return ">&"
	default:
		return "?"
	}
}

// DefaultLeftFD returns the file descriptor a redirection of this kind
// targets when no explicit left-hand descriptor was written.
func (k Kind) DefaultLeftFD() int {
	switch k {
	case In, InOut:
		return 0
	default:
		return 1
	}
}

// OpenFlags converts a redirection kind that takes a filename into the
// os.OpenFile flags and permission bits used to realize it.
func OpenFlags(k Kind) (flag int, perm os.FileMode, ok bool) {
	switch k {
	case In:
		return os.O_RDONLY, 0644, true
	case Out, OutErr:
		return os.O_WRONLY | os.O_CREATE | os.O_TRUNC, 0644, true
	case AppendOut, AppendOutErr:
		return os.O_WRONLY | os.O_CREATE | os.O_APPEND, 0644, true
	case InOut:
		return os.O_RDWR | os.O_CREATE, 0644, true
	case DupOut:
		return 0, 0, false
	default:
		return 0, 0, false
	}
}
