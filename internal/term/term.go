// Package term wraps the termios and tcsetpgrp/tcgetpgrp primitives the
// job manager needs to hand the controlling terminal back and forth
// between the shell and its foreground job. Grounded on
// golang.org/x/sys/unix's ioctl wrappers, the same package other_examples'
// raw-mode terminal tooling builds on.
package term

import "golang.org/x/sys/unix"

// GetAttr snapshots the terminal's current attributes (tcgetattr).
func GetAttr(fd int) (*unix.Termios, error) {
	return unix.IoctlGetTermios(fd, unix.TCGETS)
}

// SetAttr restores previously-saved terminal attributes (tcsetattr,
// TCSADRAIN semantics).
func SetAttr(fd int, t *unix.Termios) error {
	return unix.IoctlSetTermios(fd, unix.TCSETSW, t)
}

// GetForegroundPGID is tcgetpgrp(fd).
func GetForegroundPGID(fd int) (int, error) {
	return unix.IoctlGetInt(fd, unix.TIOCGPGRP)
}

// SetForegroundPGID is tcsetpgrp(fd, pgid).
func SetForegroundPGID(fd int, pgid int) error {
	return unix.IoctlSetPointerInt(fd, unix.TIOCSPGRP, pgid)
}
