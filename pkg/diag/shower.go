package diag

import (
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/mattn/go-isatty"
)

// Shower wraps the Show function.
type Shower interface {
	// Show takes an indentation string and shows.
	Show(indent string) string
}

var sgrPattern = regexp.MustCompile("\033\\[[0-9;]*m")

// ShowError shows an error to w. It uses the Show method if the error
// implements Shower, and the plain error message otherwise. Styling escape
// sequences are only kept when w is a terminal.
func ShowError(w io.Writer, err error) {
	var s string
	if shower, ok := err.(Shower); ok {
		s = shower.Show("")
	} else {
		s = messageStart + err.Error() + messageEnd
	}
	if !IsTerminal(w) {
		s = StripStyle(s)
	}
	fmt.Fprintln(w, s)
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// StripStyle removes SGR escape sequences from s.
func StripStyle(s string) string {
	return sgrPattern.ReplaceAllString(s, "")
}
