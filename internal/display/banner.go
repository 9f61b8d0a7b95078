package display

import (
	"fmt"
	"io"

	"github.com/backmassage/dvstamp/internal/term"
)

// PrintBanner prints the ASCII art banner; uses Magenta if colors are enabled.
func PrintBanner(w io.Writer) {
	fmt.Fprint(w, term.Magenta)
	fmt.Fprint(w, `     _              _
  __| |_   _____| |_ __ _ _ __ ___  _ __
 / _`+"`"+` \ \ / / __| __/ _`+"`"+` | '_ `+"`"+` _ \| '_ \
| (_| |\ V /\__ \ || (_| | | | | | | |_) |
 \__,_| \_/ |___/\__\__,_|_| |_| |_| .__/
                                   |_|
`)
	if term.Enabled() {
		fmt.Fprintln(w, term.NC)
	}
}
