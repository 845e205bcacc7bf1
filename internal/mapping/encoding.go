package mapping

import (
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// Representable reports whether s survives a round trip through the narrow
// code page (Windows-1252). Text is NFC-normalized first, since composed
// forms are the ones the code page can hold.
func Representable(s string) bool {
	_, err := charmap.Windows1252.NewEncoder().String(norm.NFC.String(s))
	return err == nil
}
