package textutil

import "golang.org/x/text/width"

// FoldWidth maps full-width ASCII variants (ＳＳＩＳ－６９８) to their narrow
// forms and half-width katakana to full-width, leaving everything else intact.
func FoldWidth(value string) string {
	return width.Fold.String(value)
}
