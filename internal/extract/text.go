// Package extract turns document text and tables into the structured invoice
// result: regex field parsing, table cleaning and classification,
// category-specific table extraction, merging and sanitization.
package extract

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

var spaceReplacer = strings.NewReplacer(
	"\u00a0", " ", // no-break space
	"\u202f", " ", // narrow no-break space
	"\u2007", " ", // figure space
	"\u200b", "", // zero width space
	"\ufeff", "",
)

// NormalizeText composes Unicode (NFC) and turns the no-break and zero-width
// spaces common in PDF and OCR output into plain spaces.
func NormalizeText(s string) string {
	return spaceReplacer.Replace(norm.NFC.String(s))
}

// keyText prepares text for keyword matching: compatibility-folded,
// lower-cased, with ё folded into е.
func keyText(s string) string {
	s = strings.ToLower(norm.NFKC.String(NormalizeText(s)))
	return strings.ReplaceAll(s, "ё", "е")
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
