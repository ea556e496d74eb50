package ocr

import (
	"regexp"
	"strings"
)

var (
	reDate   = regexp.MustCompile(`\b\d{2}\.\d{2}\.\d{4}\b`)
	reCurr   = regexp.MustCompile(`руб|₽|\brub\b`)
	reAmount = regexp.MustCompile(`\d+[.,]\d{2}\b|\d{1,3}(?: \d{3})+`)
	reTaxID  = regexp.MustCompile(`инн\s*\d{10,12}|бик\s*\d{9}`)
)

// HeuristicConfidence scores recognized invoice text in 0..1 by looking for
// date, currency, amount and tax-id artifacts.
func HeuristicConfidence(txt string) float32 {
	if strings.TrimSpace(txt) == "" {
		return 0
	}
	txtL := strings.ToLower(txt)
	score := float32(0.2) // base
	if reDate.MatchString(txtL) {
		score += 0.2
	}
	if reCurr.MatchString(txtL) {
		score += 0.15
	}
	if reAmount.MatchString(txtL) {
		score += 0.15
	}
	if reTaxID.MatchString(txtL) {
		score += 0.2
	}
	if len(txt) > 120 {
		score += 0.1
	} // enough content
	if score > 1.0 {
		score = 1.0
	}
	return score
}
