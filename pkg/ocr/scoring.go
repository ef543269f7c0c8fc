package ocr

import (
	"regexp"
	"strings"
)

var (
	dateToken   = regexp.MustCompile(`\b\d{2}[/-]\d{2}[/-]\d{2,4}\b`)
	amountToken = regexp.MustCompile(`\b(?:\d{1,3}(?:,\d{3})+|\d+)\.\d{2}\b`)
)

// score rates how statement-like a pass's text is: dates and amounts count, and
// a pass with no dates scores at most its amount count.
func score(text string) int {
	dates := len(dateToken.FindAllString(text, -1))
	amounts := len(amountToken.FindAllString(text, -1))
	if dates == 0 {
		return amounts
	}
	s := dates*3 + amounts*2
	// rows usually carry two amounts per date
	if amounts >= 2*dates {
		s += dates
	}
	return s
}

// best returns the highest-scoring text; ties keep the earlier pass.
func best(results []passResult) (passResult, bool) {
	var top passResult
	found := false
	for _, r := range results {
		if strings.TrimSpace(r.text) == "" {
			continue
		}
		if !found || r.score > top.score {
			top = r
			found = true
		}
	}
	return top, found
}
