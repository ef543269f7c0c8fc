package ocr

import (
	"regexp"
	"strings"
)

// snippet returns a shortened version of text for logging.
func snippet(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}

var (
	spaceRun = regexp.MustCompile(`[ \t]+`)
	// digits separated by a letter tesseract commonly confuses with 0 or 1
	misreadZero = regexp.MustCompile(`(\d)[oO](\d|[.,])`)
	misreadOne  = regexp.MustCompile(`(\d)[lI|](\d|[.,])`)
	spacedDot   = regexp.MustCompile(`(\d) ?\. ?(\d{2})\b`)
	columnGap   = regexp.MustCompile(` {2,}`)
)

// normalizeOCRText keeps line structure, collapses runs of spaces and repairs
// common digit misreads inside numbers.
func normalizeOCRText(t string) string {
	t = strings.ReplaceAll(t, "\r", "")
	lines := strings.Split(t, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
		if line == "" {
			continue
		}
		line = misreadZero.ReplaceAllString(line, "${1}0${2}")
		line = misreadOne.ReplaceAllString(line, "${1}1${2}")
		line = spacedDot.ReplaceAllString(line, "${1}.${2}")
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// splitColumns breaks a table row into cells on runs of two or more spaces, so
// "05/01/2024  Salary  5,000.00  15,000.00" becomes one cell per line.
func splitColumns(text string) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		for _, cell := range columnGap.Split(line, -1) {
			if cell = strings.TrimSpace(cell); cell != "" {
				out = append(out, cell)
			}
		}
	}
	return strings.Join(out, "\n")
}
