package ocr

import "testing"

func TestNormalizeRepairsDigits(t *testing.T) {
	in := "  05/01/2024   Salary \r\n\n 5,0o0.00  1l,000 . 50 \n"
	want := "05/01/2024 Salary\n5,000.00 11,000.50"
	if got := normalizeOCRText(in); got != want {
		t.Fatalf("normalizeOCRText = %q, want %q", got, want)
	}
}

func TestSplitColumns(t *testing.T) {
	in := "05/01/2024   SALARY ACME LTD    5,000.00   15,000.00\nPage 1"
	want := "05/01/2024\nSALARY ACME LTD\n5,000.00\n15,000.00\nPage 1"
	if got := splitColumns(in); got != want {
		t.Fatalf("splitColumns = %q, want %q", got, want)
	}
}
