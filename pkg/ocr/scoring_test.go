package ocr

import "testing"

func TestScorePrefersStatementRows(t *testing.T) {
	rows := "05/01/2024\nSalary\n5,000.00\n15,000.00\n06/01/2024\nAirtime\n100.00\n14,900.00"
	noise := "EQUITY BANK\nAccount Statement\nPage 1 of 3"
	if score(rows) <= score(noise) {
		t.Fatalf("expected rows to outscore noise: %d vs %d", score(rows), score(noise))
	}
	if got := score("1,200.00 300.00"); got != 2 {
		t.Fatalf("amounts without dates should score their count, got %d", got)
	}
}

func TestBestSkipsEmptyAndKeepsFirstOnTie(t *testing.T) {
	results := []passResult{
		{name: "empty", text: "  ", score: 0},
		{name: "a", text: "x", score: 4},
		{name: "b", text: "y", score: 4},
		{name: "c", text: "z", score: 1},
	}
	top, ok := best(results)
	if !ok || top.name != "a" {
		t.Fatalf("expected pass a, got %+v ok=%v", top, ok)
	}
	if _, ok := best(nil); ok {
		t.Fatalf("expected no result for empty input")
	}
}
