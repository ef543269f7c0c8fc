package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/Simonwafula/personal-finance-app/pkg/common"
	"github.com/Simonwafula/personal-finance-app/pkg/ocr"
	"github.com/Simonwafula/personal-finance-app/pkg/statement"
)

// Prints the OCR text of a scanned statement and the rows the parser finds in it.
func main() {
	f := flag.String("file", "", "image file to OCR")
	verbose := flag.Bool("verbose", false, "log every OCR pass")
	flag.Parse()
	if *f == "" {
		log.Fatalf("-file required")
	}
	level := "warn"
	if *verbose {
		level = "debug"
	}
	text, err := ocr.New(common.NewLogger(level)).ExtractText(*f)
	if err != nil {
		log.Fatalf("ocr error: %v", err)
	}
	fmt.Println("----- text -----")
	fmt.Println(text)

	parsed := statement.Parser{}.Parse(text)
	rows, sum := statement.Preview(parsed.Transactions, nil, "")
	fmt.Printf("----- %s: %d rows (income=%d expense=%d) -----\n", parsed.Type, sum.Total, sum.Income, sum.Expense)
	for _, r := range rows {
		fmt.Printf("%s|%s|%s|%s\n", r.Date, r.Kind, r.Amount, r.Description)
	}
}
