package statement

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	ErrUnsupported = errors.New("unsupported statement format")
	ErrEmpty       = errors.New("statement contains no text")
)

// OCR reads text from an image file.
type OCR interface {
	ExtractText(path string) (string, error)
}

// Reader turns a statement file of any supported format into parsed transactions.
// Images need OCR; without it they are rejected.
type Reader struct {
	Parser Parser
	OCR    OCR
}

var imageExt = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".tif": true, ".tiff": true}

// Supported reports whether path has an extension Read accepts.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".pdf" || ext == ".csv" || ext == ".txt" || imageExt[ext]
}

// IsImage reports whether path is a scan that goes through OCR.
func IsImage(path string) bool {
	return imageExt[strings.ToLower(filepath.Ext(path))]
}

// FormatOf names the statement format of path: pdf, csv, text, image, or "" when unsupported.
func FormatOf(path string) string {
	switch ext := strings.ToLower(filepath.Ext(path)); {
	case ext == ".pdf":
		return "pdf"
	case ext == ".csv":
		return "csv"
	case ext == ".txt":
		return "text"
	case imageExt[ext]:
		return "image"
	}
	return ""
}

func (r Reader) Read(path string) (Parsed, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".csv":
		f, err := os.Open(path)
		if err != nil {
			return Parsed{}, err
		}
		defer f.Close()
		txns, err := ParseCSV(f)
		if err != nil {
			return Parsed{}, err
		}
		return Parsed{Type: TypeCSV, Transactions: txns}, nil
	case ext == ".pdf":
		text, err := PDFText(path)
		if err != nil {
			return Parsed{}, err
		}
		return r.Parser.Parse(text), nil
	case ext == ".txt":
		b, err := os.ReadFile(path)
		if err != nil {
			return Parsed{}, err
		}
		return r.Parser.Parse(string(b)), nil
	case imageExt[ext]:
		if r.OCR == nil {
			return Parsed{}, fmt.Errorf("%w: %s (OCR disabled)", ErrUnsupported, ext)
		}
		text, err := r.OCR.ExtractText(path)
		if err != nil {
			return Parsed{}, err
		}
		return r.Parser.Parse(text), nil
	}
	return Parsed{}, fmt.Errorf("%w: %q", ErrUnsupported, ext)
}

// PDFText extracts text row by row, one line per visual row.
func PDFText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			text, perr := page.GetPlainText(nil)
			if perr != nil {
				continue
			}
			sb.WriteString(text)
			sb.WriteString("\n")
			continue
		}
		for _, row := range rows {
			writeRow(&sb, row.Content)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", ErrEmpty
	}
	return sb.String(), nil
}

// writeRow joins glyph runs into cells. A gap wider than the font size starts a new
// line so every table column lands on its own line, matching what Parse expects.
func writeRow(sb *strings.Builder, texts pdf.TextHorizontal) {
	var prev *pdf.Text
	for i := range texts {
		t := &texts[i]
		if prev != nil {
			gap := t.X - (prev.X + prev.W)
			switch {
			case gap > prev.FontSize:
				sb.WriteString("\n")
			case gap > prev.FontSize*0.2:
				sb.WriteString(" ")
			}
		}
		sb.WriteString(t.S)
		prev = t
	}
	sb.WriteString("\n")
}
