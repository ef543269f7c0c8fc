// Package ocr reads text from scanned or photographed statements with tesseract.
package ocr

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/Simonwafula/personal-finance-app/pkg/common"
)

// Extractor runs several preprocessing passes and keeps the most statement-like text.
type Extractor struct {
	logger   *common.Logger
	language string
	passes   []pass
}

func New(logger *common.Logger) *Extractor {
	return &Extractor{
		logger:   logger.WithComponent("ocr"),
		language: "eng",
		passes:   defaultPasses,
	}
}

// ExtractText opens the image at path and returns its text, one cell per line.
func (e *Extractor) ExtractText(path string) (string, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	text, err := e.ExtractImage(img)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return text, nil
}

func (e *Extractor) ExtractImage(img image.Image) (string, error) {
	results, err := e.runPasses(img)
	if err != nil {
		return "", fmt.Errorf("ocr passes: %w", err)
	}
	top, ok := best(results)
	if !ok || top.score == 0 {
		return "", ErrNoText
	}
	e.logger.Info().Str("pass", top.name).Int("score", top.score).Int("passes", len(results)).Msg("OCR complete")
	return top.text, nil
}
