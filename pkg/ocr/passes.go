package ocr

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// pass is one preprocessing + page segmentation combination.
type pass struct {
	name    string
	prepare func(image.Image) image.Image
	psm     gosseract.PageSegMode
}

type passResult struct {
	name  string
	text  string
	score int
}

const whitelist = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz.,:;/-()&'* "

var defaultPasses = []pass{
	{"gray", func(img image.Image) image.Image { return base(img) }, gosseract.PSM_AUTO},
	{"enhanced", func(img image.Image) image.Image { return enhance(img) }, gosseract.PSM_AUTO},
	{"binary", func(img image.Image) image.Image { return threshold(enhance(img), 190) }, gosseract.PSM_AUTO},
	{"adaptive", func(img image.Image) image.Image { return adaptiveThreshold(base(img), 25, 10) }, gosseract.PSM_AUTO},
	{"sparse", func(img image.Image) image.Image { return enhance(img) }, gosseract.PSM_SPARSE_TEXT},
	{"block", func(img image.Image) image.Image { return base(img) }, gosseract.PSM_SINGLE_BLOCK},
}

// runPasses recognises img once per pass and scores each result.
func (e *Extractor) runPasses(img image.Image) ([]passResult, error) {
	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(e.language); err != nil {
		return nil, err
	}
	_ = client.SetWhitelist(whitelist)
	// keep the column gaps so table rows can be split into cells
	_ = client.SetVariable("preserve_interword_spaces", "1")

	var results []passResult
	for _, p := range e.passes {
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, p.prepare(img), imaging.PNG); err != nil {
			return nil, err
		}
		if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
			return nil, err
		}
		if err := client.SetPageSegMode(p.psm); err != nil {
			return nil, err
		}
		raw, err := client.Text()
		if err != nil {
			e.logger.Debug().Err(err).Str("pass", p.name).Msg("OCR pass failed")
			continue
		}
		text := normalizeOCRText(splitColumns(raw))
		r := passResult{name: p.name, text: text, score: score(text)}
		e.logger.Debug().Str("pass", p.name).Int("score", r.score).Str("snippet", snippet(text, 120)).Msg("OCR pass")
		results = append(results, r)
	}
	return results, nil
}
