package ocr

import (
	"image"

	"github.com/disintegration/imaging"
)

// minWidth is the width scans are upscaled to before recognition; statement
// print is small and tesseract loses digits below roughly 300dpi.
const minWidth = 2000

// base converts to grayscale and upscales narrow scans.
func base(img image.Image) *image.NRGBA {
	gray := imaging.Grayscale(img)
	if gray.Bounds().Dx() < minWidth {
		gray = imaging.Resize(gray, minWidth, 0, imaging.Lanczos)
	}
	return gray
}

func enhance(img image.Image) *image.NRGBA {
	out := imaging.AdjustContrast(base(img), 20)
	return imaging.Sharpen(out, 0.8)
}

// threshold maps every pixel darker than level to black and the rest to white.
func threshold(img *image.NRGBA, level uint8) *image.NRGBA {
	out := imaging.Clone(img)
	for i := 0; i+3 < len(out.Pix); i += 4 {
		v := uint8(255)
		if luminance(out.Pix[i:i+3]) <= level {
			v = 0
		}
		out.Pix[i], out.Pix[i+1], out.Pix[i+2], out.Pix[i+3] = v, v, v, 255
	}
	return out
}

// adaptiveThreshold compares each pixel with the mean of its window, which copes
// with shaded or unevenly lit phone photos of statements.
func adaptiveThreshold(img *image.NRGBA, window, bias int) *image.NRGBA {
	if window < 3 {
		window = 3
	}
	if window%2 == 0 {
		window++
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	stride := img.Stride

	// integral image with a zero border row and column
	sums := make([]int, (w+1)*(h+1))
	for y := 0; y < h; y++ {
		row := 0
		for x := 0; x < w; x++ {
			row += int(luminance(img.Pix[y*stride+x*4:]))
			sums[(y+1)*(w+1)+x+1] = sums[y*(w+1)+x+1] + row
		}
	}

	out := imaging.New(w, h, image.White.C)
	half := window / 2
	for y := 0; y < h; y++ {
		y0, y1 := max(0, y-half), min(h-1, y+half)
		for x := 0; x < w; x++ {
			x0, x1 := max(0, x-half), min(w-1, x+half)
			area := (x1 - x0 + 1) * (y1 - y0 + 1)
			total := sums[(y1+1)*(w+1)+x1+1] - sums[y0*(w+1)+x1+1] - sums[(y1+1)*(w+1)+x0] + sums[y0*(w+1)+x0]
			if int(luminance(img.Pix[y*stride+x*4:])) < total/area-bias {
				o := y*out.Stride + x*4
				out.Pix[o], out.Pix[o+1], out.Pix[o+2] = 0, 0, 0
			}
		}
	}
	return out
}

func luminance(px []uint8) uint8 {
	return uint8((uint16(px[0]) + uint16(px[1]) + uint16(px[2])) / 3)
}

// ShrinkForArchive writes a copy of the image at src to dst, fitted within maxDim
// on its longer side. Smaller images are copied unchanged.
func ShrinkForArchive(src, dst string, maxDim int) error {
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return err
	}
	b := img.Bounds()
	if b.Dx() > maxDim || b.Dy() > maxDim {
		img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
	}
	return imaging.Save(img, dst, imaging.JPEGQuality(85))
}
