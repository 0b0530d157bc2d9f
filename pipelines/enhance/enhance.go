package enhance

import (
	"fmt"
	"image"
	"log"

	"gocv.io/x/gocv"

	"github.com/adityagirishh/company-resource-consolidator/pipelines/video"
)

// Enhancer sharpens rendered slides with an unsharp mask and applies a
// linear contrast/brightness adjustment.
type Enhancer struct {
	Amount     float64 // unsharp weight; 0 disables sharpening
	Sigma      float64 // gaussian sigma of the blur
	Contrast   float64 // alpha of dst = alpha*src + beta
	Brightness float64
}

func NewEnhancer() *Enhancer {
	return &Enhancer{
		Amount:     0.5,
		Sigma:      3.0,
		Contrast:   1.05,
		Brightness: 0,
	}
}

// Apply returns an enhanced copy of img with the same bounds
func (e *Enhancer) Apply(img image.Image) (image.Image, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("empty image")
	}

	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("convert to mat: %w", err)
	}
	defer src.Close()

	out := src
	if e.Amount > 0 {
		blurred := gocv.NewMat()
		defer blurred.Close()
		gocv.GaussianBlur(src, &blurred, image.Pt(0, 0), e.Sigma, e.Sigma, gocv.BorderDefault)

		sharp := gocv.NewMat()
		defer sharp.Close()
		gocv.AddWeighted(src, 1+e.Amount, blurred, -e.Amount, 0, &sharp)
		out = sharp
	}

	if e.Contrast != 1 || e.Brightness != 0 {
		adjusted := gocv.NewMat()
		defer adjusted.Close()
		out.ConvertToWithParams(&adjusted, gocv.MatTypeCV8UC3, float32(e.Contrast), float32(e.Brightness))
		out = adjusted
	}

	res, err := out.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert from mat: %w", err)
	}
	return res, nil
}

// PostProcessor adapts the enhancer to the slide renderer hook
func (e *Enhancer) PostProcessor() video.PostProcessor {
	return func(img image.Image) (image.Image, error) {
		res, err := e.Apply(img)
		if err != nil {
			log.Printf("[ENHANCE] Skipping slide enhancement: %v", err)
			return nil, err
		}
		return res, nil
	}
}
