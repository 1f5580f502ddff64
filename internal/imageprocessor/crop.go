package imageprocessor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"math"

	"grapher_backend/pkg/apperrors"

	"golang.org/x/image/draw"
)

const (
	maxCanvasPixels = 40_000_000
	aspectTolerance = 0.01
	boundsEpsilon   = 0.01
	defaultQuality  = 0.92
)

// Selection is a crop region in percent of the natural image size,
// matching the cropper UI's "%" unit.
type Selection struct {
	X      float64 `json:"x" form:"crop_x"`
	Y      float64 `json:"y" form:"crop_y"`
	Width  float64 `json:"width" form:"crop_width"`
	Height float64 `json:"height" form:"crop_height"`
}

// CropRequest describes one crop. Aspect 0 means free-form.
type CropRequest struct {
	Aspect    float64
	Selection *Selection
	Width     int
	Height    int
	Quality   float64 // 0..1
}

// Crop rasterizes the selected region of src into a Width×Height canvas and
// encodes it as JPEG.
func (p *Processor) Crop(src io.Reader, req CropRequest) ([]byte, error) {
	if err := checkCanvas(req.Width, req.Height); err != nil {
		return nil, err
	}
	img, err := decode(src)
	if err != nil {
		return nil, apperrors.InvalidCropError(err)
	}
	return cropImage(img, req)
}

func cropImage(img image.Image, req CropRequest) ([]byte, error) {
	if err := checkCanvas(req.Width, req.Height); err != nil {
		return nil, err
	}
	srcRect, err := selectionRect(img.Bounds(), req.Selection, req.Aspect)
	if err != nil {
		return nil, apperrors.InvalidCropError(err)
	}
	return render(img, srcRect, req.Width, req.Height, req.Quality)
}

func render(img image.Image, srcRect image.Rectangle, width, height int, quality float64) ([]byte, error) {
	if err := checkCanvas(width, height); err != nil {
		return nil, err
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, srcRect, draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality(quality)}); err != nil {
		return nil, apperrors.CanvasUnavailableError(fmt.Errorf("failed to encode JPEG: %w", err))
	}
	return buf.Bytes(), nil
}

func checkCanvas(width, height int) error {
	if width <= 0 || height <= 0 {
		return apperrors.CanvasUnavailableError(fmt.Errorf("invalid canvas size %dx%d", width, height))
	}
	if int64(width)*int64(height) > maxCanvasPixels {
		return apperrors.CanvasUnavailableError(fmt.Errorf("canvas %dx%d exceeds %d pixels", width, height, maxCanvasPixels))
	}
	return nil
}

// selectionRect converts a percent selection to a pixel rectangle in bounds.
func selectionRect(bounds image.Rectangle, sel *Selection, aspect float64) (image.Rectangle, error) {
	if sel == nil {
		return image.Rectangle{}, errors.New("no crop selection")
	}
	if sel.Width <= 0 || sel.Height <= 0 {
		return image.Rectangle{}, errors.New("crop selection has zero area")
	}
	if sel.X < 0 || sel.Y < 0 ||
		sel.X+sel.Width > 100+boundsEpsilon || sel.Y+sel.Height > 100+boundsEpsilon {
		return image.Rectangle{}, errors.New("crop selection is outside the image")
	}

	w, h := float64(bounds.Dx()), float64(bounds.Dy())
	pxW := sel.Width / 100 * w
	pxH := sel.Height / 100 * h
	if aspect > 0 {
		if math.Abs(pxW/pxH-aspect)/aspect > aspectTolerance {
			return image.Rectangle{}, fmt.Errorf("crop selection aspect %.3f does not match %.3f", pxW/pxH, aspect)
		}
	}

	x0 := bounds.Min.X + int(math.Round(sel.X/100*w))
	y0 := bounds.Min.Y + int(math.Round(sel.Y/100*h))
	rect := image.Rect(x0, y0, x0+int(math.Round(pxW)), y0+int(math.Round(pxH))).Intersect(bounds)
	if rect.Empty() {
		return image.Rectangle{}, errors.New("crop selection is smaller than one pixel")
	}
	return rect, nil
}

func jpegQuality(q float64) int {
	if q <= 0 || q > 1 {
		q = defaultQuality
	}
	quality := int(math.Round(q * 100))
	if quality < 1 {
		quality = 1
	}
	return quality
}

// ============================================
// Initial selections
// ============================================

// CenteredSelection returns a centered crop of the given aspect that spans
// widthPercent of the image width, shrinking to fit the height if needed.
// Aspect 0 keeps the image's own ratio.
func CenteredSelection(width, height int, aspect, widthPercent float64) *Selection {
	if width <= 0 || height <= 0 {
		return nil
	}
	if aspect <= 0 {
		aspect = float64(width) / float64(height)
	}
	if widthPercent <= 0 || widthPercent > 100 {
		widthPercent = 100
	}

	pxW := widthPercent / 100 * float64(width)
	pxH := pxW / aspect
	if pxH > float64(height) {
		pxH = float64(height)
		pxW = pxH * aspect
	}

	wPct := pxW / float64(width) * 100
	hPct := pxH / float64(height) * 100
	return &Selection{
		X:      (100 - wPct) / 2,
		Y:      (100 - hPct) / 2,
		Width:  wPct,
		Height: hPct,
	}
}

// SquareSelection returns the largest centered square.
func SquareSelection(width, height int) *Selection {
	return CenteredSelection(width, height, 1, 100)
}

// ============================================
// Presets
// ============================================

// Preset is one call site's crop geometry. Size derives the output from the
// selected region in pixels; Initial supplies the selection when the caller
// sends none.
type Preset struct {
	Name    string
	Aspect  float64
	Quality float64
	Size    func(selW, selH int) (int, int)
	Initial func(srcW, srcH int) *Selection
}

var (
	ProfilePicturePreset = Preset{
		Name:    "profile_picture",
		Aspect:  1,
		Quality: 0.85,
		Size:    func(_, _ int) (int, int) { return 512, 512 },
		Initial: SquareSelection,
	}

	CoverPreset = Preset{
		Name:    "cover",
		Aspect:  2.7,
		Quality: 0.9,
		Size:    func(_, _ int) (int, int) { return 1920, 720 },
		Initial: func(w, h int) *Selection { return CenteredSelection(w, h, 2.7, 90) },
	}

	PortfolioPreset = Preset{
		Name:    "portfolio",
		Aspect:  1,
		Quality: 0.9,
		Size: func(w, h int) (int, int) {
			side := min(w, h, 1920)
			return side, side
		},
		Initial: SquareSelection,
	}
)

// CropWithPreset decodes src once and crops it with the preset's geometry.
func (p *Processor) CropWithPreset(src io.Reader, preset Preset, sel *Selection) ([]byte, error) {
	img, err := decode(src)
	if err != nil {
		return nil, apperrors.InvalidCropError(err)
	}

	bounds := img.Bounds()
	if sel == nil {
		sel = preset.Initial(bounds.Dx(), bounds.Dy())
	}
	rect, err := selectionRect(bounds, sel, preset.Aspect)
	if err != nil {
		return nil, apperrors.InvalidCropError(err)
	}
	outW, outH := preset.Size(rect.Dx(), rect.Dy())
	return render(img, rect, outW, outH, preset.Quality)
}
