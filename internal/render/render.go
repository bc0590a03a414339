package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"strings"

	_ "image/jpeg" // icon decoding
	_ "image/png"  // icon decoding

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/nerrad567/deckhand/internal/infrastructure/config"
	"github.com/nerrad567/deckhand/internal/infrastructure/logging"
	"github.com/nerrad567/deckhand/internal/layout"
)

// Icon placement margins in pixels. A key with both icon and label keeps a
// strip at the bottom for the text.
const (
	iconTopMargin   = 10
	labelStripSize  = 30
	iconOnlyMargin  = 5
	labelSideMargin = 4
)

// fontDPI matches the assumption the default font size was chosen under.
const fontDPI = 72

// errorFill marks misconfigured keys so they stand out on the hardware.
var errorFill = color.RGBA{R: 255, A: 255}

// Surface is the drawable subset of the deck device.
type Surface interface {
	KeyCount() int
	PixelSize() int
	SetImage(index int, img image.Image) error
	SetBrightness(percent int) error
	Clear() error
}

// Engine renders key specs into images and pushes them to a Surface.
type Engine struct {
	face       font.Face
	iconsDir   string
	brightness int
	log        *logging.Logger
}

// NewEngine creates a rendering engine. A missing or unparsable font is not
// fatal; the engine logs a warning and falls back to a built-in bitmap face.
func NewEngine(cfg config.RenderConfig, brightness int, log *logging.Logger) *Engine {
	if log == nil {
		log = logging.Default()
	}

	face := loadFace(cfg, log)
	return &Engine{
		face:       face,
		iconsDir:   cfg.IconsDir,
		brightness: brightness,
		log:        log,
	}
}

// loadFace loads the configured TTF face, falling back to basicfont.
func loadFace(cfg config.RenderConfig, log *logging.Logger) font.Face {
	if cfg.FontPath == "" {
		return basicfont.Face7x13
	}

	data, err := os.ReadFile(cfg.FontPath)
	if err != nil {
		log.Warn("font unavailable, using built-in face", "path", cfg.FontPath, "error", err)
		return basicfont.Face7x13
	}

	parsed, err := opentype.Parse(data)
	if err != nil {
		log.Warn("font unparsable, using built-in face", "path", cfg.FontPath, "error", err)
		return basicfont.Face7x13
	}

	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    cfg.FontSize,
		DPI:     fontDPI,
		Hinting: font.HintingFull,
	})
	if err != nil {
		log.Warn("font face creation failed, using built-in face", "path", cfg.FontPath, "error", err)
		return basicfont.Face7x13
	}
	return face
}

// RenderLayout blanks the device, applies brightness and renders every
// mapped key of the layout. Unmapped keys stay blank.
func (e *Engine) RenderLayout(surface Surface, l *layout.Layout) error {
	if err := surface.Clear(); err != nil {
		return fmt.Errorf("clearing device: %w", err)
	}
	if err := surface.SetBrightness(e.brightness); err != nil {
		return fmt.Errorf("setting brightness: %w", err)
	}

	for idx := 0; idx < surface.KeyCount(); idx++ {
		spec, ok := l.Key(idx)
		if !ok {
			continue
		}
		if err := e.RenderKey(surface, idx, spec); err != nil {
			return fmt.Errorf("rendering key %d of layout %q: %w", idx, l.Name, err)
		}
	}
	return nil
}

// RenderKey composes the image for one key and pushes it to the device.
//
// The mode follows from the spec: icon plus label strip, wrapped label
// text, full-bleed icon, or a plain fill. A spec with nothing to show and
// no explicit colour fills red.
func (e *Engine) RenderKey(surface Surface, index int, spec layout.KeySpec) error {
	size := surface.PixelSize()
	img := e.compose(size, spec)
	if err := surface.SetImage(index, img); err != nil {
		return err
	}
	return nil
}

// compose builds the key image without touching the device.
func (e *Engine) compose(size int, spec layout.KeySpec) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	bg := color.RGBA{A: 255}
	explicit := false
	if spec.Color != "" {
		// Build validated the colour; a failure here means the spec was
		// constructed outside Build.
		parsed, err := layout.ParseColor(spec.Color)
		if err != nil {
			e.log.Warn("invalid key colour", "colour", spec.Color, "error", err)
		} else {
			bg = parsed
			explicit = true
		}
	}

	hasIcon := spec.Icon != ""
	hasLabel := spec.Label != ""

	if !hasIcon && !hasLabel && !explicit {
		// Nothing to show and no colour asked for: this key is misconfigured.
		draw.Draw(img, img.Bounds(), image.NewUniform(errorFill), image.Point{}, draw.Src)
		return img
	}

	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	labelColor := color.Color(color.White)
	if spec.LabelColor != "" {
		if parsed, err := layout.ParseColor(spec.LabelColor); err == nil {
			labelColor = parsed
		} else {
			e.log.Warn("invalid label colour", "colour", spec.LabelColor, "error", err)
		}
	}

	switch {
	case hasIcon && hasLabel:
		e.drawIcon(img, spec.Icon, image.Rect(0, iconTopMargin, size, size-labelStripSize))
		e.drawLabelLine(img, spec.Label, labelColor, size, size-labelStripSize/2)
	case hasIcon:
		e.drawIcon(img, spec.Icon, image.Rect(iconOnlyMargin, iconOnlyMargin, size-iconOnlyMargin, size-iconOnlyMargin))
	case hasLabel:
		e.drawLabelWrapped(img, spec.Label, labelColor, size)
	}

	return img
}

// drawIcon decodes and scales an icon into the target rect. A missing or
// broken icon turns the rect red so the problem shows on the hardware.
func (e *Engine) drawIcon(img *image.RGBA, name string, target image.Rectangle) {
	icon, err := e.loadIcon(name)
	if err != nil {
		e.log.Warn("icon unavailable", "icon", name, "error", err)
		draw.Draw(img, target, image.NewUniform(errorFill), image.Point{}, draw.Src)
		return
	}

	// Preserve aspect ratio within the target rect.
	scaled := fitRect(icon.Bounds(), target)
	xdraw.ApproxBiLinear.Scale(img, scaled, icon, icon.Bounds(), xdraw.Over, nil)
}

// loadIcon reads an icon image from the configured icons directory.
func (e *Engine) loadIcon(name string) (image.Image, error) {
	f, err := os.Open(filepath.Join(e.iconsDir, name))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	icon, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return icon, nil
}

// fitRect scales src proportionally to fit inside target, centred.
func fitRect(src, target image.Rectangle) image.Rectangle {
	sw, sh := src.Dx(), src.Dy()
	tw, th := target.Dx(), target.Dy()
	if sw == 0 || sh == 0 {
		return target
	}

	w, h := tw, sh*tw/sw
	if h > th {
		w, h = sw*th/sh, th
	}

	x := target.Min.X + (tw-w)/2
	y := target.Min.Y + (th-h)/2
	return image.Rect(x, y, x+w, y+h)
}

// drawLabelLine draws a single line centred horizontally at the given
// vertical centre, truncating with an ellipsis if it cannot fit.
func (e *Engine) drawLabelLine(img *image.RGBA, text string, col color.Color, size, centerY int) {
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: e.face,
	}

	text = truncate(drawer, text, size-2*labelSideMargin)
	width := drawer.MeasureString(text).Ceil()

	metrics := e.face.Metrics()
	baseline := centerY + metrics.Ascent.Ceil()/2

	drawer.Dot = fixed.P((size-width)/2, baseline)
	drawer.DrawString(text)
}

// drawLabelWrapped word-wraps the label and centres the block vertically.
func (e *Engine) drawLabelWrapped(img *image.RGBA, text string, col color.Color, size int) {
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: e.face,
	}

	lines := wrap(drawer, text, size-2*labelSideMargin)

	metrics := e.face.Metrics()
	lineHeight := (metrics.Ascent + metrics.Descent).Ceil()
	blockHeight := lineHeight * len(lines)
	top := (size - blockHeight) / 2
	if top < 0 {
		top = 0
	}

	for i, line := range lines {
		width := drawer.MeasureString(line).Ceil()
		baseline := top + lineHeight*i + metrics.Ascent.Ceil()
		drawer.Dot = fixed.P((size-width)/2, baseline)
		drawer.DrawString(line)
	}
}

// truncate shortens text to fit maxWidth, appending an ellipsis.
func truncate(drawer *font.Drawer, text string, maxWidth int) string {
	if drawer.MeasureString(text).Ceil() <= maxWidth {
		return text
	}

	runes := []rune(text)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "..."
		if drawer.MeasureString(candidate).Ceil() <= maxWidth {
			return candidate
		}
	}
	return "..."
}

// wrap splits text into lines of roughly maxWidth pixels using the average
// character width as the estimate. Words longer than a line stand alone.
func wrap(drawer *font.Drawer, text string, maxWidth int) []string {
	avgWidth := drawer.MeasureString("a").Ceil()
	if avgWidth <= 0 {
		avgWidth = 1
	}
	maxChars := maxWidth / avgWidth
	if maxChars < 1 {
		maxChars = 1
	}

	var lines []string
	var current strings.Builder
	for _, word := range strings.Fields(text) {
		switch {
		case current.Len() == 0:
			current.WriteString(word)
		case current.Len()+1+len(word) <= maxChars:
			current.WriteByte(' ')
			current.WriteString(word)
		default:
			lines = append(lines, current.String())
			current.Reset()
			current.WriteString(word)
		}
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}
