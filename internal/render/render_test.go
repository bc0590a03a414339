package render

import (
	"image"
	"image/color"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/nerrad567/deckhand/internal/infrastructure/config"
	"github.com/nerrad567/deckhand/internal/layout"
)

// fakeSurface records rendering calls instead of driving hardware.
type fakeSurface struct {
	keys       int
	pixels     int
	images     map[int]image.Image
	cleared    int
	brightness int
}

func newFakeSurface(keys, pixels int) *fakeSurface {
	return &fakeSurface{keys: keys, pixels: pixels, images: make(map[int]image.Image)}
}

func (f *fakeSurface) KeyCount() int  { return f.keys }
func (f *fakeSurface) PixelSize() int { return f.pixels }

func (f *fakeSurface) SetImage(index int, img image.Image) error {
	f.images[index] = img
	return nil
}

func (f *fakeSurface) SetBrightness(percent int) error {
	f.brightness = percent
	return nil
}

func (f *fakeSurface) Clear() error {
	f.cleared++
	return nil
}

func testEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(config.RenderConfig{FontSize: 16, IconsDir: t.TempDir()}, 100, nil)
}

func centerPixel(img image.Image) color.RGBA {
	b := img.Bounds()
	r, g, bl, a := img.At(b.Dx()/2, b.Dy()/2).RGBA()
	return color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(bl >> 8), uint8(a >> 8)}
}

func TestRenderKey_EmptySpecFillsRed(t *testing.T) {
	e := testEngine(t)
	surface := newFakeSurface(6, 72)

	if err := e.RenderKey(surface, 0, layout.KeySpec{}); err != nil {
		t.Fatalf("RenderKey() error = %v", err)
	}

	got := centerPixel(surface.images[0])
	if got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("empty spec centre pixel = %v, want red", got)
	}
}

func TestRenderKey_ExplicitColorIsNotAnError(t *testing.T) {
	e := testEngine(t)
	surface := newFakeSurface(6, 72)

	if err := e.RenderKey(surface, 0, layout.KeySpec{Color: "blue"}); err != nil {
		t.Fatalf("RenderKey() error = %v", err)
	}

	got := centerPixel(surface.images[0])
	if got != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("colour-only centre pixel = %v, want blue", got)
	}
}

func TestRenderKey_MissingIconFillsRed(t *testing.T) {
	e := testEngine(t)
	surface := newFakeSurface(6, 72)

	if err := e.RenderKey(surface, 0, layout.KeySpec{Icon: "absent.png"}); err != nil {
		t.Fatalf("RenderKey() error = %v", err)
	}

	got := centerPixel(surface.images[0])
	if got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("missing icon centre pixel = %v, want red fallback", got)
	}
}

func TestRenderKey_LabelDrawsText(t *testing.T) {
	e := testEngine(t)
	surface := newFakeSurface(6, 72)

	if err := e.RenderKey(surface, 0, layout.KeySpec{Label: "hello"}); err != nil {
		t.Fatalf("RenderKey() error = %v", err)
	}

	// Some pixel must differ from the black background.
	img := surface.images[0]
	b := img.Bounds()
	found := false
	for y := b.Min.Y; y < b.Max.Y && !found; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if r != 0 || g != 0 || bl != 0 {
				found = true
				break
			}
		}
	}
	if !found {
		t.Error("label render produced no visible pixels")
	}
}

func TestRenderLayout(t *testing.T) {
	e := testEngine(t)
	surface := newFakeSurface(6, 72)

	l := &layout.Layout{
		Name: "main",
		Keys: map[int]layout.KeySpec{
			0: {Label: "a"},
			3: {Color: "green"},
		},
	}

	if err := e.RenderLayout(surface, l); err != nil {
		t.Fatalf("RenderLayout() error = %v", err)
	}

	if surface.cleared != 1 {
		t.Errorf("Clear() called %d times, want 1", surface.cleared)
	}
	if surface.brightness != 100 {
		t.Errorf("brightness = %d, want 100", surface.brightness)
	}
	if len(surface.images) != 2 {
		t.Errorf("rendered %d keys, want 2 (unmapped keys stay blank)", len(surface.images))
	}
	if _, ok := surface.images[3]; !ok {
		t.Error("key 3 not rendered")
	}
}

func TestTruncate(t *testing.T) {
	drawer := &font.Drawer{Face: basicfont.Face7x13}

	short := truncate(drawer, "ok", 70)
	if short != "ok" {
		t.Errorf("truncate(short) = %q, want unchanged", short)
	}

	long := truncate(drawer, "a very long key label", 70)
	if long == "a very long key label" {
		t.Error("truncate(long) did not shorten")
	}
	if len(long) < 3 || long[len(long)-3:] != "..." {
		t.Errorf("truncate(long) = %q, want ellipsis suffix", long)
	}
	if drawer.MeasureString(long).Ceil() > 70 {
		t.Errorf("truncate(long) = %q still wider than limit", long)
	}
}

func TestWrap(t *testing.T) {
	drawer := &font.Drawer{Face: basicfont.Face7x13}

	lines := wrap(drawer, "open the pod bay doors", 64)
	if len(lines) < 2 {
		t.Fatalf("wrap() = %v, want multiple lines", lines)
	}

	single := wrap(drawer, "hi", 64)
	if len(single) != 1 || single[0] != "hi" {
		t.Errorf("wrap(short) = %v, want [hi]", single)
	}

	empty := wrap(drawer, "", 64)
	if len(empty) != 1 {
		t.Errorf("wrap(empty) = %v, want one empty line", empty)
	}
}
