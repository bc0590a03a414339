package layout

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// namedColors covers the colour names accepted in key specs.
var namedColors = map[string]color.RGBA{
	"black":   {0, 0, 0, 255},
	"white":   {255, 255, 255, 255},
	"red":     {255, 0, 0, 255},
	"green":   {0, 128, 0, 255},
	"blue":    {0, 0, 255, 255},
	"yellow":  {255, 255, 0, 255},
	"orange":  {255, 165, 0, 255},
	"purple":  {128, 0, 128, 255},
	"cyan":    {0, 255, 255, 255},
	"magenta": {255, 0, 255, 255},
	"grey":    {128, 128, 128, 255},
	"gray":    {128, 128, 128, 255},
	"teal":    {0, 128, 128, 255},
	"pink":    {255, 192, 203, 255},
}

// ParseColor resolves a colour name or #hex value. Accepts #RGB and
// #RRGGBB forms. Build rejects key specs whose colours do not parse, so
// a built layout only carries resolvable colours.
func ParseColor(s string) (color.RGBA, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[name]; ok {
		return c, nil
	}

	if !strings.HasPrefix(name, "#") {
		return color.RGBA{}, fmt.Errorf("unknown colour %q", s)
	}

	hex := name[1:]
	switch len(hex) {
	case 3:
		// #abc expands to #aabbcc
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6:
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex colour %q", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex colour %q", s)
	}

	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 255,
	}, nil
}
