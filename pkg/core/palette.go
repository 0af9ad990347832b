package core

import (
	"fmt"
	"strings"
)

// Color is a member of the fixed note palette.
// Only its key is ever persisted; render values stay on this side.
type Color int

const (
	Yellow Color = iota
	Green
	White
	LightBlue
	Pink
)

// DefaultColor is the colour of a fresh draft.
const DefaultColor = Yellow

// FallbackColor is what unknown or garbled persisted keys resolve to.
const FallbackColor = White

type swatch struct {
	key  string
	name string
	rgb  uint32
}

var swatches = [...]swatch{
	Yellow:    {key: "YELLOW", name: "Yellow", rgb: 0xFFF59D},
	Green:     {key: "GREEN", name: "Green", rgb: 0xC8E6C9},
	White:     {key: "WHITE", name: "White", rgb: 0xFFFFFF},
	LightBlue: {key: "LIGHT_BLUE", name: "LightBlue", rgb: 0xB3E5FC},
	Pink:      {key: "PINK", name: "Pink", rgb: 0xF8BBD0},
}

// Palette returns the colours in their stable picker order.
func Palette() []Color {
	out := make([]Color, len(swatches))
	for i := range swatches {
		out[i] = Color(i)
	}
	return out
}

func (c Color) valid() bool {
	return c >= 0 && int(c) < len(swatches)
}

func (c Color) swatch() swatch {
	if !c.valid() {
		return swatches[FallbackColor]
	}
	return swatches[c]
}

// Key is the stable persisted key, e.g. "LIGHT_BLUE".
func (c Color) Key() string { return c.swatch().key }

// Name is the display name, e.g. "LightBlue".
func (c Color) Name() string { return c.swatch().name }

// RGB is the 24-bit render colour.
func (c Color) RGB() uint32 { return c.swatch().rgb }

// Hex renders the colour as "#RRGGBB".
func (c Color) Hex() string { return fmt.Sprintf("#%06X", c.RGB()) }

func (c Color) String() string { return c.Name() }

// ColorFromKey resolves a persisted key. It never fails: anything that is not
// a current palette key maps to FallbackColor.
func ColorFromKey(key string) Color {
	for i, s := range swatches {
		if s.key == key {
			return Color(i)
		}
	}
	return FallbackColor
}

// ParseColor reads user input, accepting a key or a name in any case.
// Unlike ColorFromKey it reports unknown input.
func ParseColor(s string) (Color, error) {
	norm := strings.TrimSpace(s)
	for i, sw := range swatches {
		if strings.EqualFold(sw.key, norm) || strings.EqualFold(sw.name, norm) {
			return Color(i), nil
		}
	}
	return FallbackColor, fmt.Errorf("%w: %q", ErrUnknownColor, s)
}
