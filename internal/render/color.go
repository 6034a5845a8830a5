package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chrissnell/printview/internal/types"
)

// Color is an opaque RGB color.
type Color struct {
	R, G, B uint8
}

var (
	Black = Color{}
	White = Color{R: 255, G: 255, B: 255}
)

// Hex parses "#RRGGBB".
func Hex(s string) (Color, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// MustHex is Hex for package-level palette literals.
func MustHex(s string) Color {
	c, err := Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Color) String() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Palette is the fixed set of colors the printed reports draw with.
type Palette struct {
	VeryLow        Color
	Low            Color
	Target         Color
	High           Color
	VeryHigh       Color
	Basal          Color
	BasalAutomated Color
	Carbs          Color
	Axes           Color
	LightDividers  Color
	LightGrey      Color
	DarkGrey       Color
	Undelivered    Color
	SmbgHeader     Color
	ZebraEven      Color
}

// DefaultPalette returns the report colors.
func DefaultPalette() Palette {
	return Palette{
		VeryLow:        MustHex("#FB5951"),
		Low:            MustHex("#FF8B7C"),
		Target:         MustHex("#76D3A6"),
		High:           MustHex("#BB9AE7"),
		VeryHigh:       MustHex("#8C65D6"),
		Basal:          MustHex("#19A0D7"),
		BasalAutomated: MustHex("#00D3E6"),
		Carbs:          MustHex("#CFCFCF"),
		Axes:           MustHex("#858585"),
		LightDividers:  MustHex("#D8D8D8"),
		LightGrey:      MustHex("#979797"),
		DarkGrey:       MustHex("#4E4E4F"),
		Undelivered:    MustHex("#B2B2B2"),
		SmbgHeader:     MustHex("#E8ECFE"),
		ZebraEven:      MustHex("#FAFAFA"),
	}
}

// Bg returns the fill for a glucose class.
func (p Palette) Bg(class types.BgClass) Color {
	switch class {
	case types.BgVeryLow:
		return p.VeryLow
	case types.BgLow:
		return p.Low
	case types.BgHigh:
		return p.High
	case types.BgVeryHigh:
		return p.VeryHigh
	}
	return p.Target
}

// Bolus returns the color a bolus path component is drawn in.
func (p Palette) Bolus(kind BolusPathKind) Color {
	switch kind {
	case BolusUndelivered, BolusUnderride, BolusExtendedExpectation, BolusExtendedTriangleInterrupted:
		return p.Undelivered
	case BolusInterrupted, BolusExtendedInterrupted, BolusOverrideTriangle, BolusUnderrideTriangle:
		return White
	}
	return Black
}
