package discord

import (
	"regexp"
	"strconv"
)

// Color is an RGB triple used for embed accents.
type Color struct {
	R, G, B uint8
}

// Int packs the color as 0xRRGGBB, the form discordgo embeds take.
func (c Color) Int() int {
	return int(c.R)<<16 | int(c.G)<<8 | int(c.B)
}

var rgbPattern = regexp.MustCompile(`(\d{1,3}),?\s?(\d{1,3}),?\s?(\d{1,3})`)

// namedColors holds the supported color names. Lookup is case sensitive.
var namedColors = map[string]Color{
	"black":   {0, 0, 0},
	"blue":    {0, 0, 255},
	"cyan":    {0, 255, 255},
	"gray":    {128, 128, 128},
	"green":   {0, 255, 0},
	"magenta": {255, 0, 255},
	"orange":  {255, 200, 0},
	"pink":    {255, 175, 175},
	"red":     {255, 0, 0},
	"white":   {255, 255, 255},
	"yellow":  {255, 255, 0},
}

var defaultColor = namedColors["gray"]

// ParseColor turns a color string into a Color. Strings like "10, 20, 30" or
// "10 20 30" parse as literal RGB with each component clamped to 255;
// otherwise the string is looked up in the name table, and anything
// unrecognized falls back to gray.
func ParseColor(s string) Color {
	if m := rgbPattern.FindStringSubmatch(s); m != nil {
		return Color{clampComponent(m[1]), clampComponent(m[2]), clampComponent(m[3])}
	}
	if c, ok := namedColors[s]; ok {
		return c
	}
	return defaultColor
}

func clampComponent(s string) uint8 {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return uint8(n)
}
