package render

import (
	"math"
	"strconv"
	"strings"
)

const (
	// DefaultInchPixels is the pixel factor applied to inch lengths
	DefaultInchPixels = 143
	// DefaultCMPixels is the pixel factor applied to centimetre lengths
	DefaultCMPixels = 56
)

// Units holds the per-unit pixel factors used for conversion
type Units struct {
	InchPixels float64
	CMPixels   float64
}

// DefaultUnits returns the standard conversion factors.
func DefaultUnits() Units {
	return Units{InchPixels: DefaultInchPixels, CMPixels: DefaultCMPixels}
}

// factor returns the pixel factor for a unit suffix.
func (u Units) factor(unit string) (float64, bool) {
	switch strings.ToLower(unit) {
	case "in":
		return u.InchPixels, true
	case "cm":
		return u.CMPixels, true
	case "mm":
		return u.CMPixels / 10, true
	case "pt":
		return 4.0 / 3.0, true
	case "pc":
		return 16, true
	case "px":
		return 1, true
	default:
		return 0, false
	}
}

// SplitLength splits a length such as "1.25in" into its number and unit.
func SplitLength(length string) (float64, string, bool) {
	length = strings.TrimSpace(length)
	i := len(length)
	for i > 0 {
		c := length[i-1]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			i--
			continue
		}
		break
	}
	if i == 0 || i == len(length) {
		return 0, "", false
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(length[:i]), 64)
	if err != nil {
		return 0, "", false
	}
	return value, length[i:], true
}

// ToPixels converts a length to whole pixels.
func (u Units) ToPixels(length string) (int, bool) {
	value, unit, ok := SplitLength(length)
	if !ok {
		return 0, false
	}
	factor, ok := u.factor(unit)
	if !ok {
		return 0, false
	}
	return int(math.Round(value * factor)), true
}

// Pixels formats a length as "Npx", or returns "" when it cannot be converted.
func (u Units) Pixels(length string) string {
	px, ok := u.ToPixels(length)
	if !ok {
		return ""
	}
	return FormatPixels(px)
}

// OffsetPixels converts a length and adds an offset that is already in pixels.
func (u Units) OffsetPixels(length string, offset int) string {
	px, ok := u.ToPixels(length)
	if !ok {
		return ""
	}
	return FormatPixels(px + offset)
}

// FormatPixels formats a pixel count for a style or attribute value.
func FormatPixels(px int) string {
	return strconv.Itoa(px) + "px"
}
