// Package export renders a Scene to PNG and PDF.
package export

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// ParseColor understands #rgb, #rrggbb, rgb(), rgba() and the CSS colour
// names. ok is false for empty, "none", "transparent" and anything
// unparsable, which means "do not paint".
func ParseColor(s string) (c color.NRGBA, ok bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "", s == "none", s == "transparent":
		return color.NRGBA{}, false
	case strings.HasPrefix(s, "#"):
		cf, err := colorful.Hex(s)
		if err != nil {
			return color.NRGBA{}, false
		}
		r, g, b := cf.RGB255()
		return color.NRGBA{R: r, G: g, B: b, A: 255}, true
	case strings.HasPrefix(s, "rgb"):
		return parseFunc(s)
	}
	named, found := colornames.Map[s]
	if !found {
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: named.R, G: named.G, B: named.B, A: named.A}, true
}

func parseFunc(s string) (color.NRGBA, bool) {
	var r, g, b int
	a := 1.0
	var err error
	if strings.HasPrefix(s, "rgba(") {
		_, err = fmt.Sscanf(strings.ReplaceAll(s, " ", ""), "rgba(%d,%d,%d,%g)", &r, &g, &b, &a)
	} else {
		_, err = fmt.Sscanf(strings.ReplaceAll(s, " ", ""), "rgb(%d,%d,%d)", &r, &g, &b)
	}
	if err != nil {
		return color.NRGBA{}, false
	}
	c := color.NRGBA{R: channel(r), G: channel(g), B: channel(b), A: uint8(math.Round(clamp(a, 0, 1) * 255))}
	return c, c.A > 0
}

// Paint applies opacity on top of the colour's own alpha.
func Paint(s string, opacity float64) (color.NRGBA, bool) {
	c, ok := ParseColor(s)
	if !ok {
		return c, false
	}
	c.A = uint8(math.Round(float64(c.A) * clamp(opacity, 0, 1)))
	return c, c.A > 0
}

func channel(v int) uint8 {
	return uint8(max(0, min(255, v)))
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
