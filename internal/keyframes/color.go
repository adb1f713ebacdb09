package keyframes

import (
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// blender interpolates a background color across a sequence. Colors that
// cannot be parsed (keywords, translucent values) are held: the first value
// until the final frame, then the second.
type blender struct {
	from, to       string
	fromC, toC     colorful.Color
	interpolatable bool
}

func newBlender(from, to string) *blender {
	if from == "" && to == "" {
		return nil
	}
	b := &blender{from: from, to: to}
	fc, okFrom := ParseColor(from)
	tc, okTo := ParseColor(to)
	if okFrom && okTo {
		b.fromC, b.toC, b.interpolatable = fc, tc, true
	}
	return b
}

func (b *blender) at(e float64, i, steps int) string {
	switch {
	case i == steps:
		return b.to
	case i == 0:
		return b.from
	case !b.interpolatable:
		return b.from
	}
	return b.fromC.BlendLab(b.toC, e).Clamped().Hex()
}

// ParseColor understands #rgb, #rrggbb and opaque rgb()/rgba() values, the
// forms computed styles report.
func ParseColor(s string) (colorful.Color, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(s)
		if err != nil {
			return colorful.Color{}, false
		}
		return c, true
	}

	var body string
	switch {
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		body = s[len("rgba(") : len(s)-1]
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		body = s[len("rgb(") : len(s)-1]
	default:
		return colorful.Color{}, false
	}

	parts := strings.Split(body, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return colorful.Color{}, false
	}
	var rgb [3]float64
	for i := range 3 {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil || v < 0 || v > 255 {
			return colorful.Color{}, false
		}
		rgb[i] = v / 255
	}
	if len(parts) == 4 {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || a < 1 {
			return colorful.Color{}, false
		}
	}
	return colorful.Color{R: rgb[0], G: rgb[1], B: rgb[2]}, true
}
