package sink

import (
	"fmt"
	"math"
)

// Neutral fills the root cell.
const Neutral = "#ccc"

// Rainbow maps t in [0,1) onto a cyclical cubehelix rainbow and returns
// it as a hex colour. Values outside the unit interval wrap.
func Rainbow(t float64) string {
	t -= math.Floor(t)
	ts := math.Abs(t - 0.5)
	return cubehelix(360*t-100, 1.5-1.5*ts, 0.8-0.9*ts)
}

// cubehelix converts hue (degrees), saturation and lightness to hex.
func cubehelix(h, s, l float64) string {
	h = (h + 120) * math.Pi / 180
	a := s * l * (1 - l)
	ch, sh := math.Cos(h), math.Sin(h)
	r := 255 * (l + a*(-0.14861*ch+1.78277*sh))
	g := 255 * (l + a*(-0.29227*ch-0.90649*sh))
	b := 255 * (l + a*(1.97294*ch))
	return fmt.Sprintf("#%02x%02x%02x", channel(r), channel(g), channel(b))
}

func channel(v float64) int {
	return int(math.Round(math.Max(0, math.Min(255, v))))
}

func fill(depth int, hue float64) string {
	if depth == 0 {
		return Neutral
	}
	return Rainbow(hue)
}
