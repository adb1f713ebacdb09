package easing

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

// springFrames is how many simulation steps are sampled; at 60 FPS this is
// two seconds, enough for any damping we accept to settle near 1.
const springFrames = 120

// Spring samples a damped spring moving from 0 to 1 and returns it as a
// timing function over normalized time. Low damping overshoots past 1.
func Spring(frequency, damping float64) Func {
	s := harmonica.NewSpring(harmonica.FPS(60), frequency, damping)

	samples := make([]float64, springFrames+1)
	var pos, vel float64
	for i := 1; i <= springFrames; i++ {
		pos, vel = s.Update(pos, vel, 1)
		samples[i] = pos
	}
	samples[springFrames] = 1

	return func(t float64) float64 {
		t = clamp01(t)
		f := t * springFrames
		i := int(math.Floor(f))
		if i >= springFrames {
			return 1
		}
		frac := f - float64(i)
		return samples[i] + (samples[i+1]-samples[i])*frac
	}
}
