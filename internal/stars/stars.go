// Package stars generates the falling-star particles drawn behind the hero.
// The browser animates them; this package only picks their parameters.
package stars

import (
	"math/rand/v2"
)

// DefaultCount is the number of stars in one batch.
const DefaultCount = 20

// Star holds one particle. Sizes and distances are in pixels, durations
// and delays in seconds, StartX in percent of the hero width.
type Star struct {
	Key      int
	Size     float64
	Duration float64
	Delay    float64
	StartX   float64
	Distance float64
}

// Generate returns n stars drawn from r. A nil r uses the global source.
func Generate(n int, r *rand.Rand) []Star {
	if n <= 0 {
		return nil
	}
	float := rand.Float64
	if r != nil {
		float = r.Float64
	}

	out := make([]Star, n)
	for i := range out {
		out[i] = Star{
			Key:      i,
			Size:     float()*2 + 1,
			Duration: float()*10 + 10,
			Delay:    float() * 5,
			StartX:   float() * 100,
			Distance: 50 + float()*100,
		}
	}
	return out
}
