package edit

import (
	"fmt"
	"math"

	"github.com/npillmayer/arcfit"
)

// thetaSlack is the theta distance which corresponds to the minimum
// connection distance on an arc of the given length.
func thetaSlack(minDist, arcLength float64) float64 {
	if minDist <= 0 {
		return 0
	}
	if arcLength <= arcfit.Epsilon || !arcfit.IsFinite(arcLength) {
		return math.Inf(1)
	}
	return minDist / arcLength
}

// redistribute moves theta k towards target and keeps every pair of
// neighbouring thetas at least slack apart. Endpoints stay at 0 and 1.
//
// Theta k is clamped into the band which leaves room for all other nodes.
// If a side of k then has a gap smaller than slack, all gaps of that side
// are rescaled: each keeps slack plus a share of the remaining room
// proportional to its previous excess. Order is preserved.
//
// redistribute returns a new slice; thetas is not modified.
func redistribute(thetas []float64, k int, target, slack float64) ([]float64, error) {
	n := len(thetas)
	if k <= 0 || k >= n-1 {
		panic(fmt.Sprintf("redistribute: index %d is not a middle node of %d", k, n))
	}
	if float64(n-1)*slack > 1+arcfit.Epsilon {
		return nil, fmt.Errorf("%w: %d nodes need theta slack %.4g each", ErrNoRoom, n, slack)
	}
	t := append([]float64(nil), thetas...)
	t[0], t[n-1] = 0, 1
	lo := float64(k) * slack
	hi := 1 - float64(n-1-k)*slack
	t[k] = math.Max(lo, math.Min(hi, target))
	spread(t[:k+1], slack)
	spread(t[k:], slack)
	return t, nil
}

// spread widens every gap of t to at least slack, keeping the outer values
// fixed. t is modified in place.
func spread(t []float64, slack float64) {
	gaps := len(t) - 1
	if gaps < 2 {
		return
	}
	tight := false
	for i := 1; i < len(t); i++ {
		if t[i]-t[i-1] < slack {
			tight = true
			break
		}
	}
	if !tight {
		return
	}
	room := math.Max(0, t[gaps]-t[0]-float64(gaps)*slack)
	excess := make([]float64, gaps)
	sum := 0.0
	for i := range excess {
		excess[i] = math.Max(0, t[i+1]-t[i]-slack)
		sum += excess[i]
	}
	for i := 1; i < gaps; i++ {
		share := room / float64(gaps)
		if sum > arcfit.Epsilon {
			share = excess[i-1] * room / sum
		}
		t[i] = t[i-1] + slack + share
	}
	tracer().Debugf("spread %d gaps to slack %.4g", gaps, slack)
}

// evenThetas spaces n thetas evenly over [0,1].
func evenThetas(n int) []float64 {
	t := make([]float64, n)
	for i := range t {
		t[i] = float64(i) / float64(n-1)
	}
	return t
}
