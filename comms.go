package ips

import "math"

// CommsSystem computes the downlink budget to Earth. The model is a
// free-space-path-loss approximation: the achievable data rate falls with
// the square of the Earth distance from a reference rate at 1 AU. There is
// no occlusion model; the link is always considered in contact.
type CommsSystem struct {
	ReferenceRate float64 // bps achievable at 1 AU
	MinimumRate   float64 // bps floor the radio can always close
	Transmitting  bool

	dataRate    float64 // bps, last tick
	signalDelay float64 // s, one way, last tick
}

// Update recomputes the link budget for the given Earth distance in AU.
func (c *CommsSystem) Update(earthDistanceAU float64) {
	c.signalDelay = earthDistanceAU * AU / LightSpeed
	if earthDistanceAU <= 0 {
		c.dataRate = c.ReferenceRate
		return
	}
	c.dataRate = c.ReferenceRate / (earthDistanceAU * earthDistanceAU)
	c.dataRate = math.Max(finiteOr(c.dataRate, c.MinimumRate), c.MinimumRate)
}

// DataRate returns the achievable downlink rate in bps.
func (c CommsSystem) DataRate() float64 {
	return c.dataRate
}

// SignalDelay returns the one-way light time to Earth in seconds.
func (c CommsSystem) SignalDelay() float64 {
	return c.signalDelay
}
