package ips

import (
	"math"
	"time"
)

// HohmannTransfer holds the two-burn transfer solution between two circular
// coplanar orbits.
type HohmannTransfer struct {
	DepartureΔv  float64 // km/s, at the initial radius
	ArrivalΔv    float64 // km/s, at the final radius
	TotalΔv      float64 // km/s
	TransferTime time.Duration
}

// TransferTimeDays returns the time of flight in days.
func (h HohmannTransfer) TransferTimeDays() float64 {
	return h.TransferTime.Seconds() / SecondsPerDay
}

// NewHohmannTransfer computes the Hohmann transfer between two circular
// orbit radii rI and rF (km) about the given body. For rI == rF the total
// Δv is zero and the time of flight is half the orbital period at rI.
func NewHohmannTransfer(rI, rF float64, body CelestialObject) HohmannTransfer {
	μ := body.GM()
	aTransfer := 0.5 * (rI + rF)
	vI := math.Sqrt(μ / rI)
	vF := math.Sqrt(μ / rF)
	vDeparture := math.Sqrt((2 * μ / rI) - (μ / aTransfer))
	vArrival := math.Sqrt((2 * μ / rF) - (μ / aTransfer))
	tof := time.Duration(math.Pi*math.Sqrt(math.Pow(aTransfer, 3)/μ)) * time.Second
	Δv1 := vDeparture - vI
	Δv2 := vF - vArrival
	return HohmannTransfer{Δv1, Δv2, math.Abs(Δv1) + math.Abs(Δv2), tof}
}

// FuelForDeltaV returns the propellant mass (kg) needed to impart the given
// Δv (km/s) on a vehicle of the given total mass (kg) with the given exhaust
// velocity (km/s), via the Tsiolkovsky rocket equation. The result is always
// finite, non-negative, and never exceeds the total mass.
func FuelForDeltaV(Δv, totalMass, vExhaust float64) float64 {
	if Δv <= 0 || totalMass <= 0 || vExhaust <= 0 {
		return 0
	}
	fuel := totalMass * (1 - math.Exp(-Δv/vExhaust))
	fuel = finiteOr(fuel, 0)
	if fuel < 0 {
		return 0
	}
	if fuel > totalMass {
		return totalMass
	}
	return fuel
}
