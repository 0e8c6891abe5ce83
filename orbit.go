package ips

import (
	"fmt"
	"math"
)

const (
	eccentricityε = 5e-5 // 0.00005
	angleε        = (5e-3 / 360) * (2 * math.Pi)
	// nearParabolicε is the eccentricity from which an orbit is treated as
	// an escape trajectory.
	nearParabolicε = 0.98
)

// OrbitalElements are the classical elements derived from a heliocentric
// state vector. They are recomputed on demand and never cached: the state
// they derive from changes every tick.
type OrbitalElements struct {
	SemiMajorAxis  float64 // AU
	Eccentricity   float64
	Inclination    float64 // degrees
	Periapsis      float64 // AU
	Apoapsis       float64 // AU
	Period         float64 // days, zero for non-elliptical orbits
	SpecificEnergy float64 // km^2/s^2
}

// Elliptical returns whether this describes a bound orbit.
func (oe OrbitalElements) Elliptical() bool {
	return oe.Eccentricity < 1 && oe.SemiMajorAxis > 0
}

// Hyperbolic returns whether this describes an escape trajectory. Orbits
// within eccentricity 0.98 of parabolic are treated as escapes, since the
// distinction is numerically meaningless at that point.
func (oe OrbitalElements) Hyperbolic() bool {
	return oe.Eccentricity >= nearParabolicε
}

// String implements the Stringer interface.
func (oe OrbitalElements) String() string {
	return fmt.Sprintf("a=%.4f AU e=%.4f i=%.3f peri=%.4f AU apo=%.4f AU P=%.2f d", oe.SemiMajorAxis, oe.Eccentricity, oe.Inclination, oe.Periapsis, oe.Apoapsis, oe.Period)
}

// OrbitalElementsFromRV computes the classical orbital elements from a
// position (AU), a velocity (km/s) and the gravitational parameter of the
// central body (km^3/s^2). Cf. Vallado's RV2COE, page 113.
// Degenerate inputs (zero radius, zero μ, non-finite state) return the zero
// value rather than propagating NaN.
func OrbitalElementsFromRV(RAU, V []float64, μ float64) OrbitalElements {
	R := scaled(RAU, AU)
	r := norm(R)
	v := norm(V)
	if r == 0 || μ <= 0 || !finiteVec(R) || !finiteVec(V) {
		return OrbitalElements{}
	}
	ξ := v*v/2 - μ/r
	a := -μ / (2 * ξ)

	hVec := cross(R, V)
	h := norm(hVec)
	eVec := make([]float64, 3)
	for i := 0; i < 3; i++ {
		eVec[i] = ((v*v-μ/r)*R[i] - dot(R, V)*V[i]) / μ
	}
	e := norm(eVec)

	// Clamped to avoid a NaN from floating point overshoot.
	cosi := hVec[2] / h
	if cosi > 1 {
		cosi = 1
	} else if cosi < -1 {
		cosi = -1
	}
	i := math.Acos(cosi)

	// Period and apoapsis only make sense on a bound orbit.
	var period, apoapsis float64
	if a > 0 && e < 1 {
		period = 2 * math.Pi * math.Sqrt(math.Pow(a, 3)/μ) / SecondsPerDay
		apoapsis = a * (1 + e) / AU
	}

	oe := OrbitalElements{
		SemiMajorAxis:  finiteOr(a/AU, 0),
		Eccentricity:   finiteOr(e, 0),
		Inclination:    finiteOr(Rad2deg(i), 0),
		Periapsis:      finiteOr(a*(1-e)/AU, 0),
		Apoapsis:       finiteOr(apoapsis, 0),
		Period:         finiteOr(period, 0),
		SpecificEnergy: finiteOr(ξ, 0),
	}
	return oe
}

// Radii2ae returns the semi major axis and the eccentricity from the radii.
func Radii2ae(rA, rP float64) (a, e float64) {
	if rA < rP {
		panic("periapsis cannot be greater than apoapsis")
	}
	a = (rP + rA) / 2
	e = (rA - rP) / (rA + rP)
	return
}
