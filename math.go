package ips

import (
	"math"

	"github.com/gonum/floats"
)

const (
	deg2rad = math.Pi / 180

	// AU is one astronomical unit in kilometers.
	AU = 1.49597870700e8
	// G0 is the standard gravity in m/s^2, used in the rocket equation.
	G0 = 9.80665
	// LightSpeed is the speed of light in km/s.
	LightSpeed = 299792.458
	// SolarFlux is the solar irradiance at 1 AU in W/m^2.
	SolarFlux = 1361.0
	// StefanBoltzmann is the Stefan-Boltzmann constant in W/(m^2.K^4).
	StefanBoltzmann = 5.670374419e-8
	// SecondsPerDay converts days to seconds.
	SecondsPerDay = 86400.0
)

// norm returns the norm of a given vector which is supposed to be 3x1.
func norm(v []float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// unit returns the unit vector of a given vector.
func unit(a []float64) (b []float64) {
	n := norm(a)
	if floats.EqualWithinAbs(n, 0, 1e-12) {
		return []float64{0, 0, 0}
	}
	b = make([]float64, len(a))
	for i, val := range a {
		b[i] = val / n
	}
	return
}

// sign returns the sign of a given number.
func sign(v float64) float64 {
	if floats.EqualWithinAbs(v, 0, 1e-12) {
		return 1
	}
	return v / math.Abs(v)
}

// dot performs the inner product.
func dot(a, b []float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// cross performs the cross product.
func cross(a, b []float64) []float64 {
	return []float64{a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0]}
}

// scaled returns a scaled copy of the provided vector.
func scaled(a []float64, f float64) (b []float64) {
	b = make([]float64, len(a))
	for i, val := range a {
		b[i] = val * f
	}
	return
}

// finiteOr guards against NaN and infinite values, returning the fallback
// for anything which is not a finite number.
func finiteOr(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

// finiteVec returns whether all components of the vector are finite.
func finiteVec(v []float64) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Deg2rad converts degrees to radians, and enforced only positive numbers.
func Deg2rad(a float64) float64 {
	if a < 0 {
		a += 360
	}
	return math.Mod(a*deg2rad, 2*math.Pi)
}

// Rad2deg converts radians to degrees, and enforced only positive numbers.
func Rad2deg(a float64) float64 {
	if a < 0 {
		a += 2 * math.Pi
	}
	return math.Mod(a/deg2rad, 360)
}
