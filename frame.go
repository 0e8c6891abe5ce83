package ips

import "math"

// RSWFrame is the orthonormal radial/prograde(along-track)/normal basis
// attached to a moving spacecraft. Maneuver Δv is expressed in this frame so
// a burn plan is independent of the absolute orientation of the orbit.
type RSWFrame struct {
	Radial   []float64
	Prograde []float64
	Normal   []float64
}

// OrbitalReferenceFrame builds the RSW basis from a position and a velocity.
// Units cancel, so any consistent pair works (the integrator passes AU and
// km/s).
//
// When the velocity is parallel to the radius (a purely radial trajectory)
// the orbit normal is undefined; the fallback picks the coordinate axis
// least aligned with the radial direction and projects it perpendicular, so
// the returned basis is always orthonormal.
func OrbitalReferenceFrame(R, V []float64) RSWFrame {
	radial := unit(R)
	if norm(radial) == 0 {
		// No meaningful radial direction either; hand back the identity axes.
		return RSWFrame{[]float64{1, 0, 0}, []float64{0, 1, 0}, []float64{0, 0, 1}}
	}
	normal := cross(radial, unit(V))
	if norm(normal) < 1e-9 {
		axis := []float64{0, 0, 0}
		k := 0
		for i := 1; i < 3; i++ {
			if math.Abs(radial[i]) < math.Abs(radial[k]) {
				k = i
			}
		}
		axis[k] = 1
		normal = cross(radial, axis)
	}
	normal = unit(normal)
	prograde := unit(cross(normal, radial))
	return RSWFrame{radial, prograde, normal}
}

// ConvertDeltaV converts a Δv expressed in the RSW frame (radial, prograde,
// normal components) into the inertial frame, given the state the frame is
// attached to.
func ConvertDeltaV(Δv [3]float64, R, V []float64) []float64 {
	f := OrbitalReferenceFrame(R, V)
	out := make([]float64, 3)
	for i := 0; i < 3; i++ {
		out[i] = Δv[0]*f.Radial[i] + Δv[1]*f.Prograde[i] + Δv[2]*f.Normal[i]
	}
	return out
}
