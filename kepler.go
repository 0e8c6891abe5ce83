package ips

import (
	"errors"
	"math"
)

const (
	keplerTolerance = 1e-6
	keplerMaxIter   = 50
)

// SolveKepler solves Kepler's equation M = E - e·sin(E) for the eccentric
// anomaly E via Newton-Raphson, to within keplerTolerance.
func SolveKepler(M, e float64) (float64, error) {
	E := M
	for i := 0; i < keplerMaxIter; i++ {
		δ := (E - e*math.Sin(E) - M) / (1 - e*math.Cos(E))
		E -= δ
		if math.Abs(δ) < keplerTolerance {
			return E, nil
		}
	}
	return E, errors.New("kepler solver did not converge")
}

// PropagateKepler advances a heliocentric state (position in AU, velocity in
// km/s) by Δt seconds of unperturbed two-body motion about a body of
// gravitational parameter μ (km^3/s^2).
//
// The reconstruction of the inertial state is deliberately simplified: the
// propagated radius and speed are applied along the *original* radial and
// velocity directions instead of rotating the state by the swept true
// anomaly. Predictions therefore stay locally consistent with the burn
// planning that consumes them, but are not globally exact; see DESIGN.md.
// Hyperbolic and degenerate states fall back to a linear drift.
func PropagateKepler(RAU, V []float64, μ float64, Δt float64) (RpAU, Vp []float64) {
	R := scaled(RAU, AU)
	r := norm(R)
	v := norm(V)
	drift := func() ([]float64, []float64) {
		Rp := make([]float64, 3)
		for i := 0; i < 3; i++ {
			Rp[i] = (R[i] + V[i]*Δt) / AU
		}
		return Rp, append([]float64{}, V...)
	}
	if r == 0 || μ <= 0 {
		return drift()
	}
	ξ := v*v/2 - μ/r
	a := -μ / (2 * ξ)
	eVec := make([]float64, 3)
	for i := 0; i < 3; i++ {
		eVec[i] = ((v*v-μ/r)*R[i] - dot(R, V)*V[i]) / μ
	}
	e := norm(eVec)
	if e >= 1 || a <= 0 || !finiteVec(eVec) {
		return drift()
	}

	// Current true anomaly, then eccentric and mean anomalies.
	var ν float64
	if e > eccentricityε {
		cosν := dot(eVec, R) / (e * r)
		if cosν > 1 {
			cosν = 1
		} else if cosν < -1 {
			cosν = -1
		}
		ν = math.Acos(cosν)
		if dot(R, V) < 0 {
			ν = 2*math.Pi - ν
		}
	}
	sν2, cν2 := math.Sincos(ν / 2)
	E0 := 2 * math.Atan2(math.Sqrt(1-e)*sν2, math.Sqrt(1+e)*cν2)
	M0 := E0 - e*math.Sin(E0)
	n := math.Sqrt(μ / math.Pow(a, 3))
	E, err := SolveKepler(M0+n*Δt, e)
	if err != nil {
		return drift()
	}

	rNew := a * (1 - e*math.Cos(E))
	vNew := math.Sqrt(finiteOr(2*(ξ+μ/rNew), 0))
	RpAU = scaled(unit(R), rNew/AU)
	Vp = scaled(unit(V), vNew)
	return RpAU, Vp
}
