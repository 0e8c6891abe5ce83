package ips

import (
	"fmt"
	"math"

	"github.com/gonum/matrix/mat64"
)

// AttitudeMode defines the pointing target of the attitude controller.
type AttitudeMode uint8

const (
	// ModeInertial holds the current orientation without control.
	ModeInertial AttitudeMode = iota + 1
	// ModePrograde points the boresight along the velocity vector.
	ModePrograde
	// ModeRetrograde points the boresight against the velocity vector.
	ModeRetrograde
	// ModeRadial points the boresight away from the central body.
	ModeRadial
	// ModeNormal points the boresight along the orbit normal.
	ModeNormal
	// ModeSunPointing points the boresight at the Sun.
	ModeSunPointing

	// wheelDesatThreshold is the momentum fraction above which the wheels
	// stop absorbing torque and the RCS desaturates them instead.
	wheelDesatThreshold = 0.8
	// wheelDesatDecay is the per-second geometric decay of wheel momentum
	// while the RCS is desaturating.
	wheelDesatDecay = 0.95
)

func (m AttitudeMode) String() string {
	switch m {
	case ModeInertial:
		return "inertial"
	case ModePrograde:
		return "prograde"
	case ModeRetrograde:
		return "retrograde"
	case ModeRadial:
		return "radial"
	case ModeNormal:
		return "normal"
	case ModeSunPointing:
		return "sun-pointing"
	}
	panic(fmt.Errorf("unknown attitude mode %d", m))
}

// AttitudeSystem is the ADCS: a proportional pointing controller actuated by
// reaction wheels, with RCS desaturation once the wheels approach their
// momentum cap. Wheel momentum never exceeds MaxMomentum; past the
// desaturation threshold the RCS becomes the sole actuator and momentum
// decays geometrically while RCS propellant drains.
type AttitudeSystem struct {
	Mode          AttitudeMode
	Orientation   [4]float64 // quaternion (w,x,y,z), boresight is body +X
	WheelMomentum []float64  // N.m.s
	MaxMomentum   float64    // N.m.s
	RCSFuel       float64    // kg
	ControlGain   float64    // N.m per rad of pointing error
	SlewRate      float64    // rad/s
	DesatFuelRate float64    // kg/s of RCS draw while desaturating
}

// Update runs one control step against the current heliocentric state.
func (a *AttitudeSystem) Update(dt float64, R, V []float64) {
	if a.Mode == ModeInertial {
		return
	}
	target := a.targetDirection(R, V)
	if norm(target) == 0 {
		return
	}
	boresight := MxV33(quatDCM(a.Orientation), []float64{1, 0, 0})
	axis := cross(boresight, target)
	θ := math.Atan2(norm(axis), dot(boresight, target))
	if θ < 1e-9 {
		return
	}
	axis = unit(axis)

	torque := a.ControlGain * θ
	if norm(a.WheelMomentum) > wheelDesatThreshold*a.MaxMomentum {
		// Near saturation: stop loading the wheels, bleed momentum on RCS.
		if a.RCSFuel > 0 {
			decay := math.Pow(wheelDesatDecay, dt)
			for i := range a.WheelMomentum {
				a.WheelMomentum[i] *= decay
			}
			a.RCSFuel -= a.DesatFuelRate * dt
			if a.RCSFuel < 0 {
				a.RCSFuel = 0
			}
		}
	} else {
		for i := range a.WheelMomentum {
			a.WheelMomentum[i] += torque * axis[i] * dt
		}
		if h := norm(a.WheelMomentum); h > a.MaxMomentum {
			for i := range a.WheelMomentum {
				a.WheelMomentum[i] *= a.MaxMomentum / h
			}
		}
	}

	step := a.SlewRate * dt
	if step > θ {
		step = θ
	}
	a.Orientation = quatMul(quatFromAxisAngle(axis, step), a.Orientation)
	a.Orientation = quatNormalize(a.Orientation)
}

// Saturated returns whether the wheels are past the desaturation threshold.
func (a AttitudeSystem) Saturated() bool {
	return norm(a.WheelMomentum) > wheelDesatThreshold*a.MaxMomentum
}

func (a AttitudeSystem) targetDirection(R, V []float64) []float64 {
	frame := OrbitalReferenceFrame(R, V)
	switch a.Mode {
	case ModePrograde:
		return frame.Prograde
	case ModeRetrograde:
		return scaled(frame.Prograde, -1)
	case ModeRadial:
		return frame.Radial
	case ModeNormal:
		return frame.Normal
	case ModeSunPointing:
		return scaled(frame.Radial, -1)
	}
	return []float64{0, 0, 0}
}

/* Quaternion helpers. Scalar-first convention. */

func quatDCM(q [4]float64) *mat64.Dense {
	w, x, y, z := q[0], q[1], q[2], q[3]
	return mat64.NewDense(3, 3, []float64{
		1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y),
		2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x),
		2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y),
	})
}

func quatFromAxisAngle(axis []float64, θ float64) [4]float64 {
	s, c := math.Sincos(θ / 2)
	return [4]float64{c, axis[0] * s, axis[1] * s, axis[2] * s}
}

func quatMul(a, b [4]float64) [4]float64 {
	return [4]float64{
		a[0]*b[0] - a[1]*b[1] - a[2]*b[2] - a[3]*b[3],
		a[0]*b[1] + a[1]*b[0] + a[2]*b[3] - a[3]*b[2],
		a[0]*b[2] - a[1]*b[3] + a[2]*b[0] + a[3]*b[1],
		a[0]*b[3] + a[1]*b[2] - a[2]*b[1] + a[3]*b[0],
	}
}

func quatNormalize(q [4]float64) [4]float64 {
	n := math.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
	if n == 0 {
		return [4]float64{1, 0, 0, 0}
	}
	for i := range q {
		q[i] /= n
	}
	return q
}
