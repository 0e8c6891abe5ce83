package ips

import (
	"fmt"
	"math"
)

// BurnFailure enumerates the reasons a burn request can be refused.
type BurnFailure uint8

const (
	// NoIgnitionsRemaining means the chemical engine ignition budget is spent.
	NoIgnitionsRemaining BurnFailure = iota + 1
	// InsufficientFuel means the tank cannot supply the requested Δv.
	InsufficientFuel
	// InsufficientPower means the battery is below the ignition floor.
	InsufficientPower
)

func (f BurnFailure) String() string {
	switch f {
	case NoIgnitionsRemaining:
		return "no ignitions remaining"
	case InsufficientFuel:
		return "insufficient fuel"
	case InsufficientPower:
		return "insufficient power"
	}
	panic(fmt.Errorf("unknown burn failure %d", f))
}

// BurnError is the typed failure returned by burn execution. Callers decide
// whether to re-attempt; nothing retries automatically.
type BurnError struct {
	Reason BurnFailure
}

func (e *BurnError) Error() string {
	return "burn refused: " + e.Reason.String()
}

// EPThruster defines an electric propulsion thruster.
type EPThruster interface {
	// Returns the minimum power and voltage requirements for this EPThruster.
	Min() (voltage, power uint)
	// Returns the max power and voltage requirements for this EPThruster.
	Max() (voltage, power uint)
	// Returns the thrust in Newtons and isp consumed in seconds.
	Thrust(voltage, power uint) (thrust, isp float64)
}

/* Available EPThrusters */

// PPS1350 is the Snecma EPThruster used on SMART-1.
type PPS1350 struct{}

// Min implements the EPThruster interface.
func (t *PPS1350) Min() (voltage, power uint) {
	return t.Max()
}

// Max implements the EPThruster interface.
func (t *PPS1350) Max() (voltage, power uint) {
	return 350, 2500
}

// Thrust implements the EPThruster interface.
func (t *PPS1350) Thrust(voltage, power uint) (thrust, isp float64) {
	if voltage == 350 && power == 2500 {
		return 89e-3, 1650
	}
	panic("unsupported voltage or power provided")
}

// HERMeS is based on the NASA & Rocketdyne 12.5kW demo
type HERMeS struct{}

// Min implements the EPThruster interface.
func (t *HERMeS) Min() (voltage, power uint) {
	return t.Max()
}

// Max implements the EPThruster interface.
func (t *HERMeS) Max() (voltage, power uint) {
	return 800, 12500
}

// Thrust implements the EPThruster interface.
func (t *HERMeS) Thrust(voltage, power uint) (thrust, isp float64) {
	if voltage == 800 && power == 12500 {
		return 0.680, 2960
	}
	panic("unsupported voltage or power provided")
}

// GenericEP is a generic EP EPThruster.
type GenericEP struct {
	thrust float64
	isp    float64
}

// Min implements the EPThruster interface.
func (t *GenericEP) Min() (voltage, power uint) {
	return 0, 0
}

// Max implements the EPThruster interface.
func (t *GenericEP) Max() (voltage, power uint) {
	return 0, 0
}

// Thrust implements the EPThruster interface.
func (t *GenericEP) Thrust(voltage, power uint) (thrust, isp float64) {
	return t.thrust, t.isp
}

// NewGenericEP returns a generic electric prop EPThruster.
func NewGenericEP(thrust, isp float64) *GenericEP {
	return &GenericEP{thrust, isp}
}

// ChemicalEngine is the bipropellant main engine: high thrust, a finite
// ignition budget, fuel and oxidizer drawn together at the engine mixture
// ratio.
type ChemicalEngine struct {
	Thrust       float64 // N
	Isp          float64 // s
	FuelMass     float64 // kg
	OxidizerMass float64 // kg
	MixtureRatio float64 // oxidizer/fuel mass ratio
	MaxIgnitions uint
	ignitions    uint
	throttle     float64
	burnLeft     float64 // s of commanded burn remaining
}

// ExhaustVelocity returns the effective exhaust velocity in km/s.
func (e ChemicalEngine) ExhaustVelocity() float64 {
	return e.Isp * G0 / 1000
}

// Propellant returns the total usable propellant in kg.
func (e ChemicalEngine) Propellant() float64 {
	return e.FuelMass + e.OxidizerMass
}

// IgnitionsRemaining returns how many starts are left in the budget.
func (e ChemicalEngine) IgnitionsRemaining() uint {
	if e.ignitions >= e.MaxIgnitions {
		return 0
	}
	return e.MaxIgnitions - e.ignitions
}

// Throttle returns the current throttle setting in [0,1].
func (e ChemicalEngine) Throttle() float64 {
	return e.throttle
}

// massFlow returns the propellant draw at full throttle in kg/s.
func (e ChemicalEngine) massFlow() float64 {
	return e.Thrust / (G0 * e.Isp)
}

// drawPropellant removes up to m kg of propellant at the mixture ratio,
// returning what was actually drawn.
func (e *ChemicalEngine) drawPropellant(m float64) float64 {
	available := e.Propellant()
	if m > available {
		m = available
	}
	fuelShare := 1 / (1 + e.MixtureRatio)
	e.FuelMass = math.Max(0, e.FuelMass-m*fuelShare)
	e.OxidizerMass = math.Max(0, e.OxidizerMass-m*(1-fuelShare))
	return m
}

// IonEngine is the low-thrust stage: continuous xenon draw, no ignition
// budget.
type IonEngine struct {
	Thruster  EPThruster
	XenonMass float64 // kg
	Active    bool
}

// Update draws xenon for dt seconds of continuous thrusting.
func (e *IonEngine) Update(dt float64) {
	if !e.Active || e.XenonMass <= 0 {
		return
	}
	thrust, isp := e.Thruster.Thrust(e.Thruster.Max())
	e.XenonMass -= thrust / (G0 * isp) * dt
	if e.XenonMass <= 0 {
		e.XenonMass = 0
		e.Active = false
	}
}

// Propulsion bundles the two independent stores and engines.
type Propulsion struct {
	Chemical ChemicalEngine
	Ion      IonEngine
}

// Ignite commits the chemical engine to a burn of the given duration,
// checking the ignition budget and the propellant needed for the requested
// Δv (km/s) at the given vehicle mass. The power floor is checked by the
// systems bus before this is called.
func (p *Propulsion) Ignite(Δv, duration, totalMass float64) error {
	if p.Chemical.IgnitionsRemaining() == 0 {
		return &BurnError{NoIgnitionsRemaining}
	}
	needed := FuelForDeltaV(Δv, totalMass, p.Chemical.ExhaustVelocity())
	if needed > p.Chemical.Propellant() {
		return &BurnError{InsufficientFuel}
	}
	p.Chemical.ignitions++
	p.Chemical.throttle = 1
	p.Chemical.burnLeft = duration
	return nil
}

// Cutoff ends any commanded chemical burn.
func (p *Propulsion) Cutoff() {
	p.Chemical.throttle = 0
	p.Chemical.burnLeft = 0
}

// update advances a commanded burn by dt simulated seconds. Burn
// termination is tracked as a countdown in simulation time, never against
// the wall clock.
func (e *ChemicalEngine) update(dt float64) {
	if e.throttle <= 0 {
		return
	}
	burn := math.Min(dt, e.burnLeft)
	e.drawPropellant(e.massFlow() * e.throttle * burn)
	e.burnLeft -= dt
	if e.burnLeft <= 0 || e.Propellant() <= 0 {
		e.throttle = 0
		e.burnLeft = 0
	}
}

// Update advances the engines by dt simulated seconds.
func (p *Propulsion) Update(dt float64) {
	p.Chemical.update(dt)
	p.Ion.Update(dt)
}
