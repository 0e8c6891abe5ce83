package ips

import (
	"fmt"
	"math"
)

const (
	// batteryIgnitionFloor is the state of charge below which a chemical
	// ignition is refused.
	batteryIgnitionFloor = 0.1
	// batteryWarnFraction is the state of charge below which a constraint
	// warning is raised.
	batteryWarnFraction = 0.2
	// lowFuelWarnMass is the propellant mass (kg) below which a constraint
	// warning is raised.
	lowFuelWarnMass = 50.0
	// panelDegradationRate is the per-second fractional degradation of the
	// solar array (about half a percent per year).
	panelDegradationRate = 1.6e-10
	// wasteHeatFraction is the share of consumed electrical power dumped
	// into the thermal balance.
	wasteHeatFraction = 0.6
	// systemsHistoryCap bounds the telemetry history.
	systemsHistoryCap = 512
)

// SystemsEnvironment is the per-tick environment snapshot handed to the
// subsystem chain.
type SystemsEnvironment struct {
	MissionTime     float64 // s
	SolarDistanceAU float64
	EarthDistanceAU float64
	R               []float64 // AU
	V               []float64 // km/s
}

// SystemsStatus is a telemetry snapshot of the subsystem state.
type SystemsStatus struct {
	MissionTime     float64
	BatteryCharge   float64 // Wh
	BatteryFraction float64
	Generation      float64 // W
	Consumption     float64 // W
	Temperature     float64 // K
	DataRate        float64 // bps
	SignalDelay     float64 // s
	AttitudeMode    AttitudeMode
	WheelFraction   float64 // |H| / max
	RCSFuel         float64 // kg
	Propellant      float64 // kg, chemical
	Xenon           float64 // kg
	Ignitions       uint    // remaining
}

// SystemsBus is what the integrator sees of a spacecraft's subsystems. The
// basic loadout is a no-frills engine and tank; the enhanced loadout is the
// full SpacecraftSystems chain. Capability dispatch goes through this
// interface rather than nil checks.
type SystemsBus interface {
	// Update runs the per-tick subsystem chain, before physics integration.
	Update(dt float64, env SystemsEnvironment)
	// Ignite requests a burn of the given Δv (km/s) and duration (s) at the
	// given vehicle mass (kg). A refusal is a *BurnError.
	Ignite(Δv, duration, totalMass float64) error
	// Cutoff ends any commanded burn.
	Cutoff()
	// ThrustIsp returns the main engine thrust (N) and specific impulse (s).
	ThrustIsp() (thrust, isp float64)
	// Throttle returns the main engine throttle in [0,1].
	Throttle() float64
	// FuelMass returns the remaining main-engine propellant in kg.
	FuelMass() float64
	// ConstraintCheck returns human-readable warnings, stable in order.
	ConstraintCheck() []string
	// Status returns the subsystem telemetry snapshot, false for the basic
	// loadout which has none.
	Status() (SystemsStatus, bool)
}

// coreSystems is the basic loadout: one engine, one tank, nothing to break.
type coreSystems struct {
	engine ChemicalEngine
}

func newCoreSystems(thrust, isp, fuel float64) *coreSystems {
	return &coreSystems{ChemicalEngine{
		Thrust:       thrust,
		Isp:          isp,
		FuelMass:     fuel,
		MaxIgnitions: math.MaxUint32,
	}}
}

func (c *coreSystems) Update(dt float64, env SystemsEnvironment) {
	c.engine.update(dt)
}

func (c *coreSystems) Ignite(Δv, duration, totalMass float64) error {
	if FuelForDeltaV(Δv, totalMass, c.engine.ExhaustVelocity()) > c.engine.Propellant() {
		return &BurnError{InsufficientFuel}
	}
	c.engine.ignitions++
	c.engine.throttle = 1
	c.engine.burnLeft = duration
	return nil
}

func (c *coreSystems) Cutoff() {
	c.engine.throttle = 0
	c.engine.burnLeft = 0
}

func (c *coreSystems) ThrustIsp() (float64, float64) {
	return c.engine.Thrust, c.engine.Isp
}

func (c *coreSystems) Throttle() float64 {
	return c.engine.throttle
}

func (c *coreSystems) FuelMass() float64 {
	return c.engine.Propellant()
}

func (c *coreSystems) ConstraintCheck() []string {
	if fuel := c.engine.Propellant(); fuel < lowFuelWarnMass {
		return []string{fmt.Sprintf("low fuel: %.1f kg remaining", fuel)}
	}
	return nil
}

func (c *coreSystems) Status() (SystemsStatus, bool) {
	return SystemsStatus{}, false
}

// SpacecraftSystems is the enhanced loadout: power, thermal, comms, attitude
// and the dual-mode propulsion stack, updated once per tick in a fixed
// order (environment, power, thermal, comms, attitude, degradation).
type SpacecraftSystems struct {
	Power       PowerSystem
	Thermal     ThermalSystem
	Comms       CommsSystem
	Attitude    AttitudeSystem
	Propulsion  Propulsion
	Instruments bool

	history     []SystemsStatus
	missionTime float64
}

// Update implements SystemsBus.
func (s *SpacecraftSystems) Update(dt float64, env SystemsEnvironment) {
	s.missionTime = env.MissionTime
	loads := PowerLoads{
		Thrusting:    s.Propulsion.Chemical.throttle > 0 || s.Propulsion.Ion.Active,
		Transmitting: s.Comms.Transmitting,
		Instruments:  s.Instruments,
	}
	s.Power.thermalLoad = s.Thermal.ControlPower()
	s.Power.Update(dt, env.SolarDistanceAU, loads)
	_, consumption := s.Power.Balance()
	s.Thermal.Update(dt, env.SolarDistanceAU, consumption*wasteHeatFraction)
	s.Comms.Update(env.EarthDistanceAU)
	s.Attitude.Update(dt, env.R, env.V)
	s.Propulsion.Update(dt)
	s.Power.Degradation += panelDegradationRate * dt

	status, _ := s.Status()
	s.history = append(s.history, status)
	if len(s.history) > systemsHistoryCap {
		s.history = s.history[1:]
	}
}

// Ignite implements SystemsBus: the battery floor is checked before the
// propulsion stack commits the ignition.
func (s *SpacecraftSystems) Ignite(Δv, duration, totalMass float64) error {
	if s.Power.ChargeFraction() < batteryIgnitionFloor {
		return &BurnError{InsufficientPower}
	}
	return s.Propulsion.Ignite(Δv, duration, totalMass)
}

// Cutoff implements SystemsBus.
func (s *SpacecraftSystems) Cutoff() {
	s.Propulsion.Cutoff()
}

// ThrustIsp implements SystemsBus.
func (s *SpacecraftSystems) ThrustIsp() (float64, float64) {
	return s.Propulsion.Chemical.Thrust, s.Propulsion.Chemical.Isp
}

// Throttle implements SystemsBus.
func (s *SpacecraftSystems) Throttle() float64 {
	return s.Propulsion.Chemical.throttle
}

// FuelMass implements SystemsBus.
func (s *SpacecraftSystems) FuelMass() float64 {
	return s.Propulsion.Chemical.Propellant()
}

// ConstraintCheck implements SystemsBus. Warnings come back in a stable
// order: power first, then thermal, attitude, propellant.
func (s *SpacecraftSystems) ConstraintCheck() (warnings []string) {
	if frac := s.Power.ChargeFraction(); frac < batteryWarnFraction {
		warnings = append(warnings, fmt.Sprintf("low battery: %.0f%% charge", frac*100))
	}
	if s.Power.Deficit() {
		gen, cons := s.Power.Balance()
		warnings = append(warnings, fmt.Sprintf("power deficit: generating %.0f W, consuming %.0f W", gen, cons))
	}
	if !s.Thermal.WithinLimits() {
		warnings = append(warnings, fmt.Sprintf("thermal violation: %.1f K outside [%.0f K, %.0f K]", s.Thermal.Temperature, thermalSoftMin, thermalSoftMax))
	}
	if s.Attitude.Saturated() {
		warnings = append(warnings, fmt.Sprintf("reaction wheels near saturation: %.0f%% of maximum momentum", norm(s.Attitude.WheelMomentum)/s.Attitude.MaxMomentum*100))
	}
	if fuel := s.FuelMass(); fuel < lowFuelWarnMass {
		warnings = append(warnings, fmt.Sprintf("low fuel: %.1f kg remaining", fuel))
	}
	return warnings
}

// Status implements SystemsBus.
func (s *SpacecraftSystems) Status() (SystemsStatus, bool) {
	wheelFrac := 0.0
	if s.Attitude.MaxMomentum > 0 {
		wheelFrac = norm(s.Attitude.WheelMomentum) / s.Attitude.MaxMomentum
	}
	gen, cons := s.Power.Balance()
	return SystemsStatus{
		MissionTime:     s.missionTime,
		BatteryCharge:   s.Power.Charge,
		BatteryFraction: s.Power.ChargeFraction(),
		Generation:      gen,
		Consumption:     cons,
		Temperature:     s.Thermal.Temperature,
		DataRate:        s.Comms.DataRate(),
		SignalDelay:     s.Comms.SignalDelay(),
		AttitudeMode:    s.Attitude.Mode,
		WheelFraction:   wheelFrac,
		RCSFuel:         s.Attitude.RCSFuel,
		Propellant:      s.Propulsion.Chemical.Propellant(),
		Xenon:           s.Propulsion.Ion.XenonMass,
		Ignitions:       s.Propulsion.Chemical.IgnitionsRemaining(),
	}, true
}

// History returns the bounded telemetry history, oldest first.
func (s *SpacecraftSystems) History() []SystemsStatus {
	return s.history
}
