package ips

import "math"

// Hard clamp keeping the temperature integration from running away, and the
// soft operational band reported through constraint checks.
const (
	thermalFloor   = 100.0 // K
	thermalCeiling = 400.0 // K
	thermalSoftMin = 253.0 // K
	thermalSoftMax = 323.0 // K
)

// ThermalSystem integrates the internal temperature from waste heat, solar
// heating and Stefan-Boltzmann radiative cooling.
type ThermalSystem struct {
	Temperature  float64 // K
	HeatCapacity float64 // J/K
	AbsorberArea float64 // m^2, sun-facing cross-section
	Absorptivity float64
	RadiatorArea float64 // m^2
	Emissivity   float64
	Setpoint     float64 // K, optimal operating temperature
	ControlGain  float64 // W/K of deviation from the setpoint
	controlPower float64 // W, last tick
}

// Update integrates the heat balance over dt seconds. wasteHeat is the
// electrical dissipation of the other subsystems in watts.
func (t *ThermalSystem) Update(dt, solarDistanceAU, wasteHeat float64) {
	flux := SolarFlux
	if solarDistanceAU > 0 {
		flux = SolarFlux / (solarDistanceAU * solarDistanceAU)
	}
	heating := flux * t.AbsorberArea * t.Absorptivity
	cooling := StefanBoltzmann * t.Emissivity * t.RadiatorArea * math.Pow(t.Temperature, 4)
	if t.HeatCapacity > 0 {
		t.Temperature += (wasteHeat + heating - cooling) / t.HeatCapacity * dt
	}
	if t.Temperature < thermalFloor {
		t.Temperature = thermalFloor
	} else if t.Temperature > thermalCeiling {
		t.Temperature = thermalCeiling
	}
	t.controlPower = t.ControlGain * math.Abs(t.Temperature-t.Setpoint)
}

// ControlPower returns the heater/cooler draw of the last tick in watts.
func (t ThermalSystem) ControlPower() float64 {
	return t.controlPower
}

// WithinLimits returns whether the temperature sits in the soft operational
// band.
func (t ThermalSystem) WithinLimits() bool {
	return t.Temperature >= thermalSoftMin && t.Temperature <= thermalSoftMax
}
