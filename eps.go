package ips

// Electrical power subsystem: solar generation, consumer loads, battery.

// PowerLoads gates the non-baseload consumers for the current tick.
type PowerLoads struct {
	Thrusting    bool
	Transmitting bool
	Instruments  bool
}

// PowerSystem models solar generation against consumer loads with a battery
// integrating the balance.
type PowerSystem struct {
	PanelArea       float64 // m^2
	PanelEfficiency float64
	Degradation     float64 // fraction of capability lost, [0,1)
	BatteryCapacity float64 // Wh
	Charge          float64 // Wh

	BaseLoad       float64 // W, always on
	PropulsionLoad float64 // W, while thrusting
	CommsLoad      float64 // W, while transmitting
	InstrumentLoad float64 // W, while instruments active
	thermalLoad    float64 // W, fed back from the thermal controller

	generation  float64 // W, last tick
	consumption float64 // W, last tick
}

// Update integrates the power balance over dt seconds at the given solar
// distance (AU).
func (p *PowerSystem) Update(dt, solarDistanceAU float64, loads PowerLoads) {
	flux := SolarFlux
	if solarDistanceAU > 0 {
		flux = SolarFlux / (solarDistanceAU * solarDistanceAU)
	}
	p.generation = flux * p.PanelArea * p.PanelEfficiency * (1 - p.Degradation)

	p.consumption = p.BaseLoad + p.thermalLoad
	if loads.Thrusting {
		p.consumption += p.PropulsionLoad
	}
	if loads.Transmitting {
		p.consumption += p.CommsLoad
	}
	if loads.Instruments {
		p.consumption += p.InstrumentLoad
	}

	p.Charge += (p.generation - p.consumption) * dt / 3600
	capacity := p.EffectiveCapacity()
	if p.Charge > capacity {
		p.Charge = capacity
	} else if p.Charge < 0 {
		p.Charge = 0
	}
}

// EffectiveCapacity returns the battery capacity after degradation, in Wh.
func (p PowerSystem) EffectiveCapacity() float64 {
	return p.BatteryCapacity * (1 - p.Degradation)
}

// ChargeFraction returns the battery state of charge in [0,1].
func (p PowerSystem) ChargeFraction() float64 {
	capacity := p.EffectiveCapacity()
	if capacity <= 0 {
		return 0
	}
	return p.Charge / capacity
}

// Balance returns the last generation and consumption figures in watts.
func (p PowerSystem) Balance() (generation, consumption float64) {
	return p.generation, p.consumption
}

// Deficit returns whether the loads exceeded generation on the last tick.
func (p PowerSystem) Deficit() bool {
	return p.consumption > p.generation
}
