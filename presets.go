package ips

import "fmt"

// SpacecraftPreset is a named vehicle loadout: a dry mass and a factory for
// the subsystem bus that goes with it.
type SpacecraftPreset struct {
	Name    string
	DryMass float64 // kg
	newBus  func() SystemsBus
}

// Bus builds a fresh subsystem bus for one vehicle. Buses are never shared
// between spacecraft.
func (p SpacecraftPreset) Bus() SystemsBus {
	return p.newBus()
}

// PresetByName resolves a loadout by name. The basic preset is a bare
// engine and tank; the enhanced preset carries the full subsystem chain.
func PresetByName(name string) (SpacecraftPreset, error) {
	switch name {
	case "basic":
		return SpacecraftPreset{
			Name:    "basic",
			DryMass: 1000,
			newBus: func() SystemsBus {
				return newCoreSystems(500, 300, 500)
			},
		}, nil
	case "enhanced":
		return SpacecraftPreset{
			Name:    "enhanced",
			DryMass: 1200,
			newBus: func() SystemsBus {
				return &SpacecraftSystems{
					Power: PowerSystem{
						PanelArea:       30,
						PanelEfficiency: 0.29,
						BatteryCapacity: 5000,
						Charge:          5000,
						BaseLoad:        300,
						PropulsionLoad:  2500,
						CommsLoad:       150,
						InstrumentLoad:  100,
					},
					Thermal: ThermalSystem{
						Temperature:  293,
						HeatCapacity: 8e5,
						Absorptivity: 0.3,
						Emissivity:   0.8,
						AbsorberArea: 12,
						RadiatorArea: 18,
						Setpoint:     293,
						ControlGain:  5,
					},
					Comms: CommsSystem{
						ReferenceRate: 2e6,
						MinimumRate:   10,
					},
					Attitude: AttitudeSystem{
						Mode:          ModeSunPointing,
						Orientation:   [4]float64{1, 0, 0, 0},
						WheelMomentum: make([]float64, 3),
						MaxMomentum:   50,
						RCSFuel:       20,
						ControlGain:   2,
						SlewRate:      0.01,
						DesatFuelRate: 1e-4,
					},
					Propulsion: Propulsion{
						Chemical: ChemicalEngine{
							Thrust:       450,
							Isp:          320,
							FuelMass:     320,
							OxidizerMass: 480,
							MixtureRatio: 1.5,
							MaxIgnitions: 20,
						},
						Ion: IonEngine{
							Thruster:  new(PPS1350),
							XenonMass: 80,
						},
					},
					Instruments: true,
				}
			},
		}, nil
	}
	return SpacecraftPreset{}, fmt.Errorf("unknown spacecraft preset `%s`", name)
}
