package ips

import (
	"os"
	"time"

	kitlog "github.com/go-kit/kit/log"
)

// Simulation owns the celestial bodies and the fleet and advances them in
// lock step. All state hangs off this handle; two simulations never share
// anything.
type Simulation struct {
	Epoch  time.Time
	bodies []GravitySource
	craft  []*Spacecraft

	missionTime float64 // s
	logger      kitlog.Logger
}

// NewSimulation builds a simulation at the given epoch over the given
// bodies. With no bodies the full solar system catalog from the Sun through
// Neptune is used.
func NewSimulation(epoch time.Time, bodies ...GravitySource) *Simulation {
	if len(bodies) == 0 {
		for _, body := range []CelestialObject{Sun, Mercury, Venus, Earth, Mars, Jupiter, Saturn, Uranus, Neptune} {
			bodies = append(bodies, body)
		}
	}
	klog := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	klog = kitlog.With(klog, "sim", epoch.Format(time.RFC3339))
	return &Simulation{Epoch: epoch, bodies: bodies, logger: klog}
}

// Bodies returns the gravitating bodies of this simulation.
func (s *Simulation) Bodies() []GravitySource {
	return s.bodies
}

// MissionTime returns the simulated seconds elapsed since the epoch.
func (s *Simulation) MissionTime() float64 {
	return s.missionTime
}

// CurrentDT returns the simulation date.
func (s *Simulation) CurrentDT() time.Time {
	return s.Epoch.Add(time.Duration(s.missionTime * float64(time.Second)))
}

// Launch registers a new spacecraft at the given heliocentric state with an
// explicit subsystem bus.
func (s *Simulation) Launch(name string, R, V []float64, dryMass float64, bus SystemsBus) *Spacecraft {
	sc := NewSpacecraft(name, s.CurrentDT(), R, V, dryMass, bus)
	s.craft = append(s.craft, sc)
	s.logger.Log("level", "info", "subsys", "sim", "launched", name, "mass(kg)", sc.Mass())
	return sc
}

// LaunchPreset registers a new spacecraft built from a named loadout.
func (s *Simulation) LaunchPreset(name, preset string, R, V []float64) (*Spacecraft, error) {
	p, err := PresetByName(preset)
	if err != nil {
		return nil, err
	}
	return s.Launch(name, R, V, p.DryMass, p.Bus()), nil
}

// Remove drops a spacecraft from the simulation.
func (s *Simulation) Remove(sc *Spacecraft) {
	for i, c := range s.craft {
		if c == sc {
			s.craft = append(s.craft[:i], s.craft[i+1:]...)
			return
		}
	}
}

// Craft returns the registered fleet.
func (s *Simulation) Craft() []*Spacecraft {
	return s.craft
}

// Tick advances the whole simulation by dt simulated seconds.
func (s *Simulation) Tick(dt float64) {
	for _, sc := range s.craft {
		sc.Tick(dt, s.bodies)
	}
	s.missionTime += dt
}
