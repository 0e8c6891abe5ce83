package ips

import (
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	kitlog "github.com/go-kit/kit/log"
)

const (
	// gravityFloorAU is the singularity guard: bodies closer than this do
	// not contribute acceleration.
	gravityFloorAU = 0.01
	// defaultTrajectoryCap is the ring buffer capacity for the trajectory
	// history.
	defaultTrajectoryCap = 1024
	// approachSOIFactor scales the target SOI for the approach phase.
	approachSOIFactor = 3.0
)

// MissionPhase tracks where the vehicle is relative to its target body.
type MissionPhase uint8

const (
	// PhaseCruise is deep-space coasting.
	PhaseCruise MissionPhase = iota + 1
	// PhaseApproach is within a few SOI radii of the target.
	PhaseApproach
	// PhaseEncounter is within the target's sphere of influence.
	PhaseEncounter
	// PhaseEscape is a solar escape trajectory.
	PhaseEscape
)

func (p MissionPhase) String() string {
	switch p {
	case PhaseCruise:
		return "cruise"
	case PhaseApproach:
		return "approach"
	case PhaseEncounter:
		return "encounter"
	case PhaseEscape:
		return "escape"
	}
	panic(fmt.Errorf("unknown mission phase %d", p))
}

// TrajectoryBuffer is a fixed-capacity FIFO of past positions (AU). Once
// full, each append evicts the oldest point.
type TrajectoryBuffer struct {
	pts  [][3]float64
	head int // index of the oldest point
	size int
}

// NewTrajectoryBuffer returns a buffer of the given capacity.
func NewTrajectoryBuffer(capacity int) *TrajectoryBuffer {
	if capacity <= 0 {
		capacity = defaultTrajectoryCap
	}
	return &TrajectoryBuffer{pts: make([][3]float64, capacity)}
}

// Append records a position, evicting the oldest once at capacity.
func (t *TrajectoryBuffer) Append(p []float64) {
	idx := (t.head + t.size) % len(t.pts)
	t.pts[idx] = [3]float64{p[0], p[1], p[2]}
	if t.size < len(t.pts) {
		t.size++
	} else {
		t.head = (t.head + 1) % len(t.pts)
	}
}

// Len returns the number of stored points.
func (t *TrajectoryBuffer) Len() int {
	return t.size
}

// Capacity returns the fixed capacity.
func (t *TrajectoryBuffer) Capacity() int {
	return len(t.pts)
}

// Points returns the stored positions, oldest first.
func (t *TrajectoryBuffer) Points() [][3]float64 {
	out := make([][3]float64, t.size)
	for i := 0; i < t.size; i++ {
		out[i] = t.pts[(t.head+i)%len(t.pts)]
	}
	return out
}

// Telemetry is the spacecraft snapshot handed to callers each query.
type Telemetry struct {
	MissionTime  float64    // s
	Position     [3]float64 // AU
	Speed        float64    // km/s
	FuelPercent  float64
	EngineStatus string
	Phase        MissionPhase
	Systems      *SystemsStatus // nil for the basic loadout
}

// Spacecraft owns a heliocentric state and integrates it tick by tick:
// gravity from every provided body, engine thrust, fuel draw, maneuver
// scheduling and the trajectory history.
type Spacecraft struct {
	Name    string
	R       []float64 // AU, heliocentric
	V       []float64 // km/s
	Accel   []float64 // m/s^2, of the last tick
	DryMass float64   // kg

	MissionTime float64 // s
	Epoch       time.Time

	Systems SystemsBus

	primary       CelestialObject
	target        *CelestialObject
	phase         MissionPhase
	maneuvers     []*ManeuverNode
	manualBurnRSW [3]float64
	manualBurn    bool
	traj          *TrajectoryBuffer
	initialFuel   float64
	logger        kitlog.Logger
	invalidWarned bool
}

// NewSpacecraft assembles a spacecraft at the given heliocentric state. A
// zero position is defaulted to 1 AU on the +X axis to keep the state away
// from the solar singularity.
func NewSpacecraft(name string, epoch time.Time, R, V []float64, dryMass float64, bus SystemsBus) *Spacecraft {
	if norm(R) == 0 {
		R = []float64{1, 0, 0}
	}
	klog := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	klog = kitlog.With(klog, "sc", name)
	return &Spacecraft{
		Name:        name,
		R:           append([]float64{}, R...),
		V:           append([]float64{}, V...),
		Accel:       make([]float64, 3),
		DryMass:     dryMass,
		Epoch:       epoch,
		Systems:     bus,
		primary:     Sun,
		phase:       PhaseCruise,
		traj:        NewTrajectoryBuffer(defaultTrajectoryCap),
		initialFuel: bus.FuelMass(),
		logger:      klog,
	}
}

// Mass returns the current vehicle mass in kg.
func (s *Spacecraft) Mass() float64 {
	return s.DryMass + s.Systems.FuelMass()
}

// FuelMass returns the remaining main-engine propellant in kg.
func (s *Spacecraft) FuelMass() float64 {
	return s.Systems.FuelMass()
}

// SetTarget selects the body driving the mission-phase machine.
func (s *Spacecraft) SetTarget(body CelestialObject) {
	s.target = &body
}

// Phase returns the current mission phase.
func (s *Spacecraft) Phase() MissionPhase {
	return s.phase
}

// Trajectory returns the bounded position history, oldest first.
func (s *Spacecraft) Trajectory() [][3]float64 {
	return s.traj.Points()
}

// CurrentDT returns the simulation date of the spacecraft clock.
func (s *Spacecraft) CurrentDT() time.Time {
	return s.Epoch.Add(time.Duration(s.MissionTime * float64(time.Second)))
}

// GetOrbitalElements derives the heliocentric orbital elements from the
// current state.
func (s *Spacecraft) GetOrbitalElements() OrbitalElements {
	return OrbitalElementsFromRV(s.R, s.V, s.primary.GM())
}

// StartManualBurn lights the engine along an RSW direction until the given
// duration elapses in simulation time, subject to the systems gates.
func (s *Spacecraft) StartManualBurn(dirRSW [3]float64, duration float64) error {
	if err := s.Systems.Ignite(0, duration, s.Mass()); err != nil {
		return err
	}
	s.manualBurnRSW = dirRSW
	s.manualBurn = true
	return nil
}

// StopManualBurn cuts the engine.
func (s *Spacecraft) StopManualBurn() {
	s.manualBurn = false
	s.Systems.Cutoff()
}

// AddManeuverNode schedules a burn timeFromNow seconds ahead and returns the
// node for Δv planning. The queue stays ordered by countdown.
func (s *Spacecraft) AddManeuverNode(timeFromNow float64) *ManeuverNode {
	n := &ManeuverNode{TimeFromNow: timeFromNow, status: ManeuverPlanned, sc: s}
	n.recompute()
	s.maneuvers = append(s.maneuvers, n)
	s.sortManeuvers()
	return n
}

// RemoveManeuverNode deletes a node at any point of its lifecycle. An
// executing node's burn is cut off.
func (s *Spacecraft) RemoveManeuverNode(n *ManeuverNode) {
	for i, m := range s.maneuvers {
		if m == n {
			if m.status == ManeuverExecuting {
				s.Systems.Cutoff()
			}
			s.maneuvers = append(s.maneuvers[:i], s.maneuvers[i+1:]...)
			return
		}
	}
}

// ManeuverNodes returns the queue, soonest first.
func (s *Spacecraft) ManeuverNodes() []*ManeuverNode {
	return s.maneuvers
}

func (s *Spacecraft) sortManeuvers() {
	sort.SliceStable(s.maneuvers, func(i, j int) bool {
		return s.maneuvers[i].TimeFromNow < s.maneuvers[j].TimeFromNow
	})
}

// Tick advances the spacecraft by dt simulated seconds under the gravity of
// the provided bodies. Subsystems update first, then the maneuver queue,
// then the state integrates with semi-implicit Euler: the velocity update
// uses this tick's acceleration and the position update uses the already
// updated velocity.
func (s *Spacecraft) Tick(dt float64, bodies []GravitySource) {
	now := s.CurrentDT()

	solarDist := norm(s.R)
	earthDist := solarDist
	for _, b := range bodies {
		if b.String() == "Earth" {
			rel := make([]float64, 3)
			earthR := b.PositionAU(now)
			for i := 0; i < 3; i++ {
				rel[i] = earthR[i] - s.R[i]
			}
			earthDist = norm(rel)
			break
		}
	}
	s.Systems.Update(dt, SystemsEnvironment{
		MissionTime:     s.MissionTime,
		SolarDistanceAU: solarDist,
		EarthDistanceAU: earthDist,
		R:               s.R,
		V:               s.V,
	})

	s.checkManeuverExecution(dt)

	acc := s.gravityAccel(now, bodies)
	if thrust := s.thrustAccel(); thrust != nil {
		for i := 0; i < 3; i++ {
			acc[i] += thrust[i]
		}
	}
	copy(s.Accel, acc)

	for i := 0; i < 3; i++ {
		s.V[i] += acc[i] * dt / 1000 // m/s^2 -> km/s
	}
	for i := 0; i < 3; i++ {
		s.R[i] += s.V[i] * dt / AU // km -> AU
	}
	s.MissionTime += dt

	if finiteVec(s.R) && finiteVec(s.V) {
		s.traj.Append(s.R)
	} else if !s.invalidWarned {
		s.invalidWarned = true
		s.logger.Log("level", "warning", "subsys", "astro", "message", "state no longer finite, trajectory recording suspended")
	}

	s.updatePhase(now)
}

// gravityAccel sums the point-mass acceleration of every body, in m/s^2.
// Bodies within the distance floor are skipped, as is any non-finite
// contribution.
func (s *Spacecraft) gravityAccel(now time.Time, bodies []GravitySource) []float64 {
	acc := make([]float64, 3)
	for _, b := range bodies {
		bp := b.PositionAU(now)
		rel := make([]float64, 3)
		for i := 0; i < 3; i++ {
			rel[i] = (bp[i] - s.R[i]) * AU // km
		}
		d := norm(rel)
		if d < gravityFloorAU*AU {
			continue
		}
		// μ/d^2 in km/s^2, scaled to m/s^2.
		mag := b.GM() / (d * d) * 1000
		ok := true
		contrib := make([]float64, 3)
		for i := 0; i < 3; i++ {
			contrib[i] = mag * rel[i] / d
			if math.IsNaN(contrib[i]) || math.IsInf(contrib[i], 0) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		for i := 0; i < 3; i++ {
			acc[i] += contrib[i]
		}
	}
	return acc
}

// thrustAccel returns the engine acceleration in m/s^2, or nil when the
// engine is cold or dry.
func (s *Spacecraft) thrustAccel() []float64 {
	throttle := s.Systems.Throttle()
	if throttle <= 0 || s.Systems.FuelMass() <= 0 {
		return nil
	}
	thrust, _ := s.Systems.ThrustIsp()
	dirRSW := s.manualBurnRSW
	if head := s.executingNode(); head != nil {
		dirRSW = head.Δv
	} else if !s.manualBurn {
		// Engine lit without a direction: default to prograde.
		dirRSW = [3]float64{0, 1, 0}
	}
	n := norm(dirRSW[:])
	if n == 0 {
		dirRSW = [3]float64{0, 1, 0}
		n = 1
	}
	for i := range dirRSW {
		dirRSW[i] /= n
	}
	dir := ConvertDeltaV(dirRSW, s.R, s.V)
	return scaled(dir, thrust*throttle/s.Mass())
}

func (s *Spacecraft) executingNode() *ManeuverNode {
	if len(s.maneuvers) > 0 && s.maneuvers[0].status == ManeuverExecuting {
		return s.maneuvers[0]
	}
	return nil
}

// checkManeuverExecution drives the head of the queue: countdown, ignition,
// burn progress, completion. At most one node executes at a time.
func (s *Spacecraft) checkManeuverExecution(dt float64) {
	if len(s.maneuvers) == 0 {
		return
	}
	head := s.maneuvers[0]
	switch head.status {
	case ManeuverPlanned:
		head.TimeFromNow -= dt
		if head.TimeFromNow > 0 {
			return
		}
		if err := s.Systems.Ignite(head.TotalΔv(), head.BurnDuration, s.Mass()); err != nil {
			// No automatic retry: the planner re-attempts explicitly.
			s.logger.Log("level", "warning", "subsys", "prop", "maneuver", "refused", "err", err.Error())
			s.RemoveManeuverNode(head)
			return
		}
		head.status = ManeuverExecuting
		head.timeRemaining = head.BurnDuration
		s.logger.Log("level", "info", "subsys", "prop", "maneuver", "ignition", "Δv(km/s)", head.TotalΔv(), "burn(s)", head.BurnDuration)
	case ManeuverExecuting:
		head.timeRemaining -= dt
		if head.timeRemaining <= 0 {
			head.status = ManeuverCompleted
			s.Systems.Cutoff()
			s.logger.Log("level", "info", "subsys", "prop", "maneuver", "completed")
			s.RemoveManeuverNode(head)
		}
	}
}

func (s *Spacecraft) updatePhase(now time.Time) {
	oe := s.GetOrbitalElements()
	if oe.Hyperbolic() {
		s.phase = PhaseEscape
		return
	}
	if s.target == nil {
		s.phase = PhaseCruise
		return
	}
	tp := s.target.PositionAU(now)
	rel := make([]float64, 3)
	for i := 0; i < 3; i++ {
		rel[i] = tp[i] - s.R[i]
	}
	d := norm(rel)
	soi := s.target.SOIAU()
	switch {
	case d <= soi:
		s.phase = PhaseEncounter
	case d <= approachSOIFactor*soi:
		s.phase = PhaseApproach
	default:
		s.phase = PhaseCruise
	}
}

// GetTelemetry snapshots the vehicle for display or logging.
func (s *Spacecraft) GetTelemetry() Telemetry {
	engine := "idle"
	if s.Systems.Throttle() > 0 {
		engine = "burning"
	}
	fuelPercent := 0.0
	if s.initialFuel > 0 {
		fuelPercent = s.Systems.FuelMass() / s.initialFuel * 100
	}
	tm := Telemetry{
		MissionTime:  s.MissionTime,
		Position:     [3]float64{s.R[0], s.R[1], s.R[2]},
		Speed:        norm(s.V),
		FuelPercent:  fuelPercent,
		EngineStatus: engine,
		Phase:        s.phase,
	}
	if status, ok := s.Systems.Status(); ok {
		tm.Systems = &status
	}
	return tm
}
