package ips

import (
	"math"
	"testing"

	"github.com/gonum/floats"
)

func TestTrajectoryBufferFIFO(t *testing.T) {
	buf := NewTrajectoryBuffer(4)
	if buf.Capacity() != 4 {
		t.Fatalf("capacity %d", buf.Capacity())
	}
	for i := 1; i <= 6; i++ {
		buf.Append([]float64{float64(i), 0, 0})
	}
	if buf.Len() != 4 {
		t.Fatalf("length %d after 6 appends", buf.Len())
	}
	pts := buf.Points()
	for i, exp := range []float64{3, 4, 5, 6} {
		if pts[i][0] != exp {
			t.Fatalf("point %d is %f, expected %f (oldest evicted first)", i, pts[i][0], exp)
		}
	}
}

// specificEnergy returns the heliocentric specific orbital energy of the
// craft in km^2/s^2.
func specificEnergy(sc *Spacecraft) float64 {
	return norm(sc.V)*norm(sc.V)/2 - Sun.GM()/(norm(sc.R)*AU)
}

func TestTickEnergyConservation(t *testing.T) {
	sc := newTestCraft()
	bodies := []GravitySource{Sun}
	ξ0 := specificEnergy(sc)
	// One full year at ten-minute steps.
	dt := 600.0
	for elapsed := 0.0; elapsed < 365.25*SecondsPerDay; elapsed += dt {
		sc.Tick(dt, bodies)
	}
	ξ := specificEnergy(sc)
	if math.Abs((ξ-ξ0)/ξ0) > 0.01 {
		t.Fatalf("energy drifted from %f to %f km^2/s^2 over a year", ξ0, ξ)
	}
	// The orbit radius is still 1 AU.
	if !floats.EqualWithinRel(norm(sc.R), 1, 0.01) {
		t.Fatalf("|R|=%f AU after a year on a circular orbit", norm(sc.R))
	}
}

// measuredPeriod integrates a circular orbit at the given radius (AU) and
// returns the simulated period in days, detected by the crossing of the +X
// axis.
func measuredPeriod(t *testing.T, rAU float64) float64 {
	bus := newCoreSystems(500, 300, 500)
	sc := NewSpacecraft("kepler", testEpoch, []float64{rAU, 0, 0}, []float64{0, circularSpeed(rAU), 0}, 1000, bus)
	bodies := []GravitySource{Sun}
	dt := 600.0
	limit := 3 * 365.25 * math.Pow(rAU, 1.5) * SecondsPerDay
	prevY := 0.0
	for elapsed := dt; elapsed < limit; elapsed += dt {
		sc.Tick(dt, bodies)
		if prevY < 0 && sc.R[1] >= 0 {
			return elapsed / SecondsPerDay
		}
		prevY = sc.R[1]
	}
	t.Fatalf("no orbit completed at %f AU", rAU)
	return 0
}

func TestTickKeplerThirdLaw(t *testing.T) {
	p1 := measuredPeriod(t, 1)
	if !floats.EqualWithinRel(p1, 365.25, 0.01) {
		t.Fatalf("period at 1 AU is %f days", p1)
	}
	p15 := measuredPeriod(t, 1.5)
	// P^2 proportional to a^3.
	if ratio := p15 / p1; !floats.EqualWithinRel(ratio, math.Pow(1.5, 1.5), 0.01) {
		t.Fatalf("period ratio %f, expected %f", ratio, math.Pow(1.5, 1.5))
	}
}

func TestTickSolarAcceleration(t *testing.T) {
	sc := newTestCraft()
	sc.Tick(1, []GravitySource{Sun})
	// Solar gravity at 1 AU is about 5.93 mm/s^2, pointed at the Sun.
	if !floats.EqualWithinRel(norm(sc.Accel), 5.93e-3, 1e-2) {
		t.Fatalf("|a|=%e m/s^2 at 1 AU", norm(sc.Accel))
	}
	if sc.Accel[0] >= 0 {
		t.Fatal("solar gravity not pointed at the Sun")
	}
}

func TestTickGravityFloor(t *testing.T) {
	// Sitting almost on top of a body: the singularity guard must skip it
	// instead of producing a huge kick.
	sc := NewSpacecraft("close", testEpoch, []float64{1, 0, 0}, []float64{0, 0, 0}, 1000, newCoreSystems(500, 300, 500))
	sc.R = []float64{0.005, 0, 0} // well inside the floor around the Sun
	sc.Tick(1, []GravitySource{Sun})
	if norm(sc.V) != 0 {
		t.Fatalf("|V|=%f km/s after a tick inside the gravity floor", norm(sc.V))
	}
}

func TestTickInvalidStateStopsTrajectory(t *testing.T) {
	sc := newTestCraft()
	bodies := []GravitySource{Sun}
	sc.Tick(60, bodies)
	recorded := len(sc.Trajectory())
	sc.R[0] = math.NaN()
	sc.Tick(60, bodies)
	sc.Tick(60, bodies)
	if len(sc.Trajectory()) != recorded {
		t.Fatal("non-finite state was recorded in the trajectory")
	}
}

func TestScenarioCircularLaunch(t *testing.T) {
	// Launched at the circular velocity, the orbit stays near circular for a
	// month of ticks.
	sc := newTestCraft()
	bodies := []GravitySource{Sun}
	for elapsed := 0.0; elapsed < 30*SecondsPerDay; elapsed += 600 {
		sc.Tick(600, bodies)
	}
	oe := sc.GetOrbitalElements()
	if oe.Eccentricity > 0.02 {
		t.Fatalf("e=%f after a month of coasting", oe.Eccentricity)
	}
	if !floats.EqualWithinAbs(oe.SemiMajorAxis, 1, 0.01) {
		t.Fatalf("a=%f AU after a month of coasting", oe.SemiMajorAxis)
	}
}

// boostCraft returns a heavily fueled craft on a circular 1 AU orbit, able
// to deliver several km/s.
func boostCraft() *Spacecraft {
	bus := newCoreSystems(50000, 300, 5000)
	return NewSpacecraft("booster", testEpoch, []float64{1, 0, 0}, []float64{0, circularSpeed(1), 0}, 1000, bus)
}

func TestScenarioProgradeBoost(t *testing.T) {
	sc := boostCraft()
	bodies := []GravitySource{Sun}
	n := sc.AddManeuverNode(30)
	n.SetΔv(0, 5, 0)
	// Through the countdown and the whole burn, plus a short coast.
	for elapsed := 0.0; elapsed < 30+n.BurnDuration+120; elapsed += 10 {
		sc.Tick(10, bodies)
	}
	oe := sc.GetOrbitalElements()
	if oe.Eccentricity < 0.2 {
		t.Fatalf("e=%f after a 5 km/s prograde boost", oe.Eccentricity)
	}
	if !floats.EqualWithinAbs(oe.Periapsis, 1, 0.05) {
		t.Fatalf("periapsis %f AU, the boost point should stay the periapsis", oe.Periapsis)
	}
	if oe.Apoapsis < 1.5 {
		t.Fatalf("apoapsis %f AU after a 5 km/s prograde boost", oe.Apoapsis)
	}
}

func TestScenarioHohmannDeparture(t *testing.T) {
	sc := boostCraft()
	bodies := []GravitySource{Sun}
	h := NewHohmannTransfer(AU, 1.524*AU, Sun)
	n := sc.AddManeuverNode(30)
	n.SetΔv(0, h.DepartureΔv, 0)
	for elapsed := 0.0; elapsed < 30+n.BurnDuration+120; elapsed += 10 {
		sc.Tick(10, bodies)
	}
	oe := sc.GetOrbitalElements()
	// The transfer apoapsis reaches the Mars orbital radius.
	if !floats.EqualWithinAbs(oe.Apoapsis, 1.524, 0.05) {
		t.Fatalf("apoapsis %f AU after the departure burn, expected about 1.524", oe.Apoapsis)
	}
}

func TestScenarioEscape(t *testing.T) {
	// Past the solar escape velocity the phase machine flags the escape.
	bus := newCoreSystems(500, 300, 500)
	sc := NewSpacecraft("voyager", testEpoch, []float64{1, 0, 0}, []float64{0, 50, 0}, 1000, bus)
	sc.Tick(600, []GravitySource{Sun})
	if !sc.GetOrbitalElements().Hyperbolic() {
		t.Fatal("50 km/s at 1 AU is not bound")
	}
	if sc.Phase() != PhaseEscape {
		t.Fatalf("phase %s on an escape trajectory", sc.Phase())
	}
}

func TestPhaseMachineApproach(t *testing.T) {
	target := Mars
	tp := target.PositionAU(testEpoch)
	prograde := unit(cross([]float64{0, 0, 1}, tp))
	v := scaled(prograde, circularSpeed(norm(tp)))

	// Inside the SOI: encounter.
	sc := NewSpacecraft("lander", testEpoch, tp, v, 1000, newCoreSystems(500, 300, 500))
	sc.SetTarget(target)
	sc.Tick(60, []GravitySource{Sun})
	if sc.Phase() != PhaseEncounter {
		t.Fatalf("phase %s at the target position", sc.Phase())
	}

	// A couple of SOI radii out: approach.
	off := append([]float64{}, tp...)
	off[2] += 2 * target.SOIAU()
	sc = NewSpacecraft("flyby", testEpoch, off, v, 1000, newCoreSystems(500, 300, 500))
	sc.SetTarget(target)
	sc.Tick(60, []GravitySource{Sun})
	if sc.Phase() != PhaseApproach {
		t.Fatalf("phase %s at two SOI radii", sc.Phase())
	}

	// Far away: cruise.
	sc = NewSpacecraft("cruiser", testEpoch, []float64{1, 0, 0}, []float64{0, circularSpeed(1), 0}, 1000, newCoreSystems(500, 300, 500))
	sc.SetTarget(target)
	sc.Tick(60, []GravitySource{Sun})
	if sc.Phase() != PhaseCruise {
		t.Fatalf("phase %s at 0.5 AU from the target", sc.Phase())
	}
}

func TestGetTelemetry(t *testing.T) {
	sc := newTestCraft()
	sc.Tick(60, []GravitySource{Sun})
	tm := sc.GetTelemetry()
	if tm.EngineStatus != "idle" {
		t.Fatalf("engine %s while coasting", tm.EngineStatus)
	}
	if !floats.EqualWithinAbs(tm.FuelPercent, 100, 1e-9) {
		t.Fatalf("fuel %f%% before any burn", tm.FuelPercent)
	}
	if tm.Systems != nil {
		t.Fatal("basic loadout reported subsystem telemetry")
	}
	if !floats.EqualWithinRel(tm.Speed, circularSpeed(1), 1e-3) {
		t.Fatalf("speed %f km/s", tm.Speed)
	}

	// The enhanced loadout reports the full snapshot.
	preset, _ := PresetByName("enhanced")
	sc = NewSpacecraft("flagship", testEpoch, []float64{1, 0, 0}, []float64{0, circularSpeed(1), 0}, preset.DryMass, preset.Bus())
	sc.Tick(60, []GravitySource{Sun})
	tm = sc.GetTelemetry()
	if tm.Systems == nil {
		t.Fatal("enhanced loadout reported no subsystem telemetry")
	}
	if tm.Systems.Generation <= 0 {
		t.Fatal("no solar generation at 1 AU")
	}
}

func TestManualBurn(t *testing.T) {
	sc := boostCraft()
	bodies := []GravitySource{Sun}
	v0 := norm(sc.V)
	if err := sc.StartManualBurn([3]float64{0, 1, 0}, 60); err != nil {
		t.Fatalf("manual burn refused: %s", err)
	}
	for i := 0; i < 6; i++ {
		sc.Tick(10, bodies)
	}
	if norm(sc.V) <= v0 {
		t.Fatal("prograde manual burn did not raise the speed")
	}
	if sc.Systems.Throttle() != 0 {
		t.Fatal("engine still lit after the commanded duration")
	}
	// Cutting off early works too.
	if err := sc.StartManualBurn([3]float64{0, 1, 0}, 600); err != nil {
		t.Fatalf("manual burn refused: %s", err)
	}
	sc.Tick(10, bodies)
	sc.StopManualBurn()
	if sc.Systems.Throttle() != 0 {
		t.Fatal("engine still lit after cutoff")
	}
}
