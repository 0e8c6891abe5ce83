package ips

import "fmt"

// ManeuverStatus tracks a node through its lifecycle:
// Planned -> Executing -> Completed.
type ManeuverStatus uint8

const (
	// ManeuverPlanned is a scheduled node counting down to its burn.
	ManeuverPlanned ManeuverStatus = iota + 1
	// ManeuverExecuting is a node whose burn is in progress.
	ManeuverExecuting
	// ManeuverCompleted is a node whose burn has finished.
	ManeuverCompleted
)

func (s ManeuverStatus) String() string {
	switch s {
	case ManeuverPlanned:
		return "planned"
	case ManeuverExecuting:
		return "executing"
	case ManeuverCompleted:
		return "completed"
	}
	panic(fmt.Errorf("unknown maneuver status %d", s))
}

// ManeuverNode is a scheduled burn, owned by exactly one spacecraft and
// ordered by countdown in its queue. Δv is expressed in the RSW frame of the
// predicted pre-burn state; burn duration and fuel cost are derived from the
// vehicle's engine via the rocket equation and recomputed whenever the Δv or
// the timing changes. Countdown and burn progress advance in simulated
// seconds only.
type ManeuverNode struct {
	Δv           [3]float64 // radial, prograde, normal; km/s
	TimeFromNow  float64    // s until ignition
	BurnDuration float64    // s, derived
	FuelRequired float64    // kg, derived
	PredictedR   []float64  // AU, pre-burn state by Kepler propagation
	PredictedV   []float64  // km/s

	status        ManeuverStatus
	timeRemaining float64
	sc            *Spacecraft
}

// Status returns where the node is in its lifecycle.
func (n *ManeuverNode) Status() ManeuverStatus {
	return n.status
}

// TotalΔv returns the magnitude of the planned Δv in km/s.
func (n *ManeuverNode) TotalΔv() float64 {
	return norm(n.Δv[:])
}

// SetΔv updates the burn components (km/s, RSW frame) and rederives the burn
// duration, fuel cost and predicted state.
func (n *ManeuverNode) SetΔv(radial, prograde, normal float64) {
	n.Δv = [3]float64{radial, prograde, normal}
	n.recompute()
}

// Reschedule changes the countdown and rederives the prediction.
func (n *ManeuverNode) Reschedule(timeFromNow float64) {
	n.TimeFromNow = timeFromNow
	n.sc.sortManeuvers()
	n.recompute()
}

func (n *ManeuverNode) recompute() {
	thrust, isp := n.sc.Systems.ThrustIsp()
	ve := isp * G0 / 1000
	n.FuelRequired = FuelForDeltaV(n.TotalΔv(), n.sc.Mass(), ve)
	if thrust > 0 {
		// Total impulse over thrust: t = m_fuel * ve / F.
		n.BurnDuration = n.FuelRequired * ve * 1000 / thrust
	} else {
		n.BurnDuration = 0
	}
	n.PredictedR, n.PredictedV = PropagateKepler(n.sc.R, n.sc.V, n.sc.primary.GM(), n.TimeFromNow)
}

func (n *ManeuverNode) String() string {
	return fmt.Sprintf("T-%.0fs Δv=%.3f km/s burn=%.1fs fuel=%.1fkg [%s]", n.TimeFromNow, n.TotalΔv(), n.BurnDuration, n.FuelRequired, n.status)
}
