package ips

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/soniakeys/meeus/julian"
	"github.com/soniakeys/meeus/planetposition"
	"github.com/soniakeys/meeus/pluto"
)

// j2000 is the Julian date of the J2000.0 epoch.
const j2000 = 2451545.0

// GravitySource is the provider contract consumed by the integrator: a named
// point mass whose heliocentric position can be evaluated at any date.
type GravitySource interface {
	// GM returns the gravitational parameter in km^3/s^2.
	GM() float64
	// PositionAU returns the heliocentric ecliptic position in AU.
	PositionAU(dt time.Time) []float64
	String() string
}

// CelestialObject defines a celestial object.
// Note: does not support natural satellites yet.
type CelestialObject struct {
	Name   string
	Radius float64 // km
	a      float64 // semi-major axis, km
	μ      float64 // km^3/s^2
	λ0     float64 // mean longitude at J2000, degrees
	incl   float64 // ecliptic inclination, degrees
	SOI    float64 // sphere of influence with respect to the Sun, km
	PP     *planetposition.V87Planet
}

// GM returns μ (which is unexported because it's a lowercase letter)
func (c CelestialObject) GM() float64 {
	return c.μ
}

// SOIAU returns the sphere of influence radius in AU.
func (c CelestialObject) SOIAU() float64 {
	return c.SOI / AU
}

// String implements the Stringer interface.
func (c CelestialObject) String() string {
	return c.Name
}

// Equals returns whether the provided celestial object is the same.
func (c *CelestialObject) Equals(b CelestialObject) bool {
	return c.Name == b.Name && c.Radius == b.Radius && c.a == b.a && c.μ == b.μ && c.SOI == b.SOI
}

// PositionAU returns the heliocentric position of this object in AU.
// Implements GravitySource.
func (c CelestialObject) PositionAU(dt time.Time) []float64 {
	R, _ := c.HelioState(dt)
	return scaled(R, 1/AU)
}

// HelioState returns the heliocentric ecliptic position (km) and velocity
// (km/s) of this object at a given time. With VSOP87 configured the full
// ephemeris is evaluated; otherwise the object moves on its mean orbit
// (mean longitude advanced at the mean motion, tilted by the mean ecliptic
// inclination with the node at zero longitude).
func (c *CelestialObject) HelioState(dt time.Time) (R, V []float64) {
	if c.Name == "Sun" {
		return []float64{0, 0, 0}, []float64{0, 0, 0}
	}
	if ipsConfig().VSOP87 {
		return c.vsop87State(dt)
	}
	// Mean-orbit ephemeris.
	n := math.Sqrt(Sun.μ / math.Pow(c.a, 3)) // rad/s
	days := julian.TimeToJD(dt.UTC()) - j2000
	λ := Deg2rad(c.λ0) + n*days*SecondsPerDay
	sλ, cλ := math.Sincos(λ)
	tilt := R1(-Deg2rad(c.incl))
	R = MxV33(tilt, []float64{c.a * cλ, c.a * sλ, 0})
	v := math.Sqrt(Sun.μ / c.a)
	V = MxV33(tilt, []float64{-v * sλ, v * cλ, 0})
	return R, V
}

func (c *CelestialObject) vsop87State(dt time.Time) (R, V []float64) {
	var l, b, r float64
	if c.Name == "Pluto" {
		// Special case in Sonia Keys' Meeus
		lu, bu, ru := pluto.Heliocentric(julian.TimeToJD(dt))
		l, b, r = lu.Rad(), bu.Rad(), ru
	} else {
		if c.PP == nil {
			planet, err := planetposition.LoadPlanetPath(c.vsop87Index(), ipsConfig().VSOP87Dir)
			if err != nil {
				panic(fmt.Errorf("could not load VSOP87 data for %s: %s", c.Name, err))
			}
			c.PP = planet
		}
		lu, bu, ru := c.PP.Position2000(julian.TimeToJD(dt))
		l, b, r = lu.Rad(), bu.Rad(), ru
	}
	r *= AU
	R = make([]float64, 3)
	V = make([]float64, 3)
	sB, cB := math.Sincos(b)
	sL, cL := math.Sincos(l)
	R[0] = r * cB * cL
	R[1] = r * cB * sL
	R[2] = r * sB
	// Velocity magnitude from vis-viva, directed along the orbit.
	v := math.Sqrt(2*Sun.μ/r - Sun.μ/c.a)
	vDir := unit(cross(R, []float64{0, 0, -1}))
	for i := 0; i < 3; i++ {
		V[i] = v * vDir[i]
	}
	return R, V
}

func (c CelestialObject) vsop87Index() int {
	switch c.Name {
	case "Mercury":
		return 0
	case "Venus":
		return 1
	case "Earth":
		return 2
	case "Mars":
		return 3
	case "Jupiter":
		return 4
	case "Saturn":
		return 5
	case "Uranus":
		return 6
	case "Neptune":
		return 7
	default:
		panic(fmt.Errorf("no VSOP87 data for %s", c.Name))
	}
}

// CelestialObjectFromString returns the object from its name.
func CelestialObjectFromString(name string) (CelestialObject, error) {
	switch strings.ToLower(name) {
	case "sun":
		return Sun, nil
	case "mercury":
		return Mercury, nil
	case "venus":
		return Venus, nil
	case "earth":
		return Earth, nil
	case "mars":
		return Mars, nil
	case "jupiter":
		return Jupiter, nil
	case "saturn":
		return Saturn, nil
	case "uranus":
		return Uranus, nil
	case "neptune":
		return Neptune, nil
	case "pluto":
		return Pluto, nil
	default:
		return CelestialObject{}, fmt.Errorf("undefined body '%s'", name)
	}
}

/* Definitions */

// Sun is our closest star.
var Sun = CelestialObject{"Sun", 695700, -1, 1.32712440017987e11, 0, 0, -1, nil}

// Mercury is the smallest one.
var Mercury = CelestialObject{"Mercury", 2439.7, 57909083, 2.2032e4, 252.251, 7.005, 0.112e6, nil}

// Venus is poisonous.
var Venus = CelestialObject{"Venus", 6051.8, 108208601, 3.24858599e5, 181.980, 3.39458, 0.616e6, nil}

// Earth is home.
var Earth = CelestialObject{"Earth", 6378.1363, 149598023, 3.98600433e5, 100.464, 0.00005, 924645.0, nil}

// Mars is the vacation place.
var Mars = CelestialObject{"Mars", 3396.19, 227939282.5616, 4.28283100e4, 355.453, 1.85, 576000, nil}

// Jupiter is big.
var Jupiter = CelestialObject{"Jupiter", 71492.0, 778298361, 1.266865361e8, 34.404, 1.30326966, 48.2e6, nil}

// Saturn floats and that's really cool.
var Saturn = CelestialObject{"Saturn", 60268.0, 1429394133, 3.7931208e7, 49.944, 2.485, 54.5e6, nil}

// Uranus is no joke.
var Uranus = CelestialObject{"Uranus", 25559.0, 2875038615, 5.7939513e6, 313.232, 0.773, 51.9e6, nil}

// Neptune is the furthest actual planet.
var Neptune = CelestialObject{"Neptune", 24764.0, 4498396441, 6.8351e6, 304.880, 1.77, 86.2e6, nil}

// Pluto had its down ranking coming. It should have stayed in its lane.
var Pluto = CelestialObject{"Pluto", 1151.0, 5915799000, 9.e2, 238.929, 17.14216667, 3.1e6, nil}
