// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package suntimes computes sunrise and sunset times for a location and
// resolves the website theme from them: light while the sun is up, dark
// otherwise.
//
// The computation is the closed-form sunrise equation from the Almanac for
// Computers, accurate to a couple of minutes, which is plenty for switching a
// color scheme.
package suntimes

import (
	"math"
	"time"
)

// Official zenith for sunrise/sunset: 90° plus refraction and the solar disc
// radius.
const zenith = 90.833

// Polar describes the edge cases at high latitudes where the sun never
// crosses the horizon on a given day.
type Polar int

const (
	// None means the sun both rises and sets on this day.
	None Polar = iota
	// Day means the sun never sets (polar day).
	Day
	// Night means the sun never rises (polar night).
	Night
)

// Times returns the sunrise and sunset times in UTC for the given date and
// coordinates. If polar is not [None], the sun never crosses the horizon on
// that day and both returned times are zero.
func Times(date time.Time, lat, lon float64) (sunrise, sunset time.Time, polar Polar) {
	sunriseUT, okRise := event(date, lat, lon, true)
	sunsetUT, okSet := event(date, lat, lon, false)

	if !okRise || !okSet {
		// cosH out of range: above 1 the sun stays below the horizon,
		// below -1 it stays above.
		if declination(date, lon)*lat > 0 {
			return time.Time{}, time.Time{}, Day
		}
		return time.Time{}, time.Time{}, Night
	}

	y, m, d := date.UTC().Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	sunrise = midnight.Add(time.Duration(sunriseUT * float64(time.Hour)))
	sunset = midnight.Add(time.Duration(sunsetUT * float64(time.Hour)))
	return sunrise, sunset, None
}

// Theme returns "light" between sunrise and sunset at the given coordinates
// and "dark" otherwise. During polar day it is always "light", during polar
// night always "dark".
func Theme(now time.Time, lat, lon float64) string {
	sunrise, sunset, polar := Times(now, lat, lon)
	switch polar {
	case Day:
		return "light"
	case Night:
		return "dark"
	}
	if now.Before(sunrise) || !now.Before(sunset) {
		return "dark"
	}
	return "light"
}

// event computes the UT hour (0..24) of sunrise (rising=true) or sunset on
// the given date. ok is false when the sun never crosses the horizon.
func event(date time.Time, lat, lon float64, rising bool) (ut float64, ok bool) {
	n := float64(date.UTC().YearDay())
	lngHour := lon / 15

	var t float64
	if rising {
		t = n + ((6 - lngHour) / 24)
	} else {
		t = n + ((18 - lngHour) / 24)
	}

	// Mean anomaly of the sun.
	m := (0.9856 * t) - 3.289

	// True longitude.
	l := m + (1.916 * sinDeg(m)) + (0.020 * sinDeg(2*m)) + 282.634
	l = normalize(l, 360)

	// Right ascension, adjusted into the same quadrant as the true longitude
	// and converted to hours.
	ra := atanDeg(0.91764 * tanDeg(l))
	ra = normalize(ra, 360)
	ra += (math.Floor(l/90) - math.Floor(ra/90)) * 90
	ra /= 15

	// Declination.
	sinDec := 0.39782 * sinDeg(l)
	cosDec := cosDeg(asinDeg(sinDec))

	// Local hour angle.
	cosH := (cosDeg(zenith) - (sinDec * sinDeg(lat))) / (cosDec * cosDeg(lat))
	if cosH > 1 || cosH < -1 {
		return 0, false
	}

	var h float64
	if rising {
		h = 360 - acosDeg(cosH)
	} else {
		h = acosDeg(cosH)
	}
	h /= 15

	// Local mean time of the event, converted to UT.
	lmt := h + ra - (0.06571 * t) - 6.622
	return normalize(lmt-lngHour, 24), true
}

// declination returns the sign of the solar declination on the given date,
// used to tell polar day from polar night.
func declination(date time.Time, lon float64) float64 {
	n := float64(date.UTC().YearDay())
	t := n + ((12 - lon/15) / 24)
	m := (0.9856 * t) - 3.289
	l := normalize(m+(1.916*sinDeg(m))+(0.020*sinDeg(2*m))+282.634, 360)
	return 0.39782 * sinDeg(l)
}

func normalize(v, max float64) float64 {
	v = math.Mod(v, max)
	if v < 0 {
		v += max
	}
	return v
}

func sinDeg(deg float64) float64 { return math.Sin(deg * math.Pi / 180) }
func cosDeg(deg float64) float64 { return math.Cos(deg * math.Pi / 180) }
func tanDeg(deg float64) float64 { return math.Tan(deg * math.Pi / 180) }
func asinDeg(x float64) float64  { return math.Asin(x) * 180 / math.Pi }
func acosDeg(x float64) float64  { return math.Acos(x) * 180 / math.Pi }
func atanDeg(x float64) float64  { return math.Atan(x) * 180 / math.Pi }
