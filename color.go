// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package rawmeta

import "math"

var defaultWhiteBalance = [3]int32{WhiteBalanceUnit, WhiteBalanceUnit, WhiteBalanceUnit}

var identityCamMatrix = [9]float32{
	1, 0, 0,
	0, 1, 0,
	0, 0, 1,
}

// colorDecoder is implemented by decoders that read color metadata.
type colorDecoder interface {
	WhiteBalance() [3]int32
	CamMatrix() [9]float32
}

func colorOf(d Decoder) ([3]int32, [9]float32) {
	if cd, ok := d.(colorDecoder); ok {
		return cd.WhiteBalance(), cd.CamMatrix()
	}
	return defaultWhiteBalance, identityCamMatrix
}

// whiteBalanceFromNeutral converts a camera neutral (AsShotNeutral) to
// channel gains relative to green.
func whiteBalanceFromNeutral(neutral []float64) ([3]int32, bool) {
	if len(neutral) < 3 {
		return defaultWhiteBalance, false
	}
	var wb [3]int32
	g := neutral[1]
	for i, v := range neutral[:3] {
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return defaultWhiteBalance, false
		}
		wb[i] = int32(math.Round(g / v * WhiteBalanceUnit))
	}
	return wb, true
}

// invert3x3 returns the inverse of the row-major matrix m.
func invert3x3(m []float64) ([9]float32, bool) {
	if len(m) < 9 {
		return identityCamMatrix, false
	}
	a, b, c := m[0], m[1], m[2]
	d, e, f := m[3], m[4], m[5]
	g, h, i := m[6], m[7], m[8]

	det := a*(e*i-f*h) - b*(d*i-f*g) + c*(d*h-e*g)
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return identityCamMatrix, false
	}

	inv := [9]float64{
		e*i - f*h, c*h - b*i, b*f - c*e,
		f*g - d*i, a*i - c*g, c*d - a*f,
		d*h - e*g, b*g - a*h, a*e - b*d,
	}
	var out [9]float32
	for k, v := range inv {
		out[k] = float32(v / det)
	}
	return out, true
}
