package t5403

import "strconv"

// Calibration holds the factory trimmed coefficients C1 to C10. They are read
// once, when the Device is created, and never change afterwards.
type Calibration struct {
	C1, C2, C3, C4          uint16
	C5, C6, C7, C8, C9, C10 int16
}

// calibrationRegisters are the locations of C1 to C10, each a 16 bit word
// stored least significant byte first.
var calibrationRegisters = [10]byte{0x8E, 0x90, 0x92, 0x94, 0x96, 0x98, 0x9A, 0x9C, 0x9E, 0xA0}

// decodeUnsigned decodes a 16 bit word sent least significant byte first.
// b must hold at least two bytes.
func decodeUnsigned(b []byte) uint16 {
	return uint16(b[1])<<8 | uint16(b[0])
}

// decodeSigned decodes a two's complement 16 bit word sent least significant
// byte first. Words of 32768 and above are negative. b must hold at least two
// bytes.
func decodeSigned(b []byte) int16 {
	return int16(decodeUnsigned(b))
}

// newCalibration decodes the 20 bytes read from calibrationRegisters, in
// register order.
func newCalibration(raw []byte) (c Calibration) {
	c.C1 = decodeUnsigned(raw[0:2])
	c.C2 = decodeUnsigned(raw[2:4])
	c.C3 = decodeUnsigned(raw[4:6])
	c.C4 = decodeUnsigned(raw[6:8])
	c.C5 = decodeSigned(raw[8:10])
	c.C6 = decodeSigned(raw[10:12])
	c.C7 = decodeSigned(raw[12:14])
	c.C8 = decodeSigned(raw[14:16])
	c.C9 = decodeSigned(raw[16:18])
	c.C10 = decodeSigned(raw[18:20])
	return c
}

// Temperature returns the compensated temperature in hundredths of a degree
// Celsius for the raw temperature sample tr. An output of 2587 is 25.87 °C.
//
// Every shift is an arithmetic (flooring) shift and the order of operations
// is the manufacturer's, changing it changes the rounding.
func (c Calibration) Temperature(tr int16) int32 {
	t := int64(tr)
	return int32((((int64(c.C1)*t)>>8 + int64(c.C2)<<6) * 100) >> 16)
}

// Pressure returns the compensated pressure in hPa, rounded to two decimal
// places, for the pressure sample pr. temp is the compensated temperature in
// hundredths of a degree Celsius, as returned by Temperature.
//
// The polynomial is evaluated in floating point. Floating point addition is
// not associative so the grouping of each term below must be kept as is.
func (c Calibration) Pressure(temp int32, pr uint16) float64 {
	t := float64(temp)
	c3, c4, c5 := float64(c.C3), float64(c.C4), float64(c.C5)
	c6, c7, c8 := float64(c.C6), float64(c.C7), float64(c.C8)
	c9, c10 := float64(c.C9), float64(c.C10)

	// Sensitivity: C3 + C4·t/2^17 + C5·t²/2^34 + C9·t³/2^46
	s := c3 + c4*t/(1<<17) + c5*t/(1<<15)*t/(1<<19) + c9*t/(1<<15)*t/(1<<15)*t/(1<<16)
	// Offset: C6·2^14 + C7·t/2^3 + C8·t²/2^19 + C9·t³/2^31
	o := c6*(1<<14) + c7*t/(1<<3) + c8*t/(1<<15)*t/(1<<4) + c9*t/(1<<15)*t/(1<<16)*t

	x := (s*float64(pr) + o) / (1 << 14)
	pa := x + ((x-75000)*(x-75000)/(1<<16)-9537)*c10/(1<<16)

	return roundHundredths(pa / 100)
}

// PressureFixedPoint returns the pressure in hPa computed with the
// manufacturer's integer formula, taking the same inputs as Pressure. It
// ignores C9 and C10 and so drifts from Pressure, typically by less than
// 0.1 hPa near sea level.
func (c Calibration) PressureFixedPoint(temp int32, pr uint16) float64 {
	t := int64(temp)
	s := (((int64(c.C5)*t)>>15)*t)>>19 + int64(c.C3) + (int64(c.C4)*t)>>17
	o := (((int64(c.C8)*t)>>15)*t)>>4 + (int64(c.C7)*t)>>3 + int64(c.C6)*0x4000
	pa := (s*int64(pr) + o) >> 14
	return float64(pa) / 100
}

// roundHundredths rounds the exact binary value of v to two decimal places,
// halfway cases to even. Scaling by 100 first would round the already rounded
// product instead.
func roundHundredths(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}
	return r
}
