package wmr89

// Unit and sentinel conversions for the WMR89 binary protocol.  Each sentinel
// rule lives in its own function so it can be tested on its own rather than
// being buried inside the packet decoders.

// fToC converts degrees Fahrenheit to Celsius.
func fToC(f float64) float64 {
	return (f - 32.0) * 5.0 / 9.0
}

// cToF converts degrees Celsius to Fahrenheit.
func cToF(c float64) float64 {
	return c*9.0/5.0 + 32.0
}

// beWord reads the big-endian unsigned 16-bit word at offset i.
func beWord(p []byte, i int) uint16 {
	return uint16(p[i])<<8 | uint16(p[i+1])
}

// signedTenthsC reinterprets a big-endian word as a two's-complement signed
// value in tenths of a degree Celsius.
func signedTenthsC(v uint16) float64 {
	t := int(v)
	if t >= 32768 {
		t -= 65536
	}
	return float64(t) * 0.1
}

// hundredthsInchToCM converts a rain counter in hundredths of an inch to
// centimeters, the unit used internally.
func hundredthsInchToCM(v uint16) float64 {
	return float64(v) * 2.54 / 100.0
}

// windChillC resolves the wind packet's chill byte to Celsius.  125 means
// the console has no chill value.  Values above 125 encode negative
// Fahrenheit as b-255, not the b-256 adjustment the temperature packet
// uses.  TODO: confirm the -255 offset against a capture from a console
// reading below -10F; until then it matches the observed behavior.
func windChillC(b byte) *float64 {
	switch {
	case b < 125:
		return fptr(fToC(float64(b)))
	case b == 125:
		return nil
	}
	return fptr(fToC(float64(b) - 255))
}

// humidityPct resolves the humidity byte to percent relative humidity.  The
// WMR89's sensors report 25-95%; 254 means pegged high and 252 pegged low.
func humidityPct(b byte) float64 {
	switch b {
	case 254:
		return 95
	case 252:
		return 25
	}
	return float64(b)
}

// dewpointC resolves the dewpoint byte to Celsius.  125 means no value;
// values above 125 are negative, two's-complement adjusted.
func dewpointC(b byte) *float64 {
	d := float64(b)
	if b == 125 {
		return nil
	}
	if b > 125 {
		d -= 256
	}
	return &d
}

func fptr(v float64) *float64 {
	return &v
}
