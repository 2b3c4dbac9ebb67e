package wmr89

import (
	"math"
	"testing"
)

const epsilon = 0.0001

func TestFToCRoundTrip(t *testing.T) {
	for _, v := range []float64{-40, -129, 0, 32, 51.5, 100, 212} {
		got := cToF(fToC(v))
		if math.Abs(got-v) > epsilon {
			t.Errorf("cToF(fToC(%v)) = %v, want %v", v, got, v)
		}
	}

	if got := fToC(32); math.Abs(got) > epsilon {
		t.Errorf("fToC(32) = %v, want 0", got)
	}
	if got := fToC(212); math.Abs(got-100) > epsilon {
		t.Errorf("fToC(212) = %v, want 100", got)
	}
}

func TestWindChillC(t *testing.T) {
	tests := []struct {
		name     string
		b        byte
		expected *float64
	}{
		{"below sentinel converts directly", 124, fptr(fToC(124))},
		{"sentinel means unavailable", 125, nil},
		{"above sentinel encodes negative Fahrenheit", 126, fptr(fToC(126 - 255))},
		{"zero", 0, fptr(fToC(0))},
		{"max byte", 255, fptr(fToC(0))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := windChillC(tt.b)
			if (got == nil) != (tt.expected == nil) {
				t.Fatalf("windChillC(%d) = %v, want %v", tt.b, got, tt.expected)
			}
			if got != nil && math.Abs(*got-*tt.expected) > epsilon {
				t.Errorf("windChillC(%d) = %v, want %v", tt.b, *got, *tt.expected)
			}
		})
	}
}

func TestHumidityPct(t *testing.T) {
	tests := []struct {
		b        byte
		expected float64
	}{
		{254, 95}, // pegged high
		{252, 25}, // pegged low
		{60, 60},
		{25, 25},
		{95, 95},
	}

	for _, tt := range tests {
		if got := humidityPct(tt.b); got != tt.expected {
			t.Errorf("humidityPct(%d) = %v, want %v", tt.b, got, tt.expected)
		}
	}
}

func TestDewpointC(t *testing.T) {
	if got := dewpointC(125); got != nil {
		t.Errorf("dewpointC(125) = %v, want nil", *got)
	}
	if got := dewpointC(10); got == nil || *got != 10 {
		t.Errorf("dewpointC(10) = %v, want 10", got)
	}
	if got := dewpointC(250); got == nil || *got != -6 {
		t.Errorf("dewpointC(250) = %v, want -6", got)
	}
}

func TestSignedTenthsC(t *testing.T) {
	tests := []struct {
		v        uint16
		expected float64
	}{
		{0x00d7, 21.5},
		{0x0000, 0},
		{0xffff, -0.1},
		{0x8000, -3276.8},
		{0x7fff, 3276.7},
	}

	for _, tt := range tests {
		if got := signedTenthsC(tt.v); math.Abs(got-tt.expected) > epsilon {
			t.Errorf("signedTenthsC(%#04x) = %v, want %v", tt.v, got, tt.expected)
		}
	}
}

func TestHundredthsInchToCM(t *testing.T) {
	if got := hundredthsInchToCM(100); math.Abs(got-2.54) > epsilon {
		t.Errorf("hundredthsInchToCM(100) = %v, want 2.54", got)
	}
	if got := hundredthsInchToCM(0); got != 0 {
		t.Errorf("hundredthsInchToCM(0) = %v, want 0", got)
	}
}
