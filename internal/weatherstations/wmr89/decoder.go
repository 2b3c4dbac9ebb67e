package wmr89

// Device-specific code was ported to Go from the weewx WMR89 driver by
// Will Page and Tom Keffer.  See
// https://www.wxforum.net/index.php?topic=27581 for what little public
// documentation of the serial protocol exists.

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/chrissnell/oregonweather/internal/log"
)

// MetricUnits is the unit system tag carried by every decoded reading.  The
// WMR89 protocol is decoded straight into metric units.
const MetricUnits = "metric"

// PacketType identifies a console packet by its leading tag byte.
type PacketType int

const (
	PacketUnknown PacketType = iota
	PacketTime
	PacketRain
	PacketWind
	PacketPressure
	PacketTempHumidity
)

func (t PacketType) String() string {
	switch t {
	case PacketTime:
		return "time"
	case PacketRain:
		return "rain"
	case PacketWind:
		return "wind"
	case PacketPressure:
		return "pressure"
	case PacketTempHumidity:
		return "temp/humidity"
	}
	return "unknown"
}

func packetTypeForTag(tag byte) PacketType {
	switch tag {
	case 0xb0:
		return PacketTime
	case 0xb1:
		return PacketRain
	case 0xb2:
		return PacketWind
	case 0xb4:
		return PacketPressure
	case 0xb5:
		return PacketTempHumidity
	}
	return PacketUnknown
}

// minPacketLen is the shortest packet that still carries every byte offset a
// decoder for that type indexes.
var minPacketLen = map[PacketType]int{
	PacketRain:         10,
	PacketWind:         9,
	PacketPressure:     6,
	PacketTempHumidity: 8,
}

// FormatError reports a packet whose tag byte was recognized but whose
// payload is too short to hold the fields that type requires.  This is
// distinct from an unrecognized tag, which is not an error at all.
type FormatError struct {
	Type   PacketType
	Length int
	Need   int
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%v packet too short: got %d bytes, need %d", e.Type, e.Length, e.Need)
}

// SensorReading is one decoded observation set from the console.  Values is
// keyed by observation name; the key set is fixed per packet type, and a nil
// value means the console reported the field as unavailable, which is not
// the same thing as a zero reading.
type SensorReading struct {
	DateTime int64
	Units    string
	Values   map[string]*float64
}

// Decoder turns framed WMR89 packets into sensor readings.  It is stateful:
// incremental rainfall is derived from consecutive rain packets, so every
// decoding session against a console needs its own Decoder.
type Decoder struct {
	rain rainAccumulator
}

func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode inspects the packet's leading tag byte and decodes the payload
// accordingly.  It returns (nil, nil) for packets that carry no observations:
// the console's clock packet, unrecognized tags, and temp/humidity packets
// for channels we don't know.  A recognized tag on a truncated payload
// returns a FormatError; the caller should skip the packet and keep going.
func (d *Decoder) Decode(raw []byte, now time.Time) (*SensorReading, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	t := packetTypeForTag(raw[0])

	switch t {
	case PacketUnknown:
		log.Debugf("ignoring packet with unrecognized tag 0x%02x: %s", raw[0], hex.EncodeToString(raw))
		return nil, nil
	case PacketTime:
		// The console interleaves date/time packets with sensor data.
		// They carry no observations but they are a recognized type, so
		// they must not be reported as unknown.
		return nil, nil
	}

	if need := minPacketLen[t]; len(raw) < need {
		return nil, &FormatError{Type: t, Length: len(raw), Need: need}
	}

	var values map[string]*float64
	switch t {
	case PacketRain:
		values = d.decodeRain(raw)
	case PacketWind:
		values = decodeWind(raw)
	case PacketPressure:
		values = decodePressure(raw)
	case PacketTempHumidity:
		values = decodeTempHumidity(raw)
	}

	if values == nil {
		return nil, nil
	}

	return &SensorReading{
		DateTime: decodeTimestamp(now),
		Units:    MetricUnits,
		Values:   values,
	}, nil
}

// decodeTimestamp stamps readings with wall-clock seconds, rounded half-up.
func decodeTimestamp(now time.Time) int64 {
	return now.Add(500 * time.Millisecond).Unix()
}

// decodeRain decodes a rain packet.
//
//	0  1  2  3  4  5  6  7  8  9  ...
//	b1 11 ff fe 00 11 00 11 00 95 ...
//	   ?  rate- hour- 24h-- total
//
// The counters are transmitted in hundredths of an inch and converted to cm.
// The rate word has a dedicated no-value sentinel, 0xfffe.
func (d *Decoder) decodeRain(p []byte) map[string]*float64 {
	var rate *float64
	if beWord(p, 2) != 0xfffe {
		rate = fptr(hundredthsInchToCM(beWord(p, 2)))
	}

	total := hundredthsInchToCM(beWord(p, 8))

	return map[string]*float64{
		"rain_rate":  rate,
		"rain_hour":  fptr(hundredthsInchToCM(beWord(p, 4))),
		"rain_24":    fptr(hundredthsInchToCM(beWord(p, 6))),
		"rain_total": fptr(total),
		"rain":       d.rain.delta(total),
	}
}

// decodeWind decodes a wind packet.
//
//	0  1  2  3  4  5  6  7  8  9  10
//	b2 0b 00 00 00 00 00 02 7f 01 3e
//	   ?     avg   gust  dir ch ?  cs
//
// Speeds arrive in 0.1 m/s units and are converted to km/h; direction is a
// 16-point compass index.
func decodeWind(p []byte) map[string]*float64 {
	return map[string]*float64{
		"wind_speed": fptr(float64(p[3]) * 0.36),
		"wind_gust":  fptr(float64(p[5]) * 0.36),
		"wind_dir":   fptr(float64(p[7]) * 22.5),
		"windchill":  windChillC(p[8]),
	}
}

// decodePressure decodes a pressure packet.
//
//	0  1  2  3  4  5  6  7  8
//	b4 09 27 e9 27 e9 03 02 e0
//	   ?  press baro  ?  ?  cs
//
// Both words are in tenths of a hPa: station pressure first, then the
// sea-level-adjusted barometer.
func decodePressure(p []byte) map[string]*float64 {
	return map[string]*float64{
		"pressure":  fptr(float64(beWord(p, 2)) * 0.1),
		"barometer": fptr(float64(beWord(p, 4)) * 0.1),
	}
}

// decodeTempHumidity decodes a temperature/humidity packet.
//
//	0  1  2      3  4  5  6   7   8  9  10
//	b5 0b 01     00 12 00 54  ff  fd 03 23
//	   ?  sensor temp  ?  hum dew ?  ?  cs
//
// Byte 2 selects the sensor channel: 0 is the console's indoor sensor, 1 the
// outdoor sensor, and 2-3 the auxiliary channels.  Packets for any other
// channel produce no reading.
func decodeTempHumidity(p []byte) map[string]*float64 {
	var suffix string
	switch p[2] {
	case 0x00:
		suffix = "in"
	case 0x01:
		suffix = "out"
	case 0x02:
		suffix = "1"
	case 0x03:
		suffix = "2"
	default:
		log.Debugf("ignoring temp/humidity packet for unknown sensor channel %d", p[2])
		return nil
	}

	return map[string]*float64{
		"temperature_" + suffix: fptr(signedTenthsC(beWord(p, 3))),
		"humidity_" + suffix:    fptr(humidityPct(p[6])),
		"dewpoint_" + suffix:    dewpointC(p[7]),
	}
}
