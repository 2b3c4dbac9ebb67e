// wmr89-emulator impersonates an Oregon Scientific WMR89 console over TCP,
// for testing oregonweather without hardware attached.  It answers each
// data request with a burst of framed sensor packets generated from a
// simple synthetic weather model.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// FlakyHardwareConfig holds configuration for simulating hardware issues
type FlakyHardwareConfig struct {
	Enabled            bool    // Enable flaky hardware simulation
	TruncatePacketRate float64 // Probability of sending truncated packets (0.0-1.0)
	CorruptByteRate    float64 // Probability of corrupting random bytes in packets (0.0-1.0)
	NoResponseRate     float64 // Probability of not responding to a data request (0.0-1.0)
}

type WeatherEmulator struct {
	baseTempF    float64
	baseHumidity float64
	basePressure float64 // hPa
	rainTotal    uint16  // hundredths of an inch
	flakyConfig  FlakyHardwareConfig
}

func NewWeatherEmulator(flakyConfig FlakyHardwareConfig) *WeatherEmulator {
	return &WeatherEmulator{
		baseTempF:    70.0,
		baseHumidity: 50.0,
		basePressure: 1013.0,
		flakyConfig:  flakyConfig,
	}
}

func frame(packets ...[]byte) []byte {
	var buf []byte
	for _, p := range packets {
		buf = append(buf, 0xf2, 0xf2)
		buf = append(buf, p...)
	}
	return buf
}

func putWord(p []byte, i int, v uint16) {
	p[i] = byte(v >> 8)
	p[i+1] = byte(v)
}

// timePacket carries the console's clock.  The contents beyond the tag are
// ignored by the driver, but we fill them in anyway.
func (w *WeatherEmulator) timePacket(now time.Time) []byte {
	return []byte{0xb0, 0x08, byte(now.Minute()), byte(now.Hour()),
		byte(now.Day()), byte(now.Month()), byte(now.Year() - 2000), 0x00}
}

func (w *WeatherEmulator) pressurePacket() []byte {
	// Slight random walk on station pressure
	w.basePressure += (rand.Float64() - 0.5) * 0.4
	if w.basePressure < 980 {
		w.basePressure = 980
	}
	if w.basePressure > 1045 {
		w.basePressure = 1045
	}

	p := make([]byte, 9)
	p[0] = 0xb4
	p[1] = 0x09
	putWord(p, 2, uint16(w.basePressure*10))
	putWord(p, 4, uint16((w.basePressure+4.5)*10)) // sea-level corrected
	p[6] = 0x03
	return p
}

func (w *WeatherEmulator) windPacket() []byte {
	speedKmh := 5.0 + rand.Float64()*20.0
	gustKmh := speedKmh + rand.Float64()*10.0

	p := make([]byte, 11)
	p[0] = 0xb2
	p[1] = 0x0b
	p[3] = byte(speedKmh / 0.36)
	p[5] = byte(gustKmh / 0.36)
	p[7] = byte(rand.Intn(16)) // compass sixteenth
	p[8] = 125                 // wind chill not reported
	return p
}

func (w *WeatherEmulator) rainPacket() []byte {
	// Occasional light rain
	if rand.Float64() < 0.2 {
		w.rainTotal += uint16(rand.Intn(4))
	}

	p := make([]byte, 17)
	p[0] = 0xb1
	p[1] = 0x11
	putWord(p, 2, 0xfffe) // rate unavailable
	putWord(p, 4, uint16(rand.Intn(5)))
	putWord(p, 6, uint16(rand.Intn(20)))
	putWord(p, 8, w.rainTotal)
	return p
}

func (w *WeatherEmulator) tempHumidityPacket(channel byte, now time.Time) []byte {
	hourOfDay := float64(now.Hour()) + float64(now.Minute())/60.0
	dailyTemp := 15.0 * math.Sin(2*math.Pi*(hourOfDay-6)/24.0)
	tempF := w.baseTempF + dailyTemp + (rand.Float64()-0.5)*4.0
	if channel == 0 {
		// Indoors is tempered
		tempF = w.baseTempF + 2 + (rand.Float64()-0.5)*2.0
	}
	tempC := (tempF - 32) * 5 / 9

	humidity := w.baseHumidity + (w.baseTempF-tempF)*0.8 + (rand.Float64()-0.5)*10.0
	if humidity < 26 {
		humidity = 26
	}
	if humidity > 94 {
		humidity = 94
	}

	// Magnus-free approximation is fine for synthetic data
	dewC := tempC - (100-humidity)/5.0

	p := make([]byte, 11)
	p[0] = 0xb5
	p[1] = 0x0b
	p[2] = channel
	putWord(p, 3, uint16(int16(tempC*10)))
	p[6] = byte(humidity)
	if dewC < 0 {
		p[7] = byte(int(dewC) + 256)
	} else {
		p[7] = byte(dewC)
	}
	return p
}

func (w *WeatherEmulator) generateBurst(now time.Time) []byte {
	return frame(
		w.timePacket(now),
		w.pressurePacket(),
		w.windPacket(),
		w.rainPacket(),
		w.tempHumidityPacket(0, now),
		w.tempHumidityPacket(1, now),
	)
}

// simulateHardwareIssues applies various hardware problems to an outgoing burst
func (w *WeatherEmulator) simulateHardwareIssues(buf []byte) []byte {
	if !w.flakyConfig.Enabled {
		return buf
	}

	result := make([]byte, len(buf))
	copy(result, buf)

	if rand.Float64() < w.flakyConfig.CorruptByteRate {
		pos := rand.Intn(len(result))
		original := result[pos]
		result[pos] = byte(rand.Intn(256))
		log.Printf("FLAKY: corrupted byte at position %d: 0x%02X -> 0x%02X", pos, original, result[pos])
	}

	if rand.Float64() < w.flakyConfig.TruncatePacketRate {
		truncateAt := 4 + rand.Intn(len(result)-4)
		result = result[:truncateAt]
		log.Printf("FLAKY: truncated burst to %d bytes (was %d)", len(result), len(buf))
	}

	return result
}

func handleConnection(conn net.Conn, emulator *WeatherEmulator) {
	defer conn.Close()

	log.Printf("New WMR89 console connection from %s", conn.RemoteAddr())

	req := make([]byte, 16)
	for {
		n, err := conn.Read(req)
		if err != nil {
			log.Printf("WMR89 console connection from %s closed: %v", conn.RemoteAddr(), err)
			return
		}
		if n == 0 {
			continue
		}

		// Anything beginning with 0xd1 is treated as a data request.
		if req[0] != 0xd1 {
			log.Printf("Unknown request: % x", req[:n])
			continue
		}

		if emulator.flakyConfig.Enabled && rand.Float64() < emulator.flakyConfig.NoResponseRate {
			log.Printf("FLAKY: ignoring data request (no response)")
			continue
		}

		burst := emulator.simulateHardwareIssues(emulator.generateBurst(time.Now()))

		written, err := conn.Write(burst)
		if err != nil {
			log.Printf("Error sending burst: %v", err)
			return
		}
		log.Printf("Sent burst (%d bytes)", written)
	}
}

func main() {
	var (
		port = flag.Int("port", 23232, "Port to listen on")

		flaky              = flag.Bool("flaky", false, "Enable flaky hardware simulation")
		truncatePacketRate = flag.Float64("truncate-rate", 0.02, "Probability of truncating bursts (0.0-1.0)")
		corruptByteRate    = flag.Float64("corrupt-rate", 0.05, "Probability of corrupting bytes in bursts (0.0-1.0)")
		noResponseRate     = flag.Float64("no-response-rate", 0.01, "Probability of not responding to requests (0.0-1.0)")
	)
	flag.Parse()

	log.Printf("Starting WMR89 Console Emulator on port %d", *port)
	if *flaky {
		log.Printf("FLAKY HARDWARE MODE ENABLED:")
		log.Printf("  Corrupt bytes: %.1f%%, Truncate: %.1f%%, No response: %.1f%%",
			*corruptByteRate*100, *truncatePacketRate*100, *noResponseRate*100)
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", *port))
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
	defer listener.Close()

	emulator := NewWeatherEmulator(FlakyHardwareConfig{
		Enabled:            *flaky,
		TruncatePacketRate: *truncatePacketRate,
		CorruptByteRate:    *corruptByteRate,
		NoResponseRate:     *noResponseRate,
	})

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Shutdown signal received, stopping server...")
		cancel()
		listener.Close()
	}()

	log.Printf("WMR89 emulator listening on port %d", *port)
	log.Println("Connect oregonweather with: hostname: localhost, port:", *port)

	for {
		select {
		case <-ctx.Done():
			log.Println("Server stopped")
			return
		default:
			conn, err := listener.Accept()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("Failed to accept connection: %v", err)
				continue
			}

			go handleConnection(conn, emulator)
		}
	}
}
