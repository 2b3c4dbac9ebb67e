// wmr89-console is a diagnostic tool that polls a WMR89 console directly
// and prints every decoded reading to stdout.  It is useful for verifying
// cabling, baud rate, and sensor pairing before running the full daemon.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/chrissnell/oregonweather/internal/weatherstations/wmr89"
)

const settleDelay = 500 * time.Millisecond

var pollRequest = []byte{0xd1, 0x00}

func main() {
	var (
		device   = flag.String("device", "", "Serial device the console is attached to, e.g. /dev/ttyUSB0")
		baud     = flag.Int("baud", 128000, "Serial baud rate")
		hostname = flag.String("hostname", "", "Hostname of a serial-to-network bridge or emulator")
		port     = flag.String("port", "", "TCP port of a serial-to-network bridge or emulator")
		raw      = flag.Bool("raw", false, "Also print raw packet bytes in hex")
	)
	flag.Parse()

	var console wmr89.Console
	var err error

	switch {
	case *device != "":
		console, err = wmr89.OpenSerialConsole(*device, *baud)
		if err != nil {
			log.Fatalf("could not open serial device %s: %v", *device, err)
		}
	case *hostname != "" && *port != "":
		conn, err := net.DialTimeout("tcp", net.JoinHostPort(*hostname, *port), 10*time.Second)
		if err != nil {
			log.Fatalf("could not connect to %s:%s: %v", *hostname, *port, err)
		}
		console = wmr89.NewNetConsole(conn)
	default:
		fmt.Fprintln(os.Stderr, "must provide either -device or -hostname and -port")
		flag.Usage()
		os.Exit(1)
	}
	defer console.Close()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	decoder := wmr89.NewDecoder()

	for {
		select {
		case <-sigs:
			log.Println("shutting down")
			return
		default:
		}

		if console.BytesWaiting() == 0 {
			if _, err := console.Write(pollRequest); err != nil {
				log.Fatalf("error requesting data from console: %v", err)
			}
			time.Sleep(settleDelay)
		}

		buf, err := console.ReadAvailable()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			log.Fatalf("error reading from console: %v", err)
		}
		if len(buf) == 0 {
			continue
		}

		for _, packet := range wmr89.SplitPackets(buf) {
			if *raw {
				fmt.Printf("raw: %s\n", hex.EncodeToString(packet))
			}

			reading, err := decoder.Decode(packet, time.Now())
			if err != nil {
				log.Printf("skipping malformed packet: %v", err)
				continue
			}
			if reading == nil {
				continue
			}

			printReading(reading)
		}
	}
}

func printReading(r *wmr89.SensorReading) {
	keys := make([]string, 0, len(r.Values))
	for k := range r.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Printf("%s:\n", time.Unix(r.DateTime, 0).Format(time.RFC3339))
	for _, k := range keys {
		v := r.Values[k]
		if v == nil {
			fmt.Printf("  %-16s (no data)\n", k)
		} else {
			fmt.Printf("  %-16s %.2f\n", k, *v)
		}
	}
}
