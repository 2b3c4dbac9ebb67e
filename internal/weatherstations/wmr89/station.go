package wmr89

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/chrissnell/oregonweather/internal/log"
	"github.com/chrissnell/oregonweather/internal/types"
	"github.com/chrissnell/oregonweather/internal/weatherstations"
	"go.uber.org/zap"
)

// settleDelay is how long the console needs after a data request before its
// response is ready to drain.
const settleDelay = 500 * time.Millisecond

// pollRequest asks the console to transmit its current sensor data.
var pollRequest = []byte{0xd1, 0x00}

// Station holds our WMR89 console connection along with some mutexes for
// operation
type Station struct {
	ctx                context.Context
	wg                 *sync.WaitGroup
	config             types.DeviceConfig
	console            Console
	decoder            *Decoder
	sensorMap          SensorMap
	ReadingDistributor chan types.Reading
	logger             *zap.SugaredLogger
	connecting         bool
	connectingMu       sync.RWMutex
	connected          bool
	connectedMu        sync.RWMutex
}

func NewStation(ctx context.Context, wg *sync.WaitGroup, config types.DeviceConfig, distributor chan types.Reading, logger *zap.SugaredLogger) weatherstations.WeatherStation {
	station := &Station{
		ctx:                ctx,
		wg:                 wg,
		config:             config,
		decoder:            NewDecoder(),
		sensorMap:          DefaultSensorMap().Merge(config.SensorMap),
		ReadingDistributor: distributor,
		logger:             logger,
	}

	if config.SerialDevice == "" && (config.Hostname == "" || config.Port == "") {
		logger.Fatalf("WMR89 station [%s] must define either a serial device or hostname+port", config.Name)
	}

	if config.SerialDevice != "" {
		log.Info("Configuring WMR89 station via serial port...")
	}

	if config.Hostname != "" && config.Port != "" {
		log.Info("Configuring WMR89 station via TCP/IP")
	}

	return station
}

func (s *Station) StationName() string {
	return s.config.Name
}

// StartWeatherStation connects to the console and launches the
// station-polling goroutine
func (s *Station) StartWeatherStation() error {
	log.Infof("Starting WMR89 weather station [%v]...", s.config.Name)

	s.Connect()

	s.wg.Add(1)
	go s.GetConsolePackets()

	return nil
}

// GetConsolePackets runs the poll cycle until cancellation, reconnecting
// whenever the transport fails.  A transport failure is never retried
// within a cycle; the cycle is abandoned and the link re-established.
func (s *Station) GetConsolePackets() {
	defer s.wg.Done()
	log.Info("starting WMR89 packet getter")
	for {
		select {
		case <-s.ctx.Done():
			log.Info("cancellation request received. Cancelling GetConsolePackets()")
			return
		default:
			err := s.pollCycle()
			if err != nil {
				s.logger.Error(err)
				s.console.Close()
				s.logger.Info("attempting to reconnect...")
				s.Connect()
			}
		}
	}
}

// pollCycle performs one request/drain/decode pass against the console and
// distributes every reading it produces.  Malformed packets are logged and
// skipped without aborting the rest of the batch; transport errors abort
// the cycle immediately.
func (s *Station) pollCycle() error {
	if s.console.BytesWaiting() == 0 {
		if _, err := s.console.Write(pollRequest); err != nil {
			return fmt.Errorf("error requesting data from console: %w", err)
		}

		select {
		case <-s.ctx.Done():
			return nil
		case <-time.After(settleDelay):
		}
	}

	buf, err := s.console.ReadAvailable()
	if err != nil {
		// Read timeouts from a silent console are routine on the
		// network transport; treat them like an empty drain.
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil
		}
		return fmt.Errorf("error reading from console: %w", err)
	}

	if len(buf) == 0 {
		return nil
	}

	s.logger.Debugf("read from console: %s", hex.EncodeToString(buf))

	for _, raw := range SplitPackets(buf) {
		reading, err := s.decoder.Decode(raw, time.Now())
		if err != nil {
			// A truncated packet only costs us itself.
			log.Warnf("skipping malformed packet from [%v]: %v", s.config.Name, err)
			continue
		}
		if reading == nil {
			continue
		}

		r := s.sensorMap.Apply(reading)
		r.StationName = s.config.Name
		r.StationType = "wmr89"

		s.logger.Debugf("packet received: %+v", r)

		select {
		case s.ReadingDistributor <- r:
		case <-s.ctx.Done():
			return nil
		}
	}

	return nil
}

// Connect connects to a WMR89 console over serial or TCP/IP
func (s *Station) Connect() {
	if len(s.config.SerialDevice) > 0 {
		s.connectToSerialStation()
	} else if (len(s.config.Hostname) > 0) && (len(s.config.Port) > 0) {
		s.connectToNetworkStation()
	} else {
		s.logger.Fatal("must provide either network hostname+port or serial device in config")
	}
}

// connectToSerialStation connects to a WMR89 console over a serial port
func (s *Station) connectToSerialStation() {
	s.connectingMu.RLock()
	if s.connecting {
		s.connectingMu.RUnlock()
		s.logger.Info("skipping reconnect since a connection attempt is already in progress")
		return
	}

	s.connectingMu.RUnlock()
	s.connectingMu.Lock()
	s.connecting = true
	s.connectingMu.Unlock()

	s.logger.Infof("connecting to %v ...", s.config.SerialDevice)

	for {
		console, err := OpenSerialConsole(s.config.SerialDevice, s.config.Baud)

		if err != nil {
			s.logger.Errorf("failed to open serial port %s: %v", s.config.SerialDevice, err)
			s.logger.Error("sleeping 30 seconds and trying again")

			select {
			case <-s.ctx.Done():
				s.logger.Info("cancellation request received during retry wait")
				s.connectingMu.Lock()
				s.connecting = false
				s.connectingMu.Unlock()
				return
			case <-time.After(30 * time.Second):
			}
		} else {
			s.console = console

			s.connectedMu.Lock()
			defer s.connectedMu.Unlock()
			s.connected = true
			s.connectingMu.Lock()
			defer s.connectingMu.Unlock()
			s.connecting = false

			return
		}
	}
}

// connectToNetworkStation connects to a WMR89 console over TCP/IP, for
// consoles behind a serial-to-network bridge or the emulator
func (s *Station) connectToNetworkStation() {
	console := fmt.Sprint(s.config.Hostname, ":", s.config.Port)

	s.connectingMu.RLock()
	if s.connecting {
		s.connectingMu.RUnlock()
		log.Info("skipping reconnect since a connection attempt is already in progress")
		return
	}

	s.connectingMu.RUnlock()
	s.connectingMu.Lock()
	s.connecting = true
	s.connectingMu.Unlock()

	log.Info("connecting to:", console)

	for {
		conn, err := net.DialTimeout("tcp", console, 10*time.Second)

		if err != nil {
			log.Errorf("could not connect to %v: %v", console, err)
			log.Error("sleeping 5 seconds and trying again.")

			select {
			case <-s.ctx.Done():
				s.logger.Info("cancellation request received during retry wait")
				s.connectingMu.Lock()
				s.connecting = false
				s.connectingMu.Unlock()
				return
			case <-time.After(5 * time.Second):
			}
		} else {
			s.console = NewNetConsole(conn)

			s.connectedMu.Lock()
			defer s.connectedMu.Unlock()
			s.connected = true
			s.connectingMu.Lock()
			defer s.connectingMu.Unlock()
			s.connecting = false

			return
		}
	}
}
