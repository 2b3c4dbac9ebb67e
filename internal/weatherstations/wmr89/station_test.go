package wmr89

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/chrissnell/oregonweather/internal/types"
	"go.uber.org/zap"
)

type fakeConsole struct {
	waiting int
	reads   [][]byte
	readErr error
	writes  [][]byte
	closed  bool
}

func (f *fakeConsole) BytesWaiting() int {
	return f.waiting
}

func (f *fakeConsole) Write(p []byte) (int, error) {
	f.writes = append(f.writes, append([]byte(nil), p...))
	return len(p), nil
}

func (f *fakeConsole) ReadAvailable() ([]byte, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	if len(f.reads) == 0 {
		return nil, nil
	}
	buf := f.reads[0]
	f.reads = f.reads[1:]
	return buf, nil
}

func (f *fakeConsole) ReadFull(p []byte) error {
	buf, err := f.ReadAvailable()
	if err != nil {
		return err
	}
	copy(p, buf)
	return nil
}

func (f *fakeConsole) Close() error {
	f.closed = true
	return nil
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func newTestStation(console Console) (*Station, chan types.Reading) {
	distributor := make(chan types.Reading, 10)
	return &Station{
		ctx:                context.Background(),
		config:             types.DeviceConfig{Name: "back porch"},
		console:            console,
		decoder:            NewDecoder(),
		sensorMap:          DefaultSensorMap(),
		ReadingDistributor: distributor,
		logger:             zap.NewNop().Sugar(),
	}, distributor
}

func TestPollCycleDistributesReadings(t *testing.T) {
	console := &fakeConsole{
		waiting: 1,
		reads: [][]byte{
			[]byte("\xf2\xf2\xb4\x09\x27\xe9\x28\x16\x03\x02\xe0"),
		},
	}
	s, distributor := newTestStation(console)

	if err := s.pollCycle(); err != nil {
		t.Fatalf("pollCycle returned error: %v", err)
	}

	select {
	case r := <-distributor:
		if math.Abs(float64(r.Pressure)-1021.7) > epsilon {
			t.Errorf("pressure = %v, want 1021.7", r.Pressure)
		}
		if math.Abs(float64(r.Barometer)-1026.2) > epsilon {
			t.Errorf("barometer = %v, want 1026.2", r.Barometer)
		}
		if r.StationName != "back porch" {
			t.Errorf("station name = %q, want %q", r.StationName, "back porch")
		}
		if r.StationType != "wmr89" {
			t.Errorf("station type = %q, want %q", r.StationType, "wmr89")
		}
	default:
		t.Fatal("expected a reading on the distributor channel")
	}

	// Data was already waiting, so no poll request should have been sent.
	if len(console.writes) != 0 {
		t.Errorf("expected no writes, got %d", len(console.writes))
	}
}

func TestPollCycleSendsRequestWhenIdle(t *testing.T) {
	console := &fakeConsole{}
	s, _ := newTestStation(console)

	if err := s.pollCycle(); err != nil {
		t.Fatalf("pollCycle returned error: %v", err)
	}

	if len(console.writes) != 1 {
		t.Fatalf("expected one poll request, got %d writes", len(console.writes))
	}
	if !bytes.Equal(console.writes[0], pollRequest) {
		t.Errorf("poll request = %x, want %x", console.writes[0], pollRequest)
	}
}

func TestPollCycleSkipsMalformedPackets(t *testing.T) {
	// A truncated rain packet followed by a valid pressure packet.  The
	// bad packet must not cost us the rest of the batch.
	console := &fakeConsole{
		waiting: 1,
		reads: [][]byte{
			[]byte("\xf2\xf2\xb1\x11\xff\xf2\xf2\xb4\x09\x27\xe9\x28\x16\x03\x02\xe0"),
		},
	}
	s, distributor := newTestStation(console)

	if err := s.pollCycle(); err != nil {
		t.Fatalf("pollCycle returned error: %v", err)
	}

	select {
	case r := <-distributor:
		if math.Abs(float64(r.Pressure)-1021.7) > epsilon {
			t.Errorf("pressure = %v, want 1021.7", r.Pressure)
		}
	default:
		t.Fatal("expected the valid packet to survive the malformed one")
	}

	select {
	case r := <-distributor:
		t.Fatalf("unexpected extra reading: %+v", r)
	default:
	}
}

func TestPollCycleTransportError(t *testing.T) {
	console := &fakeConsole{
		waiting: 1,
		readErr: errors.New("device unplugged"),
	}
	s, _ := newTestStation(console)

	if err := s.pollCycle(); err == nil {
		t.Fatal("expected pollCycle to surface the transport error")
	}
}

func TestPollCycleReadTimeoutIsNotAnError(t *testing.T) {
	console := &fakeConsole{
		waiting: 1,
		readErr: timeoutError{},
	}
	s, _ := newTestStation(console)

	if err := s.pollCycle(); err != nil {
		t.Fatalf("read timeout should be tolerated, got: %v", err)
	}
}

func TestPollCycleSensorMapOverride(t *testing.T) {
	console := &fakeConsole{
		waiting: 1,
		reads: [][]byte{
			[]byte("\xf2\xf2\xb5\x0b\x02\x00\xd7\x00\x2e\x0a\xfd\x02\xcd"),
		},
	}
	s, distributor := newTestStation(console)

	// Channel 2 normally lands in ExtraTemp1; remap it to the outdoor slot.
	s.sensorMap = DefaultSensorMap().Merge(map[string]string{
		"OutTemp":    "temperature_1",
		"ExtraTemp1": "",
	})

	if err := s.pollCycle(); err != nil {
		t.Fatalf("pollCycle returned error: %v", err)
	}

	select {
	case r := <-distributor:
		if math.Abs(float64(r.OutTemp)-21.5) > epsilon {
			t.Errorf("OutTemp = %v, want 21.5", r.OutTemp)
		}
		if r.ExtraTemp1 != 0 {
			t.Errorf("ExtraTemp1 = %v, want unset", r.ExtraTemp1)
		}
	default:
		t.Fatal("expected a reading on the distributor channel")
	}
}

func TestPollCycleDistributorRespectsCancellation(t *testing.T) {
	console := &fakeConsole{
		waiting: 1,
		reads: [][]byte{
			[]byte("\xf2\xf2\xb4\x09\x27\xe9\x28\x16\x03\x02\xe0"),
		},
	}
	s, _ := newTestStation(console)
	s.ReadingDistributor = make(chan types.Reading) // unbuffered, no receiver

	ctx, cancel := context.WithCancel(context.Background())
	s.ctx = ctx
	cancel()

	done := make(chan error, 1)
	go func() { done <- s.pollCycle() }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("pollCycle returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("pollCycle blocked on a cancelled context")
	}
}
