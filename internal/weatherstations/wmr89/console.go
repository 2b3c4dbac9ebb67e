package wmr89

import (
	"fmt"
	"io"
	"net"
	"time"

	serial "github.com/tarm/goserial"
)

// Console is the byte-level link to a WMR89 console.  The station never
// configures the link itself; implementations arrive already set up for the
// device's fixed serial parameters (128000 baud, 8N1, no flow control).
type Console interface {
	// BytesWaiting reports how many received bytes are already buffered
	// and waiting to be drained.  The poll loop uses it to decide whether
	// the console needs prodding with a data request.
	BytesWaiting() int

	// Write sends bytes to the console.
	Write(p []byte) (int, error)

	// ReadAvailable drains whatever the console has sent, blocking until
	// at least one byte arrives or the link's read timeout passes.
	ReadAvailable() ([]byte, error)

	// ReadFull blocks until len(p) bytes arrive, failing if the link's
	// read timeout passes first.
	ReadFull(p []byte) error

	Close() error
}

const (
	// The WMR89 talks at a fixed rate; there is nothing to negotiate.
	defaultBaud = 128000

	readBufferSize = 1024
	netReadTimeout = 2 * time.Second
)

// serialConsole adapts a serial port to the Console interface.
type serialConsole struct {
	port io.ReadWriteCloser
}

// OpenSerialConsole opens the named serial device at the console's fixed
// baud rate.  A baud of 0 selects the default.
func OpenSerialConsole(device string, baud int) (Console, error) {
	if baud == 0 {
		baud = defaultBaud
	}
	port, err := serial.OpenPort(&serial.Config{Name: device, Baud: baud})
	if err != nil {
		return nil, fmt.Errorf("could not open serial port %s: %w", device, err)
	}
	return &serialConsole{port: port}, nil
}

// BytesWaiting always reports zero for serial links: goserial does not
// expose the OS input queue, so the poll loop prods the console every cycle.
// The console tolerates redundant data requests.
func (c *serialConsole) BytesWaiting() int {
	return 0
}

func (c *serialConsole) Write(p []byte) (int, error) {
	return c.port.Write(p)
}

func (c *serialConsole) ReadAvailable() ([]byte, error) {
	buf := make([]byte, readBufferSize)
	n, err := c.port.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func (c *serialConsole) ReadFull(p []byte) error {
	_, err := io.ReadFull(c.port, p)
	return err
}

func (c *serialConsole) Close() error {
	return c.port.Close()
}

// netConsole adapts a TCP connection to the Console interface.  It exists
// for consoles fronted by a serial-to-network bridge and for the emulator.
type netConsole struct {
	conn net.Conn
}

// NewNetConsole wraps an established network connection.
func NewNetConsole(conn net.Conn) Console {
	return &netConsole{conn: conn}
}

func (c *netConsole) BytesWaiting() int {
	return 0
}

func (c *netConsole) Write(p []byte) (int, error) {
	return c.conn.Write(p)
}

func (c *netConsole) ReadAvailable() ([]byte, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(netReadTimeout)); err != nil {
		return nil, err
	}
	buf := make([]byte, readBufferSize)
	n, err := c.conn.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func (c *netConsole) ReadFull(p []byte) error {
	if err := c.conn.SetReadDeadline(time.Now().Add(netReadTimeout)); err != nil {
		return err
	}
	_, err := io.ReadFull(c.conn, p)
	return err
}

func (c *netConsole) Close() error {
	return c.conn.Close()
}
