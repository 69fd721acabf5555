// Package transmitter keys the radio for exactly the duration of
// bulletin playback. The key signal is the RTS line of a serial port;
// whatever happens during a run, the line ends de-asserted.
package transmitter

import (
	"errors"
	"fmt"

	"go.bug.st/serial"
)

// ErrHardwareUnavailable marks a control line that cannot be opened or
// driven. When the line cannot even be opened the run aborts before any
// fetch or synthesis work.
var ErrHardwareUnavailable = errors.New("transmitter control line unavailable")

// KeyLine is the hardware contract: assert and de-assert a single
// transmit-enable signal, and release the line when the run ends.
type KeyLine interface {
	Key() error
	Unkey() error
	Close() error
}

// SerialKeyLine drives the RTS pin of a serial port as the transmitter
// key signal.
type SerialKeyLine struct {
	name string
	port serial.Port
}

// OpenSerialKeyLine opens the port at the given baud rate with RTS
// de-asserted. The caller owns the line for the run and must Close it.
func OpenSerialKeyLine(portName string, baudRate int) (*SerialKeyLine, error) {
	port, err := serial.Open(portName, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrHardwareUnavailable, portName, err)
	}
	if err := port.SetRTS(false); err != nil {
		port.Close()
		return nil, fmt.Errorf("%w: clearing RTS on %s: %v", ErrHardwareUnavailable, portName, err)
	}
	return &SerialKeyLine{name: portName, port: port}, nil
}

func (l *SerialKeyLine) Key() error {
	if err := l.port.SetRTS(true); err != nil {
		return fmt.Errorf("%w: asserting RTS on %s: %v", ErrHardwareUnavailable, l.name, err)
	}
	return nil
}

func (l *SerialKeyLine) Unkey() error {
	if err := l.port.SetRTS(false); err != nil {
		return fmt.Errorf("%w: de-asserting RTS on %s: %v", ErrHardwareUnavailable, l.name, err)
	}
	return nil
}

func (l *SerialKeyLine) Close() error {
	return l.port.Close()
}

func (l *SerialKeyLine) Name() string {
	return l.name
}
