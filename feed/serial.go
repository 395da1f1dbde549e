package feed

import (
	"bufio"
	"context"
	"io"
	"log"
	"time"

	"github.com/pkg/errors"
	"go.bug.st/serial"
)

// RetryDelay is how long Listen waits before reopening a failed port.
var RetryDelay = 5 * time.Second

// Listen reads quaternion lines from the serial port and calls fn for each
// one until ctx is done. The port is reopened whenever it fails.
func Listen(ctx context.Context, portName string, baudRate int, fn func(Quaternion)) {
	mode := &serial.Mode{
		BaudRate: baudRate,
	}

	for ctx.Err() == nil {
		port, err := serial.Open(portName, mode)
		if err != nil {
			log.Printf("Error opening serial port %s: %v. Retrying in %v...", portName, err, RetryDelay)
			if ports, lerr := serial.GetPortsList(); lerr == nil && len(ports) > 0 {
				log.Printf("Available serial ports: %v", ports)
			}
			wait(ctx, RetryDelay)
			continue
		}

		log.Printf("Successfully opened serial port: %s", portName)
		stop := context.AfterFunc(ctx, func() { port.Close() })
		if err := Scan(port, fn); err != nil && ctx.Err() == nil {
			log.Printf("Error reading from serial port: %v", err)
		}
		if stop() {
			port.Close()
		}
		if ctx.Err() == nil {
			log.Println("Serial port closed. Reconnecting...")
			wait(ctx, RetryDelay)
		}
	}
}

// Scan calls fn for every well-formed quaternion line read from r. Lines
// that do not parse are logged and skipped.
func Scan(r io.Reader, fn func(Quaternion)) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		quat, err := ParseQuaternion(line)
		if err != nil {
			log.Printf("Error parsing quaternion: %v (line: %s)", err, line)
			continue
		}
		fn(quat)
	}
	return errors.Wrap(scanner.Err(), "scanning serial input")
}

func wait(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
