package main

import (
	"io"

	"github.com/samofly/serial"
)

// openPort opens dev at baud using the samofly/serial transport (teacher's
// choice on Linux).
func openPort(dev string, baud int) (io.ReadWriteCloser, error) {
	return serial.Open(dev, baud)
}
