/*
   SIODrive - Atari SIO floppy drive emulator
   Copyright (c) 2022, Konrad Weberling

   This file is part of SIODrive.

   SIODrive is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   SIODrive is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with SIODrive. If not, see <http://www.gnu.org/licenses/>.
*/

package daemon

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jacobsa/go-serial/serial"
	"golang.org/x/sys/unix"
)

// the bus runs at a fixed character rate
const baudRate = 19200

// how long a read waits for data before coming back empty, in ms
const readTimeout = 5

/*
	openPort opens the serial device carrying the bus. Data moves over
	the regular RX/TX pair; the bus command line arrives on one of the
	modem status lines, selected by line ('ri', 'dsr' or 'cts'), since
	adapter cables differ in where they put it.
*/
func openPort(device, line string) (Port, error) {

	mask, err := commandLineMask(line)
	if err != nil {
		return nil, err
	}

	rwc, err := serial.Open(serial.OpenOptions{
		PortName:              device,
		BaudRate:              baudRate,
		DataBits:              8,
		StopBits:              1,
		InterCharacterTimeout: readTimeout,
		MinimumReadSize:       0,
	})
	if err != nil {
		return nil, err
	}

	// second handle on the device for the modem status ioctl; the serial
	// library does not expose its descriptor
	ctl, err := os.OpenFile(device, os.O_RDONLY|unix.O_NOCTTY, 0)
	if err != nil {
		rwc.Close()
		return nil, err
	}

	return &serialPort{ReadWriteCloser: rwc, ctl: ctl, mask: mask}, nil
}

//
type serialPort struct {
	io.ReadWriteCloser
	ctl  *os.File
	mask int
}

// Read maps the timeout of an empty poll cycle, which the library
// surfaces as EOF, back to "no data"; the bus never ends.
func (p *serialPort) Read(b []byte) (int, error) {
	n, err := p.ReadWriteCloser.Read(b)
	if err == io.EOF {
		return n, nil
	}
	return n, err
}

//
func (p *serialPort) Attention() (bool, error) {
	status, err := unix.IoctlGetInt(int(p.ctl.Fd()), unix.TIOCMGET)
	if err != nil {
		return false, err
	}
	return status&p.mask != 0, nil
}

//
func (p *serialPort) Close() error {
	p.ctl.Close()
	return p.ReadWriteCloser.Close()
}

//
func commandLineMask(line string) (int, error) {
	switch strings.ToLower(line) {
	case "", "ri":
		return unix.TIOCM_RI, nil
	case "dsr":
		return unix.TIOCM_DSR, nil
	case "cts":
		return unix.TIOCM_CTS, nil
	}
	return 0, fmt.Errorf("unknown command line signal: %s", line)
}
