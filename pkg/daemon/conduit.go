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
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/kweberling/siodrive/pkg/sio"
)

/*
	Port is the wire to the bus. Read may return without data when none
	is pending; the command line state is sensed out of band through
	Attention. Errors from either are fatal for the port.
*/
type Port interface {
	io.ReadWriteCloser
	Attention() (bool, error)
}

//
func newConduit(p Port) *conduit {
	return &conduit{port: p}
}

//
type conduit struct {
	port Port
}

//
func (c *conduit) close() error {
	return c.port.Close()
}

/*
	receiveFrame assembles the next command frame from the bus. It idles
	until the command line is asserted, discarding stray bytes, captures
	up to five bytes while the line stays asserted, then drains noise
	until the line is released before handing the frame out. A frame cut
	short by an early release is dropped, and the reader returns to idle.

	This blocks until a complete frame arrives or the port fails; the
	host drives all pacing on this bus.
*/
func (c *conduit) receiveFrame() (*frame, error) {

	buf := make([]byte, sio.FrameLength)
	noise := make([]byte, 64)

	for {
		// idle; anything arriving without the command line is noise
		attn, err := c.port.Attention()
		if err != nil {
			return nil, err
		}
		if !attn {
			n, err := c.port.Read(noise)
			if err != nil {
				return nil, err
			}
			if n > 0 {
				log.Debugf("discarding %d stray bytes", n)
			}
			continue
		}

		// framing; capture while the command line stays asserted
		n := 0
		for n < len(buf) {
			if attn, err = c.port.Attention(); err != nil {
				return nil, err
			}
			if !attn {
				break
			}
			m, err := c.port.Read(buf[n:])
			if err != nil {
				return nil, err
			}
			n += m
		}

		if n < len(buf) {
			// zero captured bytes is just a glitch on the line
			if n > 0 {
				log.WithField("received", n).Debug("dropping partial frame")
			}
			continue
		}

		// await release, draining whatever else the sender pushes out
		for attn {
			if m, err := c.port.Read(noise); err != nil {
				return nil, err
			} else if m > 0 {
				log.Debugf("draining %d bytes before command line release", m)
			}
			if attn, err = c.port.Attention(); err != nil {
				return nil, err
			}
		}

		return newFrame(buf), nil
	}
}

// Read blocks until at least one byte is available, turning the port's
// polled reads into the blocking receive the data phases need.
func (c *conduit) Read(p []byte) (int, error) {
	for {
		n, err := c.port.Read(p)
		if n > 0 || err != nil {
			return n, err
		}
	}
}

//
func (c *conduit) send(data []byte) error {
	_, err := c.port.Write(data)
	return err
}

//
func (c *conduit) sendFramed(data []byte) error {
	return sio.SendFramed(c.port, data)
}

//
func (c *conduit) receiveFramed(length int) ([]byte, bool, error) {
	return sio.ReceiveFramed(c, length)
}
