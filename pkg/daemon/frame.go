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
	"github.com/kweberling/siodrive/pkg/sio"
)

// a complete five byte command frame as captured off the bus
type frame struct {
	data []byte
}

//
func newFrame(data []byte) *frame {
	d := make([]byte, sio.FrameLength)
	copy(d, data)
	return &frame{data: d}
}

//
func (f *frame) device() byte {
	return f.data[0]
}

//
func (f *frame) cmd() byte {
	return f.data[1]
}

//
func (f *frame) aux1() byte {
	return f.data[2]
}

//
func (f *frame) aux2() byte {
	return f.data[3]
}

// valid reports whether the trailing checksum matches the first four bytes
func (f *frame) valid() bool {
	return sio.Checksum(f.data[:4]) == f.data[4]
}

// drive returns the 0-based logical drive addressed by this frame; the
// result is only meaningful when it lies within the drive count
func (f *frame) drive() int {
	return int(f.device()) - sio.DeviceDisk1
}

// sector returns the 0-based sector index from the aux bytes; the bus
// numbers sectors from 1, so aux 0/0 yields -1, which no image has
func (f *frame) sector() int {
	return int(f.aux1()) + int(f.aux2())<<8 - 1
}
