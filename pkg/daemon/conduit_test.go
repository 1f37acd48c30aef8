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
	"bytes"
	"errors"
	"testing"

	"github.com/kweberling/siodrive/pkg/sio"
)

var errScriptExhausted = errors.New("fake port script exhausted")

// one phase of bus traffic: the command line state, and the bytes the
// host sends while the line is in that state
type step struct {
	attn bool
	data []byte
}

/*
	fakePort plays back a script of bus steps. Attention reports the
	state of the current step; Read hands out that step's bytes and
	moves to the next step once they are drained, mimicking a polled
	serial port that may come back empty. Everything the emulator sends
	is collected in out.
*/
type fakePort struct {
	steps  []step
	cur    int
	out    bytes.Buffer
	closed bool
}

//
func newFakePort(steps ...step) *fakePort {
	return &fakePort{steps: steps}
}

//
func (p *fakePort) Attention() (bool, error) {
	if p.cur >= len(p.steps) {
		return false, errScriptExhausted
	}
	return p.steps[p.cur].attn, nil
}

//
func (p *fakePort) Read(b []byte) (int, error) {
	if p.cur >= len(p.steps) {
		return 0, errScriptExhausted
	}
	s := &p.steps[p.cur]
	if len(s.data) == 0 {
		if p.cur+1 >= len(p.steps) {
			return 0, errScriptExhausted
		}
		p.cur++
		return 0, nil
	}
	n := copy(b, s.data)
	s.data = s.data[n:]
	return n, nil
}

//
func (p *fakePort) Write(b []byte) (int, error) {
	return p.out.Write(b)
}

//
func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

// cmdFrame builds a five byte command frame with a valid checksum
func cmdFrame(device, cmd, aux1, aux2 byte) []byte {
	f := []byte{device, cmd, aux1, aux2}
	return append(f, sio.Checksum(f))
}

//
func TestReceiveFrame(t *testing.T) {

	want := cmdFrame(sio.DeviceDisk1, sio.CmdStatus, 0, 0)
	p := newFakePort(
		step{attn: true, data: want},
		step{attn: false},
	)

	frm, err := newConduit(p).receiveFrame()
	if err != nil {
		t.Fatalf("receive failed: %v", err)
	}
	if !bytes.Equal(frm.data, want) {
		t.Fatalf("want frame %v, got %v", want, frm.data)
	}
	if !frm.valid() {
		t.Fatal("frame checksum rejected")
	}
}

//
func TestReceiveFramePartialRecovery(t *testing.T) {

	want := cmdFrame(sio.DeviceDisk1, sio.CmdRead, 1, 0)
	p := newFakePort(
		// a frame cut short by an early command line release
		step{attn: true, data: []byte{0x31, 0x52, 0x01}},
		step{attn: false},
		// immediately followed by a complete frame
		step{attn: true, data: want},
		step{attn: false},
	)

	frm, err := newConduit(p).receiveFrame()
	if err != nil {
		t.Fatalf("receive failed: %v", err)
	}
	if !bytes.Equal(frm.data, want) {
		t.Fatalf("want frame %v, got %v", want, frm.data)
	}
	if p.out.Len() != 0 {
		t.Fatalf("partial frame produced %d bytes of bus output", p.out.Len())
	}
}

//
func TestReceiveFrameGlitch(t *testing.T) {

	want := cmdFrame(sio.DeviceDisk1+1, sio.CmdStatus, 0, 0)
	p := newFakePort(
		// command line asserted without any bytes
		step{attn: true},
		step{attn: false},
		step{attn: true, data: want},
		step{attn: false},
	)

	frm, err := newConduit(p).receiveFrame()
	if err != nil {
		t.Fatalf("receive failed: %v", err)
	}
	if !bytes.Equal(frm.data, want) {
		t.Fatalf("want frame %v, got %v", want, frm.data)
	}
}

//
func TestReceiveFrameDrainsTrailingNoise(t *testing.T) {

	want := cmdFrame(sio.DeviceDisk1, sio.CmdStatus, 0, 0)
	p := newFakePort(
		step{attn: true, data: append(append([]byte{}, want...),
			0xde, 0xad, 0xbe, 0xef)},
		step{attn: false},
	)

	frm, err := newConduit(p).receiveFrame()
	if err != nil {
		t.Fatalf("receive failed: %v", err)
	}
	if !bytes.Equal(frm.data, want) {
		t.Fatalf("trailing noise leaked into frame: %v", frm.data)
	}
}

//
func TestReceiveFrameDiscardsStrayBytes(t *testing.T) {

	want := cmdFrame(sio.DeviceDisk1, sio.CmdStatus, 0, 0)
	p := newFakePort(
		// bus chatter for some other peripheral, no command line
		step{attn: false, data: []byte{0x01, 0x02, 0x03}},
		step{attn: true, data: want},
		step{attn: false},
	)

	frm, err := newConduit(p).receiveFrame()
	if err != nil {
		t.Fatalf("receive failed: %v", err)
	}
	if !bytes.Equal(frm.data, want) {
		t.Fatalf("stray bytes leaked into frame: %v", frm.data)
	}
}

//
func TestReceiveFramePortError(t *testing.T) {
	p := newFakePort(step{attn: false})
	if _, err := newConduit(p).receiveFrame(); err == nil {
		t.Fatal("expected port error")
	}
}
