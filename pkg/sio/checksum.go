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

package sio

import "io"

/*
	Checksum computes the bus checksum over data. The sum is additive with
	end-around carry: whenever it reaches 256, the carry is folded back in
	as +1. This is not the same as plain 8-bit wraparound; bytes summing to
	exactly 256 yield 1, not 0.
*/
func Checksum(data []byte) byte {
	sum := 0
	for _, b := range data {
		sum += int(b)
		if sum >= 0x100 {
			sum = sum - 0x100 + 1
		}
	}
	return byte(sum)
}

// SendFramed writes data followed by its checksum byte.
func SendFramed(w io.Writer, data []byte) error {
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err := w.Write([]byte{Checksum(data)})
	return err
}

/*
	ReceiveFramed reads length data bytes plus one checksum byte from r.
	The bool result is false when the received checksum does not match the
	data; the data bytes are returned either way. The read blocks until
	all bytes have arrived or r fails.
*/
func ReceiveFramed(r io.Reader, length int) ([]byte, bool, error) {
	buf := make([]byte, length+1)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, false, err
	}
	data := buf[:length]
	return data, Checksum(data) == buf[length], nil
}
