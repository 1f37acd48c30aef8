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
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/kweberling/siodrive/pkg/sio"
)

//
func (f *frame) read(d *Daemon, drive int) error {

	time.Sleep(sio.AckDelay)
	if err := d.conduit.send([]byte{sio.Ack}); err != nil {
		return err
	}

	sec := f.sector()
	buf := make([]byte, sio.SectorSize)
	ok := d.vdisk.ReadSector(sec, buf)

	log.WithFields(log.Fields{
		"drive":  drive,
		"sector": sec,
		"ok":     ok,
	}).Debug("READ")

	time.Sleep(sio.CompleteDelay)

	if !ok {
		return d.conduit.send([]byte{sio.Error})
	}

	if err := d.conduit.send([]byte{sio.Complete}); err != nil {
		return err
	}
	return d.conduit.sendFramed(buf)
}
