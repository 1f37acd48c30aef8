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

/*
	write handles both write command forms. The verify variant performs
	no separate verification pass beyond the raw write, matching the
	behavior hosts of this peripheral family actually get.
*/
func (f *frame) write(d *Daemon, drive int) error {

	time.Sleep(sio.AckDelay)
	if err := d.conduit.send([]byte{sio.Ack}); err != nil {
		return err
	}

	sec := f.sector()

	data, ok, err := d.conduit.receiveFramed(sio.SectorSize)
	if err != nil {
		return err
	}

	if !ok {
		log.WithFields(log.Fields{
			"drive":  drive,
			"sector": sec,
		}).Debug("WRITE rejected, bad data checksum")
		time.Sleep(sio.CompleteDelay)
		return d.conduit.send([]byte{sio.Error})
	}

	// data frame accepted
	time.Sleep(sio.AckDelay)
	if err := d.conduit.send([]byte{sio.Ack}); err != nil {
		return err
	}

	ok = d.vdisk.WriteSector(sec, data)

	log.WithFields(log.Fields{
		"drive":  drive,
		"sector": sec,
		"ok":     ok,
	}).Debug("WRITE")

	time.Sleep(sio.CompleteDelay)

	if !ok {
		return d.conduit.send([]byte{sio.Error})
	}
	return d.conduit.send([]byte{sio.Complete})
}
