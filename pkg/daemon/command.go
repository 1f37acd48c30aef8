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
	dispatch runs the handshake for one command frame. Frames with a bad
	checksum or addressing a device outside this peripheral's range are
	dropped without any bus response; the bus is shared, so either may
	simply belong to someone else. All other failures are answered on the
	bus; a non-nil return means the conduit itself broke.
*/
func (f *frame) dispatch(d *Daemon) error {

	if !f.valid() {
		log.WithField("frame", f.data).Debug("dropping frame, bad checksum")
		return nil
	}

	drive := f.drive()
	if drive < 0 || drive >= sio.DriveCount {
		log.WithField("device", f.device()).
			Trace("ignoring frame for other device")
		return nil
	}

	d.touchActivity()

	// the selector may have moved since the last command
	d.vdisk.Select(drive, d.selector.Value())
	defer d.publishStatus(drive)

	switch f.cmd() {

	case sio.CmdStatus:
		return f.status(d, drive)

	case sio.CmdRead:
		return f.read(d, drive)

	case sio.CmdWrite, sio.CmdPut:
		return f.write(d, drive)

	default:
		log.WithFields(log.Fields{
			"drive":   drive,
			"command": f.cmd(),
		}).Debug("unsupported command")
		time.Sleep(sio.AckDelay)
		return d.conduit.send([]byte{sio.Nak})
	}
}
