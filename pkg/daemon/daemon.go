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
	"errors"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/kweberling/siodrive/pkg/disk"
)

//
var ErrDaemonStopped = errors.New("daemon stopped")

/*
	DriveStatus is an immutable snapshot of the drive state, published by
	the protocol loop after every command so that other goroutines never
	have to touch the backend.
*/
type DriveStatus struct {
	Drive     int
	Index     int
	Available bool
	Image     string
	Sectors   int
	Writable  bool
}

// the daemon that speaks the bus protocol on behalf of the drives
type Daemon struct {
	//
	device string
	line   string
	//
	vdisk    *disk.Backend
	selector *Selector
	//
	mux     sync.Mutex
	conduit *conduit
	stopped int32
	//
	status   atomic.Value // *DriveStatus
	activity int64        // unix nanos of last dispatched command
}

//
func NewDaemon(device, line, repo string, index int) *Daemon {
	return &Daemon{
		device:   device,
		line:     line,
		vdisk:    disk.NewBackend(repo),
		selector: NewSelector(index),
	}
}

//
func (d *Daemon) Selector() *Selector {
	return d.selector
}

//
func (d *Daemon) Serve() error {
	return d.listen()
}

//
func (d *Daemon) listen() error {

	if err := d.resetConduit(); err != nil {
		return err
	}
	defer d.vdisk.Release()

	for {
		frm, err := d.getConduit().receiveFrame()

		if d.isStopped() {
			return ErrDaemonStopped
		}

		if err != nil {
			log.Errorf("error receiving command frame: %v", err)
			if err := d.resetConduit(); err != nil {
				return err
			}
			continue
		}

		if err := frm.dispatch(d); err != nil {
			log.Errorf("error dispatching command frame: %v", err)
			if d.isStopped() {
				return ErrDaemonStopped
			}
			if err := d.resetConduit(); err != nil {
				return err
			}
		}
	}
}

// resetConduit closes the port if open and reopens it, backing off
// between attempts until it succeeds or the daemon is stopped.
func (d *Daemon) resetConduit() error {

	if c := d.getConduit(); c != nil {
		log.Infof("closing device %s", d.device)
		if err := c.close(); err != nil {
			log.Errorf("error closing device: %v", err)
		}
		d.setConduit(nil)
	}

	maxBackoff := 15 * time.Second

	for backoff := time.Second; ; {
		if d.isStopped() {
			return ErrDaemonStopped
		}
		log.Infof("opening device %s", d.device)
		if p, err := openPort(d.device, d.line); err != nil {
			log.Errorf("cannot open serial device: %v", err)
			if backoff < maxBackoff {
				backoff *= 2
			}
			time.Sleep(backoff)
		} else {
			d.setConduit(newConduit(p))
			return nil
		}
	}
}

//
func (d *Daemon) Stop() {
	atomic.StoreInt32(&d.stopped, 1)
	if c := d.getConduit(); c != nil {
		if err := c.close(); err != nil {
			log.Errorf("error closing device: %v", err)
		}
	}
}

//
func (d *Daemon) isStopped() bool {
	return atomic.LoadInt32(&d.stopped) != 0
}

//
func (d *Daemon) getConduit() *conduit {
	d.mux.Lock()
	defer d.mux.Unlock()
	return d.conduit
}

//
func (d *Daemon) setConduit(c *conduit) {
	d.mux.Lock()
	defer d.mux.Unlock()
	d.conduit = c
}

//
func (d *Daemon) publishStatus(drive int) {
	d.status.Store(&DriveStatus{
		Drive:     drive,
		Index:     d.selector.Value(),
		Available: d.vdisk.Available(),
		Image:     d.vdisk.Name(),
		Sectors:   d.vdisk.SectorCount(),
		Writable:  d.vdisk.Writable(),
	})
}

// Status returns the last published drive snapshot, nil before the
// first command has been handled.
func (d *Daemon) Status() *DriveStatus {
	if v := d.status.Load(); v != nil {
		return v.(*DriveStatus)
	}
	return nil
}

// touchActivity records bus activity for the indicator.
func (d *Daemon) touchActivity() {
	atomic.StoreInt64(&d.activity, time.Now().UnixNano())
}

//
func (d *Daemon) LastActivity() time.Time {
	if ns := atomic.LoadInt64(&d.activity); ns > 0 {
		return time.Unix(0, ns)
	}
	return time.Time{}
}
