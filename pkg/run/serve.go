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

package run

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/kweberling/siodrive/pkg/control"
	"github.com/kweberling/siodrive/pkg/daemon"
)

//
func NewServe() *Serve {

	s := &Serve{}
	s.Runner = *NewRunner(
		`serve -d|--device {device} -r|--repo {image folder}
      [-a|--address {address}] [-l|--line {ri|dsr|cts}] [-i|--index {index}]`,
		"daemon & API server command",
		`Use the serve command for running the drive daemon and API server. The
daemon speaks the bus protocol on the given serial device, serving sectors
from the image files in the repo folder. The bus command signal is expected
on the modem status line given with --line.`,
		`- Logging can be configured with these environment variables:

  LOG_FORMAT		set to 'json' for JSON logging
  LOG_FORCE_COLORS	set to non-empty for forcing colorized log entries
  LOG_METHODS		set to non-empty for including methods in log
  LOG_LEVEL		panic, fatal, error, warn, info, debug, trace

`+runnerHelpEpilogue, s.Run)

	s.AddBaseSettings()
	s.AddStringSetting(&s.Device, "device", "d", "SIODRIVE_DEVICE", "",
		"serial port device for the bus", true)
	s.AddStringSetting(&s.Repository, "repo", "r", "SIODRIVE_REPO", "",
		"disk image repository folder", true)
	s.AddStringSetting(&s.Address, "address", "a", "", "",
		"listen address for the API server", false)
	s.AddStringSetting(&s.Line, "line", "l", "SIODRIVE_LINE", "ri",
		"modem status line carrying the bus command signal", false)
	s.AddIntSetting(&s.Index, "index", "i", "SIODRIVE_INDEX", 0,
		"initially selected image index", false)

	return s
}

//
type Serve struct {
	//
	Runner
	//
	Device     string
	Repository string
	Address    string
	Line       string
	Index      int
}

//
func (s *Serve) Run() error {

	s.ParseSettings()

	wg := &sync.WaitGroup{}
	wg.Add(2)

	d := daemon.NewDaemon(s.Device, s.Line, s.Repository, s.Index)
	go func() {
		defer wg.Done()
		err := d.Serve()
		if err != nil && err != daemon.ErrDaemonStopped {
			log.Errorf("daemon closed with error: %v", err)
		} else {
			log.Info("daemon stopped")
		}
	}()

	api := control.NewAPIServer(s.Address, s.Repository, d)
	go func() {
		defer wg.Done()
		if err := api.Serve(); err != nil {
			log.Errorf("API server closed with error: %v", err)
		} else {
			log.Info("API server stopped")
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	sigCount := 0
	done := make(chan bool)

	for {

		select {

		case sig := <-sigs: // interrupt signal
			log.WithField("signal", sig).Info("signal received")
			sigCount++

			switch sigCount {

			case 1:
				go func() {
					log.Info("shutting down, hit Ctrl-C twice to force exit...")
					api.Stop()
					d.Stop()
					wg.Wait()
					log.Info("SIODrive stopped")
					done <- true
				}()

			case 2:
				log.Warn("shutdown in progress, hit Ctrl-C again to force exit")

			default:
				log.Warn("forcing daemon to stop immediately")
				os.Exit(1)
			}

		case <-done: // shutdown sequence complete
			return nil
		}
	}
}
