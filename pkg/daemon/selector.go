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
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

//
const MaxImageIndex = 99

/*
	Selector holds the selected image index, written by the control API
	and read once per command by the protocol loop. The two sides run in
	different goroutines, so the cell is atomic; there is exactly one
	writer and one reader.
*/
type Selector struct {
	value int32
}

//
func NewSelector(index int) *Selector {
	s := &Selector{}
	if err := s.Set(index); err != nil {
		s.value = 0
	}
	return s
}

//
func (s *Selector) Value() int {
	return int(atomic.LoadInt32(&s.value))
}

//
func (s *Selector) Set(index int) error {
	if index < 0 || index > MaxImageIndex {
		return fmt.Errorf("image index out of range: %d", index)
	}
	atomic.StoreInt32(&s.value, int32(index))
	log.WithField("index", index).Info("image index selected")
	return nil
}
