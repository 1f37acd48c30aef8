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

package control

import (
	"fmt"
	"time"

	"github.com/kweberling/siodrive/pkg/daemon"
)

//
type Status struct {
	Index        int        `json:"index"`
	Drive        *Drive     `json:"drive,omitempty"`
	LastActivity *time.Time `json:"lastActivity,omitempty"`
}

//
type Drive struct {
	Drive    int    `json:"drive"`
	Index    int    `json:"index"`
	Image    string `json:"image,omitempty"`
	Ready    bool   `json:"ready"`
	Sectors  int    `json:"sectors"`
	Writable bool   `json:"writable"`
}

//
func (s *Status) String() string {

	ret := fmt.Sprintf("\nselected image index: %02d\n", s.Index)

	if s.Drive == nil {
		return ret + "no command handled yet\n"
	}

	d := s.Drive
	if !d.Ready {
		return ret + fmt.Sprintf("D%d: not ready\n", d.Drive+1)
	}

	mode := 'w'
	if !d.Writable {
		mode = 'r'
	}
	return ret + fmt.Sprintf("D%d: %-20s %5d sectors %c\n",
		d.Drive+1, d.Image, d.Sectors, mode)
}

//
func fillDrive(s *daemon.DriveStatus) *Drive {
	if s == nil {
		return nil
	}
	return &Drive{
		Drive:    s.Drive,
		Index:    s.Index,
		Image:    s.Image,
		Ready:    s.Available,
		Sectors:  s.Sectors,
		Writable: s.Writable,
	}
}

//
type ImageList struct {
	Images []string `json:"images"`
}

//
func (l *ImageList) String() string {
	ret := "\n"
	for _, img := range l.Images {
		ret += img + "\n"
	}
	return ret
}
