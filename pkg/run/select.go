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
	"fmt"
	"io/ioutil"

	"github.com/kweberling/siodrive/pkg/daemon"
)

//
func NewSelect() *Select {

	s := &Select{}
	s.Runner = *NewRunner(
		"select -i|--index {index} [-p|--port {port}]",
		"select image index",
		`
Use the select command to change the selected image index. The daemon picks
up the new index with the next command the host sends.`,
		runnerHelpEpilogue, s.Run)

	s.AddBaseSettings()
	s.AddIntSetting(&s.Index, "index", "i", "", -1,
		"image index to select", true)

	return s
}

//
type Select struct {
	//
	Runner
	//
	Index int
}

//
func (s *Select) Run() error {

	s.ParseSettings()

	if s.Index < 0 || s.Index > daemon.MaxImageIndex {
		return fmt.Errorf(
			"invalid image index: %d; valid indexes are 0 through %d",
			s.Index, daemon.MaxImageIndex)
	}

	resp, err := s.apiCall("PUT", fmt.Sprintf("/index/%d", s.Index), false)
	if err != nil {
		return err
	}
	defer resp.Close()

	msg, err := ioutil.ReadAll(resp)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", msg)
	return nil
}
