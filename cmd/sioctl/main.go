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

package main

import (
	"fmt"
	"os"

	"github.com/kweberling/siodrive/pkg/run"
)

//
var SIODriveVersion string

//
func synopsis() {
	fmt.Print(`
synopsis: sioctl {serve|ls|select|status|version} ...

run 'sioctl {action} -h|--help' to see detailed info

`)
}

//
func version() {
	fmt.Printf("\nSIODrive %s\n\n", SIODriveVersion)
}

//
func main() {

	var action string
	var args []string

	if len(os.Args) > 1 {
		action = os.Args[1]
	}

	if len(os.Args) > 2 {
		args = os.Args[2:]
	}

	switch action {

	case "serve":
		version()
		run.DieOnError(run.NewServe().Execute(args))

	case "ls":
		run.DieOnError(run.NewList().Execute(args))

	case "select":
		run.DieOnError(run.NewSelect().Execute(args))

	case "status":
		run.DieOnError(run.NewStatus().Execute(args))

	case "version":
		version()

	case "":
		fallthrough
	case "-h":
		fallthrough
	case "--help":
		synopsis()

	default:
		run.Die("unknown action: %s\n", action)
	}
}
