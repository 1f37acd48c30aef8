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

import "time"

// first disk device id on the bus (D1:); drives are addressed contiguously
const DeviceDisk1 = 0x31

//
const DriveCount = 3

//
const CmdStatus = 0x53 // get drive status (send to host)
const CmdRead = 0x52   // read sector (send to host)
const CmdWrite = 0x57  // write sector with verify (receive from host)
const CmdPut = 0x50    // write sector without verify (receive from host)

//
const Ack byte = 0x41      // command or data frame accepted
const Nak byte = 0x4e      // command not supported
const Complete byte = 0x43 // operation finished
const Error byte = 0x45    // operation failed

//
const FrameLength = 5
const SectorSize = 128
const StatusLength = 4

// drive status flags, first byte of the status record
const StatusMotorOn = 0x10
const StatusWriteProtected = 0x08
const StatusEnhancedDensity = 0x80

// controller status, second byte of the status record
const ControllerReady = 0xff
const ControllerNotReady = 0x7f

//
const FormatTimeout = 0xe0

// images with more sectors than this report enhanced density
const EnhancedThreshold = 720

/*
	The host expects the acknowledgement within a couple of character times
	after releasing the command line, and the completion byte a short while
	after the acknowledgement. These delays are part of the bus contract,
	not tuning parameters.
*/
const AckDelay = 850 * time.Microsecond
const CompleteDelay = 250 * time.Microsecond
