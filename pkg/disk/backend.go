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

package disk

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
)

/*
	Backend resolves a (drive, image index) pair onto a validated image
	from the repository directory. At most one image is open at a time;
	it stays open until a different pair is selected. Selection failures
	leave no image open and are observable via Available, they are not
	returned to the caller.

	Backend is not safe for concurrent use. It belongs to the protocol
	loop; other execution contexts see its state only through snapshots
	published by the daemon.
*/
type Backend struct {
	//
	dir     string
	mounted bool
	//
	drive int
	index int
	img   *Image
}

//
func NewBackend(dir string) *Backend {
	return &Backend{dir: dir, drive: -1, index: -1}
}

/*
	Select makes the image for (drive, index) the open image. It is a
	no-op when that image is already open. Otherwise any open image is
	released first, so a failed selection leaves the backend empty.
*/
func (b *Backend) Select(drive, index int) {

	if b.img != nil && b.drive == drive && b.index == index {
		return
	}

	b.Release()
	b.drive = drive
	b.index = index

	if !b.mount() {
		return
	}

	path, ok := b.find(drive, index)
	if !ok {
		log.WithFields(log.Fields{
			"drive": drive,
			"index": index,
		}).Debug("no image for selection")
		return
	}

	img, err := OpenImage(path)
	if err != nil {
		log.WithFields(log.Fields{
			"drive": drive,
			"index": index,
			"image": filepath.Base(path),
		}).Warnf("rejecting image: %v", err)
		return
	}

	b.img = img
	log.WithFields(log.Fields{
		"drive":    drive,
		"index":    index,
		"image":    img.Name(),
		"sectors":  img.SectorCount(),
		"writable": img.Writable(),
	}).Info("image selected")
}

// mount checks the repository directory once; a failure is retried on
// the next selection, so media that shows up late is picked up.
func (b *Backend) mount() bool {

	if b.mounted {
		return true
	}

	info, err := os.Stat(b.dir)
	if err != nil {
		log.Warnf("image repository unavailable: %v", err)
		return false
	}
	if !info.IsDir() {
		log.Warnf("image repository is not a directory: %s", b.dir)
		return false
	}

	log.WithField("repo", b.dir).Info("image repository mounted")
	b.mounted = true
	return true
}

// find returns the first directory entry, in storage order, matching the
// naming convention for (drive, index).
func (b *Backend) find(drive, index int) (string, bool) {

	dir, err := os.Open(b.dir)
	if err != nil {
		log.Warnf("cannot scan image repository: %v", err)
		return "", false
	}
	defer dir.Close()

	names, err := dir.Readdirnames(-1)
	if err != nil {
		log.Warnf("cannot scan image repository: %v", err)
		return "", false
	}

	prefix := ImagePrefix(drive, index)
	for _, n := range names {
		if strings.HasPrefix(n, prefix) {
			return filepath.Join(b.dir, n), true
		}
	}

	return "", false
}

/*
	ImagePrefix is the file name prefix selecting image index for a drive:
	two decimal digits for the index, then '_' for drive 0 or 'A'+drive
	for drives 1 and up. The rest of the file name is free form.
*/
func ImagePrefix(drive, index int) string {
	c := byte('_')
	if drive > 0 {
		c = byte('A' + drive)
	}
	return fmt.Sprintf("%02d%c", index, c)
}

//
func (b *Backend) Available() bool {
	return b.img != nil
}

//
func (b *Backend) Name() string {
	return b.img.Name()
}

//
func (b *Backend) SectorCount() int {
	return b.img.SectorCount()
}

//
func (b *Backend) Writable() bool {
	return b.img.Writable()
}

//
func (b *Backend) ReadSector(ix int, buf []byte) bool {
	return b.img.ReadSector(ix, buf)
}

//
func (b *Backend) WriteSector(ix int, buf []byte) bool {
	return b.img.WriteSector(ix, buf)
}

// Release closes the open image, if any.
func (b *Backend) Release() {
	if b.img != nil {
		if err := b.img.Close(); err != nil {
			log.Errorf("error closing image %s: %v", b.img.Name(), err)
		}
		b.img = nil
	}
}
