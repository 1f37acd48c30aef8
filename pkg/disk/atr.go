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
	"io"
	"os"
	"path/filepath"
)

//
const HeaderLength = 16
const SectorSize = 128

// image size in the header is counted in 16 byte paragraphs,
// 8 paragraphs per sector
const paragraphsPerSector = 8

const magicLo = 0x96
const magicHi = 0x02

const minParagraphs = 8
const maxParagraphs = 0x70000

/*
	Image is a validated disk image, open until released. The image is
	writable when the backing file could be opened for writing; otherwise
	all writes fail and the drive reports write protection.
*/
type Image struct {
	file     *os.File
	name     string
	sectors  int
	writable bool
}

/*
	OpenImage opens and validates the image file at path. The file is
	opened for writing when possible, falling back to read-only. A file
	that fails header validation is not kept open.
*/
func OpenImage(path string) (*Image, error) {

	writable := true
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		writable = false
		if f, err = os.Open(path); err != nil {
			return nil, err
		}
	}

	hdr := make([]byte, HeaderLength)
	if _, err := io.ReadFull(f, hdr); err != nil {
		f.Close()
		return nil, fmt.Errorf("cannot read image header: %v", err)
	}

	sectors, err := parseHeader(hdr)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &Image{
		file:     f,
		name:     filepath.Base(path),
		sectors:  sectors,
		writable: writable,
	}, nil
}

/*
	parseHeader validates a 16 byte image header and returns the sector
	count. Little-endian paragraph count is split across bytes 2, 3, and 6;
	only 128 byte sectors are accepted.
*/
func parseHeader(hdr []byte) (int, error) {

	if len(hdr) < HeaderLength {
		return 0, fmt.Errorf("header too short: %d bytes", len(hdr))
	}

	if hdr[0] != magicLo || hdr[1] != magicHi {
		return 0, fmt.Errorf("bad image magic: %#02x %#02x", hdr[0], hdr[1])
	}

	if size := int(hdr[4]) | int(hdr[5])<<8; size != SectorSize {
		return 0, fmt.Errorf("unsupported sector size: %d", size)
	}

	paragraphs := int(hdr[6])<<16 | int(hdr[3])<<8 | int(hdr[2])
	if paragraphs < minParagraphs || paragraphs > maxParagraphs {
		return 0, fmt.Errorf("image size out of range: %d paragraphs",
			paragraphs)
	}

	return paragraphs / paragraphsPerSector, nil
}

//
func (i *Image) Name() string {
	if i == nil {
		return ""
	}
	return i.name
}

//
func (i *Image) SectorCount() int {
	if i == nil {
		return 0
	}
	return i.sectors
}

//
func (i *Image) Writable() bool {
	return i != nil && i.writable
}

/*
	ReadSector fills buf with sector ix (0-based). It reports false when
	the index is out of range, buf is not exactly one sector, or the
	backing file does not yield a complete sector.
*/
func (i *Image) ReadSector(ix int, buf []byte) bool {
	if i == nil || ix < 0 || ix >= i.sectors || len(buf) != SectorSize {
		return false
	}
	_, err := i.file.ReadAt(buf, i.offset(ix))
	return err == nil
}

// WriteSector writes buf to sector ix, with the same bounds rules as
// ReadSector; it also fails on a read-only image.
func (i *Image) WriteSector(ix int, buf []byte) bool {
	if i == nil || !i.writable ||
		ix < 0 || ix >= i.sectors || len(buf) != SectorSize {
		return false
	}
	_, err := i.file.WriteAt(buf, i.offset(ix))
	return err == nil
}

//
func (i *Image) offset(ix int) int64 {
	return HeaderLength + int64(ix)*SectorSize
}

//
func (i *Image) Close() error {
	if i == nil || i.file == nil {
		return nil
	}
	err := i.file.Close()
	i.file = nil
	return err
}
