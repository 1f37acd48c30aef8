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
	"os"
	"path/filepath"
	"testing"
)

//
func mkdir(t *testing.T, dir string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("cannot create %s: %v", dir, err)
	}
	return dir
}

//
func corruptMagic(t *testing.T, path string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := f.WriteAt([]byte{0x00}, 0); err != nil {
		t.Fatal(err)
	}
}

//
func TestImagePrefix(t *testing.T) {

	cases := []struct {
		drive, index int
		want         string
	}{
		{0, 7, "07_"},
		{1, 7, "07B"},
		{2, 42, "42C"},
		{0, 0, "00_"},
		{7, 99, "99H"},
	}

	for _, c := range cases {
		if got := ImagePrefix(c.drive, c.index); got != c.want {
			t.Errorf("prefix for drive %d, index %d: want %q, got %q",
				c.drive, c.index, c.want, got)
		}
	}
}

//
func TestBackendSelection(t *testing.T) {

	dir := t.TempDir()
	writeImage(t, dir, "07_foo.atr", 16, 0x11)
	writeImage(t, dir, "07Bbar.atr", 16, 0x22)

	b := NewBackend(dir)
	defer b.Release()

	b.Select(0, 7)
	if !b.Available() {
		t.Fatal("no image open for drive 0")
	}
	if b.Name() != "07_foo.atr" {
		t.Fatalf("drive 0 selected %q", b.Name())
	}

	b.Select(1, 7)
	if !b.Available() {
		t.Fatal("no image open for drive 1")
	}
	if b.Name() != "07Bbar.atr" {
		t.Fatalf("drive 1 selected %q", b.Name())
	}

	// re-selecting the open image keeps it open
	b.Select(1, 7)
	if !b.Available() || b.Name() != "07Bbar.atr" {
		t.Fatal("repeated selection lost the image")
	}

	// selection without a matching file leaves the backend empty
	b.Select(2, 7)
	if b.Available() {
		t.Fatal("image open for drive without a file")
	}
	if b.SectorCount() != 0 || b.Writable() {
		t.Fatal("empty backend reports image properties")
	}
}

//
func TestBackendSectorAccess(t *testing.T) {

	dir := t.TempDir()
	writeImage(t, dir, "03_disk.atr", 8, 0x5a)

	b := NewBackend(dir)
	defer b.Release()

	buf := make([]byte, SectorSize)
	if b.ReadSector(0, buf) {
		t.Fatal("read without selection succeeded")
	}

	b.Select(0, 3)
	if !b.ReadSector(0, buf) {
		t.Fatal("read failed")
	}
	if buf[0] != 0x5a {
		t.Fatal("wrong sector data")
	}
	if b.ReadSector(8, buf) {
		t.Fatal("read beyond sector count succeeded")
	}
	if !b.WriteSector(7, buf) {
		t.Fatal("write failed")
	}
}

//
func TestBackendMountRetry(t *testing.T) {

	dir := filepath.Join(t.TempDir(), "repo")

	b := NewBackend(dir)
	defer b.Release()

	b.Select(0, 1)
	if b.Available() {
		t.Fatal("image open with missing repository")
	}

	// repository shows up later, selection of the same pair retries
	writeImage(t, mkdir(t, dir), "01_late.atr", 4, 0x00)

	b.Select(0, 1)
	if !b.Available() {
		t.Fatal("image not opened after repository became available")
	}
}

//
func TestBackendRejectsBadImage(t *testing.T) {

	dir := t.TempDir()
	path := writeImage(t, dir, "05_bad.atr", 4, 0x00)
	corruptMagic(t, path)

	b := NewBackend(dir)
	defer b.Release()

	b.Select(0, 5)
	if b.Available() {
		t.Fatal("invalid image left open")
	}
}
