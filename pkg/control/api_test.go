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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"

	"github.com/kweberling/siodrive/pkg/daemon"
)

//
func newTestAPI(t *testing.T, repo string, index int) *api {
	t.Helper()
	return &api{
		repo:   repo,
		daemon: daemon.NewDaemon("", "", repo, index),
	}
}

//
func TestStatusJSON(t *testing.T) {

	a := newTestAPI(t, t.TempDir(), 42)

	req := httptest.NewRequest("GET", "/status", nil)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	a.status(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status code %d", rec.Code)
	}

	var stat Status
	if err := json.NewDecoder(rec.Body).Decode(&stat); err != nil {
		t.Fatalf("cannot decode reply: %v", err)
	}
	if stat.Index != 42 {
		t.Fatalf("want index 42, got %d", stat.Index)
	}
	if stat.Drive != nil {
		t.Fatal("drive snapshot present before any command")
	}
}

//
func TestSelectIndex(t *testing.T) {

	a := newTestAPI(t, t.TempDir(), 0)

	req := mux.SetURLVars(
		httptest.NewRequest("PUT", "/index/7", nil),
		map[string]string{"index": "7"})
	rec := httptest.NewRecorder()

	a.selectIndex(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status code %d", rec.Code)
	}
	if got := a.daemon.Selector().Value(); got != 7 {
		t.Fatalf("selector not updated, got %d", got)
	}
}

//
func TestSelectIndexOutOfRange(t *testing.T) {

	a := newTestAPI(t, t.TempDir(), 3)

	req := mux.SetURLVars(
		httptest.NewRequest("PUT", "/index/100", nil),
		map[string]string{"index": "100"})
	rec := httptest.NewRecorder()

	a.selectIndex(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status code %d", rec.Code)
	}
	if got := a.daemon.Selector().Value(); got != 3 {
		t.Fatalf("selector changed to %d", got)
	}
}

//
func TestList(t *testing.T) {

	dir := t.TempDir()
	for _, n := range []string{
		"00_one.atr", "07Btwo.atr", "readme.txt", "x9_bad",
	} {
		if err := os.WriteFile(
			filepath.Join(dir, n), []byte{0}, 0644); err != nil {
			t.Fatal(err)
		}
	}

	a := newTestAPI(t, dir, 0)

	req := httptest.NewRequest("GET", "/list", nil)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	a.list(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status code %d", rec.Code)
	}

	var list ImageList
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("cannot decode reply: %v", err)
	}

	want := []string{"00_one.atr", "07Btwo.atr"}
	if len(list.Images) != len(want) {
		t.Fatalf("want %v, got %v", want, list.Images)
	}
	for ix, n := range want {
		if list.Images[ix] != n {
			t.Fatalf("want %v, got %v", want, list.Images)
		}
	}
}
