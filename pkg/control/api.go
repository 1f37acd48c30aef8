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
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/kweberling/siodrive/pkg/daemon"
)

//
type APIServer interface {
	Serve() error
	Stop() error
}

//
func NewAPIServer(addr, repo string, d *daemon.Daemon) APIServer {
	return &api{address: addr, repo: repo, daemon: d}
}

/*
	api runs in its own goroutines, beside the protocol loop. It only
	ever touches the daemon through the selector cell and the published
	status snapshot, never the disk backend itself.
*/
type api struct {
	address string
	repo    string
	daemon  *daemon.Daemon
	server  *http.Server
}

//
func (a *api) Serve() error {

	router := mux.NewRouter().StrictSlash(true)

	addRoute(router, "status", "GET", "/status", a.status)
	addRoute(router, "ls", "GET", "/list", a.list)
	addRoute(router, "select", "PUT", "/index/{index:[0-9]+}", a.selectIndex)

	addr := a.address
	if len(strings.Split(addr, ":")) < 2 {
		addr = fmt.Sprintf("%s:8777", a.address)
	}

	log.Infof("SIODrive API starts listening on %s", addr)
	a.server = &http.Server{Addr: addr, Handler: router}

	err := a.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

//
func (a *api) Stop() error {
	if a.server != nil {
		log.Info("API server stopping...")
		err := a.server.Shutdown(context.Background())
		a.server = nil
		return err
	}
	return nil
}

//
func addRoute(r *mux.Router, name, method, pattern string,
	handler http.HandlerFunc) {
	r.Methods(method).
		Path(pattern).
		Name(name).
		Handler(requestLogger(handler, name))
}

//
func requestLogger(inner http.Handler, name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		log.WithFields(log.Fields{
			"remote": r.RemoteAddr,
			"method": r.Method,
			"path":   r.RequestURI,
		}).Debugf("API BEGIN | %s", name)

		start := time.Now()
		inner.ServeHTTP(w, r)

		log.WithFields(log.Fields{
			"remote":   r.RemoteAddr,
			"method":   r.Method,
			"path":     r.RequestURI,
			"duration": time.Since(start),
		}).Debugf("API END   | %s", name)
	})
}

//
func (a *api) status(w http.ResponseWriter, req *http.Request) {

	stat := &Status{
		Index: a.daemon.Selector().Value(),
		Drive: fillDrive(a.daemon.Status()),
	}
	if t := a.daemon.LastActivity(); !t.IsZero() {
		stat.LastActivity = &t
	}

	if wantsJSON(req) {
		sendJSONReply(stat, http.StatusOK, w)
	} else {
		sendReply([]byte(stat.String()), http.StatusOK, w)
	}
}

// list reports the repository images following the naming convention,
// sorted for display; the daemon itself picks them up in storage order
func (a *api) list(w http.ResponseWriter, req *http.Request) {

	dir, err := os.Open(a.repo)
	if handleError(err, http.StatusServiceUnavailable, w) {
		return
	}
	defer dir.Close()

	names, err := dir.Readdirnames(-1)
	if handleError(err, http.StatusServiceUnavailable, w) {
		return
	}

	ret := &ImageList{}
	for _, n := range names {
		if isImageName(n) {
			ret.Images = append(ret.Images, n)
		}
	}
	sort.Strings(ret.Images)

	if wantsJSON(req) {
		sendJSONReply(ret, http.StatusOK, w)
	} else {
		sendReply([]byte(ret.String()), http.StatusOK, w)
	}
}

//
func (a *api) selectIndex(w http.ResponseWriter, req *http.Request) {

	index, err := strconv.Atoi(mux.Vars(req)["index"])
	if handleError(err, http.StatusUnprocessableEntity, w) {
		return
	}

	if handleError(a.daemon.Selector().Set(index),
		http.StatusUnprocessableEntity, w) {
		return
	}

	sendReply([]byte(fmt.Sprintf("image index set to %02d", index)),
		http.StatusOK, w)
}

// two decimal digits, then the drive letter or '_'
func isImageName(n string) bool {
	if len(n) < 3 {
		return false
	}
	if n[0] < '0' || n[0] > '9' || n[1] < '0' || n[1] > '9' {
		return false
	}
	return n[2] == '_' || ('B' <= n[2] && n[2] <= 'H')
}

//
func setHeaders(h http.Header, json bool) {
	if json {
		h.Set("Content-Type", "application/json; charset=UTF-8")
	} else {
		h.Set("Content-Type", "text/plain; charset=UTF-8")
	}
}

//
func handleError(e error, statusCode int, w http.ResponseWriter) bool {

	if e == nil {
		return false
	}

	log.Errorf("%v", e)

	setHeaders(w.Header(), false)
	w.WriteHeader(statusCode)
	if _, err := w.Write([]byte(fmt.Sprintf("%v\n", e))); err != nil {
		log.Errorf("problem writing error: %v", err)
	}

	return true
}

//
func sendReply(body []byte, statusCode int, w http.ResponseWriter) {
	setHeaders(w.Header(), false)
	w.WriteHeader(statusCode)
	if _, err := fmt.Fprintf(w, "%s\n", body); err != nil {
		log.Errorf("problem sending reply: %v", err)
	}
}

//
func sendJSONReply(obj interface{}, statusCode int, w http.ResponseWriter) {
	setHeaders(w.Header(), true)
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(obj); err != nil {
		log.Errorf("problem writing error: %v", err)
	}
}

//
func wantsJSON(req *http.Request) bool {
	return req.Header.Get("Content-Type") == "application/json"
}
