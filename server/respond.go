package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Ducheved/sharpmote/log"
	"github.com/Ducheved/sharpmote/projection"
	"github.com/Ducheved/sharpmote/volume"
)

var errEmptyBody = errors.New("request body must be a JSON object")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithFields(log.Fields{"module": "http"}).WithError(err).Debug("response not written")
	}
}

func writeProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(projection.NewProblem(status, detail, r.URL.Path))
}

// writeError maps an engine error onto a problem response.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, volume.ErrNoDevice):
		writeProblem(w, r, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, context.Canceled):
		writeProblem(w, r, projection.StatusClientClosedRequest, err.Error())
	default:
		log.WithFields(log.Fields{"module": "http", "path": r.URL.Path}).WithError(err).Error("request failed")
		writeProblem(w, r, http.StatusInternalServerError, err.Error())
	}
}

func decode(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return errEmptyBody
	}
	return err
}

func writeDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeProblem(w, r, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	writeProblem(w, r, http.StatusBadRequest, err.Error())
}
