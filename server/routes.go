package server

import (
	"context"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/Ducheved/sharpmote/history"
	"github.com/Ducheved/sharpmote/log"
	"github.com/Ducheved/sharpmote/projection"
)

func (s *Server) routes() {
	api := func(h http.HandlerFunc) http.HandlerFunc { return limit(s.apiLimiter, h) }
	webhook := func(h http.HandlerFunc) http.HandlerFunc { return limit(s.webhookLimiter, h) }

	s.mux.HandleFunc("GET /healthz", api(s.healthHandler()))
	s.mux.HandleFunc("GET /events", api(s.eventsHandler()))

	s.mux.HandleFunc("GET /api/v1/state", api(s.stateHandler()))
	s.mux.HandleFunc("POST /api/v1/play", api(s.commandHandler(s.media.Play)))
	s.mux.HandleFunc("POST /api/v1/pause", api(s.commandHandler(s.media.Pause)))
	s.mux.HandleFunc("POST /api/v1/toggle", api(s.commandHandler(s.media.Toggle)))
	s.mux.HandleFunc("POST /api/v1/next", api(s.commandHandler(s.media.Next)))
	s.mux.HandleFunc("POST /api/v1/prev", api(s.commandHandler(s.media.Previous)))
	s.mux.HandleFunc("POST /api/v1/stop", api(s.commandHandler(s.media.Stop)))
	s.mux.HandleFunc("POST /api/v1/volume/step", api(s.volumeStepHandler()))
	s.mux.HandleFunc("POST /api/v1/volume/set", api(s.volumeSetHandler()))
	s.mux.HandleFunc("POST /api/v1/volume/mute", api(s.volumeMuteHandler()))
	s.mux.HandleFunc("GET /api/v1/albumart", api(s.albumArtHandler()))
	if s.history != nil {
		s.mux.HandleFunc("GET /api/v1/history", api(s.historyHandler()))
	}

	s.mux.HandleFunc("POST /telegram/webhook/{secret}", webhook(s.telegramHandler()))
	if s.yandex != nil {
		s.mux.HandleFunc("POST /yandex/", webhook(s.yandex.ServeHTTP))
		s.mux.HandleFunc("HEAD /yandex/", webhook(s.yandex.ServeHTTP))
	}

	s.mux.Handle("GET /", staticHandler())
}

func (s *Server) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, projection.Acknowledged)
	}
}

func (s *Server) historyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries := s.history.Get()
		if entries == nil {
			entries = []history.Entry{}
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

// eventsHandler streams hub frames verbatim until the client leaves, the server
// shuts down or the stream lifetime elapses.
func (s *Server) eventsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), s.cfg.SSELifetime)
		defer cancel()

		rc := http.NewResponseController(w)

		h := w.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		h.Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)

		sub := s.events.Subscribe(ctx)
		defer sub.Close()

		for {
			frame, err := sub.Next(ctx)
			if err != nil {
				log.WithFields(log.Fields{"module": "http", "action": "events", "subscriber": sub.ID}).WithError(err).Debug("stream ended")
				return
			}

			if _, err := w.Write(frame); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

func (s *Server) stateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, ok := s.media.State().Get()
		if !ok {
			writeProblem(w, r, http.StatusConflict, "No active media session")
			return
		}

		out := projection.NewState(st, s.now())
		if s.volume.Available() {
			if v, err := s.volume.Snapshot(r.Context()); err == nil {
				out = out.WithVolume(v)
			} else {
				log.WithFields(log.Fields{"module": "http", "action": "state"}).WithError(err).Warn("volume unavailable")
			}
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) commandHandler(run func(context.Context)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run(r.Context())
		writeJSON(w, http.StatusOK, projection.Acknowledged)
	}
}

type stepRequest struct {
	Delta float64 `json:"delta"`
}

type setRequest struct {
	Level float64 `json:"level"`
}

func (s *Server) volumeStepHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req stepRequest
		if err := decode(r, &req); err != nil {
			writeDecodeError(w, r, err)
			return
		}

		if err := s.volume.Step(r.Context(), req.Delta); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, projection.Acknowledged)
	}
}

func (s *Server) volumeSetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req setRequest
		if err := decode(r, &req); err != nil {
			writeDecodeError(w, r, err)
			return
		}

		if err := s.volume.Set(r.Context(), req.Level); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, projection.Acknowledged)
	}
}

func (s *Server) volumeMuteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.volume.ToggleMute(r.Context()); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, projection.Acknowledged)
	}
}

func (s *Server) albumArtHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		art, ok := s.media.AlbumArt(r.Context())
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		h := w.Header()
		h.Set("Content-Type", art.ContentType)
		h.Set("Content-Length", strconv.Itoa(len(art.Data)))
		h.Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(art.Data)
	}
}

func (s *Server) telegramHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.telegram == nil {
			writeProblem(w, r, http.StatusServiceUnavailable, "Telegram is not configured")
			return
		}

		expected := s.telegram.Secret()
		if expected == "" || expected != r.PathValue("secret") {
			log.WithFields(log.Fields{"module": "telegram", "action": "webhook"}).Warn("invalid webhook secret")
			writeProblem(w, r, http.StatusForbidden, "Invalid webhook secret")
			return
		}

		if mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err != nil || mt != "application/json" {
			writeProblem(w, r, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeDecodeError(w, r, err)
			return
		}

		if err := s.telegram.HandleUpdate(r.Context(), body); err != nil {
			writeProblem(w, r, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, projection.Acknowledged)
	}
}
