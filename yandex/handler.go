// Package yandex exposes the player as one media device to the Yandex smart home
// platform: power maps to play/pause, plus a volume range and a mute toggle.
package yandex

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"strings"

	"github.com/Ducheved/sharpmote/auth"
	"github.com/Ducheved/sharpmote/constant"
	"github.com/Ducheved/sharpmote/log"
	"github.com/Ducheved/sharpmote/media"
	"github.com/Ducheved/sharpmote/util"
	"github.com/Ducheved/sharpmote/volume"
	"github.com/google/uuid"
	"github.com/samber/mo"
)

const (
	// Prefix is where the handler expects to be mounted.
	Prefix = "/yandex/v1.0"

	DeviceID = "sharpmote.media"
	userID   = "sharpmote"
)

// Media is the part of the media engine the handler drives.
type Media interface {
	State() mo.Option[media.State]
	Play(ctx context.Context)
	Pause(ctx context.Context)
}

// Volume is the part of the volume engine the handler drives.
type Volume interface {
	Snapshot(ctx context.Context) (volume.State, error)
	Set(ctx context.Context, level float64) error
	Step(ctx context.Context, delta float64) error
	ToggleMute(ctx context.Context) error
}

// Handler serves the provider endpoints.
type Handler struct {
	token  func() string
	media  Media
	volume Volume
	mux    *http.ServeMux
}

// New creates a handler. token resolves the expected bearer token per request;
// an empty token rejects every request.
func New(token func() string, m Media, v Volume) *Handler {
	h := &Handler{token: token, media: m, volume: v, mux: http.NewServeMux()}

	h.mux.HandleFunc("HEAD "+Prefix, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h.mux.HandleFunc("POST "+Prefix+"/user/devices", h.authorized(h.devices))
	h.mux.HandleFunc("POST "+Prefix+"/user/devices/query", h.authorized(h.query))
	h.mux.HandleFunc("POST "+Prefix+"/user/devices/action", h.authorized(h.action))
	h.mux.HandleFunc("POST "+Prefix+"/user/unlink", h.authorized(h.unlink))

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) authorized(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		expected := h.token()
		provided, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if expected == "" || !ok || !auth.Equal(expected, provided) {
			log.WithFields(log.Fields{"module": "yandex", "path": r.URL.Path}).Warn("unauthorized")
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// requestID echoes the platform's X-Request-Id and falls back to a fresh id.
func requestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-Id"); id != "" {
		return id
	}
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func reply(w http.ResponseWriter, r *http.Request, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(Response{RequestID: requestID(r), Payload: payload})
}

// Describe returns the single device this bridge exposes.
func Describe() Device {
	return Device{
		ID:   DeviceID,
		Name: "Sharpmote",
		Type: DeviceType,
		Capabilities: []Capability{
			{Type: OnOff, Retrievable: true},
			{
				Type:        Range,
				Retrievable: true,
				Parameters: &Parameters{
					Instance: InstanceVolume,
					Unit:     UnitPercent,
					Range:    &Interval{Min: 0, Max: 100, Precision: 5},
				},
			},
			{Type: Toggle, Retrievable: true, Parameters: &Parameters{Instance: InstanceMute}},
		},
		DeviceInfo: &DeviceInfo{
			Manufacturer: constant.Sharpmote,
			Model:        runtime.GOOS,
			SWVersion:    constant.Version,
		},
	}
}

func (h *Handler) devices(w http.ResponseWriter, r *http.Request) {
	reply(w, r, DevicesPayload{UserID: userID, Devices: []Device{Describe()}})
}

func (h *Handler) query(w http.ResponseWriter, r *http.Request) {
	playing := false
	if st, ok := h.media.State().Get(); ok {
		playing = st.Status == media.Playing
	}

	state := DeviceState{
		ID: DeviceID,
		Capabilities: []CapabilityState{
			{Type: OnOff, State: State{Instance: InstanceOn, Value: playing}},
		},
	}

	if v, err := h.volume.Snapshot(r.Context()); err == nil {
		state.Capabilities = append(state.Capabilities,
			CapabilityState{Type: Range, State: State{Instance: InstanceVolume, Value: util.Percent(v.Level)}},
			CapabilityState{Type: Toggle, State: State{Instance: InstanceMute, Value: v.Muted}},
		)
	} else {
		log.WithFields(log.Fields{"module": "yandex", "action": "query"}).WithError(err).Debug("volume omitted")
	}

	reply(w, r, StatesPayload{Devices: []DeviceState{state}})
}

func (h *Handler) action(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	results := make([]DeviceState, 0, len(req.Payload.Devices))

	for _, dev := range req.Payload.Devices {
		if dev.ID != DeviceID {
			results = append(results, DeviceState{
				ID:           dev.ID,
				ActionResult: &ActionResult{Status: StatusError, ErrorCode: ErrDeviceNotFound},
			})
			continue
		}

		out := DeviceState{ID: dev.ID}
		for _, c := range dev.Capabilities {
			result := h.apply(ctx, c.Type, c.State.Instance, c.State.Value, c.State.Relative)
			log.WithFields(log.Fields{"module": "yandex", "capability": c.Type, "instance": c.State.Instance, "status": result.Status}).Info("action")

			out.Capabilities = append(out.Capabilities, CapabilityState{
				Type:  c.Type,
				State: State{Instance: c.State.Instance, ActionResult: &result},
			})
		}
		results = append(results, out)
	}

	reply(w, r, StatesPayload{Devices: results})
}

func (h *Handler) apply(ctx context.Context, capability, instance string, raw json.RawMessage, relative bool) ActionResult {
	switch {
	case capability == OnOff:
		var on bool
		if err := json.Unmarshal(raw, &on); err != nil {
			return invalid(err)
		}
		if on {
			h.media.Play(ctx)
		} else {
			h.media.Pause(ctx)
		}
		return ActionResult{Status: StatusDone}

	case capability == Range && instance == InstanceVolume:
		var value float64
		if err := json.Unmarshal(raw, &value); err != nil {
			return invalid(err)
		}
		if relative {
			return outcome(h.volume.Step(ctx, value/100))
		}
		return outcome(h.volume.Set(ctx, util.Clamp(value/100, 0, 1)))

	case capability == Toggle && instance == InstanceMute:
		var muted bool
		if err := json.Unmarshal(raw, &muted); err != nil {
			return invalid(err)
		}
		current, err := h.volume.Snapshot(ctx)
		if err != nil {
			return outcome(err)
		}
		if current.Muted == muted {
			return ActionResult{Status: StatusDone}
		}
		return outcome(h.volume.ToggleMute(ctx))

	default:
		return ActionResult{Status: StatusError, ErrorCode: ErrNotSupported}
	}
}

func invalid(err error) ActionResult {
	return ActionResult{Status: StatusError, ErrorCode: ErrInvalidValue, ErrorMessage: err.Error()}
}

func outcome(err error) ActionResult {
	switch {
	case err == nil:
		return ActionResult{Status: StatusDone}
	case errors.Is(err, volume.ErrNoDevice):
		return ActionResult{Status: StatusError, ErrorCode: ErrDeviceUnreachable, ErrorMessage: err.Error()}
	default:
		return ActionResult{Status: StatusError, ErrorCode: ErrInternal, ErrorMessage: err.Error()}
	}
}

func (h *Handler) unlink(w http.ResponseWriter, r *http.Request) {
	log.WithFields(log.Fields{"module": "yandex", "action": "unlink"}).Info("account unlinked")
	reply(w, r, nil)
}
