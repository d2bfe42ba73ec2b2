package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/Ducheved/sharpmote/projection"
	. "github.com/smartystreets/goconvey/convey"
)

type call struct {
	method, path, key, body string
}

type fakeServer struct {
	mu    sync.Mutex
	calls []call
	reply func(w http.ResponseWriter, r *http.Request)
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.calls = append(f.calls, call{r.Method, r.URL.Path, r.Header.Get("X-Api-Key"), string(body)})
	f.mu.Unlock()

	if f.reply != nil {
		f.reply(w, r)
		return
	}
	_ = json.NewEncoder(w).Encode(projection.Acknowledged)
}

func (f *fakeServer) last() call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func TestClient(t *testing.T) {
	Convey("Given a server", t, func() {
		fake := &fakeServer{}
		srv := httptest.NewServer(fake)
		defer srv.Close()

		c := New(srv.URL+"/", "k")
		ctx := context.Background()

		Convey("commands are posted with the key", func() {
			So(c.Command(ctx, "next"), ShouldBeNil)
			So(fake.last(), ShouldResemble, call{http.MethodPost, "/api/v1/next", "k", ""})
		})

		Convey("unknown commands are rejected locally", func() {
			So(c.Command(ctx, "rewind"), ShouldNotBeNil)
			So(fake.calls, ShouldBeEmpty)
		})

		Convey("volume calls carry a JSON body", func() {
			So(c.SetVolume(ctx, 0.25), ShouldBeNil)
			So(fake.last().body, ShouldEqual, `{"level":0.25}`)

			So(c.StepVolume(ctx, -0.05), ShouldBeNil)
			So(fake.last().body, ShouldEqual, `{"delta":-0.05}`)

			So(c.ToggleMute(ctx), ShouldBeNil)
			So(fake.last().path, ShouldEqual, "/api/v1/volume/mute")
		})

		Convey("state is decoded", func() {
			fake.reply = func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"playback":"Playing","title":"Song","position_ms":1000,"duration_ms":2000,"volume":0.5}`))
			}
			st, err := c.State(ctx)
			So(err, ShouldBeNil)
			So(st.Playback, ShouldEqual, "Playing")
			So(st.Title, ShouldEqual, "Song")
			So(*st.Volume, ShouldEqual, 0.5)
		})

		Convey("problems become errors", func() {
			fake.reply = func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/problem+json")
				w.WriteHeader(http.StatusConflict)
				_ = json.NewEncoder(w).Encode(projection.NewProblem(http.StatusConflict, "No active media session", r.URL.Path))
			}
			_, err := c.State(ctx)

			var apiErr *Error
			So(err, ShouldHaveSameTypeAs, apiErr)
			apiErr = err.(*Error)
			So(apiErr.Status, ShouldEqual, http.StatusConflict)
			So(apiErr.Error(), ShouldContainSubstring, "No active media session")
		})

		Convey("history is decoded", func() {
			fake.reply = func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`[{"title":"b"},{"title":"a"}]`))
			}
			entries, err := c.History(ctx)
			So(err, ShouldBeNil)
			So(entries, ShouldHaveLength, 2)
			So(entries[0].Title, ShouldEqual, "b")
		})

		Convey("health needs no body", func() {
			So(c.Health(ctx), ShouldBeNil)
			So(fake.last().path, ShouldEqual, "/healthz")
		})
	})
}
