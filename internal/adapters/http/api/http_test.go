package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/vigil/internal/adapters/http/api"
	"github.com/okian/vigil/internal/adapters/repository"
	"github.com/okian/vigil/internal/app"
	"github.com/okian/vigil/internal/domain/engine"
	"github.com/okian/vigil/internal/domain/model"
)

// fakeDeps is a controllable implementation of the handler dependencies.
type fakeDeps struct {
	seen       map[string]bool
	unrecorded []string
	ingested   []model.Frame
	ingestOK   bool
	statuses   map[string]repository.Observation
	alerts     []repository.Alert
	resettable map[string]bool
}

func newFakeDeps() *fakeDeps {
	return &fakeDeps{
		seen:       map[string]bool{},
		ingestOK:   true,
		statuses:   map[string]repository.Observation{},
		resettable: map[string]bool{},
	}
}

func (f *fakeDeps) SeenAndRecord(ctx context.Context, id string) bool {
	if f.seen[id] {
		return true
	}
	f.seen[id] = true
	return false
}

func (f *fakeDeps) Unrecord(ctx context.Context, id string) {
	delete(f.seen, id)
	f.unrecorded = append(f.unrecorded, id)
}

func (f *fakeDeps) Ingest(ctx context.Context, fr model.Frame) bool {
	if !f.ingestOK {
		return false
	}
	f.ingested = append(f.ingested, fr)
	return true
}

func (f *fakeDeps) Status(ctx context.Context, streamID string) (repository.Observation, error) {
	obs, ok := f.statuses[streamID]
	if !ok {
		return repository.Observation{}, repository.ErrUnknownStream
	}
	return obs, nil
}

func (f *fakeDeps) Alerts(ctx context.Context, n int) ([]repository.Alert, error) {
	if n < 1 {
		return nil, repository.ErrInvalidLimit
	}
	if n > len(f.alerts) {
		n = len(f.alerts)
	}
	return f.alerts[:n], nil
}

func (f *fakeDeps) Streams(ctx context.Context) []string {
	out := make([]string, 0, len(f.statuses))
	for id := range f.statuses {
		out = append(out, id)
	}
	return out
}

func (f *fakeDeps) ResetStream(ctx context.Context, streamID string) bool {
	return f.resettable[streamID]
}

func (f *fakeDeps) GetStats(ctx context.Context) app.Stats {
	return app.Stats{QueueSize: 1, MonitorCount: 2, StreamCount: len(f.statuses)}
}

func newTestMux(deps *fakeDeps) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, deps, 1000).Register(context.Background(), mux)
	return mux
}

const validFrame = `{
	"frame_id": "f-1",
	"stream_id": "cam-1",
	"ts": "2024-01-01T12:00:00Z",
	"person_present": true,
	"landmarks": {
		"nose": {"x": 0.5, "y": 0.1, "visibility": 1},
		"left_hip": {"x": 0.46, "y": 0.5, "visibility": 1},
		"right_hip": {"x": 0.54, "y": 0.5, "visibility": 1}
	}
}`

func TestFramesEndpoint(t *testing.T) {
	Convey("Given the frames endpoint", t, func() {
		deps := newFakeDeps()
		mux := newTestMux(deps)

		post := func(body string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodPost, "/frames", strings.NewReader(body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			return w
		}

		Convey("When posting a valid frame", func() {
			w := post(validFrame)

			Convey("Then it is accepted", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				So(deps.ingested, ShouldHaveLength, 1)
				So(deps.ingested[0].StreamID, ShouldEqual, "cam-1")
				So(deps.ingested[0].PersonPresent, ShouldBeTrue)
				So(deps.ingested[0].Snapshot, ShouldNotBeNil)
			})
		})

		Convey("When posting the same frame twice", func() {
			post(validFrame)
			w := post(validFrame)

			Convey("Then the second is flagged duplicate", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var ack map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &ack), ShouldBeNil)
				So(ack["duplicate"], ShouldBeTrue)
				So(deps.ingested, ShouldHaveLength, 1)
			})
		})

		Convey("When the queue is full", func() {
			deps.ingestOK = false
			w := post(validFrame)

			Convey("Then it returns 429 and rolls back the idempotency record", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
				So(deps.unrecorded, ShouldResemble, []string{"f-1"})
			})
		})

		Convey("When posting malformed JSON", func() {
			w := post(`{not json`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When required fields are missing", func() {
			w := post(`{"stream_id": "cam-1"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)

			w = post(`{"frame_id": "f-1"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When person_present has no landmarks", func() {
			w := post(`{"frame_id": "f-1", "stream_id": "cam-1", "person_present": true}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the timestamp is not RFC3339", func() {
			w := post(`{"frame_id": "f-1", "stream_id": "cam-1", "ts": "yesterday"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When using the wrong method", func() {
			req := httptest.NewRequest(http.MethodGet, "/frames", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestStatusEndpoint(t *testing.T) {
	Convey("Given the status endpoint", t, func() {
		deps := newFakeDeps()
		deps.statuses["cam-1"] = repository.Observation{
			StreamID: "cam-1",
			Result:   engine.PersonDown,
		}
		mux := newTestMux(deps)

		get := func(path string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			return w
		}

		Convey("When the stream exists", func() {
			w := get("/status/cam-1")
			So(w.Code, ShouldEqual, http.StatusOK)

			var obs repository.Observation
			So(json.Unmarshal(w.Body.Bytes(), &obs), ShouldBeNil)
			So(obs.StreamID, ShouldEqual, "cam-1")
		})

		Convey("When the stream is unknown", func() {
			w := get("/status/cam-ghost")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the stream ID is malformed", func() {
			So(get("/status/").Code, ShouldEqual, http.StatusBadRequest)
			So(get("/status/a/b").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When listing streams", func() {
			w := get("/streams")
			So(w.Code, ShouldEqual, http.StatusOK)

			var body map[string][]string
			So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
			So(body["streams"], ShouldResemble, []string{"cam-1"})
		})
	})
}

func TestAlertsEndpoint(t *testing.T) {
	Convey("Given the alerts endpoint", t, func() {
		deps := newFakeDeps()
		deps.alerts = []repository.Alert{
			{ID: "a-1", StreamID: "cam-1", Result: engine.FallDetected, Reason: engine.ReasonSuddenFall},
			{ID: "a-2", StreamID: "cam-1", Result: engine.PersonDown, Reason: engine.ReasonStayedDown},
		}
		mux := newTestMux(deps)

		get := func(path string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			return w
		}

		Convey("When fetching with the default limit", func() {
			w := get("/alerts")
			So(w.Code, ShouldEqual, http.StatusOK)

			var body struct {
				Alerts []repository.Alert `json:"alerts"`
				Count  int                `json:"count"`
			}
			So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
			So(body.Count, ShouldEqual, 2)
			So(body.Alerts[0].ID, ShouldEqual, "a-1")
		})

		Convey("When fetching with an explicit limit", func() {
			w := get("/alerts?limit=1")
			So(w.Code, ShouldEqual, http.StatusOK)

			var body struct {
				Count int `json:"count"`
			}
			So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
			So(body.Count, ShouldEqual, 1)
		})

		Convey("When the limit is invalid", func() {
			So(get("/alerts?limit=abc").Code, ShouldEqual, http.StatusBadRequest)
			So(get("/alerts?limit=0").Code, ShouldEqual, http.StatusBadRequest)
			So(get("/alerts?limit=-3").Code, ShouldEqual, http.StatusBadRequest)
			So(get("/alerts?limit=5000").Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestResetEndpoint(t *testing.T) {
	Convey("Given the reset endpoint", t, func() {
		deps := newFakeDeps()
		deps.resettable["cam-1"] = true
		mux := newTestMux(deps)

		post := func(path string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodPost, path, nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			return w
		}

		Convey("When resetting a known stream", func() {
			So(post("/reset/cam-1").Code, ShouldEqual, http.StatusOK)
		})

		Convey("When resetting an unknown stream", func() {
			So(post("/reset/cam-ghost").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the path is malformed", func() {
			So(post("/reset/").Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestStatsEndpoint(t *testing.T) {
	Convey("Given the stats endpoint", t, func() {
		deps := newFakeDeps()
		mux := newTestMux(deps)

		req := httptest.NewRequest(http.MethodGet, "/stats", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		Convey("Then it returns the service counters", func() {
			So(w.Code, ShouldEqual, http.StatusOK)

			var stats app.Stats
			So(json.Unmarshal(w.Body.Bytes(), &stats), ShouldBeNil)
			So(stats.QueueSize, ShouldEqual, 1)
			So(stats.MonitorCount, ShouldEqual, 2)
		})
	})
}

func TestHealthEndpoint(t *testing.T) {
	Convey("Given the health endpoint", t, func() {
		deps := newFakeDeps()
		mux := newTestMux(deps)

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		Convey("Then it serves the metrics registry", func() {
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "vigil_")
		})
	})
}
