package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsphweid/beatdex/dataset"
	"github.com/jsphweid/beatdex/jams"
	"github.com/jsphweid/beatdex/logging"
	"github.com/jsphweid/beatdex/model"
	"github.com/jsphweid/beatdex/rwcclassical"
)

func newTestServer(t *testing.T, home string, reloadDelay time.Duration) *Server {
	t.Helper()
	ds, err := dataset.Get(rwcclassical.Name)
	require.NoError(t, err)
	s := NewServer(logging.New(io.Discard, "error", "text"), reloadDelay)
	require.NoError(t, s.Add(ds, home))
	return s
}

func get(t *testing.T, h http.Handler, path string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	resp := w.Result()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func TestServeDatasetsAndTracks(t *testing.T) {
	h := newTestServer(t, dataHome, time.Millisecond).Router()

	status, body := get(t, h, "/datasets")
	assert.Equal(t, http.StatusOK, status)
	var datasets model.DatasetsResponse
	require.NoError(t, json.Unmarshal(body, &datasets))
	assert.Equal(t, []string{"RWC-Classical"}, datasets.Datasets)

	status, body = get(t, h, "/datasets/RWC-Classical/tracks")
	assert.Equal(t, http.StatusOK, status)
	var tracks model.TracksResponse
	require.NoError(t, json.Unmarshal(body, &tracks))
	assert.Equal(t, []string{"RM-C003", "RM-C010", "RM-C025"}, tracks.TrackIDs)

	status, _ = get(t, h, "/datasets/MSD/tracks")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestServeTrack(t *testing.T) {
	h := newTestServer(t, dataHome, time.Millisecond).Router()

	status, body := get(t, h, "/datasets/RWC-Classical/tracks/RM-C003")
	assert.Equal(t, http.StatusOK, status)
	var summary model.TrackSummary
	require.NoError(t, json.Unmarshal(body, &summary))
	assert.Equal(t, "Beethoven, Ludwig van", summary.Metadata.Composer)

	status, body = get(t, h, "/datasets/RWC-Classical/tracks/RM-C999")
	assert.Equal(t, http.StatusNotFound, status)
	var errResp model.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, "unknown track RM-C999", errResp.Error)
}

func TestServeBeats(t *testing.T) {
	h := newTestServer(t, dataHome, time.Millisecond).Router()

	status, body := get(t, h, "/datasets/RWC-Classical/tracks/RM-C003/beats")
	assert.Equal(t, http.StatusOK, status)
	var beats model.BeatsResponse
	require.NoError(t, json.Unmarshal(body, &beats))
	assert.Equal(t, []int{2, 1, 2, 1, 2, 1, 2, 1}, beats.Positions)
	assert.Equal(t, 1.65, beats.Times[0])
	assert.Equal(t, 2, beats.Meter)

	status, body = get(t, h, "/datasets/RWC-Classical/tracks/RM-C025/beats")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, string(body), "no beat annotation for RM-C025")
}

func TestServeSectionsAndJAMS(t *testing.T) {
	h := newTestServer(t, dataHome, time.Millisecond).Router()

	status, body := get(t, h, "/datasets/RWC-Classical/tracks/RM-C003/sections")
	assert.Equal(t, http.StatusOK, status)
	var sections model.SectionsResponse
	require.NoError(t, json.Unmarshal(body, &sections))
	assert.Equal(t, model.Section{Start: 419.96, End: 433.71, Label: "ending"}, sections.Sections[1])

	status, _ = get(t, h, "/datasets/RWC-Classical/tracks/RM-C010/sections")
	assert.Equal(t, http.StatusNotFound, status)

	status, body = get(t, h, "/datasets/RWC-Classical/tracks/RM-C003/jams")
	assert.Equal(t, http.StatusOK, status)
	j, err := jams.Decode(bytes.NewReader(body))
	require.NoError(t, err)
	assert.Len(t, j.Annotations, 2)
}

func TestServeReloadIsDebounced(t *testing.T) {
	home := t.TempDir()
	beatsDir := filepath.Join(home, "annotations", "AIST.RWC-MDB-C-2001.BEAT")
	require.NoError(t, os.MkdirAll(beatsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(beatsDir, "RM-C001.BEAT.TXT"), []byte("100\t150\t48\n"), 0o644))

	h := newTestServer(t, home, 20*time.Millisecond).Router()

	listing := func() []string {
		_, body := get(t, h, "/datasets/RWC-Classical/tracks")
		var tracks model.TracksResponse
		require.NoError(t, json.Unmarshal(body, &tracks))
		return tracks.TrackIDs
	}
	assert.Equal(t, []string{"RM-C001"}, listing())

	require.NoError(t, os.WriteFile(filepath.Join(beatsDir, "RM-C002.BEAT.TXT"), []byte("100\t150\t48\n"), 0o644))
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/datasets/RWC-Classical/reload", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusAccepted, w.Code)
	}

	assert.Eventually(t, func() bool {
		return len(listing()) == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestServeHandlerCORSAndRequestID(t *testing.T) {
	h := newTestServer(t, dataHome, time.Millisecond).Handler([]string{"http://localhost:3000"})

	req := httptest.NewRequest(http.MethodGet, "/datasets", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, w.Header().Get(logging.RequestIDHeader))
}

type brokenWriter struct {
	header http.Header
}

func (w *brokenWriter) Header() http.Header       { return w.header }
func (w *brokenWriter) WriteHeader(int)           {}
func (w *brokenWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestServeLogsWriteFailures(t *testing.T) {
	ds, err := dataset.Get(rwcclassical.Name)
	require.NoError(t, err)
	var logs bytes.Buffer
	s := NewServer(logging.New(&logs, "error", "text"), time.Millisecond)
	require.NoError(t, s.Add(ds, dataHome))
	h := s.Router()

	for _, path := range []string{
		"/datasets",
		"/datasets/RWC-Classical/tracks/RM-C003/jams",
	} {
		h.ServeHTTP(&brokenWriter{header: http.Header{}}, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Contains(t, logs.String(), "could not write response")
	assert.Contains(t, logs.String(), "could not write jams")
	assert.Contains(t, logs.String(), "track_id=RM-C003")
}
