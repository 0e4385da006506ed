package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-song-sync/pkg/songsync"
	"github.com/tendant/simple-song-sync/pkg/songsync/api"
)

type stubHandler struct {
	received []events.S3Event
	ids      []string
	err      error
}

func (s *stubHandler) HandleEvent(ctx context.Context, event events.S3Event) (string, error) {
	s.received = append(s.received, event)
	s.ids = append(s.ids, songsync.InvocationID(ctx))
	if s.err != nil {
		return "", s.err
	}
	return songsync.MessageSuccess, nil
}

const createdEvent = `{"Records":[{"eventName":"s3:ObjectCreated:Put","s3":{"bucket":{"name":"music"},"object":{"key":"Song+Title.mp3"}}}]}`

func post(t *testing.T, h http.Handler, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestPostEvent_Success(t *testing.T) {
	stub := &stubHandler{}
	router := api.NewEventsHandler(stub, api.Options{}).Router()

	rr := post(t, router, createdEvent, nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Successful.", decode(t, rr)["message"])
	require.Len(t, stub.received, 1)
	assert.Equal(t, "music", stub.received[0].Records[0].S3.Bucket.Name)
	assert.Equal(t, "Song+Title.mp3", stub.received[0].Records[0].S3.Object.Key)
	assert.NotEmpty(t, stub.ids[0], "request id should be propagated as invocation id")
}

func TestPostEvent_MinIOPayload(t *testing.T) {
	body := `{
  "EventName": "s3:ObjectCreated:Put",
  "Key": "music/Song+Title.mp3",
  "Records": [{
    "eventVersion": "2.0",
    "eventSource": "minio:s3",
    "eventTime": "2026-10-19T10:00:00.000Z",
    "eventName": "s3:ObjectCreated:Put",
    "userIdentity": {"principalId": "minioadmin"},
    "s3": {
      "s3SchemaVersion": "1.0",
      "configurationId": "Config",
      "bucket": {"name": "music", "ownerIdentity": {"principalId": "minioadmin"}, "arn": "arn:aws:s3:::music"},
      "object": {"key": "Song+Title.mp3", "size": 4170, "eTag": "abc", "contentType": "audio/mpeg", "sequencer": "1"}
    }
  }]
}`
	stub := &stubHandler{}
	router := api.NewEventsHandler(stub, api.Options{}).Router()

	rr := post(t, router, body, nil)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, stub.received, 1)
	rec := stub.received[0].Records[0]
	assert.Equal(t, "s3:ObjectCreated:Put", rec.EventName)
	assert.Equal(t, "music", rec.S3.Bucket.Name)
	assert.Equal(t, "Song+Title.mp3", rec.S3.Object.Key)
	assert.Equal(t, int64(4170), rec.S3.Object.Size)
}

func TestPostEvent_InvalidBody(t *testing.T) {
	stub := &stubHandler{}
	router := api.NewEventsHandler(stub, api.Options{}).Router()

	rr := post(t, router, "{not json", nil)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, stub.received)
}

func TestPostEvent_ErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"no records", songsync.ErrNoRecords, http.StatusBadRequest},
		{"unsupported media", &songsync.MediaTypeError{Key: "a.flac", Extension: "flac"}, http.StatusBadRequest},
		{"unknown media", &songsync.MediaTypeError{Key: "a", NoExtension: true}, http.StatusBadRequest},
		{"unsupported event", &songsync.EventTypeError{EventName: "s3:ObjectAccessed:Get"}, http.StatusBadRequest},
		{"invalid key", fmt.Errorf("%w: bad", songsync.ErrInvalidObjectKey), http.StatusBadRequest},
		{"fetch", &songsync.FetchError{Bucket: "b", Key: "k", Err: songsync.ErrObjectNotFound}, http.StatusBadGateway},
		{"tags", &songsync.TagParseError{Key: "k", Err: fmt.Errorf("truncated")}, http.StatusUnprocessableEntity},
		{"other", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := api.NewEventsHandler(&stubHandler{err: tt.err}, api.Options{}).Router()

			rr := post(t, router, createdEvent, nil)

			assert.Equal(t, tt.want, rr.Code)
			assert.Equal(t, tt.err.Error(), decode(t, rr)["error"])
		})
	}
}

func TestPostEvent_Token(t *testing.T) {
	stub := &stubHandler{}
	router := api.NewEventsHandler(stub, api.Options{Token: "s3cret"}).Router()

	rr := post(t, router, createdEvent, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = post(t, router, createdEvent, map[string]string{"Authorization": "Bearer wrong"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Empty(t, stub.received)

	rr = post(t, router, createdEvent, map[string]string{"Authorization": "Bearer s3cret"})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, stub.received, 1)
}

func TestHealth(t *testing.T) {
	router := api.NewEventsHandler(&stubHandler{}, api.Options{Token: "s3cret"}).Router()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decode(t, rr)["status"])
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "songsync_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	router := api.NewEventsHandler(&stubHandler{}, api.Options{Gatherer: reg}).Router()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "songsync_test_total 1")
}

func TestMetrics_Disabled(t *testing.T) {
	router := api.NewEventsHandler(&stubHandler{}, api.Options{}).Router()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
