package metrics_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-song-sync/pkg/songsync"
	"github.com/tendant/simple-song-sync/pkg/songsync/metrics"
)

func TestSink(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := metrics.New(reg)
	require.NoError(t, err)

	ctx := context.Background()
	created := songsync.NotificationRecord{Kind: songsync.EventCreated, Bucket: "music", Key: "a.mp3"}
	sink.EventHandled(ctx, created, songsync.OutcomeSynced)
	sink.EventHandled(ctx, created, songsync.OutcomeSynced)
	sink.EventHandled(ctx, songsync.NotificationRecord{Kind: songsync.EventOther}, songsync.OutcomeRejected)
	sink.NotifyCompleted(ctx, http.MethodPost, 120*time.Millisecond, nil)
	sink.NotifyCompleted(ctx, http.MethodDelete, time.Second, errors.New("boom"))

	expected := `
# HELP songsync_events_total Storage notifications handled, by event kind and outcome
# TYPE songsync_events_total counter
songsync_events_total{kind="created",outcome="synced"} 2
songsync_events_total{kind="other",outcome="rejected"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "songsync_events_total"))

	count, err := testutil.GatherAndCount(reg, "songsync_library_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := metrics.New(reg)
	require.NoError(t, err)

	_, err = metrics.New(reg)
	assert.Error(t, err)
}
