package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeStatus(t *testing.T, w *httptest.ResponseRecorder) (string, map[string]string) {
	t.Helper()
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body.Status, body.Checks
}

func TestLiveEndpoint_Healthy(t *testing.T) {
	h := New()
	h.AddLivenessCheck("always-ok", time.Second, func(context.Context) error { return nil })

	w := httptest.NewRecorder()
	h.LiveEndpoint(w, httptest.NewRequest(http.MethodGet, "/livez", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	status, _ := decodeStatus(t, w)
	assert.Equal(t, "ok", status)
}

func TestFailureThreshold(t *testing.T) {
	h := New()
	boom := func(context.Context) error { return errors.New("connection refused") }
	h.AddLivenessCheck("flaky", time.Second, boom)

	c := h.liveness[0]
	ctx := context.Background()

	// Two failures are tolerated.
	c.run(ctx)
	c.run(ctx)
	_, failed := c.failure()
	assert.False(t, failed)

	// The third consecutive failure flips the check.
	c.run(ctx)
	msg, failed := c.failure()
	assert.True(t, failed)
	assert.Contains(t, msg, "connection refused")

	w := httptest.NewRecorder()
	h.LiveEndpoint(w, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	status, checks := decodeStatus(t, w)
	assert.Equal(t, "unhealthy", status)
	assert.Contains(t, checks, "flaky")
}

func TestRecoversOnFirstSuccess(t *testing.T) {
	h := New()
	var fail bool
	h.AddReadinessCheck("db", time.Second, func(context.Context) error {
		if fail {
			return errors.New("down")
		}
		return nil
	})

	c := h.readiness[0]
	ctx := context.Background()

	fail = true
	for i := 0; i < failureThreshold; i++ {
		c.run(ctx)
	}
	_, failed := c.failure()
	require.True(t, failed)

	fail = false
	c.run(ctx)
	_, failed = c.failure()
	assert.False(t, failed)
}

func TestReadyEndpoint_NotReadyUntilSet(t *testing.T) {
	h := New()

	w := httptest.NewRecorder()
	h.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	_, checks := decodeStatus(t, w)
	assert.Contains(t, checks, "_readiness")

	h.SetReady(true)
	w = httptest.NewRecorder()
	h.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, h.IsReady())

	h.SetReady(false)
	assert.False(t, h.IsReady())
}

func TestStartRunsChecks(t *testing.T) {
	h := New()
	ran := make(chan struct{}, 1)
	h.AddReadinessCheck("signal", time.Second, func(context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.Start(ctx, 10*time.Millisecond)
	defer h.Stop()

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("check did not run")
	}
}

func TestGoroutineCountCheck(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(1_000_000)(context.Background()))
	assert.Error(t, GoroutineCountCheck(0)(context.Background()))
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestPingCheck(t *testing.T) {
	assert.NoError(t, PingCheck(fakePinger{})(context.Background()))
	assert.Error(t, PingCheck(fakePinger{err: errors.New("refused")})(context.Background()))
}
