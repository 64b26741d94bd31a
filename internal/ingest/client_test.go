package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/stayreport/internal/utils"
)

func fastBackoff(retries int) utils.Backoff { return utils.NewBackoff(time.Millisecond, retries) }

func TestFetch_Retries500(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := Fetch(context.Background(), NewHTTPClient(2*time.Second, true), srv.URL, fastBackoff(2), 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetch_DoesNotRetry404(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := Fetch(context.Background(), NewHTTPClient(2*time.Second, true), srv.URL, fastBackoff(3), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := Fetch(context.Background(), NewHTTPClient(50*time.Millisecond, true), srv.URL, fastBackoff(0), 0)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestFetch_RecoversAfterFailure(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := Fetch(context.Background(), NewHTTPClient(2*time.Second, true), srv.URL, fastBackoff(2), 0)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
}

func TestFetch_SizeLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 64))
	}))
	defer srv.Close()

	_, err := Fetch(context.Background(), NewHTTPClient(2*time.Second, true), srv.URL, fastBackoff(2), 16)
	assert.ErrorContains(t, err, "larger than 16 bytes")
}

func TestFetch_RejectsNonHTTP(t *testing.T) {
	for _, u := range []string{"file:///etc/passwd", "", "http://"} {
		_, err := Fetch(context.Background(), NewHTTPClient(time.Second, true), u, fastBackoff(0), 0)
		assert.ErrorIs(t, err, ErrInvalidSourceURL, u)
	}
}

func TestFetch_ErrorOmitsUpstreamBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("INTERNAL-TOKEN=abc123"))
	}))
	defer srv.Close()

	_, err := Fetch(context.Background(), NewHTTPClient(2*time.Second, true), srv.URL, fastBackoff(0), 0)
	require.ErrorIs(t, err, ErrSourceUnavailable)
	assert.Contains(t, err.Error(), "403")
	assert.NotContains(t, err.Error(), "INTERNAL-TOKEN")
}

func TestFetch_RefusesPrivateAddress(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	_, err := Fetch(context.Background(), NewHTTPClient(2*time.Second, false), srv.URL, fastBackoff(3), 0)
	require.ErrorIs(t, err, ErrPrivateAddress)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestPublicOnly(t *testing.T) {
	for _, addr := range []string{"127.0.0.1:80", "10.1.2.3:443", "192.168.0.10:80", "169.254.169.254:80", "[::1]:80", "0.0.0.0:80"} {
		assert.ErrorIs(t, publicOnly("tcp", addr, nil), ErrPrivateAddress, addr)
	}
	assert.NoError(t, publicOnly("tcp", "93.184.216.34:443", nil))
}
