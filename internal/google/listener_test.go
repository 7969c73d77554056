package google

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// freePort grabs an ephemeral port and releases it for the listener.
func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func TestRedirectListenerServesCallbackPage(t *testing.T) {
	port := freePort(t)
	l := NewRedirectListener(fmt.Sprintf("http://localhost:%d/oauth2callback", port), nil)
	require.NoError(t, l.EnsureStarted())
	defer l.Close()

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/oauth2callback?code=XYZ", port))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "XYZ", "confirmation page embeds the code")
}

func TestRedirectListenerPathMismatch(t *testing.T) {
	port := freePort(t)
	l := NewRedirectListener(fmt.Sprintf("http://localhost:%d/oauth2callback", port), nil)
	require.NoError(t, l.EnsureStarted())
	defer l.Close()

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/other", port))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRedirectListenerIdempotentStart(t *testing.T) {
	port := freePort(t)
	l := NewRedirectListener(fmt.Sprintf("http://localhost:%d/cb", port), nil)
	defer l.Close()

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = l.EnsureStarted()
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err, "later starters observe the listener already running")
	}
}

func TestRedirectListenerSkipsNonHTTP(t *testing.T) {
	l := NewRedirectListener("urn:ietf:wg:oauth:2.0:oob", nil)
	assert.NoError(t, l.EnsureStarted(), "non-http redirect targets are not served locally")
	assert.NoError(t, l.Close())
}

func TestCallbackPageEscapesCode(t *testing.T) {
	page := string(callbackPage(`"><script>alert(1)</script>`))
	assert.NotContains(t, page, "<script>alert")
}
