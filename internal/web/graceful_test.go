package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := NewHTTPServer(ln.Addr().String(), http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	hookRan := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, server, ln, zap.NewNop(), time.Second,
			nil,
			func(context.Context) error { return errors.New("ignored") },
			func(context.Context) error { close(hookRan); return nil },
		)
	}()

	resp, err := http.Get("http://" + ln.Addr().String())
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
	<-hookRan
}

func TestListenAndRunBadAddr(t *testing.T) {
	server := NewHTTPServer("256.0.0.1:http-nope", http.NotFoundHandler())
	err := ListenAndRun(context.Background(), server, zap.NewNop(), time.Second)
	assert.ErrorContains(t, err, "listen")
}
