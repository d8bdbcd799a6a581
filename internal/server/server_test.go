package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServer_ServeAndShutdownRunsHooksInReverse(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})
	srv := New(handler, Options{ShutdownTimeout: time.Second, Logger: testLogger()})

	var order []string
	srv.OnShutdown("store", func(context.Context) error {
		order = append(order, "store")
		return nil
	})
	srv.OnShutdown("cache", func(context.Context) error {
		order = append(order, "cache")
		return nil
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "pong" {
		t.Errorf("body = %q", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	if strings.Join(order, ",") != "cache,store" {
		t.Errorf("hook order = %v, want cache,store", order)
	}
}

func TestServer_HookErrorsAreJoined(t *testing.T) {
	t.Parallel()

	srv := New(http.NotFoundHandler(), Options{ShutdownTimeout: time.Second, Logger: testLogger()})
	errStore := errors.New("close failed")
	srv.OnShutdown("store", func(context.Context) error { return errStore })
	srv.OnShutdown("cache", func(context.Context) error { return nil })

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = srv.Serve(ctx, ln)
	if !errors.Is(err, errStore) {
		t.Fatalf("Serve() error = %v, want %v", err, errStore)
	}
	if !strings.Contains(err.Error(), "store") {
		t.Errorf("error %q does not name the component", err)
	}
}

func TestServer_Addr(t *testing.T) {
	t.Parallel()

	if got := New(http.NotFoundHandler(), Options{Port: 8081}).Addr(); got != ":8081" {
		t.Errorf("Addr() = %q, want :8081", got)
	}
}
