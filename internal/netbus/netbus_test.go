package netbus

import (
	"net"
	"testing"
	"time"
)

func startTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	s := NewServer(addr, "test-module", nil)
	s.Handle("echo", func(env *Envelope) (any, error) {
		return env.Data, nil
	})

	go func() {
		_ = s.Start()
	}()
	t.Cleanup(func() { _ = s.Stop() })

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if conn, err := net.Dial("tcp", addr); err == nil {
			conn.Close()
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	return s, addr
}

func TestClientServerEchoRoundTrip(t *testing.T) {
	_, addr := startTestServer(t)
	c := NewClient("http://"+addr, "client", nil)

	var result map[string]any
	if err := c.Send("echo", map[string]any{"n": float64(7)}, &result); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if result["n"] != float64(7) {
		t.Fatalf("result[n] = %v, want 7", result["n"])
	}
}

func TestClientHealthy(t *testing.T) {
	_, addr := startTestServer(t)
	c := NewClient("http://"+addr, "client", nil)

	if err := c.Healthy(); err != nil {
		t.Fatalf("Healthy: %v", err)
	}
}

func TestClientUnknownKind(t *testing.T) {
	_, addr := startTestServer(t)
	c := NewClient("http://"+addr, "client", nil)

	if err := c.Send("nope", nil, nil); err == nil {
		t.Fatal("Send with unregistered kind should error")
	}
}
