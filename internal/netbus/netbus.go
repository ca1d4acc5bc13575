// Package netbus is a small generic request/response bus for inter-module
// communication: a handler-table HTTP server and a matching client,
// exchanging JSON envelopes over a single POST endpoint.
package netbus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/nullframe/corekit/internal/xlog"
)

// Envelope is the wire message exchanged between a Client and a Server.
type Envelope struct {
	Kind   string `json:"kind"`
	Origin string `json:"origin"`
	Data   any    `json:"data"`
}

// HandlerFunc answers one Envelope kind with a JSON-encodable response.
type HandlerFunc func(*Envelope) (any, error)

// Server dispatches incoming envelopes to registered handlers, keyed by
// a string kind instead of a numeric message type.
type Server struct {
	addr     string
	name     string
	handlers map[string]HandlerFunc
	server   *http.Server
	log      *slog.Logger
}

// NewServer creates a Server that will listen on addr (host:port) once
// started, identifying itself as name in health checks and logs.
func NewServer(addr, name string, log *slog.Logger) *Server {
	if log == nil {
		log = xlog.New("info", name)
	}
	return &Server{
		addr:     addr,
		name:     name,
		handlers: make(map[string]HandlerFunc),
		log:      log,
	}
}

// Handle registers a handler for envelopes of the given kind.
func (s *Server) Handle(kind string, h HandlerFunc) {
	s.handlers[kind] = h
}

// Start blocks serving HTTP until the listener errors or Stop is called.
func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/message", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var env Envelope
		if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
			http.Error(w, fmt.Sprintf("decoding envelope: %v", err), http.StatusBadRequest)
			return
		}

		handler, ok := s.handlers[env.Kind]
		if !ok {
			http.Error(w, fmt.Sprintf("no handler for kind %q", env.Kind), http.StatusBadRequest)
			return
		}

		reply, err := handler(&env)
		if err != nil {
			http.Error(w, fmt.Sprintf("handler error: %v", err), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(reply)
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok", "module": s.name})
	})

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("netbus: listening on %s: %w", s.addr, err)
	}

	s.server = &http.Server{Handler: mux}
	s.log.Info("server listening", "module", s.name, "address", ln.Addr().String())
	return s.server.Serve(ln)
}

// Stop closes the server immediately, if it was started: the listener and
// any active connections are closed without waiting for in-flight
// requests.
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	return s.server.Close()
}

// Client sends Envelopes to one remote Server and decodes its replies.
type Client struct {
	baseURL string
	name    string
	http    *http.Client
	log     *slog.Logger
}

// NewClient creates a Client that targets the server at baseURL
// ("http://host:port"), identifying itself as name in outgoing envelopes.
func NewClient(baseURL, name string, log *slog.Logger) *Client {
	if log == nil {
		log = xlog.New("info", name)
	}
	return &Client{
		baseURL: baseURL,
		name:    name,
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
}

// Send posts an Envelope of the given kind carrying data and decodes the
// handler's reply into result. result may be nil to discard the reply.
func (c *Client) Send(kind string, data any, result any) error {
	env := Envelope{Kind: kind, Origin: c.name, Data: data}

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("netbus: encoding envelope: %w", err)
	}

	resp, err := c.http.Post(c.baseURL+"/message", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("netbus: sending envelope: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("netbus: unsuccessful response: %d - %s", resp.StatusCode, string(b))
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("netbus: decoding reply: %w", err)
	}
	return nil
}

// Healthy reports whether the remote server answers its health check.
func (c *Client) Healthy() error {
	resp, err := c.http.Get(c.baseURL + "/health")
	if err != nil {
		return fmt.Errorf("netbus: checking health of %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("netbus: unexpected health status: %d", resp.StatusCode)
	}

	var result map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("netbus: decoding health reply: %w", err)
	}
	c.log.Info("health check ok", "target", c.baseURL, "module", result["module"])
	return nil
}
