package domain

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

// Transport moves JSON-RPC messages between an MCP client and the
// server loop. The server consumes requests from Receive and answers
// through Send; it never touches the underlying streams directly.
type Transport interface {
	// Start begins listening for incoming requests. It returns once
	// listening is underway; delivery happens on the Receive channel.
	Start(ctx context.Context) error

	// Send transmits one response to the client.
	Send(response *Response) error

	// Receive returns the incoming request channel. The channel is
	// closed when the transport shuts down.
	Receive() <-chan *Request

	// Close shuts the transport down. Safe to call more than once.
	Close() error
}

// StdioTransport frames JSON-RPC over stdin/stdout: one JSON document
// per line in each direction. Anything the process wants to log must go
// to stderr, because stdout is the protocol channel.
type StdioTransport struct {
	reader  *bufio.Reader
	writer  *bufio.Writer
	reqChan chan *Request
	mu      sync.Mutex
	closed  bool
}

// NewStdioTransport creates a transport over os.Stdin and os.Stdout.
func NewStdioTransport() *StdioTransport {
	return NewStdioTransportWithIO(os.Stdin, os.Stdout)
}

// NewStdioTransportWithIO creates a transport over the given streams,
// which tests use to substitute in-memory pipes.
func NewStdioTransportWithIO(reader io.Reader, writer io.Writer) *StdioTransport {
	return &StdioTransport{
		reader:  bufio.NewReader(reader),
		writer:  bufio.NewWriter(writer),
		reqChan: make(chan *Request, 10),
	}
}

// Start launches the read loop. The loop owns reqChan and closes it on
// exit, so Start must not be called twice.
func (t *StdioTransport) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return fmt.Errorf("transport is closed")
	}
	t.mu.Unlock()

	go t.readLoop(ctx)
	return nil
}

// readLoop reads newline-delimited requests until EOF or cancellation.
// Messages that fail to parse or carry the wrong protocol version are
// answered directly with a protocol error and never reach the server.
func (t *StdioTransport) readLoop(ctx context.Context) {
	defer close(t.reqChan)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := t.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return
			}
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var req Request
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			t.sendProtocolError(nil, ParseError, "Parse error", err.Error())
			continue
		}
		if req.JSONRPC != "2.0" {
			t.sendProtocolError(req.ID, InvalidRequest, "Invalid Request", "invalid jsonrpc version")
			continue
		}

		select {
		case t.reqChan <- &req:
		case <-ctx.Done():
			return
		}
	}
}

// Send writes one response as a single line. Marshaling keeps newlines
// escaped inside JSON strings; a raw newline in the output would break
// the framing, so it is rejected rather than written.
func (t *StdioTransport) Send(response *Response) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return fmt.Errorf("transport is closed")
	}

	if response.JSONRPC == "" {
		response.JSONRPC = "2.0"
	}

	data, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}
	if strings.Contains(string(data), "\n") {
		return fmt.Errorf("response contains embedded newlines")
	}

	if _, err := t.writer.WriteString(string(data) + "\n"); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	if err := t.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush response: %w", err)
	}

	return nil
}

// Receive returns the incoming request channel.
func (t *StdioTransport) Receive() <-chan *Request {
	return t.reqChan
}

// Close marks the transport closed. The request channel stays open
// until the read loop observes cancellation or EOF, since the loop is
// its owner.
func (t *StdioTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true
	return nil
}

// sendProtocolError answers a malformed inbound message without
// involving the server. The send result is discarded; there is no one
// left to report it to.
func (t *StdioTransport) sendProtocolError(id interface{}, code int, message string, detail interface{}) {
	_ = t.Send(&Response{
		JSONRPC: "2.0",
		ID:      id,
		Error: &Error{
			Code:    code,
			Message: message,
			Data:    detail,
		},
	})
}

// HTTPTransport carries MCP over HTTP: the client opens an SSE stream
// with GET /mcp and is told, via an endpoint event, where to POST its
// requests. Responses fan out to every open stream. When a metrics
// handler is configured it is mounted at /metrics on the same listener.
type HTTPTransport struct {
	host           string
	port           int
	server         *http.Server
	reqChan        chan *Request
	metricsHandler http.Handler
	mu             sync.Mutex
	closed         bool

	sessions   map[string]*sseSession
	sessionsMu sync.RWMutex
}

// sseSession is one open server-to-client stream.
type sseSession struct {
	id          string
	messageChan chan *Response
	done        chan struct{}
}

// NewHTTPTransport creates an HTTP transport bound to host:port when
// started.
func NewHTTPTransport(host string, port int) *HTTPTransport {
	return &HTTPTransport{
		host:     host,
		port:     port,
		reqChan:  make(chan *Request, 10),
		sessions: make(map[string]*sseSession),
	}
}

// NewHTTPTransportWithMetrics creates an HTTP transport that also
// serves the given handler at /metrics, typically a Prometheus handler
// bound to the process registry.
func NewHTTPTransportWithMetrics(host string, port int, metricsHandler http.Handler) *HTTPTransport {
	transport := NewHTTPTransport(host, port)
	transport.metricsHandler = metricsHandler
	return transport
}

// Start binds the listener and begins accepting connections. The
// listener goroutine reports a startup failure on stderr; the transport
// shuts down when ctx is cancelled.
func (t *HTTPTransport) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return fmt.Errorf("transport is closed")
	}
	t.mu.Unlock()

	mux := http.NewServeMux()
	mux.HandleFunc("/mcp", t.handleSSE)
	mux.HandleFunc("/mcp/message", t.handleMessage)
	if t.metricsHandler != nil {
		mux.Handle("/metrics", t.metricsHandler)
	}

	t.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", t.host, t.port),
		Handler: mux,
	}

	go func() {
		if err := t.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "HTTP transport listener failed: %v\n", err)
		}
	}()

	go func() {
		<-ctx.Done()
		t.Close()
	}()

	return nil
}

// handleSSE opens a server-to-client stream. The first event names the
// message endpoint for this session; afterwards the stream carries
// responses and periodic keep-alive comments until either side closes.
func (t *HTTPTransport) handleSSE(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	session := &sseSession{
		id:          fmt.Sprintf("session_%d", time.Now().UnixNano()),
		messageChan: make(chan *Response, 10),
		done:        make(chan struct{}),
	}

	t.sessionsMu.Lock()
	t.sessions[session.id] = session
	t.sessionsMu.Unlock()

	fmt.Fprintf(w, "event: endpoint\ndata: /mcp/message?sessionId=%s\n\n", session.id)
	flusher.Flush()

	keepAlive := time.NewTicker(30 * time.Second)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			t.sessionsMu.Lock()
			delete(t.sessions, session.id)
			t.sessionsMu.Unlock()
			close(session.done)
			return
		case <-session.done:
			return
		case response := <-session.messageChan:
			data, err := json.Marshal(response)
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to marshal SSE response: %v\n", err)
				continue
			}
			fmt.Fprintf(w, "event: message\ndata: %s\n\n", string(data))
			flusher.Flush()
		case <-keepAlive.C:
			fmt.Fprintf(w, ": keep-alive\n\n")
			flusher.Flush()
		}
	}
}

// handleMessage accepts a client request for an established session.
// The response travels back over the session's SSE stream, so the POST
// itself is answered with 202 as soon as the request is queued.
func (t *HTTPTransport) handleMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		http.Error(w, "Missing sessionId parameter", http.StatusBadRequest)
		return
	}

	t.sessionsMu.RLock()
	session, exists := t.sessions[sessionID]
	t.sessionsMu.RUnlock()
	if !exists {
		http.Error(w, "Invalid session", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		t.sendErrorToSession(session, nil, ParseError, "Parse error", err.Error())
		w.WriteHeader(http.StatusAccepted)
		return
	}
	if req.JSONRPC != "2.0" {
		t.sendErrorToSession(session, req.ID, InvalidRequest, "Invalid Request", "invalid jsonrpc version")
		w.WriteHeader(http.StatusAccepted)
		return
	}

	select {
	case t.reqChan <- &req:
		w.WriteHeader(http.StatusAccepted)
	default:
		t.sendErrorToSession(session, req.ID, InternalError, "Internal error", "request queue full")
		w.WriteHeader(http.StatusServiceUnavailable)
	}
}

// sendErrorToSession queues a protocol error on one session's stream.
func (t *HTTPTransport) sendErrorToSession(session *sseSession, id interface{}, code int, message string, detail interface{}) {
	response := &Response{
		JSONRPC: "2.0",
		ID:      id,
		Error: &Error{
			Code:    code,
			Message: message,
			Data:    detail,
		},
	}

	select {
	case session.messageChan <- response:
	default:
		fmt.Fprintf(os.Stderr, "dropping error for session %s: channel full\n", session.id)
	}
}

// Send fans a response out to every open session. A session whose
// buffer is full is skipped rather than blocked on; the stream is a
// best-effort broadcast.
func (t *HTTPTransport) Send(response *Response) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return fmt.Errorf("transport is closed")
	}
	t.mu.Unlock()

	if response.JSONRPC == "" {
		response.JSONRPC = "2.0"
	}

	t.sessionsMu.RLock()
	defer t.sessionsMu.RUnlock()

	if len(t.sessions) == 0 {
		return fmt.Errorf("no active sessions")
	}

	for _, session := range t.sessions {
		select {
		case session.messageChan <- response:
		default:
			fmt.Fprintf(os.Stderr, "dropping response for session %s: channel full\n", session.id)
		}
	}

	return nil
}

// Receive returns the incoming request channel.
func (t *HTTPTransport) Receive() <-chan *Request {
	return t.reqChan
}

// Close ends every session, closes the request channel, and shuts the
// HTTP server down with a bounded grace period.
func (t *HTTPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true

	t.sessionsMu.Lock()
	for _, session := range t.sessions {
		close(session.done)
	}
	t.sessions = make(map[string]*sseSession)
	t.sessionsMu.Unlock()

	close(t.reqChan)

	if t.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return t.server.Shutdown(ctx)
	}

	return nil
}
