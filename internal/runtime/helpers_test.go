package runtime

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	configpkg "github.com/drblury/catalogflow/internal/runtime/config"
	"github.com/drblury/catalogflow/internal/runtime/jsoncodec"
	loggingpkg "github.com/drblury/catalogflow/internal/runtime/logging"
)

type logEntry struct {
	level  string
	msg    string
	err    error
	fields loggingpkg.LogFields
}

// recordingLogger captures every log call. Loggers derived with With share
// the same entries.
type recordingLogger struct {
	mu      *sync.Mutex
	entries *[]logEntry
	fields  loggingpkg.LogFields
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{mu: &sync.Mutex{}, entries: &[]logEntry{}}
}

func (l *recordingLogger) record(level, msg string, err error, fields loggingpkg.LogFields) {
	merged := loggingpkg.LogFields{}
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.entries = append(*l.entries, logEntry{level: level, msg: msg, err: err, fields: merged})
}

func (l *recordingLogger) With(fields loggingpkg.LogFields) loggingpkg.ServiceLogger {
	merged := loggingpkg.LogFields{}
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &recordingLogger{mu: l.mu, entries: l.entries, fields: merged}
}

func (l *recordingLogger) Debug(msg string, fields loggingpkg.LogFields) {
	l.record("debug", msg, nil, fields)
}

func (l *recordingLogger) Info(msg string, fields loggingpkg.LogFields) {
	l.record("info", msg, nil, fields)
}

func (l *recordingLogger) Warn(msg string, fields loggingpkg.LogFields) {
	l.record("warn", msg, nil, fields)
}

func (l *recordingLogger) Error(msg string, err error, fields loggingpkg.LogFields) {
	l.record("error", msg, err, fields)
}

func (l *recordingLogger) Trace(msg string, fields loggingpkg.LogFields) {
	l.record("trace", msg, nil, fields)
}

func (l *recordingLogger) byLevel(level string) []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []logEntry
	for _, e := range *l.entries {
		if e.level == level {
			out = append(out, e)
		}
	}
	return out
}

type stubRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   map[string]any
}

// catalogStub is a minimal catalog backend recording every request.
type catalogStub struct {
	mu       sync.Mutex
	requests []stubRequest
	status   int
	response string
	srv      *httptest.Server
}

func newCatalogStub(t *testing.T, status int, response string) *catalogStub {
	t.Helper()
	stub := &catalogStub{status: status, response: response}
	stub.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		req := stubRequest{Method: r.Method, Path: r.URL.Path, Header: r.Header.Clone()}
		if len(raw) > 0 {
			_ = jsoncodec.Unmarshal(raw, &req.Body)
		}
		stub.mu.Lock()
		stub.requests = append(stub.requests, req)
		stub.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(stub.status)
		_, _ = w.Write([]byte(stub.response))
	}))
	t.Cleanup(stub.srv.Close)
	return stub
}

func (s *catalogStub) URL() string {
	return s.srv.URL + "/catalog"
}

func (s *catalogStub) Requests() []stubRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]stubRequest(nil), s.requests...)
}

func testConfig(url string) *configpkg.Config {
	return &configpkg.Config{URL: url, User: "admin_user"}
}

func newTestClient(t *testing.T, conf *configpkg.Config, deps ClientDependencies) (*Client, *recordingLogger) {
	t.Helper()
	logger := newRecordingLogger()
	client, err := NewClient(conf, logger, deps)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, logger
}
