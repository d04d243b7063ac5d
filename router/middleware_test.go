package router

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oaspipe/codec"
	"github.com/erraggy/oaspipe/config"
	"github.com/erraggy/oaspipe/internal/testutil"
	"github.com/erraggy/oaspipe/logging"
)

// lockedBuffer is a bytes.Buffer safe for the logger and the test to share.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func textLogger(w *lockedBuffer) logging.Logger {
	return logging.NewSlogAdapter(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})))
}

func TestRequestID(t *testing.T) {
	var seen string
	r, err := New(testutil.Petstore(t), WithHandler("getPet", func(ctx context.Context, _ *Request) (Reply, error) {
		seen = RequestID(ctx)
		return Status(http.StatusNotFound), nil
	}))
	require.NoError(t, err)

	rec := NewTestRequest(http.MethodGet, "/pets/1").Execute(r)
	id := rec.Header().Get(RequestIDHeader)
	_, perr := uuid.Parse(id)
	assert.NoError(t, perr)
	assert.Equal(t, id, seen)

	rec = NewTestRequest(http.MethodGet, "/pets/1").Header(RequestIDHeader, "abc-123").Execute(r)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", seen)
}

func TestRecovery(t *testing.T) {
	var logs lockedBuffer
	r, err := New(testutil.Petstore(t),
		WithRecovery(),
		WithLogger(textLogger(&logs)),
		WithHandler("getPet", func(context.Context, *Request) (Reply, error) {
			panic("kaboom")
		}),
	)
	require.NoError(t, err)

	rec := NewTestRequest(http.MethodGet, "/pets/1").Header(RequestIDHeader, "req-7").Execute(r)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "kaboom")
	assert.Contains(t, logs.String(), "handler panic")
	assert.Contains(t, logs.String(), "kaboom")
	assert.Contains(t, logs.String(), "request_id=req-7")
}

// explodingReader yields one chunk, then panics.
type explodingReader struct{ done bool }

func (r *explodingReader) Read(p []byte) (int, error) {
	if r.done {
		panic("stream exploded")
	}
	r.done = true
	return copy(p, "partial"), nil
}

func TestRecovery_AfterResponseStarted(t *testing.T) {
	var logs lockedBuffer
	capture := &errorCapture{}
	r, err := New(testutil.Petstore(t),
		WithRecovery(),
		WithLogger(textLogger(&logs)),
		WithErrorHandler(capture.handle),
		WithEncoder("text/plain", func(context.Context, any, *codec.Context) (io.Reader, error) {
			return &explodingReader{}, nil
		}),
		WithHandler("getHealth", StubHandler(Content(http.StatusOK, "text/plain", "ok"))),
	)
	require.NoError(t, err)

	rec := NewTestRequest(http.MethodGet, "/health").Execute(r)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "partial", rec.Body.String(), "nothing is appended to a started response")
	assert.NoError(t, capture.last(), "the error handler is not called")
	assert.Contains(t, logs.String(), "handler panic after response started")
	assert.Contains(t, logs.String(), "stream exploded")
}

func TestRequestLogging(t *testing.T) {
	var logs lockedBuffer
	r := newPetRouter(t, newPetStore(), WithRequestLogging(), WithLogger(textLogger(&logs)))

	NewTestRequest(http.MethodGet, "/pets/42").Execute(r)

	out := logs.String()
	assert.Contains(t, out, "msg=request")
	assert.Contains(t, out, "method=GET")
	assert.Contains(t, out, "path=/pets/42")
	assert.Contains(t, out, "status=404")
	assert.Contains(t, out, "duration=")
}

func TestErrorLogging(t *testing.T) {
	var logs lockedBuffer
	r := newPetRouter(t, newPetStore(), WithLogger(textLogger(&logs)))

	NewTestRequest(http.MethodGet, "/pets").Query("limit", "0").Execute(r)

	out := logs.String()
	assert.Contains(t, out, `msg="invalid request"`)
	assert.Contains(t, out, "operation=listPets")
	assert.Contains(t, out, `kind="invalid parameter"`)
}

func TestWithMiddleware_Order(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	r := newPetRouter(t, newPetStore(), WithMiddleware(tag("outer"), tag("inner")))

	NewTestRequest(http.MethodGet, "/pets").Execute(r)
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestWithConfig(t *testing.T) {
	assertion := false
	cfg := config.Router{
		ErrorMode:       config.ErrorModePermissive,
		Strategy:        config.StrategyChi,
		ExtraCodecs:     true,
		FormatAssertion: &assertion,
	}
	store := newPetStore()
	store.pets[1] = map[string]any{"id": 1, "name": "Fido"}
	r := newPetRouter(t, store, WithConfig(cfg))

	rec := NewTestRequest(http.MethodGet, "/pets").Query("limit", "1000").Execute(r)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `invalid parameter "limit"`, "permissive mode answers in plain text")

	rec = NewTestRequest(http.MethodGet, "/pets").Accept("application/x-ndjson").Execute(r)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "{\"id\":1,\"name\":\"Fido\"}\n", rec.Body.String())

	rec = NewTestRequest(http.MethodPatch, "/pets/1").Execute(r)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "DELETE, GET", rec.Header().Get("Allow"))
}

func TestChiRouter_EndToEnd(t *testing.T) {
	r := newPetRouter(t, newPetStore(), WithStrategy(ChiRouter{}))

	rec := NewTestRequest(http.MethodPost, "/pets").JSONBody(map[string]any{"name": "Fido"}).Execute(r)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = NewTestRequest(http.MethodGet, "/pets/1").Execute(r)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"name":"Fido"}`, rec.Body.String())

	rec = NewTestRequest(http.MethodGet, "/owners").Execute(r)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWithNotFoundHandler(t *testing.T) {
	r := newPetRouter(t, newPetStore(), WithNotFoundHandler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	rec := NewTestRequest(http.MethodGet, "/owners").Execute(r)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
