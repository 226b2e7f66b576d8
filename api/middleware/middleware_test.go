package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/farmcart/internal/session"
	"github.com/angelmondragon/farmcart/internal/users"
	pkgerrors "github.com/angelmondragon/farmcart/pkg/errors"
	"github.com/angelmondragon/farmcart/pkg/logger"
)

type stubSessionReader struct {
	snap *session.Snapshot
}

func (s stubSessionReader) GetSession(context.Context) (*session.Snapshot, bool) {
	return s.snap, s.snap != nil
}

type stubDirectory struct {
	err error
}

func (s stubDirectory) Resolve(_ context.Context, id int64) (*users.UserDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &users.UserDTO{ID: id}, nil
}

func TestSessionRejectsMissingSession(t *testing.T) {
	handler := Session(stubSessionReader{}, stubDirectory{}, logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run without a session")
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestSessionInjectsUser(t *testing.T) {
	var gotID int64
	var gotName string
	handler := Session(stubSessionReader{snap: &session.Snapshot{ID: 7, Username: "alice"}}, stubDirectory{}, logger.Nop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotID = UserIDFromContext(r.Context())
			gotName = UsernameFromContext(r.Context())
			w.WriteHeader(http.StatusNoContent)
		}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", resp.Code)
	}
	if gotID != 7 || gotName != "alice" {
		t.Fatalf("unexpected identity %d %q", gotID, gotName)
	}
}

func TestSessionRejectsUserMissingFromDirectory(t *testing.T) {
	cases := map[string]struct {
		err  error
		want int
	}{
		"deleted user":    {err: pkgerrors.New(pkgerrors.CodeNotFound, "user not found"), want: http.StatusUnauthorized},
		"store unhealthy": {err: pkgerrors.Storage(errors.New("database is locked"), "lookup user"), want: http.StatusServiceUnavailable},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			reader := stubSessionReader{snap: &session.Snapshot{ID: 7, Username: "alice"}}
			handler := Session(reader, stubDirectory{err: tc.err}, logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("handler should not run")
			}))

			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
			if resp.Code != tc.want {
				t.Fatalf("expected %d got %d", tc.want, resp.Code)
			}
		})
	}
}

func TestUserIDFromEmptyContext(t *testing.T) {
	if got := UserIDFromContext(context.Background()); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestRequestIDGeneratesHeader(t *testing.T) {
	handler := RequestID(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "abc")
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if got := resp.Header().Get("X-Request-Id"); got != "abc" {
		t.Fatalf("expected request id passthrough, got %q", got)
	}
}

func TestRecovererReturns500(t *testing.T) {
	handler := Recoverer(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}

func TestLoggingRecordsStatusAndBytes(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{Output: &buf, Format: logger.FormatJSON})

	handler := Logging(logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short"))
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/cart", nil))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, buf.String())
	}
	if entry["message"] != "request.complete" || entry["status"] != float64(http.StatusTeapot) {
		t.Fatalf("unexpected entry %v", entry)
	}
	if entry["bytes"] != float64(5) || entry["path"] != "/cart" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestLoggingWarnsOnServerError(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{Output: &buf, Format: logger.FormatJSON})

	handler := Logging(logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/orders", nil))

	if !strings.Contains(buf.String(), `"level":"warn"`) || !strings.Contains(buf.String(), "request.failed") {
		t.Fatalf("expected warn line, got %s", buf.String())
	}
}
