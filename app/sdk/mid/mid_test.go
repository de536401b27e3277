package mid

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/app/sdk/auth"
	"github.com/jcpaschoal/jhgestor/app/sdk/errs"
	"github.com/jcpaschoal/jhgestor/business/domain/sessionbus"
	"github.com/jcpaschoal/jhgestor/business/domain/userbus"
	"github.com/jcpaschoal/jhgestor/business/sdk/sqldb"
	"github.com/jcpaschoal/jhgestor/business/sdk/web"
	"github.com/jcpaschoal/jhgestor/business/types/role"
	"github.com/jcpaschoal/jhgestor/business/types/status"
	"github.com/jcpaschoal/jhgestor/foundation/logger"
)

type okResp struct{}

func (okResp) Encode() ([]byte, string, error) {
	return []byte(`{"ok":true}`), "application/json", nil
}

type session struct {
	usr *userbus.User
}

func (s session) Current(ctx context.Context) (userbus.User, bool) {
	if s.usr == nil {
		return userbus.User{}, false
	}
	return *s.usr, true
}

// withSubject stands in for a request that passed Authenticate.
func withSubject(ctx context.Context, id uuid.UUID) context.Context {
	return setClaims(ctx, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: id.String()},
	})
}

func serve(t *testing.T, h web.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	r := httptest.NewRequest(http.MethodGet, "/v1/clients", nil)
	w := httptest.NewRecorder()

	if err := web.Respond(context.Background(), w, h(context.Background(), r)); err != nil {
		t.Fatalf("respond: %s", err)
	}

	return w
}

func Test_Gate(t *testing.T) {
	handler := func(ctx context.Context, r *http.Request) web.Encoder {
		return okResp{}
	}

	table := []struct {
		name    string
		status  *status.Status
		role    role.Role
		group   string
		code    int
		actions []string
	}{
		{"unauthenticated", nil, role.Admin, "clients", http.StatusUnauthorized, nil},
		{"active", &status.Active, role.Admin, "clients", http.StatusOK, nil},
		{"past-due", &status.PastDue, role.Admin, "clients", http.StatusOK, nil},
		{"blocked", &status.Blocked, role.Admin, "clients", http.StatusPaymentRequired, []string{"billing", "logout"}},
		{"blocked-member", &status.Blocked, role.User, "tasks", http.StatusPaymentRequired, []string{"logout"}},
		{"blocked-snapshot", &status.Blocked, role.Admin, "sync", http.StatusPaymentRequired, []string{"billing", "logout"}},
		{"blocked-billing", &status.Blocked, role.Admin, sessionbus.GroupBilling, http.StatusOK, nil},
		{"blocked-refresh", &status.Blocked, role.User, sessionbus.GroupRefresh, http.StatusOK, nil},
		{"blocked-logout", &status.Blocked, role.User, sessionbus.GroupLogout, http.StatusOK, nil},
	}

	for _, tt := range table {
		t.Run(tt.name, func(t *testing.T) {
			h := Gate(tt.group)(handler)

			// Gate reads the user Session placed in the context.
			if tt.status != nil {
				id := uuid.New()
				usr := userbus.User{ID: id, OwnerID: id, Role: tt.role, Status: *tt.status}
				h = bind(usr, h)
			}

			w := serve(t, h)
			if w.Code != tt.code {
				t.Fatalf("got status %d, exp %d: %s", w.Code, tt.code, w.Body.String())
			}

			if tt.code != http.StatusPaymentRequired {
				return
			}

			var got Interstitial
			if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
				t.Fatalf("decode: %s", err)
			}

			exp := Interstitial{
				State:   sessionbus.AuthenticatedBlocked,
				Message: sessionbus.BlockedMessage,
				Actions: tt.actions,
			}
			if diff := cmp.Diff(exp, got); diff != "" {
				t.Errorf("interstitial:\n%s", diff)
			}
		})
	}
}

// bind runs the Session middleware with a token subject matching usr.
func bind(usr userbus.User, next web.HandlerFunc) web.HandlerFunc {
	return func(ctx context.Context, r *http.Request) web.Encoder {
		ctx = withSubject(ctx, usr.ID)
		return Session(session{usr: &usr})(next)(ctx, r)
	}
}

func Test_SessionMismatch(t *testing.T) {
	id := uuid.New()
	usr := userbus.User{ID: id, OwnerID: id, Status: status.Active}

	handler := func(ctx context.Context, r *http.Request) web.Encoder {
		return okResp{}
	}

	h := func(ctx context.Context, r *http.Request) web.Encoder {
		ctx = withSubject(ctx, uuid.New())
		return Session(session{usr: &usr})(handler)(ctx, r)
	}

	if w := serve(t, h); w.Code != http.StatusUnauthorized {
		t.Errorf("Should refuse a token from another session, got %d", w.Code)
	}

	h = func(ctx context.Context, r *http.Request) web.Encoder {
		ctx = withSubject(ctx, id)
		return Session(session{})(handler)(ctx, r)
	}

	if w := serve(t, h); w.Code != http.StatusUnauthorized {
		t.Errorf("Should refuse without a session, got %d", w.Code)
	}
}

func Test_Errors(t *testing.T) {
	table := []struct {
		name string
		resp web.Encoder
		code int
		msg  string
	}{
		{"app-error", errs.Errorf(errs.Aborted, "client was changed by someone else"), http.StatusConflict, "client was changed by someone else"},
		{"raw-error", rawErr{errors.New("pq: connection refused")}, http.StatusInternalServerError, "Internal Server Error"},
		{"internal-only", errs.Errorf(errs.InternalOnlyLog, "secret detail"), http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tt := range table {
		t.Run(tt.name, func(t *testing.T) {
			h := Errors(logger.Discard())(func(ctx context.Context, r *http.Request) web.Encoder {
				return tt.resp
			})

			w := serve(t, h)
			if w.Code != tt.code {
				t.Fatalf("got status %d, exp %d", w.Code, tt.code)
			}

			var got errs.Error
			if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
				t.Fatalf("decode: %s", err)
			}
			if got.Message != tt.msg {
				t.Errorf("got message %q, exp %q", got.Message, tt.msg)
			}
		})
	}
}

func Test_Panics(t *testing.T) {
	h := Errors(logger.Discard())(Panics()(func(ctx context.Context, r *http.Request) web.Encoder {
		panic("boom")
	}))

	if w := serve(t, h); w.Code != http.StatusInternalServerError {
		t.Errorf("Should recover into a 500, got %d", w.Code)
	}
}

type rawErr struct {
	err error
}

func (e rawErr) Error() string {
	return e.err.Error()
}

func (e rawErr) Encode() ([]byte, string, error) {
	return []byte(e.err.Error()), "text/plain", nil
}

type steps struct {
	mu  sync.Mutex
	log []string
}

func (s *steps) add(step string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = append(s.log, step)
}

func (s *steps) Begin() (sqldb.CommitRollbacker, error) {
	return s, nil
}

func (s *steps) Commit() error {
	s.add("commit")
	return nil
}

func (s *steps) Rollback() error {
	s.add("rollback")
	return nil
}

func (s *steps) Trigger(ctx context.Context) {
	s.add("trigger")
}

func Test_RefreshAfterCommit(t *testing.T) {
	table := []struct {
		name string
		resp web.Encoder
		exp  []string
	}{
		{"ok", nil, []string{"handler", "commit", "trigger"}},
		{"failed", errs.Errorf(errs.Aborted, "task was changed by someone else"), []string{"handler", "rollback"}},
	}

	for _, tt := range table {
		t.Run(tt.name, func(t *testing.T) {
			s := steps{}

			handler := func(ctx context.Context, r *http.Request) web.Encoder {
				s.add("handler")
				return tt.resp
			}

			h := Refresh(&s)(BeginCommitRollback(logger.Discard(), &s)(handler))
			serve(t, Errors(logger.Discard())(h))

			if diff := cmp.Diff(tt.exp, s.log); diff != "" {
				t.Errorf("steps:\n%s", diff)
			}
		})
	}
}
