package httpserver

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dsavelev/kosyncd/internal/repository/fsstore"
	"github.com/dsavelev/kosyncd/internal/service"
)

// newIntegrationRouter wires real services over a filesystem store in a temp
// dir, exercising the full stack below the HTTP transport.
func newIntegrationRouter(t *testing.T, allowRegistration bool) *gin.Engine {
	t.Helper()
	st, err := fsstore.New(t.TempDir())
	if err != nil {
		t.Fatalf("fsstore.New: %v", err)
	}
	auth := service.NewAuthService(fsstore.NewUserRepo(st), allowRegistration, nil)
	sync := service.NewSyncService(fsstore.NewProgressRepo(st))
	return New(zap.NewNop(), auth, sync).Router(nil)
}

func TestEndToEnd_SyncFlow(t *testing.T) {
	t.Parallel()
	r := newIntegrationRouter(t, true)

	// register
	w := doRequest(t, r, http.MethodPost, "/users/create", `{"username":"aemiller","password":"h1"}`, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("register: %d (%s)", w.Code, w.Body.String())
	}

	// duplicate registration
	w = doRequest(t, r, http.MethodPost, "/users/create", `{"username":"aemiller","password":"h2"}`, nil)
	if w.Code != http.StatusPaymentRequired {
		t.Fatalf("duplicate register: %d", w.Code)
	}

	// login confirms credentials, side-effect free
	w = doRequest(t, r, http.MethodGet, "/users/auth", "", authHeaders("aemiller", "h1"))
	if w.Code != http.StatusOK {
		t.Fatalf("auth: %d", w.Code)
	}
	w = doRequest(t, r, http.MethodGet, "/users/auth", "", authHeaders("aemiller", "wrong"))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("auth with wrong key: %d", w.Code)
	}

	// push then pull
	w = doRequest(t, r, http.MethodPut, "/syncs/progress", `{"document":"doc1","progress":"p50","percentage":0.5}`, authHeaders("aemiller", "h1"))
	if w.Code != http.StatusOK {
		t.Fatalf("push: %d (%s)", w.Code, w.Body.String())
	}
	pushed := decodeBody(t, w)
	if pushed["timestamp"] == nil {
		t.Fatalf("push response missing timestamp: %v", pushed)
	}

	w = doRequest(t, r, http.MethodGet, "/syncs/progress/doc1", "", authHeaders("aemiller", "h1"))
	if w.Code != http.StatusOK {
		t.Fatalf("pull: %d", w.Code)
	}
	got := decodeBody(t, w)
	if got["progress"] != "p50" || got["percentage"] != 0.5 {
		t.Fatalf("pull body = %v", got)
	}

	// never-pushed document
	w = doRequest(t, r, http.MethodGet, "/syncs/progress/doc2", "", authHeaders("aemiller", "h1"))
	if w.Code != http.StatusNotFound {
		t.Fatalf("pull absent: %d, want 404", w.Code)
	}
}

func TestEndToEnd_LastWriteWins(t *testing.T) {
	t.Parallel()
	r := newIntegrationRouter(t, true)

	w := doRequest(t, r, http.MethodPost, "/users/create", `{"username":"aemiller","password":"h1"}`, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("register: %d", w.Code)
	}

	for _, body := range []string{
		`{"document":"doc1","progress":"p10"}`,
		`{"document":"doc1","progress":"p50"}`,
		`{"document":"doc1","progress":"p90"}`,
	} {
		w = doRequest(t, r, http.MethodPut, "/syncs/progress", body, authHeaders("aemiller", "h1"))
		if w.Code != http.StatusOK {
			t.Fatalf("push: %d", w.Code)
		}
	}

	w = doRequest(t, r, http.MethodGet, "/syncs/progress/doc1", "", authHeaders("aemiller", "h1"))
	if got := decodeBody(t, w); got["progress"] != "p90" {
		t.Fatalf("want last push to win, got %v", got["progress"])
	}
}

func TestEndToEnd_UserIsolation(t *testing.T) {
	t.Parallel()
	r := newIntegrationRouter(t, true)

	for _, u := range []string{"alice", "bob"} {
		w := doRequest(t, r, http.MethodPost, "/users/create", `{"username":"`+u+`","password":"h-`+u+`"}`, nil)
		if w.Code != http.StatusCreated {
			t.Fatalf("register %s: %d", u, w.Code)
		}
	}

	w := doRequest(t, r, http.MethodPut, "/syncs/progress", `{"document":"doc1","progress":"pA"}`, authHeaders("alice", "h-alice"))
	if w.Code != http.StatusOK {
		t.Fatalf("push: %d", w.Code)
	}

	// same document id, different user: absent
	w = doRequest(t, r, http.MethodGet, "/syncs/progress/doc1", "", authHeaders("bob", "h-bob"))
	if w.Code != http.StatusNotFound {
		t.Fatalf("bob sees alice's progress: %d", w.Code)
	}
}

func TestEndToEnd_RegistrationDisabled(t *testing.T) {
	t.Parallel()
	r := newIntegrationRouter(t, false)

	w := doRequest(t, r, http.MethodPost, "/users/create", `{"username":"fresh-name","password":"h1"}`, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("register while disabled: %d", w.Code)
	}
	if body := decodeBody(t, w); body["code"] != float64(3001) {
		t.Fatalf("body = %v", body)
	}
}

func TestEndToEnd_TraversalRejected(t *testing.T) {
	t.Parallel()
	r := newIntegrationRouter(t, true)

	w := doRequest(t, r, http.MethodPost, "/users/create", `{"username":"aemiller","password":"h1"}`, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("register: %d", w.Code)
	}

	w = doRequest(t, r, http.MethodPut, "/syncs/progress", `{"document":"../../escape"}`, authHeaders("aemiller", "h1"))
	if w.Code != http.StatusForbidden {
		t.Fatalf("unsafe document id accepted: %d", w.Code)
	}

	// "auth" is reserved for the credential record
	w = doRequest(t, r, http.MethodPut, "/syncs/progress", `{"document":"auth"}`, authHeaders("aemiller", "h1"))
	if w.Code != http.StatusForbidden {
		t.Fatalf("reserved document id: %d", w.Code)
	}
	// credentials still intact
	w = doRequest(t, r, http.MethodGet, "/users/auth", "", authHeaders("aemiller", "h1"))
	if w.Code != http.StatusOK {
		t.Fatalf("auth after attack: %d", w.Code)
	}
}
