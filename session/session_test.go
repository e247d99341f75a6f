package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"transpo-cli/model"
	"transpo-cli/service"
	"transpo-cli/store"
)

func setTestConfigDir(t *testing.T) {
	t.Helper()
	root := t.TempDir()
	t.Setenv("HOME", root)
	t.Setenv("XDG_CONFIG_HOME", root)
	t.Setenv("XDG_CACHE_HOME", root)
}

func newBackend(t *testing.T, role string) (*httptest.Server, *service.Client) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/auth/login":
			http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "abc", Path: "/"})
			_, _ = w.Write([]byte(`{"message":"ok","username":"carla"}`))
		case "/auth/whoami":
			if c, err := r.Cookie("JSESSIONID"); err != nil || c.Value != "abc" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"message":"Not authenticated"}`))
				return
			}
			_, _ = w.Write([]byte(`{"authenticated":true,"username":"carla","role":"` + role + `","assignedBusNumber":"B-12"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	client, err := service.NewClient(service.Options{BaseURL: server.URL, MaxAttempts: 1})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return server, client
}

func TestRole_EmptySessionHasNoRole(t *testing.T) {
	_, client := newBackend(t, "ROLE_CONDUCTOR")
	ctx := NewContext(client, false, nil)

	if ctx.Role() != "" {
		t.Fatalf("expected empty role, got %q", ctx.Role())
	}
	if _, ok := ctx.Current(); ok {
		t.Fatal("expected no session")
	}
}

func TestLogin_ResolvesRoleAndPersists(t *testing.T) {
	setTestConfigDir(t)
	_, client := newBackend(t, "ROLE_CONDUCTOR")
	ctx := NewContext(client, true, nil)

	s, err := ctx.Login(context.Background(), "carla", "secret")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if s.Role != model.RoleConductor || ctx.Role() != model.RoleConductor {
		t.Fatalf("expected conductor role, got %q", s.Role)
	}
	if s.AssignedBusNumber != "B-12" {
		t.Fatalf("expected assigned bus B-12, got %q", s.AssignedBusNumber)
	}

	record, ok, err := store.LoadSession()
	if err != nil || !ok {
		t.Fatalf("expected persisted session, got ok=%v err=%v", ok, err)
	}
	if record.Username != "carla" || len(record.Cookies) != 1 {
		t.Fatalf("unexpected record: %+v", record)
	}
}

func TestRestore_UsesSavedCookies(t *testing.T) {
	setTestConfigDir(t)
	server, first := newBackend(t, "ROLE_DRIVER")
	if _, err := NewContext(first, true, nil).Login(context.Background(), "carla", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}

	second, err := service.NewClient(service.Options{BaseURL: server.URL, MaxAttempts: 1})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	ctx := NewContext(second, true, nil)
	s, err := ctx.Restore(context.Background())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if s.Role != model.RoleDriver {
		t.Fatalf("expected driver role, got %q", s.Role)
	}
}

func TestRestore_NothingSaved(t *testing.T) {
	setTestConfigDir(t)
	_, client := newBackend(t, "ROLE_PASSENGER")

	_, err := NewContext(client, true, nil).Restore(context.Background())
	if !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestRestore_RejectedSessionIsDeleted(t *testing.T) {
	setTestConfigDir(t)
	server, client := newBackend(t, "ROLE_PASSENGER")
	err := store.SaveSession(store.SessionRecord{
		BaseURL:  server.URL,
		Username: "carla",
		Cookies:  []store.SavedCookie{{Name: "JSESSIONID", Value: "expired"}},
	})
	if err != nil {
		t.Fatalf("save session: %v", err)
	}

	ctx := NewContext(client, true, nil)
	if _, err := ctx.Restore(context.Background()); !service.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
	if _, ok, _ := store.LoadSession(); ok {
		t.Fatal("expected rejected session to be deleted")
	}
	if ctx.Role() != "" {
		t.Fatalf("expected empty role, got %q", ctx.Role())
	}
}

func TestLogout_InvalidatesEverything(t *testing.T) {
	setTestConfigDir(t)
	_, client := newBackend(t, "ROLE_CONDUCTOR")
	ctx := NewContext(client, true, nil)
	if _, err := ctx.Login(context.Background(), "carla", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := ctx.Logout(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if ctx.Role() != "" {
		t.Fatalf("expected empty role, got %q", ctx.Role())
	}
	if _, ok, _ := store.LoadSession(); ok {
		t.Fatal("expected persisted session to be deleted")
	}
	if len(client.SessionCookies()) != 0 {
		t.Fatalf("expected cookies cleared, got %v", client.SessionCookies())
	}
	if _, err := client.Whoami(context.Background()); !service.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized after logout, got %v", err)
	}
}
