package web_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hypergopher/trailblog/web"
)

func sessionFrom(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "trailblog_session" {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestAuth_LoginAndIsAdmin(t *testing.T) {
	auth := web.NewAuth("secret", "admin", "hunter2")

	w := httptest.NewRecorder()
	require.True(t, auth.Login(w, "admin", "hunter2"))
	session := sessionFrom(t, w)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(session)
	assert.True(t, auth.IsAdmin(req))

	// No cookie, no admin.
	assert.False(t, auth.IsAdmin(httptest.NewRequest(http.MethodGet, "/", nil)))
}

func TestAuth_RejectsBadCredentials(t *testing.T) {
	auth := web.NewAuth("secret", "admin", "hunter2")

	tests := []struct {
		name string
		user string
		pass string
	}{
		{"wrong password", "admin", "wrong"},
		{"wrong user", "root", "hunter2"},
		{"both empty", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			assert.False(t, auth.Login(w, tc.user, tc.pass))
			assert.Empty(t, w.Result().Cookies())
		})
	}
}

func TestAuth_RejectsTamperedToken(t *testing.T) {
	auth := web.NewAuth("secret", "admin", "hunter2")

	w := httptest.NewRecorder()
	require.True(t, auth.Login(w, "admin", "hunter2"))
	session := sessionFrom(t, w)

	// A token minted under a different secret is not a session.
	other := web.NewAuth("another-secret", "admin", "hunter2")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(session)
	assert.False(t, other.IsAdmin(req))

	// Garbage in the cookie is not a session either.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "trailblog_session", Value: "not.a.jwt"})
	assert.False(t, auth.IsAdmin(req))
}

func TestAuth_LoginURL(t *testing.T) {
	auth := web.NewAuth("secret", "admin", "hunter2")

	assert.Equal(t, "/login", auth.LoginURL(""))
	assert.Equal(t, "/login", auth.LoginURL("/"))
	assert.Equal(t, "/login?next=%2Fnewpost", auth.LoginURL("/newpost"))
}
