package web

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	sessionCookie = "trailblog_session"
	sessionTTL    = 7 * 24 * time.Hour
)

// Auth is the single authorization gate for every mutating entry point. It
// answers "is there a logged-in admin" and builds the login/logout flow;
// handlers never re-check credentials themselves.
type Auth struct {
	secret   []byte
	user     string
	password string
}

// NewAuth creates the admin gate. A single admin account is enough for this
// blog; the author is its only writer.
func NewAuth(secret, user, password string) *Auth {
	return &Auth{secret: []byte(secret), user: user, password: password}
}

type sessionClaims struct {
	Admin bool `json:"admin"`
	jwt.RegisteredClaims
}

// Login checks the credentials and, if they match, sets the session cookie.
func (a *Auth) Login(w http.ResponseWriter, user, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(a.user)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	if !userOK || !passOK {
		return false
	}

	claims := sessionClaims{
		Admin: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(sessionTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return false
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sessionTTL.Seconds()),
	})
	return true
}

// Logout clears the session cookie.
func (a *Auth) Logout(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// IsAdmin reports whether the request carries a valid admin session.
func (a *Auth) IsAdmin(r *http.Request) bool {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return false
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return false
	}
	return claims.Admin
}

// LoginURL builds the sign-in URL that returns to next after login.
func (a *Auth) LoginURL(next string) string {
	if next == "" || next == "/" {
		return "/login"
	}
	return "/login?next=" + url.QueryEscape(next)
}

// RequireAdmin redirects anyone without an admin session to the sign-in
// prompt. Authorization failure is a redirect here, never an error page.
func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.IsAdmin(r) {
			http.Redirect(w, r, a.LoginURL(r.URL.Path), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
