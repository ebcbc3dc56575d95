// internal/handlers/session.go
package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/reelparty/reelparty/internal/auth"
)

const sessionCookie = "session_token"

// EnsureSession returns the player id bound to the request's session
// cookie, minting a fresh id (and cookie) when the cookie is absent or
// invalid. Must run before the websocket upgrade so the Set-Cookie header
// rides the handshake response.
func EnsureSession(w http.ResponseWriter, r *http.Request) uuid.UUID {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if id, err := auth.ParseToken(cookie.Value); err == nil {
			return id
		}
	}

	id := uuid.New()
	token, err := auth.CreateToken(id)
	if err == nil {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    token,
			HttpOnly: true,
			Path:     "/",
		})
	}
	return id
}
