package web

import (
	"context"
	"log"
	"net/http"

	"github.com/google/uuid"
)

const sessionCookieName = "unitconv_session"

type sessionKey struct{}

// withSession makes sure every request carries a session id, issuing a new
// UUID cookie for first-time visitors.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := ""
		if c, err := r.Cookie(sessionCookieName); err == nil {
			if _, parseErr := uuid.Parse(c.Value); parseErr == nil {
				sessionID = c.Value
			}
		}
		if sessionID == "" {
			sessionID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookieName,
				Value:    sessionID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		if err := s.conv.Touch(r.Context(), sessionID); err != nil {
			log.Printf("session touch error session=%s: %v", sessionID, err)
		}
		ctx := context.WithValue(r.Context(), sessionKey{}, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(r *http.Request) string {
	id, _ := r.Context().Value(sessionKey{}).(string)
	return id
}
