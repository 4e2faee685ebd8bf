package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/brk3/habitpanda/internal/logger"
	"github.com/coreos/go-oidc/v3/oidc"
)

type userCtxKey struct{}

// User is the authenticated principal attached to the request context.
type User struct {
	Subject string
	Email   string
	UserID  string
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// API key first: "Authorization: Bearer hp_..."
		if token, ok := bearerToken(r); ok && strings.HasPrefix(token, apiKeyTokenPrefix) {
			userID, found, err := s.store.GetAPIKey(hashAPIKey(token))
			if err != nil {
				logger.Error("API key lookup failed", "error", err)
				writeError(w, http.StatusInternalServerError, "auth storage error")
				return
			}
			if !found {
				recordAuthEvent("verification", "failed", "apikey")
				s.handleAuthFailure(w, r, false)
				return
			}
			recordAuthEvent("verification", "success", "apikey")
			u := &User{UserID: userID, Subject: "apikey"}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userCtxKey{}, u)))
			return
		}

		providerID, rawIDToken := s.idTokenFromRequest(r)
		provider, ok := s.authProviders[providerID]
		if rawIDToken == "" || !ok {
			recordAuthEvent("verification", "missing_token", "unknown")
			s.handleAuthFailure(w, r, false)
			return
		}

		idTok, err := provider.idVerifier.Verify(r.Context(), rawIDToken)
		if err != nil {
			recordAuthEvent("verification", "failed", providerID)
			refreshed, ok := s.tryRefreshIDToken(r.Context(), providerID, rawIDToken)
			if !ok {
				recordAuthEvent("refresh", "failed", providerID)
				s.handleAuthFailure(w, r, true)
				return
			}
			idTok, err = provider.idVerifier.Verify(r.Context(), refreshed)
			if err != nil {
				recordAuthEvent("refresh", "verification_failed", providerID)
				s.handleAuthFailure(w, r, true)
				return
			}
			recordAuthEvent("refresh", "success", providerID)
			s.setSessionCookie(w, providerID+":"+refreshed)
		} else {
			recordAuthEvent("verification", "success", providerID)
		}

		var claims map[string]any
		if err := idTok.Claims(&claims); err != nil {
			logger.Error("Failed to extract token claims", "error", err)
			s.handleAuthFailure(w, r, true)
			return
		}
		u := &User{
			Subject: idTok.Subject,
			Email:   strClaim(claims, "email"),
			UserID:  userIDFromClaims(claims),
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userCtxKey{}, u)))
	})
}

// idTokenFromRequest extracts a provider-prefixed ID token from the session
// cookie or the Authorization header ("provider:jwt").
func (s *Server) idTokenFromRequest(r *http.Request) (providerID, rawIDToken string) {
	if c, err := r.Cookie(sessionCookieName); err == nil {
		var prefixed string
		if err := s.sessionCookie.Decode(sessionCookieName, c.Value, &prefixed); err == nil {
			if pid, token, err := parseProviderToken(prefixed); err == nil {
				return pid, token
			}
		}
	}
	if token, ok := bearerToken(r); ok {
		if pid, jwt, err := parseProviderToken(token); err == nil {
			if _, exists := s.authProviders[pid]; exists {
				return pid, jwt
			}
		}
	}
	return "", ""
}

func bearerToken(r *http.Request) (string, bool) {
	ah := r.Header.Get("Authorization")
	if !strings.HasPrefix(ah, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(ah, "Bearer "), true
}

// parseProviderToken splits a "provider:jwt" token.
func parseProviderToken(token string) (providerID, jwt string, err error) {
	providerID, jwt, found := strings.Cut(token, ":")
	if !found || providerID == "" || jwt == "" {
		return "", "", fmt.Errorf("invalid token format: expected provider:jwt")
	}
	return providerID, jwt, nil
}

func strClaim(m map[string]any, k string) string {
	v, _ := m[k].(string)
	return v
}

// tryRefreshIDToken exchanges the stored oauth2 refresh token for a fresh ID
// token when verification of the presented one failed (typically expiry).
func (s *Server) tryRefreshIDToken(ctx context.Context, providerID, expiredIDToken string) (string, bool) {
	provider := s.authProviders[providerID]

	// parse the expired token (signature still checked) to recover the user
	verifier := provider.oidcProv.Verifier(&oidc.Config{
		ClientID:        provider.oauth2.ClientID,
		SkipExpiryCheck: true,
	})
	idTok, err := verifier.Verify(ctx, expiredIDToken)
	if err != nil {
		return "", false
	}
	var claims map[string]any
	if err := idTok.Claims(&claims); err != nil {
		return "", false
	}
	userID := userIDFromClaims(claims)
	if userID == "" {
		return "", false
	}

	stored, exists, err := s.store.GetRefreshToken(userID)
	if err != nil || !exists {
		return "", false
	}

	fresh, err := provider.oauth2.TokenSource(ctx, stored).Token()
	if err != nil {
		logger.Debug("Token refresh failed", "user_id", userID, "error", err)
		if delErr := s.store.DeleteRefreshToken(userID); delErr != nil {
			logger.Error("Failed to delete stale refresh token", "user_id", userID, "error", delErr)
		}
		return "", false
	}
	if err := s.store.PutRefreshToken(userID, fresh); err != nil {
		logger.Error("Failed to persist refreshed token", "user_id", userID, "error", err)
	}

	newIDToken, ok := fresh.Extra("id_token").(string)
	if !ok || newIDToken == "" {
		return "", false
	}
	return newIDToken, true
}

func (s *Server) setSessionCookie(w http.ResponseWriter, prefixedToken string) {
	val, err := s.sessionCookie.Encode(sessionCookieName, prefixedToken)
	if err != nil {
		logger.Error("Failed to encode session cookie", "error", err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    val,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sessionMaxAge.Seconds()),
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

// handleAuthFailure redirects browsers to the login page and 401s API calls.
func (s *Server) handleAuthFailure(w http.ResponseWriter, r *http.Request, clearCookie bool) {
	if clearCookie {
		clearSessionCookie(w)
	}
	accept := r.Header.Get("Accept")
	if r.Method == http.MethodGet && (accept == "" || strings.Contains(accept, "text/html")) {
		http.Redirect(w, r, "/auth/login", http.StatusFound)
		return
	}
	if clearCookie {
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	} else {
		w.Header().Set("WWW-Authenticate", `Bearer realm="habitpanda"`)
	}
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}
