package server

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/brk3/habitpanda/internal/config"
	"github.com/brk3/habitpanda/internal/logger"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gorilla/securecookie"
	"golang.org/x/oauth2"
)

const (
	sessionCookieName = "session"
	sessionMaxAge     = 24 * time.Hour
	// API keys are prefixed so the middleware can tell them apart from
	// provider-prefixed OIDC bearer tokens.
	apiKeyTokenPrefix = "hp_"
)

// AuthProvider is one configured OIDC identity provider.
type AuthProvider struct {
	name       string
	oauth2     *oauth2.Config
	idVerifier *oidc.IDTokenVerifier
	oidcProv   *oidc.Provider
	state      *stateStore
}

// stateStore holds in-flight login attempts: PKCE verifier plus the return
// path, keyed by the opaque state parameter. Entries expire after ttl.
type stateStore struct {
	ttl time.Duration
	mu  sync.Mutex
	m   map[string]authState
}

type authState struct {
	Verifier string
	Return   string
	ExpireAt time.Time
}

func newStateStore(ttl time.Duration) *stateStore {
	return &stateStore{ttl: ttl, m: make(map[string]authState)}
}

func (s *stateStore) Put(key string, v authState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for k, st := range s.m {
		if now.After(st.ExpireAt) {
			delete(s.m, k)
		}
	}
	s.m[key] = v
}

func (s *stateStore) GetAndDelete(key string) (authState, bool) {
	s.mu.Lock()
	v, ok := s.m[key]
	delete(s.m, key)
	s.mu.Unlock()
	if ok && time.Now().After(v.ExpireAt) {
		return authState{}, false
	}
	return v, ok
}

// ConfigureOIDCProviders builds the provider map and the session cookie codec
// from config. Cookie keys are generated per process, so restarting the
// server invalidates existing sessions.
func ConfigureOIDCProviders(ctx context.Context, cfg *config.Config) (map[string]*AuthProvider, *securecookie.SecureCookie, error) {
	logger.Info("Configuring OIDC providers", "count", len(cfg.OIDCProviders))

	hashKey := securecookie.GenerateRandomKey(64)
	blockKey := securecookie.GenerateRandomKey(32)
	if hashKey == nil || blockKey == nil {
		return nil, nil, fmt.Errorf("failed to generate secure cookie keys")
	}
	sessionCookie := securecookie.New(hashKey, blockKey)
	sessionCookie.MaxAge(int(sessionMaxAge.Seconds()))

	providers := make(map[string]*AuthProvider, len(cfg.OIDCProviders))
	for _, pc := range cfg.OIDCProviders {
		prov, err := oidc.NewProvider(ctx, pc.IssuerURL)
		if err != nil {
			return nil, nil, fmt.Errorf("create OIDC provider %s: %w", pc.Id, err)
		}
		providers[pc.Id] = &AuthProvider{
			name:       pc.Name,
			oidcProv:   prov,
			idVerifier: prov.Verifier(&oidc.Config{ClientID: pc.ClientID}),
			oauth2: &oauth2.Config{
				ClientID:     pc.ClientID,
				ClientSecret: pc.ClientSecret,
				Endpoint:     prov.Endpoint(),
				RedirectURL:  pc.RedirectURL,
				Scopes:       pc.Scopes,
			},
			state: newStateStore(5 * time.Minute),
		}
		logger.Info("OIDC provider configured", "id", pc.Id, "name", pc.Name, "issuer", pc.IssuerURL)
	}

	return providers, sessionCookie, nil
}

func hashAPIKey(apiKey string) string {
	hash := sha256.Sum256([]byte(apiKey))
	return fmt.Sprintf("%x", hash)
}

// userIDFromClaims derives a stable user identifier from the issuer and
// subject claims.
func userIDFromClaims(claims map[string]any) string {
	iss, ok := claims["iss"].(string)
	if !ok {
		return ""
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return ""
	}
	hash := sha256.Sum256([]byte(iss + "|" + sub))
	return fmt.Sprintf("user-%x", hash[:8])
}
