package service

import (
	"fmt"
	"sync"
	"time"

	"paper-analyzer/internal/domain"
)

const tokenCacheTTL = 30 * time.Second

type tokenCacheEntry struct {
	user      *domain.SupabaseUser
	expiresAt time.Time
}

// AuthService validates bearer tokens against Supabase Auth. Validated users
// are cached per token for a short time so that a burst of requests does not
// hit the auth server each time.
type AuthService struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
	now            func() time.Time

	cacheMu sync.RWMutex
	cache   map[string]tokenCacheEntry
}

func NewAuthService(
	supabaseClient domain.SupabaseClient,
	logger domain.Logger,
) *AuthService {
	return &AuthService{
		supabaseClient: supabaseClient,
		logger:         logger,
		now:            time.Now,
		cache:          make(map[string]tokenCacheEntry),
	}
}

// Enabled reports whether tokens are checked. Without Supabase every request
// runs as domain.LocalUser.
func (s *AuthService) Enabled() bool {
	return s.supabaseClient != nil && s.supabaseClient.IsConfigured()
}

// ValidateToken returns the user owning token.
func (s *AuthService) ValidateToken(token string) (*domain.SupabaseUser, error) {
	if !s.Enabled() {
		return domain.LocalUser(), nil
	}
	if token == "" {
		return nil, domain.ErrInvalidToken
	}

	now := s.now()
	s.cacheMu.RLock()
	entry, ok := s.cache[token]
	s.cacheMu.RUnlock()
	if ok && now.Before(entry.expiresAt) {
		return entry.user, nil
	}

	user, err := s.supabaseClient.ValidateToken(token)
	if err != nil {
		s.logger.Error("Failed to validate token with Supabase", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	s.cacheMu.Lock()
	for k, e := range s.cache {
		if !now.Before(e.expiresAt) {
			delete(s.cache, k)
		}
	}
	s.cache[token] = tokenCacheEntry{user: user, expiresAt: now.Add(tokenCacheTTL)}
	s.cacheMu.Unlock()

	return user, nil
}
