package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.pilab.hu/grants/domain"
)

// Store is an in-memory implementation of domain.Store.
type Store struct {
	mu      sync.RWMutex
	tokens  map[string]*domain.Token // keyed by token ID
	clients map[string]*domain.Client
	now     func() time.Time
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		tokens:  make(map[string]*domain.Token),
		clients: make(map[string]*domain.Client),
		now:     time.Now,
	}
}

// StoreToken saves a copy of token.
func (s *Store) StoreToken(_ context.Context, token *domain.Token) error {
	if token == nil || token.ID == "" {
		return errors.New("token id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tokens[token.ID]; exists {
		return errors.New("token already exists")
	}
	cp := *token
	s.tokens[token.ID] = &cp
	return nil
}

// ValidateAccessToken implements domain.TokenRepository.
func (s *Store) ValidateAccessToken(_ context.Context, tokenValue string) (*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	for _, t := range s.tokens {
		if t.TokenValue == tokenValue && t.TokenType == domain.TokenTypeAccessToken && t.IsActive(now) {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrTokenNotFound
}

// SaveClient creates or replaces a client.
func (s *Store) SaveClient(_ context.Context, client *domain.Client) error {
	if client == nil || client.ID == "" {
		return errors.New("client id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *client
	s.clients[client.ID] = &cp
	return nil
}

// ListUserAuthorizations implements domain.AuthorizationRepository.
func (s *Store) ListUserAuthorizations(_ context.Context, userID string) ([]domain.Authorization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tokens []*domain.Token
	names := make(map[string]string)
	for _, t := range s.tokens {
		if t.UserID != userID {
			continue
		}
		tokens = append(tokens, t)
		if c, ok := s.clients[t.ClientID]; ok {
			names[t.ClientID] = c.Name
		}
	}

	return domain.AuthorizationsFromTokens(tokens, names, s.now()), nil
}

// RevokeUserAuthorization implements domain.AuthorizationRepository.
func (s *Store) RevokeUserAuthorization(_ context.Context, userID, clientID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var revoked []string
	for _, t := range s.tokens {
		if t.UserID == userID && t.ClientID == clientID && !t.IsRevoked {
			t.IsRevoked = true
			revoked = append(revoked, t.TokenValue)
		}
	}
	return revoked, nil
}

// Close implements io.Closer.
func (s *Store) Close() error {
	return nil
}

var _ domain.Store = (*Store)(nil)
