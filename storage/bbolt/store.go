package bbolt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"go.etcd.io/bbolt"
	"go.pilab.hu/grants/domain"
)

var (
	tokensBucket      = []byte("tokens")       // token ID -> JSON token
	tokenValuesBucket = []byte("token_values") // token value -> token ID
	clientsBucket     = []byte("clients")      // client ID -> JSON client
)

// Store is a single-file implementation of domain.Store.
type Store struct {
	db  *bbolt.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
	}

	log.Info().Str("path", path).Msg("Opening bbolt database")
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bbolt db at %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{tokensBucket, tokenValuesBucket, clientsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, now: time.Now}, nil
}

// StoreToken saves a new token.
func (s *Store) StoreToken(_ context.Context, token *domain.Token) error {
	if token.ID == "" {
		return errors.New("token id is required")
	}
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		tokens := tx.Bucket(tokensBucket)
		if tokens.Get([]byte(token.ID)) != nil {
			return fmt.Errorf("token %s already exists", token.ID)
		}
		if err := tokens.Put([]byte(token.ID), data); err != nil {
			return err
		}
		return tx.Bucket(tokenValuesBucket).Put([]byte(token.TokenValue), []byte(token.ID))
	})
}

// ValidateAccessToken implements domain.TokenRepository.
func (s *Store) ValidateAccessToken(_ context.Context, tokenValue string) (*domain.Token, error) {
	var token *domain.Token
	err := s.db.View(func(tx *bbolt.Tx) error {
		id := tx.Bucket(tokenValuesBucket).Get([]byte(tokenValue))
		if id == nil {
			return domain.ErrTokenNotFound
		}
		data := tx.Bucket(tokensBucket).Get(id)
		if data == nil {
			return domain.ErrTokenNotFound
		}
		var t domain.Token
		if err := json.Unmarshal(data, &t); err != nil {
			return fmt.Errorf("failed to decode token: %w", err)
		}
		token = &t
		return nil
	})
	if err != nil {
		return nil, err
	}

	if token.TokenType != domain.TokenTypeAccessToken || !token.IsActive(s.now()) {
		return nil, domain.ErrTokenNotFound
	}
	return token, nil
}

// SaveClient creates or replaces a client.
func (s *Store) SaveClient(_ context.Context, client *domain.Client) error {
	data, err := json.Marshal(client)
	if err != nil {
		return fmt.Errorf("failed to encode client: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(clientsBucket).Put([]byte(client.ID), data)
	})
}

// ListUserAuthorizations scans the token bucket for the user's tokens.
func (s *Store) ListUserAuthorizations(_ context.Context, userID string) ([]domain.Authorization, error) {
	var tokens []*domain.Token
	names := make(map[string]string)

	err := s.db.View(func(tx *bbolt.Tx) error {
		clients := tx.Bucket(clientsBucket)
		return tx.Bucket(tokensBucket).ForEach(func(_, v []byte) error {
			var t domain.Token
			if err := json.Unmarshal(v, &t); err != nil {
				return fmt.Errorf("failed to decode token: %w", err)
			}
			if t.UserID != userID {
				return nil
			}
			tokens = append(tokens, &t)

			if _, seen := names[t.ClientID]; !seen {
				var c domain.Client
				if data := clients.Get([]byte(t.ClientID)); data != nil && json.Unmarshal(data, &c) == nil {
					names[t.ClientID] = c.Name
				} else {
					names[t.ClientID] = ""
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return domain.AuthorizationsFromTokens(tokens, names, s.now()), nil
}

// RevokeUserAuthorization implements domain.AuthorizationRepository.
func (s *Store) RevokeUserAuthorization(_ context.Context, userID, clientID string) ([]string, error) {
	var revoked []string
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(tokensBucket)
		updates := make(map[string][]byte)

		err := bucket.ForEach(func(k, v []byte) error {
			var t domain.Token
			if err := json.Unmarshal(v, &t); err != nil {
				return fmt.Errorf("failed to decode token: %w", err)
			}
			if t.UserID != userID || t.ClientID != clientID || t.IsRevoked {
				return nil
			}
			t.IsRevoked = true
			data, err := json.Marshal(&t)
			if err != nil {
				return err
			}
			updates[string(k)] = data
			revoked = append(revoked, t.TokenValue)
			return nil
		})
		if err != nil {
			return err
		}

		// Writes are deferred; bbolt forbids mutating a bucket during ForEach.
		for k, data := range updates {
			if err := bucket.Put([]byte(k), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return revoked, nil
}

// Close closes the database file.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ domain.Store = (*Store)(nil)
