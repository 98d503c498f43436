package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.pilab.hu/grants/cache"
	"go.pilab.hu/grants/domain"
	"go.pilab.hu/grants/internal/audit"
	"go.pilab.hu/grants/internal/metrics"
	"go.pilab.hu/grants/log"
	"go.pilab.hu/grants/tracing"
)

var (
	// ErrUnauthenticated is returned when no user id is available.
	ErrUnauthenticated = errors.New("user is not authenticated")
	// ErrInvalidClientID is returned when a revocation names no client.
	ErrInvalidClientID = errors.New("client id is required")
)

// AuthorizationService lists and revokes the applications a user has
// authorized.
type AuthorizationService struct {
	repo    domain.AuthorizationRepository
	cache   cache.TokenStore
	audit   *audit.Logger
	metrics *metrics.Metrics
	logger  log.Logger
	tracer  trace.Tracer
}

// Option configures an AuthorizationService.
type Option func(*AuthorizationService)

// WithTokenCache evicts revoked tokens from store.
func WithTokenCache(store cache.TokenStore) Option {
	return func(s *AuthorizationService) { s.cache = store }
}

// WithAuditLogger records revocations on a.
func WithAuditLogger(a *audit.Logger) Option {
	return func(s *AuthorizationService) { s.audit = a }
}

// WithMetrics counts list and revoke calls on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *AuthorizationService) { s.metrics = m }
}

// WithLogger sets the service logger.
func WithLogger(l log.Logger) Option {
	return func(s *AuthorizationService) { s.logger = l }
}

// NewAuthorizationService creates a new AuthorizationService.
func NewAuthorizationService(repo domain.AuthorizationRepository, opts ...Option) *AuthorizationService {
	s := &AuthorizationService{
		repo:   repo,
		logger: log.Nop(),
		tracer: tracing.Tracer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the user's authorizations in display order.
func (s *AuthorizationService) List(ctx context.Context, userID string) ([]domain.Authorization, error) {
	ctx, span := s.tracer.Start(ctx, "AuthorizationService.List")
	defer span.End()

	if userID == "" {
		return nil, ErrUnauthenticated
	}
	span.SetAttributes(attribute.String("user.id", userID))

	auths, err := s.repo.ListUserAuthorizations(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		s.logger.Error(ctx, "Failed to list authorizations", err, log.Fields{"user_id": userID})
		return nil, fmt.Errorf("failed to list authorizations: %w", err)
	}

	if s.metrics != nil {
		s.metrics.AuthorizationsListed.Inc()
	}
	s.logger.Debug(ctx, "Listed authorizations", log.Fields{"user_id": userID, "count": len(auths)})

	return auths, nil
}

// Revoke revokes every token of the user issued to the client. Revoking a
// client the user never authorized succeeds.
func (s *AuthorizationService) Revoke(ctx context.Context, userID, clientID string) error {
	ctx, span := s.tracer.Start(ctx, "AuthorizationService.Revoke")
	defer span.End()

	if userID == "" {
		return ErrUnauthenticated
	}
	if strings.TrimSpace(clientID) == "" {
		return ErrInvalidClientID
	}
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.String("client.id", clientID),
	)

	revoked, err := s.repo.RevokeUserAuthorization(ctx, userID, clientID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "revoke failed")
		s.logger.Error(ctx, "Failed to revoke authorization", err, log.Fields{"user_id": userID, "client_id": clientID})
		if s.metrics != nil {
			s.metrics.RevokeFailures.Inc()
		}
		s.record(userID, clientID, 0, err)
		return fmt.Errorf("failed to revoke authorization: %w", err)
	}

	if s.cache != nil {
		for _, value := range revoked {
			if err := s.cache.Delete(ctx, value); err != nil {
				// The cache entry expires on its own; the token is already revoked.
				s.logger.Warn(ctx, "Failed to evict revoked token from cache", log.Fields{"client_id": clientID, "error": err.Error()})
			}
		}
	}

	if s.metrics != nil {
		s.metrics.AuthorizationsRevoked.Inc()
		s.metrics.TokensRevoked.Add(float64(len(revoked)))
	}
	s.record(userID, clientID, len(revoked), nil)
	s.logger.Info(ctx, "Authorization revoked", log.Fields{"user_id": userID, "client_id": clientID, "tokens": len(revoked)})

	return nil
}

func (s *AuthorizationService) record(userID, clientID string, tokens int, err error) {
	if s.audit == nil {
		return
	}
	s.audit.Log(audit.ActionRevokeAuthorization, userID, clientID, fmt.Sprintf("tokens=%d", tokens), err)
}
