package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.pilab.hu/grants/domain"
)

// Store implements domain.Store on top of the token and client collections.
type Store struct {
	*TokenRepository
	*ClientRepository

	client *mongo.Client
	now    func() time.Time
}

// NewStore creates a Store on db and ensures its indexes. The client is
// disconnected on Close; pass nil when the caller owns it.
func NewStore(ctx context.Context, client *mongo.Client, db *mongo.Database) (*Store, error) {
	s := &Store{
		TokenRepository:  NewTokenRepository(db),
		ClientRepository: NewClientRepository(db),
		client:           client,
		now:              time.Now,
	}

	if err := s.TokenRepository.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	if err := s.ClientRepository.EnsureIndexes(ctx); err != nil {
		return nil, err
	}

	return s, nil
}

type authorizationDoc struct {
	ClientID string          `bson:"_id"`
	IssuedAt time.Time       `bson:"issued_at"`
	Scopes   []string        `bson:"scopes"`
	Clients  []domain.Client `bson:"client"`
}

// ListUserAuthorizations groups the user's live tokens by client and joins
// the client names.
func (s *Store) ListUserAuthorizations(ctx context.Context, userID string) ([]domain.Authorization, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"user_id":    userID,
			"is_revoked": false,
			"expires_at": bson.M{"$gt": s.now().UTC()},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":       "$client_id",
			"issued_at": bson.M{"$min": "$created_at"},
			"scopes":    bson.M{"$addToSet": "$scope"},
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         ClientsCollection,
			"localField":   "_id",
			"foreignField": "client_id",
			"as":           "client",
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "issued_at", Value: 1}, {Key: "_id", Value: 1}}}},
	}

	cursor, err := s.TokenRepository.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate authorizations: %w", err)
	}

	var docs []authorizationDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode authorizations: %w", err)
	}

	out := make([]domain.Authorization, 0, len(docs))
	for _, d := range docs {
		auth := domain.Authorization{
			ClientID:   d.ClientID,
			ClientName: d.ClientID,
			Scope:      domain.MergeScopes(d.Scopes...),
			IssuedAt:   d.IssuedAt,
		}
		if len(d.Clients) > 0 && d.Clients[0].Name != "" {
			auth.ClientName = d.Clients[0].Name
		}
		out = append(out, auth)
	}

	return out, nil
}

// RevokeUserAuthorization implements domain.AuthorizationRepository.
func (s *Store) RevokeUserAuthorization(ctx context.Context, userID, clientID string) ([]string, error) {
	return s.TokenRepository.revokeUserClientTokens(ctx, userID, clientID)
}

// Close disconnects the owned client, if any.
func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ domain.Store = (*Store)(nil)
