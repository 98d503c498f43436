package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.pilab.hu/grants/domain"
)

// TokenRepository implements domain.TokenRepository on the token collection.
type TokenRepository struct {
	coll *mongo.Collection
}

func NewTokenRepository(db *mongo.Database) *TokenRepository {
	return &TokenRepository{
		coll: db.Collection(TokensCollection),
	}
}

// EnsureIndexes creates the indexes token lookups and grant listings rely on.
func (r *TokenRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "token_value", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "client_id", Value: 1}, {Key: "is_revoked", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create token indexes: %w", err)
	}
	return nil
}

func (r *TokenRepository) StoreToken(ctx context.Context, token *domain.Token) error {
	_, err := r.coll.InsertOne(ctx, token)
	return err
}

func (r *TokenRepository) ValidateAccessToken(ctx context.Context, tokenValue string) (*domain.Token, error) {
	var token domain.Token
	err := r.coll.FindOne(ctx, bson.M{
		"token_value": tokenValue, "token_type": domain.TokenTypeAccessToken,
		"is_revoked": false, "expires_at": bson.M{"$gt": time.Now().UTC()},
	}).Decode(&token)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// revokeUserClientTokens marks every live token of the user for the client as
// revoked and returns the revoked token values.
func (r *TokenRepository) revokeUserClientTokens(ctx context.Context, userID, clientID string) ([]string, error) {
	filter := bson.M{"user_id": userID, "client_id": clientID, "is_revoked": false}

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetProjection(bson.M{"token_value": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to find tokens to revoke: %w", err)
	}
	var docs []struct {
		TokenValue string `bson:"token_value"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode tokens to revoke: %w", err)
	}
	if len(docs) == 0 {
		log.Debug().Str("user_id", userID).Str("client_id", clientID).Msg("No tokens to revoke")
		return nil, nil
	}

	values := make([]string, 0, len(docs))
	for _, d := range docs {
		values = append(values, d.TokenValue)
	}

	result, err := r.coll.UpdateMany(ctx, bson.M{"token_value": bson.M{"$in": values}, "is_revoked": false},
		bson.M{"$set": bson.M{"is_revoked": true}})
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("client_id", clientID).Msg("Error revoking tokens")
		return nil, fmt.Errorf("failed to revoke tokens: %w", err)
	}
	log.Debug().
		Str("user_id", userID).
		Str("client_id", clientID).
		Int64("modified", result.ModifiedCount).
		Msg("Tokens marked as revoked.")

	return values, nil
}
