package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const collectionConversations = "conversations"

// ConversationRepository answers whether a professional and a client share an
// active conversation. The messaging surface owns the collection; this repo
// only reads it to gate unlock attempts.
type ConversationRepository struct {
	col *mongo.Collection
}

func NewConversationRepository(db *mongo.Database) *ConversationRepository {
	return &ConversationRepository{col: db.Collection(collectionConversations)}
}

func (r *ConversationRepository) Exists(ctx context.Context, professionalID, clientID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{
		"professional_id": professionalID,
		"client_id":       clientID,
	})
	if err != nil {
		return false, fmt.Errorf("count conversations: %w", err)
	}
	return n > 0, nil
}
