package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/prolink/credits-system/internal/core/domain"
)

const collectionIdentities = "identities"

// IdentityRepository reads identity records owned by the profile store. This
// subsystem never writes them.
type IdentityRepository struct {
	col *mongo.Collection
}

func NewIdentityRepository(db *mongo.Database) *IdentityRepository {
	return &IdentityRepository{col: db.Collection(collectionIdentities)}
}

func (r *IdentityRepository) GetIdentity(ctx context.Context, userID string) (*domain.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var identity domain.Identity
	err := r.col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&identity)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}
	return &identity, nil
}
