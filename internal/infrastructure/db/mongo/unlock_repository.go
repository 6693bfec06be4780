package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/prolink/credits-system/internal/core/domain"
)

const collectionUnlockGrants = "unlock_grants"

// UnlockRepository stores unlock grants. The unique compound index on
// (professional_id, client_id) is what turns concurrent spends for the same
// pair into exactly one winner; everything else in SpendAndGrant hangs off
// that constraint inside one transaction.
type UnlockRepository struct {
	client   *mongo.Client
	grants   *mongo.Collection
	entries  *mongo.Collection
	balances *mongo.Collection
}

func NewUnlockRepository(client *mongo.Client, db *mongo.Database) *UnlockRepository {
	return &UnlockRepository{
		client:   client,
		grants:   db.Collection(collectionUnlockGrants),
		entries:  db.Collection(collectionLedgerEntries),
		balances: db.Collection(collectionBalances),
	}
}

// FindGrant returns the grant for the pair, if any.
func (r *UnlockRepository) FindGrant(ctx context.Context, professionalID, clientID string) (*domain.UnlockGrant, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var grant domain.UnlockGrant
	err := r.grants.FindOne(ctx, bson.M{
		"professional_id": professionalID,
		"client_id":       clientID,
	}).Decode(&grant)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrGrantNotFound
		}
		return nil, fmt.Errorf("find grant: %w", err)
	}
	return &grant, nil
}

// SpendAndGrant creates the grant, debits one unit, and appends the UNLOCK
// ledger entry in a single transaction. The grant insert goes first so a
// concurrent duplicate trips the unique index before any balance movement;
// the whole transaction rolls back on any failure, so a grant never exists
// without its debit and an UNLOCK debit never exists without its grant.
func (r *UnlockRepository) SpendAndGrant(ctx context.Context, professionalID, clientID string) (*domain.UnlockGrant, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	session, err := r.client.StartSession()
	if err != nil {
		return nil, 0, fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	now := time.Now().UTC()
	grant := &domain.UnlockGrant{
		ID:             uuid.NewString(),
		ProfessionalID: professionalID,
		ClientID:       clientID,
		LedgerEntryID:  uuid.NewString(),
		GrantedAt:      now,
	}

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.grants.InsertOne(sc, grant); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, domain.ErrAlreadyUnlocked
			}
			return nil, fmt.Errorf("insert grant: %w", err)
		}

		res := r.balances.FindOneAndUpdate(sc,
			bson.M{"_id": professionalID, "balance": bson.M{"$gte": 1}},
			bson.M{"$inc": bson.M{"balance": -1}, "$set": bson.M{"updated_at": now}},
			options.FindOneAndUpdate().SetReturnDocument(options.After))

		var balanceDoc struct {
			Balance int64 `bson:"balance"`
		}
		if err := res.Decode(&balanceDoc); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, domain.ErrInsufficientBalance
			}
			return nil, fmt.Errorf("debit balance: %w", err)
		}

		entry := &domain.LedgerEntry{
			ID:             grant.LedgerEntryID,
			ProfessionalID: professionalID,
			Delta:          -1,
			Reason:         domain.ReasonUnlock,
			ReferenceID:    grant.ID,
			CreatedAt:      now,
		}
		if _, err := r.entries.InsertOne(sc, entry); err != nil {
			return nil, fmt.Errorf("insert unlock entry: %w", err)
		}

		return balanceDoc.Balance, nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyUnlocked) || errors.Is(err, domain.ErrInsufficientBalance) {
			return nil, 0, err
		}
		return nil, 0, fmt.Errorf("spend and grant: %w", err)
	}

	remaining, _ := result.(int64)
	return grant, remaining, nil
}

// EnsureIndexes creates the pair-uniqueness constraint the spend path
// depends on.
func (r *UnlockRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "professional_id", Value: 1}, {Key: "client_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := r.grants.Indexes().CreateMany(ctx, indexes)
	return err
}
