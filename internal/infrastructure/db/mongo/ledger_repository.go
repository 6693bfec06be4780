package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/prolink/credits-system/internal/core/domain"
)

const (
	collectionLedgerEntries = "ledger_entries"
	collectionBalances      = "balances"
)

// LedgerRepository stores ledger entries append-only and maintains a
// materialized balance document per professional. The balance document is an
// optimization: it is always updated in the same transaction as the entry
// insert and stays re-derivable as the sum of the professional's entries.
type LedgerRepository struct {
	client   *mongo.Client
	entries  *mongo.Collection
	balances *mongo.Collection
}

func NewLedgerRepository(client *mongo.Client, db *mongo.Database) *LedgerRepository {
	return &LedgerRepository{
		client:   client,
		entries:  db.Collection(collectionLedgerEntries),
		balances: db.Collection(collectionBalances),
	}
}

// Append inserts the entry and applies its delta to the materialized balance
// in one transaction. Debits are guarded: the balance update only matches
// when enough units remain, so the balance can never go negative and no
// concurrent append observes a torn state.
func (r *LedgerRepository) Append(ctx context.Context, entry *domain.LedgerEntry) (*domain.LedgerEntry, error) {
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	session, err := r.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.entries.InsertOne(sc, entry); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, domain.ErrDuplicatePayment
			}
			return nil, fmt.Errorf("insert entry: %w", err)
		}
		if err := applyDelta(sc, r.balances, entry.ProfessionalID, entry.Delta); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicatePayment) || errors.Is(err, domain.ErrInsufficientBalance) {
			return nil, err
		}
		return nil, fmt.Errorf("append entry: %w", err)
	}
	return entry, nil
}

// BalanceOf reads the materialized balance. Unknown professionals are 0.
func (r *LedgerRepository) BalanceOf(ctx context.Context, professionalID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc struct {
		Balance int64 `bson:"balance"`
	}
	err := r.balances.FindOne(ctx, bson.M{"_id": professionalID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, fmt.Errorf("read balance: %w", err)
	}
	return doc.Balance, nil
}

// ListEntries returns the professional's entries oldest first.
func (r *LedgerRepository) ListEntries(ctx context.Context, professionalID string) ([]*domain.LedgerEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.entries.Find(ctx, bson.M{"professional_id": professionalID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*domain.LedgerEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode entries: %w", err)
	}
	return entries, nil
}

// SumEntries re-derives a balance from the entry log. Used by operational
// consistency checks against the materialized document, never on the hot path.
func (r *LedgerRepository) SumEntries(ctx context.Context, professionalID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"professional_id": professionalID}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$delta"}}}},
	}
	cursor, err := r.entries.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("sum entries: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("decode sum: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

// EnsureIndexes creates the ledger's indexes: the per-professional listing
// index and the partial unique index that makes PURCHASE references
// exactly-once.
func (r *LedgerRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "professional_id", Value: 1}, {Key: "created_at", Value: 1}}},
		{
			Keys: bson.D{{Key: "reference_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"reason": string(domain.ReasonPurchase)}),
		},
	}

	_, err := r.entries.Indexes().CreateMany(ctx, indexes)
	return err
}

// applyDelta mutates the materialized balance inside a transaction. Credits
// upsert; debits require an existing document with enough units.
func applyDelta(sc mongo.SessionContext, balances *mongo.Collection, professionalID string, delta int64) error {
	now := time.Now().UTC()
	if delta > 0 {
		_, err := balances.UpdateByID(sc, professionalID,
			bson.M{"$inc": bson.M{"balance": delta}, "$set": bson.M{"updated_at": now}},
			options.Update().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("credit balance: %w", err)
		}
		return nil
	}

	res := balances.FindOneAndUpdate(sc,
		bson.M{"_id": professionalID, "balance": bson.M{"$gte": -delta}},
		bson.M{"$inc": bson.M{"balance": delta}, "$set": bson.M{"updated_at": now}})
	if err := res.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ErrInsufficientBalance
		}
		return fmt.Errorf("debit balance: %w", err)
	}
	return nil
}
