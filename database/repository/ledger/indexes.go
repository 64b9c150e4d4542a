package ledgerRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"calmora/models"
)

// EnsureIndexes creates the ledger indexes. The partial unique index on
// (therapistId, startUtc) over non-canceled sessions is the storage-level
// double-booking guard; canceled sessions stay out of it so their interval
// can be reserved again.
func (repo *MongoLedgerRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "id", Value: 1}},
			Options: options.Index().
				SetName("session_id_unique").
				SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "therapistId", Value: 1}, {Key: "startUtc", Value: 1}},
			Options: options.Index().
				SetName("therapist_start_active_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{
					"status": bson.M{"$in": []string{models.SessionPending, models.SessionConfirmed}},
				}),
		},
		{
			Keys: bson.D{{Key: "patientId", Value: 1}, {Key: "startUtc", Value: -1}},
			Options: options.Index().
				SetName("patient_sessions"),
		},
	}

	if _, err := repo.sessionColl.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create ledger indexes: %w", err)
	}
	return nil
}
