package ledgerRepo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"calmora/config"
	"calmora/database"
	"calmora/models"
)

// MongoLedgerRepo implements LedgerRepository using MongoDB. Reservation is
// serialized per therapist through an in-process keyed mutex, with the
// partial unique index on (therapistId, startUtc) as the storage-level guard
// against writers on other instances.
type MongoLedgerRepo struct {
	sessionColl *mongo.Collection
	locks       sync.Map // therapistID -> *sync.Mutex
}

// NewMongoLedgerRepo constructs a new instance of MongoLedgerRepo.
func NewMongoLedgerRepo() *MongoLedgerRepo {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	return &MongoLedgerRepo{
		sessionColl: db.Collection("sessions"),
	}
}

func (repo *MongoLedgerRepo) therapistLock(therapistID string) *sync.Mutex {
	mu, _ := repo.locks.LoadOrStore(therapistID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// heldFilter matches non-canceled sessions overlapping [start, end).
func heldFilter(therapistID string, start, end time.Time) bson.M {
	return bson.M{
		"therapistId": therapistID,
		"status":      bson.M{"$in": []string{models.SessionPending, models.SessionConfirmed}},
		"startUtc":    bson.M{"$lt": end},
		"endUtc":      bson.M{"$gt": start},
	}
}

func (repo *MongoLedgerRepo) IsHeld(ctx context.Context, therapistID string, start, end time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	count, err := repo.sessionColl.CountDocuments(ctx, heldFilter(therapistID, start, end), options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("error counting held sessions: %w", err)
	}
	return count > 0, nil
}

func (repo *MongoLedgerRepo) Reserve(ctx context.Context, session *models.Session) error {
	mu := repo.therapistLock(session.TherapistID)
	mu.Lock()
	defer mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client := repo.sessionColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		count, err := repo.sessionColl.CountDocuments(sc,
			heldFilter(session.TherapistID, session.StartUTC, session.EndUTC),
			options.Count().SetLimit(1))
		if err != nil {
			return fmt.Errorf("overlap check failed: %w", err)
		}
		if count > 0 {
			return ErrSlotTaken
		}
		if _, err := repo.sessionColl.InsertOne(sc, session); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrSlotTaken
			}
			return fmt.Errorf("insert session failed: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		return err
	}

	return nil
}

func (repo *MongoLedgerRepo) HeldSessions(ctx context.Context, therapistID string, from, to time.Time) ([]models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "startUtc", Value: 1}})
	cursor, err := repo.sessionColl.Find(ctx, heldFilter(therapistID, from, to), opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching held sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var sessions []models.Session
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("error decoding held sessions: %w", err)
	}
	return sessions, nil
}

func (repo *MongoLedgerRepo) GetByID(ctx context.Context, sessionID string) (*models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var session models.Session
	if err := repo.sessionColl.FindOne(ctx, bson.M{"id": sessionID}).Decode(&session); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("error fetching session %s: %w", sessionID, err)
	}
	return &session, nil
}

func (repo *MongoLedgerRepo) ListByPatient(ctx context.Context, patientID string) ([]models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "startUtc", Value: -1}})
	cursor, err := repo.sessionColl.Find(ctx, bson.M{"patientId": patientID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching patient sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var sessions []models.Session
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("error decoding patient sessions: %w", err)
	}
	return sessions, nil
}

func (repo *MongoLedgerRepo) Cancel(ctx context.Context, sessionID string) (*models.Session, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": sessionID, "status": bson.M{"$ne": models.SessionCanceled}}
	update := bson.M{"$set": bson.M{"status": models.SessionCanceled, "updatedAt": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var session models.Session
	err := repo.sessionColl.FindOneAndUpdate(ctx, filter, update, opts).Decode(&session)
	if err == nil {
		return &session, true, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, false, fmt.Errorf("error canceling session %s: %w", sessionID, err)
	}

	// Either unknown id or already canceled; disambiguate without touching updatedAt.
	existing, getErr := repo.GetByID(ctx, sessionID)
	if getErr != nil {
		return nil, false, getErr
	}
	return existing, false, nil
}

func (repo *MongoLedgerRepo) CancelIfPending(ctx context.Context, sessionID string) (*models.Session, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": sessionID, "status": models.SessionPending}
	update := bson.M{"$set": bson.M{"status": models.SessionCanceled, "updatedAt": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var session models.Session
	err := repo.sessionColl.FindOneAndUpdate(ctx, filter, update, opts).Decode(&session)
	if err == nil {
		return &session, true, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, false, fmt.Errorf("error canceling pending session %s: %w", sessionID, err)
	}

	// Unknown id, or the session left the pending state first; either way
	// the stored document must not be touched.
	existing, getErr := repo.GetByID(ctx, sessionID)
	if getErr != nil {
		return nil, false, getErr
	}
	return existing, false, nil
}

func (repo *MongoLedgerRepo) Confirm(ctx context.Context, sessionID string) (*models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": sessionID, "status": models.SessionPending}
	update := bson.M{"$set": bson.M{"status": models.SessionConfirmed, "updatedAt": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var session models.Session
	err := repo.sessionColl.FindOneAndUpdate(ctx, filter, update, opts).Decode(&session)
	if err == nil {
		return &session, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("error confirming session %s: %w", sessionID, err)
	}

	if _, getErr := repo.GetByID(ctx, sessionID); getErr != nil {
		return nil, getErr
	}
	return nil, ErrNotPending
}
