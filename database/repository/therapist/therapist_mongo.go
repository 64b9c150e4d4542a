package therapistRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"calmora/config"
	"calmora/database"
	"calmora/models"
)

// MongoTherapistRepo implements TherapistRepository using MongoDB.
type MongoTherapistRepo struct {
	coll *mongo.Collection
}

// NewMongoTherapistRepo constructs a new instance of MongoTherapistRepo.
func NewMongoTherapistRepo() *MongoTherapistRepo {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	return &MongoTherapistRepo{coll: db.Collection("therapists")}
}

func (repo *MongoTherapistRepo) GetByID(ctx context.Context, id string) (*models.Therapist, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var therapist models.Therapist
	if err := repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&therapist); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrTherapistNotFound
		}
		return nil, fmt.Errorf("error fetching therapist with id %s: %w", id, err)
	}
	return &therapist, nil
}

func (repo *MongoTherapistRepo) List(ctx context.Context, filter Filter) ([]models.Therapist, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := bson.M{}
	if len(filter.TopicIDs) > 0 {
		if filter.RequireAll {
			query["topics.id"] = bson.M{"$all": filter.TopicIDs}
		} else {
			query["topics.id"] = bson.M{"$in": filter.TopicIDs}
		}
	}
	if filter.Modality != "" {
		query["modalities"] = filter.Modality
	}

	total, err := repo.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting therapists: %w", err)
	}

	opts := options.Find().
		SetSkip(int64(filter.Offset)).
		SetLimit(int64(filter.Limit))
	switch filter.OrderBy {
	case OrderByExperience:
		opts.SetSort(bson.D{{Key: "experience", Value: -1}, {Key: "name", Value: 1}})
	default:
		// Scarcity needs computed slot counts; the availability service
		// reorders the page after counting. Name order is the stable base.
		opts.SetSort(bson.D{{Key: "name", Value: 1}})
	}

	cursor, err := repo.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing therapists: %w", err)
	}
	defer cursor.Close(ctx)

	var therapists []models.Therapist
	if err := cursor.All(ctx, &therapists); err != nil {
		return nil, 0, fmt.Errorf("error decoding therapists: %w", err)
	}
	return therapists, total, nil
}
