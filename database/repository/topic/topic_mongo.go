package topicRepo

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

// MongoTopicRepo implements TopicRepository using MongoDB.
type MongoTopicRepo struct {
	coll *mongo.Collection
}

// NewMongoTopicRepo constructs a new instance of MongoTopicRepo.
func NewMongoTopicRepo() *MongoTopicRepo {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	return &MongoTopicRepo{coll: db.Collection("topics")}
}

func (repo *MongoTopicRepo) ListAll(ctx context.Context) ([]models.Topic, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := repo.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing topics: %w", err)
	}
	defer cursor.Close(ctx)

	var topics []models.Topic
	if err := cursor.All(ctx, &topics); err != nil {
		return nil, fmt.Errorf("error decoding topics: %w", err)
	}
	return topics, nil
}
