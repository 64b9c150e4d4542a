package topicRepo

import (
	"context"

	"calmora/models"
)

// TopicRepository provides read access to the topic catalogue.
type TopicRepository interface {
	ListAll(ctx context.Context) ([]models.Topic, error)
}
