package therapistRepo

import (
	"context"
	"errors"

	"calmora/models"
)

// ErrTherapistNotFound means no therapist exists for the given id.
var ErrTherapistNotFound = errors.New("therapist not found")

// Filter narrows therapist listings.
type Filter struct {
	TopicIDs   []string
	Modality   string
	RequireAll bool // match therapists covering every requested topic, not any
	OrderBy    string
	Limit      int
	Offset     int
}

// Listing order values. Scarcity ordering is applied by the availability
// service after free-slot counts are computed.
const (
	OrderByName       = "name"
	OrderByExperience = "experience"
	OrderByScarcity   = "scarcity"
)

// TherapistRepository provides read access to therapist profiles. Profile
// mutation is a practice-management concern outside the booking engine.
type TherapistRepository interface {
	GetByID(ctx context.Context, id string) (*models.Therapist, error)
	// List returns the filtered page plus the total match count.
	List(ctx context.Context, filter Filter) ([]models.Therapist, int64, error)
}
