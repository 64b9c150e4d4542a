package therapistRepo

import (
	"context"
	"sort"
	"strings"
	"sync"

	"calmora/models"
)

// MemoryTherapistRepo is an in-process TherapistRepository used by tests and
// local development.
type MemoryTherapistRepo struct {
	mu         sync.RWMutex
	therapists []models.Therapist
}

// NewMemoryTherapistRepo constructs an in-memory repository seeded with the
// given therapists.
func NewMemoryTherapistRepo(seed ...models.Therapist) *MemoryTherapistRepo {
	return &MemoryTherapistRepo{therapists: seed}
}

func (repo *MemoryTherapistRepo) GetByID(_ context.Context, id string) (*models.Therapist, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()
	for i := range repo.therapists {
		if repo.therapists[i].ID == id {
			copied := repo.therapists[i]
			return &copied, nil
		}
	}
	return nil, ErrTherapistNotFound
}

func matchesTopics(t *models.Therapist, topicIDs []string, requireAll bool) bool {
	if len(topicIDs) == 0 {
		return true
	}
	have := make(map[string]bool, len(t.Topics))
	for _, topic := range t.Topics {
		have[topic.ID] = true
	}
	matched := 0
	for _, id := range topicIDs {
		if have[id] {
			matched++
		}
	}
	if requireAll {
		return matched == len(topicIDs)
	}
	return matched > 0
}

func hasModality(t *models.Therapist, modality string) bool {
	if modality == "" {
		return true
	}
	for _, m := range t.Modalities {
		if m == modality {
			return true
		}
	}
	return false
}

func (repo *MemoryTherapistRepo) List(_ context.Context, filter Filter) ([]models.Therapist, int64, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	var matched []models.Therapist
	for i := range repo.therapists {
		t := repo.therapists[i]
		if matchesTopics(&t, filter.TopicIDs, filter.RequireAll) && hasModality(&t, filter.Modality) {
			matched = append(matched, t)
		}
	}

	switch filter.OrderBy {
	case OrderByExperience:
		sort.Slice(matched, func(i, j int) bool {
			if matched[i].Experience != matched[j].Experience {
				return matched[i].Experience > matched[j].Experience
			}
			return strings.Compare(matched[i].Name, matched[j].Name) < 0
		})
	default:
		sort.Slice(matched, func(i, j int) bool {
			return strings.Compare(matched[i].Name, matched[j].Name) < 0
		})
	}

	total := int64(len(matched))
	if filter.Offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}
