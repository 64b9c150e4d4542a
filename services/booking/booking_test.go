package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"calmora/models"
)

// Fixed clock: Sunday 2025-06-01 12:00 UTC. The test therapist works
// Mondays and Tuesdays 09:00-17:00 UTC.
var testNow = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

// Monday 2025-06-02.
var testMonday = time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func testTherapist() models.Therapist {
	return models.Therapist{
		ID:        "t1",
		Name:      "Dr. Elena Vargas",
		Specialty: "Clinical Psychology",
		Topics:    []models.Topic{{ID: "anxiety", Name: "Anxiety"}},
		Modalities: []string{
			models.ModalityOnline,
		},
		SessionTypes: []models.SessionType{
			{ID: "st1", Name: "Individual", DurationMin: 60, Modality: models.ModalityOnline},
			{ID: "st2", Name: "First Consultation", DurationMin: 30, Modality: models.ModalityOnline, RequiresConfirmation: true},
		},
		WeeklyRules: []models.WeeklyRule{
			{Weekday: time.Monday, Start: 540, End: 1020},
			{Weekday: time.Tuesday, Start: 540, End: 1020},
		},
		Timezone: "UTC",
	}
}

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func testRequest(start time.Time) models.CreateSessionRequest {
	return models.CreateSessionRequest{
		TherapistID:   "t1",
		SessionTypeID: "st1",
		StartUTC:      start.Format(time.RFC3339),
		PatientID:     "p1",
		PatientName:   "Ana",
		PatientEmail:  "ana@example.com",
		PatientTz:     "UTC",
	}
}

// captureScheduler records scheduled expiries instead of enqueuing them.
type captureScheduler struct {
	mu    sync.Mutex
	calls []struct {
		SessionID string
		At        time.Time
	}
}

func (s *captureScheduler) ScheduleExpiry(_ context.Context, sessionID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, struct {
		SessionID string
		At        time.Time
	}{sessionID, at})
	return nil
}
