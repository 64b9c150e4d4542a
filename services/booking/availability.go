package booking

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	ledgerRepo "calmora/database/repository/ledger"
	therapistRepo "calmora/database/repository/therapist"
	"calmora/models"
	"calmora/services/calendar"
	"calmora/utils"
)

// Day labels rendered for the patient-facing grid.
var dayLabels = map[time.Weekday]string{
	time.Sunday:    "Domingo",
	time.Monday:    "Lunes",
	time.Tuesday:   "Martes",
	time.Wednesday: "Miércoles",
	time.Thursday:  "Jueves",
	time.Friday:    "Viernes",
	time.Saturday:  "Sábado",
}

// DefaultAvailabilityService is the production AvailabilityService.
type DefaultAvailabilityService struct {
	Therapists therapistRepo.TherapistRepository
	Ledger     ledgerRepo.LedgerRepository
	Cache      *AvailabilityCache // optional

	StepMin int
	Now     func() time.Time // defaults to time.Now
}

func (s *DefaultAvailabilityService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultAvailabilityService) stepOrDefault(stepMin int) int {
	if stepMin > 0 {
		return stepMin
	}
	if s.StepMin > 0 {
		return s.StepMin
	}
	return 30
}

func (s *DefaultAvailabilityService) WeekAvailability(
	ctx context.Context,
	therapistID, sessionTypeID string,
	weekStart time.Time,
	patientTz string,
	stepMin int,
) ([]models.DayAvailability, error) {
	logger := utils.GetLogger()
	stepMin = s.stepOrDefault(stepMin)

	therapist, err := s.Therapists.GetByID(ctx, therapistID)
	if err != nil {
		return nil, err
	}
	sessionType := therapist.SessionTypeByID(sessionTypeID)
	if sessionType == nil {
		return nil, fmt.Errorf("%w: therapist %s has no session type %s", ErrInvalidRequest, therapistID, sessionTypeID)
	}

	patientLoc, err := time.LoadLocation(patientTz)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown patient timezone %q", ErrInvalidRequest, patientTz)
	}

	// Default to the patient's current date, not the server's: across the
	// date line "today" can differ by a day either way.
	if weekStart.IsZero() {
		weekStart = s.now().In(patientLoc)
	}

	weekKey := weekStart.Format("2006-01-02")
	var cacheKey string
	if s.Cache != nil {
		cacheKey = s.Cache.Key(ctx, therapistID, sessionTypeID, weekKey, patientTz, stepMin)
		if days, ok := s.Cache.Get(ctx, cacheKey); ok {
			return days, nil
		}
	}

	slots, err := s.freeSlots(ctx, therapist, sessionType, weekStart, stepMin)
	if err != nil {
		return nil, err
	}

	days := bucketByDay(slots, weekStart, patientLoc)

	if s.Cache != nil {
		s.Cache.Put(ctx, cacheKey, days)
	}

	logger.Debug("computed weekly availability",
		zap.String("therapistId", therapistID),
		zap.String("weekStart", weekKey),
		zap.Int("slots", len(slots)))
	return days, nil
}

// freeSlots generates the week's candidate slots and drops those
// intersecting a held (pending or confirmed) session.
func (s *DefaultAvailabilityService) freeSlots(
	ctx context.Context,
	therapist *models.Therapist,
	sessionType *models.SessionType,
	weekStart time.Time,
	stepMin int,
) ([]models.TimeSlot, error) {
	intervals, err := calendar.IntervalsForWeek(therapist.WeeklyRules, therapist.Timezone, weekStart)
	if err != nil {
		return nil, NewInvalidScheduleError(err.Error())
	}
	if len(intervals) == 0 {
		return nil, nil
	}

	slots := calendar.GenerateSlots(intervals, therapist.ID, sessionType.ID, sessionType.DurationMin, stepMin, s.now())
	if len(slots) == 0 {
		return nil, nil
	}

	held, err := s.Ledger.HeldSessions(ctx, therapist.ID, intervals[0].StartUTC, intervals[len(intervals)-1].EndUTC)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch held sessions: %w", err)
	}

	free := slots[:0]
	for _, slot := range slots {
		taken := false
		for _, h := range held {
			if slot.StartUTC.Before(h.EndUTC) && slot.EndUTC.After(h.StartUTC) {
				taken = true
				break
			}
		}
		if !taken {
			free = append(free, slot)
		}
	}
	return free, nil
}

// bucketByDay renders slots into 7 day buckets in the patient's timezone.
// Empty days are kept so the grid shows them as unavailable. A slot whose
// patient-local date falls outside the 7 bucket dates (a far-east therapist's
// morning rendering as the patient's previous evening) belongs to the
// adjacent week's grid and is dropped from this one.
func bucketByDay(slots []models.TimeSlot, weekStart time.Time, patientLoc *time.Location) []models.DayAvailability {
	byDate := make(map[string][]models.AvailabilitySlot, 7)
	for _, slot := range slots {
		localStart := slot.StartUTC.In(patientLoc)
		date := localStart.Format("2006-01-02")
		byDate[date] = append(byDate[date], models.AvailabilitySlot{
			ID:               "slot-" + strconv.FormatInt(slot.StartUTC.Unix(), 10),
			StartInPatientTz: localStart.Format("15:04"),
			EndInPatientTz:   slot.EndUTC.In(patientLoc).Format("15:04"),
			StartUTC:         slot.StartUTC,
			EndUTC:           slot.EndUTC,
		})
	}

	days := make([]models.DayAvailability, 0, 7)
	anchor := time.Date(weekStart.Year(), weekStart.Month(), weekStart.Day(), 0, 0, 0, 0, patientLoc)
	for offset := 0; offset < 7; offset++ {
		day := anchor.AddDate(0, 0, offset)
		date := day.Format("2006-01-02")
		starts := byDate[date]
		sort.Slice(starts, func(i, j int) bool { return starts[i].StartUTC.Before(starts[j].StartUTC) })
		days = append(days, models.DayAvailability{
			Date:           date,
			DayLabel:       dayLabels[day.Weekday()],
			DayNumber:      strconv.Itoa(day.Day()),
			BookableStarts: starts,
		})
	}
	return days
}

func (s *DefaultAvailabilityService) ListTherapists(ctx context.Context, filter ListFilter) (*models.TherapistPage, error) {
	logger := utils.GetLogger()

	therapists, total, err := s.Therapists.List(ctx, therapistRepo.Filter{
		TopicIDs:   filter.TopicIDs,
		Modality:   filter.Modality,
		RequireAll: filter.RequireAll,
		OrderBy:    filter.OrderBy,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
	if err != nil {
		return nil, err
	}

	summaries := make([]models.TherapistSummary, 0, len(therapists))
	for i := range therapists {
		t := therapists[i]
		count, err := s.freeSlotsCount(ctx, &t)
		if err != nil {
			// A broken schedule should not take down the whole listing.
			logger.Warn("failed to compute free slots", zap.String("therapistId", t.ID), zap.Error(err))
			count = 0
		}
		summaries = append(summaries, models.TherapistSummary{
			ID:                  t.ID,
			Name:                t.Name,
			Specialty:           t.Specialty,
			Experience:          t.Experience,
			Topics:              t.Topics,
			Modalities:          t.Modalities,
			SessionTypes:        t.SessionTypes,
			AvailabilitySummary: models.AvailabilitySummary{FreeSlotsCount: count},
		})
	}

	if filter.OrderBy == therapistRepo.OrderByScarcity {
		// Scarcest first: nearly-booked therapists surface at the top.
		sort.SliceStable(summaries, func(i, j int) bool {
			return summaries[i].AvailabilitySummary.FreeSlotsCount < summaries[j].AvailabilitySummary.FreeSlotsCount
		})
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = len(summaries)
	}
	return &models.TherapistPage{
		Data: summaries,
		Pagination: models.Pagination{
			Total:   total,
			Limit:   limit,
			Offset:  filter.Offset,
			HasMore: int64(filter.Offset+len(summaries)) < total,
		},
	}, nil
}

// freeSlotsCount counts bookable starts for the therapist's first session
// type over the coming 7 days.
func (s *DefaultAvailabilityService) freeSlotsCount(ctx context.Context, therapist *models.Therapist) (int, error) {
	if len(therapist.SessionTypes) == 0 {
		return 0, nil
	}
	sessionType := &therapist.SessionTypes[0]
	slots, err := s.freeSlots(ctx, therapist, sessionType, s.now(), s.stepOrDefault(0))
	if err != nil {
		return 0, err
	}
	return len(slots), nil
}
