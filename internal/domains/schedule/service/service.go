package service

import (
	"clipper/config"
	"clipper/infras/kafka"
	"clipper/infras/otel"
	"clipper/internal/domains/schedule/model"
	"clipper/internal/domains/schedule/model/dto"
	"clipper/internal/domains/schedule/repository"
	"clipper/shared"
	"clipper/shared/cache"
	"clipper/shared/constant"
	gDto "clipper/shared/dto"
	"clipper/shared/failure"
	"clipper/shared/timezone"
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

const (
	cachePrefixSchedule = "schedule"
	cacheGetDays        = "schedule:days"
	cacheGetDay         = "schedule:day"
	cacheGetWindow      = "schedule:window"
)

const (
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
	EventDayToggled       = "day.toggled"
	EventSlotToggled      = "slot.toggled"
	EventWindowChanged    = "window.changed"
	EventStateCleared     = "state.cleared"
)

// Event is the payload published to the schedule event topic after a
// successful mutation.
type Event struct {
	Type string `json:"type"`
	Day  string `json:"day,omitempty"`
	Slot string `json:"slot,omitempty"`
	At   string `json:"at"`
}

// Schedule exposes the availability calendar. Query operations are open to
// anyone. Gated mutations take an explicit privileged flag and silently do
// nothing when it is false; the transport layer is expected to keep those
// endpoints unreachable for anonymous callers, but the gate here is the one
// that counts.
type Schedule interface {
	GetDays(ctx context.Context) (dto.GetDaysResponse, error)
	GetDay(ctx context.Context, day string) (dto.DayViewResponse, error)
	GetWindow(ctx context.Context) (dto.WindowResponse, error)
	GetBookings(ctx context.Context, params gDto.QueryParams) (dto.GetBookingsResponse, error)
	CreateBooking(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	ToggleDayDisabled(ctx context.Context, day string, privileged bool) error
	ToggleSlotDisabled(ctx context.Context, day, slot string, privileged bool) error
	CancelBooking(ctx context.Context, day, slot string, privileged bool) error
	ClearAll(ctx context.Context, privileged bool) error
	SetOperatingWindow(ctx context.Context, startHour, endHour int, privileged bool) error
}

type serviceImpl struct {
	repo  repository.Schedule
	cfg   *config.Config
	cache cache.RedisCache
	kafka kafka.Client
	otel  otel.Otel

	// Serializes load-mutate-save cycles within this process. Across
	// processes the last writer wins at whole-state granularity.
	mu sync.Mutex
}

func New(repo repository.Schedule, cfg *config.Config, cache cache.RedisCache, kafkaClient kafka.Client, otel otel.Otel) Schedule {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		kafka: kafkaClient,
		otel:  otel,
	}
}

func (s *serviceImpl) GetDays(ctx context.Context) (res dto.GetDaysResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetDays")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetDays, model.DayKey(timezone.Today()))

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for day strip")

		return res, nil
	}

	state, err := s.repo.Load(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load schedule state")

		return res, fmt.Errorf("failed to load schedule state: %w", err)
	}

	today := timezone.Today()
	res.Days = make([]dto.DayChip, 0, s.cfg.Schedule.DaysAhead)

	for i := range s.cfg.Schedule.DaysAhead {
		day := today.AddDate(0, 0, i)
		key := model.DayKey(day)

		res.Days = append(res.Days, dto.DayChip{
			Date:     key,
			Weekday:  day.Weekday().String(),
			Disabled: state.IsDayDisabled(key),
		})
	}

	s.saveToCache(ctx, cacheKey, res)

	return res, nil
}

func (s *serviceImpl) GetDay(ctx context.Context, day string) (res dto.DayViewResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetDay")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetDay, day)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for day view")

		return res, nil
	}

	state, err := s.repo.Load(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load schedule state")

		return res, fmt.Errorf("failed to load schedule state: %w", err)
	}

	date, err := timezone.Parse(constant.DayKeyLayout, day)
	if err != nil {
		return res, failure.BadRequestFromString("date must be a calendar date in YYYY-MM-DD form") //nolint:wrapcheck
	}

	res.Date = day
	res.Weekday = date.Weekday().String()
	res.Disabled = state.IsDayDisabled(day)
	res.StartHour = state.StartHour
	res.EndHour = state.EndHour

	slots := state.Slots()
	res.Slots = make([]dto.SlotView, 0, len(slots))

	for _, slot := range slots {
		view := dto.SlotView{Time: slot, Status: dto.SlotStatusOpen}

		if record, booked := state.Booking(day, slot); booked {
			view.Status = dto.SlotStatusBooked
			view.Booking = &dto.BookingResponse{}
			view.Booking.FromModel(day, slot, record)
		} else if state.IsSlotDisabled(day, slot) {
			view.Status = dto.SlotStatusDisabled
		}

		res.Slots = append(res.Slots, view)
	}

	s.saveToCache(ctx, cacheKey, res)

	return res, nil
}

func (s *serviceImpl) GetWindow(ctx context.Context) (res dto.WindowResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetWindow")
	defer scope.End()
	defer scope.TraceIfError(err)

	err = s.cache.Get(ctx, cacheGetWindow, &res)
	if err == nil {
		return res, nil
	}

	state, err := s.repo.Load(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load schedule state")

		return res, fmt.Errorf("failed to load schedule state: %w", err)
	}

	res.StartHour = state.StartHour
	res.EndHour = state.EndHour

	s.saveToCache(ctx, cacheGetWindow, res)

	return res, nil
}

func (s *serviceImpl) GetBookings(ctx context.Context, params gDto.QueryParams) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetBookings")
	defer scope.End()
	defer scope.TraceIfError(err)

	state, err := s.repo.Load(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load schedule state")

		return res, fmt.Errorf("failed to load schedule state: %w", err)
	}

	// Flattened over the raw bookings map, so records whose slot label fell
	// outside the current window remain visible here even though the day
	// view can no longer reach them.
	all := make([]dto.BookingResponse, 0)

	for day, slots := range state.Bookings {
		for slot, record := range slots {
			item := dto.BookingResponse{}
			item.FromModel(day, slot, record)

			all = append(all, item)
		}
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].Date != all[j].Date {
			return all[i].Date < all[j].Date
		}

		return all[i].Time < all[j].Time
	})

	total := len(all)

	start := min(params.Offset(), total)
	end := min(start+params.Limit, total)

	res.FromPage(all[start:end], total, params.Limit)

	return res, nil
}

func (s *serviceImpl) CreateBooking(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CreateBooking")
	defer scope.End()
	defer scope.TraceIfError(err)

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.repo.Load(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load schedule state")

		return res, fmt.Errorf("failed to load schedule state: %w", err)
	}

	record, reason := model.ValidateBooking(&state, req.Date, req.Time, req.ToPayload())
	if reason != model.RejectNone {
		scope.SetAttribute("booking.reject_reason", string(reason))

		return res, rejectFailure(reason)
	}

	state.SetBooking(req.Date, req.Time, record)

	if err := s.repo.Save(ctx, state); err != nil {
		log.Error().Err(err).Msg("failed to save schedule state")

		return res, fmt.Errorf("failed to save schedule state: %w", err)
	}

	scope.AddEvent("Booking placed on " + req.Date + " " + req.Time)

	s.afterMutation(ctx, Event{Type: EventBookingCreated, Day: req.Date, Slot: req.Time})

	res.FromModel(req.Date, req.Time, record)

	return res, nil
}

func (s *serviceImpl) ToggleDayDisabled(ctx context.Context, day string, privileged bool) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ToggleDayDisabled")
	defer scope.End()
	defer scope.TraceIfError(err)

	if !privileged {
		log.Debug().Str("day", day).Msg("unprivileged day toggle ignored")

		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.repo.Load(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load schedule state")

		return fmt.Errorf("failed to load schedule state: %w", err)
	}

	state.ToggleDayDisabled(day)

	if err := s.repo.Save(ctx, state); err != nil {
		log.Error().Err(err).Msg("failed to save schedule state")

		return fmt.Errorf("failed to save schedule state: %w", err)
	}

	s.afterMutation(ctx, Event{Type: EventDayToggled, Day: day})

	return nil
}

func (s *serviceImpl) ToggleSlotDisabled(ctx context.Context, day, slot string, privileged bool) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ToggleSlotDisabled")
	defer scope.End()
	defer scope.TraceIfError(err)

	if !privileged {
		log.Debug().Str("day", day).Str("slot", slot).Msg("unprivileged slot toggle ignored")

		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.repo.Load(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load schedule state")

		return fmt.Errorf("failed to load schedule state: %w", err)
	}

	state.ToggleSlotDisabled(day, slot)

	if err := s.repo.Save(ctx, state); err != nil {
		log.Error().Err(err).Msg("failed to save schedule state")

		return fmt.Errorf("failed to save schedule state: %w", err)
	}

	s.afterMutation(ctx, Event{Type: EventSlotToggled, Day: day, Slot: slot})

	return nil
}

func (s *serviceImpl) CancelBooking(ctx context.Context, day, slot string, privileged bool) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CancelBooking")
	defer scope.End()
	defer scope.TraceIfError(err)

	if !privileged {
		log.Debug().Str("day", day).Str("slot", slot).Msg("unprivileged booking cancel ignored")

		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.repo.Load(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load schedule state")

		return fmt.Errorf("failed to load schedule state: %w", err)
	}

	// Removing an absent booking is a no-op, not an error.
	state.RemoveBooking(day, slot)

	if err := s.repo.Save(ctx, state); err != nil {
		log.Error().Err(err).Msg("failed to save schedule state")

		return fmt.Errorf("failed to save schedule state: %w", err)
	}

	s.afterMutation(ctx, Event{Type: EventBookingCancelled, Day: day, Slot: slot})

	return nil
}

func (s *serviceImpl) ClearAll(ctx context.Context, privileged bool) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ClearAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	if !privileged {
		log.Debug().Msg("unprivileged clear-all ignored")

		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.repo.Load(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load schedule state")

		return fmt.Errorf("failed to load schedule state: %w", err)
	}

	state.ClearCalendar()

	if err := s.repo.Save(ctx, state); err != nil {
		log.Error().Err(err).Msg("failed to save schedule state")

		return fmt.Errorf("failed to save schedule state: %w", err)
	}

	scope.AddEvent("Calendar cleared")

	s.afterMutation(ctx, Event{Type: EventStateCleared})

	return nil
}

func (s *serviceImpl) SetOperatingWindow(ctx context.Context, startHour, endHour int, privileged bool) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".SetOperatingWindow")
	defer scope.End()
	defer scope.TraceIfError(err)

	if !privileged {
		log.Debug().Msg("unprivileged window change ignored")

		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.repo.Load(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load schedule state")

		return fmt.Errorf("failed to load schedule state: %w", err)
	}

	state.SetWindow(startHour, endHour)

	if err := s.repo.Save(ctx, state); err != nil {
		log.Error().Err(err).Msg("failed to save schedule state")

		return fmt.Errorf("failed to save schedule state: %w", err)
	}

	s.afterMutation(ctx, Event{Type: EventWindowChanged})

	return nil
}

// afterMutation invalidates derived caches and publishes the mutation event.
// Both are fire-and-forget; the state is already durably saved.
func (s *serviceImpl) afterMutation(ctx context.Context, event Event) {
	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cachePrefixSchedule)

		if !s.cfg.Kafka.Enable {
			return
		}

		event.At = timezone.Now().Format(constant.DayKeyLayout + " " + constant.SlotLabelLayout)

		message := kafka.Message{Key: event.Type, Value: event}
		if err := s.kafka.SendMessages(c, s.cfg.Kafka.EventTopic, message); err != nil {
			log.Error().Err(err).Str("type", event.Type).Msg("failed to publish schedule event")
		}
	}()
}

func (s *serviceImpl) saveToCache(ctx context.Context, key string, value any) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, key, value, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Str("cacheKey", key).Msg("failed to save schedule view to cache")
		}
	}()
}

func rejectFailure(reason model.RejectReason) error {
	switch reason {
	case model.RejectDayDisabled, model.RejectSlotDisabled:
		return failure.Unprocessable(reason.Message()) //nolint:wrapcheck
	case model.RejectAlreadyBooked:
		return failure.Conflict(reason.Message()) //nolint:wrapcheck
	default:
		return failure.BadRequestFromString(reason.Message()) //nolint:wrapcheck
	}
}
