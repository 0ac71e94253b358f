package service_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"clipper/config"
	"clipper/infras/kafka"
	kafkaMocks "clipper/infras/kafka/mocks"
	"clipper/infras/otel/mocks"
	"clipper/internal/domains/schedule/model"
	"clipper/internal/domains/schedule/model/dto"
	scheduleMocks "clipper/internal/domains/schedule/mocks"
	"clipper/internal/domains/schedule/service"
	"clipper/shared/cache"
	cacheMocks "clipper/shared/cache/mocks"
	gDto "clipper/shared/dto"
	"clipper/shared/failure"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Schedule.DaysAhead = 3
	cfg.Cache.TTL = 60

	return cfg
}

func waitFor(t *testing.T, done <-chan struct{}, what string) {
	t.Helper()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestScheduleService_CreateBooking(t *testing.T) {
	tests := []struct {
		name     string
		req      dto.CreateBookingRequest
		state    func() model.State
		wantCode int
		wantSave bool
	}{
		{
			name: "valid booking is persisted",
			req: dto.CreateBookingRequest{
				Date:      "2026-09-01",
				Time:      "10:00",
				FirstName: "Sara",
				LastName:  "Ahmadi",
				Phone:     "0912 345 6789",
			},
			state:    model.DefaultState,
			wantSave: true,
		},
		{
			name: "occupied slot is rejected with conflict",
			req: dto.CreateBookingRequest{
				Date:      "2026-09-01",
				Time:      "10:00",
				FirstName: "Sara",
				LastName:  "Ahmadi",
				Phone:     "09123456789",
			},
			state: func() model.State {
				state := model.DefaultState()
				state.SetBooking("2026-09-01", "10:00", model.BookingRecord{FirstName: "x", LastName: "y", Phone: "09120000000"})

				return state
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "disabled day is rejected as unprocessable",
			req: dto.CreateBookingRequest{
				Date:      "2026-09-01",
				Time:      "10:00",
				FirstName: "Sara",
				LastName:  "Ahmadi",
				Phone:     "09123456789",
			},
			state: func() model.State {
				state := model.DefaultState()
				state.ToggleDayDisabled("2026-09-01")

				return state
			},
			wantCode: http.StatusUnprocessableEntity,
		},
		{
			name: "missing name is rejected as bad request",
			req: dto.CreateBookingRequest{
				Date:  "2026-09-01",
				Time:  "10:00",
				Phone: "09123456789",
			},
			state:    model.DefaultState,
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockRepo := scheduleMocks.NewMockSchedule(ctrl)
			mockCache := cacheMockForTest(ctrl)
			mockKafka := kafkaMocks.NewMockClient(ctrl)

			svc := service.New(mockRepo, testConfig(), mockCache.mock, mockKafka, mocks.NewOtel())

			mockRepo.EXPECT().Load(gomock.Any()).Return(tt.state(), nil)

			var saved model.State

			if tt.wantSave {
				mockRepo.EXPECT().
					Save(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, state model.State) error {
						saved = state

						return nil
					})
			}

			res, err := svc.CreateBooking(context.Background(), tt.req)

			if !tt.wantSave {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "2026-09-01", res.Date)
			assert.Equal(t, "09123456789", res.Phone, "stored phone must be the normalized form")

			record, booked := saved.Booking("2026-09-01", "10:00")
			assert.True(t, booked)
			assert.Equal(t, "09123456789", record.Phone)

			mockCache.waitCleared(t)
		})
	}
}

func TestScheduleService_CreateBooking_PublishesEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := scheduleMocks.NewMockSchedule(ctrl)
	mockCache := cacheMockForTest(ctrl)
	mockKafka := kafkaMocks.NewMockClient(ctrl)

	cfg := testConfig()
	cfg.Kafka.Enable = true
	cfg.Kafka.EventTopic = "schedule.events"

	svc := service.New(mockRepo, cfg, mockCache.mock, mockKafka, mocks.NewOtel())

	mockRepo.EXPECT().Load(gomock.Any()).Return(model.DefaultState(), nil)
	mockRepo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	published := make(chan kafka.Message, 1)

	mockKafka.EXPECT().
		SendMessages(gomock.Any(), "schedule.events", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, messages ...kafka.Message) error {
			published <- messages[0]

			return nil
		})

	_, err := svc.CreateBooking(context.Background(), dto.CreateBookingRequest{
		Date:      "2026-09-01",
		Time:      "10:00",
		FirstName: "Sara",
		LastName:  "Ahmadi",
		Phone:     "09123456789",
	})
	require.NoError(t, err)

	select {
	case message := <-published:
		assert.Equal(t, service.EventBookingCreated, message.Key)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the booking event")
	}

	mockCache.waitCleared(t)
}

func TestScheduleService_GatedMutationsIgnoreUnprivilegedCallers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No repository or kafka expectations: an unprivileged call must not
	// load, save, or publish anything.
	mockRepo := scheduleMocks.NewMockSchedule(ctrl)
	mockCache := cacheMockForTest(ctrl)
	mockKafka := kafkaMocks.NewMockClient(ctrl)

	svc := service.New(mockRepo, testConfig(), mockCache.mock, mockKafka, mocks.NewOtel())

	ctx := context.Background()

	assert.NoError(t, svc.ToggleDayDisabled(ctx, "2026-09-01", false))
	assert.NoError(t, svc.ToggleSlotDisabled(ctx, "2026-09-01", "10:00", false))
	assert.NoError(t, svc.CancelBooking(ctx, "2026-09-01", "10:00", false))
	assert.NoError(t, svc.ClearAll(ctx, false))
	assert.NoError(t, svc.SetOperatingWindow(ctx, 8, 18, false))
}

func TestScheduleService_CancelBooking(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := scheduleMocks.NewMockSchedule(ctrl)
	mockCache := cacheMockForTest(ctrl)
	mockKafka := kafkaMocks.NewMockClient(ctrl)

	svc := service.New(mockRepo, testConfig(), mockCache.mock, mockKafka, mocks.NewOtel())

	state := model.DefaultState()
	state.SetBooking("2026-09-01", "10:00", model.BookingRecord{FirstName: "Sara", LastName: "Ahmadi", Phone: "09123456789"})

	mockRepo.EXPECT().Load(gomock.Any()).Return(state, nil)

	var saved model.State

	mockRepo.EXPECT().
		Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, state model.State) error {
			saved = state

			return nil
		})

	require.NoError(t, svc.CancelBooking(context.Background(), "2026-09-01", "10:00", true))

	assert.False(t, saved.IsBooked("2026-09-01", "10:00"))

	mockCache.waitCleared(t)
}

func TestScheduleService_ClearAllKeepsWindow(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := scheduleMocks.NewMockSchedule(ctrl)
	mockCache := cacheMockForTest(ctrl)
	mockKafka := kafkaMocks.NewMockClient(ctrl)

	svc := service.New(mockRepo, testConfig(), mockCache.mock, mockKafka, mocks.NewOtel())

	state := model.DefaultState()
	state.SetWindow(8, 18)
	state.SetBooking("2026-09-01", "10:00", model.BookingRecord{FirstName: "Sara", LastName: "Ahmadi", Phone: "09123456789"})
	state.ToggleDayDisabled("2026-09-02")

	mockRepo.EXPECT().Load(gomock.Any()).Return(state, nil)

	var saved model.State

	mockRepo.EXPECT().
		Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, state model.State) error {
			saved = state

			return nil
		})

	require.NoError(t, svc.ClearAll(context.Background(), true))

	assert.Empty(t, saved.Bookings)
	assert.Empty(t, saved.DisabledDays)
	assert.Empty(t, saved.DisabledSlots)
	assert.Equal(t, 8, saved.StartHour)
	assert.Equal(t, 18, saved.EndHour)

	mockCache.waitCleared(t)
}

func TestScheduleService_SetOperatingWindowClamps(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := scheduleMocks.NewMockSchedule(ctrl)
	mockCache := cacheMockForTest(ctrl)
	mockKafka := kafkaMocks.NewMockClient(ctrl)

	svc := service.New(mockRepo, testConfig(), mockCache.mock, mockKafka, mocks.NewOtel())

	mockRepo.EXPECT().Load(gomock.Any()).Return(model.DefaultState(), nil)

	var saved model.State

	mockRepo.EXPECT().
		Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, state model.State) error {
			saved = state

			return nil
		})

	require.NoError(t, svc.SetOperatingWindow(context.Background(), -5, 99, true))

	assert.Equal(t, 0, saved.StartHour)
	assert.Equal(t, 24, saved.EndHour)

	mockCache.waitCleared(t)
}

func TestScheduleService_GetBookings(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := scheduleMocks.NewMockSchedule(ctrl)
	mockCache := cacheMockForTest(ctrl)
	mockKafka := kafkaMocks.NewMockClient(ctrl)

	svc := service.New(mockRepo, testConfig(), mockCache.mock, mockKafka, mocks.NewOtel())

	state := model.DefaultState()
	state.SetBooking("2026-09-02", "09:00", model.BookingRecord{FirstName: "c", LastName: "c", Phone: "09120000003"})
	state.SetBooking("2026-09-01", "10:30", model.BookingRecord{FirstName: "b", LastName: "b", Phone: "09120000002"})
	state.SetBooking("2026-09-01", "09:00", model.BookingRecord{FirstName: "a", LastName: "a", Phone: "09120000001"})
	// A record outside the default window stays listable.
	state.SetBooking("2026-09-03", "23:30", model.BookingRecord{FirstName: "d", LastName: "d", Phone: "09120000004"})

	mockRepo.EXPECT().Load(gomock.Any()).Return(state, nil).Times(2)

	res, err := svc.GetBookings(context.Background(), gDto.QueryParams{Page: 1, Limit: 2})
	require.NoError(t, err)

	assert.Equal(t, 4, res.TotalData)
	assert.Equal(t, 2, res.TotalPage)
	require.Len(t, res.Bookings, 2)
	assert.Equal(t, "2026-09-01", res.Bookings[0].Date)
	assert.Equal(t, "09:00", res.Bookings[0].Time)
	assert.Equal(t, "10:30", res.Bookings[1].Time)

	res, err = svc.GetBookings(context.Background(), gDto.QueryParams{Page: 2, Limit: 2})
	require.NoError(t, err)

	require.Len(t, res.Bookings, 2)
	assert.Equal(t, "2026-09-02", res.Bookings[0].Date)
	assert.Equal(t, "23:30", res.Bookings[1].Time)
}

func TestScheduleService_GetDay(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := scheduleMocks.NewMockSchedule(ctrl)
	mockCache := cacheMockForTest(ctrl)
	mockKafka := kafkaMocks.NewMockClient(ctrl)

	svc := service.New(mockRepo, testConfig(), mockCache.mock, mockKafka, mocks.NewOtel())

	state := model.DefaultState()
	state.SetBooking("2026-09-01", "10:00", model.BookingRecord{FirstName: "Sara", LastName: "Ahmadi", Phone: "09123456789"})
	state.ToggleSlotDisabled("2026-09-01", "11:00")

	mockRepo.EXPECT().Load(gomock.Any()).Return(state, nil)

	res, err := svc.GetDay(context.Background(), "2026-09-01")
	require.NoError(t, err)

	assert.Equal(t, "2026-09-01", res.Date)
	assert.Equal(t, "Tuesday", res.Weekday)
	assert.False(t, res.Disabled)
	require.Len(t, res.Slots, 24)

	byTime := map[string]dto.SlotView{}
	for _, slot := range res.Slots {
		byTime[slot.Time] = slot
	}

	assert.Equal(t, dto.SlotStatusBooked, byTime["10:00"].Status)
	require.NotNil(t, byTime["10:00"].Booking)
	assert.Equal(t, "Sara", byTime["10:00"].Booking.FirstName)
	assert.Equal(t, dto.SlotStatusDisabled, byTime["11:00"].Status)
	assert.Equal(t, dto.SlotStatusOpen, byTime["09:00"].Status)

	mockCache.waitSaved(t)
}

func TestScheduleService_GetDays(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := scheduleMocks.NewMockSchedule(ctrl)
	mockCache := cacheMockForTest(ctrl)
	mockKafka := kafkaMocks.NewMockClient(ctrl)

	svc := service.New(mockRepo, testConfig(), mockCache.mock, mockKafka, mocks.NewOtel())

	mockRepo.EXPECT().Load(gomock.Any()).Return(model.DefaultState(), nil)

	res, err := svc.GetDays(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Days, 3)

	for i, day := range res.Days {
		assert.False(t, day.Disabled)
		assert.NotEmpty(t, day.Weekday)

		if i > 0 {
			assert.Less(t, res.Days[i-1].Date, day.Date)
		}
	}

	mockCache.waitSaved(t)
}

// cacheMock wraps the generated cache mock with channel-backed expectations,
// since the service invalidates and saves caches on background goroutines.
type cacheMock struct {
	mock    *cacheMocks.MockRedisCache
	cleared chan struct{}
	saved   chan struct{}
}

func (c *cacheMock) waitCleared(t *testing.T) {
	waitFor(t, c.cleared, "cache invalidation")
}

func (c *cacheMock) waitSaved(t *testing.T) {
	waitFor(t, c.saved, "cache save")
}

func cacheMockForTest(ctrl *gomock.Controller) *cacheMock {
	c := &cacheMock{
		mock:    cacheMocks.NewMockRedisCache(ctrl),
		cleared: make(chan struct{}, 16),
		saved:   make(chan struct{}, 16),
	}

	c.mock.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(cache.Nil).AnyTimes()

	c.mock.EXPECT().
		Clear(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string) error {
			c.cleared <- struct{}{}

			return nil
		}).
		AnyTimes()

	c.mock.EXPECT().
		Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string, any, int) error {
			c.saved <- struct{}{}

			return nil
		}).
		AnyTimes()

	return c
}
