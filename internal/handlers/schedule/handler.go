package schedule

import (
	"clipper/infras/otel"
	"clipper/internal/domains/schedule/model/dto"
	"clipper/internal/domains/schedule/service"
	"clipper/shared/constant"
	gDto "clipper/shared/dto"
	"clipper/shared/failure"
	"clipper/shared/validator"
	"clipper/transport/http/response"
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Schedule
	otel    otel.Otel
}

func New(service service.Schedule, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/schedule", func(routerGroup chi.Router) {
		routerGroup.Get("/days", handler.GetDays)
		routerGroup.Get("/days/{date}", handler.GetDay)
		routerGroup.Get("/window", handler.GetWindow)
		routerGroup.Post("/bookings", handler.CreateBooking)

		routerGroup.Get("/bookings", handler.GetBookings)
		routerGroup.Put("/window", handler.SetWindow)
		routerGroup.Patch("/days/{date}/availability", handler.ToggleDay)
		routerGroup.Patch("/days/{date}/slots/{time}/availability", handler.ToggleSlot)
		routerGroup.Delete("/days/{date}/slots/{time}/booking", handler.CancelBooking)
		routerGroup.Delete("/state", handler.ClearState)
	})
}

// GetDays returns the strip of upcoming days.
// @Summary Get upcoming days
// @Description Retrieve the strip of upcoming bookable days starting today.
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Data[dto.GetDaysResponse] "Upcoming days"
// @Failure 500 {object} response.Error
// @Router /v1/schedule/days [get]
func (handler *Handler) GetDays(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetDays")
	defer scope.End()

	res, err := handler.service.GetDays(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get day strip")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// GetDay returns the slot grid for one day.
// @Summary Get a day view
// @Description Retrieve the slot grid for a single day, with the per-slot status and booking details.
// @Tags Schedule
// @Produce json
// @Param date path string true "Day in YYYY-MM-DD form"
// @Success 200 {object} response.Data[dto.DayViewResponse] "Day view"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/schedule/days/{date} [get]
func (handler *Handler) GetDay(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetDay")
	defer scope.End()

	day := chi.URLParam(request, constant.RequestParamDate)

	res, err := handler.service.GetDay(ctx, day)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("day", day).Msg("failed to get day view")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// GetWindow returns the operating window.
// @Summary Get the operating window
// @Description Retrieve the start and end hours that bound the slot grid.
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Data[dto.WindowResponse] "Operating window"
// @Failure 500 {object} response.Error
// @Router /v1/schedule/window [get]
func (handler *Handler) GetWindow(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetWindow")
	defer scope.End()

	res, err := handler.service.GetWindow(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get operating window")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// CreateBooking books a slot for an anonymous visitor.
// @Summary Book a slot
// @Description Book a time slot on a day with the visitor's name and phone number.
// @Tags Schedule
// @Accept json
// @Produce json
// @Param request body dto.CreateBookingRequest true "Create Booking Request"
// @Success 201 {object} response.Data[dto.BookingResponse] "Booking created"
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error "Slot already booked"
// @Failure 422 {object} response.Error "Day or slot disabled"
// @Failure 500 {object} response.Error
// @Router /v1/schedule/bookings [post]
func (handler *Handler) CreateBooking(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateBooking")
	defer scope.End()

	req := dto.CreateBookingRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	res, err := handler.service.CreateBooking(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create booking")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Booking created for " + res.Date + " " + res.Time)

	response.WithJSON(writer, http.StatusCreated, res)
}

// GetBookings returns the flattened booking overview.
// @Summary Get all bookings
// @Description Retrieve every booking across all days, sorted by day and slot, with pagination.
// @Tags Schedule
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[dto.GetBookingsResponse] "List of bookings"
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/schedule/bookings [get]
// @Security BearerAuth
func (handler *Handler) GetBookings(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookings")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(request, true)

	res, err := handler.service.GetBookings(ctx, queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get bookings")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// SetWindow replaces the operating window.
// @Summary Set the operating window
// @Description Replace the start and end hours that bound the slot grid. Out-of-range hours are clamped.
// @Tags Schedule
// @Accept json
// @Produce json
// @Param request body dto.SetWindowRequest true "Set Window Request"
// @Success 200 {object} response.Message "Window updated"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/schedule/window [put]
// @Security BearerAuth
func (handler *Handler) SetWindow(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".SetWindow")
	defer scope.End()

	req := dto.SetWindowRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	if err := handler.service.SetOperatingWindow(ctx, req.StartHour, req.EndHour, privileged(ctx)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to set operating window")

		response.WithError(writer, err)

		return
	}

	response.WithMessage(writer, http.StatusOK, "Operating window updated")
}

// ToggleDay flips the disabled flag for a whole day.
// @Summary Toggle day availability
// @Description Flip whether a day accepts bookings. Existing bookings are kept.
// @Tags Schedule
// @Produce json
// @Param date path string true "Day in YYYY-MM-DD form"
// @Success 200 {object} response.Message "Day availability toggled"
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/schedule/days/{date}/availability [patch]
// @Security BearerAuth
func (handler *Handler) ToggleDay(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ToggleDay")
	defer scope.End()

	day := chi.URLParam(request, constant.RequestParamDate)

	if err := validator.ValidateVar(day, "required,daykey"); err != nil {
		response.WithError(writer, failure.BadRequestFromString("date must be a calendar date in YYYY-MM-DD form"))

		return
	}

	if err := handler.service.ToggleDayDisabled(ctx, day, privileged(ctx)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("day", day).Msg("failed to toggle day availability")

		response.WithError(writer, err)

		return
	}

	response.WithMessage(writer, http.StatusOK, "Day availability toggled")
}

// ToggleSlot flips the disabled flag for one slot on one day.
// @Summary Toggle slot availability
// @Description Flip whether a single time slot on a day accepts bookings.
// @Tags Schedule
// @Produce json
// @Param date path string true "Day in YYYY-MM-DD form"
// @Param time path string true "Slot label in HH:MM form"
// @Success 200 {object} response.Message "Slot availability toggled"
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/schedule/days/{date}/slots/{time}/availability [patch]
// @Security BearerAuth
func (handler *Handler) ToggleSlot(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ToggleSlot")
	defer scope.End()

	day := chi.URLParam(request, constant.RequestParamDate)
	slot := chi.URLParam(request, constant.RequestParamTime)

	if err := validator.ValidateVar(day, "required,daykey"); err != nil {
		response.WithError(writer, failure.BadRequestFromString("date must be a calendar date in YYYY-MM-DD form"))

		return
	}

	if err := validator.ValidateVar(slot, "required,slotlabel"); err != nil {
		response.WithError(writer, failure.BadRequestFromString("time must be a slot label in HH:MM form"))

		return
	}

	if err := handler.service.ToggleSlotDisabled(ctx, day, slot, privileged(ctx)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("day", day).Str("slot", slot).Msg("failed to toggle slot availability")

		response.WithError(writer, err)

		return
	}

	response.WithMessage(writer, http.StatusOK, "Slot availability toggled")
}

// CancelBooking removes the booking on a slot.
// @Summary Cancel a booking
// @Description Remove the booking held on a slot. Cancelling an empty slot is a no-op.
// @Tags Schedule
// @Produce json
// @Param date path string true "Day in YYYY-MM-DD form"
// @Param time path string true "Slot label in HH:MM form"
// @Success 200 {object} response.Message "Booking cancelled"
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/schedule/days/{date}/slots/{time}/booking [delete]
// @Security BearerAuth
func (handler *Handler) CancelBooking(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CancelBooking")
	defer scope.End()

	day := chi.URLParam(request, constant.RequestParamDate)
	slot := chi.URLParam(request, constant.RequestParamTime)

	if err := handler.service.CancelBooking(ctx, day, slot, privileged(ctx)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("day", day).Str("slot", slot).Msg("failed to cancel booking")

		response.WithError(writer, err)

		return
	}

	response.WithMessage(writer, http.StatusOK, "Booking cancelled")
}

// ClearState wipes every booking and disabled flag.
// @Summary Clear the calendar
// @Description Remove every booking and disabled flag. The operating window is kept. Requires explicit confirmation.
// @Tags Schedule
// @Accept json
// @Produce json
// @Param request body dto.ClearStateRequest true "Clear State Request"
// @Success 200 {object} response.Message "Calendar cleared"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/schedule/state [delete]
// @Security BearerAuth
func (handler *Handler) ClearState(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ClearState")
	defer scope.End()

	req := dto.ClearStateRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	if !req.Confirm {
		response.WithError(writer, failure.BadRequestFromString("confirm must be true to clear the calendar"))

		return
	}

	if err := handler.service.ClearAll(ctx, privileged(ctx)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to clear calendar")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Calendar cleared by operator")

	response.WithMessage(writer, http.StatusOK, "Calendar cleared")
}

func privileged(ctx context.Context) bool {
	p, _ := ctx.Value(constant.ContextKeyPrivileged).(bool)

	return p
}
