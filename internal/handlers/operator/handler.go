package operator

import (
	"clipper/infras/jwt"
	"clipper/infras/otel"
	"clipper/internal/domains/operator/model/dto"
	"clipper/internal/domains/operator/service"
	"clipper/shared/constant"
	"clipper/shared/failure"
	"clipper/shared/validator"
	"clipper/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Operator
	jwt     jwt.JWT
	otel    otel.Otel
}

func New(service service.Operator, jwtService jwt.JWT, otel otel.Otel) Handler {
	return Handler{
		service: service,
		jwt:     jwtService,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/operator", func(routerGroup chi.Router) {
		routerGroup.Post("/login", handler.Login)
		routerGroup.Post("/refresh", handler.Refresh)
		routerGroup.Post("/logout", handler.Logout)
	})
}

// Login exchanges the operator PIN for a session token pair.
// @Summary Operator login
// @Description Exchange the operator PIN for an access and refresh token pair.
// @Tags Operator
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login Request"
// @Success 200 {object} response.Data[dto.LoginResponse] "Session tokens"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error "Incorrect PIN"
// @Failure 500 {object} response.Error
// @Router /v1/operator/login [post]
func (handler *Handler) Login(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Login")
	defer scope.End()

	req := dto.LoginRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	res, err := handler.service.Login(ctx, req)
	if err != nil {
		scope.TraceError(err)

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Operator session started")

	response.WithJSON(writer, http.StatusOK, res)
}

// Refresh rotates a refresh token into a new token pair.
// @Summary Refresh operator session
// @Description Exchange a refresh token for a new token pair. The spent refresh token is revoked.
// @Tags Operator
// @Accept json
// @Produce json
// @Param request body dto.RefreshRequest true "Refresh Request"
// @Success 200 {object} response.Data[dto.LoginResponse] "Session tokens"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/operator/refresh [post]
func (handler *Handler) Refresh(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Refresh")
	defer scope.End()

	req := dto.RefreshRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	res, err := handler.service.Refresh(ctx, req)
	if err != nil {
		scope.TraceError(err)

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// Logout revokes the presented access token.
// @Summary Operator logout
// @Description Revoke the presented access token so it can no longer gate mutations.
// @Tags Operator
// @Produce json
// @Success 200 {object} response.Message "Logged out"
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/operator/logout [post]
// @Security BearerAuth
func (handler *Handler) Logout(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Logout")
	defer scope.End()

	authHeader := request.Header.Get(constant.RequestHeaderAuthorization)

	tokenString, err := jwt.ExtractTokenFromHeader(authHeader)
	if err != nil {
		response.WithError(writer, failure.Unauthorized("Invalid authorization header format"))

		return
	}

	claims, err := handler.jwt.ValidateToken(tokenString, jwt.AccessToken)
	if err != nil {
		response.WithError(writer, failure.Unauthorized("Invalid token"))

		return
	}

	if err := handler.service.Logout(ctx, claims); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to log out operator")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Operator session revoked")

	response.WithMessage(writer, http.StatusOK, "Logged out")
}
