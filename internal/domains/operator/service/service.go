package service

import (
	"clipper/config"
	"clipper/infras/jwt"
	"clipper/infras/otel"
	"clipper/internal/domains/operator/model/dto"
	"clipper/shared"
	"clipper/shared/cache"
	"clipper/shared/constant"
	"clipper/shared/failure"
	"clipper/shared/password"
	"clipper/shared/timezone"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const cachePrefixRevoked = "operator:revoked"

// Operator authenticates the shop operator by PIN and manages the session
// tokens that gate calendar mutations. Revoked token IDs live in redis until
// the token would have expired anyway.
type Operator interface {
	Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error)
	Refresh(ctx context.Context, req dto.RefreshRequest) (dto.LoginResponse, error)
	Logout(ctx context.Context, claims *jwt.Claims) error
	IsRevoked(ctx context.Context, tokenID string) bool
}

type serviceImpl struct {
	cfg   *config.Config
	jwt   jwt.JWT
	cache cache.RedisCache
	otel  otel.Otel
}

func New(cfg *config.Config, jwtService jwt.JWT, cache cache.RedisCache, otel otel.Otel) Operator {
	return &serviceImpl{
		cfg:   cfg,
		jwt:   jwtService,
		cache: cache,
		otel:  otel,
	}
}

func (s *serviceImpl) Login(ctx context.Context, req dto.LoginRequest) (res dto.LoginResponse, err error) {
	_, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Login")
	defer scope.End()

	if err := password.Verify(req.PIN, s.cfg.Operator.PINHash); err != nil {
		log.Warn().Msg("operator login rejected")

		return res, failure.Unauthorized("incorrect PIN") //nolint:wrapcheck
	}

	pair, err := s.jwt.GenerateTokenPair(uuid.New().String(), constant.RoleOperator)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to generate operator token pair")

		return res, fmt.Errorf("failed to generate operator token pair: %w", err)
	}

	return fromTokenPair(pair), nil
}

func (s *serviceImpl) Refresh(ctx context.Context, req dto.RefreshRequest) (res dto.LoginResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Refresh")
	defer scope.End()

	claims, err := s.jwt.ValidateToken(req.RefreshToken, jwt.RefreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			return res, failure.Unauthorized("session has expired") //nolint:wrapcheck
		}

		return res, failure.Unauthorized("invalid refresh token") //nolint:wrapcheck
	}

	if s.IsRevoked(ctx, claims.TokenID) {
		return res, failure.Unauthorized("session has been revoked") //nolint:wrapcheck
	}

	pair, err := s.jwt.RefreshTokens(req.RefreshToken)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to refresh operator tokens")

		return res, fmt.Errorf("failed to refresh operator tokens: %w", err)
	}

	// The spent refresh token is revoked so each one is single-use.
	s.revoke(ctx, claims)

	return fromTokenPair(pair), nil
}

func (s *serviceImpl) Logout(ctx context.Context, claims *jwt.Claims) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Logout")
	defer scope.End()
	defer scope.TraceIfError(err)

	if claims == nil {
		return failure.Unauthorized("no active session") //nolint:wrapcheck
	}

	s.revoke(ctx, claims)

	return nil
}

func (s *serviceImpl) IsRevoked(ctx context.Context, tokenID string) bool {
	var marker string

	err := s.cache.Get(ctx, shared.BuildCacheKey(cachePrefixRevoked, tokenID), &marker)

	return err == nil
}

func (s *serviceImpl) revoke(ctx context.Context, claims *jwt.Claims) {
	ttlSeconds := s.cfg.JWT.RefreshExpireMin * 60
	if claims.ExpiresAt != nil {
		if remaining := claims.ExpiresAt.Sub(timezone.Now()); remaining > 0 {
			ttlSeconds = int(remaining / time.Second)
		}
	}

	key := shared.BuildCacheKey(cachePrefixRevoked, claims.TokenID)
	if err := s.cache.Save(ctx, key, "revoked", ttlSeconds); err != nil {
		log.Error().Err(err).Msg("failed to store revoked token marker")
	}
}

func fromTokenPair(pair *jwt.TokenPair) dto.LoginResponse {
	return dto.LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    pair.ExpiresIn,
	}
}
