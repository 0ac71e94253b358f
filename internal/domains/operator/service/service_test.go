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
	"clipper/infras/jwt"
	jwtMocks "clipper/infras/jwt/mocks"
	"clipper/infras/otel/mocks"
	"clipper/internal/domains/operator/model/dto"
	"clipper/internal/domains/operator/service"
	"clipper/shared/cache"
	cacheMocks "clipper/shared/cache/mocks"
	"clipper/shared/failure"
	"clipper/shared/password"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	hash, err := password.Hash("424242")
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Operator.PINHash = hash
	cfg.JWT.RefreshExpireMin = 60

	return cfg
}

func TestOperatorService_Login(t *testing.T) {
	tests := []struct {
		name      string
		pin       string
		setupMock func(mockJWT *jwtMocks.MockJWT)
		wantCode  int
	}{
		{
			name: "correct PIN yields a token pair",
			pin:  "424242",
			setupMock: func(mockJWT *jwtMocks.MockJWT) {
				mockJWT.EXPECT().
					GenerateTokenPair(gomock.Any(), "operator").
					Return(&jwt.TokenPair{
						AccessToken:  "access-token",
						RefreshToken: "refresh-token",
						TokenType:    "Bearer",
						ExpiresIn:    900,
					}, nil)
			},
		},
		{
			name:     "wrong PIN is unauthorized",
			pin:      "000000",
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "empty PIN is unauthorized",
			pin:      "",
			wantCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockJWT := jwtMocks.NewMockJWT(ctrl)
			mockCache := cacheMocks.NewMockRedisCache(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(mockJWT)
			}

			svc := service.New(testConfig(t), mockJWT, mockCache, mocks.NewOtel())

			res, err := svc.Login(context.Background(), dto.LoginRequest{PIN: tt.pin})

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "access-token", res.AccessToken)
			assert.Equal(t, "refresh-token", res.RefreshToken)
			assert.Equal(t, "Bearer", res.TokenType)
		})
	}
}

func TestOperatorService_Logout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockJWT := jwtMocks.NewMockJWT(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)

	svc := service.New(testConfig(t), mockJWT, mockCache, mocks.NewOtel())

	claims := &jwt.Claims{
		SessionID: "session-1",
		TokenID:   "token-1",
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(10 * time.Minute)),
		},
	}

	mockCache.EXPECT().
		Save(gomock.Any(), "operator:revoked:token-1", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ any, duration int) error {
			assert.LessOrEqual(t, duration, 10*60)
			assert.Greater(t, duration, 9*60)

			return nil
		})

	require.NoError(t, svc.Logout(context.Background(), claims))

	assert.Error(t, svc.Logout(context.Background(), nil), "logout without a session must fail")
}

func TestOperatorService_IsRevoked(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockJWT := jwtMocks.NewMockJWT(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)

	svc := service.New(testConfig(t), mockJWT, mockCache, mocks.NewOtel())

	mockCache.EXPECT().
		Get(gomock.Any(), "operator:revoked:token-1", gomock.Any()).
		Return(nil)
	mockCache.EXPECT().
		Get(gomock.Any(), "operator:revoked:token-2", gomock.Any()).
		Return(cache.Nil)

	assert.True(t, svc.IsRevoked(context.Background(), "token-1"))
	assert.False(t, svc.IsRevoked(context.Background(), "token-2"))
}

func TestOperatorService_Refresh(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockJWT := jwtMocks.NewMockJWT(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)

	svc := service.New(testConfig(t), mockJWT, mockCache, mocks.NewOtel())

	claims := &jwt.Claims{
		SessionID: "session-1",
		TokenID:   "refresh-token-id",
		Type:      jwt.RefreshToken,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	mockJWT.EXPECT().
		ValidateToken("old-refresh", jwt.RefreshToken).
		Return(claims, nil)
	mockCache.EXPECT().
		Get(gomock.Any(), "operator:revoked:refresh-token-id", gomock.Any()).
		Return(cache.Nil)
	mockJWT.EXPECT().
		RefreshTokens("old-refresh").
		Return(&jwt.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh", TokenType: "Bearer"}, nil)

	// The spent refresh token must end up on the revocation list.
	mockCache.EXPECT().
		Save(gomock.Any(), "operator:revoked:refresh-token-id", gomock.Any(), gomock.Any()).
		Return(nil)

	res, err := svc.Refresh(context.Background(), dto.RefreshRequest{RefreshToken: "old-refresh"})
	require.NoError(t, err)
	assert.Equal(t, "new-access", res.AccessToken)
	assert.Equal(t, "new-refresh", res.RefreshToken)
}

func TestOperatorService_Refresh_Revoked(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockJWT := jwtMocks.NewMockJWT(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)

	svc := service.New(testConfig(t), mockJWT, mockCache, mocks.NewOtel())

	mockJWT.EXPECT().
		ValidateToken("old-refresh", jwt.RefreshToken).
		Return(&jwt.Claims{SessionID: "session-1", TokenID: "refresh-token-id"}, nil)
	mockCache.EXPECT().
		Get(gomock.Any(), "operator:revoked:refresh-token-id", gomock.Any()).
		Return(nil)

	_, err := svc.Refresh(context.Background(), dto.RefreshRequest{RefreshToken: "old-refresh"})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))
}
