package dto

// LoginRequest carries the operator PIN. The PIN itself is never logged.
type LoginRequest struct {
	PIN string `json:"pin" validate:"required" example:"123456"`
}

type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType" example:"Bearer"`
	ExpiresIn    int64  `json:"expiresIn" example:"900"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}
