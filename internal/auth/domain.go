package auth

import "time"

// User is the credential-bearing view of a registry record.
type User struct {
	ID               int64
	Name             string
	Email            string
	Phone            string
	RefreshTokenHash string
	CreatedAt        time.Time
}

// TokenPair carries a freshly issued access/refresh token combination.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
