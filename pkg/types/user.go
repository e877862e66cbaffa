package types

import (
	"fmt"
	"strings"
)

// User is the cached profile returned by login and /api/auth/me.
type User struct {
	ID           int64  `json:"userId"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Phone        string `json:"phone,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
	Point        int    `json:"point"`
}

// Provider names a social login provider accepted by /api/auth/login.
type Provider string

const (
	ProviderKakao  Provider = "KAKAO"
	ProviderNaver  Provider = "NAVER"
	ProviderGoogle Provider = "GOOGLE"
)

func (p Provider) IsValid() bool {
	switch p {
	case ProviderKakao, ProviderNaver, ProviderGoogle:
		return true
	default:
		return false
	}
}

// ParseProvider accepts a provider name in any case.
func ParseProvider(value string) (Provider, error) {
	p := Provider(strings.ToUpper(strings.TrimSpace(value)))
	if !p.IsValid() {
		return "", fmt.Errorf("invalid provider %q", value)
	}
	return p, nil
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Provider    Provider `json:"provider"`
	AccessToken string   `json:"accessToken"`
}

// LoginResponse is returned by /api/auth/login and /api/auth/refresh.
type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         *User  `json:"user"`
}
