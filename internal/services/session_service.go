package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/trustedgroup/enrollment-service/internal/config"
	"github.com/trustedgroup/enrollment-service/internal/utils"
)

// TokenIssuer identifies this service in every session JWT it signs.
const TokenIssuer = "TrustedGroup"

// Session is the decoded identity a request carries.
type Session struct {
	Handle string
}

// SessionService mints and validates the durable login credential a
// browser holds after enrollment.
type SessionService interface {
	Issue(handle string) (string, error)
	Validate(tokenString string) (*Session, error)
}

type sessionService struct {
	secret []byte
	ttl    time.Duration
}

func NewSessionService(cfg *config.Config) SessionService {
	return &sessionService{
		secret: cfg.SessionSecret,
		ttl:    cfg.SessionTTL,
	}
}

func (s *sessionService) Issue(handle string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": TokenIssuer,
		"sub": handle,
		"exp": now.Add(s.ttl).Unix(),
		"iat": now.Unix(),
		"jti": uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

func (s *sessionService) Validate(tokenString string) (*Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", utils.ErrInvalidSession, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, utils.ErrInvalidSession
	}

	iss, ok := claims["iss"].(string)
	if !ok || iss != TokenIssuer {
		return nil, utils.ErrInvalidSession
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, utils.ErrInvalidSession
	}

	return &Session{Handle: sub}, nil
}
