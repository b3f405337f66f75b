package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/joestar02/fleetdesk/application/port/outbound"
	"github.com/joestar02/fleetdesk/domain"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// JWTService signs and validates HS256 session tokens. The jti claim carries
// the session id so audit events can be tied back to one login.
type JWTService struct {
	secret   []byte
	lifetime time.Duration
}

func NewJWTService(secret string, lifetime time.Duration) (*JWTService, error) {
	if secret == "" {
		return nil, fmt.Errorf("session secret cannot be empty")
	}
	if lifetime <= 0 {
		lifetime = 8 * time.Hour
	}
	return &JWTService{secret: []byte(secret), lifetime: lifetime}, nil
}

func (s *JWTService) Lifetime() time.Duration { return s.lifetime }

func (s *JWTService) Generate(claims outbound.SessionClaims) (string, error) {
	now := time.Now()
	tokenClaims := jwt.MapClaims{
		"sub":      claims.ActorID,
		"username": claims.Username,
		"role":     string(claims.Role),
		"jti":      claims.SessionID,
		"iat":      now.Unix(),
		"exp":      now.Add(s.lifetime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

func (s *JWTService) Validate(tokenString string) (*outbound.SessionClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, ok := claims["sub"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}
	username, _ := claims["username"].(string)
	role, _ := claims["role"].(string)
	sessionID, _ := claims["jti"].(string)
	if sessionID == "" {
		return nil, ErrInvalidToken
	}
	return &outbound.SessionClaims{
		ActorID:   int64(sub),
		Username:  username,
		Role:      domain.Role(role),
		SessionID: sessionID,
	}, nil
}
