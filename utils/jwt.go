package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"servicedesk/models"

	"github.com/golang-jwt/jwt"
)

// SessionTokens issues and checks the HS256 session tokens handed out by
// /auth/login.
type SessionTokens struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func NewSessionTokens(secret string, ttl time.Duration) (*SessionTokens, error) {
	if secret == "" {
		return nil, errors.New("JWT_SECRET must be set")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionTokens{Secret: []byte(secret), TTL: ttl}, nil
}

func (s *SessionTokens) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Generate creates a signed token whose subject is the user's uid.
func (s *SessionTokens) Generate(user models.User) (string, time.Time, error) {
	issued := s.now()
	expires := issued.Add(s.TTL)
	claims := jwt.MapClaims{
		"sub":      user.UID,
		"email":    user.Email,
		"userType": string(user.UserType),
		"iat":      issued.Unix(),
		"exp":      expires.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// Subject validates the token and returns its "sub" claim.
func (s *SessionTokens) Subject(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.Secret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("token does not contain a valid 'sub' claim")
	}
	return sub, nil
}

// HashToken computes a SHA-256 hash of the token string.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
