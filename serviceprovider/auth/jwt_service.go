package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const sessionTokenType = "session"

// SessionClaims is what a session token carries. Expiry is enforced against
// the stored session, not the token.
type SessionClaims struct {
	SessionID string
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type JWTService interface {
	GenerateSessionToken(sessionID, userID string, issuedAt, expiresAt time.Time) (string, error)
	ParseSessionToken(tokenStr string) (SessionClaims, error)
}

type jwtService struct {
	jwtSecret []byte
}

func NewJWTService(secret string) JWTService {
	return &jwtService{
		jwtSecret: []byte(secret),
	}
}

func (j *jwtService) GenerateSessionToken(sessionID, userID string, issuedAt, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"jti": sessionID,
		"sub": userID,
		"typ": sessionTokenType,
		"exp": expiresAt.Unix(),
		"iat": issuedAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.jwtSecret)
}

func (j *jwtService) ParseSessionToken(tokenStr string) (SessionClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return j.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())

	if err != nil || !token.Valid {
		return SessionClaims{}, fmt.Errorf("invalid session token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["typ"] != sessionTokenType {
		return SessionClaims{}, errors.New("invalid token claims")
	}

	jti, ok := claims["jti"].(string)
	if !ok || jti == "" {
		return SessionClaims{}, errors.New("invalid 'jti' claim")
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return SessionClaims{}, errors.New("invalid 'sub' claim")
	}

	out := SessionClaims{SessionID: jti, UserID: sub}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}
