// Package session issues the signed cookie that ties a browser to its cart.
package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid session token")

type TokenMaker struct {
	secret []byte
	issuer string
}

func NewTokenMaker(secret string) *TokenMaker {
	return &TokenMaker{
		secret: []byte(secret),
		issuer: "storefront-cart",
	}
}

type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// NewSession mints a fresh session id and its signed token.
func (t *TokenMaker) NewSession(ttl time.Duration) (sid, token string, err error) {
	sid = uuid.NewString()
	token, err = t.New(sid, ttl)
	if err != nil {
		return "", "", err
	}
	return sid, token, nil
}

func (t *TokenMaker) New(sessionID string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

func (t *TokenMaker) Parse(tokenStr string) (Claims, error) {
	var c Claims

	token, err := jwt.ParseWithClaims(tokenStr, &c, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	}, jwt.WithIssuer(t.issuer))
	if err != nil || token == nil || !token.Valid || c.SessionID == "" {
		return Claims{}, ErrInvalidToken
	}

	return c, nil
}
