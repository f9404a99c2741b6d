package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"liyu1981.xyz/maintenance-service/pkg/models"
)

const DefaultTokenTTL = time.Hour

var (
	ErrEmptyToken  = errors.New("auth: empty token")
	ErrEmptySecret = errors.New("auth: empty secret")
)

// Claims represents the JWT claims issued at login.
type Claims struct {
	ID       uint        `json:"id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) Actor() models.Actor {
	return models.Actor{ID: c.ID, Username: c.Username, Role: c.Role}
}

type Authenticator struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret), ttl: DefaultTokenTTL, now: time.Now}
}

// WithClock replaces the time source, used by tests to mint expired tokens.
func (a *Authenticator) WithClock(now func() time.Time) *Authenticator {
	a.now = now
	return a
}

func (a *Authenticator) TTL() time.Duration {
	return a.ttl
}

// Issue signs an HS256 token for actor that expires after the TTL.
func (a *Authenticator) Issue(actor models.Actor) (string, time.Time, error) {
	if len(a.secret) == 0 {
		return "", time.Time{}, ErrEmptySecret
	}
	now := a.now()
	expiresAt := now.Add(a.ttl)
	claims := Claims{
		ID:       actor.ID,
		Username: actor.Username,
		Role:     actor.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(actor.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse validates signature, algorithm and expiry and returns the claims.
func (a *Authenticator) Parse(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrEmptyToken
	}
	if len(a.secret) == 0 {
		return nil, ErrEmptySecret
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("auth: invalid signing method")
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("auth: invalid token")
	}
	if claims.ID == 0 {
		return nil, errors.New("auth: missing id")
	}
	if _, ok := models.NormalizeRole(string(claims.Role)); !ok {
		return nil, errors.New("auth: invalid role")
	}
	return claims, nil
}
