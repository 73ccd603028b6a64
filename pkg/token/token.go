package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenType string

const (
	// TokenTypeReturning marks the long-lived returning-user cookie that
	// maps a browser back to its reservation.
	TokenTypeReturning TokenType = "returning"
	// TokenTypeAdmin marks a short-lived admin session token.
	TokenTypeAdmin TokenType = "admin"
)

// Claims extends jwt.RegisteredClaims with the token kind.
type Claims struct {
	jwt.RegisteredClaims
	TokenType TokenType `json:"token_type"`
}

type Manager struct {
	signingKey []byte
	issuer     string
	returnTTL  time.Duration
	adminTTL   time.Duration
}

func NewManager(signingKey, issuer string, returnTTL, adminTTL time.Duration) *Manager {
	return &Manager{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		returnTTL:  returnTTL,
		adminTTL:   adminTTL,
	}
}

// GenerateReturningToken creates a signed token whose subject is the
// reservation's storage id. Possession only proves "same browser as
// before": callers must re-resolve the id against the store.
func (m *Manager) GenerateReturningToken(rsvpID uuid.UUID) (string, error) {
	return m.generate(rsvpID.String(), TokenTypeReturning, m.returnTTL)
}

// GenerateAdminToken creates a signed admin session token.
func (m *Manager) GenerateAdminToken() (string, error) {
	return m.generate("admin", TokenTypeAdmin, m.adminTTL)
}

func (m *Manager) generate(subject string, typ TokenType, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.New().String(),
		},
		TokenType: typ,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.signingKey)
}

// ValidateReturningToken parses a returning-user token and extracts the
// reservation id it references.
func (m *Manager) ValidateReturningToken(tokenStr string) (uuid.UUID, error) {
	claims, err := m.validate(tokenStr)
	if err != nil {
		return uuid.Nil, err
	}
	if claims.TokenType != TokenTypeReturning {
		return uuid.Nil, errors.New("wrong token type")
	}
	return uuid.Parse(claims.Subject)
}

// ValidateAdminToken parses and checks an admin session token.
func (m *Manager) ValidateAdminToken(tokenStr string) error {
	claims, err := m.validate(tokenStr)
	if err != nil {
		return err
	}
	if claims.TokenType != TokenTypeAdmin {
		return errors.New("wrong token type")
	}
	return nil
}

func (m *Manager) validate(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.signingKey, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	if claims.Issuer != m.issuer {
		return nil, errors.New("invalid issuer")
	}

	return claims, nil
}
