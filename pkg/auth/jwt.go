package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token is expired")
	ErrTokenType    = errors.New("invalid token type")
)

type Config struct {
	Secret     string        `envconfig:"JWT_SECRET" required:"true" json:"-"`
	AccessTTL  time.Duration `envconfig:"JWT_ACCESS_TTL" default:"24h"`
	RefreshTTL time.Duration `envconfig:"JWT_REFRESH_TTL" default:"168h"`
	Issuer     string        `envconfig:"JWT_ISSUER" default:"library-catalog"`
}

// Claims carries the username as subject. uid and role are only set on access tokens.
type Claims struct {
	UserID int64     `json:"uid,omitempty"`
	Role   Role      `json:"role,omitempty"`
	Type   TokenType `json:"type"`
	jwt.RegisteredClaims
}

type Pair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

type TokenManager struct {
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	now        func() time.Time
}

func NewTokenManager(cfg Config) *TokenManager {
	return &TokenManager{
		key:        []byte(cfg.Secret),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		issuer:     cfg.Issuer,
		now:        time.Now,
	}
}

func (m *TokenManager) IssuePair(userID int64, username string, role Role) (Pair, error) {
	now := m.now()
	accessExp := now.Add(m.accessTTL)
	access, err := m.sign(Claims{
		UserID:           userID,
		Role:             role,
		Type:             TokenAccess,
		RegisteredClaims: m.registered(username, now, accessExp),
	})
	if err != nil {
		return Pair{}, err
	}
	refresh, err := m.sign(Claims{
		Type:             TokenRefresh,
		RegisteredClaims: m.registered(username, now, now.Add(m.refreshTTL)),
	})
	if err != nil {
		return Pair{}, err
	}
	return Pair{AccessToken: access, RefreshToken: refresh, ExpiresAt: accessExp}, nil
}

// Parse validates signature, issuer and expiry, then requires the token to be of type want.
func (m *TokenManager) Parse(tokenStr string, want TokenType) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != want {
		return nil, ErrTokenType
	}
	return claims, nil
}

func (m *TokenManager) registered(subject string, now, exp time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    m.issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
}

func (m *TokenManager) sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(m.key)
}
