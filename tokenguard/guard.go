package tokenguard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidConfig = errors.New("tokenguard: invalid configuration")
	ErrTokenInvalid  = errors.New("tokenguard: invalid token")
	ErrTokenReplayed = errors.New("tokenguard: token already used")
	ErrUnavailable   = errors.New("tokenguard: replay store unavailable")
)

const (
	defaultKeyPrefix = "jti:"
	consumedMarker   = "consumed"
	minRecordTTL     = time.Second
)

// Store records first use of a key. *validate.Validator satisfies it.
type Store interface {
	UnRepeatableValidateFor(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
}

type Config struct {
	Secret    []byte
	Issuer    string
	Audience  string
	Leeway    time.Duration
	KeyPrefix string
}

// Guard is safe for concurrent use.
type Guard struct {
	cfg    Config
	store  Store
	now    func() time.Time
	method jwt.SigningMethod
}

// Option customizes a Guard.
type Option func(*Guard)

func WithClock(now func() time.Time) Option {
	return func(g *Guard) {
		if now != nil {
			g.now = now
		}
	}
}

func New(store Store, cfg Config, opts ...Option) (*Guard, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: nil store", ErrInvalidConfig)
	}
	if len(cfg.Secret) < 32 {
		return nil, fmt.Errorf("%w: secret must be at least 256 bits", ErrInvalidConfig)
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, fmt.Errorf("%w: leeway must be within [0, 2m]", ErrInvalidConfig)
	}
	if strings.TrimSpace(cfg.KeyPrefix) == "" {
		cfg.KeyPrefix = defaultKeyPrefix
	}
	cfg.Secret = append([]byte(nil), cfg.Secret...)

	g := &Guard{
		cfg:    cfg,
		store:  store,
		now:    time.Now,
		method: jwt.SigningMethodHS256,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Issue mints a token for subject that expires after ttl. Every token gets a
// fresh random jti.
func (g *Guard) Issue(subject string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("%w: ttl must be > 0", ErrInvalidConfig)
	}

	now := g.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		Issuer:    g.cfg.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	if g.cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{g.cfg.Audience}
	}

	return jwt.NewWithClaims(g.method, claims).SignedString(g.cfg.Secret)
}

// Consume verifies raw and records its jti. It succeeds exactly once per
// token; later calls fail with ErrTokenReplayed. When the store cannot be
// reached the token is refused with ErrUnavailable.
func (g *Guard) Consume(ctx context.Context, raw string) (*jwt.RegisteredClaims, error) {
	claims, err := g.parse(raw)
	if err != nil {
		return nil, err
	}

	ttl := claims.ExpiresAt.Sub(g.now()) + g.cfg.Leeway
	if ttl < minRecordTTL {
		ttl = minRecordTTL
	}

	ok, err := g.store.UnRepeatableValidateFor(ctx, g.cfg.KeyPrefix+claims.ID, consumedMarker, ttl)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !ok {
		return nil, ErrTokenReplayed
	}
	return claims, nil
}

func (g *Guard) parse(raw string) (*jwt.RegisteredClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{g.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.now),
	}
	if g.cfg.Leeway > 0 {
		opts = append(opts, jwt.WithLeeway(g.cfg.Leeway))
	}
	if g.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(g.cfg.Issuer))
	}
	if g.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(g.cfg.Audience))
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return g.cfg.Secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if strings.TrimSpace(claims.ID) == "" {
		return nil, fmt.Errorf("%w: missing jti", ErrTokenInvalid)
	}
	return claims, nil
}
