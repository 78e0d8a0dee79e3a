package tokenguard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrEthical07/goCoord/validate"
	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newGuardTest(t *testing.T, cfg Config) (*Guard, *miniredis.Miniredis, *fakeClock) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})

	v, err := validate.New(rdb)
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	if cfg.Secret == nil {
		cfg.Secret = testSecret
	}
	clock := &fakeClock{t: time.Now().Truncate(time.Second)}
	g, err := New(v, cfg, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("guard: %v", err)
	}
	return g, mr, clock
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	if _, err := New(nil, Config{Secret: testSecret}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for nil store, got %v", err)
	}

	var store Store = &validate.Validator{}
	for name, cfg := range map[string]Config{
		"short secret": {Secret: []byte("short")},
		"leeway":       {Secret: testSecret, Leeway: time.Hour},
	} {
		if _, err := New(store, cfg); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("%s: expected ErrInvalidConfig, got %v", name, err)
		}
	}
}

func TestConsumeOnce(t *testing.T) {
	g, mr, _ := newGuardTest(t, Config{Issuer: "gocoord", Audience: "orders"})
	ctx := context.Background()

	token, err := g.Issue("user-1", time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := g.Consume(ctx, token)
	if err != nil {
		t.Fatalf("first consume: %v", err)
	}
	if claims.Subject != "user-1" || claims.ID == "" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if ttl := mr.TTL("VK_jti:" + claims.ID); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("record must expire with the token, ttl=%v", ttl)
	}

	if _, err := g.Consume(ctx, token); !errors.Is(err, ErrTokenReplayed) {
		t.Fatalf("expected ErrTokenReplayed, got %v", err)
	}
}

func TestConsumeConcurrentSingleWinner(t *testing.T) {
	g, _, _ := newGuardTest(t, Config{})
	token, err := g.Issue("user-1", time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var (
		wins atomic.Int64
		wg   sync.WaitGroup
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := g.Consume(context.Background(), token); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	if wins.Load() != 1 {
		t.Fatalf("expected exactly one consumer, got %d", wins.Load())
	}
}

func TestConsumeRejectsInvalidTokens(t *testing.T) {
	g, _, clock := newGuardTest(t, Config{Issuer: "gocoord"})
	ctx := context.Background()

	valid, err := g.Issue("user-1", time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	noJTI, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "gocoord",
		ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Minute)),
	}).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:     "x",
		Issuer: "gocoord",
	}).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	otherIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        "y",
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Minute)),
	}).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	for name, raw := range map[string]string{
		"garbage":      "not-a-token",
		"tampered":     tampered,
		"missing jti":  noJTI,
		"missing exp":  noExp,
		"other issuer": otherIssuer,
	} {
		if _, err := g.Consume(ctx, raw); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("%s: expected ErrTokenInvalid, got %v", name, err)
		}
	}
}

func TestConsumeRejectsExpiredToken(t *testing.T) {
	g, _, clock := newGuardTest(t, Config{})

	token, err := g.Issue("user-1", time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	clock.Advance(2 * time.Minute)

	if _, err := g.Consume(context.Background(), token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected expired token to be invalid, got %v", err)
	}
}

func TestConsumeFailsClosed(t *testing.T) {
	g, mr, _ := newGuardTest(t, Config{})
	token, err := g.Issue("user-1", time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	mr.Close()

	if _, err := g.Consume(context.Background(), token); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestIssueRejectsNonPositiveTTL(t *testing.T) {
	g, _, _ := newGuardTest(t, Config{})
	if _, err := g.Issue("user-1", 0); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}
