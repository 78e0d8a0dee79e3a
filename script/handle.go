package script

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrBlankSource is returned when a handle is built from empty or whitespace-only source.
	ErrBlankSource = errors.New("script source can't be blank")
	// ErrUnspecifiedKind is returned when a handle is built without a known result kind.
	ErrUnspecifiedKind = errors.New("script result kind can't be unspecified")
	// ErrDigestMismatch is returned by Load when the server reports a different digest.
	ErrDigestMismatch = errors.New("script digest mismatch")
)

// Kind declares how a script reply is interpreted.
type Kind uint8

const (
	// KindUnspecified is the zero value and is rejected by New.
	KindUnspecified Kind = iota
	// KindBoolean replies are integers (0/1) or booleans.
	KindBoolean
	// KindRaw replies are handed back untyped.
	KindRaw
)

func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindRaw:
		return "raw"
	default:
		return "unspecified"
	}
}

// Handle is the immutable identity of a server-side Lua script: its source,
// the SHA-1 digest Redis uses to cache it, and the declared result kind.
//
// A Handle is safe for concurrent use and is normally created once as a
// package-level value.
type Handle struct {
	script *redis.Script
	source string
	kind   Kind
}

// New builds a handle for source. The digest is computed once here and is a
// pure function of source.
func New(source string, kind Kind) (*Handle, error) {
	if strings.TrimSpace(source) == "" {
		return nil, ErrBlankSource
	}
	if kind != KindBoolean && kind != KindRaw {
		return nil, ErrUnspecifiedKind
	}

	return &Handle{
		script: redis.NewScript(source),
		source: source,
		kind:   kind,
	}, nil
}

// MustNew is like New but panics on error. Intended for package-level handles.
func MustNew(source string, kind Kind) *Handle {
	h, err := New(source, kind)
	if err != nil {
		panic(fmt.Sprintf("script: %v", err))
	}
	return h
}

// Digest returns the lowercase hex SHA-1 of the source, as reported by SCRIPT LOAD.
func (h *Handle) Digest() string {
	return h.script.Hash()
}

// Source returns the full script body, sent when the server has not cached the digest.
func (h *Handle) Source() string {
	return h.source
}

func (h *Handle) Kind() Kind {
	return h.kind
}

// ReturnsRawValue reports whether replies should be treated as untyped values.
func (h *Handle) ReturnsRawValue() bool {
	return h.kind == KindRaw
}

// Equal reports whether two handles are interchangeable for evaluation.
func (h *Handle) Equal(other *Handle) bool {
	if h == nil || other == nil {
		return h == other
	}
	return h.Digest() == other.Digest()
}

// Run evaluates the script atomically on the server. It sends EVALSHA first
// and retransmits the full source only when the server answers NOSCRIPT.
func (h *Handle) Run(ctx context.Context, c redis.Scripter, keys []string, args ...interface{}) *redis.Cmd {
	return h.script.Run(ctx, c, keys, args...)
}

// RunBool evaluates a KindBoolean script. A nil reply surfaces as redis.Nil.
func (h *Handle) RunBool(ctx context.Context, c redis.Scripter, keys []string, args ...interface{}) (bool, error) {
	if h.kind != KindBoolean {
		return false, fmt.Errorf("script %s: kind is %s, not boolean", h.Digest(), h.kind)
	}
	return h.Run(ctx, c, keys, args...).Bool()
}

// Load caches the script on the server and checks the digest the server computed.
func (h *Handle) Load(ctx context.Context, c redis.Scripter) error {
	sha, err := h.script.Load(ctx, c).Result()
	if err != nil {
		return err
	}
	if sha != h.Digest() {
		return fmt.Errorf("%w: local %s, server %s", ErrDigestMismatch, h.Digest(), sha)
	}
	return nil
}

// Loaded reports whether the server currently caches the digest.
func (h *Handle) Loaded(ctx context.Context, c redis.Scripter) (bool, error) {
	exists, err := h.script.Exists(ctx, c).Result()
	if err != nil {
		return false, err
	}
	return len(exists) == 1 && exists[0], nil
}
