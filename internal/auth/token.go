// ABOUTME: Bearer token sources for the remote schedule API.
// ABOUTME: Static and file-backed sources with an unverified JWT expiry check.
package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/harperreed/workouts/internal/clock"
)

var (
	// ErrMissingToken is returned when no token is configured.
	ErrMissingToken = errors.New("missing token")
	// ErrTokenExpired is returned when a JWT's exp claim is in the past.
	ErrTokenExpired = errors.New("token expired")
)

// Source supplies the current bearer token.
type Source interface {
	Token(ctx context.Context) (string, error)
}

// Option configures a token source.
type Option func(*options)

type options struct {
	clock clock.Clock
}

// WithClock sets the clock used for the expiry check.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

func buildOptions(opts []Option) options {
	o := options{clock: clock.System{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// StaticSource always returns the same token.
type StaticSource struct {
	token string
	opts  options
}

// Static returns a source for a fixed token.
func Static(token string, opts ...Option) *StaticSource {
	return &StaticSource{token: token, opts: buildOptions(opts)}
}

// Token returns the configured token if it is present and unexpired.
func (s *StaticSource) Token(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return checkToken(s.token, s.opts.clock)
}

// FileSource reads the token from a file on every call, so an external
// login flow can refresh it in place.
type FileSource struct {
	path string
	opts options
}

// File returns a source that reads the token from path.
func File(path string, opts ...Option) *FileSource {
	return &FileSource{path: path, opts: buildOptions(opts)}
}

// Token reads and checks the current token.
func (f *FileSource) Token(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s does not exist", ErrMissingToken, f.path)
	}
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	return checkToken(string(data), f.opts.clock)
}

// checkToken rejects empty tokens and JWTs whose exp has passed. The
// signature is not verified; that is the server's job. Tokens that are not
// JWTs are passed through unchanged.
func checkToken(raw string, c clock.Clock) (string, error) {
	token := strings.TrimSpace(raw)
	if token == "" {
		return "", ErrMissingToken
	}
	if strings.Count(token, ".") != 2 {
		return token, nil
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return token, nil
	}
	if claims.ExpiresAt != nil && !c.Now().Before(claims.ExpiresAt.Time) {
		return "", fmt.Errorf("%w at %s", ErrTokenExpired, claims.ExpiresAt.Time.Format("2006-01-02 15:04:05"))
	}
	return token, nil
}
