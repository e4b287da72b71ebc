package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dfryer1193/alttext/media/domain"
	"golang.org/x/crypto/pbkdf2"
)

// NonceAction scopes tokens to the alt text update trigger.
const NonceAction = "alt_text_updater_nonce"

// NonceLifetime bounds how long an issued token is accepted. Tokens are bound to a tick of half
// this length and verify during their own tick and the next one.
const NonceLifetime = 24 * time.Hour

var _ domain.Authorizer = (*NonceAuthorizer)(nil)

// NonceAuthorizer validates tokens of the form "<user>:<hex mac>" where the mac is an
// HMAC-SHA256 over the action, user name and time tick, keyed by a secret derived from the
// configured one.
type NonceAuthorizer struct {
	key   []byte
	users domain.UserRepository
	now   func() time.Time
}

func NewNonceAuthorizer(secret string, users domain.UserRepository) (*NonceAuthorizer, error) {
	if secret == "" {
		return nil, errors.New("nonce secret is empty")
	}

	return &NonceAuthorizer{
		key:   pbkdf2.Key([]byte(secret), []byte(NonceAction), 4096, 32, sha256.New),
		users: users,
		now:   time.Now,
	}, nil
}

// Issue mints a token for user.
func (a *NonceAuthorizer) Issue(user string) (string, error) {
	if user == "" || strings.Contains(user, ":") {
		return "", fmt.Errorf("invalid user name %q", user)
	}
	return user + ":" + hex.EncodeToString(a.mac(user, a.tick())), nil
}

// Authenticate verifies token and resolves the user it was issued for.
// Malformed, forged or orphaned tokens yield an error wrapping domain.ErrUnauthorized.
func (a *NonceAuthorizer) Authenticate(ctx context.Context, token string) (*domain.Principal, error) {
	name, sig, ok := strings.Cut(token, ":")
	if !ok || name == "" {
		return nil, fmt.Errorf("malformed nonce: %w", domain.ErrUnauthorized)
	}

	got, err := hex.DecodeString(sig)
	if err != nil {
		return nil, fmt.Errorf("malformed nonce for %q: %w", name, domain.ErrUnauthorized)
	}

	tick := a.tick()
	if !hmac.Equal(got, a.mac(name, tick)) && !hmac.Equal(got, a.mac(name, tick-1)) {
		return nil, fmt.Errorf("invalid or expired nonce for %q: %w", name, domain.ErrUnauthorized)
	}

	user, err := a.users.GetUser(ctx, name)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("unknown user %q: %w", name, domain.ErrUnauthorized)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user %q: %w", name, err)
	}

	return &domain.Principal{Name: user.Name, Role: user.Role}, nil
}

func (a *NonceAuthorizer) tick() int64 {
	return a.now().Unix() / int64((NonceLifetime / 2).Seconds())
}

func (a *NonceAuthorizer) mac(user string, tick int64) []byte {
	h := hmac.New(sha256.New, a.key)
	h.Write([]byte(NonceAction + "|" + user + "|" + strconv.FormatInt(tick, 10)))
	return h.Sum(nil)
}
