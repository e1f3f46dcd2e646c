package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// ErrClaimHeld is returned when another registration already holds one of the
// requested identities.
var ErrClaimHeld = errors.New("identity claim held")

const (
	usernameClaimPrefix = "register:username:"
	emailClaimPrefix    = "register:email:"
)

// releaseScript deletes the key only while it still carries our token.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// IdentityClaims serializes registrations that share a username or email.
// A claim is a SET NX key with a TTL, so a crashed request cannot hold an
// identity forever.
type IdentityClaims struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewIdentityClaims(client *goredis.Client, ttl time.Duration) *IdentityClaims {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &IdentityClaims{client: client, ttl: ttl}
}

// Claim reserves the username and email, skipping empty ones. On success the
// returned function releases both. If either is held elsewhere, whatever was
// acquired is released and ErrClaimHeld is returned.
func (c *IdentityClaims) Claim(ctx context.Context, username, email string) (func(context.Context), error) {
	keys := claimKeys(username, email)
	token := uuid.NewString()

	acquired := make([]string, 0, len(keys))
	release := func(ctx context.Context) {
		for _, key := range acquired {
			_ = releaseScript.Run(ctx, c.client, []string{key}, token).Err()
		}
	}

	for _, key := range keys {
		ok, err := c.client.SetNX(ctx, key, token, c.ttl).Result()
		if err != nil {
			release(ctx)
			return nil, fmt.Errorf("claim %s: %w", key, err)
		}
		if !ok {
			release(ctx)
			return nil, ErrClaimHeld
		}
		acquired = append(acquired, key)
	}

	return release, nil
}

// claimKeys returns the keys in sorted order so concurrent callers acquire
// them in the same order.
func claimKeys(username, email string) []string {
	keys := make([]string, 0, 2)
	if username = strings.ToLower(strings.TrimSpace(username)); username != "" {
		keys = append(keys, usernameClaimPrefix+username)
	}
	if email = strings.ToLower(strings.TrimSpace(email)); email != "" {
		keys = append(keys, emailClaimPrefix+email)
	}
	sort.Strings(keys)
	return keys
}
