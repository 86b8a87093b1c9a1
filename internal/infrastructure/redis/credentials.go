package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/streamsync/sync-worker/internal/domain"
)

const (
	sessionKeyPrefix = "streamsync:session:"
	sessionTTL       = 7 * 24 * time.Hour

	accessTokenField  = "access_token"
	refreshTokenField = "refresh_token"
	expiresAtField    = "expires_at"
)

// CredentialStore is the process-external slot holding each session's bearer
// tokens. The worker reads one copy per platform at the start of a run and
// writes back at most once, after a successful destination refresh.
type CredentialStore interface {
	Get(ctx context.Context, sessionID string, platform domain.Platform) (*domain.Credential, error)
	Set(ctx context.Context, sessionID string, cred *domain.Credential) error
}

type credentialStore struct {
	rdb *redis.Client
}

func NewCredentialStore(client Client) CredentialStore {
	return &credentialStore{rdb: client.RDB()}
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

func platformField(platform domain.Platform, field string) string {
	return strings.ToLower(platform.String()) + ":" + field
}

func (s *credentialStore) Get(ctx context.Context, sessionID string, platform domain.Platform) (*domain.Credential, error) {
	if !platform.IsValid() {
		return nil, fmt.Errorf("invalid platform %q", platform)
	}

	key := sessionKey(sessionID)
	fields := []string{
		platformField(platform, accessTokenField),
		platformField(platform, refreshTokenField),
		platformField(platform, expiresAtField),
	}

	results, err := s.rdb.HMGet(ctx, key, fields...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read session %s: %w", sessionID, err)
	}

	if results[0] == nil {
		return nil, fmt.Errorf("no %s credential for session %s: %w", platform, sessionID, domain.ErrAuth)
	}

	accessToken, ok := results[0].(string)
	if !ok || accessToken == "" {
		return nil, fmt.Errorf("malformed %s credential for session %s: %w", platform, sessionID, domain.ErrAuth)
	}

	cred := &domain.Credential{
		Platform:    platform,
		AccessToken: accessToken,
	}

	if results[1] != nil {
		cred.RefreshToken, _ = results[1].(string)
	}

	if results[2] != nil {
		if raw, ok := results[2].(string); ok {
			if millis, err := strconv.ParseInt(raw, 10, 64); err == nil {
				cred.ExpiresAt = time.UnixMilli(millis)
			}
		}
	}

	return cred, nil
}

func (s *credentialStore) Set(ctx context.Context, sessionID string, cred *domain.Credential) error {
	if cred == nil || !cred.Platform.IsValid() {
		return fmt.Errorf("invalid credential")
	}

	key := sessionKey(sessionID)
	values := map[string]any{
		platformField(cred.Platform, accessTokenField):  cred.AccessToken,
		platformField(cred.Platform, refreshTokenField): cred.RefreshToken,
		platformField(cred.Platform, expiresAtField):    strconv.FormatInt(cred.ExpiresAt.UnixMilli(), 10),
	}

	if err := s.rdb.HSet(ctx, key, values).Err(); err != nil {
		return fmt.Errorf("failed to write session %s: %w", sessionID, err)
	}

	if err := s.rdb.Expire(ctx, key, sessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to refresh session ttl: %w", err)
	}

	return nil
}
