package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	PostKeyPrefix    = "post:%s"
	ProfileKeyPrefix = "profile:%s"
	ViewKeyPrefix    = "view:%s:%s"
	StateKeyPrefix   = "oauthstate:%s"
)

const (
	PostTTL    = 5 * time.Minute
	ProfileTTL = 5 * time.Minute
)

func PostKey(postID string) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func ProfileKey(profileID string) string {
	return fmt.Sprintf(ProfileKeyPrefix, profileID)
}

// ViewKey dedupes view counting per post and viewer within a window.
func ViewKey(postID, viewer string) string {
	return fmt.Sprintf(ViewKeyPrefix, postID, viewer)
}

// StateKey holds a server-issued OAuth state nonce.
func StateKey(state string) string {
	return fmt.Sprintf(StateKeyPrefix, state)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidatePost(ctx context.Context, postID string) {
	Invalidate(ctx, PostKey(postID))
}

func InvalidateProfile(ctx context.Context, profileID string) {
	Invalidate(ctx, ProfileKey(profileID))
}

// Aside implements the cache-aside pattern: on a hit, dest is populated from
// the cached JSON; on a miss (or when Redis is down), fill runs and the result
// is written back with the given TTL. Cache failures never fail the read.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fill func() error) error {
	if client != nil {
		if raw, err := client.Get(ctx, key).Bytes(); err == nil {
			if err := json.Unmarshal(raw, dest); err == nil {
				return nil
			}
			client.Del(ctx, key)
		}
	}

	if err := fill(); err != nil {
		return err
	}

	if client != nil {
		if raw, err := json.Marshal(dest); err == nil {
			client.Set(ctx, key, raw, ttl)
		}
	}
	return nil
}
