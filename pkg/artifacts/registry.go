// Package artifacts implements the pending-artifact registry (§4.9,
// §6): files or images a tool produced during a turn, staged in Redis
// with a short TTL until the reply path picks them up and attaches them
// to the outgoing message. Grounded on the teacher's ToolArtifact shape
// (pkg/connector/events.go) and its Redis list bookkeeping idiom already
// used in pkg/taskqueue.
package artifacts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// TTL is how long a pending artifact set survives before Redis expires it
// unclaimed (§6).
const TTL = 5 * time.Minute

// Kind distinguishes the artifact payload shape.
type Kind string

const (
	KindImage Kind = "image"
	KindFile  Kind = "file"
)

// Artifact is one file or image a tool produced, staged for delivery.
type Artifact struct {
	Kind     Kind   `json:"kind"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
	MimeType string `json:"mimeType"`
	SizeByte int    `json:"sizeByte,omitempty"`
}

// Registry stages artifacts per user in Redis under a TTL'd key, the
// same "pending_images:<user>" layout the teacher uses for its own
// artifact bookkeeping.
type Registry struct {
	rdb       *redis.Client
	keyPrefix string
	log       zerolog.Logger
}

// New builds a Registry bound to one Redis client and key namespace.
func New(rdb *redis.Client, keyPrefix string, log zerolog.Logger) *Registry {
	return &Registry{rdb: rdb, keyPrefix: keyPrefix, log: log.With().Str("component", "artifacts").Logger()}
}

func (r *Registry) key(userID string) string {
	return fmt.Sprintf("%spending_images:%s", r.keyPrefix, userID)
}

// Add appends one artifact to a user's pending set and (re)sets the TTL,
// per §4.9's add(user_id, artifact) contract.
func (r *Registry) Add(ctx context.Context, userID string, artifact Artifact) error {
	payload, err := json.Marshal(artifact)
	if err != nil {
		return fmt.Errorf("artifacts: marshal: %w", err)
	}
	key := r.key(userID)
	pipe := r.rdb.TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.Expire(ctx, key, TTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("artifacts: add: %w", err)
	}
	return nil
}

// PopAll retrieves and deletes every pending artifact for a user, per
// §4.9's pop_all(user_id) contract. Returns an empty slice, never an
// error, when the user has nothing pending.
func (r *Registry) PopAll(ctx context.Context, userID string) ([]Artifact, error) {
	key := r.key(userID)
	pipe := r.rdb.TxPipeline()
	rangeCmd := pipe.LRange(ctx, key, 0, -1)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("artifacts: pop all: %w", err)
	}

	raw, err := rangeCmd.Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("artifacts: range: %w", err)
	}

	out := make([]Artifact, 0, len(raw))
	for _, item := range raw {
		var artifact Artifact
		if err := json.Unmarshal([]byte(item), &artifact); err != nil {
			r.log.Warn().Err(err).Str("user_id", userID).Msg("dropping malformed pending artifact")
			continue
		}
		out = append(out, artifact)
	}
	return out, nil
}
