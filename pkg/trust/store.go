package trust

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists relationship rows in Postgres. Reads and writes go
// through a single row per (user_id, bot_name); concurrent update_trust
// calls for the same pair serialize through a single UPDATE ... RETURNING
// statement rather than an in-process lock, per §5's shared-resource
// policy.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore builds a Store over an existing pgx pool. The caller is
// responsible for running migrations that create the relationships table.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Schema is the DDL for the relationships table, exposed so a migration
// runner can embed it; the package doesn't run migrations itself.
const Schema = `
CREATE TABLE IF NOT EXISTS relationships (
	user_id             TEXT NOT NULL,
	bot_name            TEXT NOT NULL,
	score               INTEGER NOT NULL DEFAULT 0,
	mood                TEXT NOT NULL DEFAULT '',
	mood_intensity      DOUBLE PRECISION NOT NULL DEFAULT 0,
	unlocked_traits     JSONB NOT NULL DEFAULT '[]',
	insights            JSONB NOT NULL DEFAULT '[]',
	preferences         JSONB NOT NULL DEFAULT '{}',
	last_milestone_date TIMESTAMPTZ,
	updated_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (user_id, bot_name)
);`

func scanRelationship(row pgx.Row) (Relationship, error) {
	var (
		rel            Relationship
		traitsRaw      []byte
		insightsRaw    []byte
		preferencesRaw []byte
		lastMilestone  *time.Time
	)
	err := row.Scan(
		&rel.UserID, &rel.BotName, &rel.Score, &rel.Mood, &rel.MoodIntensity,
		&traitsRaw, &insightsRaw, &preferencesRaw, &lastMilestone, &rel.UpdatedAt,
	)
	if err != nil {
		return Relationship{}, err
	}

	if err := json.Unmarshal(traitsRaw, &rel.UnlockedTraits); err != nil {
		return Relationship{}, fmt.Errorf("trust: unmarshal traits: %w", err)
	}
	if err := json.Unmarshal(insightsRaw, &rel.Insights); err != nil {
		return Relationship{}, fmt.Errorf("trust: unmarshal insights: %w", err)
	}
	if err := json.Unmarshal(preferencesRaw, &rel.Preferences); err != nil {
		return Relationship{}, fmt.Errorf("trust: unmarshal preferences: %w", err)
	}
	rel.Level = LevelForScore(rel.Score)
	rel.LastMilestoneDate = lastMilestone
	return rel, nil
}

// Get fetches the relationship row, auto-creating a default row on first
// access (§4.4's "auto-creates with defaults").
func (s *Store) Get(ctx context.Context, userID, botName string) (Relationship, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT user_id, bot_name, score, mood, mood_intensity, unlocked_traits, insights, preferences, last_milestone_date, updated_at
		FROM relationships WHERE user_id = $1 AND bot_name = $2`, userID, botName)

	rel, err := scanRelationship(row)
	if err == nil {
		return rel, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Relationship{}, fmt.Errorf("trust: get: %w", err)
	}

	def := NewDefaultRelationship(userID, botName)
	if err := s.insertDefault(ctx, def); err != nil {
		return Relationship{}, err
	}
	return def, nil
}

func (s *Store) insertDefault(ctx context.Context, rel Relationship) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO relationships (user_id, bot_name, score, mood, mood_intensity, unlocked_traits, insights, preferences, updated_at)
		VALUES ($1, $2, $3, $4, $5, '[]', '[]', '{}', $6)
		ON CONFLICT (user_id, bot_name) DO NOTHING`,
		rel.UserID, rel.BotName, rel.Score, rel.Mood, rel.MoodIntensity, rel.UpdatedAt)
	if err != nil {
		return fmt.Errorf("trust: insert default: %w", err)
	}
	return nil
}

// ApplyDelta atomically adds delta to the stored score, clamped to
// [-100,100], and returns the relationship before and after the update.
// After Get ensures the row exists, one UPDATE ... RETURNING applies the
// delta; the "before" state is derived from the returned score, so the
// caller can detect a stage-boundary crossing without a further query.
func (s *Store) ApplyDelta(ctx context.Context, userID, botName string, delta int) (before, after Relationship, err error) {
	if _, getErr := s.Get(ctx, userID, botName); getErr != nil {
		return Relationship{}, Relationship{}, getErr
	}

	row := s.pool.QueryRow(ctx, `
		UPDATE relationships
		SET score = GREATEST($3, LEAST($4, score + $5)), updated_at = now()
		WHERE user_id = $1 AND bot_name = $2
		RETURNING user_id, bot_name, score, mood, mood_intensity, unlocked_traits, insights, preferences, last_milestone_date, updated_at`,
		userID, botName, MinTrustScore, MaxTrustScore, delta)

	after, err = scanRelationship(row)
	if err != nil {
		return Relationship{}, Relationship{}, fmt.Errorf("trust: apply delta: %w", err)
	}

	beforeScore := ClampScore(after.Score - delta)
	before = after
	before.Score = beforeScore
	before.Level = LevelForScore(beforeScore)
	return before, after, nil
}

// SetMilestone records the last milestone date after a stage-crossing
// update_trust call.
func (s *Store) SetMilestone(ctx context.Context, userID, botName string, at time.Time) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE relationships SET last_milestone_date = $3, updated_at = now()
		WHERE user_id = $1 AND bot_name = $2`, userID, botName, at)
	if err != nil {
		return fmt.Errorf("trust: set milestone: %w", err)
	}
	return nil
}

// UnlockTrait appends a trait to unlocked_traits if not already present.
func (s *Store) UnlockTrait(ctx context.Context, userID, botName, trait string) error {
	rel, err := s.Get(ctx, userID, botName)
	if err != nil {
		return err
	}
	for _, t := range rel.UnlockedTraits {
		if t == trait {
			return nil
		}
	}
	rel.UnlockedTraits = append(rel.UnlockedTraits, trait)
	encoded, err := json.Marshal(rel.UnlockedTraits)
	if err != nil {
		return fmt.Errorf("trust: marshal traits: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		UPDATE relationships SET unlocked_traits = $3, updated_at = now()
		WHERE user_id = $1 AND bot_name = $2`, userID, botName, encoded)
	if err != nil {
		return fmt.Errorf("trust: unlock trait: %w", err)
	}
	return nil
}

// AppendInsight appends an extracted user-fact string to insights if not
// already present, mirroring UnlockTrait's append-if-absent shape. Feeds
// the ordered insights list §3 describes as part of a Relationship.
func (s *Store) AppendInsight(ctx context.Context, userID, botName, insight string) error {
	rel, err := s.Get(ctx, userID, botName)
	if err != nil {
		return err
	}
	for _, existing := range rel.Insights {
		if existing == insight {
			return nil
		}
	}
	rel.Insights = append(rel.Insights, insight)
	encoded, err := json.Marshal(rel.Insights)
	if err != nil {
		return fmt.Errorf("trust: marshal insights: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		UPDATE relationships SET insights = $3, updated_at = now()
		WHERE user_id = $1 AND bot_name = $2`, userID, botName, encoded)
	if err != nil {
		return fmt.Errorf("trust: append insight: %w", err)
	}
	return nil
}

// UpdatePreference sets preferences[key] = value.
func (s *Store) UpdatePreference(ctx context.Context, userID, botName, key, value string) error {
	rel, err := s.Get(ctx, userID, botName)
	if err != nil {
		return err
	}
	if rel.Preferences == nil {
		rel.Preferences = map[string]string{}
	}
	rel.Preferences[key] = value
	return s.writePreferences(ctx, userID, botName, rel.Preferences)
}

// DeletePreference removes preferences[key], if present.
func (s *Store) DeletePreference(ctx context.Context, userID, botName, key string) error {
	rel, err := s.Get(ctx, userID, botName)
	if err != nil {
		return err
	}
	delete(rel.Preferences, key)
	return s.writePreferences(ctx, userID, botName, rel.Preferences)
}

func (s *Store) writePreferences(ctx context.Context, userID, botName string, prefs map[string]string) error {
	encoded, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("trust: marshal preferences: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		UPDATE relationships SET preferences = $3, updated_at = now()
		WHERE user_id = $1 AND bot_name = $2`, userID, botName, encoded)
	if err != nil {
		return fmt.Errorf("trust: update preferences: %w", err)
	}
	return nil
}

// Clear resets a relationship to its defaults, an explicit admin action
// per §3 ("never deleted, clearable by explicit admin action").
func (s *Store) Clear(ctx context.Context, userID, botName string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE relationships
		SET score = 0, mood = '', mood_intensity = 0, unlocked_traits = '[]', insights = '[]', preferences = '{}', last_milestone_date = NULL, updated_at = now()
		WHERE user_id = $1 AND bot_name = $2`, userID, botName)
	if err != nil {
		return fmt.Errorf("trust: clear: %w", err)
	}
	return nil
}

// LastInteraction returns the relationship's updated_at, used to drive
// reverie/dream scheduling (§4.4).
func (s *Store) LastInteraction(ctx context.Context, userID, botName string) (*time.Time, error) {
	var updatedAt time.Time
	err := s.pool.QueryRow(ctx, `
		SELECT updated_at FROM relationships WHERE user_id = $1 AND bot_name = $2`, userID, botName).Scan(&updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("trust: last interaction: %w", err)
	}
	return &updatedAt, nil
}
