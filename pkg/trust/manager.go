package trust

import (
	"context"
	"fmt"
	"time"
)

// Manager is the public entry point for all trust/relationship operations
// (§4.4): get_relationship, update_trust, unlock_trait, update_preference,
// delete_preference, clear, get_last_interaction.
type Manager struct {
	store *Store
	cache *relationshipCache
}

// NewManager wires a Store to a fresh in-process cache.
func NewManager(store *Store) *Manager {
	return &Manager{store: store, cache: newRelationshipCache()}
}

// GetRelationship returns the relationship for (userID, botName),
// auto-creating it with defaults on first access and serving from the
// short-TTL cache on repeat reads.
func (m *Manager) GetRelationship(ctx context.Context, userID, botName string) (Relationship, error) {
	if rel, ok := m.cache.Get(userID, botName); ok {
		return rel, nil
	}

	rel, err := m.store.Get(ctx, userID, botName)
	if err != nil {
		return Relationship{}, err
	}
	m.cache.Set(rel)
	return rel, nil
}

// UpdateTrust applies kind's delta atomically and returns the updated
// relationship plus a non-empty milestone message whenever the update
// crosses a trust-stage boundary (§4.4, §8).
func (m *Manager) UpdateTrust(ctx context.Context, userID, botName string, kind EventKind) (Relationship, string, error) {
	delta, ok := DeltaTable[kind]
	if !ok {
		return Relationship{}, "", fmt.Errorf("trust: unknown event kind %q", kind)
	}

	before, after, err := m.store.ApplyDelta(ctx, userID, botName, delta)
	if err != nil {
		return Relationship{}, "", err
	}
	m.cache.Invalidate(userID, botName)

	milestone := ""
	if after.Level != before.Level {
		now := time.Now().UTC()
		if err := m.store.SetMilestone(ctx, userID, botName, now); err != nil {
			return Relationship{}, "", err
		}
		after.LastMilestoneDate = &now
		milestone = milestoneMessage(before.Level, after.Level)

		for _, trait := range TraitsUnlockedAt(after.Level) {
			if err := m.store.UnlockTrait(ctx, userID, botName, trait); err != nil {
				return Relationship{}, "", err
			}
		}
		rel, err := m.store.Get(ctx, userID, botName)
		if err != nil {
			return Relationship{}, "", err
		}
		m.cache.Set(rel)
		return rel, milestone, nil
	}

	m.cache.Set(after)
	return after, milestone, nil
}

func milestoneMessage(before, after Level) string {
	if after > before {
		return fmt.Sprintf("relationship advanced from %s to %s", before.Label(), after.Label())
	}
	return fmt.Sprintf("relationship fell from %s to %s", before.Label(), after.Label())
}

// UnlockTrait manually unlocks a trait outside the default per-level
// table, e.g. for a character-specific override.
func (m *Manager) UnlockTrait(ctx context.Context, userID, botName, trait string) error {
	if err := m.store.UnlockTrait(ctx, userID, botName, trait); err != nil {
		return err
	}
	m.cache.Invalidate(userID, botName)
	return nil
}

// AppendInsight records one extracted user-fact string for (userID, botName).
func (m *Manager) AppendInsight(ctx context.Context, userID, botName, insight string) error {
	if err := m.store.AppendInsight(ctx, userID, botName, insight); err != nil {
		return err
	}
	m.cache.Invalidate(userID, botName)
	return nil
}

// UpdatePreference sets preferences[key] = value for (userID, botName).
func (m *Manager) UpdatePreference(ctx context.Context, userID, botName, key, value string) error {
	if err := m.store.UpdatePreference(ctx, userID, botName, key, value); err != nil {
		return err
	}
	m.cache.Invalidate(userID, botName)
	return nil
}

// DeletePreference removes preferences[key] for (userID, botName).
func (m *Manager) DeletePreference(ctx context.Context, userID, botName, key string) error {
	if err := m.store.DeletePreference(ctx, userID, botName, key); err != nil {
		return err
	}
	m.cache.Invalidate(userID, botName)
	return nil
}

// Clear resets the relationship to defaults; an explicit admin action,
// never triggered automatically (§3).
func (m *Manager) Clear(ctx context.Context, userID, botName string) error {
	if err := m.store.Clear(ctx, userID, botName); err != nil {
		return err
	}
	m.cache.Invalidate(userID, botName)
	return nil
}

// GetLastInteraction returns when (userID, botName) last updated, or nil
// if the pair has never interacted.
func (m *Manager) GetLastInteraction(ctx context.Context, userID, botName string) (*time.Time, error) {
	return m.store.LastInteraction(ctx, userID, botName)
}
