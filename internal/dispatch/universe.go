package dispatch

import (
	"context"

	"github.com/whisperengine/core/pkg/trust"
	"github.com/whisperengine/core/pkg/universe"
)

// universeOptOutPreference is the trust.Relationship.Preferences key a
// user's own opt-out command sets; no command surface for setting it
// exists in this module yet, so today it is only ever written directly
// against the trust store, but the checker honors it either way.
const universeOptOutPreference = "universe_opt_out"

// TrustOptOutChecker implements universe.OptOutChecker against the trust
// store's per-user preference map, rather than a dedicated table, since
// opt-out is a per (user, bot) preference like any other already covered
// by trust.Relationship.Preferences (§4.4).
type TrustOptOutChecker struct {
	Trust   *trust.Manager
	BotName string
}

var _ universe.OptOutChecker = (*TrustOptOutChecker)(nil)

// IsOptedOut implements universe.OptOutChecker.
func (c *TrustOptOutChecker) IsOptedOut(ctx context.Context, userID string) (bool, error) {
	rel, err := c.Trust.GetRelationship(ctx, userID, c.BotName)
	if err != nil {
		return false, err
	}
	return rel.Preferences[universeOptOutPreference] == "true", nil
}

// SingleBotDirectory implements universe.Directory for a deployment
// where one process hosts exactly one bot identity: there is never
// another bot in this process to gossip to, matching the package's own
// "out of scope" note for multi-process discovery.
type SingleBotDirectory struct{}

var _ universe.Directory = SingleBotDirectory{}

// OtherBots implements universe.Directory.
func (SingleBotDirectory) OtherBots(ctx context.Context, sourceBot string) ([]universe.Recipient, error) {
	return nil, nil
}
