package respond

import (
	"context"
	"strings"

	"github.com/whisperengine/core/pkg/adapters"
)

// maxInboundChars is the oversized-message validation threshold (§7 kind
// 2, §6 inbound limit).
const maxInboundChars = 2000

// ModerationChecker reports whether a user is currently under an active
// moderation timeout (§7 kind 7). Moderation state lives outside this
// package's scope — whatever enforces timeouts elsewhere in the
// deployment implements this.
type ModerationChecker interface {
	IsInTimeout(ctx context.Context, userID string) (bool, error)
}

// PrivacyConfig carries the subset of §6's enumerated configuration the
// gate needs: blocked senders and DM-block allowlisting.
type PrivacyConfig struct {
	BlockedUserIDs   map[string]bool
	EnableDMBlock    bool
	DMAllowedUserIDs map[string]bool
}

// blocked reports whether msg must never reach processing (§7 kind 6:
// "inbound suppressed before any processing").
func (c PrivacyConfig) blocked(msg adapters.InboundMessage) bool {
	if c.BlockedUserIDs[msg.AuthorID] {
		return true
	}
	if c.EnableDMBlock && msg.GuildID == "" && !c.DMAllowedUserIDs[msg.AuthorID] {
		return true
	}
	return false
}

// gateOutcome is the result of running every pre-processing check on one
// inbound message.
type gateOutcome int

const (
	gateProceed gateOutcome = iota
	gateSuppressed
	gateModerationCold
	gateInvalid
)

// runGate applies §7's validation, privacy and moderation checks in
// order, before any retrieval or LLM call happens.
func runGate(ctx context.Context, msg adapters.InboundMessage, priv PrivacyConfig, mod ModerationChecker) (gateOutcome, error) {
	if priv.blocked(msg) {
		return gateSuppressed, nil
	}

	body := strings.TrimSpace(msg.Content)
	if body == "" || len(body) > maxInboundChars {
		return gateInvalid, nil
	}

	if mod != nil {
		inTimeout, err := mod.IsInTimeout(ctx, msg.AuthorID)
		if err != nil {
			return gateProceed, err
		}
		if inTimeout {
			return gateModerationCold, nil
		}
	}

	return gateProceed, nil
}
