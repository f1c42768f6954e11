package meta

import (
	"encoding/json"
	"fmt"
	"strings"

	"pundit/internal/domain/consensus"
)

// buildPrompt renders the completion instruction: locked players, remaining
// budget, open slots per position, formation and club cap, with the
// remaining pool as the choice set.
func buildPrompt(pick consensus.PickResult) (system, user string, err error) {
	locked, err := json.Marshal(pick.Picked)
	if err != nil {
		return "", "", fmt.Errorf("encode locked players: %w", err)
	}
	required, err := json.Marshal(pick.Required)
	if err != nil {
		return "", "", fmt.Errorf("encode required slots: %w", err)
	}
	remaining, err := json.Marshal(pick.Remaining)
	if err != nil {
		return "", "", fmt.Errorf("encode remaining pool: %w", err)
	}

	numNeeded := 0
	for _, n := range pick.Required {
		numNeeded += n
	}

	system = fmt.Sprintf(`You are the Meta FPL Selector.

Locked players:
%s

Remaining budget: %.1f
Required slots:
%s

Formation:
2 GK, 5 DEF, 5 MID, 3 FWD
Max 3 per club.

Pick exactly %d players from the remaining candidates by candidate_id.
Return STRICT JSON:
{"selected": ["<candidate_id>", ...], "bench": [], "justification": "...", "constraints_violated": []}`,
		locked, pick.RemainingBudget, required, numNeeded)

	user = "Remaining candidates:\n" + string(remaining)
	return system, user, nil
}

// StripCodeFence removes optional markdown code-fence markers around a JSON
// payload, tolerating a language tag after the opening fence.
func StripCodeFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "```") {
		return raw
	}
	parts := strings.Split(raw, "```")
	if len(parts) < 2 {
		return raw
	}
	inner := strings.TrimSpace(parts[1])
	inner = strings.TrimPrefix(inner, "json")
	return strings.TrimSpace(inner)
}
