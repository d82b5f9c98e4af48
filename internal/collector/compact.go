package collector

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"logguard/internal/model"
)

// Compact drops exact-duplicate events, keeping the first occurrence and
// preserving order. Events are compared by canonical JSON; map keys are
// sorted by the encoder, so field order in the source does not matter.
func Compact(events []model.RawEvent) []model.RawEvent {
	seen := make(map[string]struct{}, len(events))
	out := make([]model.RawEvent, 0, len(events))
	for _, ev := range events {
		key, ok := hashEvent(ev)
		if ok {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		// Events that cannot be canonicalized are kept as-is; they can
		// only arise from hand-built maps, not from the JSON sources.
		out = append(out, ev)
	}
	return out
}

func hashEvent(ev model.RawEvent) (string, bool) {
	data, err := json.Marshal(ev)
	if err != nil {
		return "", false
	}
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:]), true
}
