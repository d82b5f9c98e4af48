package collector

import (
	"strings"
	"time"

	"logguard/internal/config"
	"logguard/internal/model"
)

// Normalize brings every event into a consistent shape: timestamps are
// reparsed into canonical RFC3339 in the configured timezone, and missing
// or nil fields are filled with the configured placeholder. The events
// are copied; the input slice is left alone. Unparseable timestamps pass
// through filled, never as errors.
func Normalize(events []model.RawEvent, cfg config.ParserConfig) []model.RawEvent {
	fill := cfg.FillMissing
	if fill == "" {
		fill = model.UnknownActor
	}
	loc := time.UTC
	if cfg.Timezone != "" {
		if l, err := time.LoadLocation(cfg.Timezone); err == nil {
			loc = l
		}
	}
	out := make([]model.RawEvent, 0, len(events))
	for _, ev := range events {
		norm := make(model.RawEvent, len(ev))
		for k, v := range ev {
			if v == nil || v == "" {
				norm[k] = fill
				continue
			}
			norm[k] = v
		}
		if ts, ok := parseTimestamp(norm.String(model.FieldTS)); ok {
			norm[model.FieldTS] = ts.In(loc).Format(time.RFC3339)
		} else if _, present := norm[model.FieldTS]; !present {
			norm[model.FieldTS] = fill
		}
		out = append(out, norm)
	}
	return out
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == model.UnknownActor {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
