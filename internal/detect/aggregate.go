package detect

import (
	"strconv"

	"logguard/internal/model"
)

// Aggregate collapses raw events into one record per actor, preserving
// first-seen order. Every event counts as a request; failed_login events
// additionally bump the failure counter.
func Aggregate(events []model.RawEvent) []model.AggregatedRecord {
	index := make(map[string]int, len(events))
	records := make([]model.AggregatedRecord, 0, len(events))
	for _, ev := range events {
		actor := ev.ActorID()
		i, ok := index[actor]
		if !ok {
			i = len(records)
			index[actor] = i
			records = append(records, model.AggregatedRecord{IP: actor})
		}
		records[i].Requests++
		if ev.Kind() == model.EventFailedLogin {
			records[i].FailedLogins++
		}
	}
	return records
}

// RecordFromMap adapts a foreign map-shaped row into an AggregatedRecord.
// Missing, nil, "unknown", or non-numeric counter values coerce to zero.
func RecordFromMap(row map[string]any) model.AggregatedRecord {
	rec := model.AggregatedRecord{IP: model.UnknownActor}
	if ip := stringField(row, model.FieldIP); ip != "" {
		rec.IP = ip
	} else if ip := stringField(row, model.FieldSourceIP); ip != "" {
		rec.IP = ip
	}
	rec.FailedLogins = coerceCount(row["failed_logins"])
	rec.Requests = coerceCount(row["requests"])
	return rec
}

func stringField(row map[string]any, key string) string {
	if v, ok := row[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func coerceCount(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		parsed, err := strconv.Atoi(n)
		if err != nil || parsed < 0 {
			return 0
		}
		return parsed
	default:
		return 0
	}
}
