package model

import "fmt"

// RawEvent is one parsed log record as produced by a collector source.
// Field names and values are whatever the upstream log carried; the
// detection core only reads the actor and event-kind fields.
type RawEvent map[string]any

const (
	FieldSourceIP = "source_ip"
	FieldIP       = "ip"
	FieldEvent    = "event"
	FieldTS       = "timestamp"

	UnknownActor = "unknown"

	EventFailedLogin = "failed_login"
)

// ActorID resolves the aggregation key: source_ip, else ip, else "unknown".
func (e RawEvent) ActorID() string {
	if v := e.String(FieldSourceIP); v != "" && v != UnknownActor {
		return v
	}
	if v := e.String(FieldIP); v != "" && v != UnknownActor {
		return v
	}
	return UnknownActor
}

// Kind returns the event-kind field, or "" when absent.
func (e RawEvent) Kind() string {
	return e.String(FieldEvent)
}

// String returns the named field formatted as a string, or "" when the
// field is absent or nil.
func (e RawEvent) String(key string) string {
	v, ok := e[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// AggregatedRecord holds the per-actor counters for one detection run.
// Requests counts every event seen for the actor, so Requests >= FailedLogins.
type AggregatedRecord struct {
	IP           string `json:"ip"`
	FailedLogins int    `json:"failed_logins"`
	Requests     int    `json:"requests"`
}

const (
	AlertBruteForce = "Brute Force"
	AlertAnomaly    = "Anomaly"
)

// Alert is a single finding. Type discriminates rule alerts from anomaly
// alerts; anomaly alerts carry the full offending record as evidence.
type Alert struct {
	Type         string `json:"type"`
	IP           string `json:"ip"`
	FailedLogins int    `json:"failed_logins"`
	Requests     int    `json:"requests,omitempty"`
}
