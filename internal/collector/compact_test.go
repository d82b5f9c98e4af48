package collector

import (
	"testing"

	"logguard/internal/model"
)

func TestCompactDropsExactDuplicates(t *testing.T) {
	events := []model.RawEvent{
		{"ip": "1.1.1.1", "event": "failed_login"},
		{"ip": "1.1.1.1", "event": "failed_login"},
		{"ip": "2.2.2.2", "event": "login"},
		{"ip": "1.1.1.1", "event": "failed_login"},
	}
	out := Compact(events)
	if len(out) != 2 {
		t.Fatalf("expected 2 unique events, got %d", len(out))
	}
	if out[0]["ip"] != "1.1.1.1" || out[1]["ip"] != "2.2.2.2" {
		t.Fatalf("first occurrences must survive in order: %v", out)
	}
}

func TestCompactKeepsDistinctEvents(t *testing.T) {
	events := []model.RawEvent{
		{"ip": "1.1.1.1", "event": "failed_login"},
		{"ip": "1.1.1.1", "event": "login"},
		{"ip": "1.1.1.1", "event": "failed_login", "detail": "x"},
	}
	out := Compact(events)
	if len(out) != 3 {
		t.Fatalf("distinct events must all survive, got %d", len(out))
	}
}

func TestCompactEmptyInput(t *testing.T) {
	if out := Compact(nil); len(out) != 0 {
		t.Fatalf("expected no events, got %d", len(out))
	}
}
