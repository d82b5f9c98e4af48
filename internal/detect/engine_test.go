package detect

import (
	"strconv"
	"testing"

	"logguard/internal/model"
)

func newEngineForTest(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(zscoreConfig(), nil)
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	return e
}

func TestAnalyzeKeepsAlertListsSeparate(t *testing.T) {
	e := newEngineForTest(t)
	events := make([]model.RawEvent, 0)
	// nine quiet actors
	for i := 0; i < 9; i++ {
		ip := "10.0.0." + strconv.Itoa(i)
		for j := 0; j < 10; j++ {
			events = append(events, model.RawEvent{"source_ip": ip, "event": "login"})
		}
		events = append(events, model.RawEvent{"source_ip": ip, "event": "failed_login"})
	}
	// one loud actor: brute force and statistical outlier at once
	for j := 0; j < 100; j++ {
		events = append(events, model.RawEvent{"source_ip": "6.6.6.6", "event": "failed_login"})
	}
	ruleAlerts, anomalyAlerts := e.Analyze(events)
	if len(ruleAlerts) != 1 {
		t.Fatalf("expected 1 rule alert, got %d", len(ruleAlerts))
	}
	if ruleAlerts[0].Type != model.AlertBruteForce || ruleAlerts[0].IP != "6.6.6.6" {
		t.Fatalf("unexpected rule alert: %+v", ruleAlerts[0])
	}
	if len(anomalyAlerts) != 1 {
		t.Fatalf("expected 1 anomaly alert, got %d", len(anomalyAlerts))
	}
	a := anomalyAlerts[0]
	if a.Type != model.AlertAnomaly || a.IP != "6.6.6.6" || a.FailedLogins != 100 || a.Requests != 100 {
		t.Fatalf("anomaly alert must carry the full record: %+v", a)
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	e := newEngineForTest(t)
	ruleAlerts, anomalyAlerts := e.Analyze(nil)
	if len(ruleAlerts) != 0 || len(anomalyAlerts) != 0 {
		t.Fatalf("expected empty alert lists, got %d and %d", len(ruleAlerts), len(anomalyAlerts))
	}
}

func TestAnalyzeRecordsDoesNotMutateInput(t *testing.T) {
	e := newEngineForTest(t)
	records := []model.AggregatedRecord{
		{IP: "1.1.1.1", FailedLogins: 8, Requests: 9},
		{IP: "2.2.2.2", FailedLogins: 0, Requests: 3},
	}
	snapshot := make([]model.AggregatedRecord, len(records))
	copy(snapshot, records)
	e.AnalyzeRecords(records)
	for i := range records {
		if records[i] != snapshot[i] {
			t.Fatalf("record %d mutated: %+v vs %+v", i, records[i], snapshot[i])
		}
	}
}
