package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"logguard/internal/model"
)

type Summary struct {
	RuleAlerts    int `json:"rule_alerts"`
	AnomalyAlerts int `json:"anomaly_alerts"`
	TotalAlerts   int `json:"total_alerts"`
}

type Report struct {
	Timestamp     string        `json:"timestamp"`
	Summary       Summary       `json:"summary"`
	RuleAlerts    []model.Alert `json:"rule_alerts"`
	AnomalyAlerts []model.Alert `json:"anomaly_alerts"`
}

// Reporter writes a JSON run summary to a fixed path, creating parent
// directories as needed.
type Reporter struct {
	path string
}

func NewReporter(path string) *Reporter {
	return &Reporter{path: path}
}

func (r *Reporter) Path() string {
	return r.path
}

// Generate writes the summary for one detection run and returns the
// report it wrote.
func (r *Reporter) Generate(ruleAlerts, anomalyAlerts []model.Alert) (*Report, error) {
	if ruleAlerts == nil {
		ruleAlerts = []model.Alert{}
	}
	if anomalyAlerts == nil {
		anomalyAlerts = []model.Alert{}
	}
	rep := &Report{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Summary: Summary{
			RuleAlerts:    len(ruleAlerts),
			AnomalyAlerts: len(anomalyAlerts),
			TotalAlerts:   len(ruleAlerts) + len(anomalyAlerts),
		},
		RuleAlerts:    ruleAlerts,
		AnomalyAlerts: anomalyAlerts,
	}
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return nil, err
	}
	if dir := filepath.Dir(r.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return nil, err
	}
	return rep, nil
}
