package detect

import (
	"log/slog"

	"logguard/internal/config"
	"logguard/internal/model"
)

// Engine runs the full detection pass: aggregate once, then evaluate the
// rule set and the anomaly detector over the same records. The two alert
// lists come back un-merged; combining them is the caller's business.
type Engine struct {
	rules    *RuleEngine
	detector *AnomalyDetector
	logger   *slog.Logger
}

func NewEngine(cfg config.DetectionConfig, logger *slog.Logger) (*Engine, error) {
	detector, err := NewDetector(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Engine{
		rules:    NewRuleEngine(cfg.BruteForceThreshold),
		detector: detector,
		logger:   logger,
	}, nil
}

// Rules exposes the rule engine for registering additional rules.
func (e *Engine) Rules() *RuleEngine {
	return e.rules
}

// Detector exposes the anomaly detector.
func (e *Engine) Detector() *AnomalyDetector {
	return e.detector
}

// Analyze aggregates the raw events and fans the records out to both
// detectors.
func (e *Engine) Analyze(events []model.RawEvent) (ruleAlerts, anomalyAlerts []model.Alert) {
	return e.AnalyzeRecords(Aggregate(events))
}

// AnalyzeRecords runs both detectors over already-aggregated records.
// Neither detector mutates the input.
func (e *Engine) AnalyzeRecords(records []model.AggregatedRecord) (ruleAlerts, anomalyAlerts []model.Alert) {
	ruleAlerts = e.rules.Evaluate(records)
	anomalies := e.detector.Detect(records)
	anomalyAlerts = make([]model.Alert, 0, len(anomalies))
	for _, rec := range anomalies {
		anomalyAlerts = append(anomalyAlerts, model.Alert{
			Type:         model.AlertAnomaly,
			IP:           rec.IP,
			FailedLogins: rec.FailedLogins,
			Requests:     rec.Requests,
		})
	}
	if e.logger != nil {
		e.logger.Info("detection pass complete",
			"actors", len(records),
			"rule_alerts", len(ruleAlerts),
			"anomaly_alerts", len(anomalyAlerts),
			"strategy", e.detector.Strategy(),
		)
	}
	return ruleAlerts, anomalyAlerts
}
