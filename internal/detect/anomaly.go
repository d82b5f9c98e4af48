package detect

import (
	"fmt"
	"log/slog"

	"logguard/internal/config"
	"logguard/internal/model"
)

// OutlierStrategy scores a feature matrix and marks anomalous rows. The
// returned mask is positional: mask[i] corresponds to row i.
type OutlierStrategy interface {
	Name() string
	Mask(features [][]float64) ([]bool, error)
}

// minForestRows is the smallest batch the forest strategy is attempted
// on. An isolation forest over one or two rows is meaningless; such
// batches run the heuristic directly.
const minForestRows = 3

// AnomalyDetector converts aggregated records to a two-column feature
// matrix (failed_logins, requests), runs its strategy, and maps the mask
// back to the original records by index.
type AnomalyDetector struct {
	strategy OutlierStrategy
	fallback *HeuristicStrategy
	logger   *slog.Logger
}

// NewDetector picks the strategy once, from configuration, never from
// data. Invalid tuning values fail construction; they are never clamped.
func NewDetector(cfg config.DetectionConfig, logger *slog.Logger) (*AnomalyDetector, error) {
	if cfg.NSigma <= 0 {
		return nil, fmt.Errorf("n_sigma must be > 0, got %g", cfg.NSigma)
	}
	if cfg.Contamination <= 0 || cfg.Contamination >= 1 {
		return nil, fmt.Errorf("contamination must be in (0, 1), got %g", cfg.Contamination)
	}
	fallback := &HeuristicStrategy{NSigma: cfg.NSigma}
	d := &AnomalyDetector{fallback: fallback, logger: logger}
	switch cfg.Strategy {
	case config.StrategyAuto, config.StrategyForest, "":
		trees := cfg.ForestTrees
		if trees <= 0 {
			trees = 100
		}
		sub := cfg.ForestSubsample
		if sub <= 0 {
			sub = 256
		}
		d.strategy = &ForestStrategy{Contamination: cfg.Contamination, Trees: trees, Subsample: sub}
	case config.StrategyZScore:
		d.strategy = fallback
	default:
		return nil, fmt.Errorf("unknown detection strategy %q", cfg.Strategy)
	}
	return d, nil
}

// Strategy reports the active strategy name.
func (d *AnomalyDetector) Strategy() string {
	return d.strategy.Name()
}

// Detect returns the subset of records flagged as anomalous, as the
// original records. An empty batch yields an empty result with no
// statistics computed.
func (d *AnomalyDetector) Detect(records []model.AggregatedRecord) []model.AggregatedRecord {
	if len(records) == 0 {
		return []model.AggregatedRecord{}
	}
	features := Features(records)
	mask := d.mask(features)
	out := make([]model.AggregatedRecord, 0)
	for i, anomalous := range mask {
		if anomalous && i < len(records) {
			out = append(out, records[i])
		}
	}
	return out
}

func (d *AnomalyDetector) mask(features [][]float64) []bool {
	strategy := d.strategy
	if strategy != d.fallback && len(features) < minForestRows {
		strategy = d.fallback
	}
	mask, err := strategy.Mask(features)
	if err == nil {
		return mask
	}
	if d.logger != nil {
		d.logger.Warn("outlier strategy failed, falling back to zscore",
			"strategy", strategy.Name(),
			"err", err,
		)
	}
	// The heuristic never errors.
	mask, _ = d.fallback.Mask(features)
	return mask
}

// Features builds the fixed-order feature matrix. Row i corresponds to
// records[i]; the mask-mapping step depends on that equivalence.
func Features(records []model.AggregatedRecord) [][]float64 {
	features := make([][]float64, len(records))
	for i, rec := range records {
		features[i] = []float64{float64(rec.FailedLogins), float64(rec.Requests)}
	}
	return features
}
