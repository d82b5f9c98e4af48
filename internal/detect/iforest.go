package detect

import (
	"fmt"

	"github.com/e-XpertSolutions/go-iforest/v2/iforest"
)

// ForestStrategy fits an isolation forest on the batch and labels rows
// whose anomaly score falls in the contamination fraction. A fresh forest
// is trained per call; nothing carries over between batches.
type ForestStrategy struct {
	Contamination float64
	Trees         int
	Subsample     int
}

func (f *ForestStrategy) Name() string { return "iforest" }

func (f *ForestStrategy) Mask(features [][]float64) (mask []bool, err error) {
	// The forest indexes into its subsample without guarding short input;
	// treat any panic during fit/predict as a strategy failure.
	defer func() {
		if r := recover(); r != nil {
			mask = nil
			err = fmt.Errorf("isolation forest panicked: %v", r)
		}
	}()

	sub := f.Subsample
	if sub > len(features) {
		sub = len(features)
	}
	forest := iforest.NewForest(f.Trees, sub, f.Contamination)
	forest.Train(features)
	if err := forest.Test(features); err != nil {
		return nil, fmt.Errorf("isolation forest test: %w", err)
	}
	if len(forest.Labels) != len(features) {
		return nil, fmt.Errorf("isolation forest returned %d labels for %d rows", len(forest.Labels), len(features))
	}
	mask = make([]bool, len(features))
	for i, label := range forest.Labels {
		mask[i] = label == 1
	}
	return mask, nil
}
