package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"logguard/internal/model"
)

// Source produces one batch of raw events per call.
type Source interface {
	Collect(ctx context.Context) ([]model.RawEvent, error)
}

// FileSource reads a JSON array of event objects from disk.
type FileSource struct {
	Path string
}

func (s *FileSource) Collect(_ context.Context) ([]model.RawEvent, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}
	var events []model.RawEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("parse log file %s: %w", s.Path, err)
	}
	return events, nil
}
