package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// FileSource reads a JSON array of records from Path.
type FileSource struct {
	Path string
}

func (f FileSource) LoadSeedPolls(ctx context.Context) ([]RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	contents, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	var records []RawRecord
	if err := json.Unmarshal(contents, &records); err != nil {
		return nil, fmt.Errorf("decode catalog file %s: %w", f.Path, err)
	}
	return records, nil
}
