package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/irkit/internal/ir"
)

// marshalOpRecords encodes records as canonical JSON TEXT so identical
// rewrites produce byte-identical rows.
func marshalOpRecords(recs []OpRecord) (string, error) {
	items := make([]any, len(recs))
	for i, r := range recs {
		items[i] = map[string]any{
			"name":        r.Name,
			"fingerprint": r.Fingerprint,
		}
	}
	data, err := ir.MarshalCanonical(items)
	if err != nil {
		return "", fmt.Errorf("marshal new ops: %w", err)
	}
	return string(data), nil
}

func unmarshalOpRecords(data string) ([]OpRecord, error) {
	recs := []OpRecord{}
	if data == "" || data == "[]" {
		return recs, nil
	}
	if err := json.Unmarshal([]byte(data), &recs); err != nil {
		return nil, fmt.Errorf("unmarshal new ops: %w", err)
	}
	return recs, nil
}
