// Package reconstruct wires the shard loader, RS codec, and AEAD unwrap
// into the end-to-end reconstruction pipeline, the
// way internal/service/file_service.go's DownloadFile wires shard download,
// reassembly, and integrity verification together in the reference service.
package reconstruct

import "fmt"

// Feasibility is a pure, pre-flight view of whether a shard set suffices to
// reconstruct, computed from indices alone, with no shard bytes touched.
type Feasibility struct {
	Feasible         bool  `json:"feasible"`
	Available        int   `json:"available"`
	Required         int   `json:"required"`
	Total            int   `json:"total"`
	MissingIndices   []int `json:"missing_indices"`
	RedundancyMargin int   `json:"redundancy_margin"`
	FastPath         bool  `json:"fast_path"`
}

// Analyze reports whether the given set of available shard indices suffices
// to reconstruct a (k, n) encoded file, without decoding anything.
func Analyze(available []int, k, n int) Feasibility {
	present := make(map[int]bool, len(available))
	for _, idx := range available {
		present[idx] = true
	}

	var missing []int
	fastPath := true
	for i := 0; i < n; i++ {
		if !present[i] {
			missing = append(missing, i)
			if i < k {
				fastPath = false
			}
		}
	}

	return Feasibility{
		Feasible:         len(present) >= k,
		Available:        len(present),
		Required:         k,
		Total:            n,
		MissingIndices:   missing,
		RedundancyMargin: len(present) - k,
		FastPath:         fastPath,
	}
}

// Message renders the human-readable summary original_source's
// analyze_reconstruction attaches alongside the structured fields.
func (f Feasibility) Message() string {
	if f.Feasible {
		return "Reconstruction possible"
	}
	need := f.Required - f.Available
	if need == 1 {
		return "Need 1 more shard"
	}
	return fmt.Sprintf("Need %d more shards", need)
}
