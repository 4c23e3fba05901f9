package run

import "encoding/json"

// Run modes.
const (
	ModeFull = "full"
	ModeDiff = "diff"
)

// Report summarizes one run for logs and scripting.
type Report struct {
	RunID string `json:"run_id"`
	Mode  string `json:"mode"`
	Root  string `json:"root"`

	Targets   int `json:"targets"`
	Converted int `json:"converted"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`

	NewTags       int `json:"new_tags"`
	ResolvedCells int `json:"resolved_cells"`
	StoreTags     int `json:"store_tags"`
	LocalKeys     int `json:"local_keys"`
	Rewritten     int `json:"rewritten"`

	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`

	FailedFiles []string `json:"failed_files,omitempty"`

	DurationMS int64 `json:"duration_ms"`
}

// JSON renders the report as indented JSON.
func (r *Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// OK reports whether the run completed without per-file failures or error
// diagnostics.
func (r *Report) OK() bool {
	return r.Failed == 0 && r.Errors == 0
}
