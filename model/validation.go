package model

// FileProblem describes one dataset file that failed validation.
type FileProblem struct {
	TrackID TrackID `json:"track_id" yaml:"track_id"`
	Path    string  `json:"path" yaml:"path"`
	Reason  string  `json:"reason" yaml:"reason"` // "missing" or "checksum"
}

type ValidationReport struct {
	Dataset  string        `json:"dataset"`
	Checked  int           `json:"checked"`
	Missing  []FileProblem `json:"missing,omitempty"`
	Mismatch []FileProblem `json:"mismatch,omitempty"`
}

func (r ValidationReport) OK() bool {
	return len(r.Missing) == 0 && len(r.Mismatch) == 0
}
