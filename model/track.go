package model

// TrackMetadata is one row of a dataset's metadata table.
type TrackMetadata struct {
	PieceNumber string  `json:"piece_number" yaml:"piece_number"`
	Suffix      string  `json:"suffix" yaml:"suffix"`
	TrackNumber string  `json:"track_number" yaml:"track_number"`
	Title       string  `json:"title" yaml:"title"`
	Composer    string  `json:"composer" yaml:"composer"`
	Artist      string  `json:"artist" yaml:"artist"`
	Duration    float64 `json:"duration" yaml:"duration"` // seconds
	Category    string  `json:"category" yaml:"category"`
}

type TrackID = string

// TrackSummary is the dataset-independent view of a track.
type TrackSummary struct {
	Dataset      string         `json:"dataset"`
	TrackID      TrackID        `json:"track_id"`
	AudioPath    string         `json:"audio_path,omitempty"`
	BeatsPath    string         `json:"beats_path,omitempty"`
	SectionsPath string         `json:"sections_path,omitempty"`
	Metadata     *TrackMetadata `json:"metadata,omitempty"`
}
