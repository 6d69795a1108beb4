package model

type DatasetsResponse struct {
	Datasets []string `json:"datasets"`
}

type TracksResponse struct {
	Dataset  string    `json:"dataset"`
	TrackIDs []TrackID `json:"track_ids"`
}

type BeatsResponse struct {
	TrackID   TrackID   `json:"track_id"`
	Times     []float64 `json:"times"`
	Positions []int     `json:"positions"`
	Meter     int       `json:"meter"`
}

type Section struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Label string  `json:"label"`
}

type SectionsResponse struct {
	TrackID  TrackID   `json:"track_id"`
	Sections []Section `json:"sections"`
}

type ReloadResponse struct {
	Dataset string `json:"dataset"`
	Status  string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
