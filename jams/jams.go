// Package jams projects annotation containers into JAMS documents, the
// JSON timed-event format shared by music-analysis tools.
package jams

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"

	"github.com/jsphweid/beatdex/annotation"
)

const (
	NamespaceBeat    = "beat"
	NamespaceSegment = "segment_open"

	schemaVersion = "0.3.4"
	curator       = "beatdex"
)

// Observation is a single timed event. A nil Confidence encodes as null.
type Observation struct {
	Time       float64  `json:"time"`
	Duration   float64  `json:"duration"`
	Value      any      `json:"value"`
	Confidence *float64 `json:"confidence"`
}

type AnnotationMetadata struct {
	Curator    Curator `json:"curator"`
	DataSource string  `json:"data_source"`
	Version    string  `json:"version"`
}

type Curator struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Annotation struct {
	Namespace          string             `json:"namespace"`
	Data               []Observation      `json:"data"`
	AnnotationMetadata AnnotationMetadata `json:"annotation_metadata"`
	Sandbox            map[string]any     `json:"sandbox"`
	Time               float64            `json:"time"`
	Duration           *float64           `json:"duration"`
}

type FileMetadata struct {
	Title       string            `json:"title"`
	Artist      string            `json:"artist"`
	Release     string            `json:"release"`
	Duration    *float64          `json:"duration"`
	Identifiers map[string]string `json:"identifiers"`
	JamsVersion string            `json:"jams_version"`
}

type JAMS struct {
	FileMetadata FileMetadata   `json:"file_metadata"`
	Annotations  []*Annotation  `json:"annotations"`
	Sandbox      map[string]any `json:"sandbox"`
}

func newAnnotation(namespace string, dataSource string) *Annotation {
	return &Annotation{
		Namespace: namespace,
		Data:      []Observation{},
		AnnotationMetadata: AnnotationMetadata{
			Curator:    Curator{Name: curator},
			DataSource: dataSource,
		},
		Sandbox: map[string]any{},
	}
}

// FromBeats converts beats into a beat annotation whose values are the
// ordinal positions. A nil container yields nil.
func FromBeats(b *annotation.BeatData, dataSource string) *Annotation {
	if b == nil {
		return nil
	}
	a := newAnnotation(NamespaceBeat, dataSource)
	for i := 0; i < b.Len(); i++ {
		t, pos := b.At(i)
		a.Data = append(a.Data, Observation{Time: t, Duration: 0, Value: pos})
	}
	return a
}

// FromSections converts sections into a segment annotation. A nil
// container yields nil.
func FromSections(s *annotation.SectionData, dataSource string) *Annotation {
	if s == nil {
		return nil
	}
	a := newAnnotation(NamespaceSegment, dataSource)
	for i := 0; i < s.Len(); i++ {
		iv, label := s.At(i)
		a.Data = append(a.Data, Observation{Time: iv[0], Duration: iv[1] - iv[0], Value: label})
	}
	return a
}

// New builds a document from metadata and the non-nil annotations.
func New(meta FileMetadata, annotations ...*Annotation) *JAMS {
	meta.JamsVersion = schemaVersion
	if meta.Identifiers == nil {
		meta.Identifiers = map[string]string{}
	}
	j := &JAMS{
		FileMetadata: meta,
		Annotations:  []*Annotation{},
		Sandbox:      map[string]any{},
	}
	for _, a := range annotations {
		if a != nil {
			j.Annotations = append(j.Annotations, a)
		}
	}
	return j
}

// Search returns the annotations in namespace, in document order.
func (j *JAMS) Search(namespace string) []*Annotation {
	var res []*Annotation
	for _, a := range j.Annotations {
		if a.Namespace == namespace {
			res = append(res, a)
		}
	}
	return res
}

func (j *JAMS) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(j); err != nil {
		return errors.Wrap(err, "could not encode jams")
	}
	return nil
}

// Decode reads a document written by Encode. Numeric values decode as float64.
func Decode(r io.Reader) (*JAMS, error) {
	var j JAMS
	if err := json.NewDecoder(r).Decode(&j); err != nil {
		return nil, errors.Wrap(err, "could not decode jams")
	}
	return &j, nil
}
