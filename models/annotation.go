package models

import (
	"fmt"

	"github.com/paulmach/orb"
)

type LabelKind string

const (
	LabelPoint   LabelKind = "point"
	LabelSegment LabelKind = "segment"
)

// Label is one overlay datum placed on the map.
type Label struct {
	FeatureID string    `json:"feature_id"`
	Kind      LabelKind `json:"kind"`
	Position  orb.Point `json:"position"`
	Text      string    `json:"text"`
}

type RowKind string

const (
	RowSegment       RowKind = "segment"
	RowTotalDistance RowKind = "total_distance"
	RowArea          RowKind = "area"
	RowCentroid      RowKind = "centroid"
	RowScale         RowKind = "scale"
)

// MeasurementRow is one entry of the measurement table.
type MeasurementRow struct {
	FeatureID string  `json:"feature_id,omitempty"`
	Kind      RowKind `json:"kind"`
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	Unit      string  `json:"unit,omitempty"`
	Easting   float64 `json:"easting,omitempty"`
	Northing  float64 `json:"northing,omitempty"`
}

// ValueText formats the value the way it is printed in the table.
func (r MeasurementRow) ValueText() []string {
	switch r.Kind {
	case RowSegment, RowTotalDistance:
		return []string{fmt.Sprintf("%.1f", r.Value)}
	case RowArea:
		return []string{fmt.Sprintf("%.2f", r.Value)}
	case RowCentroid:
		return []string{fmt.Sprintf("E: %.1f", r.Easting), fmt.Sprintf("N: %.1f", r.Northing)}
	case RowScale:
		return []string{fmt.Sprintf("1:%d", int64(r.Value))}
	}
	return []string{fmt.Sprintf("%g", r.Value)}
}

// Summary reports rows that are printed with a shaded label cell.
func (r MeasurementRow) Summary() bool {
	return r.Kind != RowSegment
}

// TableSection groups the rows of one feature under its header.
type TableSection struct {
	FeatureID string           `json:"feature_id"`
	Kind      GeometryKind     `json:"kind"`
	Header    [2]string        `json:"header"`
	Rows      []MeasurementRow `json:"rows"`
}

// SectionHeader returns the column captions used for a feature kind.
func SectionHeader(kind GeometryKind) [2]string {
	if kind == KindPolygon {
		return [2]string{"Segment", "Distance (m)"}
	}
	return [2]string{"Point/Line", "Distance (m)"}
}

// AnnotationSnapshot is what live subscribers receive after each rebuild.
type AnnotationSnapshot struct {
	Type     string         `json:"type"`
	Mode     string         `json:"mode"`
	Labels   []Label        `json:"labels"`
	Preview  []Label        `json:"preview,omitempty"`
	Sections []TableSection `json:"sections"`
}
