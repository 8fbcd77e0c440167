package models

import (
	"bytes"
	"encoding/json"
)

// ReportType classifies a generated report.
type ReportType string

const (
	ReportTypeSummary         ReportType = "summary"
	ReportTypePattern         ReportType = "pattern"
	ReportTypeTrend           ReportType = "trend"
	ReportTypeRecommendations ReportType = "recommendations"
)

// SmartSummary is the structured content variant used by summary reports.
type SmartSummary struct {
	Overview        string `json:"overview"`
	KeyObservations []struct {
		Category string   `json:"category"`
		Points   []string `json:"points"`
	} `json:"keyObservations"`
	PotentialTriggers []struct {
		Behavior         string   `json:"behavior"`
		PotentialFactors []string `json:"potentialFactors"`
	} `json:"potentialTriggers"`
	PositiveHighlights       []string `json:"positiveHighlights"`
	RecommendationHighlights []string `json:"recommendationHighlights"`
}

// ReportContent holds either opaque markdown or a structured summary.
// Exactly one of the two is set; the JSON encoding is a bare string for
// markdown and an object for a summary, matching the persisted format.
type ReportContent struct {
	Markdown string
	Summary  *SmartSummary
}

func (c ReportContent) MarshalJSON() ([]byte, error) {
	if c.Summary != nil {
		return json.Marshal(c.Summary)
	}
	return json.Marshal(c.Markdown)
}

func (c *ReportContent) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		c.Summary = &SmartSummary{}
		return json.Unmarshal(trimmed, c.Summary)
	}
	c.Summary = nil
	return json.Unmarshal(trimmed, &c.Markdown)
}

// Report is an AI-generated document over a set of source records. Reports
// are immutable after creation; they disappear only through a full data
// wipe or import overwrite.
type Report struct {
	ID        int64      `json:"id,omitempty"`
	ChildName string     `json:"childName"`
	Type      ReportType `json:"type"`

	Content ReportContent `json:"content"`

	Timestamp int64 `json:"timestamp"`

	// GeneratedFrom lists the ids of the source records the report was
	// built from, in the order they were consumed.
	GeneratedFrom []int64 `json:"generatedFrom,omitempty"`
}
