package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateFromTimestamp(t *testing.T) {
	// 2024-03-05T23:30:00Z
	assert.Equal(t, "2024-03-05", DateFromTimestamp(1709681400000))
	assert.Equal(t, "1970-01-01", DateFromTimestamp(0))
}

func TestFoodCategory_Valid(t *testing.T) {
	for _, c := range []FoodCategory{FoodCategoryNew, FoodCategorySafe, FoodCategorySometimes, FoodCategoryNotYet} {
		assert.True(t, c.Valid(), string(c))
	}
	assert.False(t, FoodCategory("breakfast").Valid())
	assert.False(t, FoodCategory("").Valid())
}

func TestReportContent_MarkdownJSON(t *testing.T) {
	c := ReportContent{Markdown: "## Trends\nMore sleep."}

	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Equal(t, `"## Trends\nMore sleep."`, string(b))

	var back ReportContent
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Nil(t, back.Summary)
	assert.Equal(t, c.Markdown, back.Markdown)
}

func TestReportContent_SummaryJSON(t *testing.T) {
	c := ReportContent{Summary: &SmartSummary{
		Overview:           "A calm week.",
		PositiveHighlights: []string{"slept through"},
	}}

	b, err := json.Marshal(c)
	require.NoError(t, err)

	var back ReportContent
	require.NoError(t, json.Unmarshal(b, &back))
	require.NotNil(t, back.Summary)
	assert.Equal(t, "A calm week.", back.Summary.Overview)
	assert.Equal(t, []string{"slept through"}, back.Summary.PositiveHighlights)
	assert.Empty(t, back.Markdown)
}
