package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promura/backend/internal/models"
)

func recordCompleted(s SuggestionService, completedAt time.Time, engagement float64) {
	s.Record(&models.Post{
		Status:      models.PostStatusCompleted,
		CompletedAt: &completedAt,
		Engagement:  engagement,
	})
}

func TestOptimalTimesDefaultsBelowSampleSize(t *testing.T) {
	s := NewSuggestionService()

	at := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC) // a Monday
	for i := 0; i < minSampleSize-1; i++ {
		recordCompleted(s, at, 5)
	}

	suggestions := s.OptimalTimes(5)
	require.Len(t, suggestions, 5)
	for _, sg := range suggestions {
		assert.Equal(t, 50, sg.Confidence)
		assert.NotEmpty(t, sg.Reason)
	}
	assert.Equal(t, "Monday", suggestions[0].DayName)
	assert.Equal(t, "10:00 AM", suggestions[0].Time)
}

func TestOptimalTimesRanksByEngagement(t *testing.T) {
	s := NewSuggestionService()

	monday10 := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	friday20 := time.Date(2026, 8, 28, 20, 0, 0, 0, time.UTC)

	for i := 0; i < 6; i++ {
		recordCompleted(s, friday20, 9)
	}
	for i := 0; i < 6; i++ {
		recordCompleted(s, monday10, 2)
	}

	suggestions := s.OptimalTimes(2)
	require.Len(t, suggestions, 2)

	assert.Equal(t, "Friday", suggestions[0].DayName)
	assert.Equal(t, 9.0, suggestions[0].AvgEngagement)
	assert.Equal(t, 60, suggestions[0].Confidence)
	assert.Equal(t, "Monday", suggestions[1].DayName)
}

func TestOptimalTimesIgnoresFailures(t *testing.T) {
	s := NewSuggestionService()

	at := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	for i := 0; i < minSampleSize; i++ {
		s.Record(&models.Post{Status: models.PostStatusFailed, CompletedAt: &at, Engagement: 100})
	}
	recordCompleted(s, at, 3)

	suggestions := s.OptimalTimes(5)
	require.Len(t, suggestions, 1)
	assert.Equal(t, 3.0, suggestions[0].AvgEngagement)
}

func TestPatternsNeedHistory(t *testing.T) {
	s := NewSuggestionService()

	report := s.Patterns()
	assert.Equal(t, "insufficient_data", report.Status)

	at := time.Date(2026, 8, 27, 19, 0, 0, 0, time.UTC) // a Thursday
	for i := 0; i < 6; i++ {
		recordCompleted(s, at, 4)
	}

	report = s.Patterns()
	require.Equal(t, "success", report.Status)
	assert.Equal(t, 6, report.TotalPosts)
	require.NotNil(t, report.BestDay)
	assert.Equal(t, "Thursday", report.BestDay.Day)
	require.NotNil(t, report.BestHour)
	assert.Equal(t, 19, report.BestHour.Hour)
	assert.Equal(t, "19:00", report.BestHour.Formatted)
}
