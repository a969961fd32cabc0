package service

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/promura/backend/internal/models"
	"github.com/promura/backend/internal/transfer"
)

// minSampleSize is the number of recorded posts below which OptimalTimes
// falls back to the fixed defaults.
const minSampleSize = 10

var dayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

type postRecord struct {
	status      string
	completedAt *time.Time
	engagement  float64
}

// SuggestionService ranks (weekday, hour) buckets of past completions by
// mean engagement times success rate. Pure descriptive statistics; nothing
// feeds back into scheduling.
type SuggestionService interface {
	Record(post *models.Post)
	OptimalTimes(numSuggestions int) []*transfer.Suggestion
	Patterns() *transfer.PatternReport
}

type suggestionService struct {
	mu      sync.Mutex
	history []postRecord
}

func NewSuggestionService() SuggestionService {
	return &suggestionService{}
}

func (s *suggestionService) Record(post *models.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, postRecord{
		status:      post.Status,
		completedAt: post.CompletedAt,
		engagement:  post.Engagement,
	})
}

// pyWeekday maps to the Monday=0..Sunday=6 convention used everywhere in
// this package.
func pyWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func nextOccurrence(targetDay, targetHour int) time.Time {
	now := time.Now()
	daysAhead := targetDay - pyWeekday(now)
	if daysAhead < 0 {
		daysAhead += 7
	} else if daysAhead == 0 && now.Hour() >= targetHour {
		daysAhead = 7
	}
	next := now.AddDate(0, 0, daysAhead)
	return time.Date(next.Year(), next.Month(), next.Day(), targetHour, 0, 0, 0, next.Location())
}

type bucketScore struct {
	day           int
	hour          int
	avgEngagement float64
	successRate   float64
	sampleSize    int
	confidence    int
}

func (s *suggestionService) OptimalTimes(numSuggestions int) []*transfer.Suggestion {
	s.mu.Lock()
	defer s.mu.Unlock()

	if numSuggestions <= 0 {
		numSuggestions = 5
	}
	if len(s.history) < minSampleSize {
		return defaultSuggestions()
	}

	type bucket struct{ day, hour int }
	engagements := make(map[bucket][]float64)
	for _, record := range s.history {
		if record.status == models.PostStatusCompleted && record.completedAt != nil {
			key := bucket{pyWeekday(*record.completedAt), record.completedAt.Hour()}
			engagements[key] = append(engagements[key], record.engagement)
		}
	}

	scores := make([]bucketScore, 0, len(engagements))
	for key, values := range engagements {
		var sum float64
		for _, v := range values {
			sum += v
		}
		scores = append(scores, bucketScore{
			day:           key.day,
			hour:          key.hour,
			avgEngagement: sum / float64(len(values)),
			successRate:   1.0, // only completions land in a bucket
			sampleSize:    len(values),
			confidence:    int(math.Min(100, float64(len(values)*10))),
		})
	}

	sort.Slice(scores, func(i, j int) bool {
		si := scores[i].avgEngagement * scores[i].successRate
		sj := scores[j].avgEngagement * scores[j].successRate
		if si != sj {
			return si > sj
		}
		return scores[i].sampleSize > scores[j].sampleSize
	})
	if len(scores) > numSuggestions {
		scores = scores[:numSuggestions]
	}

	suggestions := make([]*transfer.Suggestion, 0, len(scores))
	for _, score := range scores {
		next := nextOccurrence(score.day, score.hour)
		suggestions = append(suggestions, &transfer.Suggestion{
			Datetime:      next.Format(time.RFC3339),
			DayName:       next.Format("Monday"),
			Time:          next.Format("03:04 PM"),
			Confidence:    score.confidence,
			AvgEngagement: math.Round(score.avgEngagement*100) / 100,
			SuccessRate:   math.Round(score.successRate*1000) / 10,
			Reason:        reasonFor(score),
		})
	}
	return suggestions
}

// defaultSuggestions is the fixed fallback used until enough history has
// accumulated. Five slots, each at confidence 50.
func defaultSuggestions() []*transfer.Suggestion {
	defaults := []struct {
		day    int
		hour   int
		reason string
	}{
		{0, 10, "Monday morning - high engagement"},
		{2, 14, "Wednesday afternoon - consistent performance"},
		{3, 19, "Thursday evening - peak activity"},
		{5, 11, "Saturday late morning - weekend engagement"},
		{6, 15, "Sunday afternoon - relaxed browsing"},
	}

	suggestions := make([]*transfer.Suggestion, 0, len(defaults))
	for _, d := range defaults {
		next := nextOccurrence(d.day, d.hour)
		suggestions = append(suggestions, &transfer.Suggestion{
			Datetime:   next.Format(time.RFC3339),
			DayName:    next.Format("Monday"),
			Time:       next.Format("03:04 PM"),
			Confidence: 50,
			Reason:     d.reason,
		})
	}
	return suggestions
}

func reasonFor(score bucketScore) string {
	timePeriod := "evening"
	if score.hour < 12 {
		timePeriod = "morning"
	} else if score.hour < 17 {
		timePeriod = "afternoon"
	}

	engagementLevel := "good"
	if score.avgEngagement > 5 {
		engagementLevel = "high"
	}
	return fmt.Sprintf("%s %s - %s engagement (%d posts)", dayNames[score.day], timePeriod, engagementLevel, score.sampleSize)
}

func (s *suggestionService) Patterns() *transfer.PatternReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.history) < 5 {
		return &transfer.PatternReport{
			Status:  "insufficient_data",
			Message: "Need at least 5 posts to analyze patterns",
		}
	}

	dayEngagement := make(map[int][]float64)
	hourEngagement := make(map[int][]float64)
	for _, record := range s.history {
		if record.status == models.PostStatusCompleted && record.completedAt != nil {
			dayEngagement[pyWeekday(*record.completedAt)] = append(dayEngagement[pyWeekday(*record.completedAt)], record.engagement)
			hourEngagement[record.completedAt.Hour()] = append(hourEngagement[record.completedAt.Hour()], record.engagement)
		}
	}
	if len(dayEngagement) == 0 {
		return &transfer.PatternReport{
			Status:  "insufficient_data",
			Message: "Need at least 5 posts to analyze patterns",
		}
	}

	bestDay, bestDayAvg := bestSlot(dayEngagement)
	bestHour, bestHourAvg := bestSlot(hourEngagement)

	return &transfer.PatternReport{
		Status:     "success",
		TotalPosts: len(s.history),
		BestDay: &transfer.PatternSlot{
			Day:           dayNames[bestDay],
			AvgEngagement: math.Round(bestDayAvg*100) / 100,
		},
		BestHour: &transfer.PatternSlot{
			Hour:          bestHour,
			Formatted:     fmt.Sprintf("%02d:00", bestHour),
			AvgEngagement: math.Round(bestHourAvg*100) / 100,
		},
		Insights: []string{
			fmt.Sprintf("Your best posting day is %s", dayNames[bestDay]),
			fmt.Sprintf("Optimal posting time is around %02d:00", bestHour),
			fmt.Sprintf("Total posts analyzed: %d", len(s.history)),
		},
	}
}

func bestSlot(slots map[int][]float64) (int, float64) {
	best := -1
	bestAvg := math.Inf(-1)
	for slot, values := range slots {
		var sum float64
		for _, v := range values {
			sum += v
		}
		avg := sum / float64(len(values))
		if avg > bestAvg || (avg == bestAvg && slot < best) {
			best = slot
			bestAvg = avg
		}
	}
	return best, bestAvg
}
