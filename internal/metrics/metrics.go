package metrics

import (
	"fmt"
	"sync"
	"time"
)

const (
	recentCallLimit  = 100
	recentErrorLimit = 50
)

type endpointStats struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
	Total   int `json:"total"`
}

type CallRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	Endpoint     string    `json:"endpoint"`
	Method       string    `json:"method"`
	Success      bool      `json:"success"`
	ResponseTime float64   `json:"response_time"`
}

type ErrorRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
}

type PostStats struct {
	Total       int     `json:"total"`
	Completed   int     `json:"completed"`
	Failed      int     `json:"failed"`
	Scheduled   int     `json:"scheduled"`
	SuccessRate float64 `json:"success_rate"`
}

// Collector holds in-memory metrics for a running process. Counters
// reset on restart.
type Collector struct {
	mu            sync.Mutex
	apiCalls      map[string]*endpointStats
	posts         map[string]int
	recentCalls   []CallRecord
	recentErrors  []ErrorRecord
	responseTimes []float64
	sessionStart  time.Time
}

func NewCollector() *Collector {
	return &Collector{
		apiCalls:     make(map[string]*endpointStats),
		posts:        make(map[string]int),
		sessionStart: time.Now(),
	}
}

func (c *Collector) RecordAPICall(endpoint, method string, success bool, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats, ok := c.apiCalls[endpoint]
	if !ok {
		stats = &endpointStats{}
		c.apiCalls[endpoint] = stats
	}
	stats.Total++
	if success {
		stats.Success++
	} else {
		stats.Failure++
	}

	seconds := duration.Seconds()
	c.responseTimes = append(c.responseTimes, seconds)
	if len(c.responseTimes) > recentCallLimit {
		c.responseTimes = c.responseTimes[1:]
	}

	c.recentCalls = append(c.recentCalls, CallRecord{
		Timestamp:    time.Now(),
		Endpoint:     endpoint,
		Method:       method,
		Success:      success,
		ResponseTime: seconds,
	})
	if len(c.recentCalls) > recentCallLimit {
		c.recentCalls = c.recentCalls[1:]
	}
}

func (c *Collector) RecordPost(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.posts[status]++
}

func (c *Collector) RecordError(errorType, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recentErrors = append(c.recentErrors, ErrorRecord{
		Timestamp: time.Now(),
		Type:      errorType,
		Message:   message,
	})
	if len(c.recentErrors) > recentErrorLimit {
		c.recentErrors = c.recentErrors[1:]
	}
}

func (c *Collector) SuccessRate() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.successRateLocked()
}

func (c *Collector) successRateLocked() float64 {
	var success, total int
	for _, stats := range c.apiCalls {
		success += stats.Success
		total += stats.Total
	}
	if total == 0 {
		return 0
	}
	return float64(success) / float64(total) * 100
}

func (c *Collector) avgResponseTimeLocked() float64 {
	if len(c.responseTimes) == 0 {
		return 0
	}
	var sum float64
	for _, t := range c.responseTimes {
		sum += t
	}
	return sum / float64(len(c.responseTimes))
}

func (c *Collector) postStatsLocked() PostStats {
	stats := PostStats{
		Completed: c.posts["completed"],
		Failed:    c.posts["failed"],
		Scheduled: c.posts["scheduled"],
	}
	for _, count := range c.posts {
		stats.Total += count
	}
	if stats.Total > 0 {
		stats.SuccessRate = float64(stats.Completed) / float64(stats.Total) * 100
	}
	return stats
}

// Dashboard returns the snapshot rendered by the metrics endpoint.
func (c *Collector) Dashboard() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()

	var totalCalls int
	for _, stats := range c.apiCalls {
		totalCalls += stats.Total
	}

	recentCalls := c.recentCalls
	if len(recentCalls) > 10 {
		recentCalls = recentCalls[len(recentCalls)-10:]
	}
	recentErrors := c.recentErrors
	if len(recentErrors) > 5 {
		recentErrors = recentErrors[len(recentErrors)-5:]
	}

	return map[string]any{
		"api": map[string]any{
			"success_rate":      c.successRateLocked(),
			"avg_response_time": c.avgResponseTimeLocked(),
			"total_calls":       totalCalls,
			"recent_calls":      append([]CallRecord(nil), recentCalls...),
		},
		"posts": c.postStatsLocked(),
		"errors": map[string]any{
			"recent": append([]ErrorRecord(nil), recentErrors...),
		},
		"performance": map[string]any{
			"uptime":            time.Since(c.sessionStart).String(),
			"avg_response_time": fmt.Sprintf("%.2fs", c.avgResponseTimeLocked()),
		},
	}
}
