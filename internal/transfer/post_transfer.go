package transfer

// PostCreation carries the raw multipart form fields of a schedule-post
// request. Models and LibraryMediaIDs are JSON-encoded string lists.
type PostCreation struct {
	Content         string
	Models          string
	ScheduleTime    string
	LibraryMediaIDs string
}

type PostEdit struct {
	Content      string   `json:"content"`
	Models       []string `json:"models"`
	ScheduleTime *string  `json:"schedule_time"`
}

type Suggestion struct {
	Datetime      string  `json:"datetime"`
	DayName       string  `json:"day_name"`
	Time          string  `json:"time"`
	Confidence    int     `json:"confidence"`
	AvgEngagement float64 `json:"avg_engagement"`
	SuccessRate   float64 `json:"success_rate"`
	Reason        string  `json:"reason"`
}

type PatternReport struct {
	Status     string       `json:"status"`
	Message    string       `json:"message,omitempty"`
	TotalPosts int          `json:"total_posts,omitempty"`
	BestDay    *PatternSlot `json:"best_day,omitempty"`
	BestHour   *PatternSlot `json:"best_hour,omitempty"`
	Insights   []string     `json:"insights,omitempty"`
}

type PatternSlot struct {
	Day           string  `json:"day,omitempty"`
	Hour          int     `json:"hour,omitempty"`
	Formatted     string  `json:"formatted,omitempty"`
	AvgEngagement float64 `json:"avg_engagement"`
}
