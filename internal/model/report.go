// internal/model/report.go
package model

// StudySummaryResponse aggregates a period of study logs. Hours are decimal
// hour-equivalents of the logged durations.
type StudySummaryResponse struct {
	From         string  `json:"from"`
	To           string  `json:"to"`
	Sessions     int     `json:"sessions"`
	TotalHours   float64 `json:"total_hours"`
	MeanHours    float64 `json:"mean_hours"`
	MedianHours  float64 `json:"median_hours"`
	StdDevHours  float64 `json:"stddev_hours"`
	TotalPages   int     `json:"total_pages"`
	TotalCorrect int     `json:"total_correct"`
	TotalWrong   int     `json:"total_wrong"`
	TotalBlank   int     `json:"total_blank"`
}
