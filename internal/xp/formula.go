// internal/xp/formula.go
package xp

import (
	"fmt"
	"math"
	"strings"

	"studyflow/internal/model"
)

// Well-known history icon tags. Kept as opaque strings end to end; these
// constants only name the ones the engine itself emits.
const (
	IconStudy  = "book"
	IconBonus  = "gift"
	IconManual = "star"
)

// HoursEquivalent collapses the h/m/s duration of a log into fractional hours.
func HoursEquivalent(l *model.StudyLog) float64 {
	return float64(l.Hours) + float64(l.Minutes)/60 + float64(l.Seconds)/3600
}

// ForLog computes the XP a single study log is worth. The formula is uniform
// across study types:
//
//	floor(hours * 10) + pages * 2 + correct * 5
func ForLog(l *model.StudyLog) int {
	return int(math.Floor(HoursEquivalent(l)*10)) + l.Pages*2 + l.Correct*5
}

// GrantReason assembles the human-readable grant reason from the non-zero
// components of a log: duration as "Xh Ymin" (or just "Ymin"), pages and
// correct answers.
func GrantReason(l *model.StudyLog) string {
	var parts []string
	switch {
	case l.Hours > 0 && l.Minutes > 0:
		parts = append(parts, fmt.Sprintf("%dh %dmin", l.Hours, l.Minutes))
	case l.Hours > 0:
		parts = append(parts, fmt.Sprintf("%dh", l.Hours))
	case l.Minutes > 0:
		parts = append(parts, fmt.Sprintf("%dmin", l.Minutes))
	}
	if l.Pages > 0 {
		parts = append(parts, fmt.Sprintf("%d páginas", l.Pages))
	}
	if l.Correct > 0 {
		parts = append(parts, fmt.Sprintf("%d questões corretas", l.Correct))
	}
	if len(parts) == 0 {
		return "Sessão de estudo"
	}
	return strings.Join(parts, ", ")
}
