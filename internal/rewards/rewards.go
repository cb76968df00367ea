// Package rewards derives streak and reward counters from completed focus sessions.
package rewards

import (
	"time"

	"calmtide/internal/core/model"
)

// Badge names an achievement.
type Badge string

const (
	BadgeFirstSession  Badge = "first_session"
	BadgeStreak3       Badge = "streak_3"
	BadgeStreak7       Badge = "streak_7"
	BadgeFiveHoursWeek Badge = "five_hours_week"
)

const (
	pointsPerSession    = 10
	pointsPerMinute     = 1
	pointsPerStreakWeek = 50
	fiveHoursInMinutes  = 300
	DefaultLookbackDays = 365
)

// Summary holds the counters shown to the user.
type Summary struct {
	TotalSessions    int
	SessionsThisWeek int
	MinutesThisWeek  int
	CurrentStreak    int
	Points           int
	Badges           []Badge
}

// LookbackStart returns the earliest completion time Summarize needs.
func LookbackStart(now time.Time) time.Time {
	return startOfDay(now).AddDate(0, 0, -DefaultLookbackDays)
}

// WeekStart returns local midnight of the Monday starting now's week.
func WeekStart(now time.Time) time.Time {
	day := startOfDay(now)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// Summarize computes counters for sessions relative to now.
func Summarize(sessions []model.CompletedSessionRecord, now time.Time) Summary {
	summary := Summary{TotalSessions: len(sessions)}
	weekStart := WeekStart(now)
	days := make(map[time.Time]bool, len(sessions))
	totalMinutes := 0

	for _, session := range sessions {
		completed := session.CompletedAt.In(now.Location())
		days[startOfDay(completed)] = true
		totalMinutes += session.DurationMinutes
		if !completed.Before(weekStart) && !completed.After(now) {
			summary.SessionsThisWeek++
			summary.MinutesThisWeek += session.DurationMinutes
		}
	}

	summary.CurrentStreak = streak(days, now)
	summary.Points = summary.TotalSessions*pointsPerSession +
		totalMinutes*pointsPerMinute +
		(summary.CurrentStreak/7)*pointsPerStreakWeek
	summary.Badges = badges(summary)
	return summary
}

func streak(days map[time.Time]bool, now time.Time) int {
	day := startOfDay(now)
	if !days[day] {
		day = day.AddDate(0, 0, -1)
	}
	count := 0
	for days[day] {
		count++
		day = day.AddDate(0, 0, -1)
	}
	return count
}

func badges(summary Summary) []Badge {
	var earned []Badge
	if summary.TotalSessions > 0 {
		earned = append(earned, BadgeFirstSession)
	}
	if summary.CurrentStreak >= 3 {
		earned = append(earned, BadgeStreak3)
	}
	if summary.CurrentStreak >= 7 {
		earned = append(earned, BadgeStreak7)
	}
	if summary.MinutesThisWeek >= fiveHoursInMinutes {
		earned = append(earned, BadgeFiveHoursWeek)
	}
	return earned
}

func startOfDay(value time.Time) time.Time {
	year, month, day := value.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, value.Location())
}
