package rewards

import (
	"testing"
	"time"

	"calmtide/internal/core/model"
	"github.com/stretchr/testify/assert"
)

// Sunday 18 October 2026, 20:00 UTC.
var now = time.Date(2026, 10, 18, 20, 0, 0, 0, time.UTC)

func sessionOn(daysAgo int, minutes int) model.CompletedSessionRecord {
	return model.CompletedSessionRecord{
		DurationMinutes: minutes,
		CompletedAt:     now.AddDate(0, 0, -daysAgo).Add(-time.Hour),
	}
}

func TestWeekStartIsMonday(t *testing.T) {
	assert.Equal(t, time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC), WeekStart(now))
	monday := time.Date(2026, 10, 12, 7, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC), WeekStart(monday))
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil, now)

	assert.Equal(t, Summary{}, summary)
}

func TestSummarizeStreakAndWeek(t *testing.T) {
	sessions := []model.CompletedSessionRecord{
		sessionOn(0, 25),
		sessionOn(0, 25),
		sessionOn(1, 50),
		sessionOn(2, 25),
		sessionOn(4, 25),
		sessionOn(8, 25),
	}

	summary := Summarize(sessions, now)

	assert.Equal(t, 6, summary.TotalSessions)
	assert.Equal(t, 5, summary.SessionsThisWeek)
	assert.Equal(t, 150, summary.MinutesThisWeek)
	assert.Equal(t, 3, summary.CurrentStreak)
	assert.Equal(t, 6*10+175, summary.Points)
	assert.Equal(t, []Badge{BadgeFirstSession, BadgeStreak3}, summary.Badges)
}

func TestStreakCountsFromYesterday(t *testing.T) {
	sessions := []model.CompletedSessionRecord{sessionOn(1, 25), sessionOn(2, 25)}

	assert.Equal(t, 2, Summarize(sessions, now).CurrentStreak)
}

func TestStreakBrokenByGap(t *testing.T) {
	sessions := []model.CompletedSessionRecord{sessionOn(2, 25), sessionOn(3, 25)}

	assert.Equal(t, 0, Summarize(sessions, now).CurrentStreak)
}

func TestWeeklyStreakBonusAndBadges(t *testing.T) {
	var sessions []model.CompletedSessionRecord
	for day := 0; day < 7; day++ {
		sessions = append(sessions, sessionOn(day, 50))
	}

	summary := Summarize(sessions, now)

	assert.Equal(t, 7, summary.CurrentStreak)
	assert.Equal(t, 7*10+350+50, summary.Points)
	assert.Equal(t, 350, summary.MinutesThisWeek)
	assert.Equal(t, []Badge{BadgeFirstSession, BadgeStreak3, BadgeStreak7, BadgeFiveHoursWeek}, summary.Badges)
}

func TestLookbackStart(t *testing.T) {
	assert.Equal(t, time.Date(2025, 10, 18, 0, 0, 0, 0, time.UTC), LookbackStart(now))
}
