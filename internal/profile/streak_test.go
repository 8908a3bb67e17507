package profile

import (
	"testing"
	"time"

	"github.com/example/vocabdrill/pkg/models"
)

func at(day, hour int) time.Time {
	return time.Date(2025, 5, day, hour, 0, 0, 0, time.UTC)
}

func TestUpdateStreak(t *testing.T) {
	cases := []struct {
		name   string
		last   *time.Time
		streak int
		now    time.Time
		want   int
	}{
		{"first session", nil, 0, at(10, 9), 1},
		{"same day", ptr(at(10, 8)), 4, at(10, 22), 4},
		{"same day zero streak", ptr(at(10, 8)), 0, at(10, 9), 1},
		{"next day", ptr(at(10, 23)), 4, at(11, 1), 5},
		{"gap", ptr(at(10, 9)), 4, at(13, 9), 1},
		{"clock went back", ptr(at(12, 9)), 4, at(10, 9), 4},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := &models.UserProfile{StreakDays: c.streak, LastSession: c.last}
			UpdateStreak(p, c.now)
			if p.StreakDays != c.want {
				t.Errorf("StreakDays = %d, want %d", p.StreakDays, c.want)
			}
			if c.now.Before(derefOr(c.last, c.now)) {
				if !p.LastSession.Equal(*c.last) {
					t.Errorf("LastSession moved backward to %v", p.LastSession)
				}
			} else if !p.LastSession.Equal(c.now) {
				t.Errorf("LastSession = %v, want %v", p.LastSession, c.now)
			}
		})
	}
}

func TestDaysBetween(t *testing.T) {
	if got := DaysBetween(at(1, 23), at(2, 0)); got != 1 {
		t.Errorf("DaysBetween across midnight = %d, want 1", got)
	}
	if got := DaysBetween(at(1, 0), at(1, 23)); got != 0 {
		t.Errorf("DaysBetween same day = %d, want 0", got)
	}
	if got := DaysBetween(at(5, 12), at(1, 12)); got != -4 {
		t.Errorf("DaysBetween backwards = %d, want -4", got)
	}
}

func ptr(t time.Time) *time.Time { return &t }

func derefOr(t *time.Time, fallback time.Time) time.Time {
	if t == nil {
		return fallback
	}
	return *t
}
