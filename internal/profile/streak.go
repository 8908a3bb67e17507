package profile

import (
	"time"

	"github.com/example/vocabdrill/pkg/models"
)

// UpdateStreak counts a practice session at now against the profile's last session.
// Consecutive days extend the streak, a gap resets it to 1, and a second session
// on the same day leaves it unchanged. A now earlier than the last session is ignored.
func UpdateStreak(p *models.UserProfile, now time.Time) {
	if p.LastSession == nil {
		p.StreakDays = 1
		setLastSession(p, now)
		return
	}

	days := DaysBetween(*p.LastSession, now)
	switch {
	case days < 0:
		return
	case days == 0:
		if p.StreakDays == 0 {
			p.StreakDays = 1
		}
	case days == 1:
		p.StreakDays++
	default:
		p.StreakDays = 1
	}
	setLastSession(p, now)
}

// DaysBetween returns the number of calendar days from a to b in b's location
func DaysBetween(a, b time.Time) int {
	loc := b.Location()
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

func setLastSession(p *models.UserProfile, now time.Time) {
	last := now
	p.LastSession = &last
}
