package analytics

import "time"

const (
	LevelStarter  = "Starter"
	LevelAdvanced = "Advanced"
	LevelPro      = "Pro"

	proThreshold      = 20
	advancedThreshold = 10
)

// OrganiserLevel ranks an organiser by lifetime event count and reports progress towards Pro.
func OrganiserLevel(eventCount int64) (string, float64) {
	progress := float64(eventCount) / proThreshold * 100
	if progress > 100 {
		progress = 100
	}
	if progress < 0 {
		progress = 0
	}
	progress = Round(progress, 1)

	switch {
	case eventCount >= proThreshold:
		return LevelPro, progress
	case eventCount >= advancedThreshold:
		return LevelAdvanced, progress
	}
	return LevelStarter, progress
}

func Points(attendees, published, completed int64) int64 {
	return attendees*10 + published*50 + completed*100
}

// Streak counts consecutive UTC days with activity, ending today or, when today has none yet,
// yesterday.
func Streak(activity []time.Time, now time.Time) int {
	days := make(map[string]bool, len(activity))
	for _, t := range activity {
		days[dayKey(t)] = true
	}

	day := truncateDay(now)
	if !days[day.Format(dateLayout)] {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for days[day.Format(dateLayout)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// RevenueComparison splits sales into the last 30 days and the 30 days before that.
func RevenueComparison(sales []Sale, now time.Time) (current, previous, growth float64) {
	currentWindow := LastDays(30, now)
	previousWindow := Window{Start: now.UTC().AddDate(0, 0, -60), End: currentWindow.Start}

	for _, s := range sales {
		switch {
		case currentWindow.Contains(s.CreatedAt):
			current += s.Amount
		case previousWindow.Contains(s.CreatedAt):
			previous += s.Amount
		}
	}
	return Round(current, 2), Round(previous, 2), Round(Growth(previous, current), 1)
}
