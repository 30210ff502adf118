package schedule

import (
	"fmt"
	"log/slog"
)

const dailyStandupPrompt = "🌅 **Daily Standup Time!**\n\nPlease reply with:\n1️⃣ What you worked on yesterday\n2️⃣ What the plan is for today\n3️⃣ Any blockers or updates"

const weeklyStandupPrompt = "📅 **Weekly Standup Time!**\n\nPlease share:\n1️⃣ What you accomplished this week\n2️⃣ What you plan to work on next week\n3️⃣ Any challenges or insights"

const monthlyStandupPrompt = "📊 **Monthly Review Time!**\n\nPlease reflect on:\n1️⃣ Key achievements this month\n2️⃣ Goals for next month\n3️⃣ Any process improvements or suggestions"

// RegisterStandups wires the recurring standup prompts: daily every day,
// weekly on Mondays, monthly on the 1st, all at the given clock time.
// Registrations live only in memory and are redone on every startup.
func RegisterStandups(s *Scheduler, sink Notifier, channel string, hour, minute int, logger *slog.Logger) error {
	if channel == "" {
		logger.Warn("standup channel not configured; standup prompts disabled")
		return nil
	}

	post := func(text string) func() {
		return func() {
			if err := sink.SendMessage(channel, text); err != nil {
				logger.Warn("standup delivery failed", slog.String("error", err.Error()))
			}
		}
	}

	jobs := []struct {
		id   string
		spec string
		text string
	}{
		{"standup_daily", fmt.Sprintf("%d %d * * *", minute, hour), dailyStandupPrompt},
		{"standup_weekly", fmt.Sprintf("%d %d * * 1", minute, hour), weeklyStandupPrompt},
		{"standup_monthly", fmt.Sprintf("%d %d 1 * *", minute, hour), monthlyStandupPrompt},
	}
	for _, job := range jobs {
		if err := s.Cron(job.id, job.spec, post(job.text)); err != nil {
			return fmt.Errorf("register %s: %w", job.id, err)
		}
	}
	return nil
}
