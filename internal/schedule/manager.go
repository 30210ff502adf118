package schedule

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"taskbot/internal/models"
	"taskbot/internal/storage/jsonstore"
	"taskbot/internal/util"
)

// Notifier delivers text to a channel on the messaging platform. Delivery is
// best-effort from the scheduler's point of view: failures are logged and
// never reach the next firing.
type Notifier interface {
	SendMessage(channel, text string) error
}

// Manager implements the scheduling slash commands on top of the facade.
type Manager struct {
	store  *jsonstore.Store
	sched  *Scheduler
	sink   Notifier
	logger *slog.Logger
	now    func() time.Time
}

// NewManager builds the scheduling command handler.
func NewManager(store *jsonstore.Store, sched *Scheduler, sink Notifier, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: store, sched: sched, sink: sink, logger: logger, now: time.Now}
}

// SetClock overrides the wall clock, for tests. Keep it in sync with the
// facade's clock when testing roll-forward behaviour.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// ScheduleMeeting parses "title | date | time | duration | participants",
// registers the start announcement and, when there is still room, a reminder
// 15 minutes beforehand.
func (m *Manager) ScheduleMeeting(text, channelID string) string {
	text = strings.TrimSpace(text)
	if !strings.Contains(text, "|") {
		return "Format: /schedule-meeting <title> | <date> | <time> | <duration_minutes> | <participants>"
	}

	parts := strings.Split(text, "|")
	if len(parts) < 4 {
		return "Format: /schedule-meeting <title> | <date> | <time> | <duration_minutes> | <participants>"
	}

	title := strings.TrimSpace(parts[0])
	dateStr := strings.TrimSpace(parts[1])
	timeStr := strings.TrimSpace(parts[2])

	duration, err := strconv.Atoi(strings.TrimSpace(parts[3]))
	if err != nil {
		return fmt.Sprintf("❌ Invalid date/time format: %v", err)
	}

	var participants []string
	if len(parts) > 4 && strings.TrimSpace(parts[4]) != "" {
		for _, p := range strings.Split(parts[4], ",") {
			participants = append(participants, strings.TrimSpace(p))
		}
	}

	meetingAt, err := time.ParseInLocation("2006-01-02 15:04", dateStr+" "+timeStr, time.Local)
	if err != nil {
		return fmt.Sprintf("❌ Invalid date/time format: %v", err)
	}

	reminderAt := meetingAt.Add(-15 * time.Minute)
	if reminderAt.After(m.now()) {
		m.sched.At(
			fmt.Sprintf("meeting_reminder_%s_%s", title, meetingAt.Format(time.RFC3339)),
			reminderAt,
			func() {
				m.post(channelID, fmt.Sprintf("🔔 Meeting reminder: %s starts in 15 minutes!", title))
			},
		)
	}

	who := "All team members"
	if len(participants) > 0 {
		who = strings.Join(participants, ", ")
	}
	m.sched.At(
		fmt.Sprintf("meeting_start_%s_%s", title, meetingAt.Format(time.RFC3339)),
		meetingAt,
		func() {
			m.post(channelID, fmt.Sprintf("🎯 Meeting starting: %s\n⏱️ Duration: %d minutes\n👥 Participants: %s", title, duration, who))
		},
	)

	return fmt.Sprintf("📅 Meeting scheduled: %s\n📅 Date: %s\n⏱️ Duration: %d minutes", title, meetingAt.Format("2006-01-02 15:04"), duration)
}

// RecurringReminder parses "message | frequency | HH:MM" and registers a
// daily, weekly (Monday) or monthly (1st) recurring post.
func (m *Manager) RecurringReminder(text, userID, channelID string) string {
	text = strings.TrimSpace(text)
	if !strings.Contains(text, "|") {
		return "Format: /recurring-reminder <message> | <frequency> | <time>"
	}

	parts := strings.Split(text, "|")
	if len(parts) < 3 {
		return "Format: /recurring-reminder <message> | <frequency> | <time>"
	}

	message := strings.TrimSpace(parts[0])
	frequency := strings.ToLower(strings.TrimSpace(parts[1]))
	timeStr := strings.TrimSpace(parts[2])

	hour, minute, err := parseClock(timeStr)
	if err != nil {
		return "❌ Invalid time format. Use HH:MM"
	}

	var spec, label string
	switch frequency {
	case "daily":
		spec = fmt.Sprintf("%d %d * * *", minute, hour)
		label = "🔄 Daily reminder: "
	case "weekly":
		spec = fmt.Sprintf("%d %d * * 1", minute, hour)
		label = "🔄 Weekly reminder: "
	case "monthly":
		spec = fmt.Sprintf("%d %d 1 * *", minute, hour)
		label = "🔄 Monthly reminder: "
	default:
		return "❌ Invalid frequency. Use: daily, weekly, monthly"
	}

	id := fmt.Sprintf("%s_reminder_%s_%s", frequency, userID, util.Truncate(message, 20))
	if err := m.sched.Cron(id, spec, func() {
		m.post(channelID, label+message)
	}); err != nil {
		m.logger.Error("recurring reminder registration failed", slog.String("error", err.Error()))
		return "❌ Invalid time format. Use HH:MM"
	}

	return fmt.Sprintf("🔄 Recurring reminder set: %s\n📅 Frequency: %s\n⏰ Time: %s", message, frequency, timeStr)
}

// NotifyMe parses "Message, HH:MM" and schedules a one-shot reminder at that
// clock time, today if still ahead, otherwise tomorrow. The boolean is false
// for malformed input, which the HTTP layer maps to a 400.
func (m *Manager) NotifyMe(text, userID, channelID string) (string, bool) {
	parts := strings.Split(text, ",")
	if len(parts) != 2 {
		return "Invalid format. Use: 'Message, HH:MM'", false
	}

	message := strings.TrimSpace(parts[0])
	timeStr := strings.TrimSpace(parts[1])

	hour, minute, err := parseClock(timeStr)
	if err != nil {
		return "❌ Invalid time format. Use HH:MM.", false
	}

	now := m.now()
	notifyAt := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())

	at := m.sched.At(fmt.Sprintf("%s-%02d:%02d", userID, hour, minute), notifyAt, func() {
		m.post(channelID, "🔔 Reminder: "+message)
	})

	return fmt.Sprintf("✅ Reminder set for %s: %s", at.Format("15:04"), message), true
}

// SetReminder stores the single outstanding 24-hour reminder for the calling
// user (a second call overwrites the first), confirms in channel and
// schedules the delivery.
func (m *Manager) SetReminder(text, userID, channelID string) {
	fireAt := m.now().Add(24 * time.Hour)

	if err := m.store.Update(func(st *jsonstore.State) bool {
		st.Reminders[userID] = &models.Reminder{
			ChannelID: channelID,
			Text:      text,
			Time:      fireAt,
		}
		return true
	}); err != nil {
		m.logger.Error("reminder flush failed", slog.String("error", err.Error()))
	}

	m.post(channelID, "🔔 Reminder set for 24 hours: "+text)

	m.sched.At("set_reminder_"+userID, fireAt, func() {
		m.fireStoredReminder(userID)
	})
}

// fireStoredReminder delivers and removes the stored reminder, if it is
// still there.
func (m *Manager) fireStoredReminder(userID string) {
	var reminder *models.Reminder
	if err := m.store.Update(func(st *jsonstore.State) bool {
		reminder = st.Reminders[userID]
		if reminder == nil {
			return false
		}
		delete(st.Reminders, userID)
		return true
	}); err != nil {
		m.logger.Error("reminder flush failed", slog.String("error", err.Error()))
	}

	if reminder != nil {
		m.post(reminder.ChannelID, "🔔 Reminder: "+reminder.Text)
	}
}

// SmartNotify parses "message | condition | time" and sends immediately when
// the condition holds. The time field is accepted but ignored. Conditions:
// task_completion fires when no open high-priority task remains;
// project_deadline fires when any structured project deadline is within
// seven days.
func (m *Manager) SmartNotify(text, channelID string) string {
	text = strings.TrimSpace(text)
	if !strings.Contains(text, "|") {
		return "Format: /smart-notify <message> | <condition> | <time>"
	}

	parts := strings.Split(text, "|")
	if len(parts) < 3 {
		return "Format: /smart-notify <message> | <condition> | <time>"
	}

	message := strings.TrimSpace(parts[0])
	condition := strings.ToLower(strings.TrimSpace(parts[1]))

	sent := false
	switch condition {
	case "task_completion":
		openHighPriority := false
		m.store.View(func(st *jsonstore.State) {
			for _, task := range st.Tasks {
				if strings.EqualFold(task.Priority, "high") && !task.IsCompleted() {
					openHighPriority = true
					return
				}
			}
		})
		if !openHighPriority {
			m.post(channelID, "🎉 Smart notification: "+message)
			sent = true
		}

	case "project_deadline":
		today := m.now()
		m.store.View(func(st *jsonstore.State) {
			for _, entry := range st.ProjectSummaries {
				if !entry.IsRecord() || entry.Record.Deadline == "" {
					continue
				}
				deadline, err := time.Parse(models.DueDateLayout, entry.Record.Deadline)
				if err != nil {
					continue
				}
				if deadline.Sub(today) <= 7*24*time.Hour {
					sent = true
					return
				}
			}
		})
		if sent {
			m.post(channelID, "⚠️ Project deadline alert: "+message)
		}
	}

	if sent {
		return "✅ Smart notification sent!"
	}
	return "❌ Condition not met for smart notification"
}

func (m *Manager) post(channel, text string) {
	if err := m.sink.SendMessage(channel, text); err != nil {
		m.logger.Warn("message delivery failed", slog.String("channel", channel), slog.String("error", err.Error()))
	}
}

// parseClock parses "HH:MM" (single-digit hours accepted) into clock fields.
func parseClock(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid clock time %q", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid clock time %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid clock time %q", s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("clock time %q out of range", s)
	}
	return hour, minute, nil
}
