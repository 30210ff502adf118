package team

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"taskbot/internal/models"
	"taskbot/internal/slack"
	"taskbot/internal/storage/jsonstore"
)

// Directory resolves platform user ids to contact details. The Slack client
// satisfies it; tests substitute a stub.
type Directory interface {
	LookupUser(id string) (slack.UserInfo, error)
}

// Manager owns the team member collection and the per-member task stats.
type Manager struct {
	store     *jsonstore.Store
	directory Directory
	logger    *slog.Logger
	now       func() time.Time
}

// NewManager builds a team manager on top of the shared store.
func NewManager(store *jsonstore.Store, directory Directory, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: store, directory: directory, logger: logger, now: time.Now}
}

// SetClock overrides the wall clock, for tests.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// AddMember handles "<user_id> <role>". Re-adding a user overwrites the
// existing entry.
func (m *Manager) AddMember(text string) string {
	text = strings.TrimSpace(text)
	if !strings.Contains(text, " ") {
		return "Format: /add-team-member <user_id> <role>"
	}

	parts := strings.SplitN(text, " ", 2)
	userID := parts[0]
	role := strings.TrimSpace(parts[1])

	m.update(func(st *jsonstore.State) bool {
		st.TeamMembers[userID] = &models.TeamMember{
			Role:         role,
			JoinedAt:     m.now(),
			CurrentTasks: []int{},
		}
		st.UserRoles[userID] = role
		return true
	})
	return fmt.Sprintf("👥 Added %s to team as %s", userID, role)
}

// Stats renders completed/total task counts per member, computed from the
// task collection by assignee, plus the overall completion rate.
func (m *Manager) Stats() string {
	var resp string
	m.store.View(func(st *jsonstore.State) {
		if len(st.TeamMembers) == 0 {
			resp = "👥 No team members registered."
			return
		}

		ids := make([]string, 0, len(st.TeamMembers))
		for id := range st.TeamMembers {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		var b strings.Builder
		b.WriteString("👥 Team Stats:\n\n")
		for _, id := range ids {
			member := st.TeamMembers[id]
			total := 0
			completed := 0
			for _, task := range st.Tasks {
				if task.AssignedTo != id {
					continue
				}
				total++
				if task.IsCompleted() {
					completed++
				}
			}
			fmt.Fprintf(&b, "• %s (%s): %d/%d tasks completed\n", id, member.Role, completed, total)
		}

		totalTasks := len(st.Tasks)
		completedTasks := 0
		for _, task := range st.Tasks {
			if task.IsCompleted() {
				completedTasks++
			}
		}
		rate := 0.0
		if totalTasks > 0 {
			rate = float64(completedTasks) / float64(totalTasks) * 100
		}
		fmt.Fprintf(&b, "\n📈 Overall completion rate: %.1f%%", rate)
		resp = b.String()
	})
	return resp
}

// ContactInfo looks the user up in the platform directory. Any lookup
// failure, user-not-found and network trouble alike, collapses to the same
// generic message.
func (m *Manager) ContactInfo(text string) string {
	userID := strings.TrimSpace(text)
	if userID == "" {
		return "Please format with user_id for me to get the contact infromation. Use: /get-contact-info (user_id)"
	}

	user, err := m.directory.LookupUser(userID)
	if err != nil {
		m.logger.Warn("user lookup failed", slog.String("user", userID), slog.String("error", err.Error()))
		return "Error getting the user info."
	}

	email := user.Email
	if email == "" {
		email = "Email not found"
	}
	return fmt.Sprintf("User: %s\nEmail: %s", user.Name, email)
}

func (m *Manager) update(fn func(st *jsonstore.State) bool) {
	if err := m.store.Update(fn); err != nil {
		m.logger.Error("team state flush failed", slog.String("error", err.Error()))
	}
}
