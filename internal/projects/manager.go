package projects

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"taskbot/internal/models"
	"taskbot/internal/storage/jsonstore"
)

// Manager owns the project collection. Structured project records and the
// legacy name-keyed summary strings live in the same collection; operations
// that read it match on the entry shape.
type Manager struct {
	store  *jsonstore.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewManager builds a project manager on top of the shared store.
func NewManager(store *jsonstore.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: store, logger: logger, now: time.Now}
}

// SetClock overrides the wall clock, for tests.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// Create parses "name | description | deadline | budget" and inserts a
// structured project record under the next proj_<n> id.
func (m *Manager) Create(text, userID string) string {
	text = strings.TrimSpace(text)
	if !strings.Contains(text, "|") {
		return "Format: /create-project <name> | <description> | <deadline> | <budget>"
	}

	parts := strings.Split(text, "|")
	if len(parts) < 2 {
		return "Format: /create-project <name> | <description> | <deadline> | <budget>"
	}

	name := strings.TrimSpace(parts[0])
	description := strings.TrimSpace(parts[1])
	deadline := ""
	budget := ""
	if len(parts) > 2 {
		deadline = strings.TrimSpace(parts[2])
	}
	if len(parts) > 3 {
		budget = strings.TrimSpace(parts[3])
	}

	var projectID string
	m.update(func(st *jsonstore.State) bool {
		projectID = st.NextProjectID()
		st.ProjectSummaries[projectID] = models.ProjectEntry{Record: &models.Project{
			Name:        name,
			Description: description,
			Deadline:    deadline,
			Budget:      budget,
			CreatedBy:   userID,
			CreatedAt:   m.now(),
			Status:      "Active",
			Progress:    0,
			Tasks:       []int{},
			TeamMembers: []string{},
			Milestones:  []string{},
		}}
		return true
	})

	return fmt.Sprintf("🚀 Project created: %s\n📋 ID: %s\n📝 Description: %s", name, projectID, description)
}

// UpdateProgress handles "<project_id> <percentage>" with the percentage an
// integer in [0, 100].
func (m *Manager) UpdateProgress(text string) string {
	text = strings.TrimSpace(text)
	if !strings.Contains(text, " ") {
		return "Format: /project-progress <project_id> <percentage>"
	}

	parts := strings.SplitN(text, " ", 2)
	projectID := parts[0]
	progress, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return "❌ Invalid progress percentage"
	}
	if progress < 0 || progress > 100 {
		return "❌ Progress must be between 0 and 100"
	}

	var resp string
	m.update(func(st *jsonstore.State) bool {
		entry, ok := st.ProjectSummaries[projectID]
		if !ok || !entry.IsRecord() {
			resp = "❌ Project not found"
			return false
		}
		entry.Record.Progress = progress
		resp = fmt.Sprintf("📊 Project %s progress updated to %d%%", projectID, progress)
		return true
	})
	return resp
}

// CreateSummary handles the legacy "<project_name>, <summary>" command. The
// value is a bare string keyed by project name, stored in the same collection
// as the structured records.
func (m *Manager) CreateSummary(text string) string {
	text = strings.TrimSpace(text)
	if !strings.Contains(text, ",") {
		return "Invalid format. Please use: /create-project-summary <project_name>, <summary>"
	}
	if len(strings.SplitN(text, " ", 2)) < 2 {
		return "Invalid format. Please use: /create-project-summary <project_name> <summary>"
	}

	parts := strings.SplitN(text, ",", 2)
	name := strings.TrimSpace(parts[0])
	summary := strings.TrimSpace(parts[1])

	m.update(func(st *jsonstore.State) bool {
		st.ProjectSummaries[name] = models.ProjectEntry{Summary: summary}
		return true
	})
	return fmt.Sprintf("Project summary for '%s' created.", name)
}

// ListSummaries renders every entry in the collection, structured records
// included, the way the legacy command always has.
func (m *Manager) ListSummaries() string {
	var resp string
	m.store.View(func(st *jsonstore.State) {
		if len(st.ProjectSummaries) == 0 {
			resp = "No project summaries available."
			return
		}

		keys := make([]string, 0, len(st.ProjectSummaries))
		for k := range st.ProjectSummaries {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var b strings.Builder
		b.WriteString("Project Summaries:\n")
		for _, k := range keys {
			entry := st.ProjectSummaries[k]
			if entry.IsRecord() {
				fmt.Fprintf(&b, "Project: %s, Summary: %s\n\n", k, entry.Record.Description)
			} else {
				fmt.Fprintf(&b, "Project: %s, Summary: %s\n\n", k, entry.Summary)
			}
		}
		resp = b.String()
	})
	return resp
}

// Analytics aggregates project status counts, task completion numbers and a
// priority histogram. Legacy string-valued entries count toward the project
// total but carry no status, so they are skipped for the status breakdown.
func (m *Manager) Analytics() string {
	today := m.now()
	var resp string
	m.store.View(func(st *jsonstore.State) {
		if len(st.ProjectSummaries) == 0 {
			resp = "📊 No projects available for analytics."
			return
		}

		totalProjects := len(st.ProjectSummaries)
		activeProjects := 0
		completedProjects := 0
		for _, entry := range st.ProjectSummaries {
			if !entry.IsRecord() {
				continue
			}
			switch entry.Record.Status {
			case "Active":
				activeProjects++
			case "Completed":
				completedProjects++
			}
		}

		totalTasks := len(st.Tasks)
		completedTasks := 0
		overdueTasks := 0
		priorityCounts := map[string]int{}
		for _, task := range st.Tasks {
			if task.IsCompleted() {
				completedTasks++
			}
			if task.IsOverdue(today) {
				overdueTasks++
			}
			priorityCounts[task.Priority]++
		}

		completionRate := 0.0
		if totalTasks > 0 {
			completionRate = float64(completedTasks) / float64(totalTasks) * 100
		}

		var b strings.Builder
		b.WriteString("📊 Project Analytics:\n\n")
		b.WriteString("📈 Project Overview:\n")
		fmt.Fprintf(&b, "   🚀 Total Projects: %d\n", totalProjects)
		fmt.Fprintf(&b, "   🔄 Active Projects: %d\n", activeProjects)
		fmt.Fprintf(&b, "   ✅ Completed Projects: %d\n\n", completedProjects)
		b.WriteString("📋 Task Analytics:\n")
		fmt.Fprintf(&b, "   📊 Total Tasks: %d\n", totalTasks)
		fmt.Fprintf(&b, "   ✅ Completed: %d\n", completedTasks)
		fmt.Fprintf(&b, "   ⚠️ Overdue: %d\n", overdueTasks)
		fmt.Fprintf(&b, "   📈 Completion Rate: %.1f%%\n\n", completionRate)

		b.WriteString("🎯 Priority Breakdown:\n")
		priorities := make([]string, 0, len(priorityCounts))
		for p := range priorityCounts {
			priorities = append(priorities, p)
		}
		sort.Strings(priorities)
		for _, p := range priorities {
			fmt.Fprintf(&b, "   %s: %d tasks\n", p, priorityCounts[p])
		}
		resp = b.String()
	})
	return resp
}

func (m *Manager) update(fn func(st *jsonstore.State) bool) {
	if err := m.store.Update(fn); err != nil {
		m.logger.Error("project state flush failed", slog.String("error", err.Error()))
	}
}
