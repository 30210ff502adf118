package tasks

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

var statusEmoji = map[string]string{
	"open":        "🔴",
	"in_progress": "🟡",
	"review":      "🟠",
	"completed":   "🟢",
	"blocked":     "🔴",
}

var priorityEmoji = map[string]string{
	"low":    "🟢",
	"normal": "🟡",
	"high":   "🟠",
	"urgent": "🔴",
}

// Manager owns the task collection: it parses free-text command payloads,
// mutates the store and answers with user-facing text. Every operation is
// total; malformed input becomes a response string, never an error.
type Manager struct {
	store  *jsonstore.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewManager builds a task manager on top of the shared store.
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

// Create parses "description | due_date | priority | category | hours" and
// inserts a new task. Unparseable due dates and hours are dropped silently;
// creation is deliberately lenient where update is strict.
func (m *Manager) Create(text, userID string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return "Please provide a task description. Format: /create-task <description> [due_date] [priority] [category]"
	}

	parts := strings.Split(text, "|")
	description := strings.TrimSpace(parts[0])

	dueDate := ""
	priority := "Normal"
	category := "General"
	var estimatedHours *float64

	if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
		if d, err := time.Parse(models.DueDateLayout, strings.TrimSpace(parts[1])); err == nil {
			dueDate = d.Format(models.DueDateLayout)
		}
	}
	if len(parts) > 2 && strings.TrimSpace(parts[2]) != "" {
		priority = strings.TrimSpace(parts[2])
	}
	if len(parts) > 3 && strings.TrimSpace(parts[3]) != "" {
		category = strings.TrimSpace(parts[3])
	}
	if len(parts) > 4 && strings.TrimSpace(parts[4]) != "" {
		if h, err := strconv.ParseFloat(strings.TrimSpace(parts[4]), 64); err == nil {
			estimatedHours = &h
		}
	}

	var taskID int
	m.update(func(st *jsonstore.State) bool {
		taskID = st.NextTaskID()
		st.Tasks[taskID] = &models.Task{
			Description:    description,
			Priority:       priority,
			Category:       category,
			Status:         "Open",
			CreatedBy:      userID,
			CreatedAt:      m.now(),
			DueDate:        dueDate,
			EstimatedHours: estimatedHours,
			Comments:       []string{},
			Attachments:    []string{},
		}
		return true
	})

	return fmt.Sprintf("✅ Task created: %s\n📋 ID: %d | Priority: %s | Category: %s", description, taskID, priority, category)
}

// Update applies "<task_id> <field> <value>". Unlike Create, malformed dates
// and hours are rejected here with explicit errors.
func (m *Manager) Update(text string) string {
	text = strings.TrimSpace(text)
	if text == "" || !strings.Contains(text, " ") {
		return "Format: /update-task <task_id> <field> <value>"
	}

	parts := strings.SplitN(text, " ", 3)
	if len(parts) < 3 {
		return "Format: /update-task <task_id> <field> <value>"
	}

	taskID, err := strconv.Atoi(parts[0])
	if err != nil {
		return "❌ Invalid task ID"
	}
	field := strings.ToLower(parts[1])
	value := parts[2]

	var resp string
	m.update(func(st *jsonstore.State) bool {
		task, ok := st.Tasks[taskID]
		if !ok {
			resp = "❌ Task ID not found."
			return false
		}

		switch field {
		case "status":
			task.Status = value
			if strings.EqualFold(value, "completed") {
				t := m.now()
				task.CompletedAt = &t
			}
		case "priority":
			task.Priority = value
		case "category":
			task.Category = value
		case "description":
			task.Description = value
		case "due_date":
			d, err := time.Parse(models.DueDateLayout, value)
			if err != nil {
				resp = "❌ Invalid date format. Use YYYY-MM-DD"
				return false
			}
			task.DueDate = d.Format(models.DueDateLayout)
		case "estimated_hours":
			h, err := strconv.ParseFloat(value, 64)
			if err != nil {
				resp = "❌ Invalid hours format"
				return false
			}
			task.EstimatedHours = &h
		default:
			resp = "❌ Invalid field. Use: status, priority, category, description, due_date, estimated_hours"
			return false
		}

		resp = fmt.Sprintf("✅ Task %d updated: %s = %s", taskID, field, value)
		return true
	})
	return resp
}

// SetStatus handles "<task_id> <status>". Setting the status to "completed"
// stamps the completion time; moving away from it later leaves the stamp in
// place, which existing reports rely on.
func (m *Manager) SetStatus(text string) string {
	text = strings.TrimSpace(text)
	if !strings.Contains(text, " ") {
		return "Format: /task-status <task_id> <status>"
	}

	parts := strings.SplitN(text, " ", 2)
	taskID, err := strconv.Atoi(parts[0])
	if err != nil {
		return "❌ Invalid task ID"
	}
	status := parts[1]

	var resp string
	m.update(func(st *jsonstore.State) bool {
		task, ok := st.Tasks[taskID]
		if !ok {
			resp = "❌ Task ID not found."
			return false
		}
		task.Status = status
		if strings.EqualFold(status, "completed") {
			t := m.now()
			task.CompletedAt = &t
		}
		resp = fmt.Sprintf("✅ Task %d status updated to: %s", taskID, status)
		return true
	})
	return resp
}

// List renders tasks matching the given space-separated filters. The
// status:/priority:/category: filters match case-insensitively, assigned:
// matches the user id exactly, and all present filters must hold.
func (m *Manager) List(text string) string {
	var statusFilter, priorityFilter, categoryFilter, assignedFilter string
	for _, item := range strings.Fields(strings.TrimSpace(text)) {
		switch {
		case strings.HasPrefix(item, "status:"):
			statusFilter = strings.TrimPrefix(item, "status:")
		case strings.HasPrefix(item, "priority:"):
			priorityFilter = strings.TrimPrefix(item, "priority:")
		case strings.HasPrefix(item, "category:"):
			categoryFilter = strings.TrimPrefix(item, "category:")
		case strings.HasPrefix(item, "assigned:"):
			assignedFilter = strings.TrimPrefix(item, "assigned:")
		}
	}

	var resp string
	m.store.View(func(st *jsonstore.State) {
		if len(st.Tasks) == 0 {
			resp = "📝 No tasks available."
			return
		}

		ids := make([]int, 0, len(st.Tasks))
		for id, task := range st.Tasks {
			if statusFilter != "" && !strings.EqualFold(task.Status, statusFilter) {
				continue
			}
			if priorityFilter != "" && !strings.EqualFold(task.Priority, priorityFilter) {
				continue
			}
			if categoryFilter != "" && !strings.EqualFold(task.Category, categoryFilter) {
				continue
			}
			if assignedFilter != "" && task.AssignedTo != assignedFilter {
				continue
			}
			ids = append(ids, id)
		}
		sort.Ints(ids)

		if len(ids) == 0 {
			resp = "📝 No tasks match the specified filters."
			return
		}

		var b strings.Builder
		fmt.Fprintf(&b, "📋 Tasks (%d found):\n\n", len(ids))
		for _, id := range ids {
			task := st.Tasks[id]

			se, ok := statusEmoji[strings.ToLower(task.Status)]
			if !ok {
				se = "⚪"
			}
			pe, ok := priorityEmoji[strings.ToLower(task.Priority)]
			if !ok {
				pe = "⚪"
			}

			assigned := task.AssignedTo
			if assigned == "" {
				assigned = "Unassigned"
			}
			due := task.DueDate
			if due == "" {
				due = "No due date"
			}
			est := "N/A"
			if task.EstimatedHours != nil {
				est = strconv.FormatFloat(*task.EstimatedHours, 'f', -1, 64)
			}

			fmt.Fprintf(&b, "%s **%d**: %s\n", se, id, task.Description)
			fmt.Fprintf(&b, "   %s Priority: %s | 📁 Category: %s\n", pe, task.Priority, task.Category)
			fmt.Fprintf(&b, "   👤 Assigned: %s | 📅 Due: %s\n", assigned, due)
			fmt.Fprintf(&b, "   ⏱️ Est: %sh | 🏷️ Status: %s\n\n", est, task.Status)
		}
		resp = b.String()
	})
	return resp
}

// Assign handles "<task_id> <user_id>".
func (m *Manager) Assign(text string) string {
	parts := strings.SplitN(strings.TrimSpace(text), " ", 2)
	if len(parts) < 2 {
		return "❌ Invalid format. Use: /assign-task <task_id> <user_id>"
	}
	taskID, err := strconv.Atoi(parts[0])
	if err != nil {
		return "❌ Invalid format. Use: /assign-task <task_id> <user_id>"
	}
	userID := strings.TrimSpace(parts[1])

	var resp string
	m.update(func(st *jsonstore.State) bool {
		task, ok := st.Tasks[taskID]
		if !ok {
			resp = fmt.Sprintf("❌ Task ID '%d' not found.", taskID)
			return false
		}
		task.AssignedTo = userID
		resp = fmt.Sprintf("✅ Task '%d' has been assigned to user '%s'.", taskID, userID)
		return true
	})
	return resp
}

// Unassign clears the assignee of the given task.
func (m *Manager) Unassign(text string) string {
	taskID, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return "❌ Invalid format. Use: /unassign-task <task_id>"
	}

	var resp string
	m.update(func(st *jsonstore.State) bool {
		task, ok := st.Tasks[taskID]
		if !ok {
			resp = fmt.Sprintf("❌ Task ID '%d' not found.", taskID)
			return false
		}
		task.AssignedTo = ""
		resp = fmt.Sprintf("✅ Task '%d' has been unassigned.", taskID)
		return true
	})
	return resp
}

// SetPriority handles "<task_id> <priority_level>".
func (m *Manager) SetPriority(text string) string {
	text = strings.TrimSpace(text)
	if !strings.Contains(text, " ") {
		return "Invalid format. Please use: /task-priority <task_id> <priority_level>"
	}

	parts := strings.SplitN(text, " ", 2)
	taskID, err := strconv.Atoi(parts[0])
	if err != nil {
		return "❌ Invalid format. Please use: /task-priority <task_id> <priority_level>"
	}
	priority := parts[1]

	var resp string
	m.update(func(st *jsonstore.State) bool {
		task, ok := st.Tasks[taskID]
		if !ok {
			resp = "❌ Task ID not found."
			return false
		}
		task.Priority = priority
		resp = fmt.Sprintf("✅ Priority for task ID %d updated to %s.", taskID, priority)
		return true
	})
	return resp
}

// ClearAll empties the task collection. The id counter keeps counting from
// where it was, so ids from before the clear are never handed out again.
func (m *Manager) ClearAll() string {
	m.update(func(st *jsonstore.State) bool {
		st.Tasks = make(map[int]*models.Task)
		return true
	})
	return "✅ All tasks have been cleared."
}

// Overdue renders the tasks that are past due and not completed, for the
// proactive deadline nudge in the events hook. Returns "" when nothing is
// overdue.
func (m *Manager) Overdue() string {
	today := m.now()
	var resp string
	m.store.View(func(st *jsonstore.State) {
		ids := make([]int, 0)
		for id, task := range st.Tasks {
			if task.IsOverdue(today) {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			return
		}
		sort.Ints(ids)

		var b strings.Builder
		fmt.Fprintf(&b, "⚠️ Heads up, %d overdue task(s):\n", len(ids))
		for _, id := range ids {
			task := st.Tasks[id]
			fmt.Fprintf(&b, "• %d: %s (due %s)\n", id, task.Description, task.DueDate)
		}
		resp = b.String()
	})
	return resp
}

func (m *Manager) update(fn func(st *jsonstore.State) bool) {
	if err := m.store.Update(fn); err != nil {
		m.logger.Error("task state flush failed", slog.String("error", err.Error()))
	}
}
