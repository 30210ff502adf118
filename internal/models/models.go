package models

import (
	"encoding/json"
	"strings"
	"time"
)

// DueDateLayout is the wire format for task due dates and project deadlines.
const DueDateLayout = "2006-01-02"

// Task is a single tracked work item. The task id is the key of the store's
// task collection and is never reused, even after a clear.
type Task struct {
	Description    string     `json:"description"`
	Priority       string     `json:"priority"`
	Category       string     `json:"category"`
	Status         string     `json:"status"`
	CreatedBy      string     `json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
	DueDate        string     `json:"due_date"`
	EstimatedHours *float64   `json:"estimated_hours"`
	AssignedTo     string     `json:"assigned_to"`
	CompletedAt    *time.Time `json:"completed_at"`
	ActualHours    *float64   `json:"actual_hours"`
	Comments       []string   `json:"comments"`
	Attachments    []string   `json:"attachments"`
}

// IsCompleted reports whether the free-form status equals "completed",
// case-insensitively.
func (t *Task) IsCompleted() bool {
	return strings.EqualFold(t.Status, "completed")
}

// IsOverdue reports whether the task has a parseable due date strictly before
// today and is not completed.
func (t *Task) IsOverdue(today time.Time) bool {
	if t.DueDate == "" || t.IsCompleted() {
		return false
	}
	due, err := time.Parse(DueDateLayout, t.DueDate)
	if err != nil {
		return false
	}
	y, m, d := today.Date()
	return due.Before(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// Project is the structured project record created by /create-project.
type Project struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Deadline    string    `json:"deadline"`
	Budget      string    `json:"budget"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	Status      string    `json:"status"`
	Progress    int       `json:"progress"`
	Tasks       []int     `json:"tasks"`
	TeamMembers []string  `json:"team_members"`
	Milestones  []string  `json:"milestones"`
}

// ProjectEntry is the tagged variant stored in the project_summaries
// collection. Exactly one of Record and Summary is populated: Record for
// structured projects keyed by proj_<n>, Summary for the legacy bare-string
// summaries keyed by project name. Readers must match on the shape instead of
// assuming every entry is a structured record.
type ProjectEntry struct {
	Record  *Project
	Summary string
}

// IsRecord reports whether the entry carries a structured project record.
func (e ProjectEntry) IsRecord() bool {
	return e.Record != nil
}

// MarshalJSON writes the record object or the bare summary string, matching
// the document layout both shapes have always shared.
func (e ProjectEntry) MarshalJSON() ([]byte, error) {
	if e.Record != nil {
		return json.Marshal(e.Record)
	}
	return json.Marshal(e.Summary)
}

// UnmarshalJSON distinguishes the two shapes by JSON type.
func (e *ProjectEntry) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		e.Record = nil
		e.Summary = s
		return nil
	}
	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	e.Record = &p
	e.Summary = ""
	return nil
}

// TeamMember tracks one registered teammate, keyed by platform user id.
type TeamMember struct {
	Role           string    `json:"role"`
	JoinedAt       time.Time `json:"joined_at"`
	TasksCompleted int       `json:"tasks_completed"`
	CurrentTasks   []int     `json:"current_tasks"`
}

// FileLink is a shared document reference, keyed by file_<n>.
type FileLink struct {
	Name     string    `json:"name"`
	URL      string    `json:"url"`
	Category string    `json:"category"`
	AddedAt  time.Time `json:"added_at"`
	AddedBy  string    `json:"added_by"`
}

// Reminder is the single outstanding 24-hour reminder for a user. A second
// set-reminder call for the same user overwrites the first.
type Reminder struct {
	ChannelID string    `json:"channel_id"`
	Text      string    `json:"text"`
	Time      time.Time `json:"time"`
}
