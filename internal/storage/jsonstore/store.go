package jsonstore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"taskbot/internal/models"
)

// State holds every persisted collection. The JSON layout (one document, these
// top-level keys) is shared with earlier deployments of the bot, so key names
// must not change.
type State struct {
	Tasks            map[int]*models.Task           `json:"tasks"`
	TaskCounter      int                            `json:"task_counter"`
	Reminders        map[string]*models.Reminder    `json:"reminders"`
	Notifications    map[string]json.RawMessage     `json:"notifications"`
	ProjectSummaries map[string]models.ProjectEntry `json:"project_summaries"`
	ProjectCounter   int                            `json:"project_counter"`
	TeamMembers      map[string]*models.TeamMember  `json:"team_members"`
	ProjectAnalytics map[string]json.RawMessage     `json:"project_analytics"`
	FileLinks        map[string]*models.FileLink    `json:"file_links"`
	FileCounter      int                            `json:"file_counter"`
	TeamStats        map[string]json.RawMessage     `json:"team_stats"`
	UserRoles        map[string]string              `json:"user_roles"`
}

// NextTaskID hands out the next integer task id. Ids start at 1 and are never
// reused; clearing the task collection does not reset the counter.
func (st *State) NextTaskID() int {
	id := st.TaskCounter
	st.TaskCounter++
	return id
}

// NextProjectID hands out the next proj_<n> identifier from the persisted
// counter rather than the collection size, so ids stay unique even if entries
// are ever removed.
func (st *State) NextProjectID() string {
	id := fmt.Sprintf("proj_%d", st.ProjectCounter)
	st.ProjectCounter++
	return id
}

// NextFileID hands out the next file_<n> identifier, same scheme as projects.
func (st *State) NextFileID() string {
	id := fmt.Sprintf("file_%d", st.FileCounter)
	st.FileCounter++
	return id
}

// Store owns the in-memory collections and the on-disk document behind a
// single mutex. Request handlers and scheduler callbacks share it, so every
// access goes through Update or View.
type Store struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
	state  *State
}

// Open loads the document at path into memory. An absent file is not an
// error: the store starts with empty collections and writes the document on
// the first mutation.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty data file path")
	}
	if logger == nil {
		logger = slog.Default()
	}

	if err := ensureDir(path); err != nil {
		return nil, err
	}

	s := &Store{path: path, logger: logger, state: &State{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read data file: %w", err)
		}
	} else if err := json.Unmarshal(data, s.state); err != nil {
		return nil, fmt.Errorf("parse data file: %w", err)
	}

	s.state.normalize()
	return s, nil
}

// Update runs fn with exclusive access to the state and, when fn reports a
// change, rewrites the whole document. Last save wins; there is no
// partial-write guarantee beyond that.
func (s *Store) Update(fn func(st *State) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !fn(s.state) {
		return nil
	}
	return s.save()
}

// View runs fn with shared access to the state without persisting anything.
func (s *Store) View(fn func(st *State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.state)
}

// Path returns the on-disk location of the document.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) save() error {
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write data file: %w", err)
	}
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// normalize initializes empty collections and counters after a load, covering
// both a fresh store and documents written before the counter keys existed.
func (st *State) normalize() {
	if st.Tasks == nil {
		st.Tasks = make(map[int]*models.Task)
	}
	if st.Reminders == nil {
		st.Reminders = make(map[string]*models.Reminder)
	}
	if st.Notifications == nil {
		st.Notifications = make(map[string]json.RawMessage)
	}
	if st.ProjectSummaries == nil {
		st.ProjectSummaries = make(map[string]models.ProjectEntry)
	}
	if st.TeamMembers == nil {
		st.TeamMembers = make(map[string]*models.TeamMember)
	}
	if st.ProjectAnalytics == nil {
		st.ProjectAnalytics = make(map[string]json.RawMessage)
	}
	if st.FileLinks == nil {
		st.FileLinks = make(map[string]*models.FileLink)
	}
	if st.TeamStats == nil {
		st.TeamStats = make(map[string]json.RawMessage)
	}
	if st.UserRoles == nil {
		st.UserRoles = make(map[string]string)
	}
	if st.TaskCounter < 1 {
		st.TaskCounter = 1
	}
	// Documents written before the dedicated counters existed derived ids
	// from collection size; seed the counters the same way once.
	if st.ProjectCounter < 1 {
		st.ProjectCounter = len(st.ProjectSummaries) + 1
	}
	if st.FileCounter < 1 {
		st.FileCounter = len(st.FileLinks) + 1
	}
}
