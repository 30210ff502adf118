package jsonstore

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"taskbot/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpen_MissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot_data.json")

	s, err := Open(path, testLogger())
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	s.View(func(st *State) {
		if len(st.Tasks) != 0 {
			t.Fatalf("expected empty task collection, got %d entries", len(st.Tasks))
		}
		if st.TaskCounter != 1 {
			t.Fatalf("expected task counter 1, got %d", st.TaskCounter)
		}
	})

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("open must not create the file, stat err = %v", err)
	}
}

func TestStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot_data.json")

	s, err := Open(path, testLogger())
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	created := time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC)
	hours := 8.0
	if err := s.Update(func(st *State) bool {
		id := st.NextTaskID()
		st.Tasks[id] = &models.Task{
			Description:    "Design homepage",
			Priority:       "High",
			Category:       "Frontend",
			Status:         "Open",
			CreatedBy:      "u1",
			CreatedAt:      created,
			DueDate:        "2024-01-15",
			EstimatedHours: &hours,
			Comments:       []string{},
			Attachments:    []string{},
		}
		st.ProjectSummaries[st.NextProjectID()] = models.ProjectEntry{Record: &models.Project{
			Name:        "Website",
			Status:      "Active",
			CreatedAt:   created,
			Tasks:       []int{},
			TeamMembers: []string{},
			Milestones:  []string{},
		}}
		st.ProjectSummaries["Legacy"] = models.ProjectEntry{Summary: "old style summary"}
		st.Reminders["u1"] = &models.Reminder{ChannelID: "C1", Text: "ship it", Time: created.Add(24 * time.Hour)}
		st.TeamMembers["u1"] = &models.TeamMember{Role: "Developer", JoinedAt: created, CurrentTasks: []int{}}
		st.FileLinks[st.NextFileID()] = &models.FileLink{Name: "Runbook", URL: "https://example.com", Category: "General", AddedAt: created, AddedBy: "u1"}
		st.UserRoles["u1"] = "Developer"
		return true
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	var before State
	s.View(func(st *State) { before = *st })

	reloaded, err := Open(path, testLogger())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}

	var after State
	reloaded.View(func(st *State) { after = *st })

	if !reflect.DeepEqual(before, after) {
		t.Fatalf("state mismatch after reload:\nbefore=%+v\nafter=%+v", before, after)
	}
}

func TestUpdate_NoChangeSkipsWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot_data.json")

	s, err := Open(path, testLogger())
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if err := s.Update(func(st *State) bool { return false }); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("no-op update must not write the file, stat err = %v", err)
	}
}

func TestNextTaskID_Monotonic(t *testing.T) {
	st := &State{}
	st.normalize()

	if got := st.NextTaskID(); got != 1 {
		t.Fatalf("first id = %d, want 1", got)
	}
	if got := st.NextTaskID(); got != 2 {
		t.Fatalf("second id = %d, want 2", got)
	}

	// Clearing the collection must not reset the counter.
	st.Tasks = map[int]*models.Task{}
	if got := st.NextTaskID(); got != 3 {
		t.Fatalf("id after clear = %d, want 3", got)
	}
}

func TestNormalize_SeedsCountersFromLegacyDocument(t *testing.T) {
	st := &State{
		ProjectSummaries: map[string]models.ProjectEntry{
			"proj_1": {Record: &models.Project{Name: "A"}},
			"proj_2": {Record: &models.Project{Name: "B"}},
		},
		FileLinks: map[string]*models.FileLink{
			"file_1": {Name: "Runbook"},
		},
	}
	st.normalize()

	if got := st.NextProjectID(); got != "proj_3" {
		t.Fatalf("next project id = %q, want proj_3", got)
	}
	if got := st.NextFileID(); got != "file_2" {
		t.Fatalf("next file id = %q, want file_2", got)
	}
}
