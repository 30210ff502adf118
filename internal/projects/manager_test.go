package projects

import (
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"taskbot/internal/models"
	"taskbot/internal/storage/jsonstore"
)

func newTestManager(t *testing.T) (*Manager, *jsonstore.Store) {
	t.Helper()
	store, err := jsonstore.Open(filepath.Join(t.TempDir(), "bot_data.json"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	m := NewManager(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	m.SetClock(func() time.Time { return time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC) })
	return m, store
}

func TestCreate_AssignsSequentialIDs(t *testing.T) {
	m, store := newTestManager(t)

	resp := m.Create("Website | Relaunch of the site | 2024-03-01 | 10k", "u1")
	if !strings.Contains(resp, "ID: proj_1") {
		t.Fatalf("response = %q", resp)
	}
	m.Create("App | Mobile app", "u1")

	store.View(func(st *jsonstore.State) {
		entry, ok := st.ProjectSummaries["proj_2"]
		if !ok || !entry.IsRecord() {
			t.Fatalf("proj_2 missing or not a record: %+v", entry)
		}
		first := st.ProjectSummaries["proj_1"].Record
		if first.Deadline != "2024-03-01" || first.Budget != "10k" || first.Status != "Active" {
			t.Fatalf("record fields = %+v", first)
		}
	})
}

func TestCreate_RequiresPipe(t *testing.T) {
	m, _ := newTestManager(t)
	if resp := m.Create("just a name", "u1"); !strings.Contains(resp, "Format: /create-project") {
		t.Fatalf("response = %q", resp)
	}
}

func TestUpdateProgress_Bounds(t *testing.T) {
	m, store := newTestManager(t)
	m.Create("Website | site", "u1")

	cases := []struct {
		text string
		want string
	}{
		{"proj_1 101", "❌ Progress must be between 0 and 100"},
		{"proj_1 -1", "❌ Progress must be between 0 and 100"},
		{"proj_1 half", "❌ Invalid progress percentage"},
		{"proj_9 50", "❌ Project not found"},
	}
	for _, tc := range cases {
		if resp := m.UpdateProgress(tc.text); resp != tc.want {
			t.Fatalf("UpdateProgress(%q) = %q, want %q", tc.text, resp, tc.want)
		}
	}
	store.View(func(st *jsonstore.State) {
		if got := st.ProjectSummaries["proj_1"].Record.Progress; got != 0 {
			t.Fatalf("rejected updates mutated progress to %d", got)
		}
	})

	if resp := m.UpdateProgress("proj_1 75"); !strings.Contains(resp, "75%") {
		t.Fatalf("response = %q", resp)
	}
	store.View(func(st *jsonstore.State) {
		if got := st.ProjectSummaries["proj_1"].Record.Progress; got != 75 {
			t.Fatalf("progress = %d, want 75", got)
		}
	})
}

func TestCreateSummary_LegacyShape(t *testing.T) {
	m, store := newTestManager(t)

	if resp := m.CreateSummary("no comma here"); !strings.Contains(resp, "Invalid format") {
		t.Fatalf("response = %q", resp)
	}

	resp := m.CreateSummary("Website, shipping next quarter")
	if resp != "Project summary for 'Website' created." {
		t.Fatalf("response = %q", resp)
	}
	store.View(func(st *jsonstore.State) {
		entry := st.ProjectSummaries["Website"]
		if entry.IsRecord() || entry.Summary != "shipping next quarter" {
			t.Fatalf("legacy entry = %+v", entry)
		}
	})
}

func TestAnalytics_EmptyCollections(t *testing.T) {
	m, _ := newTestManager(t)
	if resp := m.Analytics(); resp != "📊 No projects available for analytics." {
		t.Fatalf("response = %q", resp)
	}
}

func TestAnalytics_ZeroTasksMeansZeroRate(t *testing.T) {
	m, _ := newTestManager(t)
	m.Create("Website | site", "u1")

	resp := m.Analytics()
	if !strings.Contains(resp, "Completion Rate: 0.0%") {
		t.Fatalf("rate must be 0.0 with no tasks, got %q", resp)
	}
}

func TestAnalytics_SkipsLegacyEntriesForStatusCounts(t *testing.T) {
	m, store := newTestManager(t)
	m.Create("Website | site", "u1")
	m.CreateSummary("Old, plain text summary")

	hours := 2.0
	completed := time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)
	if err := store.Update(func(st *jsonstore.State) bool {
		st.Tasks[st.NextTaskID()] = &models.Task{Description: "a", Priority: "High", Status: "Completed", CompletedAt: &completed}
		st.Tasks[st.NextTaskID()] = &models.Task{Description: "b", Priority: "High", Status: "Open", DueDate: "2024-01-05", EstimatedHours: &hours}
		st.Tasks[st.NextTaskID()] = &models.Task{Description: "c", Priority: "Low", Status: "Open"}
		return true
	}); err != nil {
		t.Fatalf("seed tasks: %v", err)
	}

	resp := m.Analytics()
	for _, want := range []string{
		"Total Projects: 2",
		"Active Projects: 1",
		"Completed Projects: 0",
		"Total Tasks: 3",
		"Completed: 1",
		"Overdue: 1",
		"Completion Rate: 33.3%",
		"High: 2 tasks",
		"Low: 1 tasks",
	} {
		if !strings.Contains(resp, want) {
			t.Fatalf("analytics missing %q:\n%s", want, resp)
		}
	}
}

func TestListSummaries_RendersBothShapes(t *testing.T) {
	m, _ := newTestManager(t)
	if resp := m.ListSummaries(); resp != "No project summaries available." {
		t.Fatalf("empty response = %q", resp)
	}

	m.Create("Website | the relaunch", "u1")
	m.CreateSummary("Old, plain text summary")

	resp := m.ListSummaries()
	if !strings.Contains(resp, "Project: Old, Summary: plain text summary") {
		t.Fatalf("legacy entry missing: %q", resp)
	}
	if !strings.Contains(resp, "Project: proj_1, Summary: the relaunch") {
		t.Fatalf("record entry missing: %q", resp)
	}
}
