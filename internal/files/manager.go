package files

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"taskbot/internal/models"
	"taskbot/internal/storage/jsonstore"
)

// Manager owns the shared file link collection.
type Manager struct {
	store  *jsonstore.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewManager builds a file link manager on top of the shared store.
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

// Add parses "name | url | category" and stores the link under the next
// file_<n> id. Category defaults to General.
func (m *Manager) Add(text, userID string) string {
	text = strings.TrimSpace(text)
	if !strings.Contains(text, "|") {
		return "Format: /add-file-link <name> | <url> | <category>"
	}

	parts := strings.Split(text, "|")
	if len(parts) < 2 {
		return "Format: /add-file-link <name> | <url> | <category>"
	}

	name := strings.TrimSpace(parts[0])
	url := strings.TrimSpace(parts[1])
	category := "General"
	if len(parts) > 2 && strings.TrimSpace(parts[2]) != "" {
		category = strings.TrimSpace(parts[2])
	}

	m.update(func(st *jsonstore.State) bool {
		st.FileLinks[st.NextFileID()] = &models.FileLink{
			Name:     name,
			URL:      url,
			Category: category,
			AddedAt:  m.now(),
			AddedBy:  userID,
		}
		return true
	})
	return fmt.Sprintf("📎 File link added: %s\n🔗 URL: %s\n📁 Category: %s", name, url, category)
}

// List renders stored links, optionally restricted to one category by
// case-insensitive exact match.
func (m *Manager) List(text string) string {
	categoryFilter := strings.TrimSpace(text)

	var resp string
	m.store.View(func(st *jsonstore.State) {
		if len(st.FileLinks) == 0 {
			resp = "📎 No file links available."
			return
		}

		ids := make([]string, 0, len(st.FileLinks))
		for id, link := range st.FileLinks {
			if categoryFilter != "" && !strings.EqualFold(link.Category, categoryFilter) {
				continue
			}
			ids = append(ids, id)
		}
		if len(ids) == 0 {
			resp = "📎 No files match the specified category."
			return
		}
		sort.Strings(ids)

		var b strings.Builder
		fmt.Fprintf(&b, "📎 Files (%d found):\n\n", len(ids))
		for _, id := range ids {
			link := st.FileLinks[id]
			fmt.Fprintf(&b, "📄 **%s**\n", link.Name)
			fmt.Fprintf(&b, "   🔗 %s\n", link.URL)
			fmt.Fprintf(&b, "   📁 Category: %s\n", link.Category)
			fmt.Fprintf(&b, "   📅 Added: %s\n\n", link.AddedAt.Format(models.DueDateLayout))
		}
		resp = b.String()
	})
	return resp
}

func (m *Manager) update(fn func(st *jsonstore.State) bool) {
	if err := m.store.Update(fn); err != nil {
		m.logger.Error("file state flush failed", slog.String("error", err.Error()))
	}
}
