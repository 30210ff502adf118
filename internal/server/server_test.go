package server

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskbot/internal/config"
	"taskbot/internal/files"
	"taskbot/internal/projects"
	"taskbot/internal/schedule"
	"taskbot/internal/slack"
	"taskbot/internal/storage/jsonstore"
	"taskbot/internal/tasks"
	"taskbot/internal/team"
	"taskbot/internal/weather"
)

type fakePlatform struct {
	mu        sync.Mutex
	messages  []string
	reactions []string
}

func (p *fakePlatform) SendMessage(channel, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, channel+"|"+text)
	return nil
}

func (p *fakePlatform) AddReaction(channel, ts, emoji string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reactions = append(p.reactions, channel+"|"+ts+"|"+emoji)
	return nil
}

func (p *fakePlatform) LookupUser(id string) (slack.UserInfo, error) {
	return slack.UserInfo{Name: "Ada Lovelace", Email: "ada@example.com"}, nil
}

type fakeWeather struct {
	report weather.Report
	err    error
}

func (w fakeWeather) Current(city string) (weather.Report, error) {
	return w.report, w.err
}

func newTestServer(t *testing.T, mutate func(cfg *config.Config)) (*Server, *fakePlatform) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Events.Channel = "C-watched"
	if mutate != nil {
		mutate(cfg)
	}

	store, err := jsonstore.Open(filepath.Join(t.TempDir(), "bot_data.json"), logger)
	require.NoError(t, err)

	platform := &fakePlatform{}
	sched := schedule.New(logger)

	srv := New(Deps{
		Config:   cfg,
		Store:    store,
		Tasks:    tasks.NewManager(store, logger),
		Projects: projects.NewManager(store, logger),
		Team:     team.NewManager(store, platform, logger),
		Files:    files.NewManager(store, logger),
		Schedule: schedule.NewManager(store, sched, platform, logger),
		Platform: platform,
		Weather:  fakeWeather{report: weather.Report{Temp: 18.5, Description: "light rain", Humidity: 70}},
		Logger:   logger,
	})
	return srv, platform
}

func postForm(srv *Server, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)
	return rec
}

func TestCreateAndListTasks(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := postForm(srv, "/create-task", url.Values{
		"text":    {"Design homepage | 2024-01-15 | High | Frontend | 8"},
		"user_id": {"u1"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Task created: Design homepage")
	assert.Contains(t, rec.Body.String(), "ID: 1")

	rec = postForm(srv, "/list-tasks", url.Values{"text": {"priority:high"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "(1 found)")
}

func TestValidationFailuresStillReturn200(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := postForm(srv, "/project-progress", url.Values{"text": {"proj_1 200"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "between 0 and 100")
}

func TestAssignTask_InChannelEnvelope(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	postForm(srv, "/create-task", url.Values{"text": {"a task"}, "user_id": {"u1"}})

	rec := postForm(srv, "/assign-task", url.Values{"text": {"1 user4"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"response_type":"in_channel"`)
	assert.Contains(t, rec.Body.String(), "assigned to user 'user4'")
}

func TestGetContactInfo_EphemeralUsageHint(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := postForm(srv, "/get-contact-info", url.Values{"text": {""}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"response_type":"ephemeral"`)

	rec = postForm(srv, "/get-contact-info", url.Values{"text": {"u1"}})
	assert.Contains(t, rec.Body.String(), `"response_type":"in_channel"`)
	assert.Contains(t, rec.Body.String(), "Ada Lovelace")
}

func TestNotifyMe_MalformedInputIs400(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := postForm(srv, "/notify-me", url.Values{
		"text":       {"no comma here"},
		"user_id":    {"u1"},
		"channel_id": {"C1"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postForm(srv, "/notify-me", url.Values{
		"text":       {"Meeting, 12:45"},
		"user_id":    {"u1"},
		"channel_id": {"C1"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Reminder set for 12:45")
}

func TestWeatherEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := postForm(srv, "/weather", url.Values{"text": {"Berlin"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Weather in Berlin")
	assert.Contains(t, rec.Body.String(), "18.5°C")
	assert.Contains(t, rec.Body.String(), "light rain")
}

func TestWeatherEndpoint_ProviderFailure(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	srv.weather = fakeWeather{err: fmt.Errorf("fetch weather: status 404")}

	rec := postForm(srv, "/weather", url.Values{"text": {"Atlantis"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error fetching weather data for Atlantis")
}

func TestBotIntro_PostsToChannel(t *testing.T) {
	srv, platform := newTestServer(t, nil)

	rec := postForm(srv, "/bot-intro", url.Values{"channel_id": {"C1"}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, platform.messages, 1)
	assert.Contains(t, platform.messages[0], "project and task managment bot")
}

func TestEvents_URLVerificationChallenge(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	body := `{"type":"url_verification","challenge":"abc123"}`
	req := httptest.NewRequest(http.MethodPost, "/slack/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"challenge":"abc123"`)
}

func TestEvents_PositiveMessageGetsReaction(t *testing.T) {
	srv, platform := newTestServer(t, nil)

	body := `{"type":"event_callback","event":{"type":"message","user":"u1","text":"this is awesome work","channel":"C-watched","ts":"123.456"}}`
	req := httptest.NewRequest(http.MethodPost, "/slack/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, platform.reactions, 1)
	assert.Equal(t, "C-watched|123.456|tada", platform.reactions[0])
}

func TestEvents_DeadlineMessagePostsOverdueTasks(t *testing.T) {
	srv, platform := newTestServer(t, nil)
	postForm(srv, "/create-task", url.Values{"text": {"ship it | 2020-01-01"}, "user_id": {"u1"}})

	body := `{"type":"event_callback","event":{"type":"message","user":"u1","text":"we are behind schedule","channel":"C-watched","ts":"123.456"}}`
	req := httptest.NewRequest(http.MethodPost, "/slack/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, platform.messages, 1)
	assert.Contains(t, platform.messages[0], "overdue task(s)")
	assert.Contains(t, platform.messages[0], "ship it")
}

func TestEvents_OtherChannelIgnored(t *testing.T) {
	srv, platform := newTestServer(t, nil)

	body := `{"type":"event_callback","event":{"type":"message","user":"u1","text":"awesome","channel":"C-other","ts":"1.2"}}`
	req := httptest.NewRequest(http.MethodPost, "/slack/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, platform.reactions)
	assert.Empty(t, platform.messages)
}

func TestSignatureMiddleware(t *testing.T) {
	srv, _ := newTestServer(t, func(cfg *config.Config) {
		cfg.Slack.SigningSecret = "secret"
	})

	form := url.Values{"text": {"a task"}, "user_id": {"u1"}}
	body := form.Encode()

	// Unsigned requests bounce.
	req := httptest.NewRequest(http.MethodPost, "/create-task", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Properly signed requests go through.
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	mac := hmac.New(sha256.New, []byte("secret"))
	fmt.Fprintf(mac, "v0:%s:%s", ts, body)
	sig := "v0=" + hex.EncodeToString(mac.Sum(nil))

	req = httptest.NewRequest(http.MethodPost, "/create-task", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Slack-Request-Timestamp", ts)
	req.Header.Set("X-Slack-Signature", sig)
	rec = httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Task created")
}
