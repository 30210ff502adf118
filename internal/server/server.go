package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskbot/internal/config"
	"taskbot/internal/files"
	"taskbot/internal/projects"
	"taskbot/internal/schedule"
	"taskbot/internal/storage/jsonstore"
	"taskbot/internal/tasks"
	"taskbot/internal/team"
	"taskbot/internal/weather"
)

// Platform is the subset of messaging-platform capabilities the HTTP layer
// uses directly. The Slack client satisfies it.
type Platform interface {
	SendMessage(channel, text string) error
	AddReaction(channel, timestamp, emoji string) error
}

// WeatherProvider fetches current conditions for a city.
type WeatherProvider interface {
	Current(city string) (weather.Report, error)
}

// Deps bundles everything the server needs. All fields are required except
// Logger.
type Deps struct {
	Config   *config.Config
	Store    *jsonstore.Store
	Tasks    *tasks.Manager
	Projects *projects.Manager
	Team     *team.Manager
	Files    *files.Manager
	Schedule *schedule.Manager
	Platform Platform
	Weather  WeatherProvider
	Logger   *slog.Logger
}

// Server provides the slash-command endpoints and the events hook.
type Server struct {
	engine   *gin.Engine
	cfg      *config.Config
	store    *jsonstore.Store
	tasks    *tasks.Manager
	projects *projects.Manager
	team     *team.Manager
	files    *files.Manager
	schedule *schedule.Manager
	platform Platform
	weather  WeatherProvider
	logger   *slog.Logger
}

// New constructs the HTTP server with routes and middleware configured.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	srv := &Server{
		engine:   router,
		cfg:      deps.Config,
		store:    deps.Store,
		tasks:    deps.Tasks,
		projects: deps.Projects,
		team:     deps.Team,
		files:    deps.Files,
		schedule: deps.Schedule,
		platform: deps.Platform,
		weather:  deps.Weather,
		logger:   logger,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires the command endpoints and the events hook. Every
// slash route sits behind the request-signature check.
func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.handleHealth)

	signed := s.engine.Group("/", s.verifySignature())
	{
		signed.POST("/create-task", s.handleCreateTask)
		signed.POST("/update-task", s.handleUpdateTask)
		signed.POST("/task-status", s.handleTaskStatus)
		signed.POST("/list-tasks", s.handleListTasks)
		signed.POST("/assign-task", s.handleAssignTask)
		signed.POST("/unassign-task", s.handleUnassignTask)
		signed.POST("/task-priority", s.handleTaskPriority)
		signed.POST("/clear-tasks", s.handleClearTasks)

		signed.POST("/create-project", s.handleCreateProject)
		signed.POST("/project-progress", s.handleProjectProgress)
		signed.POST("/create-project-summary", s.handleCreateProjectSummary)
		signed.POST("/list-project-summaries", s.handleListProjectSummaries)
		signed.POST("/project-analytics", s.handleProjectAnalytics)

		signed.POST("/add-team-member", s.handleAddTeamMember)
		signed.POST("/team-stats", s.handleTeamStats)
		signed.POST("/get-contact-info", s.handleGetContactInfo)

		signed.POST("/schedule-meeting", s.handleScheduleMeeting)
		signed.POST("/recurring-reminder", s.handleRecurringReminder)
		signed.POST("/notify-me", s.handleNotifyMe)
		signed.POST("/set-reminder", s.handleSetReminder)
		signed.POST("/smart-notify", s.handleSmartNotify)

		signed.POST("/add-file-link", s.handleAddFileLink)
		signed.POST("/list-files", s.handleListFiles)

		signed.POST("/weather", s.handleWeather)
		signed.POST("/motivational-quote", s.handleMotivationalQuote)
		signed.POST("/bot-intro", s.handleBotIntro)

		signed.POST("/slack/events", s.handleEvents)
	}
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondText answers a slash command with plain text. Validation failures
// ride the same path: handled input is always a 200.
func respondText(c *gin.Context, text string) {
	c.String(http.StatusOK, text)
}

// respondInChannel wraps text in the platform's visible-to-channel envelope.
func respondInChannel(c *gin.Context, text string) {
	c.JSON(http.StatusOK, gin.H{"response_type": "in_channel", "text": text})
}
