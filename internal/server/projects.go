package server

import (
	"github.com/gin-gonic/gin"
)

// handleCreateProject creates a structured project record.
func (s *Server) handleCreateProject(c *gin.Context) {
	respondText(c, s.projects.Create(c.PostForm("text"), c.PostForm("user_id")))
}

// handleProjectProgress updates a project's progress percentage.
func (s *Server) handleProjectProgress(c *gin.Context) {
	respondText(c, s.projects.UpdateProgress(c.PostForm("text")))
}

// handleCreateProjectSummary stores a legacy name-keyed summary string.
func (s *Server) handleCreateProjectSummary(c *gin.Context) {
	respondText(c, s.projects.CreateSummary(c.PostForm("text")))
}

// handleListProjectSummaries lists every entry in the project collection.
func (s *Server) handleListProjectSummaries(c *gin.Context) {
	respondText(c, s.projects.ListSummaries())
}

// handleProjectAnalytics renders the aggregate project and task numbers.
func (s *Server) handleProjectAnalytics(c *gin.Context) {
	respondText(c, s.projects.Analytics())
}
