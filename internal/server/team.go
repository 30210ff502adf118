package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// handleAddTeamMember registers (or overwrites) a team member.
func (s *Server) handleAddTeamMember(c *gin.Context) {
	respondText(c, s.team.AddMember(c.PostForm("text")))
}

// handleTeamStats renders per-member completion counts.
func (s *Server) handleTeamStats(c *gin.Context) {
	respondText(c, s.team.Stats())
}

// handleGetContactInfo looks up a user in the platform directory. The usage
// hint for a missing user id goes back ephemerally; results are announced in
// channel.
func (s *Server) handleGetContactInfo(c *gin.Context) {
	text := c.PostForm("text")
	msg := s.team.ContactInfo(text)

	responseType := "in_channel"
	if strings.TrimSpace(text) == "" {
		responseType = "ephemeral"
	}
	c.JSON(http.StatusOK, gin.H{"response_type": responseType, "text": msg})
}
