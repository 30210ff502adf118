package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// handleScheduleMeeting registers the meeting announcement and its
// 15-minute-before reminder.
func (s *Server) handleScheduleMeeting(c *gin.Context) {
	respondText(c, s.schedule.ScheduleMeeting(c.PostForm("text"), c.PostForm("channel_id")))
}

// handleRecurringReminder registers a daily/weekly/monthly reminder.
func (s *Server) handleRecurringReminder(c *gin.Context) {
	respondText(c, s.schedule.RecurringReminder(c.PostForm("text"), c.PostForm("user_id"), c.PostForm("channel_id")))
}

// handleNotifyMe schedules a one-shot reminder at a clock time. Unlike the
// other commands this one reports malformed input with a 400.
func (s *Server) handleNotifyMe(c *gin.Context) {
	msg, ok := s.schedule.NotifyMe(c.PostForm("text"), c.PostForm("user_id"), c.PostForm("channel_id"))
	if !ok {
		c.String(http.StatusBadRequest, msg)
		return
	}
	c.String(http.StatusOK, msg)
}

// handleSetReminder stores the caller's 24-hour reminder. The confirmation
// goes out through the platform, so the HTTP response body stays empty.
func (s *Server) handleSetReminder(c *gin.Context) {
	s.schedule.SetReminder(c.PostForm("text"), c.PostForm("user_id"), c.PostForm("channel_id"))
	c.Status(http.StatusOK)
}

// handleSmartNotify sends immediately when the named condition holds.
func (s *Server) handleSmartNotify(c *gin.Context) {
	respondText(c, s.schedule.SmartNotify(c.PostForm("text"), c.PostForm("channel_id")))
}
