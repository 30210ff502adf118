package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type eventPayload struct {
	Type      string `json:"type"`
	Challenge string `json:"challenge"`
	Event     struct {
		Type    string `json:"type"`
		Subtype string `json:"subtype"`
		User    string `json:"user"`
		Text    string `json:"text"`
		Channel string `json:"channel"`
		TS      string `json:"ts"`
	} `json:"event"`
}

// handleEvents receives the platform's event pushes: the one-time URL
// verification challenge, and message events in the watched channel. Message
// handling is best-effort; reaction or delivery failures only produce a log
// line.
func (s *Server) handleEvents(c *gin.Context) {
	var payload eventPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	if payload.Type == "url_verification" {
		c.JSON(http.StatusOK, gin.H{"challenge": payload.Challenge})
		return
	}

	// Always ack quickly; the platform retries on anything else.
	c.Status(http.StatusOK)

	ev := payload.Event
	if ev.Type != "message" || ev.Subtype != "" {
		return
	}
	if s.cfg.Events.Channel == "" || ev.Channel != s.cfg.Events.Channel {
		return
	}

	text := strings.ToLower(ev.Text)

	if containsAny(text, s.cfg.Events.PositiveKeywords) {
		if err := s.platform.AddReaction(ev.Channel, ev.TS, s.cfg.Events.ReactionEmoji); err != nil {
			s.logger.Warn("reaction failed", slog.String("channel", ev.Channel), slog.String("error", err.Error()))
		}
	}

	if containsAny(text, s.cfg.Events.DeadlineKeywords) {
		if overdue := s.tasks.Overdue(); overdue != "" {
			if err := s.platform.SendMessage(ev.Channel, overdue); err != nil {
				s.logger.Warn("overdue nudge failed", slog.String("channel", ev.Channel), slog.String("error", err.Error()))
			}
		}
	}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
