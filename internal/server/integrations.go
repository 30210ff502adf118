package server

import (
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

var defaultQuotes = []string{
	"The only way to do great work is to love what you do. - Steve Jobs",
	"Success is not final, failure is not fatal: it is the courage to continue that counts. - Winston Churchill",
	"The future belongs to those who believe in the beauty of their dreams. - Eleanor Roosevelt",
	"Don't watch the clock; do what it does. Keep going. - Sam Levenson",
	"The only limit to our realization of tomorrow is our doubts of today. - Franklin D. Roosevelt",
}

// handleWeather fetches current conditions for the requested city. Provider
// failures collapse to a user-facing error line.
func (s *Server) handleWeather(c *gin.Context) {
	city := strings.TrimSpace(c.PostForm("text"))
	if city == "" {
		respondText(c, "Format: /weather <city>")
		return
	}

	report, err := s.weather.Current(city)
	if err != nil {
		s.logger.Warn("weather lookup failed", slog.String("city", city), slog.String("error", err.Error()))
		respondText(c, fmt.Sprintf("❌ Error fetching weather data for %s", city))
		return
	}

	respondText(c, fmt.Sprintf("🌤️ Weather in %s:\n🌡️ Temperature: %.1f°C\n☁️ Conditions: %s\n💧 Humidity: %d%%",
		city, report.Temp, report.Description, report.Humidity))
}

// handleMotivationalQuote picks a random quote from the configured list.
func (s *Server) handleMotivationalQuote(c *gin.Context) {
	quotes := s.cfg.Quotes
	if len(quotes) == 0 {
		quotes = defaultQuotes
	}
	quote := quotes[rand.Intn(len(quotes))]
	respondText(c, fmt.Sprintf("💪 **Motivational Quote of the Day:**\n\n> %s", quote))
}

// handleBotIntro posts the bot's introduction into the calling channel.
func (s *Server) handleBotIntro(c *gin.Context) {
	channel := c.PostForm("channel_id")
	intro := "Hi, I'm a project and task managment bot here to assist you."

	if err := s.platform.SendMessage(channel, intro); err != nil {
		s.logger.Warn("intro delivery failed", slog.String("channel", channel), slog.String("error", err.Error()))
	}
	c.Status(http.StatusOK)
}
