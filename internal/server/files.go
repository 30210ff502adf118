package server

import (
	"github.com/gin-gonic/gin"
)

// handleAddFileLink stores a shared document link.
func (s *Server) handleAddFileLink(c *gin.Context) {
	respondText(c, s.files.Add(c.PostForm("text"), c.PostForm("user_id")))
}

// handleListFiles lists stored links, optionally filtered by category.
func (s *Server) handleListFiles(c *gin.Context) {
	respondText(c, s.files.List(c.PostForm("text")))
}
