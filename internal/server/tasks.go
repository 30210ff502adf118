package server

import (
	"github.com/gin-gonic/gin"
)

// handleCreateTask creates a task from the pipe-delimited command payload.
func (s *Server) handleCreateTask(c *gin.Context) {
	respondText(c, s.tasks.Create(c.PostForm("text"), c.PostForm("user_id")))
}

// handleUpdateTask updates one field of an existing task.
func (s *Server) handleUpdateTask(c *gin.Context) {
	respondText(c, s.tasks.Update(c.PostForm("text")))
}

// handleTaskStatus is the status-field shortcut.
func (s *Server) handleTaskStatus(c *gin.Context) {
	respondText(c, s.tasks.SetStatus(c.PostForm("text")))
}

// handleListTasks lists tasks with optional filters.
func (s *Server) handleListTasks(c *gin.Context) {
	respondText(c, s.tasks.List(c.PostForm("text")))
}

// handleAssignTask assigns a task to a user, announced in channel.
func (s *Server) handleAssignTask(c *gin.Context) {
	respondInChannel(c, s.tasks.Assign(c.PostForm("text")))
}

// handleUnassignTask clears a task's assignee, announced in channel.
func (s *Server) handleUnassignTask(c *gin.Context) {
	respondInChannel(c, s.tasks.Unassign(c.PostForm("text")))
}

// handleTaskPriority changes a task's priority label.
func (s *Server) handleTaskPriority(c *gin.Context) {
	respondText(c, s.tasks.SetPriority(c.PostForm("text")))
}

// handleClearTasks empties the task collection.
func (s *Server) handleClearTasks(c *gin.Context) {
	respondText(c, s.tasks.ClearAll())
}
