package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/careercoach/internal/chat"
	"github.com/abhisek/careercoach/internal/profile"
)

type messageRequest struct {
	Message string `json:"message" binding:"required"`
}

func (s *Server) listChats(c *gin.Context) {
	list, err := s.chat.Chats().ListChats(c.Request.Context(), c.Param("user"))
	if err != nil {
		abort(c, http.StatusInternalServerError, "Failed to list chats.", err)
		return
	}
	if list == nil {
		list = []profile.ChatSummary{}
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) createChat(c *gin.Context) {
	cs, err := s.chat.Chats().CreateChat(c.Request.Context(), c.Param("user"))
	if err != nil {
		abort(c, http.StatusInternalServerError, "Failed to create chat.", err)
		return
	}
	c.JSON(http.StatusOK, profile.ChatSummary{ID: cs.ID, Title: cs.Title})
}

func (s *Server) chatHistory(c *gin.Context) {
	turns, err := s.chat.Chats().ChatHistory(c.Request.Context(), c.Param("user"), c.Param("chat"))
	if err != nil {
		abort(c, http.StatusInternalServerError, "Failed to load chat history.", err)
		return
	}
	if turns == nil {
		turns = []profile.ChatTurn{}
	}
	c.JSON(http.StatusOK, turns)
}

func (s *Server) deleteChat(c *gin.Context) {
	if err := s.chat.Chats().DeleteChat(c.Request.Context(), c.Param("user"), c.Param("chat")); err != nil {
		abort(c, http.StatusInternalServerError, "Failed to delete chat.", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) postMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "message is required", err)
		return
	}

	turn, err := s.chat.Send(c.Request.Context(), c.Param("user"), c.Param("chat"), req.Message)
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		abort(c, http.StatusBadRequest, "message is required", err)
	case errors.Is(err, profile.ErrNotFound):
		abort(c, http.StatusNotFound, "Chat not found.", err)
	case err != nil:
		abort(c, http.StatusBadGateway, "The coach could not answer right now.", err)
	default:
		c.JSON(http.StatusOK, turn)
	}
}
