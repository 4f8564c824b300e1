package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/aescanero/demo-backend/pkg/domain"
	"github.com/aescanero/demo-backend/pkg/ports"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const source = "demo-backend"

const msgNoData = "No data provided"

// UserListResponse represents the GET /api/users body
type UserListResponse struct {
	Users  []domain.User `json:"users"`
	Count  int           `json:"count"`
	Source string        `json:"source"`
}

// ItemListResponse represents the GET /api/items body
type ItemListResponse struct {
	Items  []domain.Item `json:"items"`
	Count  int           `json:"count"`
	Source string        `json:"source"`
}

// handleListUsers handles listing users
func (s *Server) handleListUsers(c *gin.Context) {
	users, err := s.catalog.ListUsers(c.Request.Context())
	if err != nil {
		s.internalError(c, "failed to list users", err)
		return
	}

	c.JSON(http.StatusOK, UserListResponse{
		Users:  users,
		Count:  len(users),
		Source: source,
	})
}

// handleGetUser handles getting a user by id
func (s *Server) handleGetUser(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "User not found"})
		return
	}

	user, err := s.catalog.GetUser(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "User not found"})
			return
		}
		s.internalError(c, "failed to get user", err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// handleCreateUser handles user creation
func (s *Server) handleCreateUser(c *gin.Context) {
	var req domain.CreateUserRequest
	if !s.bindObject(c, &req) {
		return
	}

	user, err := s.catalog.CreateUser(c.Request.Context(), req)
	if err != nil {
		s.internalError(c, "failed to create user", err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// handleListItems handles listing items
func (s *Server) handleListItems(c *gin.Context) {
	items, err := s.catalog.ListItems(c.Request.Context())
	if err != nil {
		s.internalError(c, "failed to list items", err)
		return
	}

	c.JSON(http.StatusOK, ItemListResponse{
		Items:  items,
		Count:  len(items),
		Source: source,
	})
}

// handleGetItem handles getting an item by id
func (s *Server) handleGetItem(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Item not found"})
		return
	}

	item, err := s.catalog.GetItem(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Item not found"})
			return
		}
		s.internalError(c, "failed to get item", err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// handleCreateItem handles item creation
func (s *Server) handleCreateItem(c *gin.Context) {
	var req domain.CreateItemRequest
	if !s.bindObject(c, &req) {
		return
	}

	item, err := s.catalog.CreateItem(c.Request.Context(), req)
	if err != nil {
		s.internalError(c, "failed to create item", err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// bindObject decodes a JSON object body into dst. Anything else (no body,
// invalid JSON, null, arrays, strings) gets a 400.
func (s *Server) bindObject(c *gin.Context, dst interface{}) bool {
	raw, err := c.GetRawData()
	if err != nil && isBodyTooLarge(err) {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "request body too large"})
		return false
	}

	raw = bytes.TrimSpace(raw)
	if err != nil || len(raw) == 0 || raw[0] != '{' || !json.Valid(raw) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgNoData})
		return false
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		s.logger.Debug("rejected request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgNoData})
		return false
	}

	return true
}

// parseID accepts unsigned decimal ids only
func parseID(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (s *Server) internalError(c *gin.Context, msg string, err error) {
	s.logger.Error(msg, zap.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
}
