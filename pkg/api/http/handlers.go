package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aescanero/demo-backend/pkg/adapters/downstream"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// DBStatusResponse represents the /db/status body
type DBStatusResponse struct {
	Status      string `json:"status"`
	DatabaseURL string `json:"database_url,omitempty"`
	Error       string `json:"error,omitempty"`
}

// handleHealth reports liveness; it never consults the database service
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"service":     serviceName,
		"environment": s.environment,
	})
}

// handleReady reports readiness
func (s *Server) handleReady(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ready",
		"service": serviceName,
	})
}

// handleDBStatus probes the database service health endpoint.
// A reachable service answering anything but 200 is reported as unknown.
func (s *Server) handleDBStatus(c *gin.Context) {
	err := s.database.CheckHealth(c.Request.Context(), s.statusTimeout)

	switch {
	case err == nil:
		c.JSON(http.StatusOK, DBStatusResponse{
			Status:      "connected",
			DatabaseURL: s.database.BaseURL(),
		})
	case downstream.KindOf(err) == downstream.ErrorKindStatus:
		c.JSON(http.StatusInternalServerError, DBStatusResponse{Status: "unknown"})
	default:
		c.JSON(http.StatusServiceUnavailable, DBStatusResponse{
			Status: "disconnected",
			Error:  err.Error(),
		})
	}
}

// handleDBQuery forwards the request body to the database service and
// relays its JSON body and status code
func (s *Server) handleDBQuery(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		if isBodyTooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "request body too large"})
			return
		}
		raw = nil
	}

	result, err := s.database.Query(c.Request.Context(), queryPayload(raw), s.queryTimeout)
	if err != nil {
		s.logger.Error("database query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.Data(result.StatusCode, "application/json", result.Body)
}

// handleWrite is kept for clients of the legacy write endpoint
func (s *Server) handleWrite(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"msg": "Data written to Demo-Backend"})
}

var emptyObject = json.RawMessage(`{}`)

// queryPayload returns the compacted body, or {} when the body is absent,
// not JSON, or an empty/zero JSON value
func queryPayload(raw []byte) json.RawMessage {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || !json.Valid(raw) {
		return emptyObject
	}

	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil || isEmptyJSON(v) {
		return emptyObject
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return emptyObject
	}
	return buf.Bytes()
}

func isEmptyJSON(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case float64:
		return t == 0
	case string:
		return t == ""
	case []interface{}:
		return len(t) == 0
	case map[string]interface{}:
		return len(t) == 0
	}
	return false
}

func isBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
