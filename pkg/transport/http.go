package transport

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/BrunoKrugel/mcp-transmogrifier/pkg/types"
)

// SessionHeader carries the session ID issued on initialize
const SessionHeader = "Mcp-Session-Id"

// HTTPTransport implements MCP over HTTP (Streamable HTTP transport)
type HTTPTransport struct {
	handlers  map[string]MessageHandler
	sessions  map[string]*Session
	mountPath string
	mu        sync.RWMutex
}

// Session represents an HTTP session
type Session struct {
	ID      string
	Created int64
}

// NewHTTPTransport creates a new HTTP transport
func NewHTTPTransport(mountPath string) *HTTPTransport {
	return &HTTPTransport{
		mountPath: mountPath,
		handlers:  make(map[string]MessageHandler),
		sessions:  make(map[string]*Session),
	}
}

// RegisterHandler registers a message handler
func (h *HTTPTransport) RegisterHandler(method string, handler MessageHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[method] = handler
}

// MountPath returns the mount path
func (h *HTTPTransport) MountPath() string {
	return h.mountPath
}

// HandleConnection rejects GET: this transport never opens a server-sent
// event stream
func (h *HTTPTransport) HandleConnection(c echo.Context) error {
	return echo.NewHTTPError(http.StatusMethodNotAllowed, "GET method not supported for HTTP transport")
}

// HandleMessage processes incoming MCP messages via POST
func (h *HTTPTransport) HandleMessage(c echo.Context) error {
	sessionID := c.Request().Header.Get(SessionHeader)

	var msg types.MCPMessage
	if err := c.Bind(&msg); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid message format")
	}

	logger := log.WithFields(log.Fields{
		"method":  msg.Method,
		"session": sessionID,
	})
	logger.Debug("[HTTP] message received")

	if msg.Method == "initialize" {
		return h.handleInitialize(c, &msg)
	}

	if sessionID != "" && !h.isValidSession(sessionID) {
		logger.Warn("[HTTP] unknown session")
		return echo.NewHTTPError(http.StatusNotFound, "Session not found")
	}

	response := h.processMessage(&msg)

	if msg.IsNotification() {
		return c.NoContent(http.StatusAccepted)
	}

	return c.JSON(http.StatusOK, response)
}

// HandleDelete ends a session
func (h *HTTPTransport) HandleDelete(c echo.Context) error {
	sessionID := c.Request().Header.Get(SessionHeader)
	if sessionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing "+SessionHeader+" header")
	}

	h.mu.Lock()
	_, exists := h.sessions[sessionID]
	delete(h.sessions, sessionID)
	h.mu.Unlock()

	if !exists {
		return echo.NewHTTPError(http.StatusNotFound, "Session not found")
	}

	log.WithField("session", sessionID).Debug("[HTTP] session closed")
	return c.NoContent(http.StatusNoContent)
}

// SessionCount returns the number of open sessions
func (h *HTTPTransport) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// handleInitialize answers initialize and opens a session
func (h *HTTPTransport) handleInitialize(c echo.Context, msg *types.MCPMessage) error {
	response := h.processMessage(msg)

	sessionID := h.createSession()
	c.Response().Header().Set(SessionHeader, sessionID)
	log.WithField("session", sessionID).Debug("[HTTP] session created")

	return c.JSON(http.StatusOK, response)
}

// processMessage handles an incoming MCP message and returns a response
func (h *HTTPTransport) processMessage(msg *types.MCPMessage) *types.MCPMessage {
	h.mu.RLock()
	handler, exists := h.handlers[msg.Method]
	h.mu.RUnlock()

	response := &types.MCPMessage{
		Jsonrpc: "2.0",
		ID:      msg.ID,
	}

	if !exists {
		response.Error = &types.MCPError{
			Code:    types.CodeMethodNotFound,
			Message: fmt.Sprintf("Method '%s' not found", msg.Method),
		}
		return response
	}

	result, err := handler(msg.Params)
	if err != nil {
		var mcpErr *types.MCPError
		if errors.As(err, &mcpErr) {
			response.Error = mcpErr
		} else {
			response.Error = &types.MCPError{
				Code:    types.CodeInternalError,
				Message: err.Error(),
			}
		}
		log.WithError(err).WithField("method", msg.Method).Warn("[HTTP] handler failed")
	} else {
		response.Result = result
	}

	return response
}

// createSession creates a new session
func (h *HTTPTransport) createSession() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	sessionID := uuid.New().String()
	h.sessions[sessionID] = &Session{
		ID:      sessionID,
		Created: time.Now().Unix(),
	}

	return sessionID
}

// isValidSession checks if a session ID is valid
func (h *HTTPTransport) isValidSession(sessionID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.sessions[sessionID]
	return exists
}
