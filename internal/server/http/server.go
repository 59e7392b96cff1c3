// Package httpserver exposes the kosync HTTP API handlers.
//
// The wire shape is dictated by the KOReader kosync client: routes, header
// names, status codes and the {"message", "code"} error envelope all follow
// the reference sync server and must not change.
package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dsavelev/kosyncd/internal/errs"
	"github.com/dsavelev/kosyncd/internal/metrics"
	"github.com/dsavelev/kosyncd/internal/model"
	"github.com/dsavelev/kosyncd/internal/service"
)

// KOReader client error codes, from the reference server's error table.
const (
	codeInternal             = 2000
	codeUnauthorized         = 2001
	codeUserExists           = 2002
	codeInvalidRequest       = 2003
	codeDocumentMissing      = 2004
	codeRegistrationDisabled = 3001
)

// Server wires services into HTTP handlers.
type Server struct {
	auth service.AuthService
	sync service.SyncService
	log  *zap.Logger
}

// New constructs a Server with injected services.
func New(log *zap.Logger, auth service.AuthService, sync service.SyncService) *Server {
	return &Server{auth: auth, sync: sync, log: log}
}

// Router builds the gin engine with the kosync route table. m may be nil to
// run without metrics.
func (s *Server) Router(m *metrics.Metrics) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(RequestID(), Recover(s.log), RequestLogger(s.log))
	if m != nil {
		r.Use(m.Middleware())
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	r.GET("/healthz", s.handleHealth)

	r.POST("/users/create", s.handleRegister)
	r.GET("/users/auth", s.requireAuth(), s.handleAuthorize)
	r.PUT("/syncs/progress", s.requireAuth(), s.handlePush)
	r.GET("/syncs/progress/:document", s.requireAuth(), s.handlePull)
	return r
}

type errorResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func abortError(c *gin.Context, status int, message string, code int) {
	c.AbortWithStatusJSON(status, errorResponse{Message: message, Code: code})
}

func (s *Server) internalError(c *gin.Context, op string, err error) {
	s.log.Error(op, zap.Error(err), zap.String("request_id", RequestIDFrom(c)))
	abortError(c, http.StatusInternalServerError, "Unknown server error", codeInternal)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"state": "OK"})
}

// --- Auth ---

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		abortError(c, http.StatusForbidden, "Invalid request", codeInvalidRequest)
		return
	}

	err := s.auth.Register(c.Request.Context(), req.Username, req.Password)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, gin.H{"username": req.Username})
	case errors.Is(err, errs.ErrRegistrationDisabled):
		abortError(c, http.StatusForbidden, "User registration disabled", codeRegistrationDisabled)
	case errors.Is(err, errs.ErrAlreadyExists):
		abortError(c, http.StatusPaymentRequired, "Username is already registered", codeUserExists)
	case errors.Is(err, errs.ErrInvalidUsername), errors.Is(err, errs.ErrBadCredentials):
		abortError(c, http.StatusForbidden, "Invalid request", codeInvalidRequest)
	default:
		s.internalError(c, "register", err)
	}
}

func (s *Server) handleAuthorize(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"authorized": "OK"})
}

// --- Sync ---

type pushRequest struct {
	Document   string    `json:"document"`
	Progress   string    `json:"progress"`
	Percentage flexFloat `json:"percentage"`
	Device     string    `json:"device"`
	DeviceID   string    `json:"device_id"`
}

func (s *Server) handlePush(c *gin.Context) {
	var req pushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusForbidden, "Invalid request", codeInvalidRequest)
		return
	}
	if req.Document == "" {
		abortError(c, http.StatusForbidden, "Field 'document' not provided.", codeDocumentMissing)
		return
	}

	p, err := s.sync.Push(c.Request.Context(), currentUser(c), model.ProgressUpdate{
		Document:   req.Document,
		Progress:   req.Progress,
		Percentage: float64(req.Percentage),
		Device:     req.Device,
		DeviceID:   req.DeviceID,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, p)
	case errors.Is(err, errs.ErrInvalidDocumentID):
		abortError(c, http.StatusForbidden, "Invalid request", codeInvalidRequest)
	default:
		s.internalError(c, "push progress", err)
	}
}

func (s *Server) handlePull(c *gin.Context) {
	document := c.Param("document")

	p, err := s.sync.Pull(c.Request.Context(), currentUser(c), document)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, p)
	case errors.Is(err, errs.ErrNotFound):
		abortError(c, http.StatusNotFound, "Document not found", codeInternal)
	case errors.Is(err, errs.ErrInvalidDocumentID):
		abortError(c, http.StatusForbidden, "Invalid request", codeInvalidRequest)
	default:
		s.internalError(c, "pull progress", err)
	}
}
