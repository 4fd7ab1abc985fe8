package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	customErrors "contactbook/internal/domain/errors"
	"contactbook/internal/domain/model"
	"contactbook/internal/service"
)

const ctxUserKey = "currentUser"

type Handler struct {
	auth     service.Auth
	users    service.Users
	contacts service.Contacts
	log      *zap.Logger
}

func NewHandler(auth service.Auth, users service.Users, contacts service.Contacts, log *zap.Logger) *Handler {
	return &Handler{auth: auth, users: users, contacts: contacts, log: log}
}

// authRequired resolves the bearer token and stores the identity on the
// request context for downstream handlers.
func (h *Handler) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		user, err := h.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			h.abortWithError(c, err)
			return
		}
		c.Set(ctxUserKey, user)
		c.Next()
	}
}

// adminRequired runs after authRequired and applies the role gate.
func (h *Handler) adminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if _, err := h.auth.AuthorizeAdmin(user); err != nil {
			h.abortWithError(c, err)
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) model.User {
	u, _ := c.Get(ctxUserKey)
	user, _ := u.(model.User)
	return user
}

func (h *Handler) handleError(c *gin.Context, err error) {
	c.JSON(statusAndMessage(err))
}

func (h *Handler) abortWithError(c *gin.Context, err error) {
	status, body := statusAndMessage(err)
	c.AbortWithStatusJSON(status, body)
}

func statusAndMessage(err error) (int, gin.H) {
	switch {
	case customErrors.IsInvalidArgument(err):
		return http.StatusBadRequest, gin.H{"error": err.Error()}
	case customErrors.IsNotConfirmed(err):
		return http.StatusUnauthorized, gin.H{"error": "email is not confirmed"}
	case customErrors.IsUnauthenticated(err):
		return http.StatusUnauthorized, gin.H{"error": "invalid credentials"}
	case customErrors.IsInvalidToken(err):
		return http.StatusUnprocessableEntity, gin.H{"error": "invalid token for email verification"}
	case customErrors.IsForbidden(err):
		return http.StatusForbidden, gin.H{"error": "not enough permissions"}
	case customErrors.IsAlreadyExists(err):
		return http.StatusConflict, gin.H{"error": err.Error()}
	case customErrors.IsNotFound(err):
		return http.StatusNotFound, gin.H{"error": err.Error()}
	default:
		return http.StatusInternalServerError, gin.H{"error": "internal server error"}
	}
}
