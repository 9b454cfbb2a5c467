package handler

import (
	"net/http"
	"strings"

	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/session"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (h *Handler) issue(c *gin.Context, status int, u models.User) {
	token, err := h.Issuer.Issue(u)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, authResponse{Token: token, User: u})
}

// Register creates a resident account and returns a session token.
func (h *Handler) Register(c *gin.Context) {
	var in session.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.Directory.Register(in)
	if err != nil {
		respondError(c, err)
		return
	}
	h.issue(c, http.StatusCreated, u)
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.Directory.Authenticate(req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	h.issue(c, http.StatusOK, u)
}

func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	// Browsers cannot set headers on a websocket upgrade.
	return c.Query("token")
}

// Authenticate resolves the bearer token to a user and attaches it to the
// request context as the actor.
func (h *Handler) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token missing"})
			return
		}
		claims, err := h.Issuer.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or expired"})
			return
		}
		user, err := h.Directory.Get(claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unknown user"})
			return
		}

		c.Request = c.Request.WithContext(session.WithActor(c.Request.Context(), user))
		c.Next()
	}
}

func currentActor(c *gin.Context) *models.User {
	return session.ActorFromContext(c.Request.Context())
}

func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, currentActor(c))
}

func (h *Handler) UpdateMe(c *gin.Context) {
	var p session.ProfileUpdate
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.Directory.UpdateProfile(currentActor(c).ID, p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
