package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"contactbook/internal/domain/dto"
)

func (h *Handler) register(c *gin.Context) {
	var body dto.RegisterDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewUserResponse(user))
}

func (h *Handler) login(c *gin.Context) {
	var body dto.LoginDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pair, err := h.auth.Login(c.Request.Context(), body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTokenResponse(pair))
}

func (h *Handler) refreshToken(c *gin.Context) {
	var body dto.RefreshDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTokenResponse(pair))
}

func (h *Handler) confirmEmail(c *gin.Context) {
	if err := h.auth.ConfirmEmail(c.Request.Context(), c.Param("token")); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email was confirmed"})
}

func (h *Handler) requestEmail(c *gin.Context) {
	var body dto.RequestEmailDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.auth.RequestVerification(c.Request.Context(), body); err != nil {
		h.handleError(c, err)
		return
	}
	// Same answer whether or not the address is registered.
	c.JSON(http.StatusOK, gin.H{
		"message": "If this user exists in our database, we have sent them a confirmation email",
	})
}

func (h *Handler) forgetPassword(c *gin.Context) {
	var body dto.RequestEmailDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.auth.ForgetPassword(c.Request.Context(), body); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "If this user exists in our database, we have sent them an email with temporary password",
	})
}
