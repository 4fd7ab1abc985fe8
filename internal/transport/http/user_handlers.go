package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"contactbook/internal/domain/dto"
)

func (h *Handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewUserResponse(currentUser(c)))
}

func (h *Handler) updateAvatar(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
		return
	}
	defer file.Close()

	user, err := h.users.UpdateAvatar(
		c.Request.Context(),
		currentUser(c),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

func (h *Handler) updatePassword(c *gin.Context) {
	var body dto.PasswordUpdateDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.ChangePassword(c.Request.Context(), currentUser(c), body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}
