package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"contactbook/internal/domain/dto"
	"contactbook/internal/repo"
)

func (h *Handler) listContacts(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	filter := repo.ContactFilter{
		Skip:      skip,
		Limit:     limit,
		FirstName: c.Query("first_name"),
		LastName:  c.Query("last_name"),
		Email:     c.Query("email"),
	}

	contacts, err := h.contacts.List(c.Request.Context(), currentUser(c), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewContactResponses(contacts))
}

func (h *Handler) upcomingBirthdays(c *gin.Context) {
	contacts, err := h.contacts.UpcomingBirthdays(c.Request.Context(), currentUser(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewContactResponses(contacts))
}

func (h *Handler) getContact(c *gin.Context) {
	id, ok := contactID(c)
	if !ok {
		return
	}

	contact, err := h.contacts.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewContactResponse(contact))
}

func (h *Handler) createContact(c *gin.Context) {
	var body dto.ContactDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contact, err := h.contacts.Create(c.Request.Context(), currentUser(c), body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewContactResponse(contact))
}

func (h *Handler) updateContact(c *gin.Context) {
	id, ok := contactID(c)
	if !ok {
		return
	}

	var body dto.ContactDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contact, err := h.contacts.Update(c.Request.Context(), currentUser(c), id, body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewContactResponse(contact))
}

func (h *Handler) deleteContact(c *gin.Context) {
	id, ok := contactID(c)
	if !ok {
		return
	}

	contact, err := h.contacts.Delete(c.Request.Context(), currentUser(c), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewContactResponse(contact))
}

func contactID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "contact id must be a positive integer"})
		return 0, false
	}
	return uint(id), true
}
