package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/indecor/dreamspace-backend/internal/services"
)

type ItemHandler struct {
	itemService services.ItemService
}

func NewItemHandler(itemService services.ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

func (ih *ItemHandler) Get(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("missing user"))
		return
	}
	itemID, err := pathUUID(c, "id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	item, err := ih.itemService.Get(c.Request.Context(), userID, itemID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, item)
}

func (ih *ItemHandler) Update(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("missing user"))
		return
	}
	itemID, err := pathUUID(c, "id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	var req services.UpdateItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid request body"))
		return
	}
	item, err := ih.itemService.Update(c.Request.Context(), userID, itemID, req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, item)
}

func (ih *ItemHandler) Delete(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("missing user"))
		return
	}
	itemID, err := pathUUID(c, "id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := ih.itemService.Delete(c.Request.Context(), userID, itemID); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
