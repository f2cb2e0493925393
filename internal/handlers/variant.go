package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/indecor/dreamspace-backend/internal/services"
)

type VariantHandler struct {
	variantService services.VariantService
	itemService    services.ItemService
}

func NewVariantHandler(variantService services.VariantService, itemService services.ItemService) *VariantHandler {
	return &VariantHandler{variantService: variantService, itemService: itemService}
}

func (vh *VariantHandler) ListByProject(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("missing user"))
		return
	}
	projectID, err := pathUUID(c, "id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	variants, err := vh.variantService.ListByProject(c.Request.Context(), userID, projectID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, variants)
}

func (vh *VariantHandler) CreateForProject(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("missing user"))
		return
	}
	projectID, err := pathUUID(c, "id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	var req services.CreateVariantInput
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid request body"))
		return
	}
	variant, err := vh.variantService.Create(c.Request.Context(), userID, projectID, req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, variant)
}

func (vh *VariantHandler) Get(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("missing user"))
		return
	}
	variantID, err := pathUUID(c, "id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	variant, err := vh.variantService.Get(c.Request.Context(), userID, variantID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, variant)
}

func (vh *VariantHandler) Delete(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("missing user"))
		return
	}
	variantID, err := pathUUID(c, "id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := vh.variantService.Delete(c.Request.Context(), userID, variantID); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (vh *VariantHandler) ListItems(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("missing user"))
		return
	}
	variantID, err := pathUUID(c, "id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	items, err := vh.itemService.ListByVariant(c.Request.Context(), userID, variantID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, items)
}

func (vh *VariantHandler) CreateItem(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("missing user"))
		return
	}
	variantID, err := pathUUID(c, "id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	var req services.CreateItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid request body"))
		return
	}
	item, err := vh.itemService.Create(c.Request.Context(), userID, variantID, req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}
