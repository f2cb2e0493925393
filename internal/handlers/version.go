package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/indecor/dreamspace-backend/internal/services"
)

type VersionHandler struct {
	versionService services.VersionService
}

func NewVersionHandler(versionService services.VersionService) *VersionHandler {
	return &VersionHandler{versionService: versionService}
}

func (vh *VersionHandler) ListByProject(c *gin.Context) {
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
	versions, err := vh.versionService.List(c.Request.Context(), userID, projectID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, versions)
}

func (vh *VersionHandler) CreateForProject(c *gin.Context) {
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
	var req services.RecordVersionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid request body"))
		return
	}
	version, err := vh.versionService.Record(c.Request.Context(), userID, projectID, req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, version)
}
