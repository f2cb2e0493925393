package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/indecor/dreamspace-backend/internal/services"
)

type ProjectHandler struct {
	projectService services.ProjectService
	imageService   services.ImageService
	jobService     services.JobService
}

func NewProjectHandler(
	projectService services.ProjectService,
	imageService services.ImageService,
	jobService services.JobService,
) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		imageService:   imageService,
		jobService:     jobService,
	}
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

func (ph *ProjectHandler) Create(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("missing user"))
		return
	}
	var req services.CreateProjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid request body"))
		return
	}
	project, err := ph.projectService.Create(c.Request.Context(), userID, req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

func (ph *ProjectHandler) List(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("missing user"))
		return
	}
	projects, err := ph.projectService.List(c.Request.Context(), userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, projects)
}

func (ph *ProjectHandler) Get(c *gin.Context) {
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
	project, err := ph.projectService.Get(c.Request.Context(), userID, projectID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, project)
}

func (ph *ProjectHandler) Update(c *gin.Context) {
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
	var req services.UpdateProjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid request body"))
		return
	}
	project, err := ph.projectService.Update(c.Request.Context(), userID, projectID, req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, project)
}

func (ph *ProjectHandler) Delete(c *gin.Context) {
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
	if err := ph.projectService.Delete(c.Request.Context(), userID, projectID); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Upload accepts either multipart form data with an "image" file, or a JSON
// body registering an already hosted URL.
func (ph *ProjectHandler) Upload(c *gin.Context) {
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

	fileHeader, fErr := c.FormFile("image")
	if fErr == nil {
		file, oErr := fileHeader.Open()
		if oErr != nil {
			RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("cannot read uploaded file"))
			return
		}
		defer file.Close()
		image, upErr := ph.imageService.Upload(c.Request.Context(), userID, projectID, services.UploadImageInput{
			Type:     c.PostForm("type"),
			Filename: fileHeader.Filename,
			File:     file,
		})
		if upErr != nil {
			RespondServiceError(c, upErr)
			return
		}
		c.JSON(http.StatusCreated, image)
		return
	}

	var req services.RecordImageInput
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("expected an image file or an image_url body"))
		return
	}
	image, rErr := ph.imageService.Record(c.Request.Context(), userID, projectID, req)
	if rErr != nil {
		RespondServiceError(c, rErr)
		return
	}
	c.JSON(http.StatusCreated, image)
}

func (ph *ProjectHandler) ListImages(c *gin.Context) {
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
	images, err := ph.imageService.List(c.Request.Context(), userID, projectID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, images)
}

// Generate schedules the asynchronous variant generation and returns the job
// handle immediately with 202. The caller polls the job or listens on SSE.
func (ph *ProjectHandler) Generate(c *gin.Context) {
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
	var req struct {
		Prompt string `json:"prompt"`
	}
	if c.Request.ContentLength > 0 {
		if bErr := c.ShouldBindJSON(&req); bErr != nil {
			RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid request body"))
			return
		}
	}
	job, err := ph.jobService.EnqueueVariantGeneration(c.Request.Context(), userID, projectID, req.Prompt)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"message":    "Variant generation started",
		"job_id":     job.ID,
		"project_id": projectID,
	})
}
