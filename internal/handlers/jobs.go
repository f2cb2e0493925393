package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/indecor/dreamspace-backend/internal/services"
)

type JobsHandler struct {
	jobService services.JobService
}

func NewJobsHandler(jobService services.JobService) *JobsHandler {
	return &JobsHandler{jobService: jobService}
}

// Get returns the job handle for polling. A job belonging to another user is
// indistinguishable from a missing one.
func (jh *JobsHandler) Get(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("missing user"))
		return
	}
	jobID, err := pathUUID(c, "id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	job, err := jh.jobService.GetByIDForOwner(c.Request.Context(), userID, jobID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, job)
}
