package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/indecor/dreamspace-backend/internal/logger"
	"github.com/indecor/dreamspace-backend/internal/repos"
	"github.com/indecor/dreamspace-backend/internal/types"
)

const JobTypeVariantGenerate = "variant_generate"

// JobService schedules background work and exposes job handles for polling.
// Dispatch is fire-and-forget: Enqueue returns as soon as the row is queued,
// and the outcome is observable only through GetByIDForOwner or SSE.
type JobService interface {
	EnqueueVariantGeneration(ctx context.Context, ownerID, projectID uuid.UUID, prompt string) (*types.JobRun, error)
	GetByIDForOwner(ctx context.Context, ownerID, jobID uuid.UUID) (*types.JobRun, error)
}

type jobService struct {
	db          *gorm.DB
	log         *logger.Logger
	projectRepo repos.ProjectRepo
	jobRepo     repos.JobRunRepo
	notifier    JobNotifier
}

func NewJobService(
	db *gorm.DB,
	log *logger.Logger,
	projectRepo repos.ProjectRepo,
	jobRepo repos.JobRunRepo,
	notifier JobNotifier,
) JobService {
	return &jobService{
		db:          db,
		log:         log.With("service", "JobService"),
		projectRepo: projectRepo,
		jobRepo:     jobRepo,
		notifier:    notifier,
	}
}

// EnqueueVariantGeneration verifies the project is in the caller's scope,
// then queues a single-attempt generation job. Which original image gets
// used is resolved by the worker at run time, not here.
func (js *jobService) EnqueueVariantGeneration(ctx context.Context, ownerID, projectID uuid.UUID, prompt string) (*types.JobRun, error) {
	project, err := js.projectRepo.GetByIDForOwner(ctx, nil, ownerID, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if project == nil {
		return nil, ErrNotFound
	}
	payload, pErr := json.Marshal(map[string]interface{}{
		"project_id": projectID,
		"prompt":     prompt,
	})
	if pErr != nil {
		return nil, fmt.Errorf("failed to encode job payload: %w", pErr)
	}
	entityID := projectID
	job := &types.JobRun{
		ID:          uuid.New(),
		OwnerUserID: ownerID,
		JobType:     JobTypeVariantGenerate,
		EntityType:  "project",
		EntityID:    &entityID,
		Status:      types.JobStatusQueued,
		Stage:       "queued",
		Payload:     datatypes.JSON(payload),
	}
	if _, cErr := js.jobRepo.Create(ctx, nil, []*types.JobRun{job}); cErr != nil {
		return nil, fmt.Errorf("failed to enqueue job: %w", cErr)
	}
	js.log.Info("Enqueued job", "job_id", job.ID, "job_type", job.JobType, "project_id", projectID)
	if js.notifier != nil {
		js.notifier.JobCreated(ownerID, job)
	}
	return job, nil
}

func (js *jobService) GetByIDForOwner(ctx context.Context, ownerID, jobID uuid.UUID) (*types.JobRun, error) {
	job, err := js.jobRepo.GetByIDForOwner(ctx, nil, ownerID, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to load job: %w", err)
	}
	if job == nil {
		return nil, ErrNotFound
	}
	return job, nil
}
