package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/indecor/dreamspace-backend/internal/logger"
	"github.com/indecor/dreamspace-backend/internal/types"
)

type RunnablePolicy struct {
	StaleRunning time.Duration
}

type JobRunRepo interface {
	Create(ctx context.Context, tx *gorm.DB, jobs []*types.JobRun) ([]*types.JobRun, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.JobRun, error)
	GetByIDForOwner(ctx context.Context, tx *gorm.DB, ownerID, id uuid.UUID) (*types.JobRun, error)
	ClaimNextRunnable(ctx context.Context, tx *gorm.DB, policy RunnablePolicy) (*types.JobRun, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	Heartbeat(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type jobRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJobRunRepo(db *gorm.DB, baseLog *logger.Logger) JobRunRepo {
	return &jobRunRepo{db: db, log: baseLog.With("repo", "JobRunRepo")}
}

func (r *jobRunRepo) Create(ctx context.Context, tx *gorm.DB, jobs []*types.JobRun) ([]*types.JobRun, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(jobs) == 0 {
		return []*types.JobRun{}, nil
	}
	for _, j := range jobs {
		if j.ID == uuid.Nil {
			j.ID = uuid.New()
		}
	}
	if err := transaction.WithContext(ctx).Create(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *jobRunRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.JobRun, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var job types.JobRun
	err := transaction.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&job).Error
	if err != nil {
		return nil, err
	}
	if job.ID == uuid.Nil {
		return nil, nil
	}
	return &job, nil
}

func (r *jobRunRepo) GetByIDForOwner(ctx context.Context, tx *gorm.DB, ownerID, id uuid.UUID) (*types.JobRun, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var job types.JobRun
	err := transaction.WithContext(ctx).
		Where("id = ? AND owner_user_id = ?", id, ownerID).
		Limit(1).
		Find(&job).Error
	if err != nil {
		return nil, err
	}
	if job.ID == uuid.Nil {
		return nil, nil
	}
	return &job, nil
}

// ClaimNextRunnable picks the oldest queued job (or a running one whose
// worker stopped heartbeating) and flips it to running. The claim is an
// optimistic compare-and-set on the previous status so concurrent workers
// cannot double-claim; the loser just polls again. Jobs are single-attempt:
// failed rows are never reconsidered.
func (r *jobRunRepo) ClaimNextRunnable(ctx context.Context, tx *gorm.DB, policy RunnablePolicy) (*types.JobRun, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now()
	staleCutoff := now.Add(-policy.StaleRunning)

	var job types.JobRun
	err := transaction.WithContext(ctx).
		Where(`
			status = ?
			OR (
				status = ?
				AND heartbeat_at IS NOT NULL
				AND heartbeat_at < ?
			)
		`, types.JobStatusQueued, types.JobStatusRunning, staleCutoff).
		Order("created_at ASC").
		First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	res := transaction.WithContext(ctx).
		Model(&types.JobRun{}).
		Where("id = ? AND status = ?", job.ID, job.Status).
		Updates(map[string]interface{}{
			"status":       types.JobStatusRunning,
			"attempts":     gorm.Expr("attempts + 1"),
			"locked_at":    now,
			"heartbeat_at": now,
			"updated_at":   now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Another worker won the race.
		return nil, nil
	}

	job.Status = types.JobStatusRunning
	job.Attempts++
	job.LockedAt = &now
	job.HeartbeatAt = &now
	job.UpdatedAt = now
	return &job, nil
}

func (r *jobRunRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.JobRun{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *jobRunRepo) Heartbeat(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now()
	return transaction.WithContext(ctx).
		Model(&types.JobRun{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"heartbeat_at": now, "updated_at": now}).Error
}
