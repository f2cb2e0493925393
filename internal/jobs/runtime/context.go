package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/indecor/dreamspace-backend/internal/repos"
	"github.com/indecor/dreamspace-backend/internal/services"
	"github.com/indecor/dreamspace-backend/internal/types"
)

// Context is the execution handle handed to a job handler for one claimed
// run. It wraps the job_run row, the DB handle, the notifier, and the only
// sanctioned ways to report progress or terminate: Progress, Fail, Succeed.
// Handlers never write job_run directly.
type Context struct {
	Ctx     context.Context
	DB      *gorm.DB
	Job     *types.JobRun
	Repo    repos.JobRunRepo
	Notify  services.JobNotifier
	payload map[string]any
}

// NewContext eagerly decodes the payload JSON so handlers can read inputs
// via Payload()/PayloadUUID(). A malformed payload is not fatal here;
// handlers validate required fields themselves.
func NewContext(ctx context.Context, db *gorm.DB, job *types.JobRun, repo repos.JobRunRepo, notify services.JobNotifier) *Context {
	c := &Context{
		Ctx:    ctx,
		DB:     db,
		Job:    job,
		Repo:   repo,
		Notify: notify,
	}
	_ = c.decodePayload()
	return c
}

func (c *Context) decodePayload() error {
	if c.Job == nil {
		return nil
	}
	if len(c.Job.Payload) == 0 {
		c.payload = map[string]any{}
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(c.Job.Payload, &m); err != nil {
		c.payload = map[string]any{}
		return err
	}
	c.payload = m
	return nil
}

// Payload never returns nil; missing or unparseable payloads yield an empty
// map.
func (c *Context) Payload() map[string]any {
	if c.payload == nil {
		c.payload = map[string]any{}
	}
	return c.payload
}

func (c *Context) PayloadUUID(key string) (uuid.UUID, bool) {
	v, ok := c.Payload()[key]
	if !ok || v == nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(fmt.Sprint(v))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func (c *Context) PayloadString(key string) string {
	v, ok := c.Payload()[key]
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Progress publishes a non-terminal status update: stage/progress/message
// persisted with a heartbeat, mirrored into the in-memory row, and emitted
// to subscribers.
func (c *Context) Progress(stage string, pct int, msg string) {
	if c == nil {
		return
	}
	ctx := c.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	now := time.Now()

	if c.Repo != nil && c.Job != nil && c.Job.ID != uuid.Nil {
		_ = c.Repo.UpdateFields(ctx, nil, c.Job.ID, map[string]interface{}{
			"stage":        stage,
			"progress":     pct,
			"message":      msg,
			"heartbeat_at": now,
			"updated_at":   now,
		})
	}

	if c.Job != nil {
		c.Job.Stage = stage
		c.Job.Progress = pct
		c.Job.Message = msg
		c.Job.HeartbeatAt = &now
		c.Job.UpdatedAt = now
	}

	if c.Notify != nil && c.Job != nil {
		c.Notify.JobProgress(c.Job.OwnerUserID, c.Job, stage, pct, msg)
	}
}

// Fail is terminal. Jobs are single-attempt, so a failed row is never
// reconsidered by the worker; locked_at is cleared only so operators can see
// the job is no longer held.
func (c *Context) Fail(stage string, err error) {
	if c == nil {
		return
	}
	ctx := c.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	now := time.Now()
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	result, _ := json.Marshal(map[string]string{"status": "error", "message": msg})

	if c.Repo != nil && c.Job != nil && c.Job.ID != uuid.Nil {
		_ = c.Repo.UpdateFields(ctx, nil, c.Job.ID, map[string]interface{}{
			"status":     types.JobStatusFailed,
			"stage":      stage,
			"message":    "",
			"error":      msg,
			"result":     datatypes.JSON(result),
			"locked_at":  nil,
			"updated_at": now,
		})
	}

	if c.Job != nil {
		c.Job.Status = types.JobStatusFailed
		c.Job.Stage = stage
		c.Job.Message = ""
		c.Job.Error = msg
		c.Job.Result = datatypes.JSON(result)
		c.Job.LockedAt = nil
		c.Job.UpdatedAt = now
	}

	if c.Notify != nil && c.Job != nil {
		c.Notify.JobFailed(c.Job.OwnerUserID, c.Job, stage, msg)
	}
}

// Succeed is terminal: status=succeeded, progress=100, result persisted.
func (c *Context) Succeed(finalStage string, result any) {
	if c == nil {
		return
	}
	ctx := c.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	now := time.Now()
	var res datatypes.JSON
	if result != nil {
		b, _ := json.Marshal(result)
		res = datatypes.JSON(b)
	}

	if c.Repo != nil && c.Job != nil && c.Job.ID != uuid.Nil {
		_ = c.Repo.UpdateFields(ctx, nil, c.Job.ID, map[string]interface{}{
			"status":       types.JobStatusSucceeded,
			"stage":        finalStage,
			"progress":     100,
			"message":      "",
			"error":        "",
			"result":       res,
			"locked_at":    nil,
			"heartbeat_at": now,
			"updated_at":   now,
		})
	}

	if c.Job != nil {
		c.Job.Status = types.JobStatusSucceeded
		c.Job.Stage = finalStage
		c.Job.Progress = 100
		c.Job.Message = ""
		c.Job.Error = ""
		c.Job.Result = res
		c.Job.LockedAt = nil
		c.Job.HeartbeatAt = &now
		c.Job.UpdatedAt = now
	}

	if c.Notify != nil && c.Job != nil {
		c.Notify.JobDone(c.Job.OwnerUserID, c.Job)
	}
}
