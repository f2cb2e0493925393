package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/indecor/dreamspace-backend/internal/sse"
	"github.com/indecor/dreamspace-backend/internal/types"
)

type JobNotifier interface {
	JobCreated(userID uuid.UUID, job *types.JobRun)
	JobProgress(userID uuid.UUID, job *types.JobRun, stage string, progress int, message string)
	JobFailed(userID uuid.UUID, job *types.JobRun, stage string, errorMessage string)
	JobDone(userID uuid.UUID, job *types.JobRun)
}

// SSEBusPublisher is implemented by the Redis bus; when present, messages go
// through it so every instance's hub sees them.
type SSEBusPublisher interface {
	Publish(ctx context.Context, msg sse.SSEMessage) error
}

type jobNotifier struct {
	hub *sse.SSEHub
	bus SSEBusPublisher
}

func NewJobNotifier(hub *sse.SSEHub, bus SSEBusPublisher) JobNotifier {
	return &jobNotifier{hub: hub, bus: bus}
}

func (n *jobNotifier) emit(msg sse.SSEMessage) {
	if n.bus != nil {
		if err := n.bus.Publish(context.Background(), msg); err == nil {
			// The forwarder will broadcast to the local hub too.
			return
		}
	}
	n.hub.Broadcast(msg)
}

func (n *jobNotifier) JobCreated(userID uuid.UUID, job *types.JobRun) {
	n.emit(sse.SSEMessage{
		Channel: userID.String(),
		Event:   sse.SSEEventJobCreated,
		Data:    map[string]any{"job": job},
	})
}

func (n *jobNotifier) JobProgress(userID uuid.UUID, job *types.JobRun, stage string, progress int, message string) {
	n.emit(sse.SSEMessage{
		Channel: userID.String(),
		Event:   sse.SSEEventJobProgress,
		Data: map[string]any{
			"job_id":   job.ID,
			"job_type": job.JobType,
			"stage":    stage,
			"progress": progress,
			"message":  message,
		},
	})
}

func (n *jobNotifier) JobFailed(userID uuid.UUID, job *types.JobRun, stage string, errorMessage string) {
	n.emit(sse.SSEMessage{
		Channel: userID.String(),
		Event:   sse.SSEEventJobFailed,
		Data: map[string]any{
			"job_id":   job.ID,
			"job_type": job.JobType,
			"stage":    stage,
			"error":    errorMessage,
		},
	})
}

func (n *jobNotifier) JobDone(userID uuid.UUID, job *types.JobRun) {
	n.emit(sse.SSEMessage{
		Channel: userID.String(),
		Event:   sse.SSEEventJobDone,
		Data: map[string]any{
			"job_id":   job.ID,
			"job_type": job.JobType,
			"job":      job,
		},
	})
}
