package variant_generate

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/indecor/dreamspace-backend/internal/clients/cloudinary"
	jobrt "github.com/indecor/dreamspace-backend/internal/jobs/runtime"
	"github.com/indecor/dreamspace-backend/internal/logger"
	"github.com/indecor/dreamspace-backend/internal/repos"
	"github.com/indecor/dreamspace-backend/internal/services"
	"github.com/indecor/dreamspace-backend/internal/testdb"
	"github.com/indecor/dreamspace-backend/internal/types"
)

type fixture struct {
	db       *gorm.DB
	pipeline *Pipeline
	jobs     repos.JobRunRepo
	owner    *types.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.Open(t)
	log, err := logger.New("production")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	owner := &types.User{ID: uuid.New(), Email: "alice@example.com", Password: "x"}
	if err := db.Create(owner).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	projectRepo := repos.NewProjectRepo(db, log)
	imageRepo := repos.NewProjectImageRepo(db, log)
	variantRepo := repos.NewDesignVariantRepo(db, log)
	return &fixture{
		db:       db,
		pipeline: New(db, log, projectRepo, imageRepo, variantRepo, StubDerive("demo-cloud")),
		jobs:     repos.NewJobRunRepo(db, log),
		owner:    owner,
	}
}

func (f *fixture) seedProject(t *testing.T) *types.Project {
	t.Helper()
	project := &types.Project{ID: uuid.New(), Name: "Living Room", OwnerID: f.owner.ID}
	if err := f.db.Create(project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	return project
}

func (f *fixture) seedOriginal(t *testing.T, projectID uuid.UUID, url string, metadata map[string]any, createdAt time.Time) *types.ProjectImage {
	t.Helper()
	var meta datatypes.JSON
	if metadata != nil {
		b, err := json.Marshal(metadata)
		if err != nil {
			t.Fatalf("marshal metadata: %v", err)
		}
		meta = datatypes.JSON(b)
	}
	img := &types.ProjectImage{
		ID:        uuid.New(),
		ProjectID: projectID,
		Type:      types.ImageTypeOriginal,
		ImageURL:  url,
		Metadata:  meta,
		CreatedAt: createdAt,
	}
	if err := f.db.Create(img).Error; err != nil {
		t.Fatalf("seed image: %v", err)
	}
	return img
}

func (f *fixture) runJob(t *testing.T, projectID uuid.UUID, prompt string) *types.JobRun {
	t.Helper()
	payload, err := json.Marshal(map[string]any{"project_id": projectID, "prompt": prompt})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	job := &types.JobRun{
		ID:          uuid.New(),
		OwnerUserID: f.owner.ID,
		JobType:     services.JobTypeVariantGenerate,
		Status:      types.JobStatusRunning,
		Stage:       "queued",
		Payload:     datatypes.JSON(payload),
	}
	if _, err := f.jobs.Create(context.Background(), nil, []*types.JobRun{job}); err != nil {
		t.Fatalf("create job: %v", err)
	}
	jc := jobrt.NewContext(context.Background(), f.db, job, f.jobs, nil)
	if runErr := f.pipeline.Run(jc); runErr != nil {
		t.Fatalf("Run returned error: %v", runErr)
	}
	reloaded, err := f.jobs.GetByID(context.Background(), nil, job.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("reload job: %v %v", reloaded, err)
	}
	return reloaded
}

func (f *fixture) variants(t *testing.T, projectID uuid.UUID) []*types.DesignVariant {
	t.Helper()
	var results []*types.DesignVariant
	if err := f.db.Where("project_id = ?", projectID).Order("created_at ASC").Find(&results).Error; err != nil {
		t.Fatalf("load variants: %v", err)
	}
	return results
}

func TestRunMissingProject(t *testing.T) {
	f := newFixture(t)
	missing := uuid.New()

	job := f.runJob(t, missing, "modern")

	if job.Status != types.JobStatusFailed {
		t.Fatalf("expected failed, got %s", job.Status)
	}
	want := fmt.Sprintf("Project %s not found", missing)
	if job.Error != want {
		t.Fatalf("expected error %q, got %q", want, job.Error)
	}
}

func TestRunNoOriginalImage(t *testing.T) {
	f := newFixture(t)
	project := f.seedProject(t)

	// An inspo image alone does not qualify as a base.
	inspo := &types.ProjectImage{ID: uuid.New(), ProjectID: project.ID, Type: types.ImageTypeInspo, ImageURL: "https://img.example/inspo.jpg"}
	if err := f.db.Create(inspo).Error; err != nil {
		t.Fatalf("seed inspo: %v", err)
	}

	job := f.runJob(t, project.ID, "cozy")

	if job.Status != types.JobStatusFailed {
		t.Fatalf("expected failed, got %s", job.Status)
	}
	if job.Error != "No original image found in project" {
		t.Fatalf("unexpected error %q", job.Error)
	}
	if got := f.variants(t, project.ID); len(got) != 0 {
		t.Fatalf("failed generation must not create variants, got %d", len(got))
	}
}

func TestRunWithProviderAsset(t *testing.T) {
	f := newFixture(t)
	project := f.seedProject(t)
	base := f.seedOriginal(t, project.ID, "https://img.example/base.jpg", map[string]any{"cloudinary_id": "abc123"}, time.Now())

	job := f.runJob(t, project.ID, "scandinavian calm")

	if job.Status != types.JobStatusSucceeded {
		t.Fatalf("expected succeeded, got %s (error=%q)", job.Status, job.Error)
	}
	if job.Progress != 100 {
		t.Fatalf("expected progress 100, got %d", job.Progress)
	}

	variants := f.variants(t, project.ID)
	if len(variants) != 1 {
		t.Fatalf("expected 1 variant, got %d", len(variants))
	}
	variant := variants[0]

	wantURL := cloudinary.TransformedURL("demo-cloud", "abc123")
	if variant.ImageURL != wantURL {
		t.Fatalf("expected transformed url %q, got %q", wantURL, variant.ImageURL)
	}

	var meta map[string]any
	if err := json.Unmarshal(variant.Metadata, &meta); err != nil {
		t.Fatalf("unmarshal metadata: %v", err)
	}
	if meta["prompt"] != "scandinavian calm" {
		t.Fatalf("expected prompt in metadata, got %v", meta["prompt"])
	}
	if meta["generation_type"] != "stub" {
		t.Fatalf("expected generation_type stub, got %v", meta["generation_type"])
	}
	if meta["base_image_id"] != base.ID.String() {
		t.Fatalf("expected base_image_id %s, got %v", base.ID, meta["base_image_id"])
	}
	if meta["note"] == "" || meta["note"] == nil {
		t.Fatalf("expected note in metadata")
	}

	var result map[string]any
	if err := json.Unmarshal(job.Result, &result); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if result["status"] != "success" {
		t.Fatalf("expected success result, got %v", result["status"])
	}
	if result["variant_id"] != variant.ID.String() {
		t.Fatalf("expected variant_id in result, got %v", result["variant_id"])
	}
}

func TestRunWithoutProviderAssetFallsBackToBaseURL(t *testing.T) {
	f := newFixture(t)
	project := f.seedProject(t)
	f.seedOriginal(t, project.ID, "https://img.example/plain.jpg", nil, time.Now())

	job := f.runJob(t, project.ID, "")

	if job.Status != types.JobStatusSucceeded {
		t.Fatalf("expected succeeded, got %s (error=%q)", job.Status, job.Error)
	}
	variants := f.variants(t, project.ID)
	if len(variants) != 1 {
		t.Fatalf("expected 1 variant, got %d", len(variants))
	}
	if variants[0].ImageURL != "https://img.example/plain.jpg" {
		t.Fatalf("expected base url reused verbatim, got %q", variants[0].ImageURL)
	}
}

func TestRunUsesMostRecentOriginal(t *testing.T) {
	f := newFixture(t)
	project := f.seedProject(t)
	base := time.Now().Add(-time.Hour)
	f.seedOriginal(t, project.ID, "https://img.example/old.jpg", map[string]any{"cloudinary_id": "old"}, base)
	f.seedOriginal(t, project.ID, "https://img.example/new.jpg", map[string]any{"cloudinary_id": "new"}, base.Add(time.Minute))

	job := f.runJob(t, project.ID, "warm tones")

	if job.Status != types.JobStatusSucceeded {
		t.Fatalf("expected succeeded, got %s (error=%q)", job.Status, job.Error)
	}
	variants := f.variants(t, project.ID)
	if len(variants) != 1 {
		t.Fatalf("expected 1 variant, got %d", len(variants))
	}
	if variants[0].ImageURL != cloudinary.TransformedURL("demo-cloud", "new") {
		t.Fatalf("expected derivation from the latest original, got %q", variants[0].ImageURL)
	}
}

func TestRunTwiceCreatesTwoVariants(t *testing.T) {
	f := newFixture(t)
	project := f.seedProject(t)
	f.seedOriginal(t, project.ID, "https://img.example/base.jpg", map[string]any{"cloudinary_id": "abc"}, time.Now())

	first := f.runJob(t, project.ID, "first")
	second := f.runJob(t, project.ID, "second")

	if first.Status != types.JobStatusSucceeded || second.Status != types.JobStatusSucceeded {
		t.Fatalf("expected both jobs to succeed, got %s / %s", first.Status, second.Status)
	}
	if got := f.variants(t, project.ID); len(got) != 2 {
		t.Fatalf("expected 2 variants after two generations, got %d", len(got))
	}
}
