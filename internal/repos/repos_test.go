package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/indecor/dreamspace-backend/internal/logger"
	"github.com/indecor/dreamspace-backend/internal/testdb"
	"github.com/indecor/dreamspace-backend/internal/types"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("production")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func seedUser(t *testing.T, db *gorm.DB, email string) *types.User {
	t.Helper()
	user := &types.User{ID: uuid.New(), Email: email, Password: "x"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedProject(t *testing.T, db *gorm.DB, ownerID uuid.UUID, name string) *types.Project {
	t.Helper()
	project := &types.Project{ID: uuid.New(), Name: name, OwnerID: ownerID}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	return project
}

func TestProjectRepoOwnerScoping(t *testing.T) {
	db := testdb.Open(t)
	log := testLogger(t)
	repo := NewProjectRepo(db, log)
	ctx := context.Background()

	alice := seedUser(t, db, "alice@example.com")
	bob := seedUser(t, db, "bob@example.com")
	project := seedProject(t, db, alice.ID, "Living Room")

	got, err := repo.GetByIDForOwner(ctx, nil, alice.ID, project.ID)
	if err != nil {
		t.Fatalf("GetByIDForOwner: %v", err)
	}
	if got == nil || got.ID != project.ID {
		t.Fatalf("expected project for owner, got %v", got)
	}

	// The same id outside the owner's scope behaves like a missing row.
	got, err = repo.GetByIDForOwner(ctx, nil, bob.ID, project.ID)
	if err != nil {
		t.Fatalf("GetByIDForOwner foreign: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for foreign owner, got %v", got)
	}

	ok, err := repo.UpdateFieldsForOwner(ctx, nil, bob.ID, project.ID, map[string]interface{}{"name": "Stolen"})
	if err != nil {
		t.Fatalf("UpdateFieldsForOwner: %v", err)
	}
	if ok {
		t.Fatalf("foreign owner update should not match any row")
	}

	ok, err = repo.DeleteForOwner(ctx, nil, bob.ID, project.ID)
	if err != nil {
		t.Fatalf("DeleteForOwner: %v", err)
	}
	if ok {
		t.Fatalf("foreign owner delete should not match any row")
	}
}

func TestProjectRepoListOrdering(t *testing.T) {
	db := testdb.Open(t)
	log := testLogger(t)
	repo := NewProjectRepo(db, log)
	ctx := context.Background()

	alice := seedUser(t, db, "alice@example.com")
	base := time.Now().Add(-time.Hour)
	older := &types.Project{ID: uuid.New(), Name: "Older", OwnerID: alice.ID, UpdatedAt: base}
	newer := &types.Project{ID: uuid.New(), Name: "Newer", OwnerID: alice.ID, UpdatedAt: base.Add(time.Minute)}
	for _, p := range []*types.Project{older, newer} {
		if err := db.Create(p).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	projects, err := repo.ListByOwner(ctx, nil, alice.ID)
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(projects))
	}
	if projects[0].Name != "Newer" {
		t.Fatalf("expected most recently updated first, got %q", projects[0].Name)
	}
}

func TestProjectImageRepoLatestOriginal(t *testing.T) {
	db := testdb.Open(t)
	log := testLogger(t)
	repo := NewProjectImageRepo(db, log)
	ctx := context.Background()

	alice := seedUser(t, db, "alice@example.com")
	project := seedProject(t, db, alice.ID, "Bedroom")

	base := time.Now().Add(-time.Hour)
	first := &types.ProjectImage{
		ID: uuid.New(), ProjectID: project.ID, Type: types.ImageTypeOriginal,
		ImageURL: "https://img.example/first.jpg", CreatedAt: base,
	}
	second := &types.ProjectImage{
		ID: uuid.New(), ProjectID: project.ID, Type: types.ImageTypeOriginal,
		ImageURL: "https://img.example/second.jpg", CreatedAt: base.Add(time.Minute),
	}
	inspo := &types.ProjectImage{
		ID: uuid.New(), ProjectID: project.ID, Type: types.ImageTypeInspo,
		ImageURL: "https://img.example/inspo.jpg", CreatedAt: base.Add(2 * time.Minute),
	}
	for _, img := range []*types.ProjectImage{first, second, inspo} {
		if err := db.Create(img).Error; err != nil {
			t.Fatalf("seed image: %v", err)
		}
	}

	got, err := repo.GetLatestByType(ctx, nil, project.ID, types.ImageTypeOriginal)
	if err != nil {
		t.Fatalf("GetLatestByType: %v", err)
	}
	if got == nil || got.ID != second.ID {
		t.Fatalf("expected the most recent original, got %v", got)
	}

	images, err := repo.ListByProject(ctx, nil, project.ID)
	if err != nil {
		t.Fatalf("ListByProject: %v", err)
	}
	if len(images) != 3 {
		t.Fatalf("expected 3 images, got %d", len(images))
	}
	if images[0].ID != inspo.ID {
		t.Fatalf("expected newest image first")
	}
}

func TestVariantAndItemOwnershipChain(t *testing.T) {
	db := testdb.Open(t)
	log := testLogger(t)
	variantRepo := NewDesignVariantRepo(db, log)
	itemRepo := NewItemInstanceRepo(db, log)
	ctx := context.Background()

	alice := seedUser(t, db, "alice@example.com")
	bob := seedUser(t, db, "bob@example.com")
	project := seedProject(t, db, alice.ID, "Kitchen")

	variant := &types.DesignVariant{ID: uuid.New(), ProjectID: project.ID, ImageURL: "https://img.example/v.jpg"}
	if _, err := variantRepo.Create(ctx, nil, []*types.DesignVariant{variant}); err != nil {
		t.Fatalf("create variant: %v", err)
	}
	item := &types.ItemInstance{ID: uuid.New(), VariantID: variant.ID, Name: "Sofa", Category: "seating"}
	if _, err := itemRepo.Create(ctx, nil, []*types.ItemInstance{item}); err != nil {
		t.Fatalf("create item: %v", err)
	}

	got, err := variantRepo.GetByIDForOwner(ctx, nil, alice.ID, variant.ID)
	if err != nil || got == nil {
		t.Fatalf("owner should see variant: %v %v", got, err)
	}
	got, err = variantRepo.GetByIDForOwner(ctx, nil, bob.ID, variant.ID)
	if err != nil {
		t.Fatalf("GetByIDForOwner foreign: %v", err)
	}
	if got != nil {
		t.Fatalf("foreign owner should not see variant")
	}

	gotItem, err := itemRepo.GetByIDForOwner(ctx, nil, alice.ID, item.ID)
	if err != nil || gotItem == nil {
		t.Fatalf("owner should see item through the chain: %v %v", gotItem, err)
	}
	gotItem, err = itemRepo.GetByIDForOwner(ctx, nil, bob.ID, item.ID)
	if err != nil {
		t.Fatalf("item GetByIDForOwner foreign: %v", err)
	}
	if gotItem != nil {
		t.Fatalf("foreign owner should not see item")
	}
}

func TestItemListOrderingIsOldestFirst(t *testing.T) {
	db := testdb.Open(t)
	log := testLogger(t)
	itemRepo := NewItemInstanceRepo(db, log)
	ctx := context.Background()

	alice := seedUser(t, db, "alice@example.com")
	project := seedProject(t, db, alice.ID, "Office")
	variant := &types.DesignVariant{ID: uuid.New(), ProjectID: project.ID, ImageURL: "https://img.example/v.jpg"}
	if err := db.Create(variant).Error; err != nil {
		t.Fatalf("seed variant: %v", err)
	}

	base := time.Now().Add(-time.Hour)
	older := &types.ItemInstance{ID: uuid.New(), VariantID: variant.ID, Name: "Desk", Category: "table", CreatedAt: base}
	newer := &types.ItemInstance{ID: uuid.New(), VariantID: variant.ID, Name: "Lamp", Category: "lighting", CreatedAt: base.Add(time.Minute)}
	for _, it := range []*types.ItemInstance{newer, older} {
		if err := db.Create(it).Error; err != nil {
			t.Fatalf("seed item: %v", err)
		}
	}

	items, err := itemRepo.ListByVariant(ctx, nil, variant.ID)
	if err != nil {
		t.Fatalf("ListByVariant: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Name != "Desk" {
		t.Fatalf("expected oldest item first, got %q", items[0].Name)
	}
}

func TestProjectDeleteCascades(t *testing.T) {
	db := testdb.Open(t)
	log := testLogger(t)
	projectRepo := NewProjectRepo(db, log)
	ctx := context.Background()

	alice := seedUser(t, db, "alice@example.com")
	project := seedProject(t, db, alice.ID, "Doomed")

	image := &types.ProjectImage{ID: uuid.New(), ProjectID: project.ID, Type: types.ImageTypeOriginal, ImageURL: "u"}
	variant := &types.DesignVariant{ID: uuid.New(), ProjectID: project.ID, ImageURL: "u"}
	version := &types.Version{ID: uuid.New(), ProjectID: project.ID, Snapshot: []byte(`{}`)}
	if err := db.Create(image).Error; err != nil {
		t.Fatalf("seed image: %v", err)
	}
	if err := db.Create(variant).Error; err != nil {
		t.Fatalf("seed variant: %v", err)
	}
	if err := db.Create(version).Error; err != nil {
		t.Fatalf("seed version: %v", err)
	}
	item := &types.ItemInstance{ID: uuid.New(), VariantID: variant.ID, Name: "Chair", Category: "seating"}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}

	ok, err := projectRepo.DeleteForOwner(ctx, nil, alice.ID, project.ID)
	if err != nil || !ok {
		t.Fatalf("DeleteForOwner: ok=%v err=%v", ok, err)
	}

	for name, model := range map[string]interface{}{
		"project_images":  &types.ProjectImage{},
		"design_variants": &types.DesignVariant{},
		"item_instances":  &types.ItemInstance{},
		"versions":        &types.Version{},
	} {
		var count int64
		if err := db.Model(model).Count(&count).Error; err != nil {
			t.Fatalf("count %s: %v", name, err)
		}
		if count != 0 {
			t.Fatalf("expected %s cascade-deleted, %d rows remain", name, count)
		}
	}
}

func TestJobRunClaim(t *testing.T) {
	db := testdb.Open(t)
	log := testLogger(t)
	repo := NewJobRunRepo(db, log)
	ctx := context.Background()
	policy := RunnablePolicy{StaleRunning: 30 * time.Minute}

	alice := seedUser(t, db, "alice@example.com")

	job := &types.JobRun{
		ID:          uuid.New(),
		OwnerUserID: alice.ID,
		JobType:     "variant_generate",
		Status:      types.JobStatusQueued,
		Stage:       "queued",
	}
	if _, err := repo.Create(ctx, nil, []*types.JobRun{job}); err != nil {
		t.Fatalf("create job: %v", err)
	}

	claimed, err := repo.ClaimNextRunnable(ctx, nil, policy)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimed == nil || claimed.ID != job.ID {
		t.Fatalf("expected to claim the queued job, got %v", claimed)
	}
	if claimed.Status != types.JobStatusRunning || claimed.Attempts != 1 {
		t.Fatalf("claim should flip to running with one attempt, got status=%s attempts=%d", claimed.Status, claimed.Attempts)
	}

	// The job is running with a fresh heartbeat; nothing is claimable.
	again, err := repo.ClaimNextRunnable(ctx, nil, policy)
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if again != nil {
		t.Fatalf("expected nothing claimable, got %v", again)
	}
}

func TestJobRunFailedIsNeverReclaimed(t *testing.T) {
	db := testdb.Open(t)
	log := testLogger(t)
	repo := NewJobRunRepo(db, log)
	ctx := context.Background()

	alice := seedUser(t, db, "alice@example.com")
	job := &types.JobRun{
		ID:          uuid.New(),
		OwnerUserID: alice.ID,
		JobType:     "variant_generate",
		Status:      types.JobStatusFailed,
		Stage:       "resolve",
		Error:       "No original image found in project",
	}
	if _, err := repo.Create(ctx, nil, []*types.JobRun{job}); err != nil {
		t.Fatalf("create job: %v", err)
	}

	claimed, err := repo.ClaimNextRunnable(ctx, nil, RunnablePolicy{StaleRunning: time.Nanosecond})
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimed != nil {
		t.Fatalf("failed jobs are single-attempt and must not be reclaimed, got %v", claimed)
	}
}

func TestJobRunOwnerScoping(t *testing.T) {
	db := testdb.Open(t)
	log := testLogger(t)
	repo := NewJobRunRepo(db, log)
	ctx := context.Background()

	alice := seedUser(t, db, "alice@example.com")
	bob := seedUser(t, db, "bob@example.com")
	job := &types.JobRun{
		ID:          uuid.New(),
		OwnerUserID: alice.ID,
		JobType:     "variant_generate",
		Status:      types.JobStatusQueued,
		Stage:       "queued",
	}
	if _, err := repo.Create(ctx, nil, []*types.JobRun{job}); err != nil {
		t.Fatalf("create job: %v", err)
	}

	got, err := repo.GetByIDForOwner(ctx, nil, bob.ID, job.ID)
	if err != nil {
		t.Fatalf("GetByIDForOwner: %v", err)
	}
	if got != nil {
		t.Fatalf("foreign owner should not see job")
	}
}
