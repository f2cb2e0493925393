package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/indecor/dreamspace-backend/internal/logger"
	"github.com/indecor/dreamspace-backend/internal/repos"
	"github.com/indecor/dreamspace-backend/internal/testdb"
	"github.com/indecor/dreamspace-backend/internal/types"
)

type env struct {
	db  *gorm.DB
	log *logger.Logger
	r   struct {
		user    repos.UserRepo
		token   repos.UserTokenRepo
		project repos.ProjectRepo
		image   repos.ProjectImageRepo
		variant repos.DesignVariantRepo
		item    repos.ItemInstanceRepo
		version repos.VersionRepo
		job     repos.JobRunRepo
	}
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testdb.Open(t)
	log, err := logger.New("production")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	e := &env{db: db, log: log}
	e.r.user = repos.NewUserRepo(db, log)
	e.r.token = repos.NewUserTokenRepo(db, log)
	e.r.project = repos.NewProjectRepo(db, log)
	e.r.image = repos.NewProjectImageRepo(db, log)
	e.r.variant = repos.NewDesignVariantRepo(db, log)
	e.r.item = repos.NewItemInstanceRepo(db, log)
	e.r.version = repos.NewVersionRepo(db, log)
	e.r.job = repos.NewJobRunRepo(db, log)
	return e
}

func (e *env) seedUser(t *testing.T, email string) *types.User {
	t.Helper()
	user := &types.User{ID: uuid.New(), Email: email, Password: "x"}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestAuthRegisterValidation(t *testing.T) {
	e := newEnv(t)
	auth := NewAuthService(e.db, e.log, e.r.user, e.r.token, "secret", time.Hour, 24*time.Hour)
	ctx := context.Background()

	cases := []struct {
		name  string
		input RegisterInput
		field string
	}{
		{"bad email", RegisterInput{Email: "nope", Password: "longenough", PasswordConfirm: "longenough"}, "email"},
		{"short password", RegisterInput{Email: "a@b.com", Password: "short", PasswordConfirm: "short"}, "password"},
		{"mismatched confirmation", RegisterInput{Email: "a@b.com", Password: "longenough", PasswordConfirm: "different1"}, "password2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := auth.RegisterUser(ctx, tc.input)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if vErr.Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, vErr.Field)
			}
		})
	}
}

func TestAuthRegisterLoginRoundTrip(t *testing.T) {
	e := newEnv(t)
	auth := NewAuthService(e.db, e.log, e.r.user, e.r.token, "secret", time.Hour, 24*time.Hour)
	ctx := context.Background()

	user, err := auth.RegisterUser(ctx, RegisterInput{
		Email:           "Alice@Example.com",
		Password:        "longenough",
		PasswordConfirm: "longenough",
		FirstName:       "Alice",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.Password == "longenough" {
		t.Fatalf("password stored in the clear")
	}

	// Duplicate registration is rejected.
	if _, err := auth.RegisterUser(ctx, RegisterInput{
		Email:           "alice@example.com",
		Password:        "longenough",
		PasswordConfirm: "longenough",
	}); err == nil {
		t.Fatalf("expected duplicate email rejection")
	}

	access, refresh, err := auth.LoginUser(ctx, "alice@example.com", "longenough")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatalf("expected token pair")
	}

	authedCtx, err := auth.SetContextFromToken(ctx, access)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	if authedCtx == ctx {
		t.Fatalf("expected enriched context")
	}

	if _, _, err := auth.LoginUser(ctx, "alice@example.com", "wrongpassword"); err == nil {
		t.Fatalf("expected wrong password rejection")
	}
}

func TestProjectServiceScoping(t *testing.T) {
	e := newEnv(t)
	svc := NewProjectService(e.db, e.log, e.r.project)
	ctx := context.Background()

	alice := e.seedUser(t, "alice@example.com")
	bob := e.seedUser(t, "bob@example.com")

	project, err := svc.Create(ctx, alice.ID, CreateProjectInput{Name: "  Loft  "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if project.Name != "Loft" {
		t.Fatalf("expected trimmed name, got %q", project.Name)
	}

	if _, err := svc.Create(ctx, alice.ID, CreateProjectInput{Name: "   "}); err == nil {
		t.Fatalf("expected empty name rejection")
	}

	// Foreign access reads as absence, never as forbidden.
	if _, err := svc.Get(ctx, bob.ID, project.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign owner, got %v", err)
	}
	if err := svc.Delete(ctx, bob.ID, project.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on foreign delete, got %v", err)
	}

	name := "Penthouse"
	updated, err := svc.Update(ctx, alice.ID, project.ID, UpdateProjectInput{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Penthouse" {
		t.Fatalf("expected rename, got %q", updated.Name)
	}

	if err := svc.Delete(ctx, alice.ID, project.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, alice.ID, project.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestVersionServiceAppendOnly(t *testing.T) {
	e := newEnv(t)
	svc := NewVersionService(e.db, e.log, e.r.project, e.r.version)
	ctx := context.Background()

	alice := e.seedUser(t, "alice@example.com")
	bob := e.seedUser(t, "bob@example.com")
	project := &types.Project{ID: uuid.New(), Name: "Studio", OwnerID: alice.ID}
	if err := e.db.Create(project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}

	if _, err := svc.Record(ctx, alice.ID, project.ID, RecordVersionInput{}); err == nil {
		t.Fatalf("expected empty snapshot rejection")
	}

	first, err := svc.Record(ctx, alice.ID, project.ID, RecordVersionInput{Snapshot: json.RawMessage(`{"step":1}`), Prompt: "initial"})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	// Force distinct timestamps so the ordering assertion is deterministic.
	if err := e.db.Model(&types.Version{}).Where("id = ?", first.ID).
		Update("created_at", time.Now().Add(-time.Minute)).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}
	second, err := svc.Record(ctx, alice.ID, project.ID, RecordVersionInput{Snapshot: json.RawMessage(`{"step":2}`)})
	if err != nil {
		t.Fatalf("record second: %v", err)
	}

	versions, err := svc.List(ctx, alice.ID, project.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("expected 2 versions, got %d", len(versions))
	}
	if versions[0].ID != second.ID {
		t.Fatalf("expected newest version first")
	}

	if _, err := svc.List(ctx, bob.ID, project.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign project, got %v", err)
	}
}

func TestJobServiceEnqueueAndScope(t *testing.T) {
	e := newEnv(t)
	svc := NewJobService(e.db, e.log, e.r.project, e.r.job, nil)
	ctx := context.Background()

	alice := e.seedUser(t, "alice@example.com")
	bob := e.seedUser(t, "bob@example.com")
	project := &types.Project{ID: uuid.New(), Name: "Den", OwnerID: alice.ID}
	if err := e.db.Create(project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}

	if _, err := svc.EnqueueVariantGeneration(ctx, bob.ID, project.ID, "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound enqueueing against a foreign project, got %v", err)
	}

	job, err := svc.EnqueueVariantGeneration(ctx, alice.ID, project.ID, "mid-century")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if job.Status != types.JobStatusQueued {
		t.Fatalf("expected queued, got %s", job.Status)
	}
	if job.JobType != JobTypeVariantGenerate {
		t.Fatalf("unexpected job type %q", job.JobType)
	}
	var payload map[string]any
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if payload["prompt"] != "mid-century" || payload["project_id"] != project.ID.String() {
		t.Fatalf("unexpected payload %v", payload)
	}

	got, err := svc.GetByIDForOwner(ctx, alice.ID, job.ID)
	if err != nil || got == nil {
		t.Fatalf("owner lookup: %v %v", got, err)
	}
	if _, err := svc.GetByIDForOwner(ctx, bob.ID, job.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign job, got %v", err)
	}
}

func TestItemServiceLifecycle(t *testing.T) {
	e := newEnv(t)
	svc := NewItemService(e.db, e.log, e.r.variant, e.r.item)
	ctx := context.Background()

	alice := e.seedUser(t, "alice@example.com")
	project := &types.Project{ID: uuid.New(), Name: "Hall", OwnerID: alice.ID}
	if err := e.db.Create(project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	variant := &types.DesignVariant{ID: uuid.New(), ProjectID: project.ID, ImageURL: "u"}
	if err := e.db.Create(variant).Error; err != nil {
		t.Fatalf("seed variant: %v", err)
	}

	item, err := svc.Create(ctx, alice.ID, variant.ID, CreateItemInput{
		Name:     "Armchair",
		Category: "seating",
		Bbox:     json.RawMessage(`{"x":1,"y":2,"width":3,"height":4}`),
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}

	if _, err := svc.Create(ctx, alice.ID, variant.ID, CreateItemInput{Name: "", Category: "seating"}); err == nil {
		t.Fatalf("expected empty name rejection")
	}

	newName := "Recliner"
	updated, err := svc.Update(ctx, alice.ID, item.ID, UpdateItemInput{Name: &newName})
	if err != nil {
		t.Fatalf("update item: %v", err)
	}
	if updated.Name != "Recliner" {
		t.Fatalf("expected updated name, got %q", updated.Name)
	}

	if err := svc.Delete(ctx, alice.ID, item.ID); err != nil {
		t.Fatalf("delete item: %v", err)
	}
	if _, err := svc.Get(ctx, alice.ID, item.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
