package variant_generate

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	jobrt "github.com/indecor/dreamspace-backend/internal/jobs/runtime"
	"github.com/indecor/dreamspace-backend/internal/types"
)

// Run resolves the project's most recent original image, derives a rendition
// from it, and records the result as a DesignVariant. One attempt only: any
// failure is terminal for this job.
func (p *Pipeline) Run(jc *jobrt.Context) error {
	if jc == nil || jc.Job == nil {
		return nil
	}
	projectID, ok := jc.PayloadUUID("project_id")
	if !ok || projectID == uuid.Nil {
		jc.Fail("validate", fmt.Errorf("missing project_id"))
		return nil
	}
	prompt := jc.PayloadString("prompt")

	jc.Progress("resolve", 10, "Resolving base image")

	project, err := p.projects.GetByID(jc.Ctx, nil, projectID)
	if err != nil {
		jc.Fail("resolve", fmt.Errorf("failed to load project: %w", err))
		return nil
	}
	if project == nil {
		jc.Fail("resolve", fmt.Errorf("Project %s not found", projectID))
		return nil
	}

	baseImage, err := p.images.GetLatestByType(jc.Ctx, nil, project.ID, types.ImageTypeOriginal)
	if err != nil {
		jc.Fail("resolve", fmt.Errorf("failed to load base image: %w", err))
		return nil
	}
	if baseImage == nil {
		jc.Fail("resolve", fmt.Errorf("No original image found in project"))
		return nil
	}

	jc.Progress("derive", 50, "Deriving variant image")

	derivedURL, err := p.derive(BaseImage{
		ID:           baseImage.ID.String(),
		ImageURL:     baseImage.ImageURL,
		CloudinaryID: imageCloudinaryID(baseImage),
	}, prompt)
	if err != nil {
		jc.Fail("derive", err)
		return nil
	}

	metadata, err := json.Marshal(map[string]interface{}{
		"prompt":          prompt,
		"base_image_id":   baseImage.ID,
		"generation_type": "stub",
		"note":            "This is a stub implementation. Replace with real AI model.",
	})
	if err != nil {
		jc.Fail("record", fmt.Errorf("failed to encode variant metadata: %w", err))
		return nil
	}

	jc.Progress("record", 80, "Recording variant")

	variant := &types.DesignVariant{
		ID:        uuid.New(),
		ProjectID: project.ID,
		ImageURL:  derivedURL,
		Metadata:  datatypes.JSON(metadata),
	}
	if _, cErr := p.variants.Create(jc.Ctx, nil, []*types.DesignVariant{variant}); cErr != nil {
		jc.Fail("record", fmt.Errorf("failed to create variant: %w", cErr))
		return nil
	}

	p.log.Info("Generated variant", "project_id", project.ID, "variant_id", variant.ID)
	jc.Succeed("done", map[string]interface{}{
		"status":     "success",
		"variant_id": variant.ID,
		"image_url":  variant.ImageURL,
		"message":    "Variant generated (stub implementation)",
	})
	return nil
}

func imageCloudinaryID(img *types.ProjectImage) string {
	if len(img.Metadata) == 0 {
		return ""
	}
	var m map[string]any
	if err := json.Unmarshal(img.Metadata, &m); err != nil {
		return ""
	}
	s, _ := m["cloudinary_id"].(string)
	return s
}
