package scenegen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/domain"
	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/providers/image"
	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/providers/prompt"
	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/providers/vision"
)

// Providers bundles the generation capabilities resolved for one run.
type Providers struct {
	Enricher  prompt.Enricher
	Generator image.Generator
	Analyzer  vision.Analyzer
}

// ProviderResolver resolves provider credentials and clients once per run.
// Returns domain.ErrMissingCredentials when no usable key is configured.
type ProviderResolver interface {
	Resolve(ctx context.Context) (*Providers, error)
}

// RunStore is the slice of the file store a generation run needs.
type RunStore interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) (string, error)
}

// Orchestrator owns the scene status state machine. It drives one claimed
// render job through compose, select, generate, verify, and the bounded
// auto-refinement loop, and guarantees a terminal scene/job state on every
// path.
type Orchestrator struct {
	scenes    domain.SceneRepository
	jobs      domain.RenderJobRepository
	materials domain.MaterialRepository
	logs      domain.VerificationLogRepository
	resolver  ProviderResolver
	store     RunStore
	archiver  *Archiver
	selector  *Selector
	logger    zerolog.Logger
}

func NewOrchestrator(
	scenes domain.SceneRepository,
	jobs domain.RenderJobRepository,
	materials domain.MaterialRepository,
	logs domain.VerificationLogRepository,
	resolver ProviderResolver,
	store RunStore,
	archiver *Archiver,
	selector *Selector,
	logger zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		scenes:    scenes,
		jobs:      jobs,
		materials: materials,
		logs:      logs,
		resolver:  resolver,
		store:     store,
		archiver:  archiver,
		selector:  selector,
		logger:    logger,
	}
}

// Run executes one claimed render job to a terminal state, including any
// automatic refinement attempts it spawns. Never returns an error to the
// worker: every failure is captured on the scene and job records.
func (o *Orchestrator) Run(ctx context.Context, job *domain.RenderJob) {
	scene, err := o.scenes.GetByID(ctx, job.SceneID)
	if err != nil {
		o.logger.Error().Err(err).Str("job_id", job.ID).Str("scene_id", job.SceneID).
			Msg("orchestrator: scene lookup failed")
		reason := "scene lookup failed: " + err.Error()
		if errors.Is(err, domain.ErrNotFound) {
			reason = "scene not found"
		}
		if err := o.jobs.Fail(ctx, job.ID, reason); err != nil {
			o.logger.Error().Err(err).Str("job_id", job.ID).Msg("orchestrator: job fail update failed")
		}
		return
	}

	defer func() {
		if r := recover(); r != nil {
			o.failRun(ctx, scene.ID, job.ID, fmt.Sprintf("internal error: %v", r))
		}
	}()

	// Enqueue flips the scene to generating before its job lands; re-assert
	// it in case the scene was failed out of band while the job sat queued.
	// The one-active-job rule means no concurrent run can own this scene.
	if scene.ImageStatus != domain.ImageStatusGenerating {
		if err := o.scenes.SetStatus(ctx, scene.ID, domain.ImageStatusGenerating, ""); err != nil {
			o.failRun(ctx, scene.ID, job.ID, "scene status update failed: "+err.Error())
			return
		}
	}

	prov, err := o.resolver.Resolve(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrMissingCredentials) {
			o.failRun(ctx, scene.ID, job.ID,
				"generation provider API key is not configured; set GEMINI_API_KEY or store a key with the providerkey tool")
		} else {
			o.failRun(ctx, scene.ID, job.ID, "provider configuration failed: "+err.Error())
		}
		return
	}

	materials, err := o.materials.ListByIDs(ctx, scene.MaterialIDs)
	if err != nil {
		o.failRun(ctx, scene.ID, job.ID, "material lookup failed: "+err.Error())
		return
	}
	// Idle materials are filtered here regardless of what the caller
	// selected.
	active := domain.ActiveMaterials(materials)

	verifier := NewVerifier(prov.Analyzer, o.logs, o.logger)

	for {
		enriched := o.enrichDescription(ctx, prov.Enricher, scene)

		instruction := BuildGenerationInstruction(ComposeInput{
			Description:      scene.Description,
			EnrichedPrompt:   enriched,
			TemplateRef:      scene.TemplateRef,
			StyleTags:        scene.StyleTags,
			Materials:        active,
			MotifCount:       len(scene.MotifPaths),
			BlueprintPresent: scene.BlueprintPath != "",
			ExtraRefCount:    len(scene.ExtraRefPaths),
		})
		if job.Type == domain.RenderJobTypeImageRefinement && scene.LastRefinementPrompt != "" {
			instruction += "\n\n" + scene.LastRefinementPrompt
		}

		references := o.selector.Select(ctx, SelectorInput{
			Materials:     active,
			BlueprintPath: scene.BlueprintPath,
			MotifPaths:    scene.MotifPaths,
			ExtraRefPaths: scene.ExtraRefPaths,
		})

		result, err := prov.Generator.Generate(ctx, image.GenerateRequest{
			Prompt:      instruction,
			References:  toGeneratorReferences(references),
			SourceImage: o.editSource(ctx, job, scene),
			AspectRatio: domain.ResolveAspectRatio(string(scene.AspectRatio), scene.Width, scene.Height),
		})
		if err != nil {
			o.failRun(ctx, scene.ID, job.ID, "image generation failed: "+err.Error())
			return
		}

		// The snapshot must land before the new image overwrites the
		// prior one.
		o.archiver.Snapshot(ctx, scene)

		imageKey, err := o.store.Write(ctx, SceneImageKey(scene.ID, extensionForMime(result.MimeType)), result.Data)
		if err != nil {
			o.failRun(ctx, scene.ID, job.ID, "persist rendered image failed: "+err.Error())
			return
		}
		if err := o.scenes.UpdateImage(ctx, scene.ID, imageKey, enriched); err != nil {
			o.failRun(ctx, scene.ID, job.ID, "scene image update failed: "+err.Error())
			return
		}
		scene.ImagePath = imageKey
		scene.EnrichedPrompt = enriched

		// Without material ground truth there is nothing to verify
		// against.
		if len(active) == 0 {
			o.finish(ctx, scene.ID, job.ID, result.CostEstimateCents)
			return
		}

		verification := verifier.Verify(ctx, result.Data, result.MimeType, active, scene.ID, scene.Description)
		if err := o.scenes.UpdateVerification(ctx, scene.ID, verification.Score, verification.Issues); err != nil {
			o.logger.Error().Err(err).Str("scene_id", scene.ID).Msg("orchestrator: verification update failed")
		}

		if !ShouldRefine(verification, scene.VerificationAttempts) {
			o.finish(ctx, scene.ID, job.ID, result.CostEstimateCents)
			return
		}

		scene.VerificationAttempts++
		corrective := BuildCorrectiveInstruction(verification)
		if err := o.scenes.SetRefinement(ctx, scene.ID, corrective, scene.VerificationAttempts); err != nil {
			o.failRun(ctx, scene.ID, job.ID, "refinement update failed: "+err.Error())
			return
		}
		scene.LastRefinementPrompt = corrective

		if err := o.jobs.Complete(ctx, job.ID, result.CostEstimateCents); err != nil {
			o.logger.Error().Err(err).Str("job_id", job.ID).Msg("orchestrator: job complete update failed")
		}

		refinementJob := &domain.RenderJob{
			ID:      uuid.NewString(),
			SceneID: scene.ID,
			Type:    domain.RenderJobTypeImageRefinement,
			Status:  domain.RenderJobStatusProcessing,
		}
		if err := o.jobs.Create(ctx, refinementJob); err != nil {
			o.failRun(ctx, scene.ID, job.ID, "refinement job create failed: "+err.Error())
			return
		}

		o.logger.Info().
			Str("scene_id", scene.ID).
			Int("attempt", scene.VerificationAttempts).
			Int("score", verification.Score).
			Msg("orchestrator: auto-refinement triggered")

		job = refinementJob
	}
}

// enrichDescription expands the scene description through the enricher,
// degrading to the raw description on empty output or error.
func (o *Orchestrator) enrichDescription(ctx context.Context, enricher prompt.Enricher, scene *domain.Scene) string {
	if enricher == nil {
		return scene.Description
	}
	enriched, err := enricher.Enrich(ctx, prompt.EnrichRequest{
		Description: scene.Description,
		TemplateRef: scene.TemplateRef,
		StyleTags:   scene.StyleTags,
	})
	if err != nil {
		o.logger.Warn().Err(err).Str("scene_id", scene.ID).Msg("orchestrator: enrichment failed, using raw description")
		return scene.Description
	}
	if strings.TrimSpace(enriched) == "" {
		return scene.Description
	}
	return enriched
}

// editSource loads the prior rendered image for refinement runs so the
// provider edits it instead of generating from scratch. A read failure only
// degrades the run back to from-scratch generation.
func (o *Orchestrator) editSource(ctx context.Context, job *domain.RenderJob, scene *domain.Scene) *image.Reference {
	if job.Type != domain.RenderJobTypeImageRefinement || scene.ImagePath == "" {
		return nil
	}
	data, err := o.store.Read(ctx, scene.ImagePath)
	if err != nil {
		o.logger.Warn().Err(err).Str("scene_id", scene.ID).Str("path", scene.ImagePath).
			Msg("orchestrator: prior image unreadable, generating from scratch")
		return nil
	}
	return &image.Reference{Data: data, MimeType: mimeTypeForPath(scene.ImagePath)}
}

func (o *Orchestrator) finish(ctx context.Context, sceneID, jobID string, costCents int) {
	if err := o.jobs.Complete(ctx, jobID, costCents); err != nil {
		o.logger.Error().Err(err).Str("job_id", jobID).Msg("orchestrator: job complete update failed")
	}
	if err := o.scenes.SetStatus(ctx, sceneID, domain.ImageStatusDone, ""); err != nil {
		o.logger.Error().Err(err).Str("scene_id", sceneID).Msg("orchestrator: scene done update failed")
	}
}

func (o *Orchestrator) failRun(ctx context.Context, sceneID, jobID, message string) {
	o.logger.Error().Str("scene_id", sceneID).Str("job_id", jobID).Str("error", message).
		Msg("orchestrator: run failed")
	if err := o.scenes.SetStatus(ctx, sceneID, domain.ImageStatusFailed, message); err != nil {
		o.logger.Error().Err(err).Str("scene_id", sceneID).Msg("orchestrator: scene fail update failed")
	}
	if err := o.jobs.Fail(ctx, jobID, message); err != nil {
		o.logger.Error().Err(err).Str("job_id", jobID).Msg("orchestrator: job fail update failed")
	}
}

func toGeneratorReferences(refs []ReferenceImage) []image.Reference {
	out := make([]image.Reference, len(refs))
	for i, ref := range refs {
		out[i] = image.Reference{Data: ref.Data, MimeType: ref.MimeType}
	}
	return out
}

func extensionForMime(mime string) string {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
