package scenegen

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/domain"
)

// MaxReferenceImages is the system-wide capacity of the reference image set
// handed to the generation provider.
const MaxReferenceImages = 14

// ReferenceRole names why an image is part of the reference set.
type ReferenceRole string

const (
	RoleMaterial  ReferenceRole = "material"
	RoleBlueprint ReferenceRole = "blueprint"
	RoleExtraRef  ReferenceRole = "extra_ref"
	RoleMotif     ReferenceRole = "motif"
)

// ReferenceImage is one decoded, ordered entry of the selected set.
type ReferenceImage struct {
	Path       string
	Data       []byte
	MimeType   string
	Role       ReferenceRole
	MaterialID string
}

// SelectorInput aggregates everything eligible for reference selection.
type SelectorInput struct {
	Materials     []domain.Material
	BlueprintPath string
	MotifPaths    []string
	ExtraRefPaths []string
}

// ImageReader loads image bytes by storage key. Satisfied by storage.FileStore.
type ImageReader interface {
	Read(ctx context.Context, key string) ([]byte, error)
}

// Selector builds the deterministically ordered, capacity-bounded reference
// image set. Unreadable files are skipped with a warning, never an abort.
type Selector struct {
	reader ImageReader
	logger zerolog.Logger
}

func NewSelector(reader ImageReader, logger zerolog.Logger) *Selector {
	return &Selector{reader: reader, logger: logger}
}

// Select applies the selection algorithm: materials by category tier (ranked
// per-material, per-category capped, bounded by the budget left after
// reservations), then blueprint, then extra references, then motifs last.
// Motifs are positioned last by contract because prompt text references "the
// last N images" as the exact canvas content.
func (s *Selector) Select(ctx context.Context, in SelectorInput) []ReferenceImage {
	reserved := len(in.MotifPaths) + len(in.ExtraRefPaths)
	if in.BlueprintPath != "" {
		reserved++
	}
	materialBudget := MaxReferenceImages - reserved
	if materialBudget < 0 {
		materialBudget = 0
	}

	selected := make([]ReferenceImage, 0, MaxReferenceImages)

	for _, material := range orderByTier(in.Materials) {
		if len(selected) >= materialBudget {
			break
		}
		policy := PolicyFor(material.Category)
		taken := 0
		for _, img := range rankImages(material) {
			if taken >= policy.ImageCap || len(selected) >= materialBudget {
				break
			}
			ref, ok := s.load(ctx, img.Path, RoleMaterial, material.ID)
			if !ok {
				continue
			}
			selected = append(selected, ref)
			taken++
		}
	}

	// Reservations can collide with capacity when callers over-supply
	// auxiliary images; motifs are the strongest reservation, so they are
	// sized first and the blueprint/extra references fill what is left.
	remaining := MaxReferenceImages - len(selected)
	motifAllow := len(in.MotifPaths)
	if motifAllow > remaining {
		motifAllow = remaining
	}
	auxAllow := remaining - motifAllow

	if in.BlueprintPath != "" && auxAllow > 0 {
		if ref, ok := s.load(ctx, in.BlueprintPath, RoleBlueprint, ""); ok {
			selected = append(selected, ref)
			auxAllow--
		}
	}
	for _, path := range in.ExtraRefPaths {
		if auxAllow <= 0 {
			break
		}
		if ref, ok := s.load(ctx, path, RoleExtraRef, ""); ok {
			selected = append(selected, ref)
			auxAllow--
		}
	}
	appended := 0
	for _, path := range in.MotifPaths {
		if appended >= motifAllow {
			break
		}
		if ref, ok := s.load(ctx, path, RoleMotif, ""); ok {
			selected = append(selected, ref)
			appended++
		}
	}

	return selected
}

func (s *Selector) load(ctx context.Context, path string, role ReferenceRole, materialID string) (ReferenceImage, bool) {
	data, err := s.reader.Read(ctx, path)
	if err != nil {
		s.logger.Warn().Err(err).Str("path", path).Str("role", string(role)).
			Msg("selector: skipping unreadable reference image")
		return ReferenceImage{}, false
	}
	return ReferenceImage{
		Path:       path,
		Data:       data,
		MimeType:   mimeTypeForPath(path),
		Role:       role,
		MaterialID: materialID,
	}, true
}

// orderByTier sorts materials by category tier, keeping input order within a
// tier.
func orderByTier(materials []domain.Material) []domain.Material {
	ordered := make([]domain.Material, len(materials))
	copy(ordered, materials)
	sort.SliceStable(ordered, func(i, j int) bool {
		return PolicyFor(ordered[i].Category).Tier < PolicyFor(ordered[j].Category).Tier
	})
	return ordered
}

// rankImages orders a material's images best-first by perspective rank,
// dropping excluded views. Ties keep input order.
func rankImages(material domain.Material) []domain.MaterialImage {
	kept := make([]domain.MaterialImage, 0, len(material.Images))
	for _, img := range material.Images {
		if !Excluded(material.Category, img.Perspective) {
			kept = append(kept, img)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return Rank(material.Category, kept[i].Perspective) > Rank(material.Category, kept[j].Perspective)
	})
	return kept
}

func mimeTypeForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	default:
		return "image/png"
	}
}
