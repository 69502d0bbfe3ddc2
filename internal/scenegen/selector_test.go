package scenegen

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/domain"
)

// fakeReader serves every requested path except the ones listed as missing.
type fakeReader struct {
	missing map[string]bool
}

func (f *fakeReader) Read(_ context.Context, key string) ([]byte, error) {
	if f.missing[key] {
		return nil, errors.New("no such file")
	}
	return []byte("img:" + key), nil
}

func newTestSelector(missing ...string) *Selector {
	m := map[string]bool{}
	for _, path := range missing {
		m[path] = true
	}
	return NewSelector(&fakeReader{missing: m}, zerolog.Nop())
}

func materialWithImages(id string, category domain.MaterialCategory, perspectives ...string) domain.Material {
	m := domain.Material{
		ID:       id,
		Name:     "material " + id,
		Category: category,
		Status:   domain.MaterialStatusEngaged,
	}
	for i, p := range perspectives {
		m.Images = append(m.Images, domain.MaterialImage{
			ID:          fmt.Sprintf("%s-img-%d", id, i),
			MaterialID:  id,
			Path:        fmt.Sprintf("materials/%s/%d.png", id, i),
			Perspective: p,
			Position:    i,
		})
	}
	return m
}

func rolesOf(refs []ReferenceImage) []ReferenceRole {
	out := make([]ReferenceRole, len(refs))
	for i, r := range refs {
		out[i] = r.Role
	}
	return out
}

func TestSelectOrdersMaterialsByTierAndRank(t *testing.T) {
	motif := materialWithImages("motif", domain.CategoryCanvasMotif, "front", "back", "detail")
	brush := materialWithImages("brush", domain.CategoryBrush, "detail", "bristle")
	pot := materialWithImages("pot", domain.CategoryPaintPot, "top", "label", "front")

	refs := newTestSelector().Select(context.Background(), SelectorInput{
		Materials: []domain.Material{motif, brush, pot},
	})

	// Paint pot tier 1 first, ranked label > front > top; brush tier 2
	// ranked bristle > detail; motif tier 3 with back excluded.
	wantPaths := []string{
		"materials/pot/1.png",   // label
		"materials/pot/2.png",   // front
		"materials/pot/0.png",   // top
		"materials/brush/1.png", // bristle
		"materials/brush/0.png", // detail
		"materials/motif/0.png", // front
		"materials/motif/2.png", // detail
	}
	if len(refs) != len(wantPaths) {
		t.Fatalf("selected %d images, want %d", len(refs), len(wantPaths))
	}
	for i, want := range wantPaths {
		if refs[i].Path != want {
			t.Fatalf("refs[%d].Path = %q, want %q", i, refs[i].Path, want)
		}
		if refs[i].Role != RoleMaterial {
			t.Fatalf("refs[%d].Role = %q, want material", i, refs[i].Role)
		}
	}
}

func TestSelectAppliesPerCategoryCap(t *testing.T) {
	pot := materialWithImages("pot", domain.CategoryPaintPot,
		"label", "front", "top", "detail", "packaged", "extra1", "extra2")

	refs := newTestSelector().Select(context.Background(), SelectorInput{
		Materials: []domain.Material{pot},
	})
	if len(refs) != 5 {
		t.Fatalf("paint pot contributed %d images, cap is 5", len(refs))
	}
}

func TestSelectMotifsAreAlwaysLast(t *testing.T) {
	pot := materialWithImages("pot", domain.CategoryPaintPot, "label", "front")

	refs := newTestSelector().Select(context.Background(), SelectorInput{
		Materials:     []domain.Material{pot},
		BlueprintPath: "uploads/blueprint.png",
		MotifPaths:    []string{"uploads/motif-1.png", "uploads/motif-2.png"},
		ExtraRefPaths: []string{"uploads/person.png"},
	})

	want := []ReferenceRole{RoleMaterial, RoleMaterial, RoleBlueprint, RoleExtraRef, RoleMotif, RoleMotif}
	got := rolesOf(refs)
	if len(got) != len(want) {
		t.Fatalf("selected %d images, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("role[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSelectNeverExceedsCapacity(t *testing.T) {
	var materials []domain.Material
	for i := 0; i < 4; i++ {
		materials = append(materials, materialWithImages(
			fmt.Sprintf("pot-%d", i), domain.CategoryPaintPot,
			"label", "front", "top", "packaged", "detail"))
	}
	var motifs, extras []string
	for i := 0; i < 6; i++ {
		motifs = append(motifs, fmt.Sprintf("uploads/motif-%d.png", i))
		extras = append(extras, fmt.Sprintf("uploads/extra-%d.png", i))
	}

	refs := newTestSelector().Select(context.Background(), SelectorInput{
		Materials:     materials,
		BlueprintPath: "uploads/blueprint.png",
		MotifPaths:    motifs,
		ExtraRefPaths: extras,
	})
	if len(refs) > MaxReferenceImages {
		t.Fatalf("selected %d images, capacity is %d", len(refs), MaxReferenceImages)
	}
	// Motifs are the strongest reservation: all six must survive and sit
	// at the tail.
	motifCount := 0
	for _, r := range refs {
		if r.Role == RoleMotif {
			motifCount++
		}
	}
	if motifCount != 6 {
		t.Fatalf("kept %d motifs, want all 6", motifCount)
	}
	for i := len(refs) - 6; i < len(refs); i++ {
		if refs[i].Role != RoleMotif {
			t.Fatalf("refs[%d].Role = %q, want trailing motifs", i, refs[i].Role)
		}
	}
}

func TestSelectSkipsUnreadableFiles(t *testing.T) {
	pot := materialWithImages("pot", domain.CategoryPaintPot, "label", "front")
	sel := newTestSelector("materials/pot/0.png", "uploads/motif-1.png")

	refs := sel.Select(context.Background(), SelectorInput{
		Materials:  []domain.Material{pot},
		MotifPaths: []string{"uploads/motif-1.png", "uploads/motif-2.png"},
	})

	wantPaths := []string{"materials/pot/1.png", "uploads/motif-2.png"}
	if len(refs) != len(wantPaths) {
		t.Fatalf("selected %d images, want %d", len(refs), len(wantPaths))
	}
	for i, want := range wantPaths {
		if refs[i].Path != want {
			t.Fatalf("refs[%d].Path = %q, want %q", i, refs[i].Path, want)
		}
	}
}

func TestSelectEmptyInput(t *testing.T) {
	refs := newTestSelector().Select(context.Background(), SelectorInput{})
	if len(refs) != 0 {
		t.Fatalf("selected %d images from empty input, want 0", len(refs))
	}
}

func TestMimeTypeForPath(t *testing.T) {
	cases := map[string]string{
		"a/b.jpg":  "image/jpeg",
		"a/b.JPEG": "image/jpeg",
		"a/b.webp": "image/webp",
		"a/b.png":  "image/png",
		"a/b":      "image/png",
	}
	for path, want := range cases {
		if got := mimeTypeForPath(path); got != want {
			t.Fatalf("mimeTypeForPath(%q) = %q, want %q", path, got, want)
		}
	}
}
