package scenegen

import (
	"testing"

	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/domain"
)

func TestRankPaintPotPrefersLabelViews(t *testing.T) {
	cases := []struct {
		perspective string
		want        int
	}{
		{"label", 100},
		{"Label Close-up", 100},
		{"detail", 100},
		{"front", 90},
		{"top", 80},
		{"packaged", 70},
		{"pack shot", 70},
		{"somewhere", 10},
		{"", 10},
	}
	for _, tc := range cases {
		if got := Rank(domain.CategoryPaintPot, tc.perspective); got != tc.want {
			t.Fatalf("Rank(paint_pot, %q) = %d, want %d", tc.perspective, got, tc.want)
		}
	}
}

func TestRankBrush(t *testing.T) {
	if got := Rank(domain.CategoryBrush, "bristle detail"); got != 100 {
		t.Fatalf("Rank(brush, bristle detail) = %d, want 100", got)
	}
	if got := Rank(domain.CategoryBrush, "side"); got != 90 {
		t.Fatalf("Rank(brush, side) = %d, want 90", got)
	}
	if got := Rank(domain.CategoryBrush, "detail"); got != 80 {
		t.Fatalf("Rank(brush, detail) = %d, want 80", got)
	}
}

func TestRankCanvasMotifExcludesBackViews(t *testing.T) {
	if got := Rank(domain.CategoryCanvasMotif, "back"); got != 0 {
		t.Fatalf("Rank(canvas_motif, back) = %d, want 0", got)
	}
	if got := Rank(domain.CategoryCanvasMotif, "Backside"); got != 0 {
		t.Fatalf("Rank(canvas_motif, Backside) = %d, want 0", got)
	}
	if !Excluded(domain.CategoryCanvasMotif, "back") {
		t.Fatal("Excluded(canvas_motif, back) = false, want true")
	}
	if Excluded(domain.CategoryCanvasMotif, "front") {
		t.Fatal("Excluded(canvas_motif, front) = true, want false")
	}
}

func TestRankUnknownCategoryUsesDefaultPolicy(t *testing.T) {
	if got := Rank(domain.CategoryFrame, "front"); got != 100 {
		t.Fatalf("Rank(frame, front) = %d, want 100", got)
	}
	if got := Rank(domain.CategoryFrame, "side"); got != 60 {
		t.Fatalf("Rank(frame, side) = %d, want 60", got)
	}
	if got := Rank(domain.CategoryFrame, "mystery"); got != 10 {
		t.Fatalf("Rank(frame, mystery) = %d, want 10", got)
	}
}

func TestCategoryDisplayName(t *testing.T) {
	if got := CategoryDisplayName(domain.CategoryPaintPot); got != "Paint Pot" {
		t.Fatalf("CategoryDisplayName(paint_pot) = %q, want %q", got, "Paint Pot")
	}
	if got := CategoryDisplayName(domain.CategoryCanvasMotif); got != "Canvas Motif" {
		t.Fatalf("CategoryDisplayName(canvas_motif) = %q, want %q", got, "Canvas Motif")
	}
}
