package scenegen

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/domain"
)

func TestSnapshotSequenceNumbersVersionsWithoutGaps(t *testing.T) {
	versions := &memVersionRepo{}
	store := &memStore{files: map[string][]byte{}}
	archiver := NewArchiver(versions, store, zerolog.Nop())

	scene := &domain.Scene{ID: "scene-1", ImagePath: "scenes/scene-1/current.png"}
	renders := [][]byte{[]byte("first"), []byte("second"), []byte("third")}
	for _, render := range renders {
		store.files[scene.ImagePath] = render
		archiver.Snapshot(context.Background(), scene)
	}

	if len(versions.versions) != len(renders) {
		t.Fatalf("got %d versions, want %d", len(versions.versions), len(renders))
	}
	for i, v := range versions.versions {
		if v.VersionNo != i+1 {
			t.Fatalf("version %d has number %d, want %d", i, v.VersionNo, i+1)
		}
		wantKey := VersionImageKey(scene.ID, i+1, ".png")
		if v.ImagePath != wantKey {
			t.Fatalf("version %d image path = %q, want %q", i+1, v.ImagePath, wantKey)
		}
		if got := string(store.files[v.ImagePath]); got != string(renders[i]) {
			t.Fatalf("version %d archived %q, want %q", i+1, got, renders[i])
		}
	}
}

func TestSnapshotSkipsSceneWithoutImage(t *testing.T) {
	versions := &memVersionRepo{}
	store := &memStore{files: map[string][]byte{}}
	archiver := NewArchiver(versions, store, zerolog.Nop())

	archiver.Snapshot(context.Background(), &domain.Scene{ID: "scene-1"})

	if len(versions.versions) != 0 {
		t.Fatalf("got %d versions for a scene with no image, want 0", len(versions.versions))
	}
}

func TestSnapshotMissingSourceFileContinuesWithoutVersion(t *testing.T) {
	versions := &memVersionRepo{}
	store := &memStore{files: map[string][]byte{}}
	archiver := NewArchiver(versions, store, zerolog.Nop())

	archiver.Snapshot(context.Background(), &domain.Scene{ID: "scene-1", ImagePath: "scenes/scene-1/current.png"})

	if len(versions.versions) != 0 {
		t.Fatalf("got %d versions after a failed copy, want 0", len(versions.versions))
	}
}
