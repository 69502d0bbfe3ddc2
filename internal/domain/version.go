package domain

import "time"

// SceneVersion is an immutable snapshot of a scene's previous rendered image,
// taken before the image was overwritten by a newer generation.
type SceneVersion struct {
	ID        string
	SceneID   string
	VersionNo int
	ImagePath string
	Prompt    string
	CreatedAt time.Time
}
