package handlers_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/domain"
	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/http/handlers"
	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/http/httpapi"
	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/storage"
)

type stubScenes struct {
	scenes map[string]*domain.Scene
}

func (r *stubScenes) Create(_ context.Context, scene *domain.Scene) error {
	cp := *scene
	r.scenes[scene.ID] = &cp
	return nil
}

func (r *stubScenes) GetByID(_ context.Context, id string) (*domain.Scene, error) {
	scene, ok := r.scenes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *scene
	return &cp, nil
}

func (r *stubScenes) MarkGenerating(_ context.Context, id string) error {
	scene, ok := r.scenes[id]
	if !ok {
		return domain.ErrNotFound
	}
	if scene.ImageStatus == domain.ImageStatusGenerating {
		return domain.ErrSceneBusy
	}
	scene.ImageStatus = domain.ImageStatusGenerating
	return nil
}

func (r *stubScenes) SetStatus(_ context.Context, id string, status domain.ImageStatus, msg string) error {
	r.scenes[id].ImageStatus = status
	r.scenes[id].LastErrorMessage = msg
	return nil
}

func (r *stubScenes) UpdateImage(_ context.Context, id, imagePath, enrichedPrompt string) error {
	r.scenes[id].ImagePath = imagePath
	r.scenes[id].EnrichedPrompt = enrichedPrompt
	return nil
}

func (r *stubScenes) UpdateVerification(_ context.Context, id string, score int, issues []domain.VerificationIssue) error {
	r.scenes[id].VerificationScore = &score
	r.scenes[id].VerificationIssues = issues
	return nil
}

func (r *stubScenes) SetRefinement(_ context.Context, id, instruction string, attempts int) error {
	r.scenes[id].LastRefinementPrompt = instruction
	r.scenes[id].VerificationAttempts = attempts
	return nil
}

func (r *stubScenes) SetReview(_ context.Context, id string, rating *int, notes string) error {
	r.scenes[id].ReviewRating = rating
	r.scenes[id].ReviewNotes = notes
	return nil
}

func (r *stubScenes) Delete(_ context.Context, id string) error {
	delete(r.scenes, id)
	return nil
}

func (r *stubScenes) SweepGenerating(context.Context, string) (int64, error) { return 0, nil }

type stubJobs struct {
	jobs      map[string]*domain.RenderJob
	createErr error
}

func (r *stubJobs) Create(_ context.Context, job *domain.RenderJob) error {
	if r.createErr != nil {
		return r.createErr
	}
	// Mirrors the one-active-job-per-scene unique index.
	for _, existing := range r.jobs {
		if existing.SceneID != job.SceneID {
			continue
		}
		if existing.Status == domain.RenderJobStatusPending || existing.Status == domain.RenderJobStatusProcessing {
			return domain.ErrSceneBusy
		}
	}
	cp := *job
	r.jobs[job.ID] = &cp
	return nil
}

func (r *stubJobs) GetByID(_ context.Context, id string) (*domain.RenderJob, error) {
	job, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func (r *stubJobs) Claim(context.Context) (*domain.RenderJob, error) {
	return nil, domain.ErrNotFound
}

func (r *stubJobs) Complete(context.Context, string, int) error { return nil }

func (r *stubJobs) Fail(context.Context, string, string) error { return nil }

func (r *stubJobs) SweepProcessing(context.Context, string) (int64, error) { return 0, nil }

type stubVersions struct {
	versions []domain.SceneVersion
}

func (r *stubVersions) Create(_ context.Context, v *domain.SceneVersion) error {
	r.versions = append(r.versions, *v)
	return nil
}

func (r *stubVersions) NextVersionNo(_ context.Context, sceneID string) (int, error) {
	return len(r.versions) + 1, nil
}

func (r *stubVersions) ListByScene(_ context.Context, sceneID string) ([]domain.SceneVersion, error) {
	var out []domain.SceneVersion
	for _, v := range r.versions {
		if v.SceneID == sceneID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *stubVersions) GetBySceneAndNo(_ context.Context, sceneID string, versionNo int) (*domain.SceneVersion, error) {
	for _, v := range r.versions {
		if v.SceneID == sceneID && v.VersionNo == versionNo {
			cp := v
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stubVersions) Delete(_ context.Context, id string) error {
	for i, v := range r.versions {
		if v.ID == id {
			r.versions = append(r.versions[:i], r.versions[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

type stubLogs struct {
	logs []domain.VerificationLog
}

func (r *stubLogs) Append(_ context.Context, log *domain.VerificationLog) error {
	r.logs = append(r.logs, *log)
	return nil
}

func (r *stubLogs) ListByScene(_ context.Context, sceneID string) ([]domain.VerificationLog, error) {
	var out []domain.VerificationLog
	for _, l := range r.logs {
		if l.SceneID == sceneID {
			out = append(out, l)
		}
	}
	return out, nil
}

type testEnv struct {
	scenes   *stubScenes
	jobs     *stubJobs
	versions *stubVersions
	logs     *stubLogs
	store    *storage.FileStore
	server   http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	env := &testEnv{
		scenes:   &stubScenes{scenes: map[string]*domain.Scene{}},
		jobs:     &stubJobs{jobs: map[string]*domain.RenderJob{}},
		versions: &stubVersions{},
		logs:     &stubLogs{},
		store:    store,
	}
	app := handlers.NewApp(env.scenes, env.jobs, env.versions, env.logs, store, zerolog.Nop())
	env.server = httpapi.NewRouter(app, zerolog.Nop())
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func TestSceneCreateEnqueuesJob(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/v1/scenes",
		`{"description":"pots on a table","material_ids":["m1"],"aspect_ratio":"4:3","style_tags":["warm"]}`)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		SceneID string `json:"scene_id"`
		JobID   string `json:"job_id"`
		Status  string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "generating" {
		t.Fatalf("status = %q, want generating", resp.Status)
	}
	scene := env.scenes.scenes[resp.SceneID]
	if scene == nil {
		t.Fatal("scene not persisted")
	}
	if scene.AspectRatio != domain.AspectLandscapeClassic {
		t.Fatalf("aspect ratio = %s, want 4:3", scene.AspectRatio)
	}
	job := env.jobs.jobs[resp.JobID]
	if job == nil || job.Status != domain.RenderJobStatusPending || job.Type != domain.RenderJobTypeImage {
		t.Fatalf("job = %+v, want pending image job", job)
	}
}

func TestSceneCreateRejectsEmptyPayload(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/v1/scenes", `{"description":"  "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSceneRegenerateConflictsWhileGenerating(t *testing.T) {
	env := newTestEnv(t)
	env.scenes.scenes["s1"] = &domain.Scene{ID: "s1", ImageStatus: domain.ImageStatusGenerating}

	rec := env.do(t, http.MethodPost, "/v1/scenes/s1/regenerate", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "scene_busy") {
		t.Fatalf("body %q misses scene_busy slug", rec.Body.String())
	}
}

func TestSceneRegenerateFromDone(t *testing.T) {
	env := newTestEnv(t)
	env.scenes.scenes["s1"] = &domain.Scene{ID: "s1", ImageStatus: domain.ImageStatusDone}

	rec := env.do(t, http.MethodPost, "/v1/scenes/s1/regenerate", "")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body.String())
	}
	if env.scenes.scenes["s1"].ImageStatus != domain.ImageStatusGenerating {
		t.Fatal("scene not flipped to generating")
	}
	if len(env.jobs.jobs) != 1 {
		t.Fatalf("created %d jobs, want 1", len(env.jobs.jobs))
	}
}

// A scene failed by the restart sweep can still hold a queued job; a
// regenerate must not stack a second run on top of it.
func TestSceneRegenerateConflictsWithQueuedJob(t *testing.T) {
	env := newTestEnv(t)
	env.scenes.scenes["s1"] = &domain.Scene{ID: "s1", ImageStatus: domain.ImageStatusFailed}
	env.jobs.jobs["stale"] = &domain.RenderJob{
		ID:      "stale",
		SceneID: "s1",
		Type:    domain.RenderJobTypeImage,
		Status:  domain.RenderJobStatusPending,
	}

	rec := env.do(t, http.MethodPost, "/v1/scenes/s1/regenerate", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "scene_busy") {
		t.Fatalf("body %q misses scene_busy slug", rec.Body.String())
	}
	if len(env.jobs.jobs) != 1 {
		t.Fatalf("got %d jobs, want only the queued one", len(env.jobs.jobs))
	}
	// The queued job will still run, so generating stands.
	if env.scenes.scenes["s1"].ImageStatus != domain.ImageStatusGenerating {
		t.Fatalf("scene status = %s, want generating", env.scenes.scenes["s1"].ImageStatus)
	}
}

func TestSceneCreateEnqueueFailureRevertsScene(t *testing.T) {
	env := newTestEnv(t)
	env.jobs.createErr = errors.New("insert failed")

	rec := env.do(t, http.MethodPost, "/v1/scenes", `{"description":"pots on a table"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if len(env.scenes.scenes) != 1 {
		t.Fatalf("got %d scenes, want the created one", len(env.scenes.scenes))
	}
	for _, scene := range env.scenes.scenes {
		if scene.ImageStatus != domain.ImageStatusFailed {
			t.Fatalf("scene status = %s, want failed instead of a stuck generating", scene.ImageStatus)
		}
		if scene.LastErrorMessage == "" {
			t.Fatal("scene carries no error message after enqueue failure")
		}
	}
}

func TestSceneRegenerateEnqueueFailureRevertsScene(t *testing.T) {
	env := newTestEnv(t)
	env.scenes.scenes["s1"] = &domain.Scene{ID: "s1", ImageStatus: domain.ImageStatusDone}
	env.jobs.createErr = errors.New("insert failed")

	rec := env.do(t, http.MethodPost, "/v1/scenes/s1/regenerate", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if env.scenes.scenes["s1"].ImageStatus != domain.ImageStatusFailed {
		t.Fatalf("scene status = %s, want failed", env.scenes.scenes["s1"].ImageStatus)
	}
}

func TestSceneRefineStoresInstruction(t *testing.T) {
	env := newTestEnv(t)
	env.scenes.scenes["s1"] = &domain.Scene{ID: "s1", ImageStatus: domain.ImageStatusDone}

	rec := env.do(t, http.MethodPost, "/v1/scenes/s1/refine", `{"instruction":"make the light warmer"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body.String())
	}
	scene := env.scenes.scenes["s1"]
	if scene.LastRefinementPrompt != "make the light warmer" {
		t.Fatalf("refinement prompt = %q", scene.LastRefinementPrompt)
	}
	for _, job := range env.jobs.jobs {
		if job.Type != domain.RenderJobTypeImageRefinement {
			t.Fatalf("job type = %s, want image_refinement", job.Type)
		}
	}
}

func TestSceneRefineRequiresInstruction(t *testing.T) {
	env := newTestEnv(t)
	env.scenes.scenes["s1"] = &domain.Scene{ID: "s1", ImageStatus: domain.ImageStatusDone}

	rec := env.do(t, http.MethodPost, "/v1/scenes/s1/refine", `{"instruction":"  "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSceneGetNotFound(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/v1/scenes/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestSceneGetReturnsVerificationState(t *testing.T) {
	env := newTestEnv(t)
	score := 85
	env.scenes.scenes["s1"] = &domain.Scene{
		ID:                "s1",
		ImageStatus:       domain.ImageStatusDone,
		VerificationScore: &score,
		VerificationIssues: []domain.VerificationIssue{
			{Kind: domain.IssueKindLabel, Severity: domain.SeverityMinor, Description: "slightly soft label"},
		},
	}

	rec := env.do(t, http.MethodGet, "/v1/scenes/s1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["verification_score"].(float64) != 85 {
		t.Fatalf("verification_score = %v, want 85", body["verification_score"])
	}
	if body["image_status"].(string) != "done" {
		t.Fatalf("image_status = %v, want done", body["image_status"])
	}
}

func TestSceneReviewValidatesRating(t *testing.T) {
	env := newTestEnv(t)
	env.scenes.scenes["s1"] = &domain.Scene{ID: "s1"}

	rec := env.do(t, http.MethodPatch, "/v1/scenes/s1/review", `{"rating":9}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	rec = env.do(t, http.MethodPatch, "/v1/scenes/s1/review", `{"rating":4,"notes":"good"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	scene := env.scenes.scenes["s1"]
	if scene.ReviewRating == nil || *scene.ReviewRating != 4 || scene.ReviewNotes != "good" {
		t.Fatalf("review not stored: %+v", scene)
	}
}

func TestSceneDeleteRemovesFiles(t *testing.T) {
	env := newTestEnv(t)
	env.scenes.scenes["s1"] = &domain.Scene{ID: "s1"}
	if _, err := env.store.Write(context.Background(), "scenes/s1/current.png", []byte("img")); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	rec := env.do(t, http.MethodDelete, "/v1/scenes/s1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if _, ok := env.scenes.scenes["s1"]; ok {
		t.Fatal("scene still present after delete")
	}
	if _, err := env.store.Read(context.Background(), "scenes/s1/current.png"); err == nil {
		t.Fatal("scene files still present after delete")
	}
}

func TestVersionListAndDelete(t *testing.T) {
	env := newTestEnv(t)
	env.scenes.scenes["s1"] = &domain.Scene{ID: "s1"}
	if _, err := env.store.Write(context.Background(), "scenes/s1/versions/v1.png", []byte("v1")); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	env.versions.versions = []domain.SceneVersion{
		{ID: "v-1", SceneID: "s1", VersionNo: 1, ImagePath: "scenes/s1/versions/v1.png"},
	}

	rec := env.do(t, http.MethodGet, "/v1/scenes/s1/versions", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"version_no":1`) {
		t.Fatalf("list body %q misses version 1", rec.Body.String())
	}

	rec = env.do(t, http.MethodDelete, "/v1/scenes/s1/versions/1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rec.Code)
	}
	if len(env.versions.versions) != 0 {
		t.Fatal("version record still present after delete")
	}
	if _, err := env.store.Read(context.Background(), "scenes/s1/versions/v1.png"); err == nil {
		t.Fatal("version file still present after delete")
	}
}

func TestVersionArchiveStreamsZip(t *testing.T) {
	env := newTestEnv(t)
	for i, content := range []string{"one", "two"} {
		key := "scenes/s1/versions/v" + string(rune('1'+i)) + ".png"
		if _, err := env.store.Write(context.Background(), key, []byte(content)); err != nil {
			t.Fatalf("seed file: %v", err)
		}
		env.versions.versions = append(env.versions.versions, domain.SceneVersion{
			ID: "v-" + string(rune('1'+i)), SceneID: "s1", VersionNo: i + 1, ImagePath: key,
		})
	}

	rec := env.do(t, http.MethodGet, "/v1/scenes/s1/versions/archive", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/zip" {
		t.Fatalf("content type = %q, want application/zip", ct)
	}
	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("zip holds %d entries, want 2", len(zr.File))
	}
	if zr.File[0].Name != "v1.png" || zr.File[1].Name != "v2.png" {
		t.Fatalf("zip entries = %s, %s; want v1.png, v2.png", zr.File[0].Name, zr.File[1].Name)
	}
}

func TestVersionArchiveEmpty(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/v1/scenes/s1/versions/archive", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestJobGet(t *testing.T) {
	env := newTestEnv(t)
	env.jobs.jobs["j1"] = &domain.RenderJob{
		ID: "j1", SceneID: "s1", Type: domain.RenderJobTypeImage, Status: domain.RenderJobStatusCompleted,
	}

	rec := env.do(t, http.MethodGet, "/v1/jobs/j1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"completed"`) {
		t.Fatalf("body %q misses completed status", rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/v1/jobs/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/v1/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
