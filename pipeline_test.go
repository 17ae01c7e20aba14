package meshprep

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	mst "github.com/flywave/go-mst"

	"github.com/SurajWijewickrama/AutoMesh-GGT-VQ/internal/config"
)

// captureRenderer records calls and writes a placeholder image so the
// pipeline's output layout can be checked without rasterizing.
type captureRenderer struct {
	calls int
}

func (r *captureRenderer) Render(scene *SceneContext, req RenderRequest) error {
	r.calls++
	return os.WriteFile(req.OutputPath, []byte("png"), 0o644)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.InputFolder = t.TempDir()
	cfg.OutputFolder = t.TempDir()
	return cfg
}

func stageFile(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("placeholder"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestPipelineProcessesAsset(t *testing.T) {
	cfg := testConfig(t)
	stageFile(t, cfg.InputFolder, "chair.glb")

	rend := &captureRenderer{}
	pipe := NewPipeline(cfg, rend, nil)
	pipe.Scene().factory = func(string) FormatConvert {
		return &stubConvert{mesh: twoTriangleMesh()}
	}

	if err := pipe.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if rend.calls != 1 {
		t.Errorf("renderer called %d times, expected 1", rend.calls)
	}

	imgPath := filepath.Join(cfg.OutputFolder, "chair", "chair_45.png")
	if _, err := os.Stat(imgPath); err != nil {
		t.Errorf("rendered image missing: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(cfg.OutputFolder, "chair", "chair.json"))
	if err != nil {
		t.Fatalf("export artifact missing: %v", err)
	}
	var rec ExportRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("artifact is not valid json: %v", err)
	}
	if rec.Name != "chair" {
		t.Errorf("artifact name = %q, expected chair", rec.Name)
	}
	// two staged triangles merge into one six-vertex mesh, already under
	// the vertex budget
	if len(rec.Vertices) != 6 || len(rec.Faces) != 2 || len(rec.Edges) != 6 {
		t.Errorf("artifact counts = %d verts, %d faces, %d edges",
			len(rec.Vertices), len(rec.Faces), len(rec.Edges))
	}
}

func TestPipelineSkipsAssetWithoutMeshes(t *testing.T) {
	cfg := testConfig(t)
	stageFile(t, cfg.InputFolder, "empty.glb")

	rend := &captureRenderer{}
	pipe := NewPipeline(cfg, rend, nil)
	pipe.Scene().factory = func(string) FormatConvert {
		return &stubConvert{mesh: mst.NewMesh()}
	}

	if err := pipe.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if rend.calls != 0 {
		t.Errorf("renderer called %d times for an empty asset", rend.calls)
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputFolder, "empty")); !os.IsNotExist(err) {
		t.Error("skipped asset still created an output folder")
	}
}

func TestPipelineExportNameOverride(t *testing.T) {
	cfg := testConfig(t)
	cfg.Export.Name = "airplane"
	stageFile(t, cfg.InputFolder, "chair.glb")

	pipe := NewPipeline(cfg, &captureRenderer{}, nil)
	pipe.Scene().factory = func(string) FormatConvert {
		return &stubConvert{mesh: twoTriangleMesh()}
	}
	if err := pipe.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// the filename keeps the asset's base name, only "n" is overridden
	data, err := os.ReadFile(filepath.Join(cfg.OutputFolder, "chair", "chair.json"))
	if err != nil {
		t.Fatalf("export artifact missing: %v", err)
	}
	var rec ExportRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatal(err)
	}
	if rec.Name != "airplane" {
		t.Errorf("artifact name = %q, expected airplane", rec.Name)
	}
}

func TestPipelineContinuesAfterFailure(t *testing.T) {
	cfg := testConfig(t)
	stageFile(t, cfg.InputFolder, "bad.stl")
	stageFile(t, cfg.InputFolder, "good.glb")

	rend := &captureRenderer{}
	pipe := NewPipeline(cfg, rend, nil)
	pipe.Scene().factory = func(format string) FormatConvert {
		if format == STL {
			return &stubConvert{err: errors.New("corrupt file")}
		}
		return &stubConvert{mesh: twoTriangleMesh()}
	}

	if err := pipe.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if rend.calls != 1 {
		t.Errorf("renderer called %d times, expected 1", rend.calls)
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputFolder, "good", "good.json")); err != nil {
		t.Errorf("good asset not processed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputFolder, "bad")); !os.IsNotExist(err) {
		t.Error("failed asset still created an output folder")
	}
}

// failingRenderer rejects every render call.
type failingRenderer struct{}

func (failingRenderer) Render(scene *SceneContext, req RenderRequest) error {
	return errors.New("rasterizer failure")
}

func TestPipelineCleansUpAfterRenderFailure(t *testing.T) {
	cfg := testConfig(t)
	stageFile(t, cfg.InputFolder, "chair.glb")

	pipe := NewPipeline(cfg, failingRenderer{}, nil)
	pipe.Scene().factory = func(string) FormatConvert {
		return &stubConvert{mesh: twoTriangleMesh()}
	}

	if err := pipe.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputFolder, "chair")); !os.IsNotExist(err) {
		t.Error("failed render left a partial output folder behind")
	}
}

func TestPipelineIgnoresUnrecognizedFiles(t *testing.T) {
	cfg := testConfig(t)
	stageFile(t, cfg.InputFolder, "notes.txt")

	rend := &captureRenderer{}
	pipe := NewPipeline(cfg, rend, nil)
	if err := pipe.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if rend.calls != 0 {
		t.Errorf("renderer called for an unrecognized file")
	}
}
