package meshprep

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/SurajWijewickrama/AutoMesh-GGT-VQ/internal/config"
)

// assetStage names the per-asset pipeline states, in order. Skipped is
// reachable from staged and merged only.
type assetStage string

const (
	stageStaged   assetStage = "staged"
	stageMerged   assetStage = "merged"
	stageReduced  assetStage = "reduced"
	stageStripped assetStage = "stripped"
	stageHelpers  assetStage = "helpers-added"
	stageRendered assetStage = "rendered"
	stageExported assetStage = "exported"
	stageDone     assetStage = "done"
	stageSkipped  assetStage = "skipped"
)

// Pipeline drives the batch: one asset at a time through stage, merge,
// reduce, strip, render and export. The scene is process-exclusive state,
// so assets are strictly sequential; a failed asset is skipped and the
// batch continues.
type Pipeline struct {
	cfg      *config.Config
	renderer Renderer
	scene    *SceneContext
	log      *zap.Logger
}

func NewPipeline(cfg *config.Config, renderer Renderer, log *zap.Logger) *Pipeline {
	if renderer == nil {
		renderer = NewSoftwareRenderer(cfg.Render.ImageWidth, cfg.Render.ImageHeight)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		cfg:      cfg,
		renderer: renderer,
		scene:    NewSceneContext(),
		log:      log,
	}
}

// Scene exposes the pipeline's scene context, mainly for tests.
func (p *Pipeline) Scene() *SceneContext { return p.scene }

// Run scans the input folder for recognized assets and processes them in
// filename order. Per-asset failures never abort the batch.
func (p *Pipeline) Run() error {
	entries, err := os.ReadDir(p.cfg.InputFolder)
	if err != nil {
		return fmt.Errorf("reading input folder: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || FormatOf(e.Name()) == "" {
			continue
		}
		files = append(files, filepath.Join(p.cfg.InputFolder, e.Name()))
	}
	sort.Strings(files)

	if len(files) == 0 {
		p.log.Info("no assets found in input folder", zap.String("folder", p.cfg.InputFolder))
		return nil
	}
	if err := os.MkdirAll(p.cfg.OutputFolder, 0o755); err != nil {
		return fmt.Errorf("creating output folder: %w", err)
	}

	done, skipped := 0, 0
	for _, f := range files {
		if err := p.ProcessAsset(f); err != nil {
			skipped++
			if errors.Is(err, ErrNoMeshObjects) {
				p.log.Info("asset skipped, no mesh objects", zap.String("asset", f))
			} else {
				p.log.Warn("asset skipped", zap.String("asset", f), zap.Error(err))
			}
			continue
		}
		done++
	}
	p.log.Info("batch finished", zap.Int("processed", done), zap.Int("skipped", skipped))
	return nil
}

// ProcessAsset runs one asset through the whole stage chain. The scene is
// cleared before staging and again on the way out, so no state leaks
// between assets.
func (p *Pipeline) ProcessAsset(path string) error {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	log := p.log.With(zap.String("asset", base))
	log.Info("processing asset", zap.String("path", path))

	p.scene.Clear()
	defer p.scene.Clear()

	if err := p.scene.ImportAsset(path); err != nil {
		return err
	}
	p.advance(log, stageStaged)

	merged := p.scene.JoinMeshes()
	if merged == nil {
		p.advance(log, stageSkipped)
		return fmt.Errorf("%s: %w", base, ErrNoMeshObjects)
	}
	p.advance(log, stageMerged)

	stats, err := p.reduceObject(merged, p.cfg.TargetVertexCount)
	if err != nil {
		return err
	}
	if stats.Skipped {
		log.Info("vertex count within target",
			zap.Int("vertices", stats.Initial), zap.Int("target", stats.Target))
	} else {
		log.Info("reduced vertices",
			zap.Int("from", stats.Initial), zap.Int("to", stats.Final),
			zap.Float64("ratio", stats.Ratio))
	}
	p.advance(log, stageReduced)

	if len(merged.Mesh.Materials) == 0 {
		log.Info("no materials found to process")
	} else {
		stripped := StripTextures(merged.Mesh)
		log.Debug("stripped textures", zap.Int("removed", stripped))
	}
	p.advance(log, stageStripped)

	p.scene.AddGroundPlaneAndLight()
	p.advance(log, stageHelpers)

	outDir := filepath.Join(p.cfg.OutputFolder, base)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating asset folder: %w", err)
	}

	angle := strconv.FormatFloat(p.cfg.Render.Angle, 'f', -1, 64)
	imgPath := filepath.Join(outDir, fmt.Sprintf("%s_%s.png", base, angle))
	req := RenderRequest{
		CameraLocation: CameraLocationFor(p.cfg.Render.Angle, p.cfg.Render.Distance, p.cfg.Render.Height),
		OutputPath:     imgPath,
	}
	if err := p.renderer.Render(p.scene, req); err != nil {
		os.RemoveAll(outDir)
		return fmt.Errorf("rendering %s: %w", base, err)
	}
	log.Info("rendered image", zap.String("path", imgPath))
	p.advance(log, stageRendered)

	name := p.cfg.Export.Name
	if name == "" {
		name = base
	}
	jsonPath := filepath.Join(outDir, base+".json")
	rec := BuildExportRecord(name, merged.Mesh)
	if err := WriteExportRecord(jsonPath, rec); err != nil {
		os.RemoveAll(outDir)
		return err
	}
	log.Info("exported mesh json", zap.String("path", jsonPath))
	p.advance(log, stageExported)

	p.advance(log, stageDone)
	return nil
}

// reduceObject guards the host boundary: only mesh objects may reach the
// reducer. Mirrors the reducer's type-mismatch contract.
func (p *Pipeline) reduceObject(obj SceneObject, target int) (ReduceStats, error) {
	mo, err := AsMesh(obj)
	if err != nil {
		return ReduceStats{}, err
	}
	return ReduceVertices(mo.Mesh, target)
}

func (p *Pipeline) advance(log *zap.Logger, st assetStage) {
	log.Debug("stage", zap.String("state", string(st)))
}
