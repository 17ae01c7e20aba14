package meshprep

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	dvec3 "github.com/flywave/go3d/float64/vec3"
)

var (
	// ErrNoMeshObjects marks an asset whose import produced no mesh
	// geometry. The batch skips the asset and moves on.
	ErrNoMeshObjects = errors.New("no mesh objects in scene")

	// ErrNotAMesh marks a mesh operation invoked on a non-mesh scene
	// object. This is an invariant violation, not a recoverable state.
	ErrNotAMesh = errors.New("scene object is not a mesh")

	// ErrUnknownFormat marks an asset whose extension no converter claims.
	ErrUnknownFormat = errors.New("unrecognized asset format")
)

// SceneObject is anything staged into a scene: mesh objects and render
// helpers. Only *MeshObject participates in the geometry pipeline.
type SceneObject interface {
	ObjectName() string
}

// MeshObject is a staged mesh with its transform, the only object kind
// accepted by merge, reduce, strip and export.
type MeshObject struct {
	Mesh *Mesh
}

func (o *MeshObject) ObjectName() string { return o.Mesh.Name }

// HelperObject is staging-only scenery: the ground plane and the sun
// light. Helpers render but never merge or export.
type HelperObject struct {
	Name     string
	Mesh     *Mesh   // nil for lights
	Location dvec3.T // light position when Mesh is nil
	Color    [4]float64
}

func (o *HelperObject) ObjectName() string { return o.Name }

// AsMesh narrows a scene object to a mesh object. Anything else reports
// ErrNotAMesh.
func AsMesh(obj SceneObject) (*MeshObject, error) {
	mo, ok := obj.(*MeshObject)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotAMesh, obj.ObjectName())
	}
	return mo, nil
}

// SceneContext owns all objects staged for one asset. The orchestrator
// creates it, passes it through every stage, and clears it before the
// next asset; nothing survives a Clear.
type SceneContext struct {
	objects []SceneObject
	helpers []*HelperObject

	// factory resolves a format name to its converter. Overridable so
	// pipeline tests can stage synthetic assets.
	factory func(format string) FormatConvert
}

func NewSceneContext() *SceneContext {
	return &SceneContext{factory: FormatFactory}
}

// ImportAsset converts the file at path and stages one mesh object per
// converted node. Nodes without faces are not staged.
func (s *SceneContext) ImportAsset(path string) error {
	format := FormatOf(path)
	if format == "" {
		return fmt.Errorf("%w: %s", ErrUnknownFormat, filepath.Ext(path))
	}
	conv := s.factory(format)
	if conv == nil {
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
	mh, _, err := conv.Convert(path)
	if err != nil {
		return fmt.Errorf("importing %s: %w", path, err)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for i, nd := range mh.Nodes {
		if len(nd.FaceGroup) == 0 || len(nd.Vertices) == 0 {
			continue
		}
		name := base
		if i > 0 {
			name = fmt.Sprintf("%s.%03d", base, i)
		}
		s.objects = append(s.objects, &MeshObject{Mesh: MeshFromNode(name, nd, mh.Materials)})
	}
	return nil
}

// MeshObjects returns the staged mesh objects in staging order.
func (s *SceneContext) MeshObjects() []*MeshObject {
	var out []*MeshObject
	for _, obj := range s.objects {
		if mo, ok := obj.(*MeshObject); ok {
			out = append(out, mo)
		}
	}
	return out
}

// Objects returns every staged object, helpers included.
func (s *SceneContext) Objects() []SceneObject {
	return s.objects
}

// Helpers returns the staged render helpers.
func (s *SceneContext) Helpers() []*HelperObject {
	return s.helpers
}

// AddGroundPlaneAndLight stages the fixed render scenery: a dark ground
// plane off to one side and a sun light above the origin. Staged after
// the merge so they can never join the mesh set.
func (s *SceneContext) AddGroundPlaneAndLight() (*HelperObject, *HelperObject) {
	plane := &HelperObject{
		Name:  "Ground_Plane",
		Color: [4]float64{0, 0, 0, 1},
		Mesh: &Mesh{
			Name: "Ground_Plane",
			Vertices: []dvec3.T{
				{-5, -15, 0}, {5, -15, 0}, {5, -5, 0}, {-5, -5, 0},
			},
			Faces:     [][]int{{0, 1, 2, 3}},
			Transform: IdentityTransform(),
		},
	}
	plane.Mesh.Edges = DeriveEdges(plane.Mesh.Faces)

	light := &HelperObject{
		Name:     "Sun",
		Location: dvec3.T{5, 5, 10},
		Color:    [4]float64{1, 1, 1, 1},
	}

	s.objects = append(s.objects, plane, light)
	s.helpers = append(s.helpers, plane, light)
	return plane, light
}

// Clear releases every staged object and helper.
func (s *SceneContext) Clear() {
	s.objects = nil
	s.helpers = nil
}
