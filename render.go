package meshprep

import (
	"math"

	dvec3 "github.com/flywave/go3d/float64/vec3"
	"github.com/fogleman/fauxgl"
)

// RenderRequest is the one-shot camera pose handed to a renderer. Built
// per render call and discarded after.
type RenderRequest struct {
	CameraLocation dvec3.T
	LookAt         dvec3.T
	OutputPath     string
}

// CameraLocationFor places the camera on a circle around the world
// origin: angle degrees around Z at the given distance, raised to height.
func CameraLocationFor(angleDeg, distance, height float64) dvec3.T {
	rad := angleDeg * math.Pi / 180
	return dvec3.T{distance * math.Cos(rad), distance * math.Sin(rad), height}
}

// Renderer renders the current scene to an image file from a camera pose.
type Renderer interface {
	Render(scene *SceneContext, req RenderRequest) error
}

// SoftwareRenderer rasterizes the scene offline, no GPU involved. Mesh
// objects draw with their first material color, helpers with their own;
// the sun helper supplies the light direction.
type SoftwareRenderer struct {
	Width  int
	Height int
	FOV    float64
}

func NewSoftwareRenderer(width, height int) *SoftwareRenderer {
	return &SoftwareRenderer{Width: width, Height: height, FOV: 50}
}

func (r *SoftwareRenderer) Render(scene *SceneContext, req RenderRequest) error {
	ctx := fauxgl.NewContext(r.Width, r.Height)
	ctx.ClearColorBufferWith(fauxgl.Black)

	eye := fauxgl.V(req.CameraLocation[0], req.CameraLocation[1], req.CameraLocation[2])
	center := fauxgl.V(req.LookAt[0], req.LookAt[1], req.LookAt[2])
	up := fauxgl.V(0, 0, 1)

	lightAt := dvec3.T{5, 5, 10}
	for _, h := range scene.Helpers() {
		if h.Mesh == nil {
			lightAt = h.Location
		}
	}
	light := fauxgl.V(lightAt[0], lightAt[1], lightAt[2]).Normalize()

	aspect := float64(r.Width) / float64(r.Height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(r.FOV, aspect, 0.1, 100)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	ctx.Shader = shader

	for _, obj := range scene.MeshObjects() {
		shader.ObjectColor = meshColor(obj.Mesh)
		ctx.DrawMesh(toFauxglMesh(obj.Mesh))
	}
	for _, h := range scene.Helpers() {
		if h.Mesh == nil {
			continue
		}
		shader.ObjectColor = fauxgl.Color{R: h.Color[0], G: h.Color[1], B: h.Color[2], A: h.Color[3]}
		ctx.DrawMesh(toFauxglMesh(h.Mesh))
	}

	return fauxgl.SavePNG(req.OutputPath, ctx.Image())
}

func meshColor(m *Mesh) fauxgl.Color {
	if len(m.Materials) == 0 {
		return fauxgl.White
	}
	c := m.Materials[0].BaseColor
	return fauxgl.Color{R: c[0], G: c[1], B: c[2], A: c[3]}
}

// toFauxglMesh fan-triangulates the mesh in world space.
func toFauxglMesh(m *Mesh) *fauxgl.Mesh {
	var tris []*fauxgl.Triangle
	point := func(idx int) fauxgl.Vector {
		w := m.Transform.Apply(m.Vertices[idx])
		return fauxgl.V(w[0], w[1], w[2])
	}
	for _, f := range m.Faces {
		for i := 1; i < len(f)-1; i++ {
			tris = append(tris, fauxgl.NewTriangleForPoints(point(f[0]), point(f[i]), point(f[i+1])))
		}
	}
	return fauxgl.NewTriangleMesh(tris)
}
