package meshprep

import (
	"math"

	mst "github.com/flywave/go-mst"
	dvec3 "github.com/flywave/go3d/float64/vec3"
)

// Transform is an object's placement: location, euler XYZ rotation in
// radians, and per-axis scale. World position of a local vertex v is
// Location + R*(Scale*v) with R = Rz*Ry*Rx.
type Transform struct {
	Location dvec3.T
	Rotation dvec3.T
	Scale    dvec3.T
}

func IdentityTransform() Transform {
	return Transform{Scale: dvec3.T{1, 1, 1}}
}

// rotationRows returns the rows of the combined rotation matrix Rz*Ry*Rx.
func (t *Transform) rotationRows() [3]dvec3.T {
	cx, sx := math.Cos(t.Rotation[0]), math.Sin(t.Rotation[0])
	cy, sy := math.Cos(t.Rotation[1]), math.Sin(t.Rotation[1])
	cz, sz := math.Cos(t.Rotation[2]), math.Sin(t.Rotation[2])
	return [3]dvec3.T{
		{cz * cy, cz*sy*sx - sz*cx, cz*sy*cx + sz*sx},
		{sz * cy, sz*sy*sx + cz*cx, sz*sy*cx - cz*sx},
		{-sy, cy * sx, cy * cx},
	}
}

// Apply maps a local-space vertex to world space.
func (t *Transform) Apply(v dvec3.T) dvec3.T {
	s := dvec3.T{v[0] * t.Scale[0], v[1] * t.Scale[1], v[2] * t.Scale[2]}
	r := t.rotationRows()
	rotated := dvec3.T{
		dvec3.Dot(&r[0], &s),
		dvec3.Dot(&r[1], &s),
		dvec3.Dot(&r[2], &s),
	}
	return dvec3.T{
		rotated[0] + t.Location[0],
		rotated[1] + t.Location[1],
		rotated[2] + t.Location[2],
	}
}

// ApplyInverse maps a world-space point back to local space. Zero scale
// components are left undivided.
func (t *Transform) ApplyInverse(v dvec3.T) dvec3.T {
	p := dvec3.T{v[0] - t.Location[0], v[1] - t.Location[1], v[2] - t.Location[2]}
	r := t.rotationRows()
	// rotation matrices invert by transpose
	un := dvec3.T{
		r[0][0]*p[0] + r[1][0]*p[1] + r[2][0]*p[2],
		r[0][1]*p[0] + r[1][1]*p[1] + r[2][1]*p[2],
		r[0][2]*p[0] + r[1][2]*p[1] + r[2][2]*p[2],
	}
	for i := 0; i < 3; i++ {
		if t.Scale[i] != 0 {
			un[i] /= t.Scale[i]
		}
	}
	return un
}

// Material is one material slot of a mesh. Image is an opaque texture
// handle kept only so the stripper has something to excise; the export
// pipeline never serializes it.
type Material struct {
	UsesTexture bool
	Image       *mst.Texture
	BaseColor   [4]float64
}

// Mesh is the editable in-memory mesh every pipeline stage operates on.
// Vertices are local-space; Edges hold unordered index pairs stored
// low-high; Faces are polygons as vertex index lists. Every index in
// Edges and Faces is < len(Vertices).
type Mesh struct {
	Name      string
	Vertices  []dvec3.T
	Edges     [][2]int
	Faces     [][]int
	Materials []*Material
	Transform Transform
}

// VertexCount reports the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.Vertices) }

// DeriveEdges rebuilds the edge table from the face table: one entry per
// unique undirected pair, in first-seen order.
func DeriveEdges(faces [][]int) [][2]int {
	var edges [][2]int
	seen := make(map[[2]int]bool)
	for _, f := range faces {
		n := len(f)
		for i := 0; i < n; i++ {
			a, b := f[i], f[(i+1)%n]
			if a == b {
				continue
			}
			if a > b {
				a, b = b, a
			}
			key := [2]int{a, b}
			if !seen[key] {
				seen[key] = true
				edges = append(edges, key)
			}
		}
	}
	return edges
}

// MeshFromNode builds an editable Mesh from a staged mst node. Vertices
// widen to float64, face groups flatten into one face list, and only the
// materials the node's face groups reference are carried over, in batch
// order. The transform starts as identity because every importer bakes
// node matrices into the vertices.
func MeshFromNode(name string, nd *mst.MeshNode, mtls []mst.MeshMaterial) *Mesh {
	m := &Mesh{Name: name, Transform: IdentityTransform()}
	for _, v := range nd.Vertices {
		m.Vertices = append(m.Vertices, dvec3.T{float64(v[0]), float64(v[1]), float64(v[2])})
	}
	seenBatch := make(map[int32]bool)
	for _, fg := range nd.FaceGroup {
		for _, f := range fg.Faces {
			m.Faces = append(m.Faces, []int{int(f.Vertex[0]), int(f.Vertex[1]), int(f.Vertex[2])})
		}
		if !seenBatch[fg.Batchid] {
			seenBatch[fg.Batchid] = true
			if int(fg.Batchid) >= 0 && int(fg.Batchid) < len(mtls) {
				m.Materials = append(m.Materials, materialFromMst(mtls[fg.Batchid]))
			}
		}
	}
	m.Edges = DeriveEdges(m.Faces)
	return m
}

func materialFromMst(mtl mst.MeshMaterial) *Material {
	out := &Material{BaseColor: [4]float64{1, 1, 1, 1}}
	var base *mst.BaseMaterial
	var tex *mst.TextureMaterial
	switch mt := mtl.(type) {
	case *mst.BaseMaterial:
		base = mt
	case *mst.TextureMaterial:
		base, tex = &mt.BaseMaterial, mt
	case *mst.LambertMaterial:
		base, tex = &mt.BaseMaterial, &mt.TextureMaterial
	case *mst.PhongMaterial:
		base, tex = &mt.BaseMaterial, &mt.TextureMaterial
	case *mst.PbrMaterial:
		base, tex = &mt.BaseMaterial, &mt.TextureMaterial
	}
	if base != nil {
		out.BaseColor = [4]float64{
			float64(base.Color[0]) / 255,
			float64(base.Color[1]) / 255,
			float64(base.Color[2]) / 255,
			1 - float64(base.Transparency),
		}
	}
	if tex != nil && tex.Texture != nil {
		out.UsesTexture = true
		out.Image = tex.Texture
	}
	return out
}
