package meshprep

import (
	"errors"
	"math"
	"reflect"
	"testing"

	mst "github.com/flywave/go-mst"
	dvec3 "github.com/flywave/go3d/float64/vec3"
	"github.com/flywave/go3d/vec3"
)

func TestDeriveEdges(t *testing.T) {
	faces := [][]int{{0, 1, 2}, {2, 1, 3}}
	edges := DeriveEdges(faces)
	want := [][2]int{{0, 1}, {1, 2}, {0, 2}, {1, 3}, {2, 3}}
	if !reflect.DeepEqual(edges, want) {
		t.Errorf("edges = %v, expected %v", edges, want)
	}
}

func TestDeriveEdgesQuad(t *testing.T) {
	edges := DeriveEdges([][]int{{0, 1, 2, 3}})
	want := [][2]int{{0, 1}, {1, 2}, {2, 3}, {0, 3}}
	if !reflect.DeepEqual(edges, want) {
		t.Errorf("edges = %v, expected %v", edges, want)
	}
}

func TestTransformApplyRotation(t *testing.T) {
	tr := Transform{Rotation: dvec3.T{0, 0, math.Pi / 2}, Scale: dvec3.T{1, 1, 1}}
	got := tr.Apply(dvec3.T{1, 0, 0})
	want := dvec3.T{0, 1, 0}
	for i := 0; i < 3; i++ {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("rotated = %v, expected %v", got, want)
		}
	}
}

func TestTransformApplyInverseRoundTrip(t *testing.T) {
	tr := Transform{
		Location: dvec3.T{1, -2, 0.5},
		Rotation: dvec3.T{0.3, -0.7, 1.1},
		Scale:    dvec3.T{2, 0.5, 3},
	}
	v := dvec3.T{0.25, -1.5, 4}
	got := tr.ApplyInverse(tr.Apply(v))
	for i := 0; i < 3; i++ {
		if math.Abs(got[i]-v[i]) > 1e-9 {
			t.Fatalf("round trip = %v, expected %v", got, v)
		}
	}
}

func TestMeshFromNode(t *testing.T) {
	nd := &mst.MeshNode{
		Vertices: []vec3.T{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		FaceGroup: []*mst.MeshTriangle{{
			Batchid: 0,
			Faces:   []*mst.Face{{Vertex: [3]uint32{0, 1, 2}}},
		}},
	}
	mtls := []mst.MeshMaterial{
		&mst.TextureMaterial{
			BaseMaterial: mst.BaseMaterial{Color: [3]byte{255, 0, 0}},
			Texture:      &mst.Texture{},
		},
	}

	m := MeshFromNode("tri", nd, mtls)
	if m.Name != "tri" {
		t.Errorf("name = %q", m.Name)
	}
	if m.VertexCount() != 3 || len(m.Faces) != 1 || len(m.Edges) != 3 {
		t.Errorf("counts = %d verts, %d faces, %d edges",
			m.VertexCount(), len(m.Faces), len(m.Edges))
	}
	if m.Transform != IdentityTransform() {
		t.Errorf("transform = %v, expected identity", m.Transform)
	}
	if len(m.Materials) != 1 {
		t.Fatalf("material count = %d", len(m.Materials))
	}
	mtl := m.Materials[0]
	if !mtl.UsesTexture || mtl.Image == nil {
		t.Error("texture reference not carried over")
	}
	if mtl.BaseColor[0] != 1 || mtl.BaseColor[1] != 0 || mtl.BaseColor[2] != 0 {
		t.Errorf("base color = %v, expected red", mtl.BaseColor)
	}
}

func TestAsMesh(t *testing.T) {
	mo := &MeshObject{Mesh: &Mesh{Name: "m"}}
	got, err := AsMesh(mo)
	if err != nil || got != mo {
		t.Fatalf("AsMesh on a mesh object: %v, %v", got, err)
	}

	helper := &HelperObject{Name: "Sun"}
	if _, err := AsMesh(helper); !errors.Is(err, ErrNotAMesh) {
		t.Errorf("expected ErrNotAMesh, got %v", err)
	}
}
