package meshprep

import (
	"math"
	"testing"

	dvec3 "github.com/flywave/go3d/float64/vec3"
	"github.com/fogleman/fauxgl"
)

func TestCameraLocationFor(t *testing.T) {
	got := CameraLocationFor(0, 5, 2)
	want := dvec3.T{5, 0, 2}
	for i := 0; i < 3; i++ {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("location = %v, expected %v", got, want)
		}
	}

	got = CameraLocationFor(45, 5, 2)
	d := 5 * math.Sqrt2 / 2
	want = dvec3.T{d, d, 2}
	for i := 0; i < 3; i++ {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("location = %v, expected %v", got, want)
		}
	}
}

func TestToFauxglMeshTriangulates(t *testing.T) {
	m := &Mesh{
		Vertices: []dvec3.T{
			{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		},
		Faces:     [][]int{{0, 1, 2, 3}},
		Transform: IdentityTransform(),
	}
	fm := toFauxglMesh(m)
	if len(fm.Triangles) != 2 {
		t.Errorf("triangle count = %d, expected a quad to split into 2", len(fm.Triangles))
	}
}

func TestToFauxglMeshAppliesTransform(t *testing.T) {
	m := &Mesh{
		Vertices:  []dvec3.T{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Faces:     [][]int{{0, 1, 2}},
		Transform: IdentityTransform(),
	}
	m.Transform.Location = dvec3.T{0, 0, 3}

	fm := toFauxglMesh(m)
	if len(fm.Triangles) != 1 {
		t.Fatalf("triangle count = %d", len(fm.Triangles))
	}
	if fm.Triangles[0].V1.Position.Z != 3 {
		t.Errorf("vertex z = %f, expected the transform baked in", fm.Triangles[0].V1.Position.Z)
	}
}

func TestMeshColor(t *testing.T) {
	if c := meshColor(&Mesh{}); c != fauxgl.White {
		t.Errorf("default color = %v, expected white", c)
	}
	m := &Mesh{Materials: []*Material{{BaseColor: [4]float64{0.2, 0.4, 0.6, 1}}}}
	c := meshColor(m)
	if c.R != 0.2 || c.G != 0.4 || c.B != 0.6 || c.A != 1 {
		t.Errorf("color = %v, expected the first material's base color", c)
	}
}
