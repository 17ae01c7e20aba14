package meshprep

import (
	"path/filepath"
	"testing"

	mst "github.com/flywave/go-mst"
	stl "github.com/flywave/go-stl"
	"github.com/flywave/go3d/vec3"
)

func TestStlToMstConvert(t *testing.T) {
	testSolid := &stl.Solid{
		Name: "TestCube",
		Triangles: []stl.Triangle{
			{
				Normal: vec3.T{0, 0, 1},
				Vertices: [3]vec3.T{
					{0, 0, 0}, {1, 0, 0}, {0, 1, 0},
				},
			},
			{
				Normal: vec3.T{0, 0, 1},
				Vertices: [3]vec3.T{
					{1, 0, 0}, {1, 1, 0}, {0, 1, 0},
				},
			},
		},
	}

	tempFile := filepath.Join(t.TempDir(), "test_cube.stl")
	if err := testSolid.WriteFile(tempFile); err != nil {
		t.Fatalf("writing test stl: %v", err)
	}

	converter := NewStlToMst()
	mesh, bbox, err := converter.Convert(tempFile)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	if len(mesh.Materials) != 1 {
		t.Fatalf("material count = %d, expected 1", len(mesh.Materials))
	}
	baseMaterial, ok := mesh.Materials[0].(*mst.BaseMaterial)
	if !ok {
		t.Fatal("material is not a BaseMaterial")
	}
	if baseMaterial.Color != [3]byte{200, 200, 200} {
		t.Errorf("material color = %v, expected default grey", baseMaterial.Color)
	}

	if len(mesh.Nodes) != 1 {
		t.Fatalf("node count = %d, expected 1", len(mesh.Nodes))
	}
	node := mesh.Nodes[0]
	if len(node.Vertices) != 6 {
		t.Errorf("vertex count = %d, expected 6", len(node.Vertices))
	}
	if len(node.FaceGroup) != 1 {
		t.Fatalf("face group count = %d, expected 1", len(node.FaceGroup))
	}
	faceGroup := node.FaceGroup[0]
	if len(faceGroup.Faces) != 2 {
		t.Errorf("face count = %d, expected 2", len(faceGroup.Faces))
	}
	if faceGroup.Batchid != 0 {
		t.Errorf("face group batchid = %d, expected 0", faceGroup.Batchid)
	}

	expectedBbox := [6]float64{0, 0, 0, 1, 1, 0}
	for i, v := range bbox {
		if v != expectedBbox[i] {
			t.Errorf("bbox[%d] = %f, expected %f", i, v, expectedBbox[i])
		}
	}
}

func TestStlToMstConvertFromSolid(t *testing.T) {
	testSolid := &stl.Solid{
		Triangles: []stl.Triangle{
			{
				Vertices: [3]vec3.T{
					{1, 2, 3}, {4, 5, 6}, {7, 8, 9},
				},
			},
		},
	}

	converter := NewStlToMst()
	mesh, _, err := converter.ConvertFromSolid(testSolid)
	if err != nil {
		t.Fatalf("ConvertFromSolid failed: %v", err)
	}

	if len(mesh.Nodes) != 1 {
		t.Fatalf("node count = %d, expected 1", len(mesh.Nodes))
	}
	node := mesh.Nodes[0]
	if len(node.Vertices) != 3 {
		t.Errorf("vertex count = %d, expected 3", len(node.Vertices))
	}

	expectedVertices := []vec3.T{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}
	for i, expected := range expectedVertices {
		if node.Vertices[i] != expected {
			t.Errorf("vertex[%d] = %v, expected %v", i, node.Vertices[i], expected)
		}
	}
}

func TestStlStagesThroughScene(t *testing.T) {
	testSolid := &stl.Solid{
		Triangles: []stl.Triangle{
			{Vertices: [3]vec3.T{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}},
		},
	}
	path := filepath.Join(t.TempDir(), "part.stl")
	if err := testSolid.WriteFile(path); err != nil {
		t.Fatal(err)
	}

	s := NewSceneContext()
	if err := s.ImportAsset(path); err != nil {
		t.Fatalf("ImportAsset failed: %v", err)
	}
	objs := s.MeshObjects()
	if len(objs) != 1 {
		t.Fatalf("staged %d objects, expected 1", len(objs))
	}
	if objs[0].ObjectName() != "part" {
		t.Errorf("object name = %q, expected part", objs[0].ObjectName())
	}
	if objs[0].Mesh.VertexCount() != 3 {
		t.Errorf("vertex count = %d, expected 3", objs[0].Mesh.VertexCount())
	}
}
