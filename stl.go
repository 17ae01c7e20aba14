package meshprep

import (
	"fmt"

	mst "github.com/flywave/go-mst"
	stl "github.com/flywave/go-stl"
	dvec3 "github.com/flywave/go3d/float64/vec3"
)

// StlToMst converts STL assets. STL carries no material data, so the
// whole solid gets one default grey slot.
type StlToMst struct{}

func NewStlToMst() *StlToMst {
	return &StlToMst{}
}

func (cv *StlToMst) Convert(path string) (*mst.Mesh, *[6]float64, error) {
	solid, err := stl.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading stl %s: %w", path, err)
	}
	return cv.ConvertFromSolid(solid)
}

func (cv *StlToMst) ConvertFromSolid(solid *stl.Solid) (*mst.Mesh, *[6]float64, error) {
	mesh := mst.NewMesh()
	mesh.Materials = append(mesh.Materials, &mst.BaseMaterial{
		Color: [3]byte{200, 200, 200},
	})

	meshNode := &mst.MeshNode{}
	bbox := dvec3.MinBox
	faceGroup := &mst.MeshTriangle{Batchid: 0}

	for _, triangle := range solid.Triangles {
		for _, vertex := range triangle.Vertices {
			meshNode.Vertices = append(meshNode.Vertices, vertex)
			v3d := dvec3.T{float64(vertex[0]), float64(vertex[1]), float64(vertex[2])}
			bbox.Extend(&v3d)
		}
		baseIdx := uint32(len(meshNode.Vertices) - 3)
		faceGroup.Faces = append(faceGroup.Faces, &mst.Face{
			Vertex: [3]uint32{baseIdx, baseIdx + 1, baseIdx + 2},
		})
	}

	meshNode.FaceGroup = append(meshNode.FaceGroup, faceGroup)
	meshNode.ReComputeNormal()
	mesh.Nodes = append(mesh.Nodes, meshNode)
	return mesh, bbox.Array(), nil
}

var _ FormatConvert = (*StlToMst)(nil)
