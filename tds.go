package meshprep

import (
	"path/filepath"

	tds "github.com/flywave/go-3ds"
	mst "github.com/flywave/go-mst"
	dmat "github.com/flywave/go3d/float64/mat4"
	quat "github.com/flywave/go3d/float64/quaternion"
	dvec3 "github.com/flywave/go3d/float64/vec3"
	dvec4 "github.com/flywave/go3d/float64/vec4"
	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"
)

// ThreeDsToMst converts 3DS assets. Instanced meshes are expanded into
// one node per placement with the instance transform baked in, since the
// pipeline joins everything into a single object immediately after
// staging.
type ThreeDsToMst struct {
	texId   int
	baseDir string
}

func (cv *ThreeDsToMst) Convert(path string) (*mst.Mesh, *[6]float64, error) {
	mesh := mst.NewMesh()

	f := tds.OpenFile(path)
	mhs := f.GetMeshs()
	mtls := f.GetMaterials()

	instances := make(map[string][]*tds.MeshInstanceNode)
	for _, nd := range f.GetMeshInstanceNode() {
		instances[nd.InstanceName] = append(instances[nd.InstanceName], nd)
	}

	cv.baseDir = filepath.Dir(path)
	ext := dvec3.MinBox

	for i := range mhs {
		m := &mhs[i]
		nds, ok := instances[m.Name]
		if !ok {
			bx := cv.convertMesh(m, mesh, mtls, nil)
			ext.Join(bx)
			continue
		}
		for _, inst := range nds {
			bx := cv.convertMesh(m, mesh, mtls, cv.instanceMatrix(inst))
			ext.Join(bx)
		}
	}
	return mesh, ext.Array(), nil
}

func (cv *ThreeDsToMst) convertMesh(m *tds.Mesh, mstMesh *mst.Mesh, mtls []tds.Material, placement *dmat.T) *dvec3.Box {
	ext := dvec3.MinBox
	nd := &mst.MeshNode{}

	mat := dmat.Ident
	for i, row := range m.Matrix {
		mat[i] = dvec4.T{float64(row[0]), float64(row[1]), float64(row[2]), float64(row[3])}
	}
	if placement != nil {
		combined := dmat.Ident
		combined.AssignMul(placement, &mat)
		mat = combined
	}

	for _, v := range m.Vertices {
		vt := dvec3.T{float64(v[0]), float64(v[1]), float64(v[2])}
		vt = mat.MulVec3(&vt)
		ext.Extend(&vt)
		nd.Vertices = append(nd.Vertices, vec3.T{float32(vt[0]), float32(vt[1]), float32(vt[2])})
	}
	for _, v := range m.Texcos {
		nd.TexCoords = append(nd.TexCoords, vec2.T{v[0], v[1]})
	}

	tgMap := make(map[int32]*mst.MeshTriangle)
	for _, fc := range m.Faces {
		tg, ok := tgMap[fc.Material]
		if !ok {
			tg = &mst.MeshTriangle{Batchid: int32(len(mstMesh.Materials))}
			tgMap[fc.Material] = tg
			nd.FaceGroup = append(nd.FaceGroup, tg)
			if int(fc.Material) >= 0 && int(fc.Material) < len(mtls) {
				cv.convertMaterial(mstMesh, &mtls[fc.Material])
			} else {
				fallbackMaterial(mstMesh)
			}
		}
		tg.Faces = append(tg.Faces, &mst.Face{
			Vertex: [3]uint32{uint32(fc.Index[0]), uint32(fc.Index[1]), uint32(fc.Index[2])},
		})
	}
	mstMesh.Nodes = append(mstMesh.Nodes, nd)
	return &ext
}

func (cv *ThreeDsToMst) convertMaterial(mesh *mst.Mesh, m *tds.Material) {
	mtl := &mst.PhongMaterial{}
	mesh.Materials = append(mesh.Materials, mtl)
	mtl.Color[0] = byte(m.Diffuse[0] * 255)
	mtl.Color[1] = byte(m.Diffuse[1] * 255)
	mtl.Color[2] = byte(m.Diffuse[2] * 255)
	mtl.Transparency = m.Transparency

	mtl.Ambient[0] = byte(m.Ambient[0] * 255)
	mtl.Ambient[1] = byte(m.Ambient[1] * 255)
	mtl.Ambient[2] = byte(m.Ambient[2] * 255)

	mtl.Specular[0] = byte(m.Specular[0] * 255)
	mtl.Specular[1] = byte(m.Specular[1] * 255)
	mtl.Specular[2] = byte(m.Specular[2] * 255)
	mtl.Shininess = m.Shininess

	texPath := ""
	for i := range m.Texture1Map.Name {
		if m.Texture1Map.Name[i] == 0 {
			texPath = string(m.Texture1Map.Name[:i])
			break
		}
	}
	if texPath == "" {
		return
	}
	t, err := convertTex(filepath.Join(cv.baseDir, texPath), cv.texId)
	if err != nil {
		return
	}
	cv.texId++
	mtl.Texture = t
}

func (cv *ThreeDsToMst) instanceMatrix(nd *tds.MeshInstanceNode) *dmat.T {
	m := &dmat.T{}
	q := quat.FromVec4(&dvec4.T{float64(nd.Rot[0]), float64(nd.Rot[1]), float64(nd.Rot[2]), float64(nd.Rot[3])})
	t := &dvec3.T{float64(nd.Pos[0]), float64(nd.Pos[1]), float64(nd.Pos[2])}
	s := &dvec3.T{float64(nd.Scl[0]), float64(nd.Scl[1]), float64(nd.Scl[2])}
	m.AssignQuaternion(&q)
	m.ScaleVec3(s)
	m.Translate(t)
	return m
}

var _ FormatConvert = (*ThreeDsToMst)(nil)
