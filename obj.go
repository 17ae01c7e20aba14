package meshprep

import (
	"os"
	"path/filepath"

	mst "github.com/flywave/go-mst"
	gobj "github.com/flywave/go-obj"
	dvec3 "github.com/flywave/go3d/float64/vec3"
	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"
)

// ObjToMst converts Wavefront OBJ assets. Faces group by material name,
// polygons fan-triangulate, and diffuse textures referenced from the MTL
// file load from disk relative to the OBJ.
type ObjToMst struct {
	currentPath string
}

func (obj *ObjToMst) Convert(path string) (*mst.Mesh, *[6]float64, error) {
	obj.currentPath = path
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	reader := &gobj.ObjReader{}
	if err := reader.Read(file); err != nil {
		return nil, nil, err
	}

	ext := dvec3.MinBox
	mesh := mst.NewMesh()
	meshNode := &mst.MeshNode{}

	groups := make(map[string]*mst.MeshTriangle)
	mtlIndex := make(map[string]int)
	var mtlOrder []string

	for _, face := range reader.F {
		name := face.Material
		if name == "" {
			name = "default"
		}
		mtg, ok := groups[name]
		if !ok {
			mtg = &mst.MeshTriangle{Batchid: int32(len(mtlOrder))}
			groups[name] = mtg
			mtlIndex[name] = len(mtlOrder)
			mtlOrder = append(mtlOrder, name)
			meshNode.FaceGroup = append(meshNode.FaceGroup, mtg)
		}
		if len(face.Corners) < 3 {
			continue
		}
		for _, tri := range triangulateCorners(face.Corners) {
			obj.addTriangle(mtg, tri, reader, meshNode, &ext)
		}
	}

	mesh.Materials = obj.loadMaterials(reader, mtlOrder)
	mesh.Nodes = append(mesh.Nodes, meshNode)
	return mesh, ext.Array(), nil
}

func triangulateCorners(corners []gobj.FaceCorner) [][]gobj.FaceCorner {
	if len(corners) == 3 {
		return [][]gobj.FaceCorner{corners}
	}
	var tris [][]gobj.FaceCorner
	for i := 1; i < len(corners)-1; i++ {
		tris = append(tris, []gobj.FaceCorner{corners[0], corners[i], corners[i+1]})
	}
	return tris
}

func (obj *ObjToMst) addTriangle(mtg *mst.MeshTriangle, tri []gobj.FaceCorner, reader *gobj.ObjReader, nd *mst.MeshNode, ext *dvec3.Box) {
	if len(tri) != 3 {
		return
	}
	base := uint32(len(nd.Vertices))
	for _, corner := range tri {
		var pos vec3.T
		if corner.VertexIndex >= 0 && corner.VertexIndex < len(reader.V) {
			pos = reader.V[corner.VertexIndex]
		}
		var tc vec2.T
		if corner.TexCoordIndex >= 0 && corner.TexCoordIndex < len(reader.VT) {
			tc = reader.VT[corner.TexCoordIndex]
		}
		var nrm vec3.T
		if corner.NormalIndex >= 0 && corner.NormalIndex < len(reader.VN) {
			nrm = reader.VN[corner.NormalIndex]
		}
		nd.Vertices = append(nd.Vertices, pos)
		nd.TexCoords = append(nd.TexCoords, tc)
		nd.Normals = append(nd.Normals, nrm)
		ext.Extend(&dvec3.T{float64(pos[0]), float64(pos[1]), float64(pos[2])})
	}
	mtg.Faces = append(mtg.Faces, &mst.Face{Vertex: [3]uint32{base, base + 1, base + 2}})
}

// loadMaterials resolves the MTL library next to the OBJ and produces one
// mst material per used material name, in batch order.
func (obj *ObjToMst) loadMaterials(reader *gobj.ObjReader, order []string) []mst.MeshMaterial {
	if len(order) == 0 {
		return []mst.MeshMaterial{&mst.BaseMaterial{Color: [3]byte{255, 255, 255}}}
	}

	var mtlLib map[string]*gobj.Material
	if reader.MTL != "" {
		mtlPath := reader.MTL
		if !filepath.IsAbs(mtlPath) {
			mtlPath = filepath.Join(filepath.Dir(obj.currentPath), reader.MTL)
		}
		if loaded, err := gobj.ReadMaterials(mtlPath); err == nil {
			mtlLib = loaded
		}
	}

	materials := make([]mst.MeshMaterial, len(order))
	for i, name := range order {
		src := mtlLib[name]
		if src == nil {
			materials[i] = &mst.BaseMaterial{Color: [3]byte{200, 200, 200}}
			continue
		}
		mtl := &mst.TextureMaterial{
			BaseMaterial: mst.BaseMaterial{
				Color:        byteColor(src.Diffuse),
				Transparency: 1 - float32(src.Opacity),
			},
		}
		if src.DiffuseTexture != "" {
			if tex := obj.loadTexture(src.DiffuseTexture); tex != nil {
				mtl.Texture = tex
			}
		}
		materials[i] = mtl
	}
	return materials
}

func (obj *ObjToMst) loadTexture(texturePath string) *mst.Texture {
	dir := filepath.Dir(obj.currentPath)
	fullPath := filepath.Join(dir, texturePath)
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		fullPath = filepath.Join(dir, filepath.Base(texturePath))
		if _, err := os.Stat(fullPath); os.IsNotExist(err) {
			return nil
		}
	}
	tex, err := convertTex(fullPath, 0)
	if err != nil {
		return nil
	}
	return tex
}

func byteColor(c []float32) [3]byte {
	if len(c) < 3 {
		return [3]byte{255, 255, 255}
	}
	return [3]byte{byte(c[0] * 255), byte(c[1] * 255), byte(c[2] * 255)}
}

var _ FormatConvert = (*ObjToMst)(nil)
