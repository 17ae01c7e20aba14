package meshprep

import (
	"path/filepath"
	"strings"

	mst "github.com/flywave/go-mst"
)

const (
	THREEDS = "3ds"
	FBX     = "fbx"
	GLTF    = "gltf"
	GLB     = "glb"
	OBJ     = "obj"
	STL     = "stl"
)

// FormatConvert reads one source asset into the intermediate mst mesh
// together with its bounding box.
type FormatConvert interface {
	Convert(path string) (*mst.Mesh, *[6]float64, error)
}

func FormatFactory(format string) FormatConvert {
	switch format {
	case THREEDS:
		return &ThreeDsToMst{}
	case FBX:
		return &FbxToMst{}
	case GLTF, GLB:
		return &GltfToMst{}
	case OBJ:
		return &ObjToMst{}
	case STL:
		return NewStlToMst()
	}
	return nil
}

// fallbackMaterial appends the grey slot used when source geometry
// references a material that does not exist, and returns its batch index.
func fallbackMaterial(mh *mst.Mesh) int32 {
	idx := int32(len(mh.Materials))
	mh.Materials = append(mh.Materials, &mst.BaseMaterial{
		Color: [3]byte{200, 200, 200},
	})
	return idx
}

// FormatOf maps a file path to its recognized format, or "" when the
// extension is not supported.
func FormatOf(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if FormatFactory(ext) == nil {
		return ""
	}
	return ext
}
