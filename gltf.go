package meshprep

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"

	mst "github.com/flywave/go-mst"
	dmat "github.com/flywave/go3d/float64/mat4"
	"github.com/flywave/go3d/float64/quaternion"
	dvec3 "github.com/flywave/go3d/float64/vec3"
	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"

	"github.com/qmuntal/gltf"
)

// GltfToMst converts GLB/GLTF assets. Every document node carrying a mesh
// becomes one mst node with its full parent matrix chain baked into the
// vertices, so staged objects need no transform of their own.
type GltfToMst struct {
	doc       *gltf.Document
	parentMap map[uint32]uint32
	mtlIndex  map[uint32]int32
}

func (g *GltfToMst) Convert(path string) (*mst.Mesh, *[6]float64, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return g.ConvertFromDoc(doc)
}

func (g *GltfToMst) ConvertFromDoc(doc *gltf.Document) (*mst.Mesh, *[6]float64, error) {
	g.doc = doc
	g.parentMap = make(map[uint32]uint32)
	g.mtlIndex = make(map[uint32]int32)
	if len(doc.Scenes) > 0 {
		g.mapParents(doc.Scenes[0].Nodes)
	}

	mesh := mst.NewMesh()
	bbx := dvec3.MinBox
	for i, nd := range doc.Nodes {
		if nd.Mesh == nil {
			continue
		}
		mat, err := g.nodeMatrix(uint32(i))
		if err != nil {
			return nil, nil, err
		}
		bx, err := g.transMesh(mesh, *nd.Mesh, mat)
		if err != nil {
			return nil, nil, err
		}
		bbx.Join(bx)
	}
	return mesh, bbx.Array(), nil
}

func (g *GltfToMst) mapParents(roots []uint32) {
	for _, n := range roots {
		nd := g.doc.Nodes[n]
		for _, cn := range nd.Children {
			g.parentMap[cn] = n
		}
		g.mapParents(nd.Children)
	}
}

// nodeMatrix composes the node's TRS with its ancestors.
func (g *GltfToMst) nodeMatrix(idx uint32) (*dmat.T, error) {
	nd := g.doc.Nodes[idx]
	mat := dmat.Ident
	if pid, ok := g.parentMap[idx]; ok {
		pm, err := g.nodeMatrix(pid)
		if err != nil {
			return nil, err
		}
		mat = *pm
	}
	tra := dvec3.T{float64(nd.Translation[0]), float64(nd.Translation[1]), float64(nd.Translation[2])}
	rot := quaternion.T{float64(nd.Rotation[0]), float64(nd.Rotation[1]), float64(nd.Rotation[2]), float64(nd.Rotation[3])}
	sc := dvec3.T{float64(nd.Scale[0]), float64(nd.Scale[1]), float64(nd.Scale[2])}
	// zero-valued TRS means the document never set it
	if rot == (quaternion.T{}) {
		rot = quaternion.T{0, 0, 0, 1}
	}
	if sc == (dvec3.T{}) {
		sc = dvec3.T{1, 1, 1}
	}
	local := dmat.Compose(&tra, &rot, &sc)
	out := dmat.Ident
	out.AssignMul(&mat, local)
	return &out, nil
}

func (g *GltfToMst) transMesh(mstMh *mst.Mesh, mhid uint32, mat *dmat.T) (*dvec3.Box, error) {
	mh := g.doc.Meshes[mhid]
	nd := &mst.MeshNode{}
	bbx := dvec3.MinBox

	for _, ps := range mh.Primitives {
		if ps.Indices == nil {
			continue
		}
		offset := uint32(len(nd.Vertices))

		posIdx, ok := ps.Attributes["POSITION"]
		if !ok {
			continue
		}
		err := g.readAccessor(g.doc.Accessors[posIdx], func(res interface{}) {
			v := res.(*[3]float32)
			dv := dvec3.T{float64(v[0]), float64(v[1]), float64(v[2])}
			dv = mat.MulVec3(&dv)
			nd.Vertices = append(nd.Vertices, vec3.T{float32(dv[0]), float32(dv[1]), float32(dv[2])})
			bbx.Extend(&dv)
		})
		if err != nil {
			return nil, err
		}

		if idx, ok := ps.Attributes["TEXCOORD_0"]; ok {
			err = g.readAccessor(g.doc.Accessors[idx], func(res interface{}) {
				nd.TexCoords = append(nd.TexCoords, vec2.T(*res.(*[2]float32)))
			})
			if err != nil {
				return nil, err
			}
		}
		if idx, ok := ps.Attributes["NORMAL"]; ok {
			err = g.readAccessor(g.doc.Accessors[idx], func(res interface{}) {
				nd.Normals = append(nd.Normals, vec3.T(*res.(*[3]float32)))
			})
			if err != nil {
				return nil, err
			}
		}

		tg := &mst.MeshTriangle{Batchid: g.transMaterial(mstMh, ps.Material)}
		var fv []uint32
		err = g.readAccessor(g.doc.Accessors[int(*ps.Indices)], func(res interface{}) {
			switch fc := res.(type) {
			case *uint16:
				fv = append(fv, uint32(*fc))
			case *uint32:
				fv = append(fv, *fc)
			}
		})
		if err != nil {
			return nil, err
		}
		for i := 0; i+2 < len(fv); i += 3 {
			tg.Faces = append(tg.Faces, &mst.Face{
				Vertex: [3]uint32{offset + fv[i], offset + fv[i+1], offset + fv[i+2]},
			})
		}
		nd.FaceGroup = append(nd.FaceGroup, tg)
	}

	if len(nd.FaceGroup) > 0 {
		mstMh.Nodes = append(mstMh.Nodes, nd)
	}
	return &bbx, nil
}

func (g *GltfToMst) readAccessor(acc *gltf.Accessor, process func(interface{})) error {
	if acc.BufferView == nil {
		return errors.New("accessor has no buffer view")
	}
	bv := g.doc.BufferViews[*acc.BufferView]
	buffer := g.doc.Buffers[bv.Buffer]
	bf := bytes.NewBuffer(buffer.Data[int(bv.ByteOffset+acc.ByteOffset):int(bv.ByteOffset+bv.ByteLength)])

	var fcs interface{}
	switch acc.Type {
	case gltf.AccessorVec2:
		switch acc.ComponentType {
		case gltf.ComponentUshort:
			fcs = &[2]uint16{}
		case gltf.ComponentUint:
			fcs = &[2]uint32{}
		case gltf.ComponentFloat:
			fcs = &[2]float32{}
		}
	case gltf.AccessorVec3:
		switch acc.ComponentType {
		case gltf.ComponentUshort:
			fcs = &[3]uint16{}
		case gltf.ComponentUint:
			fcs = &[3]uint32{}
		case gltf.ComponentFloat:
			fcs = &[3]float32{}
		}
	case gltf.AccessorScalar:
		switch acc.ComponentType {
		case gltf.ComponentUshort:
			n := uint16(0)
			fcs = &n
		case gltf.ComponentUint:
			n := uint32(0)
			fcs = &n
		case gltf.ComponentFloat:
			n := float32(0)
			fcs = &n
		}
	}
	if fcs == nil {
		return errors.New("unsupported accessor layout")
	}
	for i := 0; i < int(acc.Count); i++ {
		if err := binary.Read(bf, binary.LittleEndian, fcs); err != nil {
			return err
		}
		process(fcs)
	}
	return nil
}

// transMaterial converts a document material on first use and returns its
// batch index. Primitives without a material share one default slot.
func (g *GltfToMst) transMaterial(mstMh *mst.Mesh, id *uint32) int32 {
	if id == nil {
		key := uint32(0xffffffff)
		if bid, ok := g.mtlIndex[key]; ok {
			return bid
		}
		bid := int32(len(mstMh.Materials))
		mstMh.Materials = append(mstMh.Materials, &mst.BaseMaterial{Color: [3]byte{255, 255, 255}})
		g.mtlIndex[key] = bid
		return bid
	}
	if bid, ok := g.mtlIndex[*id]; ok {
		return bid
	}

	mt := g.doc.Materials[*id]
	mtl := &mst.PbrMaterial{}
	if mt.PBRMetallicRoughness.BaseColorFactor != nil {
		mtl.Color[0] = byte(mt.PBRMetallicRoughness.BaseColorFactor[0] * 255)
		mtl.Color[1] = byte(mt.PBRMetallicRoughness.BaseColorFactor[1] * 255)
		mtl.Color[2] = byte(mt.PBRMetallicRoughness.BaseColorFactor[2] * 255)
		mtl.Transparency = 1 - float32(mt.PBRMetallicRoughness.BaseColorFactor[3])
	}
	if mt.PBRMetallicRoughness.MetallicFactor != nil {
		mtl.Metallic = float32(*mt.PBRMetallicRoughness.MetallicFactor)
	}
	if mt.PBRMetallicRoughness.RoughnessFactor != nil {
		mtl.Roughness = float32(*mt.PBRMetallicRoughness.RoughnessFactor)
	}
	if mt.PBRMetallicRoughness.BaseColorTexture != nil {
		if tex := g.embeddedTexture(mt.PBRMetallicRoughness.BaseColorTexture.Index); tex != nil {
			mtl.Texture = tex
		}
	}

	bid := int32(len(mstMh.Materials))
	mstMh.Materials = append(mstMh.Materials, mtl)
	g.mtlIndex[*id] = bid
	return bid
}

func (g *GltfToMst) embeddedTexture(texIdx uint32) *mst.Texture {
	src := g.doc.Textures[int(texIdx)].Source
	if src == nil {
		return nil
	}
	img := g.doc.Images[int(*src)]
	if img.BufferView == nil {
		return nil
	}
	view := g.doc.BufferViews[int(*img.BufferView)]
	buffer := g.doc.Buffers[int(view.Buffer)]
	data := buffer.Data[view.ByteOffset : view.ByteOffset+view.ByteLength]
	tex, err := decodeTexture(img.MimeType, bytes.NewReader(data))
	if err != nil {
		return nil
	}
	tex.Id = int32(texIdx)
	return tex
}

func decodeTexture(mime string, rd io.Reader) (*mst.Texture, error) {
	var img image.Image
	var err error
	switch mime {
	case "image/png":
		img, err = png.Decode(rd)
	case "image/jpg", "image/jpeg":
		img, err = jpeg.Decode(rd)
	default:
		return nil, errors.New("unsupported image mime type")
	}
	if err != nil {
		return nil, err
	}

	w := img.Bounds().Size().X
	h := img.Bounds().Size().Y
	var buf []byte
	for y := h - 1; y >= 0; y-- {
		for x := 0; x < w; x++ {
			r, gc, b, a := color.RGBAModel.Convert(img.At(x, y)).RGBA()
			buf = append(buf, byte(r), byte(gc), byte(b), byte(a))
		}
	}
	tex := &mst.Texture{}
	tex.Size = [2]uint64{uint64(w), uint64(h)}
	tex.Format = mst.TEXTURE_FORMAT_RGBA
	tex.Compressed = mst.TEXTURE_COMPRESSED_ZLIB
	tex.Data = mst.CompressImage(buf)
	return tex, nil
}

var _ FormatConvert = (*GltfToMst)(nil)
