package meshprep

// JoinMeshes merges every staged mesh object into one. The first object
// survives and keeps its transform; the other objects' geometry is rebased
// into the survivor's local space and appended, then the donors leave the
// scene. A scene with no mesh objects yields nil, which the orchestrator
// treats as a skip, not an error.
func (s *SceneContext) JoinMeshes() *MeshObject {
	meshes := s.MeshObjects()
	if len(meshes) == 0 {
		return nil
	}

	base := meshes[0]
	for _, other := range meshes[1:] {
		appendMesh(base.Mesh, other.Mesh)
	}

	// drop the donors, keep helpers untouched
	var kept []SceneObject
	for _, obj := range s.objects {
		if mo, ok := obj.(*MeshObject); ok && mo != base {
			continue
		}
		kept = append(kept, obj)
	}
	s.objects = kept
	return base
}

// appendMesh bakes src's geometry into dst's local space and appends its
// vertices, edges, faces and materials.
func appendMesh(dst, src *Mesh) {
	offset := len(dst.Vertices)
	for _, v := range src.Vertices {
		world := src.Transform.Apply(v)
		dst.Vertices = append(dst.Vertices, dst.Transform.ApplyInverse(world))
	}
	for _, e := range src.Edges {
		dst.Edges = append(dst.Edges, [2]int{e[0] + offset, e[1] + offset})
	}
	for _, f := range src.Faces {
		nf := make([]int, len(f))
		for i, idx := range f {
			nf[i] = idx + offset
		}
		dst.Faces = append(dst.Faces, nf)
	}
	dst.Materials = append(dst.Materials, src.Materials...)
}
