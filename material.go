package meshprep

// StripTextures removes the texture reference from every material slot
// and resets the slot to flat opaque white, so the asset renders with
// uniform texture-free shading. The slot count never changes and running
// twice yields the same state. Returns the number of texture references
// removed; a mesh with no materials is a no-op the caller may log.
func StripTextures(m *Mesh) int {
	stripped := 0
	for _, mtl := range m.Materials {
		if mtl.UsesTexture || mtl.Image != nil {
			stripped++
		}
		mtl.UsesTexture = false
		mtl.Image = nil
		mtl.BaseColor = [4]float64{1, 1, 1, 1}
	}
	return stripped
}
