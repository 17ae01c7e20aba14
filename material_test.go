package meshprep

import (
	"testing"

	mst "github.com/flywave/go-mst"
)

func TestStripTextures(t *testing.T) {
	m := &Mesh{
		Materials: []*Material{
			{UsesTexture: true, Image: &mst.Texture{}, BaseColor: [4]float64{0.8, 0.2, 0.2, 1}},
			{BaseColor: [4]float64{0.1, 0.9, 0.1, 0.5}},
		},
	}

	stripped := StripTextures(m)
	if stripped != 1 {
		t.Errorf("stripped = %d, expected 1", stripped)
	}
	if len(m.Materials) != 2 {
		t.Fatalf("material count changed to %d", len(m.Materials))
	}
	for i, mtl := range m.Materials {
		if mtl.UsesTexture || mtl.Image != nil {
			t.Errorf("slot %d still references a texture", i)
		}
		if mtl.BaseColor != [4]float64{1, 1, 1, 1} {
			t.Errorf("slot %d color = %v, expected flat white", i, mtl.BaseColor)
		}
	}
}

func TestStripTexturesIdempotent(t *testing.T) {
	m := &Mesh{
		Materials: []*Material{{UsesTexture: true, Image: &mst.Texture{}}},
	}
	StripTextures(m)
	if again := StripTextures(m); again != 0 {
		t.Errorf("second strip removed %d references, expected 0", again)
	}
}

func TestStripTexturesNoMaterials(t *testing.T) {
	m := &Mesh{}
	if got := StripTextures(m); got != 0 {
		t.Errorf("stripped = %d on an empty material list", got)
	}
}
