package meshprep

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// ExportRecord is the JSON artifact written per asset. Keys are kept
// short on purpose: the records feed ML ingestion where artifact size
// matters more than readability.
type ExportRecord struct {
	Name     string       `json:"n"`
	Location [3]float64   `json:"l"`
	Rotation [3]float64   `json:"r"`
	Scale    [3]float64   `json:"s"`
	Vertices [][3]float64 `json:"v"`
	Edges    [][2]int     `json:"e"`
	Faces    [][]int      `json:"f"`
}

// round4 is the artifact's fixed precision. Negative zero normalizes to
// zero so tiny negatives never serialize as "-0".
func round4(v float64) float64 {
	r := math.Round(v*10000) / 10000
	if r == 0 {
		return 0
	}
	return r
}

// BuildExportRecord converts a finalized mesh into its artifact form.
// Vertices are moved to world space first so the geometry is usable
// without interpreting the transform; every float rounds to 4 decimals.
// Edge and face lists keep the mesh's native ordering.
func BuildExportRecord(name string, m *Mesh) *ExportRecord {
	t := &m.Transform
	rec := &ExportRecord{
		Name:     name,
		Location: [3]float64{round4(t.Location[0]), round4(t.Location[1]), round4(t.Location[2])},
		Rotation: [3]float64{round4(t.Rotation[0]), round4(t.Rotation[1]), round4(t.Rotation[2])},
		Scale:    [3]float64{round4(t.Scale[0]), round4(t.Scale[1]), round4(t.Scale[2])},
		Vertices: make([][3]float64, 0, len(m.Vertices)),
		Edges:    make([][2]int, 0, len(m.Edges)),
		Faces:    make([][]int, 0, len(m.Faces)),
	}
	for _, v := range m.Vertices {
		w := t.Apply(v)
		rec.Vertices = append(rec.Vertices, [3]float64{round4(w[0]), round4(w[1]), round4(w[2])})
	}
	rec.Edges = append(rec.Edges, m.Edges...)
	for _, f := range m.Faces {
		face := make([]int, len(f))
		copy(face, f)
		rec.Faces = append(rec.Faces, face)
	}
	return rec
}

// WriteExportRecord writes the artifact as a single indented JSON object.
// The write is all-or-nothing: any failure leaves no partial artifact
// behind the returned error.
func WriteExportRecord(path string, rec *ExportRecord) error {
	data, err := json.MarshalIndent(rec, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding export record %s: %w", rec.Name, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing export record: %w", err)
	}
	return nil
}
