package meshprep

import (
	"fmt"
	"math"
	"sort"

	dvec3 "github.com/flywave/go3d/float64/vec3"
)

// WeldEpsilon is the distance below which two vertices count as the same
// point, in model units.
const WeldEpsilon = 1e-4

// ReduceStats reports what one reduction pass did.
type ReduceStats struct {
	Initial       int
	Target        int
	Ratio         float64
	AfterCollapse int
	Final         int
	Skipped       bool
}

// ReduceVertices shrinks the mesh toward target using ratio-based edge
// collapse followed by an epsilon weld. The budget is approximate: the
// final count trends toward target but is not guaranteed to land on it,
// and welding may push it further down. A mesh already within budget is
// left untouched.
func ReduceVertices(m *Mesh, target int) (ReduceStats, error) {
	if target <= 0 {
		return ReduceStats{}, fmt.Errorf("target vertex count must be positive, got %d", target)
	}
	stats := ReduceStats{Initial: m.VertexCount(), Target: target}
	if stats.Initial <= target {
		stats.Skipped = true
		stats.Final = stats.Initial
		return stats, nil
	}
	stats.Ratio = float64(target) / float64(stats.Initial)
	Decimate(m, stats.Ratio)
	stats.AfterCollapse = m.VertexCount()
	Weld(m, WeldEpsilon)
	stats.Final = m.VertexCount()
	return stats, nil
}

// Decimate collapses edges, shortest first, until roughly ratio*initial
// vertices remain. Faces are fan-triangulated up front so every collapse
// leaves a valid triangle set; faces degenerated by a collapse are
// dropped. Ratios at or above 1 are a no-op.
func Decimate(m *Mesh, ratio float64) {
	if ratio >= 1 || len(m.Vertices) == 0 {
		return
	}
	target := int(math.Round(float64(len(m.Vertices)) * ratio))
	if target < 3 {
		target = 3
	}
	if target >= len(m.Vertices) {
		return
	}

	faces := triangulateAll(m.Faces)
	verts := make([]dvec3.T, len(m.Vertices))
	copy(verts, m.Vertices)
	alive := make([]bool, len(verts))
	for i := range alive {
		alive[i] = true
	}
	aliveCount := len(verts)

	for aliveCount > target {
		type edge struct {
			a, b   int
			length float64
		}
		var edges []edge
		seen := make(map[[2]int]bool)
		for _, f := range faces {
			for i := 0; i < 3; i++ {
				a, b := f[i], f[(i+1)%3]
				if a > b {
					a, b = b, a
				}
				if a == b || seen[[2]int{a, b}] {
					continue
				}
				seen[[2]int{a, b}] = true
				d := dvec3.Sub(&verts[a], &verts[b])
				edges = append(edges, edge{a, b, d.Length()})
			}
		}
		if len(edges) == 0 {
			break
		}
		sort.Slice(edges, func(i, j int) bool {
			if edges[i].length != edges[j].length {
				return edges[i].length < edges[j].length
			}
			if edges[i].a != edges[j].a {
				return edges[i].a < edges[j].a
			}
			return edges[i].b < edges[j].b
		})

		touched := make([]bool, len(verts))
		remap := make(map[int]int)
		collapsed := 0
		for _, e := range edges {
			if aliveCount-collapsed <= target {
				break
			}
			if touched[e.a] || touched[e.b] {
				continue
			}
			mid := dvec3.Add(&verts[e.a], &verts[e.b])
			verts[e.a] = dvec3.T{mid[0] / 2, mid[1] / 2, mid[2] / 2}
			remap[e.b] = e.a
			alive[e.b] = false
			touched[e.a], touched[e.b] = true, true
			collapsed++
		}
		if collapsed == 0 {
			break
		}
		aliveCount -= collapsed

		next := faces[:0]
		for _, f := range faces {
			for i, idx := range f {
				if to, ok := remap[idx]; ok {
					f[i] = to
				}
			}
			if f[0] != f[1] && f[1] != f[2] && f[0] != f[2] {
				next = append(next, f)
			}
		}
		faces = next
	}

	// compact surviving vertices, keeping original order
	indexMap := make([]int, len(verts))
	var compact []dvec3.T
	for i, v := range verts {
		if !alive[i] {
			indexMap[i] = -1
			continue
		}
		indexMap[i] = len(compact)
		compact = append(compact, v)
	}
	for _, f := range faces {
		for i, idx := range f {
			f[i] = indexMap[idx]
		}
	}

	m.Vertices = compact
	m.Faces = faces
	m.Edges = DeriveEdges(faces)
}

func triangulateAll(faces [][]int) [][]int {
	var tris [][]int
	for _, f := range faces {
		if len(f) < 3 {
			continue
		}
		for i := 1; i < len(f)-1; i++ {
			tris = append(tris, []int{f[0], f[i], f[i+1]})
		}
	}
	return tris
}

// Weld merges vertices closer than eps into the lowest-index one of each
// cluster, keeping that vertex's position. Edges and faces remap to the
// surviving indices; faces that lose area and edges that fold onto a
// single vertex are dropped. Welding an already-welded mesh with the same
// epsilon changes nothing.
func Weld(m *Mesh, eps float64) int {
	if eps <= 0 || len(m.Vertices) == 0 {
		return 0
	}

	type cell [3]int
	cellOf := func(v dvec3.T) cell {
		return cell{
			int(math.Floor(v[0] / eps)),
			int(math.Floor(v[1] / eps)),
			int(math.Floor(v[2] / eps)),
		}
	}

	buckets := make(map[cell][]int)
	remap := make([]int, len(m.Vertices))
	var compact []dvec3.T
	merged := 0

	for i, v := range m.Vertices {
		c := cellOf(v)
		rep := -1
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for dz := -1; dz <= 1; dz++ {
					for _, j := range buckets[cell{c[0] + dx, c[1] + dy, c[2] + dz}] {
						d := dvec3.Sub(&m.Vertices[i], &compact[remap[j]])
						if d.Length() < eps && (rep == -1 || remap[j] < rep) {
							rep = remap[j]
						}
					}
				}
			}
		}
		if rep >= 0 {
			remap[i] = rep
			merged++
			continue
		}
		remap[i] = len(compact)
		compact = append(compact, v)
		buckets[c] = append(buckets[c], i)
	}

	if merged == 0 {
		return 0
	}

	var faces [][]int
	for _, f := range m.Faces {
		nf := remapFace(f, remap)
		if nf != nil {
			faces = append(faces, nf)
		}
	}

	var edges [][2]int
	seenEdge := make(map[[2]int]bool)
	for _, e := range m.Edges {
		a, b := remap[e[0]], remap[e[1]]
		if a == b {
			continue
		}
		if a > b {
			a, b = b, a
		}
		key := [2]int{a, b}
		if !seenEdge[key] {
			seenEdge[key] = true
			edges = append(edges, key)
		}
	}

	m.Vertices = compact
	m.Faces = faces
	m.Edges = edges
	return merged
}

// remapFace rewrites a polygon through the weld map, removing runs of
// repeated indices. Polygons left with fewer than three distinct corners
// are degenerate and report nil.
func remapFace(f []int, remap []int) []int {
	nf := make([]int, 0, len(f))
	for _, idx := range f {
		nidx := remap[idx]
		if len(nf) > 0 && nf[len(nf)-1] == nidx {
			continue
		}
		nf = append(nf, nidx)
	}
	for len(nf) > 1 && nf[0] == nf[len(nf)-1] {
		nf = nf[:len(nf)-1]
	}
	if len(nf) < 3 {
		return nil
	}
	return nf
}
