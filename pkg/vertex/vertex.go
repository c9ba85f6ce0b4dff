// Package vertex reconstructs a HepMC-style production/decay vertex graph
// from LHE-style mother indices, for formats (LHE, CSV/TSV, flat Parquet)
// that carry only a flat particle list with mother1/mother2 references.
package vertex

import (
	"sort"

	"github.com/Manav02012002/hepconduit/pkg/hepmodel"
)

type motherKey struct{ a, b int }

func canonical(m1, m2 int) motherKey {
	if m1 <= m2 {
		return motherKey{m1, m2}
	}
	return motherKey{m2, m1}
}

// BuildFromMothers populates ev.Vertices (and every particle's
// VertexBarcode/EndVertexBarcode) from mother1/mother2 indices, following
// six steps:
//
//  1. assign stable 1..N barcodes to particles missing one
//  2. canonicalise each distinct (mother1, mother2) pair (order-independent)
//     into one vertex, using decreasing negative barcodes for new vertices
//  3. incoming (status -1) particles attach to the implicit void vertex (0)
//  4. particles with no mothers attach to an implicit (0,0)-keyed vertex
//  5. populate each vertex's incoming/outgoing particle-barcode lists
//  6. back-fill each particle's end-vertex from the vertex where its
//     barcode appears as incoming
//
// If ev already carries an explicit vertex graph, this is a no-op: callers
// choose to reconstruct only when a format provided no native graph.
func BuildFromMothers(ev *hepmodel.Event) {
	if len(ev.Vertices) > 0 {
		return
	}

	for i := range ev.Particles {
		if ev.Particles[i].Barcode == 0 {
			ev.Particles[i].Barcode = i + 1
		}
	}

	vtxMap := map[motherKey]int{}
	vertices := map[int]*hepmodel.Vertex{}
	nextVtx := -1

	vtxFor := func(m1, m2 int) int {
		key := canonical(m1, m2)
		if id, ok := vtxMap[key]; ok {
			return id
		}
		id := nextVtx
		vtxMap[key] = id
		vertices[id] = &hepmodel.Vertex{Barcode: id}
		nextVtx--
		return id
	}

	prodVtx := make(map[int]int, len(ev.Particles))

	for idx, p := range ev.Particles {
		n := idx + 1
		if p.IsIncoming() {
			prodVtx[n] = 0
			ev.Particles[idx].VertexBarcode = 0
		}
	}

	for idx, p := range ev.Particles {
		n := idx + 1
		if p.IsIncoming() {
			continue
		}
		m1, m2 := p.Mother1, p.Mother2
		var vID int
		if m1 == 0 && m2 == 0 {
			vID = vtxFor(0, 0)
		} else {
			vID = vtxFor(m1, m2)
		}
		prodVtx[n] = vID
		ev.Particles[idx].VertexBarcode = vID
	}

	for childIdx, p := range ev.Particles {
		n := childIdx + 1
		vID, ok := prodVtx[n]
		if !ok || vID == 0 {
			continue
		}
		v := vertices[vID]
		mothers := map[int]bool{}
		if p.Mother1 != 0 {
			mothers[p.Mother1] = true
		}
		if p.Mother2 != 0 {
			mothers[p.Mother2] = true
		}
		for midx := range mothers {
			if midx >= 1 && midx <= len(ev.Particles) {
				mbar := ev.Particles[midx-1].Barcode
				if !containsInt(v.Incoming, mbar) {
					v.Incoming = append(v.Incoming, mbar)
				}
			}
		}
		cbar := p.Barcode
		if !containsInt(v.Outgoing, cbar) {
			v.Outgoing = append(v.Outgoing, cbar)
		}
	}

	incomingToVtx := map[int]int{}
	for vid, v := range vertices {
		for _, inc := range v.Incoming {
			incomingToVtx[inc] = vid
		}
	}
	for idx, p := range ev.Particles {
		ev.Particles[idx].EndVertexBarcode = incomingToVtx[p.Barcode]
	}

	ids := make([]int, 0, len(vertices))
	for id := range vertices {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]hepmodel.Vertex, 0, len(ids))
	for _, id := range ids {
		out = append(out, *vertices[id])
	}
	ev.Vertices = out
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
