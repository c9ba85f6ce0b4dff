package csvtsv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Manav02012002/hepconduit/pkg/hepio"
	"github.com/Manav02012002/hepconduit/pkg/hepmodel"
)

const sampleCSV = `event_number,pdg_id,status,mother1,mother2,color1,color2,px,py,pz,energy,mass,spin,barcode,vertex_barcode,end_vertex_barcode
0,11,-1,0,0,0,0,0,0,45.6,45.6,0,9,1,0,0
0,-11,-1,0,0,0,0,0,0,-45.6,45.6,0,9,2,0,0
1,13,1,0,0,0,0,1,1,1,2,0,9,1,0,0
`

func TestIterEventsGroupsByEventNumber(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	r := NewReader(',')
	cur, err := r.IterEvents(path)
	require.NoError(t, err)
	defer cur.Close()

	ev1, ok, err := cur.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0, ev1.EventNumber)
	assert.Len(t, ev1.Particles, 2)

	ev2, ok, err := cur.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, ev2.EventNumber)
	assert.Len(t, ev2.Particles, 1)

	_, ok, err = cur.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWriteProducesHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	w := NewWriter(',')
	events := hepio.NewSliceCursor([]hepmodel.Event{
		{EventNumber: 0, Particles: []hepmodel.Particle{{PDGID: 11, Status: -1}}},
	}, nil)
	require.NoError(t, w.Write(path, events, hepmodel.RunInfo{}, hepio.WriteOptions{}))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "event_number")
	assert.Contains(t, string(b), "11")
}
