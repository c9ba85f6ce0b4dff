package convert

import (
	"sort"

	"github.com/Manav02012002/hepconduit/pkg/hepio"
	"github.com/Manav02012002/hepconduit/pkg/pdgdata"
)

// NamedCount pairs a human-readable PDG name with an occurrence count, for
// Info's top-particles summary.
type NamedCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Info summarizes a file: event/particle counts, the most common PDG species, status-code histogram, and
// whatever run-level metadata the format carries.
type Info struct {
	Format               string         `json:"format"`
	NEvents              int            `json:"n_events"`
	TotalParticles       int            `json:"total_particles"`
	AvgParticlesPerEvent float64        `json:"avg_particles_per_event"`
	BeamPDGID            [2]int         `json:"beam_pdg_id"`
	BeamEnergy           [2]float64     `json:"beam_energy"`
	Generator            string         `json:"generator"`
	GeneratorVersion     string         `json:"generator_version"`
	NProcesses           int            `json:"n_processes"`
	WeightNames          []string       `json:"weight_names"`
	TopParticles         []NamedCount   `json:"top_particles"`
	StatusCounts         map[int]int    `json:"status_counts"`
}

// BuildInfo streams path as format (or its detected format) and computes
// the same summary statistics Info carries, keeping only running counts
// itself; the HepMC3 and Parquet readers still load the whole file before
// the first event.
func BuildInfo(path, format string) (Info, error) {
	if format == "" {
		f, err := hepio.DetectFormat(path)
		if err != nil {
			return Info{}, err
		}
		format = f
	}
	reader, err := hepio.GetReader(format)
	if err != nil {
		return Info{}, err
	}

	runInfo, _ := reader.ReadRunInfo(path)

	cur, err := reader.IterEvents(path)
	if err != nil {
		return Info{}, err
	}
	defer cur.Close()

	var nEvents, totalParticles int
	pdgCounts := map[int]int{}
	statusCounts := map[int]int{}

	for {
		ev, ok, err := cur.Next()
		if err != nil {
			return Info{}, err
		}
		if !ok {
			break
		}
		nEvents++
		totalParticles += len(ev.Particles)
		for _, p := range ev.Particles {
			pdgCounts[p.PDGID]++
			statusCounts[p.Status]++
		}
	}

	avg := 0.0
	if nEvents > 0 {
		avg = float64(totalParticles) / float64(nEvents)
	}

	type kv struct {
		id    int
		count int
	}
	pairs := make([]kv, 0, len(pdgCounts))
	for id, c := range pdgCounts {
		pairs = append(pairs, kv{id, c})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].id < pairs[j].id
	})
	if len(pairs) > 20 {
		pairs = pairs[:20]
	}
	top := make([]NamedCount, len(pairs))
	for i, p := range pairs {
		top[i] = NamedCount{Name: pdgdata.Name(p.id), Count: p.count}
	}

	return Info{
		Format:               format,
		NEvents:              nEvents,
		TotalParticles:       totalParticles,
		AvgParticlesPerEvent: avg,
		BeamPDGID:            runInfo.BeamPDGID,
		BeamEnergy:           runInfo.BeamEnergy,
		Generator:            runInfo.GeneratorName,
		GeneratorVersion:     runInfo.GeneratorVersion,
		NProcesses:           len(runInfo.Processes),
		WeightNames:          runInfo.WeightNames,
		TopParticles:         top,
		StatusCounts:         statusCounts,
	}, nil
}
