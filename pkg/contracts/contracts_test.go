package contracts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/Manav02012002/hepconduit/pkg/convert"
)

const balancedLHE = `<LesHouchesEvents version="3.0">
<init>
2212 2212 6500.00000 6500.00000 0 0 0 0 0 0
0.123 0.001 0.456 1
</init>
<event>
4 1 1.0 91.188 0.00754 0.118
2212 -1 0 0 0 0 0.0 0.0 6500.0 6500.0 0.938 0 9.0
2212 -1 0 0 0 0 0.0 0.0 -6500.0 6500.0 0.938 0 9.0
11 1 1 2 0 0 30.0 40.0 0.0 13000.0 0.0 0 9.0
-11 1 1 2 0 0 -30.0 -40.0 0.0 0.0 0.0 0 9.0
</event>
</LesHouchesEvents>
`

func writeBalancedSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.lhe")
	require.NoError(t, os.WriteFile(path, []byte(balancedLHE), 0o644))
	return path
}

func TestAvailableContractsAndPacksAreSorted(t *testing.T) {
	contracts := AvailableContracts()
	assert.Contains(t, contracts, "roundtrip_v1")
	assert.Contains(t, contracts, "validate_only_v1")

	packs := AvailablePacks()
	assert.Contains(t, packs, "generator_level_v1")
	assert.Contains(t, packs, "hepmc3_fidelity_v1")
	assert.Contains(t, packs, "parquet_fidelity_v1")
}

func TestRunContractValidateOnly(t *testing.T) {
	path := writeBalancedSample(t)
	result, err := RunContract(path, "validate_only_v1", "", false)
	require.NoError(t, err)
	assert.Equal(t, "validate_only_v1", result.Contract)
}

func TestRunContractRoundtripToHepMC3(t *testing.T) {
	path := writeBalancedSample(t)
	result, err := RunContract(path, "roundtrip_v1", "hepmc3", false)
	require.NoError(t, err)
	assert.Equal(t, "roundtrip_v1", result.Contract)
	assert.True(t, result.OK)
}

func TestRunContractRejectsUnknownName(t *testing.T) {
	path := writeBalancedSample(t)
	_, err := RunContract(path, "not_a_real_contract", "", false)
	assert.Error(t, err)
}

func TestRunContractPackRunsEveryMember(t *testing.T) {
	path := writeBalancedSample(t)
	packResult, err := RunContractPack(path, "generator_level_v1", "hepmc3", false)
	require.NoError(t, err)
	assert.Equal(t, "generator_level_v1", packResult.Pack)
	assert.Len(t, packResult.Results, 2)
}
