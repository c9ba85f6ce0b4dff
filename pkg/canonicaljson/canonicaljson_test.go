package canonicaljson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalSortsKeysAndIsCompact(t *testing.T) {
	v := map[string]any{"b": 1, "a": 2, "c": map[string]any{"z": 1, "y": 2}}
	s, err := MarshalString(v)
	require.NoError(t, err)
	assert.Equal(t, `{"a":2,"b":1,"c":{"y":2,"z":1}}`, s)
}

func TestMarshalIsDeterministicAcrossCalls(t *testing.T) {
	v := map[string]any{"x": 1, "y": []int{1, 2, 3}}
	s1, err1 := MarshalString(v)
	s2, err2 := MarshalString(v)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, s1, s2)
}
