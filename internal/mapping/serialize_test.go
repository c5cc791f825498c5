package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []CellEntry
		want    string
	}{
		{"empty", nil, "[]"},
		{"single", []CellEntry{{Series: 1, ParallelGroup: 1, X: 1, Y: 1}}, "[1,1,1,1]"},
		{
			name: "negative group keeps sign",
			entries: []CellEntry{
				{Series: 1, ParallelGroup: -2, X: 3, Y: 4},
				{Series: 2, ParallelGroup: 0, X: 10, Y: 12},
			},
			want: "[1,-2,3,4;2,0,10,12]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SerializeEntries(tt.entries))
		})
	}
}

func TestSerialize_OrderedBySeriesNotPosition(t *testing.T) {
	m := mustConfigure(t, 3, 1, 3, 3)
	_, err := m.Assign(2, 2, 1)
	require.NoError(t, err)
	_, err = m.Assign(0, 0, 2)
	require.NoError(t, err)
	_, err = m.Assign(1, 0, 3)
	require.NoError(t, err)

	assert.Equal(t, "[1,1,3,3;2,2,1,1;3,3,2,1]", m.Serialize())
}

func TestSerialize_IsPure(t *testing.T) {
	m := mustConfigure(t, 2, 2, 2, 2)
	_, err := m.Assign(1, 0, 1)
	require.NoError(t, err)

	first := m.Serialize()
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, m.Serialize())
	}
}

func TestParseParallelGroup(t *testing.T) {
	p, err := ParseParallelGroup(" 12 ")
	require.NoError(t, err)
	assert.Equal(t, 12, p)

	p, err = ParseParallelGroup("-3")
	require.NoError(t, err)
	assert.Equal(t, -3, p)

	for _, bad := range []string{"", "abc", "1.5", "2x"} {
		_, err := ParseParallelGroup(bad)
		assert.ErrorIs(t, err, ErrInvalidParallelGroup, "input %q", bad)
	}
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig("2", " 1", "2 ", "3")
	require.NoError(t, err)
	assert.Equal(t, PackConfig{Ns: 2, Np: 1, Rows: 2, Cols: 3}, cfg)
	assert.Equal(t, 2, cfg.Capacity())

	_, err = ParseConfig("2", "x", "2", "2")
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "Np")

	_, err = ParseConfig("2", "1", "0", "2")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
