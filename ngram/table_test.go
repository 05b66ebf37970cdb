package ngram

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	input := "a\t1,234\nab 56\n\n␣ 1.000.000\nxyz\t7 890\nzero\t0\n"

	table, err := Load(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, int64(1234), table.Lookup("a"))
	assert.Equal(t, int64(56), table.Lookup("ab"))
	assert.Equal(t, int64(1000000), table.Lookup("␣"))
	assert.Equal(t, int64(7890), table.Lookup("xyz"))
	assert.Equal(t, 4, table.Len(), "zero counts are not stored")
	assert.Equal(t, 3, table.MaxN())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing count", "abc\n"},
		{"not a number", "abc twelve\n"},
		{"negative", "abc -3\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tc.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "line 1")
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ngram.tsv")
	require.NoError(t, os.WriteFile(path, []byte("ab\t3\n"), 0o644))

	table, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(3), table.Lookup("ab"))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"42", 42},
		{"1,234", 1234},
		{"1.234.567", 1234567},
		{"12'345", 12345},
		{"1 000", 1000},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseCount(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestLookup_Smoothing(t *testing.T) {
	table, err := FromCounts(map[string]int64{"ab": 5})
	require.NoError(t, err)

	assert.Equal(t, int64(5), table.Lookup("ab"))
	assert.Equal(t, int64(DefaultCount), table.Lookup("zz"))
	assert.Equal(t, int64(DefaultCount), table.Lookup(""))
}

func TestFromCounts_Negative(t *testing.T) {
	_, err := FromCounts(map[string]int64{"ab": -1})
	require.ErrorIs(t, err, ErrNonPositive)
}

func TestAssociation(t *testing.T) {
	table, err := FromCounts(map[string]int64{"a": 10, "b": 20, "ab": 8})
	require.NoError(t, err)

	got, err := table.Association("a", "b", 100)
	require.NoError(t, err)
	assert.InDelta(t, math.Log(8.0*100/(10*20)), got, 1e-12)

	span, err := table.AssociationSpan("ab", 1, 100)
	require.NoError(t, err)
	assert.Equal(t, got, span)
}

func TestAssociation_FiniteOnEmptyTable(t *testing.T) {
	table, err := FromCounts(nil)
	require.NoError(t, err)

	windows := []struct{ left, right string }{
		{"a", "b"},
		{"", "b"},
		{"日本", "␣語"},
		{"abcd", "efgh"},
	}
	for _, w := range windows {
		got, err := table.Association(w.left, w.right, 12345)
		require.NoError(t, err)
		assert.False(t, math.IsNaN(got) || math.IsInf(got, 0), "%q|%q gave %v", w.left, w.right, got)
		assert.InDelta(t, math.Log(12345), got, 1e-12)
	}
}

func TestAssociation_NonPositiveCorpusLength(t *testing.T) {
	table, err := FromCounts(nil)
	require.NoError(t, err)

	for _, length := range []int{0, -1} {
		_, err := table.Association("a", "b", length)
		require.ErrorIs(t, err, ErrNonPositive)
	}
}
