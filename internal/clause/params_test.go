package clause

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamSet(t *testing.T) {
	p := NewParamSet("_p_w")
	assert.Equal(t, "_p_w0", p.Add(1))
	assert.Equal(t, "_p_w1", p.Add("x"))

	require.NoError(t, p.Set("tenant", 7))
	require.NoError(t, p.Set("tenant", 7))
	assert.ErrorIs(t, p.Set("tenant", 8), ErrDuplicateParameter)
	assert.Equal(t, 3, p.Len())

	clone := p.Clone()
	clone.Add(2)
	assert.Equal(t, 3, p.Len())
	assert.Equal(t, 4, clone.Len())

	values := p.Values()
	values["extra"] = true
	assert.Equal(t, 3, p.Len(), "Values returns a copy")

	p.Clear()
	assert.Equal(t, 0, p.Len())
	assert.Equal(t, "_p_w0", p.Add(1))
}

func TestParamSet_GeneratedNamesSkipExplicit(t *testing.T) {
	tests := []struct {
		name     string
		explicit Params
		want     []string
	}{
		{"no explicit", nil, []string{"_p_w0", "_p_w1"}},
		{"first taken", Params{"_p_w0": "x"}, []string{"_p_w1", "_p_w2"}},
		{"gap", Params{"_p_w1": "x"}, []string{"_p_w0", "_p_w2"}},
		{"other prefix", Params{"_p_j0": "x"}, []string{"_p_w0", "_p_w1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParamSet("_p_w")
			for name, value := range tt.explicit {
				require.NoError(t, p.Set(name, value))
			}
			got := []string{p.Add(1), p.Add(2)}
			assert.Equal(t, tt.want, got)
			for name, value := range tt.explicit {
				assert.Equal(t, value, p.Values()[name], "explicit value is kept")
			}
		})
	}

	p := NewParamSet("_p_w")
	p.Add(1)
	assert.ErrorIs(t, p.Set("_p_w0", 2), ErrDuplicateParameter)
}

func TestMergeParams(t *testing.T) {
	merged, err := MergeParams(Params{"a": 1}, Params{"b": 2}, Params{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, Params{"a": 1, "b": 2}, merged)

	_, err = MergeParams(Params{"a": 1}, Params{"a": 2})
	assert.ErrorIs(t, err, ErrDuplicateParameter)

	merged, err = MergeParams()
	require.NoError(t, err)
	assert.Empty(t, merged)
}

func TestNamedPlaceholderRegex(t *testing.T) {
	matches := NamedPlaceholderRegex.FindAllStringSubmatch("a={:_p_w0} And b={:tenant}", -1)
	require.Len(t, matches, 2)
	assert.Equal(t, "_p_w0", matches[0][1])
	assert.Equal(t, "tenant", matches[1][1])
	assert.Equal(t, "{:x}", Placeholder("x"))
}
