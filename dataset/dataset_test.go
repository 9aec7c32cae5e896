package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	input := "3 qid:1 1:3.0 2:9.0\n2 qid:1 1:1.0\n"
	ds, err := Load(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, 2, ds.NFeatures)
	assert.Equal(t, 9.0, ds.At(0).Value(2))
	assert.Equal(t, 0.0, ds.At(1).Value(2))
}

func TestQueryIter(t *testing.T) {
	qids := []int{1, 1, 2, 5, 5, 7, 7, 6, 6}
	ds := &DataSet{Instances: make([]Instance, len(qids))}
	for i, q := range qids {
		ds.Instances[i] = Instance{QID: q}
	}

	got := ds.QueryIter()

	want := []Query{
		{QID: 1, Indices: []int{0, 1}},
		{QID: 2, Indices: []int{2}},
		{QID: 5, Indices: []int{3, 4}},
		{QID: 7, Indices: []int{5, 6}},
		{QID: 6, Indices: []int{7, 8}},
	}

	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].QID, got[i].QID)
		assert.Equal(t, want[i].Indices, got[i].Indices)
	}
}

func TestInstanceValueOutOfRange(t *testing.T) {
	inst := Instance{Values: []float64{1.0, 2.0}}
	assert.Equal(t, 0.0, inst.Value(0))
	assert.Equal(t, 1.0, inst.Value(1))
	assert.Equal(t, 0.0, inst.Value(5))
}
