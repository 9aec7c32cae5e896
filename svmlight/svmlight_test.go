package svmlight

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFeature(t *testing.T) {
	id, val, err := ParseFeature("1:3")
	require.NoError(t, err)
	assert.Equal(t, 1, id)
	assert.Equal(t, 3.0, val)

	for _, bad := range []string{"1:", ":3", "1:2:3", "1"} {
		_, _, err := ParseFeature(bad)
		assert.Errorf(t, err, "expected parse error for %q", bad)
	}
}

func TestParseLine(t *testing.T) {
	rec, err := ParseLine("0 qid:3864 1:3.0 2:9.0 # comment")
	require.NoError(t, err)

	if rec.Label != 0 {
		t.Errorf("label = %v, want 0", rec.Label)
	}
	if rec.QID != 3864 {
		t.Errorf("qid = %v, want 3864", rec.QID)
	}
	want := []float64{3.0, 9.0}
	if len(rec.Values) != len(want) {
		t.Fatalf("values = %v, want %v", rec.Values, want)
	}
	for i := range want {
		if rec.Values[i] != want[i] {
			t.Errorf("values[%d] = %v, want %v", i, rec.Values[i], want[i])
		}
	}
}

func TestParseLineMeta(t *testing.T) {
	_, err := ParseLine("@feature")
	assert.ErrorIs(t, err, ErrMetaLine)
}

func TestParseLineMissingQID(t *testing.T) {
	_, err := ParseLine("3.0 1:1.0")
	assert.Error(t, err)
}

func TestDecodeSkipsBlankAndComment(t *testing.T) {
	input := "" +
		"\n" +
		"# a leading comment line\n" +
		"1 qid:1 1:1.0\n" +
		"  \n" +
		"2 qid:1 1:2.0 2:4.0\n"

	records, err := Decode(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 1, records[0].QID)
	assert.Equal(t, []float64{2.0, 4.0}, records[1].Values)
}
