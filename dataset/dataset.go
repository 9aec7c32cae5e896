package dataset

import (
	"io"

	"github.com/pkg/errors"

	"github.com/lbsx/rforests/svmlight"
)

// DataSet is an ordered collection of Instances. Instances sharing a
// QID must be contiguous; Load preserves the order of the underlying
// file, and QueryIter relies on that order without re-sorting.
type DataSet struct {
	Instances []Instance
	NFeatures int
}

// Load reads every SVMlight record from r and assembles a DataSet,
// tracking the largest feature id observed across all instances.
func Load(r io.Reader) (*DataSet, error) {
	records, err := svmlight.Decode(r)
	if err != nil {
		return nil, errors.Wrap(err, "loading dataset")
	}

	ds := &DataSet{Instances: make([]Instance, len(records))}
	for i, rec := range records {
		ds.Instances[i] = Instance{Label: rec.Label, QID: rec.QID, Values: rec.Values}
		if len(rec.Values) > ds.NFeatures {
			ds.NFeatures = len(rec.Values)
		}
	}

	return ds, nil
}

// Len returns the number of instances in the data set.
func (d *DataSet) Len() int { return len(d.Instances) }

// At returns the instance at index i.
func (d *DataSet) At(i int) *Instance { return &d.Instances[i] }

// FeatureValueIter returns the value of feature fid for every
// instance, in dataset order.
func (d *DataSet) FeatureValueIter(fid int) []float64 {
	vals := make([]float64, len(d.Instances))
	for i := range d.Instances {
		vals[i] = d.Instances[i].Value(fid)
	}
	return vals
}

// FidIter returns the 1-based feature ids present in the data set.
func (d *DataSet) FidIter() []int {
	fids := make([]int, d.NFeatures)
	for i := range fids {
		fids[i] = i + 1
	}
	return fids
}

// Query is one qid and the (contiguous) indices of its instances.
type Query struct {
	QID     int
	Indices []int
}

// QueryIter groups instance indices by contiguous runs of equal QID,
// in the order they appear in the data set. It does not sort; it is
// the caller's responsibility (and the loader's invariant) that
// instances of the same query are already adjacent.
func (d *DataSet) QueryIter() []Query {
	var queries []Query

	for i, inst := range d.Instances {
		if len(queries) > 0 && queries[len(queries)-1].QID == inst.QID {
			last := &queries[len(queries)-1]
			last.Indices = append(last.Indices, i)
			continue
		}
		queries = append(queries, Query{QID: inst.QID, Indices: []int{i}})
	}

	return queries
}
