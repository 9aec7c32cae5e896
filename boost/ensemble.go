package boost

import (
	"encoding/gob"
	"io"

	"github.com/lbsx/rforests/dataset"
	"github.com/lbsx/rforests/lambdatree"
)

// Ensemble is an ordered sequence of regression trees; a prediction is
// the sum of every tree's prediction (each tree already bakes in the
// learning rate on its leaves).
type Ensemble struct {
	Trees []*lambdatree.Tree
}

// Push appends a finalized tree.
func (e *Ensemble) Push(t *lambdatree.Tree) {
	e.Trees = append(e.Trees, t)
}

// Truncate keeps only the first n trees.
func (e *Ensemble) Truncate(n int) {
	if n < len(e.Trees) {
		e.Trees = e.Trees[:n]
	}
}

// Predict returns the summed prediction of every tree for inst.
func (e *Ensemble) Predict(inst *dataset.Instance) float64 {
	var sum float64
	for _, t := range e.Trees {
		sum += t.Predict(inst)
	}
	return sum
}

// VarImp sums each tree's per-feature split-score contribution.
func (e *Ensemble) VarImp(nFeatures int) []float64 {
	imp := make([]float64, nFeatures)
	for _, t := range e.Trees {
		for fid, v := range t.VarImp() {
			imp[fid] += v
		}
	}
	return imp
}

// Save gob-encodes the ensemble, mirroring the model persistence
// shape used by this project's earlier random-forest trainer.
func (e *Ensemble) Save(w io.Writer) error {
	return gob.NewEncoder(w).Encode(e)
}

// Load decodes an ensemble previously written by Save.
func (e *Ensemble) Load(r io.Reader) error {
	return gob.NewDecoder(r).Decode(e)
}
