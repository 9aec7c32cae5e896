package lambdatree

import (
	"container/heap"

	"github.com/lbsx/rforests/dataset"
)

// Node is one node of a RegressionTree: either an internal split node
// (Fid, Threshold, Left, Right set) or a leaf (Leaf true, Output set).
type Node struct {
	Fid       int
	Threshold float64
	Left      *Node
	Right     *Node
	Leaf      bool
	Output    float64
}

// Tree is a best-first-grown regression tree: a binary tree of splits
// topped out at MaxLeaves leaves, whose leaf outputs are already
// scaled by LearningRate.
type Tree struct {
	Root         *Node
	LearningRate float64
	varImp       []float64 // indexed by fid-1
}

// NewTree returns an empty, unfit tree sized for nFeatures features.
func NewTree(learningRate float64, nFeatures int) *Tree {
	return &Tree{LearningRate: learningRate, varImp: make([]float64, nFeatures)}
}

// candidate is a pending tree node: a sample view plus its
// pre-evaluated best split, or a marker that the sample is terminal
// (unsplitable, or no valid split exists).
type candidate struct {
	node      *Node
	sample    *TrainingSample
	split     *Split
	splitable bool
	seq       int
}

func evalCandidate(sample *TrainingSample, node *Node, minLeafCount, seq int) *candidate {
	split, ok := sample.Split(minLeafCount)
	if !ok {
		return &candidate{node: node, sample: sample, splitable: false, seq: seq}
	}
	return &candidate{node: node, sample: sample, split: split, splitable: true, seq: seq}
}

type candidateHeap []*candidate

func (h candidateHeap) Len() int { return len(h) }
func (h candidateHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.split.Score != b.split.Score {
		return a.split.Score > b.split.Score
	}
	if a.split.Fid != b.split.Fid {
		return a.split.Fid < b.split.Fid
	}
	if a.split.Threshold != b.split.Threshold {
		return a.split.Threshold < b.split.Threshold
	}
	return a.seq < b.seq
}
func (h candidateHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *candidateHeap) Push(x interface{}) { *h = append(*h, x.(*candidate)) }
func (h *candidateHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Fit grows the tree best-first against training, up to maxLeaves
// leaves, splitting any node with at least minLeafCount instances on
// each side. As a side effect, every finalized leaf's output is
// mirrored into training.ModelScores via TrainingSample.Finalize.
func (t *Tree) Fit(training *TrainingSet, maxLeaves, minLeafCount int) {
	seq := 0
	root := evalCandidate(NewRootSample(training), &Node{}, minLeafCount, seq)
	t.Root = root.node

	open := []*candidate{root}
	pq := &candidateHeap{}
	if root.splitable {
		heap.Push(pq, root)
	}

	leaves := 1
	for leaves < maxLeaves && pq.Len() > 0 {
		c := heap.Pop(pq).(*candidate)
		open = removeCandidate(open, c)

		t.varImp[c.split.Fid-1] += c.split.Score

		c.node.Fid = c.split.Fid
		c.node.Threshold = c.split.Threshold
		c.node.Left = &Node{}
		c.node.Right = &Node{}

		seq++
		left := evalCandidate(c.split.Left, c.node.Left, minLeafCount, seq)
		seq++
		right := evalCandidate(c.split.Right, c.node.Right, minLeafCount, seq)

		open = append(open, left, right)
		if left.splitable {
			heap.Push(pq, left)
		}
		if right.splitable {
			heap.Push(pq, right)
		}
		leaves++
	}

	for _, c := range open {
		output := c.sample.Finalize(t.LearningRate)
		c.node.Leaf = true
		c.node.Output = output
	}
}

func removeCandidate(open []*candidate, target *candidate) []*candidate {
	for i, c := range open {
		if c == target {
			return append(open[:i], open[i+1:]...)
		}
	}
	return open
}

// Predict traverses the tree for inst and returns the reached leaf's
// output.
func (t *Tree) Predict(inst *dataset.Instance) float64 {
	n := t.Root
	for !n.Leaf {
		if inst.Value(n.Fid) <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Output
}

// VarImp returns, per feature id (index fid-1), the total split-score
// improvement contributed by splits on that feature in this tree.
func (t *Tree) VarImp() []float64 {
	imp := make([]float64, len(t.varImp))
	copy(imp, t.varImp)
	return imp
}
