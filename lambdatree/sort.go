package lambdatree

// Specialized quicksort over a (values, index) pair, adapted from this
// project's earlier tree-building sort: at each node the old random
// forest trainer re-sorted feature values paired with their original
// row index to find a split, and hand-rolling the sort instead of
// going through sort.Interface cut that cost noticeably. ThresholdMap
// construction has the identical shape (sort values, carry the
// original instance index along), so it reuses the same routine.
//
// lessTotal is the comparator throughout: NaN compares equal to
// everything so the sort has a total order over the whole feature
// column, including rows with missing values.

func sortPaired(x []float64, inx []int) {
	n := len(inx)
	maxDepth := 0
	for i := n; i > 0; i >>= 1 {
		maxDepth++
	}
	maxDepth *= 2
	pairedQuickSort(x, inx, 0, n, maxDepth)
}

func pairedSwap(x []float64, inx []int, i, j int) {
	x[i], x[j] = x[j], x[i]
	inx[i], inx[j] = inx[j], inx[i]
}

func pairedInsertionSort(x []float64, inx []int, a, b int) {
	for i := a + 1; i < b; i++ {
		for j := i; j > a && lessTotal(x[j], x[j-1]); j-- {
			pairedSwap(x, inx, j, j-1)
		}
	}
}

func pairedSiftDown(x []float64, inx []int, lo, hi, first int) {
	root := lo
	for {
		child := 2*root + 1
		if child >= hi {
			break
		}
		if child+1 < hi && lessTotal(x[first+child], x[first+child+1]) {
			child++
		}
		if !lessTotal(x[first+root], x[first+child]) {
			return
		}
		pairedSwap(x, inx, first+root, first+child)
		root = child
	}
}

func pairedHeapSort(x []float64, inx []int, a, b int) {
	first := a
	lo := 0
	hi := b - a

	for i := (hi - 1) / 2; i >= 0; i-- {
		pairedSiftDown(x, inx, i, hi, first)
	}
	for i := hi - 1; i >= 0; i-- {
		pairedSwap(x, inx, first, first+i)
		pairedSiftDown(x, inx, lo, i, first)
	}
}

// pairedMedianOfThree moves the median of x[a], x[b], x[c] into x[a].
func pairedMedianOfThree(x []float64, inx []int, a, b, c int) {
	m0, m1, m2 := b, a, c
	if lessTotal(x[m1], x[m0]) {
		pairedSwap(x, inx, m1, m0)
	}
	if lessTotal(x[m2], x[m1]) {
		pairedSwap(x, inx, m2, m1)
	}
	if lessTotal(x[m1], x[m0]) {
		pairedSwap(x, inx, m1, m0)
	}
}

func pairedSwapRange(x []float64, inx []int, a, b, n int) {
	for i := 0; i < n; i++ {
		pairedSwap(x, inx, a+i, b+i)
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func pairedDoPivot(x []float64, inx []int, lo, hi int) (midlo, midhi int) {
	m := lo + (hi-lo)/2
	if hi-lo > 40 {
		s := (hi - lo) / 8
		pairedMedianOfThree(x, inx, lo, lo+s, lo+2*s)
		pairedMedianOfThree(x, inx, m, m-s, m+s)
		pairedMedianOfThree(x, inx, hi-1, hi-1-s, hi-1-2*s)
	}
	pairedMedianOfThree(x, inx, lo, m, hi-1)

	pivot := lo
	a, b, c, d := lo+1, lo+1, hi, hi
	for {
		for b < c {
			if lessTotal(x[b], x[pivot]) {
				b++
			} else if !lessTotal(x[pivot], x[b]) {
				pairedSwap(x, inx, a, b)
				a++
				b++
			} else {
				break
			}
		}
		for b < c {
			if lessTotal(x[pivot], x[c-1]) {
				c--
			} else if !lessTotal(x[c-1], x[pivot]) {
				pairedSwap(x, inx, c-1, d-1)
				c--
				d--
			} else {
				break
			}
		}
		if b >= c {
			break
		}
		pairedSwap(x, inx, b, c-1)
		b++
		c--
	}

	n := minInt(b-a, a-lo)
	pairedSwapRange(x, inx, lo, b-n, n)

	n = minInt(hi-d, d-c)
	pairedSwapRange(x, inx, c, hi-n, n)

	return lo + b - a, hi - (d - c)
}

func pairedQuickSort(x []float64, inx []int, a, b, maxDepth int) {
	for b-a > 7 {
		if maxDepth == 0 {
			pairedHeapSort(x, inx, a, b)
			return
		}
		maxDepth--
		mlo, mhi := pairedDoPivot(x, inx, a, b)
		if mlo-a < b-mhi {
			pairedQuickSort(x, inx, a, mlo, maxDepth)
			a = mhi
		} else {
			pairedQuickSort(x, inx, mhi, b, maxDepth)
			b = mlo
		}
	}
	if b-a > 1 {
		pairedInsertionSort(x, inx, a, b)
	}
}
