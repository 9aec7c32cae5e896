package boost

import (
	"fmt"
	"strings"
)

// bestScore tracks the best-so-far iteration: best validation score
// if a validation set is configured, else best training score. Early
// stop and the final console summary both read from it.
type bestScore struct {
	name string

	haveIter bool
	iter     int

	haveTrain bool
	train     float64

	haveValidate bool
	validate     float64
}

func newBestScore(name string) *bestScore {
	return &bestScore{name: name}
}

// update records iteration i's scores, replacing the running best
// when validate improves on it (or, absent a validation set, when
// train improves on it). The very first call only initializes the
// running best; it never counts as an "improvement" over itself.
func (b *bestScore) update(iter int, train float64, validate *float64) {
	if !b.haveIter {
		b.iter = iter
		b.haveIter = true
	}
	if !b.haveTrain {
		b.train = train
		b.haveTrain = true
	}
	if !b.haveValidate && validate != nil {
		b.validate = *validate
		b.haveValidate = true
	}

	if validate != nil {
		if *validate > b.validate {
			b.iter, b.train, b.validate = iter, train, *validate
		}
	} else if train > b.train {
		b.iter, b.train = iter, train
	}
}

// bestIter returns the best iteration and true only when a validation
// set was configured; early stop is disabled otherwise.
func (b *bestScore) bestIter() (int, bool) {
	if !b.haveValidate {
		return 0, false
	}
	return b.iter, true
}

func (b *bestScore) String() string {
	var sb strings.Builder
	if b.haveIter && b.haveTrain {
		fmt.Fprintf(&sb, "\nBest score at #iter %d:\n", b.iter)
		fmt.Fprintf(&sb, "%s on training data: %.4f\n", b.name, b.train)
	}
	if b.haveValidate {
		fmt.Fprintf(&sb, "%s on validating data: %.4f\n", b.name, b.validate)
	}
	return sb.String()
}
