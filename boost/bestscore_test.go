package boost

import "testing"

func TestBestScoreNoValidation(t *testing.T) {
	b := newBestScore("NDCG@10")
	b.update(0, 0.1, nil)
	b.update(1, 0.3, nil)
	b.update(2, 0.2, nil)

	if _, ok := b.bestIter(); ok {
		t.Error("bestIter should be unavailable without a validation set")
	}
	if b.train != 0.3 || b.iter != 1 {
		t.Errorf("best training iter = (%d, %v), want (1, 0.3)", b.iter, b.train)
	}
}

func TestBestScoreWithValidation(t *testing.T) {
	b := newBestScore("NDCG@10")
	v0, v1, v2 := 0.4, 0.6, 0.5
	b.update(0, 0.1, &v0)
	b.update(1, 0.2, &v1)
	b.update(2, 0.2, &v2)

	iter, ok := b.bestIter()
	if !ok {
		t.Fatal("expected bestIter to be available")
	}
	if iter != 1 {
		t.Errorf("bestIter = %d, want 1", iter)
	}
	if b.validate != 0.6 {
		t.Errorf("best validate = %v, want 0.6", b.validate)
	}
}

func TestBestScoreString(t *testing.T) {
	b := newBestScore("NDCG@10")
	if got := b.String(); got != "" {
		t.Errorf("String() on unset bestScore = %q, want empty", got)
	}

	b.update(0, 0.5, nil)
	got := b.String()
	if got == "" {
		t.Error("expected non-empty summary after an update")
	}
}
