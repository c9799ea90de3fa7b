package index

import (
	"cmp"
	"testing"
)

func collectChunked(cv *ChunkedVec[int]) []int {
	n := cv.Len()
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = cv.Get(i)
	}
	return out
}

func TestChunkedVecPushAndSplit(t *testing.T) {
	cv := NewChunkedVec[int](2)
	for i := 0; i < 20; i++ {
		cv.Push(i)
	}
	got := collectChunked(cv)
	for i, v := range got {
		if v != i {
			t.Fatalf("position %d: got %d want %d", i, v, i)
		}
	}
}

func TestChunkedVecInsertAndRemove(t *testing.T) {
	cv := NewChunkedVec[int](2)
	for _, v := range []int{1, 2, 4, 5} {
		cv.Push(v)
	}
	cv.Insert(2, 3)
	got := collectChunked(cv)
	want := []int{1, 2, 3, 4, 5}
	for i, v := range want {
		if got[i] != v {
			t.Fatalf("after insert: got %v want %v", got, want)
		}
	}

	cv.Remove(2)
	got = collectChunked(cv)
	want = []int{1, 2, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("after remove: got %v want %v", got, want)
	}
	for i, v := range want {
		if got[i] != v {
			t.Fatalf("after remove: got %v want %v", got, want)
		}
	}
}

func TestChunkedVecBinarySearchAndFirstLast(t *testing.T) {
	cv := NewChunkedVec[int](3)
	for _, v := range []int{1, 2, 2, 2, 3, 4, 4, 5} {
		cv.Push(v)
	}
	cmpTo := func(target int) func(int) int {
		return func(v int) int { return cmp.Compare(v, target) }
	}
	first, ok := cv.GetFirst(cmpTo(2))
	if !ok || first != 1 {
		t.Fatalf("GetFirst(2): got (%d,%v) want (1,true)", first, ok)
	}
	last, ok := cv.GetLast(cmpTo(2))
	if !ok || last != 3 {
		t.Fatalf("GetLast(2): got (%d,%v) want (3,true)", last, ok)
	}
	if _, ok := cv.GetFirst(cmpTo(99)); ok {
		t.Fatalf("expected GetFirst(99) to report not-found")
	}
}

func TestChunkedVecAsSlicesNoCopyWindow(t *testing.T) {
	cv := NewChunkedVec[int](2)
	for i := 0; i < 10; i++ {
		cv.Push(i)
	}
	slices := cv.AsSlices(3, 7)
	var flat []int
	for _, s := range slices {
		flat = append(flat, s...)
	}
	want := []int{3, 4, 5, 6}
	if len(flat) != len(want) {
		t.Fatalf("got %v want %v", flat, want)
	}
	for i, v := range want {
		if flat[i] != v {
			t.Fatalf("got %v want %v", flat, want)
		}
	}
}

func TestChunkedVecIterator(t *testing.T) {
	cv := NewChunkedVec[int](2)
	for i := 0; i < 6; i++ {
		cv.Push(i)
	}
	it := cv.Iter(1, 5)
	front, ok := it.Next()
	if !ok || front != 1 {
		t.Fatalf("Next: got (%d,%v) want (1,true)", front, ok)
	}
	back, ok := it.NextBack()
	if !ok || back != 4 {
		t.Fatalf("NextBack: got (%d,%v) want (4,true)", back, ok)
	}
}
