package tree

import (
	"fmt"
	"testing"
)

func BenchmarkBuildRows_MixedThreads(b *testing.B) {
	vt := benchmarkTree(1200)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = BuildRows(vt)
	}
}

func BenchmarkThreadLookup(b *testing.B) {
	vt := benchmarkTree(1200)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = vt.Thread(int64(i%1200 + 1))
	}
}

func benchmarkTree(n int) *Tree {
	vt := New()
	list, _ := vt.ThreadList()
	for i := 0; i < n; i++ {
		id := int64(i + 1)
		node := threadNode(vt, id, fmt.Sprintf("Thread %04d\nby user%02d", i, i%30), i%4 == 0, i%4 == 0, "first\nsecond\nthird")
		node.ToggleClass(ClassHidden, i%3 == 0)
		list.Append(node)
	}
	return vt
}
