package delivery

import "testing"

func BenchmarkMonotonicGenerator(b *testing.B) {
	gen := NewMonotonicGenerator(nil)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := gen.New(ResourceErrors); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkIDResource(b *testing.B) {
	gen := NewMonotonicGenerator(nil)
	id, err := gen.New(ResourceErrors)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := id.Resource(); err != nil {
			b.Fatal(err)
		}
	}
}
