package callnode

import "testing"

func TestGroundVsSymbolic(t *testing.T) {
	ground := New("f", 1, "a")
	if !ground.IsGround() {
		t.Fatalf("expected ground CallNode")
	}

	symbolic := New("g", New("f", 1))
	if symbolic.IsGround() {
		t.Fatalf("expected symbolic CallNode")
	}
}

func TestEqualStructural(t *testing.T) {
	a := New("f", 1, New("g", 2))
	b := New("f", 1, New("g", 2))
	if !Equal(a, b) {
		t.Fatalf("expected structurally equal CallNodes")
	}
	if a.Hash() != b.Hash() {
		t.Fatalf("expected equal hashes for structurally equal CallNodes")
	}

	c := New("f", 1, New("g", 3))
	if Equal(a, c) {
		t.Fatalf("expected inequality for differing nested argument")
	}
	if a.Hash() == c.Hash() {
		t.Fatalf("expected distinct hashes for differing nested argument")
	}
}

func TestKwargNormalization(t *testing.T) {
	a := NewWithKwargs("f", nil, []KwArg{{Name: "b", Value: 2}, {Name: "a", Value: 1}}, []string{"a", "b"})
	b := NewWithKwargs("f", nil, []KwArg{{Name: "a", Value: 1}, {Name: "b", Value: 2}}, nil)
	if !Equal(a, b) {
		t.Fatalf("expected kwargs normalized into declared order to equal explicit order")
	}
}

func TestHashIsDeterministic(t *testing.T) {
	a := New("f", "x", 1, true)
	h1 := a.Hash()
	h2 := New("f", "x", 1, true).Hash()
	if h1 != h2 {
		t.Fatalf("expected deterministic hash across separate constructions")
	}
}

func TestProjectionEqualityAndHash(t *testing.T) {
	f := New("f")
	p1 := &Projection{Node: f, Path: []int{0, 1}}
	p2 := &Projection{Node: New("f"), Path: []int{0, 1}}
	p3 := &Projection{Node: f, Path: []int{0, 0}}

	if !Equal(New("g", p1), New("g", p2)) {
		t.Fatalf("expected equal projections to produce equal CallNodes")
	}
	if Equal(New("g", p1), New("g", p3)) {
		t.Fatalf("expected differing projection path to produce distinct CallNodes")
	}
	if New("g", p1).IsGround() {
		t.Fatalf("a CallNode embedding a Projection must not be ground")
	}
}

func TestXunDistinguishesArgOrder(t *testing.T) {
	a := New("f", 1, 2)
	b := New("f", 2, 1)
	if Equal(a, b) {
		t.Fatalf("argument order must matter")
	}
}
