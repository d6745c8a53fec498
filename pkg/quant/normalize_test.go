package quant

import (
	"errors"
	gomath "math"
	"testing"
)

func TestExtractParamsAxisRange(t *testing.T) {
	p, err := ExtractParams(unitCube(), AxisRange)
	if err != nil {
		t.Fatalf("ExtractParams failed: %v", err)
	}

	if p.Strategy != AxisRange {
		t.Errorf("expected strategy %v, got %v", AxisRange, p.Strategy)
	}
	for a := 0; a < 3; a++ {
		if p.Min[a] != 0 {
			t.Errorf("axis %d: expected min 0, got %v", a, p.Min[a])
		}
		if p.Max[a] != 10 {
			t.Errorf("axis %d: expected max 10, got %v", a, p.Max[a])
		}
	}
}

func TestExtractParamsUnitSphere(t *testing.T) {
	v := VertexSet{{-2, 0, 0}, {2, 0, 0}, {0, 2, 0}, {0, -2, 0}}
	p, err := ExtractParams(v, UnitSphere)
	if err != nil {
		t.Fatalf("ExtractParams failed: %v", err)
	}

	for a := 0; a < 3; a++ {
		if !within(p.Center[a], 0, 1e-15) {
			t.Errorf("axis %d: expected center 0, got %v", a, p.Center[a])
		}
	}
	if !within(p.Scale, 2, 1e-15) {
		t.Errorf("expected scale 2, got %v", p.Scale)
	}
}

func TestExtractParamsDegenerateSphere(t *testing.T) {
	v := VertexSet{{5, 5, 5}}
	p, err := ExtractParams(v, UnitSphere)
	if err != nil {
		t.Fatalf("ExtractParams failed: %v", err)
	}

	if p.Scale != 1 {
		t.Errorf("expected recorded scale 1 for a collapsed mesh, got %v", p.Scale)
	}
	if p.Center != [3]float64{5, 5, 5} {
		t.Errorf("expected center (5,5,5), got %v", p.Center)
	}
}

func TestExtractParamsEmptySet(t *testing.T) {
	if _, err := ExtractParams(nil, AxisRange); !errors.Is(err, ErrEmptyVertexSet) {
		t.Errorf("expected ErrEmptyVertexSet, got %v", err)
	}
}

func TestExtractParamsUnknownStrategy(t *testing.T) {
	if _, err := ExtractParams(xLine(), Strategy(9)); !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("expected ErrUnknownStrategy, got %v", err)
	}
}

func TestForwardAxisRangeBounds(t *testing.T) {
	v := scatter()
	_, n, err := Normalize(v, AxisRange)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if len(n) != len(v) {
		t.Fatalf("expected %d normalized vertices, got %d", len(v), len(n))
	}
	for i, vert := range n {
		for a := 0; a < 3; a++ {
			if vert[a] < 0 || vert[a] > 1 {
				t.Fatalf("vertex %d axis %d: %v outside [0,1]", i, a, vert[a])
			}
		}
	}
}

func TestForwardUnitSphereBounds(t *testing.T) {
	v := scatter()
	_, n, err := Normalize(v, UnitSphere)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	for i, vert := range n {
		radius := gomath.Sqrt(vert[0]*vert[0] + vert[1]*vert[1] + vert[2]*vert[2])
		if radius > 1+1e-12 {
			t.Fatalf("vertex %d: normalized radius %v exceeds 1", i, radius)
		}
	}
}

func TestForwardZeroRangeAxis(t *testing.T) {
	p, n, err := Normalize(xLine(), AxisRange)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	// y and z carry no information and must map to 0.
	for i, vert := range n {
		if vert[1] != 0 || vert[2] != 0 {
			t.Errorf("vertex %d: expected zero-range axes to normalize to 0, got %v", i, vert)
		}
	}
	if n[0][0] != 0 || n[1][0] != 1 {
		t.Errorf("expected x to normalize to 0 and 1, got %v and %v", n[0][0], n[1][0])
	}

	deg := p.DegenerateAxes()
	if deg != [3]bool{false, true, true} {
		t.Errorf("expected degenerate axes [false true true], got %v", deg)
	}
}

func TestInverseRecoversExactly(t *testing.T) {
	for _, s := range Strategies() {
		v := scatter()
		p, n, err := Normalize(v, s)
		if err != nil {
			t.Fatalf("%v: Normalize failed: %v", s, err)
		}
		back, err := Inverse(n, p)
		if err != nil {
			t.Fatalf("%v: Inverse failed: %v", s, err)
		}

		for i := range v {
			for a := 0; a < 3; a++ {
				if !within(back[i][a], v[i][a], 1e-9) {
					t.Fatalf("%v: vertex %d axis %d: got %v, want %v", s, i, a, back[i][a], v[i][a])
				}
			}
		}
	}
}

func TestInverseZeroRangeRecoversMin(t *testing.T) {
	p, n, err := Normalize(xLine(), AxisRange)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	back, err := Inverse(n, p)
	if err != nil {
		t.Fatalf("Inverse failed: %v", err)
	}

	for i := range back {
		if back[i][1] != 0 || back[i][2] != 0 {
			t.Errorf("vertex %d: expected exact recovery on zero-range axes, got %v", i, back[i])
		}
	}
}

func TestForwardDoesNotMutateInput(t *testing.T) {
	v := unitCube()
	orig := v.Clone()

	for _, s := range Strategies() {
		if _, _, err := Normalize(v, s); err != nil {
			t.Fatalf("%v: Normalize failed: %v", s, err)
		}
	}
	for i := range v {
		if v[i] != orig[i] {
			t.Fatalf("vertex %d mutated: got %v, want %v", i, v[i], orig[i])
		}
	}
}
