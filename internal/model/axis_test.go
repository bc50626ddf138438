package model

import "testing"

func TestWavelengthAxisShape(t *testing.T) {
	axis := WavelengthAxis()
	if len(axis) != SpectrumPoints {
		t.Fatalf("axis length = %d, want %d", len(axis), SpectrumPoints)
	}
	if axis[0] != WavelengthStartNm {
		t.Errorf("axis[0] = %v", axis[0])
	}
	if axis[len(axis)-1] != WavelengthEndNm {
		t.Errorf("axis[last] = %v", axis[len(axis)-1])
	}
	for i := 1; i < len(axis); i++ {
		if axis[i] >= axis[i-1] {
			t.Fatalf("axis not strictly descending at %d: %v >= %v", i, axis[i], axis[i-1])
		}
	}
}

func TestWavelengthAxisReturnsFreshSlice(t *testing.T) {
	a := WavelengthAxis()
	a[0] = -1
	if b := WavelengthAxis(); b[0] != WavelengthStartNm {
		t.Error("mutating a returned axis leaked into later calls")
	}
}
