package linemask

import (
	"errors"
	"strings"
	"testing"
)

func TestMaskObserved(t *testing.T) {
	set := Set{
		{Start: 4860, End: 4864},
		{Start: 5006, End: 5010},
	}
	wave := []float64{4858, 4860, 4862, 4864, 4866, 5004, 5008, 5012}

	got := set.MaskObserved(wave, 0)
	want := []bool{false, true, true, true, false, false, true, false}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("mask[%d]: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMaskObservedRedshift(t *testing.T) {
	set := Set{{Start: 1000, End: 1010}}
	wave := []float64{1005, 2005, 2010, 2025}

	// At z=1 the window covers [2000, 2020].
	got := set.MaskObserved(wave, 1)
	want := []bool{false, true, true, false}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("mask[%d]: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMaskObservedEmptySet(t *testing.T) {
	var set Set
	for _, v := range set.MaskObserved([]float64{1, 2, 3}, 0.5) {
		if v {
			t.Fatal("empty set masked a wavelength")
		}
	}
}

func TestLoad(t *testing.T) {
	input := `# exclusion windows
4855 4870

5000  5020
`
	set, err := Load(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Set{{Start: 4855, End: 4870}, {Start: 5000, End: 5020}}
	if len(set) != len(want) {
		t.Fatalf("windows: got %d, want %d", len(set), len(want))
	}
	for i := range want {
		if set[i] != want[i] {
			t.Errorf("window %d: got %+v, want %+v", i, set[i], want[i])
		}
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing column", "4855\n"},
		{"bad number", "4855 x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(strings.NewReader(tt.input)); err == nil {
				t.Error("Load: expected error")
			}
		})
	}

	if _, err := Load(strings.NewReader("4870 4855\n")); !errors.Is(err, ErrInvalidWindow) {
		t.Errorf("reversed window: got error %v, want %v", err, ErrInvalidWindow)
	}
}
