package spectrum

import "fmt"

func ExampleSpectrum_CorrectError() {
	s, _ := New(
		[]float64{4000, 4001, 4002},
		[]float64{1.0, 1.1, 1.2},
		WithError([]float64{0.1, -1, 0.2}),
	)
	s.CorrectError(DefaultBadError)
	fmt.Println(s.Mask())
	// Output:
	// [false true false]
}

func ExampleSpectrum_SubWaveLimits() {
	s, _ := New(
		[]float64{4000, 4001, 4002, 4003},
		[]float64{1, 2, 3, 4},
	)
	sub, _ := s.SubWaveLimits(4001, 4002)
	fmt.Println(sub.Data())
	// Output:
	// [2 3]
}

func ExampleSpectrum_RebinLogarithmic() {
	wave := []float64{4000, 4001, 4002, 4003}
	s, _ := New(wave, []float64{1, 1, 1, 1})
	rebinned, _ := s.RebinLogarithmic(2)
	fmt.Printf("%d pixels, %.0f km/s per pixel\n", rebinned.Len(), rebinned.VelSampling())
	// Output:
	// 8 pixels, 75 km/s per pixel
}
