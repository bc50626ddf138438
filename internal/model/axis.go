package model

// SpectrumPoints is the fixed length of every FTIR frame.
const SpectrumPoints = 255

// Wavelength axis endpoints in nanometres. The axis descends, matching the
// instrument scan direction.
const (
	WavelengthStartNm = 2550.0
	WavelengthEndNm   = 1350.0
)

// WavelengthAxis returns the shared descending wavelength axis, one entry per
// spectrum point. Callers receive a fresh slice and may modify it.
func WavelengthAxis() []float64 {
	axis := make([]float64, SpectrumPoints)
	step := (WavelengthStartNm - WavelengthEndNm) / float64(SpectrumPoints-1)
	for i := range axis {
		axis[i] = WavelengthStartNm - float64(i)*step
	}
	return axis
}
