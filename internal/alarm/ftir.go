package alarm

import (
	"fmt"
	"math"
	"strings"

	"monitoring-systemv1/internal/model"
)

// DefaultSearchWindowNm is the symmetric half-window around each expected
// peak in which the dip is searched.
const DefaultSearchWindowNm = 12.0

// FtirPeakShift detects wavelength drift of the absorption peaks in an FTIR
// frame. The spectrum is matched against the fixed descending wavelength
// axis; peaks are dips (local minima). Each expected peak is located inside
// its search window, refined with a three-point parabolic fit, and the
// resulting shift compared against the per-peak allowed maximum.
type FtirPeakShift struct {
	SensorName         string
	ExpectedPeaksNm    []float64
	MaxAllowedShiftNm  []float64
	SearchWindowNm     float64
	RequireLengthMatch bool

	axis []float64
}

// NewFtirPeakShift builds the criterion with the packaged wavelength axis,
// the default search window and length matching on. ExpectedPeaksNm and
// MaxAllowedShiftNm must have equal length; evaluation panics otherwise.
func NewFtirPeakShift(sensor string, expectedNm, maxShiftNm []float64) *FtirPeakShift {
	return &FtirPeakShift{
		SensorName:         sensor,
		ExpectedPeaksNm:    expectedNm,
		MaxAllowedShiftNm:  maxShiftNm,
		SearchWindowNm:     DefaultSearchWindowNm,
		RequireLengthMatch: true,
		axis:               model.WavelengthAxis(),
	}
}

func (c *FtirPeakShift) Evaluate(store Reader, ctx Context) []Decision {
	reading, ok := store.LatestFtir(c.SensorName)
	if !ok {
		return nil
	}

	y := reading.Values
	x := c.axis
	if x == nil {
		x = model.WavelengthAxis()
	}

	id := model.AlarmID{Source: c.SensorName, Type: model.AlarmWavelengthShift, RuleName: RulePeakShift}

	if c.RequireLengthMatch && len(y) != len(x) {
		return []Decision{{
			ID:             id,
			Severity:       model.SeverityCritical,
			ShouldBeActive: true,
			Message:        fmt.Sprintf("FTIR axis/values length mismatch: axis=%d values=%d", len(x), len(y)),
			Value:          f64(math.Abs(float64(len(x) - len(y)))),
		}}
	}

	if len(c.ExpectedPeaksNm) != len(c.MaxAllowedShiftNm) {
		panic("alarm: expected_peaks_nm and max_allowed_shift_nm must have same length")
	}

	var violations []string
	worst := 0.0

	for i, expected := range c.ExpectedPeaksNm {
		maxShift := c.MaxAllowedShiftNm[i]

		found, ok := refinedMinimumNm(x, y, expected, c.SearchWindowNm)
		if !ok {
			violations = append(violations, fmt.Sprintf("Peak near %.1f nm not found", expected))
			continue
		}

		shift := math.Abs(found - expected)
		worst = math.Max(worst, shift)

		if shift > maxShift {
			violations = append(violations, fmt.Sprintf(
				"Peak %.1f nm shifted to %.1f nm (Δ=%.2f nm > %.2f nm)",
				expected, found, shift, maxShift))
		}
	}

	d := Decision{
		ID:             id,
		Severity:       model.SeverityWarning,
		ShouldBeActive: false,
		Message:        "FTIR peaks OK",
		Value:          f64(0),
	}
	if len(violations) > 0 {
		d.Severity = model.SeverityCritical
		d.ShouldBeActive = true
		d.Message = strings.Join(violations, " | ")
		d.Value = f64(worst)
	}
	return []Decision{d}
}

// minimumIndexInWindow returns the index of the smallest sample whose
// wavelength lies within windowNm of expectedNm. The first minimum wins on
// ties. The axis is descending, so the window is scanned by value, not by
// position.
func minimumIndexInWindow(x, y []float64, expectedNm, windowNm float64) (int, bool) {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	lo := expectedNm - windowNm
	hi := expectedNm + windowNm

	best := -1
	for i := 0; i < n; i++ {
		if x[i] < lo || x[i] > hi {
			continue
		}
		if best < 0 || y[i] < y[best] {
			best = i
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

// refineParabola refines a discrete minimum with three-point parabolic
// interpolation, which removes the jitter of the dip flipping between
// adjacent bins. The split formulation stays monotonic on a descending axis.
func refineParabola(x, y []float64, i0 int) float64 {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	if i0 <= 0 || i0 >= n-1 {
		return x[i0]
	}

	y1, y2, y3 := y[i0-1], y[i0], y[i0+1]
	denom := y1 - 2.0*y2 + y3
	if math.Abs(denom) < 1e-12 {
		return x[i0]
	}

	delta := 0.5 * (y1 - y3) / denom
	if delta > 1.0 {
		delta = 1.0
	} else if delta < -1.0 {
		delta = -1.0
	}

	if delta >= 0 {
		return x[i0] + delta*(x[i0+1]-x[i0])
	}
	return x[i0] + (-delta)*(x[i0-1]-x[i0])
}

func refinedMinimumNm(x, y []float64, expectedNm, windowNm float64) (float64, bool) {
	i0, ok := minimumIndexInWindow(x, y, expectedNm, windowNm)
	if !ok {
		return 0, false
	}
	return refineParabola(x, y, i0), true
}
