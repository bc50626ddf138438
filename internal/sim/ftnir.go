package sim

import (
	"math"
	"math/rand"

	"monitoring-systemv1/internal/model"
)

// DefaultPeaksNm are the absorption dip positions baked into the emitted
// baseline spectrum. Alarm configs watching these wavelengths close the
// demo loop end-to-end.
var DefaultPeaksNm = []float64{2250.0, 1930.0, 1450.0}

const (
	peakDipDepth   = 0.4
	peakDipSigmaNm = 8.0
)

// SpectrumBaseline returns the fixed emission baseline: ones with
// Gaussian absorption dips at DefaultPeaksNm, sampled on the shared
// descending wavelength axis.
func SpectrumBaseline() []float64 {
	axis := model.WavelengthAxis()
	y := make([]float64, len(axis))
	for i := range y {
		y[i] = 1.0
	}
	for _, p := range DefaultPeaksNm {
		for i, x := range axis {
			d := x - p
			y[i] -= peakDipDepth * math.Exp(-(d*d)/(2*peakDipSigmaNm*peakDipSigmaNm))
		}
	}
	return y
}

// FTNIR models a fixed-length FT-NIR spectrum sensor. Every frame is the
// baseline plus Gaussian noise; occasionally the whole spectrum is
// shifted by a small integer number of samples to inject a wavelength
// shift fault.
type FTNIR struct {
	SensorName string
	NoiseSigma float64

	EnableShiftFaults bool
	ShiftProbability  float64
	ShiftMinPts       int
	ShiftMaxPts       int

	baseline []float64
	gate     emitGate
	rng      *rand.Rand
}

// NewFTNIR creates the sensor with stock fault settings.
func NewFTNIR(seed int64) *FTNIR {
	return &FTNIR{
		SensorName:        FtnirName,
		NoiseSigma:        0.002,
		EnableShiftFaults: true,
		ShiftProbability:  0.05,
		ShiftMinPts:       1,
		ShiftMaxPts:       1,
		baseline:          SpectrumBaseline(),
		gate:              emitGate{hz: defaultFtirHz},
		rng:               rand.New(rand.NewSource(seed)),
	}
}

func (s *FTNIR) Tick(ctx Context) []any {
	if !s.gate.shouldEmit(ctx.Now) {
		return nil
	}
	if !ctx.Device.IsSensorActive(s.SensorName, ctx.Now) {
		return nil
	}

	y := make([]float64, len(s.baseline))
	copy(y, s.baseline)

	if s.EnableShiftFaults && s.rng.Float64() < s.ShiftProbability {
		pts := s.ShiftMinPts
		if s.ShiftMaxPts > s.ShiftMinPts {
			pts += s.rng.Intn(s.ShiftMaxPts - s.ShiftMinPts + 1)
		}
		if s.rng.Float64() < 0.5 {
			pts = -pts
		}
		y = shift1D(y, pts)
	}

	if s.NoiseSigma > 0 {
		for i := range y {
			y[i] += s.rng.NormFloat64() * s.NoiseSigma
		}
	}

	return []any{
		model.FtirReading{Sensor: s.SensorName, Values: y, Timestamp: ctx.Now, Status: model.StatusOK},
	}
}

// shift1D shifts a spectrum by an integer number of samples with edge
// padding. Positive shifts move features toward higher indices; no
// wrap-around.
func shift1D(y []float64, shiftPts int) []float64 {
	n := len(y)
	out := make([]float64, n)
	if n == 0 || shiftPts == 0 {
		copy(out, y)
		return out
	}

	k := shiftPts
	if k < 0 {
		k = -k
	}
	if k > n {
		k = n
	}

	if shiftPts > 0 {
		for i := 0; i < k; i++ {
			out[i] = y[0]
		}
		copy(out[k:], y[:n-k])
	} else {
		copy(out[:n-k], y[k:])
		for i := n - k; i < n; i++ {
			out[i] = y[n-1]
		}
	}
	return out
}
