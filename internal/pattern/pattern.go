// Package pattern stages hardware verification patterns on a matrix.
// These exist to confirm wiring, channel order and orientation on a real
// board; the caller steps the runner and renders between steps.
package pattern

import "github.com/ASCCJR/Matriz5x5/internal/matrix"

type Kind string

const (
	None       Kind = ""
	IndexSweep Kind = "index_sweep"
	Channels   Kind = "rgb_channels"
	RowSweep   Kind = "row_sweep"
	ColSweep   Kind = "col_sweep"
)

type Plan struct{ Kind Kind }

type Runner struct {
	plan Plan
	step int
}

func NewRunner(plan Plan) *Runner { return &Runner{plan: plan} }

func (r *Runner) Kind() Kind { return r.plan.Kind }

// Reset rewinds the runner so the pattern replays from its first step.
func (r *Runner) Reset() { r.step = 0 }

// Step stages the next frame of the pattern into m, replacing the previous
// staging. Returns false once the pattern has completed; the buffer is
// left cleared in that case.
func (r *Runner) Step(m *matrix.Matrix) bool {
	m.Clear()
	dim := m.Layout().Dim

	switch r.plan.Kind {
	case IndexSweep:
		// One lit pixel walking the logical grid in raster order; on the
		// board it must appear to snake along the physical wire.
		if r.step >= m.Layout().Count() {
			return false
		}
		m.SetPixel(r.step%dim.X, r.step/dim.X, 255, 255, 255)
	case Channels:
		if r.step >= 3 {
			return false
		}
		switch r.step {
		case 0:
			m.Fill(255, 0, 0)
		case 1:
			m.Fill(0, 255, 0)
		case 2:
			m.Fill(0, 0, 255)
		}
	case RowSweep:
		if r.step >= dim.Y {
			return false
		}
		for x := 0; x < dim.X; x++ {
			m.SetPixel(x, r.step, 0, 255, 255)
		}
	case ColSweep:
		if r.step >= dim.X {
			return false
		}
		for y := 0; y < dim.Y; y++ {
			m.SetPixel(r.step, y, 255, 0, 255)
		}
	default:
		return false
	}
	r.step++
	return true
}
