package arbiter

import (
	"image"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Cursor filter noise levels.
const (
	processNoise     = 1e-4
	measurementNoise = 1e-3
	initialError     = 0.2
)

// CursorFilter is a linear Kalman filter that smooths the tracked cursor
// position. The state is (x, y, vx, vy) and the measurement is (x, y).
//
// The transition matrix is the identity: velocity is carried in the state
// but never applied, so the filter behaves as a damped position average.
// The cursor feel was tuned with this model.
type CursorFilter struct {
	f, h, q, r *mat.Dense

	state    *mat.VecDense
	errorCov *mat.Dense
}

// NewCursorFilter creates a filter at its initial state.
func NewCursorFilter() *CursorFilter {
	h := mat.NewDense(2, 4, nil)
	h.Set(0, 0, 1)
	h.Set(1, 1, 1)

	c := &CursorFilter{
		f: identity(4, 1),
		h: h,
		q: identity(4, processNoise),
		r: identity(2, measurementNoise),
	}
	c.Reset()
	return c
}

// Reset returns the filter to its initial state: zero state vector and an
// error covariance of 0.2·I.
func (c *CursorFilter) Reset() {
	c.state = mat.NewVecDense(4, nil)
	c.errorCov = identity(4, initialError)
}

// Estimate runs one predict and correct step with the measurement (x, y)
// and returns the corrected position rounded to pixels.
func (c *CursorFilter) Estimate(x, y float64) image.Point {
	statePre, errorPre := c.predict()
	c.correct(statePre, errorPre, x, y)
	return image.Pt(int(math.Round(c.state.AtVec(0))), int(math.Round(c.state.AtVec(1))))
}

// State returns a copy of the filter's state vector.
func (c *CursorFilter) State() []float64 {
	return mat.Col(nil, 0, c.state)
}

func (c *CursorFilter) predict() (*mat.VecDense, *mat.Dense) {
	var x mat.VecDense
	x.MulVec(c.f, c.state)

	var p mat.Dense
	p.Product(c.f, c.errorCov, c.f.T())
	p.Add(&p, c.q)
	return &x, &p
}

func (c *CursorFilter) correct(statePre *mat.VecDense, errorPre *mat.Dense, x, y float64) {
	var s mat.Dense
	s.Product(c.h, errorPre, c.h.T())
	s.Add(&s, c.r)

	var sInv mat.Dense
	if err := sInv.Inverse(&s); err != nil {
		// Keep the prediction when the innovation covariance is singular.
		c.state, c.errorCov = statePre, errorPre
		return
	}

	var gain mat.Dense
	gain.Product(errorPre, c.h.T(), &sInv)

	var predicted mat.VecDense
	predicted.MulVec(c.h, statePre)
	innovation := mat.NewVecDense(2, []float64{x, y})
	innovation.SubVec(innovation, &predicted)

	var update mat.VecDense
	update.MulVec(&gain, innovation)

	state := mat.NewVecDense(4, nil)
	state.AddVec(statePre, &update)

	var khp mat.Dense
	khp.Product(&gain, c.h, errorPre)
	errorCov := mat.NewDense(4, 4, nil)
	errorCov.Sub(errorPre, &khp)

	c.state, c.errorCov = state, errorCov
}

func identity(n int, v float64) *mat.Dense {
	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		d.Set(i, i, v)
	}
	return d
}
