package hand

import (
	"gocv.io/x/gocv"
)

// MOG2 parameters of the background model.
const (
	backgroundHistory      = 1
	backgroundVarThreshold = 16
)

// Background is an adaptive background subtraction model built on a
// Gaussian mixture (MOG2). Set trains it on a reference frame with full
// learning. Subtract applies it without learning, so a hand that rests in
// place is not absorbed into the background.
//
// gocv only exposes Apply with the automatic learning rate, which is 1 for
// the first frame a subtractor sees and would keep learning afterwards.
// Subtract therefore seeds a fresh subtractor from the stored reference and
// applies it once to the frame: the mask is computed against a model that
// learned only the reference.
type Background struct {
	reference gocv.Mat
	ready     bool
}

// NewBackground creates an empty background model.
func NewBackground() *Background {
	return &Background{reference: gocv.NewMat()}
}

// Set trains the model on frame. An empty frame clears the model.
func (b *Background) Set(frame gocv.Mat) {
	if frame.Empty() {
		b.Clear()
		return
	}
	frame.CopyTo(&b.reference)
	b.ready = true
}

// Clear drops the model. It reports whether a model was present.
func (b *Background) Clear() bool {
	was := b.ready
	b.ready = false
	return was
}

// Ready reports whether the model has been trained.
func (b *Background) Ready() bool {
	return b.ready
}

// Image returns the frame the model was trained on. It is empty until Set
// is called and stays owned by the model.
func (b *Background) Image() gocv.Mat {
	return b.reference
}

// Mask returns the foreground mask of frame: 255 where frame differs from
// the trained background, 0 elsewhere. The caller must close the returned Mat.
func (b *Background) Mask(frame gocv.Mat) gocv.Mat {
	mog := gocv.NewBackgroundSubtractorMOG2WithParams(backgroundHistory, backgroundVarThreshold, false)
	defer mog.Close()

	seed := gocv.NewMat()
	defer seed.Close()
	mog.Apply(b.reference, &seed)

	mask := gocv.NewMat()
	mog.Apply(frame, &mask)
	return mask
}

// Subtract returns a copy of frame with every background pixel set to black.
// Without a model, or when frame does not match the reference size and
// type, it returns a plain copy. The caller must close the returned Mat.
func (b *Background) Subtract(frame gocv.Mat) gocv.Mat {
	if !b.ready || frame.Rows() != b.reference.Rows() || frame.Cols() != b.reference.Cols() ||
		frame.Type() != b.reference.Type() {
		return frame.Clone()
	}

	mask := b.Mask(frame)
	defer mask.Close()

	out := gocv.Zeros(frame.Rows(), frame.Cols(), frame.Type())
	frame.CopyToWithMask(&out, mask)
	return out
}

// Close releases the model.
func (b *Background) Close() {
	b.reference.Close()
	b.ready = false
}
