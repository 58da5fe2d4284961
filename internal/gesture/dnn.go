package gesture

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"
)

// DNNClassifier runs a trained network through OpenCV's dnn module. The
// network takes one 64x64 grayscale sample and outputs one probability per
// label.
type DNNClassifier struct {
	mu     sync.Mutex
	net    gocv.Net
	loaded bool
	labels int
}

// NewDNNClassifier creates a classifier without a model.
func NewDNNClassifier() *DNNClassifier {
	return &DNNClassifier{}
}

// Load reads a model. With a structure file the model is read as Caffe
// weights plus prototxt, otherwise the format is inferred from modelFile.
// The net is checked with a blank sample to count its labels.
func (c *DNNClassifier) Load(modelFile, structure string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := os.Stat(modelFile); err != nil {
		return 0, fmt.Errorf("model file: %w", err)
	}
	if structure != "" {
		if _, err := os.Stat(structure); err != nil {
			return 0, fmt.Errorf("structure file: %w", err)
		}
	}

	var net gocv.Net
	if structure != "" {
		net = gocv.ReadNetFromCaffe(structure, modelFile)
	} else {
		net = gocv.ReadNet(modelFile, "")
	}
	if net.Empty() {
		net.Close()
		return 0, fmt.Errorf("%w: cannot read %s", ErrInvalidModel, modelFile)
	}

	blank := gocv.Zeros(SampleSize, SampleSize, gocv.MatTypeCV8UC1)
	defer blank.Close()
	probs := forward(&net, blank)
	if len(probs) == 0 {
		net.Close()
		return 0, fmt.Errorf("%w: no outputs for a %dx%d sample", ErrInvalidModel, SampleSize, SampleSize)
	}

	c.release()
	c.net = net
	c.loaded = true
	c.labels = len(probs)
	return c.labels, nil
}

// Analyze classifies img. Color images are converted to grayscale and
// images of other sizes letterboxed to the sample size.
func (c *DNNClassifier) Analyze(img gocv.Mat, topN int) ([]Prediction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		return nil, ErrNotLoaded
	}
	if img.Empty() {
		return nil, fmt.Errorf("analyze: empty image")
	}

	gray := toGray(img)
	defer gray.Close()
	sample := ResizeSample(gray)
	defer sample.Close()

	return TopN(forward(&c.net, sample), topN), nil
}

// Labels returns the label count of the loaded model.
func (c *DNNClassifier) Labels() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.labels
}

// Close releases the network.
func (c *DNNClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.release()
	return nil
}

func (c *DNNClassifier) release() {
	if c.loaded {
		c.net.Close()
		c.loaded = false
		c.labels = 0
	}
}

func forward(net *gocv.Net, sample gocv.Mat) []float64 {
	blob := gocv.BlobFromImage(sample, 1.0, image.Pt(SampleSize, SampleSize), gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()

	net.SetInput(blob, "")
	out := net.Forward("")
	defer out.Close()

	flat := out.Reshape(1, 1)
	defer flat.Close()

	probs := make([]float64, flat.Cols())
	for i := range probs {
		probs[i] = float64(flat.GetFloatAt(0, i))
	}
	return probs
}

func toGray(img gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	switch img.Channels() {
	case 3:
		gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)
	case 4:
		gocv.CvtColor(img, &gray, gocv.ColorBGRAToGray)
	default:
		img.CopyTo(&gray)
	}
	return gray
}
