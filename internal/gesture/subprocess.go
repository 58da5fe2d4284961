package gesture

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/logging"
)

// DefaultIdleTimeout stops an unused helper process.
const DefaultIdleTimeout = 30 * time.Second

// SubprocessClassifier delegates classification to a long-running helper
// process, typically a Python script wrapping a deep learning framework.
//
// The helper is started as
//
//	<command> <args...> --model <modelFile> [--structure <structure>]
//
// and first prints {"labels": N}. For every sample it then reads a 4-byte
// big-endian length followed by a PNG image on stdin and answers with one
// JSON line {"probs": [...]} or {"error": "..."}.
//
// The process is restarted on demand after it idles out.
type SubprocessClassifier struct {
	command     string
	args        []string
	IdleTimeout time.Duration

	mu        sync.Mutex
	modelFile string
	structure string
	labels    int

	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	started   bool
	idleTimer *time.Timer
}

// NewSubprocessClassifier creates a classifier that runs command with args.
func NewSubprocessClassifier(command string, args ...string) *SubprocessClassifier {
	return &SubprocessClassifier{
		command:     command,
		args:        args,
		IdleTimeout: DefaultIdleTimeout,
	}
}

type helperResponse struct {
	Labels int       `json:"labels"`
	Probs  []float64 `json:"probs"`
	Error  string    `json:"error"`
}

// Load starts the helper with the model and returns its label count.
func (c *SubprocessClassifier) Load(modelFile, structure string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := os.Stat(modelFile); err != nil {
		return 0, fmt.Errorf("model file: %w", err)
	}
	if err := c.shutdown(); err != nil {
		logging.Component("classifier").WithError(err).Debug("previous helper exited with error")
	}

	c.modelFile, c.structure, c.labels = modelFile, structure, 0
	if err := c.ensureStarted(); err != nil {
		c.modelFile = ""
		return 0, err
	}
	return c.labels, nil
}

// Analyze sends img to the helper and returns its topN predictions.
func (c *SubprocessClassifier) Analyze(img gocv.Mat, topN int) ([]Prediction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.modelFile == "" {
		return nil, ErrNotLoaded
	}
	if img.Empty() {
		return nil, fmt.Errorf("analyze: empty image")
	}
	if err := c.ensureStarted(); err != nil {
		return nil, err
	}

	buf, err := gocv.IMEncode(gocv.PNGFileExt, img)
	if err != nil {
		return nil, fmt.Errorf("encode sample: %w", err)
	}
	defer buf.Close()
	data := buf.GetBytes()

	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))
	if _, err := c.stdin.Write(length); err != nil {
		c.shutdown()
		return nil, fmt.Errorf("write length: %w", err)
	}
	if _, err := c.stdin.Write(data); err != nil {
		c.shutdown()
		return nil, fmt.Errorf("write data: %w", err)
	}

	resp, err := c.readResponse()
	if err != nil {
		c.shutdown()
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("classifier helper: %s", resp.Error)
	}
	if len(resp.Probs) != c.labels {
		return nil, fmt.Errorf("classifier helper returned %d probabilities, want %d", len(resp.Probs), c.labels)
	}

	c.resetIdleTimer()
	return TopN(resp.Probs, topN), nil
}

// Close stops the helper process.
func (c *SubprocessClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modelFile = ""
	return c.shutdown()
}

// Running reports whether the helper process is alive.
func (c *SubprocessClassifier) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started
}

func (c *SubprocessClassifier) ensureStarted() error {
	if c.started {
		return nil
	}

	args := append([]string(nil), c.args...)
	args = append(args, "--model", c.modelFile)
	if c.structure != "" {
		args = append(args, "--structure", c.structure)
	}
	c.cmd = exec.Command(c.command, args...)

	stdin, err := c.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}
	stdout, err := c.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}
	c.cmd.Stderr = os.Stderr

	if err := c.cmd.Start(); err != nil {
		return fmt.Errorf("start classifier helper: %w", err)
	}
	c.stdin = stdin
	c.stdout = bufio.NewReader(stdout)
	c.started = true

	resp, err := c.readResponse()
	if err == nil && resp.Error != "" {
		err = errors.New(resp.Error)
	}
	if err == nil && resp.Labels <= 0 {
		err = fmt.Errorf("%w: helper reported %d labels", ErrInvalidModel, resp.Labels)
	}
	if err != nil {
		c.shutdown()
		return fmt.Errorf("load model: %w", err)
	}
	if c.labels != 0 && c.labels != resp.Labels {
		c.shutdown()
		return fmt.Errorf("%w: label count changed from %d to %d", ErrInvalidModel, c.labels, resp.Labels)
	}
	c.labels = resp.Labels
	c.resetIdleTimer()
	return nil
}

func (c *SubprocessClassifier) readResponse() (helperResponse, error) {
	var resp helperResponse
	line, err := c.stdout.ReadBytes('\n')
	if err != nil {
		return resp, fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(line, &resp); err != nil {
		return resp, fmt.Errorf("parse response: %w", err)
	}
	return resp, nil
}

func (c *SubprocessClassifier) shutdown() error {
	if !c.started {
		return nil
	}

	if c.idleTimer != nil {
		c.idleTimer.Stop()
		c.idleTimer = nil
	}
	if c.stdin != nil {
		c.stdin.Close()
	}

	err := c.cmd.Wait()
	c.started = false
	c.cmd = nil
	c.stdin = nil
	c.stdout = nil
	return err
}

func (c *SubprocessClassifier) resetIdleTimer() {
	if c.IdleTimeout <= 0 {
		return
	}
	if c.idleTimer != nil {
		c.idleTimer.Stop()
	}
	c.idleTimer = time.AfterFunc(c.IdleTimeout, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.shutdown()
	})
}
