// Package config holds the tunable settings of mudra and loads them from
// JSON files, .env files and the environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MUDRA_"

const maxFileSize = 1 * 1024 * 1024 // 1MB

// Config is the root configuration.
type Config struct {
	DataDir    string           `json:"data_dir" validate:"required"`
	KeymapFile string           `json:"keymap_file"`
	Camera     CameraConfig     `json:"camera"`
	ROI        ROIConfig        `json:"roi"`
	Skin       SkinConfig       `json:"skin"`
	Arbiter    ArbiterConfig    `json:"arbiter"`
	Classifier ClassifierConfig `json:"classifier"`
	Server     ServerConfig     `json:"server"`
	Log        LogConfig        `json:"log"`
}

// CameraConfig selects the capture device and the processed frame size.
type CameraConfig struct {
	DeviceID int  `json:"device_id" validate:"min=0"`
	FPS      int  `json:"fps" validate:"min=1,max=240"`
	Width    int  `json:"width" validate:"min=1"`
	Height   int  `json:"height" validate:"min=1"`
	Mirror   bool `json:"mirror"`
}

// ROIConfig bounds the region of interest in percent of the frame and the
// pixel margins between it and the cursor region.
type ROIConfig struct {
	StartX       int `json:"start_x" validate:"min=0,max=100"`
	EndX         int `json:"end_x" validate:"min=0,max=100,gtfield=StartX"`
	StartY       int `json:"start_y" validate:"min=0,max=100"`
	EndY         int `json:"end_y" validate:"min=0,max=100,gtfield=StartY"`
	MarginLeft   int `json:"margin_left" validate:"min=0"`
	MarginRight  int `json:"margin_right" validate:"min=0"`
	MarginTop    int `json:"margin_top" validate:"min=0"`
	MarginBottom int `json:"margin_bottom" validate:"min=0"`
}

// SkinConfig is the skin color filter in HSV space.
type SkinConfig struct {
	MinH          int  `json:"min_h" validate:"min=0,max=180"`
	MaxH          int  `json:"max_h" validate:"min=0,max=180,gtefield=MinH"`
	MinS          int  `json:"min_s" validate:"min=0,max=255"`
	MaxS          int  `json:"max_s" validate:"min=0,max=255,gtefield=MinS"`
	MinV          int  `json:"min_v" validate:"min=0,max=255"`
	MaxV          int  `json:"max_v" validate:"min=0,max=255,gtefield=MinV"`
	DetectionArea int  `json:"detection_area" validate:"min=0"`
	Morphology    bool `json:"morphology"`
}

// ArbiterConfig expresses the action timing in camera frames.
type ArbiterConfig struct {
	ResponseFrames     int `json:"response_frames" validate:"min=1"`
	LostTrackingFrames int `json:"lost_tracking_frames" validate:"min=1"`
	Sensitivity        int `json:"sensitivity" validate:"min=0"`
	CountPeriodFrames  int `json:"count_period_frames" validate:"min=1"`
}

// ClassifierConfig selects the gesture classifier.
type ClassifierConfig struct {
	Backend       string `json:"backend" validate:"oneof=dnn subprocess"`
	ModelFile     string `json:"model_file"`
	StructureFile string `json:"structure_file"`
	Script        string `json:"script"`
	Python        string `json:"python"`
	TopN          int    `json:"top_n" validate:"min=1"`
}

// ServerConfig configures the local HTTP server and tray.
type ServerConfig struct {
	Addr      string `json:"addr" validate:"required"`
	StaticDir string `json:"static_dir"`
	Tray      bool   `json:"tray"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `json:"level" validate:"oneof=trace debug info warn error"`
	File  string `json:"file"`
}

// DefaultConfig returns the settings used when nothing else is configured.
// Timing defaults assume a 50 fps camera.
func DefaultConfig() Config {
	dataDir := ".mudra"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".mudra")
	}

	return Config{
		DataDir: dataDir,
		Camera: CameraConfig{
			DeviceID: 0,
			FPS:      50,
			Width:    640,
			Height:   480,
			Mirror:   true,
		},
		ROI: ROIConfig{
			StartX:       48,
			EndX:         98,
			StartY:       2,
			EndY:         68,
			MarginLeft:   50,
			MarginRight:  50,
			MarginTop:    10,
			MarginBottom: 150,
		},
		Skin: SkinConfig{
			MinH:          30,
			MaxH:          180,
			MinS:          0,
			MaxS:          255,
			MinV:          100,
			MaxV:          255,
			DetectionArea: 5000,
			Morphology:    true,
		},
		Arbiter: ArbiterConfig{
			ResponseFrames:     20,
			LostTrackingFrames: 40,
			Sensitivity:        10,
			CountPeriodFrames:  15,
		},
		Classifier: ClassifierConfig{
			Backend: "dnn",
			Python:  "python3",
			TopN:    5,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds a Config from defaults, the optional JSON file at path, a .env
// file in the working directory and MUDRA_* environment variables, in that
// order of precedence, and validates the result.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return cfg, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"DATA_DIR":           &c.DataDir,
		"KEYMAP_FILE":        &c.KeymapFile,
		"CLASSIFIER_BACKEND": &c.Classifier.Backend,
		"MODEL_FILE":         &c.Classifier.ModelFile,
		"STRUCTURE_FILE":     &c.Classifier.StructureFile,
		"CLASSIFIER_SCRIPT":  &c.Classifier.Script,
		"PYTHON":             &c.Classifier.Python,
		"SERVER_ADDR":        &c.Server.Addr,
		"STATIC_DIR":         &c.Server.StaticDir,
		"LOG_LEVEL":          &c.Log.Level,
		"LOG_FILE":           &c.Log.File,
	}
	for name, dst := range strs {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"CAMERA_DEVICE": &c.Camera.DeviceID,
		"CAMERA_FPS":    &c.Camera.FPS,
		"SENSITIVITY":   &c.Arbiter.Sensitivity,
	}
	for name, dst := range ints {
		v, ok := os.LookupEnv(EnvPrefix + name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = n
	}

	if v, ok := os.LookupEnv(EnvPrefix + "TRAY"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sTRAY: %w", EnvPrefix, err)
		}
		c.Server.Tray = b
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field constraint.
func (c Config) Validate() error {
	return validate.Struct(c)
}

// FramePeriod is the duration of one camera frame.
func (c Config) FramePeriod() time.Duration {
	return time.Second / time.Duration(c.Camera.FPS)
}

// Frames converts a frame count to a duration at the configured frame rate.
func (c Config) Frames(n int) time.Duration {
	return time.Duration(n) * c.FramePeriod()
}

// DatabasePath is the sqlite file inside DataDir.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "mudra.db")
}

// Save writes the config as indented JSON.
func (c Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
