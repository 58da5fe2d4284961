package app

import (
	"github.com/ayusman/mudra/internal/arbiter"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/hand"
)

func cameraConfig(c config.CameraConfig) capture.Config {
	return capture.Config{
		DeviceID: c.DeviceID,
		FPS:      c.FPS,
		Width:    c.Width,
		Height:   c.Height,
		Mirror:   c.Mirror,
	}
}

func skinFilter(c config.SkinConfig) hand.Filter {
	return hand.Filter{
		Lower:         hand.HSV{H: float64(c.MinH), S: float64(c.MinS), V: float64(c.MinV)},
		Upper:         hand.HSV{H: float64(c.MaxH), S: float64(c.MaxS), V: float64(c.MaxV)},
		DetectionArea: float64(c.DetectionArea),
		Morphology:    c.Morphology,
	}
}

// arbiterConfig converts the frame counts of c to durations.
func arbiterConfig(c config.Config) arbiter.Config {
	return arbiter.Config{
		ResponseInterval:     c.Frames(c.Arbiter.ResponseFrames),
		LostTrackingInterval: c.Frames(c.Arbiter.LostTrackingFrames),
		Sensitivity:          c.Arbiter.Sensitivity,
		CountPeriod:          c.Frames(c.Arbiter.CountPeriodFrames),
	}
}

func regionOfInterest(c config.Config, width, height int) capture.ROI {
	r := c.ROI
	return capture.NewROI(width, height, r.StartX, r.EndX, r.StartY, r.EndY, capture.Margins{
		Left:   r.MarginLeft,
		Right:  r.MarginRight,
		Top:    r.MarginTop,
		Bottom: r.MarginBottom,
	})
}
