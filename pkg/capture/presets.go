package capture

import "time"

// Preset names for common configurations
const (
	PresetDefault  = "default"
	PresetDocument = "document"
	PresetFast     = "fast"
)

// Presets returns all available preset configurations.
func Presets() map[string]Config {
	return map[string]Config{
		PresetDefault:  DefaultConfig(),
		PresetDocument: DocumentConfig(),
		PresetFast:     FastConfig(),
	}
}

// PresetNames returns the list of available preset names.
func PresetNames() []string {
	return []string{
		PresetDefault,
		PresetDocument,
		PresetFast,
	}
}

// GetPreset returns a preset config by name, or nil if not found.
func GetPreset(name string) *Config {
	presets := Presets()
	if cfg, ok := presets[name]; ok {
		return &cfg
	}
	return nil
}

// DocumentConfig returns configuration optimized for dense printed pages.
// Maximum resolution, slow cadence; recognition dominates the loop anyway.
func DocumentConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 1920
	cfg.Height = 1080
	cfg.FrameInterval = 500 * time.Millisecond
	cfg.JPEGQuality = 95
	return cfg
}

// FastConfig returns configuration for short text like signs and labels.
// Lower resolution for quicker recognition passes.
func FastConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 640
	cfg.Height = 480
	cfg.FrameInterval = 100 * time.Millisecond
	cfg.JPEGQuality = 80
	return cfg
}
