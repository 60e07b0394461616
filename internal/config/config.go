package config

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

type Config struct {
	Python       PythonConfig       `yaml:"python"`
	Models       ModelsConfig       `yaml:"models"`
	Paths        PathsConfig        `yaml:"paths"`
	Logging      LoggingConfig      `yaml:"logging"`
	Requirements RequirementsConfig `yaml:"requirements"`

	// Force reuses an existing environment without prompting and reinstalls every package.
	Force bool `yaml:"force"`

	// HFToken is the Hugging Face credential. Only accepted from the command line.
	HFToken string `yaml:"-"`
}

type PythonConfig struct {
	// Command is the interpreter used to create the environment. Empty means auto-detect.
	Command      string `yaml:"command"`
	VenvPath     string `yaml:"venv_path"`
	SkipVenv     bool   `yaml:"skip_venv"`
	Manifest     string `yaml:"manifest"`
	WheelPattern string `yaml:"wheel_pattern"`
}

type ModelsConfig struct {
	Dir          string `yaml:"dir"`
	Whisper      string `yaml:"whisper"`
	Skip         bool   `yaml:"skip"`
	SkipWhisper  bool   `yaml:"skip_whisper"`
	SkipPyannote bool   `yaml:"skip_pyannote"`
}

type PathsConfig struct {
	ProjectRoot string `yaml:"project_root"`
	Input       string `yaml:"input"`
	Output      string `yaml:"output"`
	Config      string `yaml:"config"`
	Modules     string `yaml:"modules"`
	Utils       string `yaml:"utils"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type RequirementsConfig struct {
	MinPython   string  `yaml:"min_python"`
	MinDiskGB   float64 `yaml:"min_disk_gb"`
	MinMemoryGB float64 `yaml:"min_memory_gb"`
}

// Default returns the configuration used when neither a file nor flags override it
func Default() Config {
	return Config{
		Python: PythonConfig{
			VenvPath:     "./venv",
			Manifest:     "requirements.txt",
			WheelPattern: "*.whl",
		},
		Models: ModelsConfig{
			Dir:     "./models",
			Whisper: DefaultWhisperModel,
		},
		Paths: PathsConfig{
			ProjectRoot: ".",
			Input:       "audio_input",
			Output:      "outputs",
			Config:      "config",
			Modules:     "modules",
			Utils:       "utils",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Requirements: RequirementsConfig{
			MinPython:   "3.8",
			MinDiskGB:   10,
			MinMemoryGB: 8,
		},
	}
}

func (c *Config) Validate() error {
	if c.Python.VenvPath == "" && !c.Python.SkipVenv {
		return fmt.Errorf("python.venv_path is required")
	}
	if c.Models.Dir == "" {
		return fmt.Errorf("models.dir is required")
	}
	if c.Models.Whisper == "" {
		c.Models.Whisper = DefaultWhisperModel
	}
	if !IsWhisperModel(c.Models.Whisper) {
		return fmt.Errorf("invalid whisper model %q: must be one of %s",
			c.Models.Whisper, strings.Join(WhisperModelNames(), ", "))
	}
	if strings.ContainsAny(c.Python.Command, "\n\r") {
		return fmt.Errorf("python.command must be a single command name")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level %q: must be debug, info, warn or error", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid logging.format %q: must be text or json", c.Logging.Format)
	}

	if c.Python.Manifest == "" {
		c.Python.Manifest = "requirements.txt"
	}
	if c.Python.WheelPattern == "" {
		c.Python.WheelPattern = "*.whl"
	}
	if c.Paths.ProjectRoot == "" {
		c.Paths.ProjectRoot = "."
	}
	if c.Paths.Input == "" {
		c.Paths.Input = "audio_input"
	}
	if c.Paths.Output == "" {
		c.Paths.Output = "outputs"
	}
	if c.Paths.Config == "" {
		c.Paths.Config = "config"
	}
	if c.Paths.Modules == "" {
		c.Paths.Modules = "modules"
	}
	if c.Paths.Utils == "" {
		c.Paths.Utils = "utils"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Requirements.MinPython == "" {
		c.Requirements.MinPython = "3.8"
	}
	if !semver.IsValid("v" + c.Requirements.MinPython) {
		return fmt.Errorf("invalid requirements.min_python %q: want MAJOR.MINOR[.PATCH]", c.Requirements.MinPython)
	}
	if c.Requirements.MinDiskGB == 0 {
		c.Requirements.MinDiskGB = 10
	}
	if c.Requirements.MinMemoryGB == 0 {
		c.Requirements.MinMemoryGB = 8
	}

	return nil
}
