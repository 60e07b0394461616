package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/nguyentantai21042004/workflow-setup/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// options holds raw flag values. Only flags the user changed are applied over the config.
type options struct {
	configPath   string
	projectRoot  string
	pythonCmd    string
	venvPath     string
	modelsDir    string
	whisperModel string
	hfToken      string
	logLevel     string
	logFormat    string

	skipModels   bool
	skipVenv     bool
	skipWhisper  bool
	skipPyannote bool
	force        bool
}

type runFunc func(ctx context.Context, cfg config.Config) error

func newRootCmd(out io.Writer, run runFunc) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Prepare the audio workflow for first use",
		Long: `setup checks the host, creates a Python virtual environment, installs the
project requirements, creates the working directories and downloads the
Whisper and pyannote models.`,
		Example: `  setup
  setup --skip-models
  setup --whisper-model base --models-dir /data/models
  setup --hf-token hf_xxx --force`,
		Args: func(c *cobra.Command, args []string) error {
			if err := cobra.NoArgs(c, args); err != nil {
				fmt.Fprintln(c.ErrOrStderr(), c.UsageString())
				return err
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.resolve(cmd.Flags())
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		fmt.Fprintln(c.ErrOrStderr(), c.UsageString())
		return err
	})

	bindFlags(cmd.Flags(), opts)
	return cmd
}

func bindFlags(fs *pflag.FlagSet, o *options) {
	fs.SortFlags = false

	fs.BoolVar(&o.skipModels, "skip-models", false, "Skip downloading models")
	fs.BoolVar(&o.skipVenv, "skip-venv", false, "Skip virtual environment creation and install into the current interpreter")
	fs.StringVar(&o.hfToken, "hf-token", "", "Hugging Face token, saved to .env as HUGGINGFACE_TOKEN")
	fs.StringVar(&o.pythonCmd, "python-cmd", "", "Python command to use (default: python3, then python)")
	fs.StringVar(&o.venvPath, "venv-path", "./venv", "Virtual environment path")
	fs.StringVar(&o.modelsDir, "models-dir", "./models", "Models directory")
	fs.StringVar(&o.whisperModel, "whisper-model", config.DefaultWhisperModel,
		"Whisper model to download ("+strings.Join(config.WhisperModelNames(), ", ")+")")
	fs.BoolVar(&o.force, "force", false, "Force reinstall of all packages and reuse an existing environment without asking")

	fs.StringVar(&o.configPath, "config", "", "YAML config file; flags override its values")
	fs.StringVar(&o.projectRoot, "project-root", ".", "Project root holding requirements.txt")
	fs.BoolVar(&o.skipWhisper, "skip-whisper", false, "Do not download the Whisper model")
	fs.BoolVar(&o.skipPyannote, "skip-pyannote", false, "Do not download the pyannote model")
	fs.StringVar(&o.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	fs.StringVar(&o.logFormat, "log-format", "text", "Log format (text, json)")
}

// resolve builds the immutable run configuration: defaults, then the config file, then changed flags
func (o *options) resolve(fs *pflag.FlagSet) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = *loaded
	}

	strs := []struct {
		flag string
		dst  *string
		val  string
	}{
		{"python-cmd", &cfg.Python.Command, o.pythonCmd},
		{"venv-path", &cfg.Python.VenvPath, o.venvPath},
		{"models-dir", &cfg.Models.Dir, o.modelsDir},
		{"whisper-model", &cfg.Models.Whisper, o.whisperModel},
		{"project-root", &cfg.Paths.ProjectRoot, o.projectRoot},
		{"log-level", &cfg.Logging.Level, o.logLevel},
		{"log-format", &cfg.Logging.Format, o.logFormat},
	}
	for _, s := range strs {
		if fs.Changed(s.flag) {
			*s.dst = s.val
		}
	}

	bools := []struct {
		flag string
		dst  *bool
		val  bool
	}{
		{"skip-models", &cfg.Models.Skip, o.skipModels},
		{"skip-venv", &cfg.Python.SkipVenv, o.skipVenv},
		{"skip-whisper", &cfg.Models.SkipWhisper, o.skipWhisper},
		{"skip-pyannote", &cfg.Models.SkipPyannote, o.skipPyannote},
		{"force", &cfg.Force, o.force},
	}
	for _, b := range bools {
		if fs.Changed(b.flag) {
			*b.dst = b.val
		}
	}

	cfg.HFToken = o.hfToken

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
