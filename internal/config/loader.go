package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"

	defaultEnvFile = ".env"
)

// ErrHelp is returned by Load when -h or --help is requested.
var ErrHelp = pflag.ErrHelp

// Config represents normalized runtime configuration for the CLI.
type Config struct {
	// Token is the --token flag value only; environment tokens are kept apart so the
	// credential chain can order them.
	Token       string
	GitHubToken string
	GHToken     string

	OutputDir      string
	Format         string
	DownloadImages bool
	IncludeReviews bool
	Verbose        bool
	Quiet          bool
	ForceAPI       bool
	ForceGH        bool

	InputFile  string
	ConfigFile string
	EnvFile    string
	Positional []string
}

// Loader loads configuration from CLI args, environment variables and optional files.
type Loader interface {
	Load(args []string) (Config, error)
}

// NewLoader constructs the default configuration loader reading the process environment.
func NewLoader() Loader {
	return &flagLoader{environ: os.Environ, defaultEnvFile: defaultEnvFile}
}

type flagLoader struct {
	environ        func() []string
	defaultEnvFile string
}

type envConfig struct {
	GitHubToken string `env:"GITHUB_TOKEN"`
	GHToken     string `env:"GH_TOKEN"`
	Output      string `env:"PR2MD_OUTPUT"`
	Format      string `env:"PR2MD_FORMAT"`
}

type fileConfig struct {
	Output         *string `yaml:"output"`
	Format         *string `yaml:"format"`
	DownloadImages *bool   `yaml:"download_images"`
	IncludeReviews *bool   `yaml:"include_reviews"`
	Verbose        *bool   `yaml:"verbose"`
}

// Usage returns the flag help text.
func Usage() string {
	var cfg Config
	return newFlagSet(&cfg).FlagUsages()
}

func newFlagSet(cfg *Config) *pflag.FlagSet {
	flags := pflag.NewFlagSet("pr2md", pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.SortFlags = false

	flags.StringVarP(&cfg.Token, "token", "t", "", "GitHub token")
	flags.StringVarP(&cfg.OutputDir, "output", "o", "", "output directory for the offline package")
	flags.StringVarP(&cfg.Format, "format", "f", FormatMarkdown, "stdout format: markdown or json")
	flags.BoolVar(&cfg.DownloadImages, "download-images", true, "download embedded images into the package")
	flags.BoolVar(&cfg.IncludeReviews, "include-reviews", true, "include reviews and attach their inline comments")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVarP(&cfg.Quiet, "quiet", "q", false, "disable logging")
	flags.BoolVar(&cfg.ForceAPI, "force-api", false, "always use the GitHub REST API")
	flags.BoolVar(&cfg.ForceGH, "force-gh", false, "always use the gh CLI")
	flags.StringVar(&cfg.InputFile, "input-file", "", "batch input file, one reference per line")
	flags.StringVar(&cfg.ConfigFile, "config", "", "YAML defaults file")
	flags.StringVar(&cfg.EnvFile, "env-file", "", "dotenv file (default ./.env when present)")
	return flags
}

func (l *flagLoader) Load(args []string) (Config, error) {
	var flagCfg Config
	flags := newFlagSet(&flagCfg)
	if err := flags.Parse(args); err != nil {
		return Config{}, WrapError("parse flags", err)
	}

	cfg := Config{
		Format:         FormatMarkdown,
		DownloadImages: true,
		IncludeReviews: true,
		ConfigFile:     flagCfg.ConfigFile,
		EnvFile:        flagCfg.EnvFile,
		InputFile:      flagCfg.InputFile,
		Token:          flagCfg.Token,
		ForceAPI:       flagCfg.ForceAPI,
		ForceGH:        flagCfg.ForceGH,
		Quiet:          flagCfg.Quiet,
		Positional:     flags.Args(),
	}

	if cfg.ConfigFile != "" {
		fc, err := readConfigFile(cfg.ConfigFile)
		if err != nil {
			return Config{}, WrapError("read config file", err)
		}
		fc.apply(&cfg)
	}

	ec, err := l.readEnv(cfg.EnvFile)
	if err != nil {
		return Config{}, WrapError("read environment", err)
	}
	cfg.GitHubToken = ec.GitHubToken
	cfg.GHToken = ec.GHToken
	if ec.Output != "" {
		cfg.OutputDir = ec.Output
	}
	if ec.Format != "" {
		cfg.Format = ec.Format
	}

	if flags.Changed("output") {
		cfg.OutputDir = flagCfg.OutputDir
	}
	if flags.Changed("format") {
		cfg.Format = flagCfg.Format
	}
	if flags.Changed("download-images") {
		cfg.DownloadImages = flagCfg.DownloadImages
	}
	if flags.Changed("include-reviews") {
		cfg.IncludeReviews = flagCfg.IncludeReviews
	}
	if flags.Changed("verbose") {
		cfg.Verbose = flagCfg.Verbose
	} else if cfg.Quiet {
		cfg.Verbose = false
	}

	if err := validate(cfg); err != nil {
		return Config{}, WrapError("validate flags", err)
	}
	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.Format != FormatMarkdown && cfg.Format != FormatJSON {
		return NewValidationError("format", "must be markdown or json")
	}
	if cfg.ForceAPI && cfg.ForceGH {
		return NewConflictError("--force-api", "--force-gh")
	}
	if cfg.Verbose && cfg.Quiet {
		return NewConflictError("--verbose", "--quiet")
	}
	return nil
}

// readEnv parses the environment, filling gaps from a dotenv file. Real environment
// variables always win over dotenv values.
func (l *flagLoader) readEnv(envFile string) (envConfig, error) {
	vars := env.ToMap(l.environ())
	if vars == nil {
		vars = make(map[string]string)
	}

	dotenv, err := l.readDotenv(envFile)
	if err != nil {
		return envConfig{}, err
	}
	for key, value := range dotenv {
		if _, ok := vars[key]; !ok {
			vars[key] = value
		}
	}

	var ec envConfig
	if err := env.ParseWithOptions(&ec, env.Options{Environment: vars}); err != nil {
		return envConfig{}, err
	}
	return ec, nil
}

func (l *flagLoader) readDotenv(envFile string) (map[string]string, error) {
	if envFile != "" {
		values, err := godotenv.Read(envFile)
		if err != nil {
			return nil, fmt.Errorf("load env file %q: %w", envFile, err)
		}
		return values, nil
	}
	if l.defaultEnvFile == "" {
		return nil, nil
	}

	values, err := godotenv.Read(l.defaultEnvFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load env file %q: %w", l.defaultEnvFile, err)
	}
	return values, nil
}

func readConfigFile(path string) (fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, err
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fileConfig{}, fmt.Errorf("parse %q: %w", path, err)
	}
	return fc, nil
}

func (fc fileConfig) apply(cfg *Config) {
	if fc.Output != nil {
		cfg.OutputDir = *fc.Output
	}
	if fc.Format != nil {
		cfg.Format = *fc.Format
	}
	if fc.DownloadImages != nil {
		cfg.DownloadImages = *fc.DownloadImages
	}
	if fc.IncludeReviews != nil {
		cfg.IncludeReviews = *fc.IncludeReviews
	}
	if fc.Verbose != nil {
		cfg.Verbose = *fc.Verbose
	}
}
