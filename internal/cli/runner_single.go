package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/johnqtcg/pr2md/internal/config"
	"github.com/johnqtcg/pr2md/internal/converter"
	gh "github.com/johnqtcg/pr2md/internal/github"
	"github.com/johnqtcg/pr2md/internal/logging"
	"github.com/johnqtcg/pr2md/internal/parser"
)

// Runner executes the CLI application flow.
type Runner interface {
	Run(ctx context.Context, args []string) int
}

// FetcherFactory creates GitHub fetcher instances from runtime config.
type FetcherFactory interface {
	New(cfg config.Config, token string, logger *slog.Logger) (gh.Fetcher, error)
}

// RendererFactory creates markdown renderer instances from runtime config.
type RendererFactory interface {
	New(cfg config.Config, logger *slog.Logger) converter.Renderer
}

// AppDeps defines dependencies for CLI app construction.
type AppDeps struct {
	Loader          config.Loader
	Parser          parser.URLParser
	FetcherFactory  FetcherFactory
	RendererFactory RendererFactory
	Writer          OutputWriter
	InputReader     InputReader
	// GHRunner backs the gh auth token lookup in the credential chain.
	GHRunner gh.CommandRunner
	Stdout   io.Writer
	Stderr   io.Writer
}

// App orchestrates CLI single and batch workflows.
type App struct {
	loader          config.Loader
	parser          parser.URLParser
	fetcherFactory  FetcherFactory
	rendererFactory RendererFactory
	writer          OutputWriter
	inputReader     InputReader
	ghRunner        gh.CommandRunner
	stdout          io.Writer
	stderr          io.Writer
}

// NewApp creates a CLI runner with injected dependencies.
func NewApp(deps AppDeps) Runner {
	app := &App{
		loader:          deps.Loader,
		parser:          deps.Parser,
		fetcherFactory:  deps.FetcherFactory,
		rendererFactory: deps.RendererFactory,
		writer:          deps.Writer,
		inputReader:     deps.InputReader,
		ghRunner:        deps.GHRunner,
		stdout:          deps.Stdout,
		stderr:          deps.Stderr,
	}
	app.setDefaults()
	return app
}

func (a *App) setDefaults() {
	if a.loader == nil {
		a.loader = config.NewLoader()
	}
	if a.parser == nil {
		a.parser = parser.New()
	}
	if a.fetcherFactory == nil {
		a.fetcherFactory = defaultFetcherFactory{}
	}
	if a.rendererFactory == nil {
		a.rendererFactory = defaultRendererFactory{}
	}
	if a.stdout == nil {
		a.stdout = os.Stdout
	}
	if a.stderr == nil {
		a.stderr = os.Stderr
	}
	if a.writer == nil {
		a.writer = NewOutputWriter(a.stdout)
	}
	if a.inputReader == nil {
		a.inputReader = NewFileInputReader()
	}
	if a.ghRunner == nil {
		a.ghRunner = gh.NewExecRunner()
	}
}

// session holds the collaborators built once per Run from the loaded config.
type session struct {
	cfg        config.Config
	credential Credential
	fetcher    gh.Fetcher
	renderer   converter.Renderer
	logger     *slog.Logger
}

// Run executes the CLI workflow and returns an exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	cfg, err := a.loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelp) {
			a.writeUsage()
			return ExitOK
		}
		writeErrorLine(a.stderr, err)
		return ResolveExitCode(err, false, 0)
	}

	validated, err := ValidateArgs(cfg)
	if err != nil {
		writeErrorLine(a.stderr, err)
		return ResolveExitCode(err, false, 0)
	}

	logger := logging.New(a.stderr, logging.Options{
		Verbose: cfg.Verbose,
		Quiet:   cfg.Quiet,
		NoColor: !isTerminal(a.stderr),
	})
	credential := ResolveCredential(ctx, cfg, a.ghRunner, logger)

	fetcher, err := a.fetcherFactory.New(cfg, credential.Token, logger)
	if err != nil {
		runErr := fmt.Errorf("build fetcher: %w", err)
		writeErrorLine(a.stderr, runErr)
		return ResolveExitCode(runErr, false, 0)
	}

	s := session{
		cfg:        cfg,
		credential: credential,
		fetcher:    fetcher,
		renderer:   a.rendererFactory.New(cfg, logger),
		logger:     logger,
	}

	switch validated.Mode {
	case ModeSingle:
		// stdout carries the document itself when no package directory is set.
		statusOutput := a.stdout
		if cfg.OutputDir == "" {
			statusOutput = a.stderr
		}

		item, runErr := a.runSingle(ctx, s, validated)
		if runErr != nil {
			item.Status = StatusFailed
			item.Reason = runErr.Error()
			writeStatusLine(statusOutput, item)
			return ResolveExitCode(runErr, false, 0)
		}
		writeStatusLine(statusOutput, item)
		return ExitOK
	case ModeBatch:
		summary, runErr := a.runBatch(ctx, s)
		if runErr != nil {
			writeErrorLine(a.stderr, runErr)
		}
		if _, writeErr := fmt.Fprintln(a.stdout, FormatSummary(summary)); writeErr != nil {
			writeErrorLine(a.stderr, fmt.Errorf("write summary output: %w", writeErr))
		}
		return ResolveExitCode(runErr, true, summary.Failed)
	default:
		err = fmt.Errorf("unsupported mode %q", validated.Mode)
		writeErrorLine(a.stderr, err)
		return ResolveExitCode(err, false, 0)
	}
}

func (a *App) runSingle(ctx context.Context, s session, args Args) (ItemResult, error) {
	item, err := a.processOne(ctx, s, args.Reference)
	if err != nil {
		return item, fmt.Errorf("run single reference %q: %w", args.Reference, err)
	}
	return item, nil
}

func (a *App) processOne(ctx context.Context, s session, reference string) (ItemResult, error) {
	item := ItemResult{
		Reference: reference,
		Status:    StatusFailed,
	}

	ref, err := a.parser.Parse(reference)
	if err != nil {
		return item, fmt.Errorf("parse reference: %w", err)
	}
	item.PR = ref.String()

	data, err := s.fetcher.Fetch(ctx, ref, gh.FetchOptions{
		IncludeReviews: s.cfg.IncludeReviews,
		ForceAPI:       s.cfg.ForceAPI,
		ForceGH:        s.cfg.ForceGH,
	})
	if err != nil {
		if gh.IsRateLimitError(err) && s.credential.Token == "" {
			s.logger.Warn("GitHub rate limit reached; anonymous requests are heavily limited, set --token or GITHUB_TOKEN")
		}
		return item, fmt.Errorf("load pull request: %w", err)
	}

	outputPath, err := a.writer.Write(ctx, OutputRequest{
		Config:     s.cfg,
		Credential: s.credential.Token,
		Data:       data,
		Renderer:   s.renderer,
		Logger:     s.logger,
	})
	if err != nil {
		return item, fmt.Errorf("write output: %w", err)
	}

	item.Status = StatusOK
	item.OutputPath = outputPath
	return item, nil
}

func (a *App) writeUsage() {
	if _, err := fmt.Fprintf(a.stdout, "Usage: pr2md [flags] <pull-request-url | owner/repo#N | owner/repo/N>\n\n%s", config.Usage()); err != nil {
		return
	}
}

type defaultFetcherFactory struct{}

func (f defaultFetcherFactory) New(cfg config.Config, token string, logger *slog.Logger) (gh.Fetcher, error) {
	_ = f
	_ = cfg
	fetcher, err := gh.NewFetcher(gh.Config{
		Token:  token,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create fetcher: %w", err)
	}
	return fetcher, nil
}

type defaultRendererFactory struct{}

func (f defaultRendererFactory) New(cfg config.Config, logger *slog.Logger) converter.Renderer {
	_ = f
	_ = cfg
	return converter.NewRenderer(nil, logger)
}

func writeStatusLine(w io.Writer, item ItemResult) {
	switch item.Status {
	case StatusOK:
		if _, err := fmt.Fprintf(w, "OK ref=%s pr=%s output=%s\n", item.Reference, item.PR, item.OutputPath); err != nil {
			return
		}
	default:
		if _, err := fmt.Fprintf(w, "FAILED ref=%s pr=%s reason=%s\n", item.Reference, item.PR, item.Reason); err != nil {
			return
		}
	}
}

func writeErrorLine(w io.Writer, err error) {
	if _, writeErr := fmt.Fprintf(w, "error: %v\n", err); writeErr != nil {
		return
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
