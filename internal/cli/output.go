package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/johnqtcg/pr2md/internal/config"
	"github.com/johnqtcg/pr2md/internal/converter"
	gh "github.com/johnqtcg/pr2md/internal/github"
	"github.com/johnqtcg/pr2md/internal/packager"
)

const outputPathStdout = "stdout"

// OutputRequest carries one loaded pull request to its destination.
type OutputRequest struct {
	Config     config.Config
	Credential string
	Data       *gh.PRData
	Renderer   converter.Renderer
	Logger     *slog.Logger
}

// OutputWriter writes a loaded pull request to stdout or an offline package and reports
// where the primary document went.
type OutputWriter interface {
	Write(ctx context.Context, req OutputRequest) (string, error)
}

type packageOutputWriter struct {
	stdout io.Writer
}

// NewOutputWriter creates an output writer with the provided stdout sink.
func NewOutputWriter(stdout io.Writer) OutputWriter {
	return &packageOutputWriter{stdout: stdout}
}

func (w *packageOutputWriter) Write(ctx context.Context, req OutputRequest) (string, error) {
	if req.Data == nil {
		return "", fmt.Errorf("write output: nil pull request data")
	}
	if req.Config.OutputDir == "" {
		return w.writeStdout(req)
	}

	result, err := packager.New(req.Renderer, req.Logger).Write(ctx, req.Config.OutputDir, req.Data, packager.Options{
		DownloadImages: req.Config.DownloadImages,
		Credential:     req.Credential,
	})
	if err != nil {
		return "", fmt.Errorf("write package: %w", err)
	}
	if req.Config.Format == config.FormatJSON {
		return result.JSONPath, nil
	}
	return result.MarkdownPath, nil
}

// writeStdout renders without touching the filesystem, so images keep their remote URLs.
func (w *packageOutputWriter) writeStdout(req OutputRequest) (string, error) {
	var out []byte
	switch req.Config.Format {
	case config.FormatJSON:
		doc, err := converter.RenderJSON(req.Data, nil)
		if err != nil {
			return "", err
		}
		out = doc
	default:
		out = converter.RenderMarkdown(req.Data)
	}

	if _, err := w.stdout.Write(out); err != nil {
		return "", fmt.Errorf("write %s to stdout: %w", req.Config.Format, err)
	}
	return outputPathStdout, nil
}
