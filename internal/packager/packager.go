package packager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/johnqtcg/pr2md/internal/converter"
	gh "github.com/johnqtcg/pr2md/internal/github"
	"github.com/johnqtcg/pr2md/internal/logging"
)

// Options controls one packaging run.
type Options struct {
	DownloadImages bool
	Credential     string
}

// Result lists everything written for one pull request.
type Result struct {
	Dir          string
	MarkdownPath string
	JSONPath     string
	ImagesDir    string
	Images       []converter.DownloadedImage
}

// Packager writes the offline layout <root>/pr-<n>/{pr-<n>.md, pr-<n>.json, images/}.
type Packager struct {
	renderer converter.Renderer
	logger   *slog.Logger
}

// New creates a Packager around renderer.
func New(renderer converter.Renderer, logger *slog.Logger) *Packager {
	return &Packager{renderer: renderer, logger: logging.OrDiscard(logger)}
}

// Write renders data into root. The JSON record is written whatever format the caller
// prints.
func (p *Packager) Write(ctx context.Context, root string, data *gh.PRData, opts Options) (Result, error) {
	if root == "" {
		return Result{}, errors.New("package pull request: output directory is empty")
	}
	if data == nil {
		return Result{}, errors.New("package pull request: nil pull request data")
	}

	number := data.PullRequest.Number
	dir := filepath.Join(root, fmt.Sprintf("pr-%d", number))
	imagesDir := filepath.Join(dir, converter.ImagesDirName)
	if err := os.MkdirAll(imagesDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create package directory: %w", err)
	}

	doc, err := p.renderer.Render(ctx, data, converter.RenderOptions{
		DownloadImages: opts.DownloadImages,
		ImagesDir:      imagesDir,
		Credential:     opts.Credential,
	})
	if err != nil {
		return Result{}, fmt.Errorf("render pull request: %w", err)
	}

	jsonDoc, err := converter.RenderJSON(data, doc.Images)
	if err != nil {
		return Result{}, fmt.Errorf("render pull request json: %w", err)
	}

	result := Result{
		Dir:          dir,
		MarkdownPath: filepath.Join(dir, fmt.Sprintf("pr-%d.md", number)),
		JSONPath:     filepath.Join(dir, fmt.Sprintf("pr-%d.json", number)),
		ImagesDir:    imagesDir,
		Images:       doc.Images,
	}
	if err := os.WriteFile(result.MarkdownPath, doc.Markdown, 0o644); err != nil {
		return Result{}, fmt.Errorf("write markdown file %q: %w", result.MarkdownPath, err)
	}
	if err := os.WriteFile(result.JSONPath, jsonDoc, 0o644); err != nil {
		return Result{}, fmt.Errorf("write json file %q: %w", result.JSONPath, err)
	}

	p.logger.Debug("wrote package", "dir", dir, "images", len(doc.Images))
	return result, nil
}
