package converter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/johnqtcg/pr2md/internal/assets"
	gh "github.com/johnqtcg/pr2md/internal/github"
	"github.com/johnqtcg/pr2md/internal/logging"
)

const timeLayout = "2006-01-02 15:04:05 UTC"

// RenderOptions controls one render call.
type RenderOptions struct {
	// DownloadImages localizes embedded images into ImagesDir.
	DownloadImages bool
	ImagesDir      string
	// Credential is forwarded to GitHub-hosted image URLs only.
	Credential string
}

// Document is the rendered markdown plus every image saved while rendering it.
type Document struct {
	Markdown []byte
	Images   []DownloadedImage
}

// Renderer converts a pull request dataset into an offline markdown document.
type Renderer interface {
	Render(ctx context.Context, data *gh.PRData, opts RenderOptions) (Document, error)
}

type renderer struct {
	downloader assets.Downloader
	validator  *assets.Validator
	logger     *slog.Logger
}

// NewRenderer creates a markdown renderer. A nil downloader uses the default asset fetcher.
func NewRenderer(downloader assets.Downloader, logger *slog.Logger) Renderer {
	logger = logging.OrDiscard(logger)
	if downloader == nil {
		downloader = assets.NewFetcher()
	}
	return &renderer{
		downloader: downloader,
		validator:  assets.NewValidator(logger),
		logger:     logger,
	}
}

// Render localizes images in place when requested, then renders markdown. Body fields of
// data are rewritten by the image pass.
func (r *renderer) Render(ctx context.Context, data *gh.PRData, opts RenderOptions) (Document, error) {
	if data == nil {
		return Document{}, errors.New("render markdown: nil pull request data")
	}

	images := []DownloadedImage{}
	if opts.DownloadImages {
		if opts.ImagesDir == "" {
			return Document{}, errors.New("render markdown: images directory is required to download images")
		}
		if err := os.MkdirAll(opts.ImagesDir, 0o755); err != nil {
			return Document{}, fmt.Errorf("create images directory: %w", err)
		}
		images = r.localizeImages(ctx, data, opts)
	}

	return Document{Markdown: RenderMarkdown(data), Images: images}, nil
}

// localizeImages visits the PR body, comments, reviews and inline comments in that order.
func (r *renderer) localizeImages(ctx context.Context, data *gh.PRData, opts RenderOptions) []DownloadedImage {
	l := newLocalizer(r.downloader, r.validator, r.logger, opts.ImagesDir, opts.Credential)

	data.PullRequest.Body = l.localize(ctx, data.PullRequest.Body)
	for i := range data.Comments {
		data.Comments[i].Body = l.localize(ctx, data.Comments[i].Body)
	}
	for i := range data.Reviews {
		data.Reviews[i].Body = l.localize(ctx, data.Reviews[i].Body)
	}
	for i := range data.ReviewComments {
		data.ReviewComments[i].Body = l.localize(ctx, data.ReviewComments[i].Body)
	}

	if len(l.images) > 0 {
		r.logger.Info("downloaded images", "count", len(l.images), "dir", opts.ImagesDir)
	}
	return l.images
}

// RenderMarkdown renders data as markdown without touching the network.
func RenderMarkdown(data *gh.PRData) []byte {
	var b strings.Builder

	title := data.PullRequest.Title
	if strings.TrimSpace(title) == "" {
		title = fmt.Sprintf("Pull Request #%d", data.PullRequest.Number)
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	b.WriteString(renderMetadataSection(data.PullRequest))
	b.WriteString("\n")
	b.WriteString(renderDescriptionSection(data.PullRequest))
	b.WriteString("\n")
	b.WriteString(renderConversationSection(data))

	if section := renderStandaloneReviewCommentsSection(data.ReviewComments); section != "" {
		b.WriteString("\n")
		b.WriteString(section)
	}
	if section := renderCommitsSection(data.Commits); section != "" {
		b.WriteString("\n")
		b.WriteString(section)
	}
	if section := renderFilesSection(data.Files); section != "" {
		b.WriteString("\n")
		b.WriteString(section)
	}

	return []byte(b.String())
}

func renderMetadataSection(pr gh.PullRequest) string {
	var b strings.Builder

	b.WriteString("## Metadata\n\n")
	fmt.Fprintf(&b, "- **Number:** #%d\n", pr.Number)
	fmt.Fprintf(&b, "- **URL:** %s\n", pr.URL)
	fmt.Fprintf(&b, "- **Author:** %s\n", userLink(pr.Author.Login))
	fmt.Fprintf(&b, "- **State:** %s\n", stateLabel(pr))
	fmt.Fprintf(&b, "- **Created:** %s\n", formatTime(pr.CreatedAt))
	fmt.Fprintf(&b, "- **Updated:** %s\n", formatTime(pr.UpdatedAt))

	switch {
	case pr.Merged && pr.MergedAt != nil:
		merged := formatTime(*pr.MergedAt)
		if pr.MergedBy != "" {
			merged += " by " + userLink(pr.MergedBy)
		}
		fmt.Fprintf(&b, "- **Merged:** %s\n", merged)
	case !pr.Merged && pr.State == gh.StateClosed && pr.ClosedAt != nil:
		fmt.Fprintf(&b, "- **Closed:** %s\n", formatTime(*pr.ClosedAt))
	}

	fmt.Fprintf(&b, "- **Base:** %s\n", refLabel(pr.Base))
	fmt.Fprintf(&b, "- **Head:** %s\n", refLabel(pr.Head))
	fmt.Fprintf(&b, "- **Changes:** +%d / -%d in %d %s\n", pr.Additions, pr.Deletions, pr.ChangedFiles, plural(pr.ChangedFiles, "file", "files"))

	if len(pr.Labels) > 0 {
		fmt.Fprintf(&b, "- **Labels:** %s\n", joinLabels(pr.Labels))
	}
	if len(pr.Assignees) > 0 {
		fmt.Fprintf(&b, "- **Assignees:** %s\n", joinUserLinks(pr.Assignees))
	}
	if len(pr.RequestedReviewers) > 0 {
		fmt.Fprintf(&b, "- **Requested reviewers:** %s\n", joinUserLinks(pr.RequestedReviewers))
	}
	if pr.Milestone != nil {
		fmt.Fprintf(&b, "- **Milestone:** %s (#%d)\n", pr.Milestone.Title, pr.Milestone.Number)
	}

	return b.String()
}

func stateLabel(pr gh.PullRequest) string {
	label := titleCase(pr.State)
	switch {
	case pr.Merged:
		label += " (merged)"
	case pr.Draft:
		label += " (draft)"
	}
	return label
}

func refLabel(ref gh.GitRef) string {
	if ref.SHA == "" {
		return fmt.Sprintf("`%s`", ref.Ref)
	}
	return fmt.Sprintf("`%s` (`%s`)", ref.Ref, shortSHA(ref.SHA))
}

func joinLabels(labels []gh.Label) string {
	parts := make([]string, 0, len(labels))
	for _, label := range labels {
		parts = append(parts, "`"+label.Name+"`")
	}
	return strings.Join(parts, ", ")
}

func joinUserLinks(logins []string) string {
	parts := make([]string, 0, len(logins))
	for _, login := range logins {
		parts = append(parts, userLink(login))
	}
	return strings.Join(parts, ", ")
}

func userLink(login string) string {
	if login == "" {
		return "ghost"
	}
	return fmt.Sprintf("[@%s](%s)", login, gh.ProfileURL(login))
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.UTC().Format(timeLayout)
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// titleCase builds a fresh caser per call; casers are not safe for concurrent use.
func titleCase(s string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(s, "_", " "))
}
