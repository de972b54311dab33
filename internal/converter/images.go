package converter

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/johnqtcg/pr2md/internal/assets"
)

// ImagesDirName is the directory, relative to the document, that holds localized images.
const ImagesDirName = "images"

var (
	markdownImagePattern = regexp.MustCompile(`!\[[^\]]*\]\(([^)\s]+)(?:\s+"[^"]*")?\)`)
	htmlImagePattern     = regexp.MustCompile(`<img[^>]+src=["']([^"']+)["'][^>]*>`)
)

var urlExtensions = map[string]string{
	".png":  ".png",
	".jpg":  ".jpg",
	".jpeg": ".jpg",
	".gif":  ".gif",
	".webp": ".webp",
	".bmp":  ".bmp",
	".ico":  ".ico",
	".svg":  ".svg",
}

// DownloadedImage records one image saved next to the document.
type DownloadedImage struct {
	OriginalURL  string
	LocalPath    string
	RelativePath string
	Format       assets.Format
}

// localizer downloads images referenced by text blocks and rewrites their URLs. One
// localizer serves one render call so image numbering is shared across every block.
type localizer struct {
	downloader assets.Downloader
	validator  *assets.Validator
	logger     *slog.Logger
	dir        string
	credential string

	next   int
	images []DownloadedImage
}

func newLocalizer(downloader assets.Downloader, validator *assets.Validator, logger *slog.Logger, dir, credential string) *localizer {
	return &localizer{
		downloader: downloader,
		validator:  validator,
		logger:     logger,
		dir:        dir,
		credential: credential,
		next:       1,
		images:     []DownloadedImage{},
	}
}

// localize returns text with every downloadable image URL replaced by its local path.
// Images that fail to download or validate keep their original URL.
func (l *localizer) localize(ctx context.Context, text string) string {
	for _, rawURL := range imageURLs(text) {
		relative, ok := l.save(ctx, rawURL)
		if !ok {
			continue
		}
		text = strings.ReplaceAll(text, rawURL, relative)
	}
	return text
}

func (l *localizer) save(ctx context.Context, rawURL string) (string, bool) {
	data, err := l.downloader.Download(ctx, rawURL, l.credential)
	if err != nil {
		l.logger.Warn("skipping image: download failed", "url", rawURL, "error", err)
		return "", false
	}

	result := l.validator.Validate(data, rawURL)
	if !result.Valid {
		l.logger.Warn("skipping image", "url", rawURL,
			"error", fmt.Errorf("%w: %s", assets.ErrInvalidImage, result.Reason))
		return "", false
	}

	name := fmt.Sprintf("image-%d%s", l.next, imageExtension(result.Format, rawURL))
	localPath := filepath.Join(l.dir, name)
	if err := os.WriteFile(localPath, data, 0o644); err != nil {
		l.logger.Warn("skipping image: write failed", "url", rawURL, "path", localPath, "error", err)
		return "", false
	}
	l.next++

	relative := "./" + ImagesDirName + "/" + name
	l.images = append(l.images, DownloadedImage{
		OriginalURL:  rawURL,
		LocalPath:    localPath,
		RelativePath: relative,
		Format:       result.Format,
	})
	l.logger.Debug("saved image", "url", rawURL, "path", localPath, "format", result.Format)
	return relative, true
}

// imageURLs lists distinct absolute image URLs: every markdown match first, then every
// HTML match. Relative references are skipped so a localized text is left untouched.
func imageURLs(text string) []string {
	var urls []string
	seen := make(map[string]struct{})
	for _, pattern := range []*regexp.Regexp{markdownImagePattern, htmlImagePattern} {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			candidate := m[1]
			if !isRemoteURL(candidate) {
				continue
			}
			if _, dup := seen[candidate]; dup {
				continue
			}
			seen[candidate] = struct{}{}
			urls = append(urls, candidate)
		}
	}
	return urls
}

func isRemoteURL(raw string) bool {
	lower := strings.ToLower(raw)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func imageExtension(format assets.Format, rawURL string) string {
	if ext := format.Extension(); ext != "" {
		return ext
	}
	if u, err := url.Parse(rawURL); err == nil {
		if ext, ok := urlExtensions[strings.ToLower(path.Ext(u.Path))]; ok {
			return ext
		}
	}
	return ".png"
}
