package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	goGithub "github.com/google/go-github/v72/github"
)

var ghViewFields = []string{
	"number", "title", "state", "isDraft", "url", "author",
	"createdAt", "updatedAt", "mergedAt", "closedAt", "mergedBy",
	"baseRefName", "baseRefOid", "headRefName", "headRefOid",
	"additions", "deletions", "changedFiles",
	"labels", "assignees", "reviewRequests", "milestone", "body",
	"commits", "files", "comments",
}

const ghStateMerged = "MERGED"

type ghFetcher struct {
	cfg    Config
	runner CommandRunner
	logger *slog.Logger
}

func newGHFetcher(cfg Config) *ghFetcher {
	return &ghFetcher{cfg: cfg, runner: cfg.Runner, logger: cfg.Logger}
}

type ghActor struct {
	Login string `json:"login"`
	Name  string `json:"name"`
}

type ghPullRequest struct {
	Number         int        `json:"number"`
	Title          string     `json:"title"`
	State          string     `json:"state"`
	IsDraft        bool       `json:"isDraft"`
	URL            string     `json:"url"`
	Author         ghActor    `json:"author"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	MergedAt       *time.Time `json:"mergedAt"`
	ClosedAt       *time.Time `json:"closedAt"`
	MergedBy       *ghActor   `json:"mergedBy"`
	BaseRefName    string     `json:"baseRefName"`
	BaseRefOid     string     `json:"baseRefOid"`
	HeadRefName    string     `json:"headRefName"`
	HeadRefOid     string     `json:"headRefOid"`
	Additions      int        `json:"additions"`
	Deletions      int        `json:"deletions"`
	ChangedFiles   int        `json:"changedFiles"`
	Labels         []ghLabel  `json:"labels"`
	Assignees      []ghActor  `json:"assignees"`
	ReviewRequests []ghActor  `json:"reviewRequests"`
	Milestone      *struct {
		Title  string `json:"title"`
		Number int    `json:"number"`
	} `json:"milestone"`
	Body     string      `json:"body"`
	Commits  []ghCommit  `json:"commits"`
	Files    []ghFile    `json:"files"`
	Comments []ghComment `json:"comments"`
	Reviews  []ghReview  `json:"reviews"`
}

type ghLabel struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type ghCommit struct {
	Oid             string    `json:"oid"`
	MessageHeadline string    `json:"messageHeadline"`
	MessageBody     string    `json:"messageBody"`
	AuthoredDate    time.Time `json:"authoredDate"`
	Authors         []ghActor `json:"authors"`
}

type ghFile struct {
	Path      string `json:"path"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

type ghComment struct {
	ID        string    `json:"id"`
	Author    ghActor   `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

type ghReview struct {
	ID          string     `json:"id"`
	Author      ghActor    `json:"author"`
	State       string     `json:"state"`
	Body        string     `json:"body"`
	SubmittedAt *time.Time `json:"submittedAt"`
}

// Fetch loads one pull request through the gh CLI.
func (f *ghFetcher) Fetch(ctx context.Context, ref PRRef, opts FetchOptions) (*PRData, error) {
	f.logger.Debug("fetching pull request via gh", "pr", ref.String())

	raw, err := f.view(ctx, ref, opts.IncludeReviews)
	if err != nil {
		return nil, classifyGHError(err)
	}

	var pr ghPullRequest
	if err := json.Unmarshal(raw, &pr); err != nil {
		return nil, &BackendError{Backend: BackendGH, Kind: KindBackend, Err: fmt.Errorf("decode gh pr view output: %w", err)}
	}

	data := &PRData{
		PullRequest: mapGHPullRequest(pr),
		Commits:     mapGHCommits(ref, pr.Commits),
		Files:       mapGHFiles(pr.Files),
		Comments:    mapGHComments(pr.Comments),
	}
	if opts.IncludeReviews {
		data.Reviews = mapGHReviews(pr.Reviews, f.reviewIDsByNode(ctx, ref))
	}

	comments, err := f.reviewComments(ctx, ref)
	if err != nil {
		f.logger.Warn("could not load inline review comments via gh",
			"pr", ref.String(), "error", err)
		comments = nil
	}
	data.ReviewComments = mapRESTReviewComments(comments)

	data.normalize()
	return data, nil
}

func (f *ghFetcher) view(ctx context.Context, ref PRRef, includeReviews bool) ([]byte, error) {
	fields := ghViewFields
	if includeReviews {
		fields = append(append([]string{}, ghViewFields...), "reviews")
	}

	ctx, cancel := context.WithTimeout(ctx, f.cfg.GHViewTimeout)
	defer cancel()

	return f.runner.Run(ctx, ghBinary, "pr", "view", strconv.Itoa(ref.Number),
		"--repo", ref.Slug(), "--json", strings.Join(fields, ","))
}

func (f *ghFetcher) reviewComments(ctx context.Context, ref PRRef) ([]*goGithub.PullRequestComment, error) {
	raw, err := f.api(ctx, fmt.Sprintf("repos/%s/pulls/%d/comments", ref.Slug(), ref.Number))
	if err != nil {
		return nil, err
	}
	return decodePages[*goGithub.PullRequestComment](raw)
}

// reviewIDsByNode maps the GraphQL node ids gh reports for reviews to the numeric REST ids
// inline comments reference. A failed lookup returns nil and node ids are kept.
func (f *ghFetcher) reviewIDsByNode(ctx context.Context, ref PRRef) map[string]string {
	raw, err := f.api(ctx, fmt.Sprintf("repos/%s/pulls/%d/reviews", ref.Slug(), ref.Number))
	if err != nil {
		f.logger.Debug("could not map review ids via gh", "pr", ref.String(), "error", err)
		return nil
	}
	reviews, err := decodePages[*goGithub.PullRequestReview](raw)
	if err != nil {
		f.logger.Debug("could not decode reviews from gh api", "pr", ref.String(), "error", err)
		return nil
	}

	ids := make(map[string]string, len(reviews))
	for _, review := range reviews {
		if review.GetNodeID() == "" {
			continue
		}
		ids[review.GetNodeID()] = strconv.FormatInt(review.GetID(), 10)
	}
	return ids
}

func (f *ghFetcher) api(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.GHAPITimeout)
	defer cancel()

	return f.runner.Run(ctx, ghBinary, "api", path, "--paginate")
}

// decodePages decodes `gh api --paginate` output, which is one JSON array per page
// written back to back.
func decodePages[T any](raw []byte) ([]T, error) {
	var all []T
	dec := json.NewDecoder(bytes.NewReader(raw))
	for {
		var page []T
		err := dec.Decode(&page)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode gh api page: %w", err)
		}
		all = append(all, page...)
	}
	return all, nil
}

func mapGHPullRequest(pr ghPullRequest) PullRequest {
	state := strings.ToUpper(pr.State)
	out := PullRequest{
		Number:       pr.Number,
		Title:        pr.Title,
		State:        strings.ToLower(pr.State),
		Draft:        pr.IsDraft,
		Merged:       state == ghStateMerged,
		URL:          pr.URL,
		Author:       NewUser(pr.Author.Login),
		CreatedAt:    pr.CreatedAt.UTC(),
		UpdatedAt:    pr.UpdatedAt.UTC(),
		MergedAt:     utcPtr(pr.MergedAt),
		ClosedAt:     utcPtr(pr.ClosedAt),
		Base:         GitRef{Ref: pr.BaseRefName, SHA: pr.BaseRefOid},
		Head:         GitRef{Ref: pr.HeadRefName, SHA: pr.HeadRefOid},
		Additions:    pr.Additions,
		Deletions:    pr.Deletions,
		ChangedFiles: pr.ChangedFiles,
		Body:         pr.Body,
	}
	if out.Merged {
		out.State = StateClosed
	}
	if pr.MergedBy != nil {
		out.MergedBy = pr.MergedBy.Login
	}

	for _, label := range pr.Labels {
		out.Labels = append(out.Labels, Label{Name: label.Name, Color: label.Color})
	}
	for _, assignee := range pr.Assignees {
		out.Assignees = append(out.Assignees, assignee.Login)
	}
	for _, request := range pr.ReviewRequests {
		// Team requests carry a name instead of a login.
		login := request.Login
		if login == "" {
			login = request.Name
		}
		if login != "" {
			out.RequestedReviewers = append(out.RequestedReviewers, login)
		}
	}
	if pr.Milestone != nil && pr.Milestone.Title != "" {
		out.Milestone = &Milestone{Title: pr.Milestone.Title, Number: pr.Milestone.Number}
	}
	return out
}

func mapGHCommits(ref PRRef, commits []ghCommit) []Commit {
	out := make([]Commit, 0, len(commits))
	for _, commit := range commits {
		message := commit.MessageHeadline
		if commit.MessageBody != "" {
			message += "\n\n" + commit.MessageBody
		}
		c := Commit{
			SHA:     commit.Oid,
			Message: firstLine(message),
			URL:     fmt.Sprintf("https://github.com/%s/commit/%s", ref.Slug(), commit.Oid),
			Date:    commit.AuthoredDate.UTC(),
		}
		if len(commit.Authors) > 0 {
			author := commit.Authors[0]
			if author.Login != "" {
				c.Author = author.Login
				c.AuthorLinked = true
			} else {
				c.Author = author.Name
			}
		}
		out = append(out, c)
	}
	return out
}

// mapGHFiles infers the change status from line counts; gh does not report renames.
func mapGHFiles(files []ghFile) []File {
	out := make([]File, 0, len(files))
	for _, file := range files {
		status := FileModified
		switch {
		case file.Deletions == 0 && file.Additions > 0:
			status = FileAdded
		case file.Additions == 0 && file.Deletions > 0:
			status = FileRemoved
		}
		out = append(out, File{
			Filename:  file.Path,
			Status:    status,
			Additions: file.Additions,
			Deletions: file.Deletions,
		})
	}
	return out
}

func mapGHComments(comments []ghComment) []Comment {
	out := make([]Comment, 0, len(comments))
	for _, comment := range comments {
		out = append(out, Comment{
			ID:        comment.ID,
			Author:    comment.Author.Login,
			Body:      comment.Body,
			CreatedAt: comment.CreatedAt.UTC(),
		})
	}
	return out
}

func mapGHReviews(reviews []ghReview, idsByNode map[string]string) []Review {
	out := make([]Review, 0, len(reviews))
	for _, review := range reviews {
		id := review.ID
		if restID, ok := idsByNode[review.ID]; ok {
			id = restID
		}
		submitted := utcPtr(review.SubmittedAt)
		if review.State == ReviewPending {
			submitted = nil
		}
		out = append(out, Review{
			ID:          id,
			Author:      review.Author.Login,
			State:       review.State,
			Body:        review.Body,
			SubmittedAt: submitted,
		})
	}
	return out
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}
