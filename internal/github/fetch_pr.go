package github

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	goGithub "github.com/google/go-github/v72/github"
)

type apiFetcher struct {
	cfg    Config
	rest   *restClient
	logger *slog.Logger
}

// Fetch loads one pull request through the REST API. Transient failures are retried
// and the final error is classified into the package error kinds.
func (f *apiFetcher) Fetch(ctx context.Context, ref PRRef, opts FetchOptions) (*PRData, error) {
	var data *PRData
	policy := retryPolicy{
		maxRetries:     f.cfg.MaxRetries,
		initialBackoff: f.cfg.InitialBackoff,
		notify: func(attempt int, err error, wait time.Duration) {
			f.logger.Debug("retrying GitHub API request",
				"pr", ref.String(), "attempt", attempt, "wait", wait, "error", err)
		},
	}

	err := doWithRetry(ctx, policy, func() error {
		got, err := f.fetchPullRequest(ctx, ref, opts)
		if err != nil {
			return err
		}
		data = got
		return nil
	})
	if err != nil {
		return nil, classifyAPIError(err)
	}
	return data, nil
}

func (f *apiFetcher) fetchPullRequest(ctx context.Context, ref PRRef, opts FetchOptions) (*PRData, error) {
	f.logger.Debug("fetching pull request via REST API", "pr", ref.String())

	pr, err := f.rest.getPullRequest(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("fetch pull request: %w", err)
	}
	files, err := f.rest.listFiles(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("fetch pull request files: %w", err)
	}
	comments, err := f.rest.listIssueComments(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("fetch pull request comments: %w", err)
	}
	reviewComments, err := f.rest.listReviewComments(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("fetch pull request review comments: %w", err)
	}

	var reviews []*goGithub.PullRequestReview
	if opts.IncludeReviews {
		reviews, err = f.rest.listReviews(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("fetch pull request reviews: %w", err)
		}
	}

	commits, err := f.rest.listCommits(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("fetch pull request commits: %w", err)
	}

	data := &PRData{
		PullRequest:    mapRESTPullRequest(pr),
		Commits:        mapRESTCommits(commits),
		Files:          mapRESTFiles(files),
		Comments:       mapRESTComments(comments),
		Reviews:        mapRESTReviews(reviews),
		ReviewComments: mapRESTReviewComments(reviewComments),
	}
	data.normalize()
	return data, nil
}

func mapRESTPullRequest(pr *goGithub.PullRequest) PullRequest {
	out := PullRequest{
		Number:       pr.GetNumber(),
		Title:        pr.GetTitle(),
		State:        strings.ToLower(pr.GetState()),
		Draft:        pr.GetDraft(),
		Merged:       pr.GetMerged(),
		URL:          pr.GetHTMLURL(),
		Author:       NewUser(pr.GetUser().GetLogin()),
		CreatedAt:    timestampValue(pr.CreatedAt),
		UpdatedAt:    timestampValue(pr.UpdatedAt),
		MergedAt:     timestampPtr(pr.MergedAt),
		ClosedAt:     timestampPtr(pr.ClosedAt),
		MergedBy:     pr.GetMergedBy().GetLogin(),
		Base:         GitRef{Ref: pr.GetBase().GetRef(), SHA: pr.GetBase().GetSHA()},
		Head:         GitRef{Ref: pr.GetHead().GetRef(), SHA: pr.GetHead().GetSHA()},
		Additions:    pr.GetAdditions(),
		Deletions:    pr.GetDeletions(),
		ChangedFiles: pr.GetChangedFiles(),
		Body:         pr.GetBody(),
	}

	for _, label := range pr.Labels {
		out.Labels = append(out.Labels, Label{Name: label.GetName(), Color: label.GetColor()})
	}
	for _, assignee := range pr.Assignees {
		out.Assignees = append(out.Assignees, assignee.GetLogin())
	}
	for _, reviewer := range pr.RequestedReviewers {
		out.RequestedReviewers = append(out.RequestedReviewers, reviewer.GetLogin())
	}
	if m := pr.GetMilestone(); m != nil && m.GetTitle() != "" {
		out.Milestone = &Milestone{Title: m.GetTitle(), Number: m.GetNumber()}
	}
	return out
}

func mapRESTCommits(commits []*goGithub.RepositoryCommit) []Commit {
	out := make([]Commit, 0, len(commits))
	for _, commit := range commits {
		c := Commit{
			SHA:     commit.GetSHA(),
			Message: firstLine(commit.GetCommit().GetMessage()),
			URL:     commit.GetHTMLURL(),
			Date:    commit.GetCommit().GetAuthor().GetDate().UTC(),
		}
		if login := commit.GetAuthor().GetLogin(); login != "" {
			c.Author = login
			c.AuthorLinked = true
		} else {
			c.Author = commit.GetCommit().GetAuthor().GetName()
		}
		out = append(out, c)
	}
	return out
}

func mapRESTFiles(files []*goGithub.CommitFile) []File {
	out := make([]File, 0, len(files))
	for _, file := range files {
		f := File{
			Filename:  file.GetFilename(),
			Status:    FileStatus(file.GetStatus()),
			Additions: file.GetAdditions(),
			Deletions: file.GetDeletions(),
			Patch:     file.GetPatch(),
		}
		if f.Status == FileRenamed {
			f.PreviousFilename = file.GetPreviousFilename()
		}
		out = append(out, f)
	}
	return out
}

func mapRESTComments(comments []*goGithub.IssueComment) []Comment {
	out := make([]Comment, 0, len(comments))
	for _, comment := range comments {
		out = append(out, Comment{
			ID:        strconv.FormatInt(comment.GetID(), 10),
			Author:    comment.GetUser().GetLogin(),
			Body:      comment.GetBody(),
			CreatedAt: timestampValue(comment.CreatedAt),
		})
	}
	return out
}

func mapRESTReviews(reviews []*goGithub.PullRequestReview) []Review {
	out := make([]Review, 0, len(reviews))
	for _, review := range reviews {
		out = append(out, Review{
			ID:          strconv.FormatInt(review.GetID(), 10),
			Author:      review.GetUser().GetLogin(),
			State:       review.GetState(),
			Body:        review.GetBody(),
			SubmittedAt: timestampPtr(review.SubmittedAt),
		})
	}
	return out
}

func mapRESTReviewComments(comments []*goGithub.PullRequestComment) []ReviewComment {
	out := make([]ReviewComment, 0, len(comments))
	for _, comment := range comments {
		rc := ReviewComment{
			ID:        strconv.FormatInt(comment.GetID(), 10),
			Author:    comment.GetUser().GetLogin(),
			Body:      comment.GetBody(),
			Path:      comment.GetPath(),
			Line:      comment.GetLine(),
			CreatedAt: timestampValue(comment.CreatedAt),
			DiffHunk:  comment.GetDiffHunk(),
		}
		if id := comment.GetPullRequestReviewID(); id != 0 {
			rc.ReviewID = strconv.FormatInt(id, 10)
		}
		out = append(out, rc)
	}
	return out
}

func timestampValue(ts *goGithub.Timestamp) time.Time {
	if ts == nil {
		return time.Time{}
	}
	return ts.UTC()
}

func timestampPtr(ts *goGithub.Timestamp) *time.Time {
	if ts == nil || ts.IsZero() {
		return nil
	}
	t := ts.UTC()
	return &t
}

func firstLine(message string) string {
	line, _, _ := strings.Cut(message, "\n")
	return strings.TrimRight(line, "\r")
}
