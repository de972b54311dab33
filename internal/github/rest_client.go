package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	goGithub "github.com/google/go-github/v72/github"
	"golang.org/x/oauth2"
)

const (
	defaultRESTBaseURL = "https://api.github.com/"
	restPageSize       = 100
)

type restClient struct {
	client *goGithub.Client
}

func newRESTClient(cfg Config) (*restClient, error) {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		baseTransport := httpClient.Transport
		if baseTransport == nil {
			baseTransport = http.DefaultTransport
		}
		httpClient = &http.Client{
			Transport: &oauth2.Transport{
				Source: ts,
				Base:   baseTransport,
			},
			Timeout: httpClient.Timeout,
		}
	}

	client := goGithub.NewClient(httpClient)

	baseURL := cfg.RESTBaseURL
	if baseURL == "" {
		baseURL = defaultRESTBaseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse REST base URL %q: %w", baseURL, err)
	}
	client.BaseURL = parsed

	return &restClient{client: client}, nil
}

func (c *restClient) getPullRequest(ctx context.Context, ref PRRef) (*goGithub.PullRequest, error) {
	pr, _, err := c.client.PullRequests.Get(ctx, ref.Owner, ref.Repo, ref.Number)
	if err != nil {
		return nil, wrapRESTError("get pull request", err)
	}
	return pr, nil
}

func (c *restClient) listFiles(ctx context.Context, ref PRRef) ([]*goGithub.CommitFile, error) {
	files, err := paginate(func(opts *goGithub.ListOptions) ([]*goGithub.CommitFile, *goGithub.Response, error) {
		return c.client.PullRequests.ListFiles(ctx, ref.Owner, ref.Repo, ref.Number, opts)
	})
	if err != nil {
		return nil, wrapRESTError("list pull request files", err)
	}
	return files, nil
}

func (c *restClient) listIssueComments(ctx context.Context, ref PRRef) ([]*goGithub.IssueComment, error) {
	comments, err := paginate(func(opts *goGithub.ListOptions) ([]*goGithub.IssueComment, *goGithub.Response, error) {
		return c.client.Issues.ListComments(ctx, ref.Owner, ref.Repo, ref.Number, &goGithub.IssueListCommentsOptions{
			ListOptions: *opts,
		})
	})
	if err != nil {
		return nil, wrapRESTError("list issue comments", err)
	}
	return comments, nil
}

func (c *restClient) listReviewComments(ctx context.Context, ref PRRef) ([]*goGithub.PullRequestComment, error) {
	comments, err := paginate(func(opts *goGithub.ListOptions) ([]*goGithub.PullRequestComment, *goGithub.Response, error) {
		return c.client.PullRequests.ListComments(ctx, ref.Owner, ref.Repo, ref.Number, &goGithub.PullRequestListCommentsOptions{
			ListOptions: *opts,
		})
	})
	if err != nil {
		return nil, wrapRESTError("list pull request review comments", err)
	}
	return comments, nil
}

func (c *restClient) listReviews(ctx context.Context, ref PRRef) ([]*goGithub.PullRequestReview, error) {
	reviews, err := paginate(func(opts *goGithub.ListOptions) ([]*goGithub.PullRequestReview, *goGithub.Response, error) {
		return c.client.PullRequests.ListReviews(ctx, ref.Owner, ref.Repo, ref.Number, opts)
	})
	if err != nil {
		return nil, wrapRESTError("list pull request reviews", err)
	}
	return reviews, nil
}

func (c *restClient) listCommits(ctx context.Context, ref PRRef) ([]*goGithub.RepositoryCommit, error) {
	commits, err := paginate(func(opts *goGithub.ListOptions) ([]*goGithub.RepositoryCommit, *goGithub.Response, error) {
		return c.client.PullRequests.ListCommits(ctx, ref.Owner, ref.Repo, ref.Number, opts)
	})
	if err != nil {
		return nil, wrapRESTError("list pull request commits", err)
	}
	return commits, nil
}

// paginate follows NextPage links until the listing is exhausted.
func paginate[T any](list func(opts *goGithub.ListOptions) ([]T, *goGithub.Response, error)) ([]T, error) {
	var all []T
	opts := &goGithub.ListOptions{PerPage: restPageSize}
	for {
		page, resp, err := list(opts)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

func wrapRESTError(op string, err error) error {
	if err == nil {
		return nil
	}

	var respErr *goGithub.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		return fmt.Errorf("%s: %w", op, &statusError{
			StatusCode: respErr.Response.StatusCode,
			Err:        err,
		})
	}

	var rateErr *goGithub.RateLimitError
	if errors.As(err, &rateErr) && rateErr.Response != nil {
		return fmt.Errorf("%s: %w", op, &statusError{
			StatusCode: rateErr.Response.StatusCode,
			Err:        err,
		})
	}

	return fmt.Errorf("%s: %w", op, err)
}
