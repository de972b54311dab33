package github

import (
	"fmt"
	"time"
)

// PRRef identifies one pull request on github.com.
type PRRef struct {
	Owner  string
	Repo   string
	Number int
}

// Slug returns the owner/repo form used by the gh CLI.
func (r PRRef) Slug() string {
	return r.Owner + "/" + r.Repo
}

// String returns the owner/repo#number shorthand.
func (r PRRef) String() string {
	return fmt.Sprintf("%s/%s#%d", r.Owner, r.Repo, r.Number)
}

// HTMLURL returns the canonical pull request page URL.
func (r PRRef) HTMLURL() string {
	return fmt.Sprintf("https://github.com/%s/%s/pull/%d", r.Owner, r.Repo, r.Number)
}

// User is a GitHub account reference.
type User struct {
	Login string
	URL   string
}

// NewUser builds a User with its derived profile URL.
func NewUser(login string) User {
	if login == "" {
		return User{}
	}
	return User{Login: login, URL: ProfileURL(login)}
}

// ProfileURL derives the github.com profile URL for a login.
func ProfileURL(login string) string {
	return "https://github.com/" + login
}

// GitRef is a branch name and the commit it points at.
type GitRef struct {
	Ref string
	SHA string
}

// Label stores label data needed for output rendering.
type Label struct {
	Name  string
	Color string
}

// Milestone is the milestone a pull request is attached to.
type Milestone struct {
	Title  string
	Number int
}

// PR state values. Merged pull requests are closed with Merged set.
const (
	StateOpen   = "open"
	StateClosed = "closed"
)

// PullRequest is the top-level pull request metadata.
type PullRequest struct {
	Number    int
	Title     string
	State     string
	Draft     bool
	Merged    bool
	URL       string
	Author    User
	CreatedAt time.Time
	UpdatedAt time.Time
	MergedAt  *time.Time
	ClosedAt  *time.Time
	MergedBy  string

	Base GitRef
	Head GitRef

	Additions    int
	Deletions    int
	ChangedFiles int

	Labels             []Label
	Assignees          []string
	RequestedReviewers []string
	Milestone          *Milestone

	// Body is raw markdown; image localization rewrites it in place.
	Body string
}

// Commit is one commit of the pull request.
type Commit struct {
	SHA string
	// Message is the first line of the commit message.
	Message string
	// Author is a GitHub login when AuthorLinked, otherwise the raw git author name.
	Author       string
	AuthorLinked bool
	URL          string
	Date         time.Time
}

// FileStatus is the change kind of one file.
type FileStatus string

const (
	FileAdded    FileStatus = "added"
	FileRemoved  FileStatus = "removed"
	FileModified FileStatus = "modified"
	FileRenamed  FileStatus = "renamed"
)

// File is one changed file with its optional unified diff.
type File struct {
	Filename         string
	Status           FileStatus
	Additions        int
	Deletions        int
	PreviousFilename string
	Patch            string
}

// Comment is a top-level issue comment on the pull request.
type Comment struct {
	ID        string
	Author    string
	Body      string
	CreatedAt time.Time
}

// Review states reported by GitHub.
const (
	ReviewApproved         = "APPROVED"
	ReviewChangesRequested = "CHANGES_REQUESTED"
	ReviewCommented        = "COMMENTED"
	ReviewPending          = "PENDING"
	ReviewDismissed        = "DISMISSED"
)

// Review is one pull request review. SubmittedAt is nil for pending reviews.
type Review struct {
	ID          string
	Author      string
	State       string
	Body        string
	SubmittedAt *time.Time
}

// ReviewComment is an inline comment anchored to a file.
type ReviewComment struct {
	ID     string
	Author string
	Body   string
	Path   string
	// Line is zero when GitHub reports no line (outdated or file-level comments).
	Line      int
	CreatedAt time.Time
	DiffHunk  string
	// ReviewID is empty for standalone comments.
	ReviewID string
}

// Standalone reports whether the comment is not attached to any review.
func (c ReviewComment) Standalone() bool {
	return c.ReviewID == ""
}

// PRData is the backend-independent pull request dataset consumed by the renderer.
type PRData struct {
	PullRequest    PullRequest
	Commits        []Commit
	Files          []File
	Comments       []Comment
	Reviews        []Review
	ReviewComments []ReviewComment
}

// normalize enforces the dataset invariants every backend must hold: sequences are never
// nil, and review comments never reference a review absent from Reviews.
func (d *PRData) normalize() {
	if d.Commits == nil {
		d.Commits = []Commit{}
	}
	if d.Files == nil {
		d.Files = []File{}
	}
	if d.Comments == nil {
		d.Comments = []Comment{}
	}
	if d.Reviews == nil {
		d.Reviews = []Review{}
	}
	if d.ReviewComments == nil {
		d.ReviewComments = []ReviewComment{}
	}

	pr := &d.PullRequest
	if pr.Labels == nil {
		pr.Labels = []Label{}
	}
	if pr.Assignees == nil {
		pr.Assignees = []string{}
	}
	if pr.RequestedReviewers == nil {
		pr.RequestedReviewers = []string{}
	}

	known := make(map[string]struct{}, len(d.Reviews))
	for _, review := range d.Reviews {
		known[review.ID] = struct{}{}
	}
	for i := range d.ReviewComments {
		if d.ReviewComments[i].ReviewID == "" {
			continue
		}
		if _, ok := known[d.ReviewComments[i].ReviewID]; !ok {
			d.ReviewComments[i].ReviewID = ""
		}
	}
}
