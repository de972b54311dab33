package converter

import (
	"time"

	gh "github.com/johnqtcg/pr2md/internal/github"
)

func ts(hour, minute int) time.Time {
	return time.Date(2026, 1, 3, hour, minute, 0, 0, time.UTC)
}

func tsPtr(hour, minute int) *time.Time {
	t := ts(hour, minute)
	return &t
}

func samplePRData() *gh.PRData {
	return &gh.PRData{
		PullRequest: gh.PullRequest{
			Number:       42,
			Title:        "Add retry support",
			State:        gh.StateClosed,
			Merged:       true,
			URL:          "https://github.com/octo/repo/pull/42",
			Author:       gh.NewUser("alice"),
			CreatedAt:    ts(9, 0),
			UpdatedAt:    ts(18, 0),
			MergedAt:     tsPtr(17, 0),
			ClosedAt:     tsPtr(17, 0),
			MergedBy:     "maintainer",
			Base:         gh.GitRef{Ref: "main", SHA: "1111111aaaaaaa"},
			Head:         gh.GitRef{Ref: "retry", SHA: "2222222bbbbbbb"},
			Additions:    30,
			Deletions:    4,
			ChangedFiles: 3,
			Labels:       []gh.Label{{Name: "enhancement", Color: "a2eeef"}},
			Assignees:    []string{"bob"},
			Body:         "Adds retries.\n\n![diagram](https://github.com/user-attachments/assets/diagram.png)",
		},
		Commits: []gh.Commit{
			{SHA: "abcdef1234567", Message: "Add retry loop", Author: "alice", AuthorLinked: true, URL: "https://github.com/octo/repo/commit/abcdef1234567", Date: ts(8, 0)},
			{SHA: "9876543210fed", Message: "Fix lint", Author: "Build Bot", URL: "https://github.com/octo/repo/commit/9876543210fed", Date: ts(8, 30)},
		},
		Files: []gh.File{
			{Filename: "retry.go", Status: gh.FileAdded, Additions: 25},
			{Filename: "client.go", Status: gh.FileModified, Additions: 5, Deletions: 2},
			{Filename: "pkg/new.go", Status: gh.FileRenamed, PreviousFilename: "pkg/old.go", Deletions: 2},
		},
		Comments: []gh.Comment{
			{ID: "c1", Author: "dave", Body: "Late comment", CreatedAt: ts(15, 0)},
			{ID: "c2", Author: "erin", Body: "Early comment", CreatedAt: ts(10, 0)},
		},
		Reviews: []gh.Review{
			{ID: "r1", Author: "carol", State: gh.ReviewChangesRequested, Body: "Needs tests", SubmittedAt: tsPtr(11, 0)},
			{ID: "r2", Author: "bob", State: gh.ReviewApproved, Body: "", SubmittedAt: tsPtr(16, 0)},
			{ID: "r3", Author: "frank", State: gh.ReviewPending, Body: "draft thoughts"},
		},
		ReviewComments: []gh.ReviewComment{
			{ID: "rc1", Author: "carol", Body: "Missing backoff cap", Path: "retry.go", Line: 12, CreatedAt: ts(11, 0), DiffHunk: "@@ -0,0 +1,25 @@\n+func retry() {", ReviewID: "r1"},
			{ID: "rc2", Author: "gina", Body: "Nit: rename", Path: "client.go", CreatedAt: ts(12, 0)},
		},
	}
}

func emptyPRData() *gh.PRData {
	return &gh.PRData{
		PullRequest: gh.PullRequest{
			Number:    7,
			Title:     "Empty",
			State:     gh.StateOpen,
			Draft:     true,
			URL:       "https://github.com/octo/repo/pull/7",
			Author:    gh.NewUser("alice"),
			CreatedAt: ts(9, 0),
			UpdatedAt: ts(9, 0),
		},
		Commits:        []gh.Commit{},
		Files:          []gh.File{},
		Comments:       []gh.Comment{},
		Reviews:        []gh.Review{},
		ReviewComments: []gh.ReviewComment{},
	}
}
