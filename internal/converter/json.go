package converter

import (
	"encoding/json"
	"fmt"
	"time"

	gh "github.com/johnqtcg/pr2md/internal/github"
)

type jsonDocument struct {
	PullRequest      jsonPullRequest     `json:"pullRequest"`
	Commits          []jsonCommit        `json:"commits"`
	Files            []jsonFile          `json:"files"`
	Reviews          []jsonReview        `json:"reviews"`
	ReviewComments   []jsonReviewComment `json:"reviewComments"`
	Comments         []jsonComment       `json:"comments"`
	DownloadedImages []jsonImage         `json:"downloadedImages"`
}

type jsonUser struct {
	Login string `json:"login"`
	URL   string `json:"url"`
}

type jsonRef struct {
	Ref string `json:"ref"`
	SHA string `json:"sha"`
}

type jsonLabel struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type jsonMilestone struct {
	Title  string `json:"title"`
	Number int    `json:"number"`
}

type jsonPullRequest struct {
	Number             int            `json:"number"`
	Title              string         `json:"title"`
	State              string         `json:"state"`
	Draft              bool           `json:"draft"`
	Merged             bool           `json:"merged"`
	URL                string         `json:"url"`
	Author             jsonUser       `json:"author"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
	MergedAt           *time.Time     `json:"mergedAt"`
	ClosedAt           *time.Time     `json:"closedAt"`
	MergedBy           *string        `json:"mergedBy"`
	Base               jsonRef        `json:"base"`
	Head               jsonRef        `json:"head"`
	Additions          int            `json:"additions"`
	Deletions          int            `json:"deletions"`
	ChangedFiles       int            `json:"changedFiles"`
	Labels             []jsonLabel    `json:"labels"`
	Assignees          []string       `json:"assignees"`
	RequestedReviewers []string       `json:"requestedReviewers"`
	Milestone          *jsonMilestone `json:"milestone"`
	Body               string         `json:"body"`
}

type jsonCommit struct {
	SHA          string    `json:"sha"`
	Message      string    `json:"message"`
	Author       string    `json:"author"`
	AuthorLinked bool      `json:"authorLinked"`
	URL          string    `json:"url"`
	Date         time.Time `json:"date"`
}

type jsonFile struct {
	Filename         string  `json:"filename"`
	Status           string  `json:"status"`
	Additions        int     `json:"additions"`
	Deletions        int     `json:"deletions"`
	PreviousFilename *string `json:"previousFilename"`
	Patch            string  `json:"patch"`
}

type jsonComment struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

type jsonReview struct {
	ID          string     `json:"id"`
	Author      string     `json:"author"`
	State       string     `json:"state"`
	Body        string     `json:"body"`
	SubmittedAt *time.Time `json:"submittedAt"`
}

type jsonReviewComment struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	Path      string    `json:"path"`
	Line      *int      `json:"line"`
	CreatedAt time.Time `json:"createdAt"`
	DiffHunk  string    `json:"diffHunk"`
	ReviewID  *string   `json:"reviewId"`
}

type jsonImage struct {
	OriginalURL  string `json:"originalUrl"`
	LocalPath    string `json:"localPath"`
	RelativePath string `json:"relativePath"`
	Format       string `json:"format"`
}

// RenderJSON projects data and the images saved for it into the JSON document shape.
func RenderJSON(data *gh.PRData, images []DownloadedImage) ([]byte, error) {
	if data == nil {
		return nil, fmt.Errorf("render json: nil pull request data")
	}

	out, err := json.MarshalIndent(projectDocument(data, images), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render json: %w", err)
	}
	return append(out, '\n'), nil
}

func projectDocument(data *gh.PRData, images []DownloadedImage) jsonDocument {
	doc := jsonDocument{
		PullRequest:      projectPullRequest(data.PullRequest),
		Commits:          make([]jsonCommit, 0, len(data.Commits)),
		Files:            make([]jsonFile, 0, len(data.Files)),
		Reviews:          make([]jsonReview, 0, len(data.Reviews)),
		ReviewComments:   make([]jsonReviewComment, 0, len(data.ReviewComments)),
		Comments:         make([]jsonComment, 0, len(data.Comments)),
		DownloadedImages: make([]jsonImage, 0, len(images)),
	}

	for _, c := range data.Commits {
		doc.Commits = append(doc.Commits, jsonCommit{
			SHA:          c.SHA,
			Message:      c.Message,
			Author:       c.Author,
			AuthorLinked: c.AuthorLinked,
			URL:          c.URL,
			Date:         c.Date,
		})
	}
	for _, f := range data.Files {
		doc.Files = append(doc.Files, jsonFile{
			Filename:         f.Filename,
			Status:           string(f.Status),
			Additions:        f.Additions,
			Deletions:        f.Deletions,
			PreviousFilename: optionalString(f.PreviousFilename),
			Patch:            f.Patch,
		})
	}
	for _, r := range data.Reviews {
		doc.Reviews = append(doc.Reviews, jsonReview{
			ID:          r.ID,
			Author:      r.Author,
			State:       r.State,
			Body:        r.Body,
			SubmittedAt: r.SubmittedAt,
		})
	}
	for _, rc := range data.ReviewComments {
		item := jsonReviewComment{
			ID:        rc.ID,
			Author:    rc.Author,
			Body:      rc.Body,
			Path:      rc.Path,
			CreatedAt: rc.CreatedAt,
			DiffHunk:  rc.DiffHunk,
			ReviewID:  optionalString(rc.ReviewID),
		}
		if rc.Line > 0 {
			line := rc.Line
			item.Line = &line
		}
		doc.ReviewComments = append(doc.ReviewComments, item)
	}
	for _, c := range data.Comments {
		doc.Comments = append(doc.Comments, jsonComment{
			ID:        c.ID,
			Author:    c.Author,
			Body:      c.Body,
			CreatedAt: c.CreatedAt,
		})
	}
	for _, img := range images {
		doc.DownloadedImages = append(doc.DownloadedImages, jsonImage{
			OriginalURL:  img.OriginalURL,
			LocalPath:    img.LocalPath,
			RelativePath: img.RelativePath,
			Format:       string(img.Format),
		})
	}

	return doc
}

func projectPullRequest(pr gh.PullRequest) jsonPullRequest {
	out := jsonPullRequest{
		Number:             pr.Number,
		Title:              pr.Title,
		State:              pr.State,
		Draft:              pr.Draft,
		Merged:             pr.Merged,
		URL:                pr.URL,
		Author:             jsonUser{Login: pr.Author.Login, URL: pr.Author.URL},
		CreatedAt:          pr.CreatedAt,
		UpdatedAt:          pr.UpdatedAt,
		MergedAt:           pr.MergedAt,
		ClosedAt:           pr.ClosedAt,
		MergedBy:           optionalString(pr.MergedBy),
		Base:               jsonRef{Ref: pr.Base.Ref, SHA: pr.Base.SHA},
		Head:               jsonRef{Ref: pr.Head.Ref, SHA: pr.Head.SHA},
		Additions:          pr.Additions,
		Deletions:          pr.Deletions,
		ChangedFiles:       pr.ChangedFiles,
		Labels:             make([]jsonLabel, 0, len(pr.Labels)),
		Assignees:          append([]string{}, pr.Assignees...),
		RequestedReviewers: append([]string{}, pr.RequestedReviewers...),
		Body:               pr.Body,
	}
	for _, label := range pr.Labels {
		out.Labels = append(out.Labels, jsonLabel{Name: label.Name, Color: label.Color})
	}
	if pr.Milestone != nil {
		out.Milestone = &jsonMilestone{Title: pr.Milestone.Title, Number: pr.Milestone.Number}
	}
	return out
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
