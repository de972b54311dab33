package converter

import (
	"fmt"
	"strings"

	gh "github.com/johnqtcg/pr2md/internal/github"
)

const (
	emptyDescription  = "_No description provided._"
	emptyConversation = "_No comments or reviews._"
)

func renderDescriptionSection(pr gh.PullRequest) string {
	var b strings.Builder

	b.WriteString("## Description\n\n")
	if strings.TrimSpace(pr.Body) == "" {
		b.WriteString(emptyDescription + "\n")
	} else {
		b.WriteString(strings.TrimRight(pr.Body, "\n"))
		b.WriteString("\n")
	}

	return b.String()
}

func renderConversationSection(data *gh.PRData) string {
	var b strings.Builder

	b.WriteString("## Conversation\n\n")
	events := mergeTimeline(data)
	if len(events) == 0 {
		b.WriteString(emptyConversation + "\n")
		return b.String()
	}

	attached, _ := reviewCommentsByReview(data.ReviewComments)
	for i, event := range events {
		if i > 0 {
			b.WriteString("\n")
		}
		if event.comment != nil {
			writeComment(&b, *event.comment)
			continue
		}
		writeReview(&b, *event.review, attached[event.review.ID])
	}

	return b.String()
}

func writeComment(b *strings.Builder, comment gh.Comment) {
	fmt.Fprintf(b, "### 🗨️ Comment by %s on %s\n\n", userLink(comment.Author), formatTime(comment.CreatedAt))
	writeBody(b, comment.Body)
}

func writeReview(b *strings.Builder, review gh.Review, comments []gh.ReviewComment) {
	glyph, verb := reviewMarker(review.State)
	fmt.Fprintf(b, "### %s %s %s on %s\n\n", glyph, userLink(review.Author), verb, formatTime(*review.SubmittedAt))
	if strings.TrimSpace(review.Body) != "" {
		writeBody(b, review.Body)
	}

	for _, comment := range comments {
		b.WriteString("\n")
		fmt.Fprintf(b, "#### %s\n\n", locationLabel(comment))
		writeBody(b, comment.Body)
		writeDiffHunk(b, comment.DiffHunk)
	}
}

func reviewMarker(state string) (glyph, verb string) {
	switch state {
	case gh.ReviewApproved:
		return "✅", "approved"
	case gh.ReviewChangesRequested:
		return "❌", "requested changes"
	case gh.ReviewCommented:
		return "💬", "reviewed"
	default:
		return "📝", "reviewed (" + strings.ToLower(titleCase(state)) + ")"
	}
}

func renderStandaloneReviewCommentsSection(comments []gh.ReviewComment) string {
	_, standalone := reviewCommentsByReview(comments)
	if len(standalone) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("## Review Comments\n\n")
	for i, comment := range standalone {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "### %s on %s\n\n", userLink(comment.Author), locationLabel(comment))
		fmt.Fprintf(&b, "_%s_\n\n", formatTime(comment.CreatedAt))
		writeBody(&b, comment.Body)
		writeDiffHunk(&b, comment.DiffHunk)
	}
	return b.String()
}

func renderCommitsSection(commits []gh.Commit) string {
	if len(commits) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Commits (%d)\n\n", len(commits))
	for _, commit := range commits {
		author := commit.Author
		if commit.AuthorLinked {
			author = userLink(commit.Author)
		}
		if author == "" {
			author = "unknown"
		}
		fmt.Fprintf(&b, "- [`%s`](%s) %s (%s)\n", shortSHA(commit.SHA), commit.URL, commit.Message, author)
	}
	return b.String()
}

func renderFilesSection(files []gh.File) string {
	if len(files) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Files Changed (%d)\n\n", len(files))
	b.WriteString("| Status | File | Changes |\n")
	b.WriteString("| --- | --- | --- |\n")
	for _, file := range files {
		name := "`" + file.Filename + "`"
		if file.Status == gh.FileRenamed && file.PreviousFilename != "" {
			name = fmt.Sprintf("`%s` → `%s`", file.PreviousFilename, file.Filename)
		}
		fmt.Fprintf(&b, "| %s %s | %s | +%d -%d |\n",
			fileStatusGlyph(file.Status), titleCase(string(file.Status)), name, file.Additions, file.Deletions)
	}
	return b.String()
}

func fileStatusGlyph(status gh.FileStatus) string {
	switch status {
	case gh.FileAdded:
		return "🟢"
	case gh.FileRemoved:
		return "🔴"
	case gh.FileRenamed:
		return "🔵"
	default:
		return "🟡"
	}
}

func locationLabel(comment gh.ReviewComment) string {
	if comment.Line > 0 {
		return fmt.Sprintf("`%s:%d`", comment.Path, comment.Line)
	}
	return fmt.Sprintf("`%s`", comment.Path)
}

func writeBody(b *strings.Builder, body string) {
	body = strings.TrimRight(body, "\n")
	if strings.TrimSpace(body) == "" {
		b.WriteString("_No content._\n")
		return
	}
	b.WriteString(body)
	b.WriteString("\n")
}

func writeDiffHunk(b *strings.Builder, hunk string) {
	if strings.TrimSpace(hunk) == "" {
		return
	}
	b.WriteString("\n```diff\n")
	b.WriteString(strings.TrimRight(hunk, "\n"))
	b.WriteString("\n```\n")
}
