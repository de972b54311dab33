package converter

import (
	"slices"
	"time"

	gh "github.com/johnqtcg/pr2md/internal/github"
)

// timelineEvent is one conversation entry: exactly one of comment or review is set.
type timelineEvent struct {
	at      time.Time
	comment *gh.Comment
	review  *gh.Review
}

// mergeTimeline interleaves comments and submitted reviews by time. Pending reviews have
// no submission time and are left out. Equal timestamps keep comments-then-reviews input order.
func mergeTimeline(data *gh.PRData) []timelineEvent {
	events := make([]timelineEvent, 0, len(data.Comments)+len(data.Reviews))
	for i := range data.Comments {
		events = append(events, timelineEvent{at: data.Comments[i].CreatedAt, comment: &data.Comments[i]})
	}
	for i := range data.Reviews {
		if data.Reviews[i].SubmittedAt == nil {
			continue
		}
		events = append(events, timelineEvent{at: *data.Reviews[i].SubmittedAt, review: &data.Reviews[i]})
	}

	slices.SortStableFunc(events, func(a, b timelineEvent) int {
		return a.at.Compare(b.at)
	})
	return events
}

// reviewCommentsByReview groups attached inline comments by review id, keeping input order.
func reviewCommentsByReview(comments []gh.ReviewComment) (map[string][]gh.ReviewComment, []gh.ReviewComment) {
	attached := make(map[string][]gh.ReviewComment)
	var standalone []gh.ReviewComment
	for _, comment := range comments {
		if comment.Standalone() {
			standalone = append(standalone, comment)
			continue
		}
		attached[comment.ReviewID] = append(attached[comment.ReviewID], comment)
	}
	return attached, standalone
}
