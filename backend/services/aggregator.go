package services

import (
	"math"
	"sort"

	"promptmarket/backend/models"
)

// midpoints stand in for every rating inside a bucket.
var midpoints = map[models.EffectivenessRange]int{
	models.Range0To10:   5,
	models.Range10To50:  30,
	models.Range50To80:  65,
	models.Range80To100: 90,
}

func Midpoint(r models.EffectivenessRange) int {
	return midpoints[r]
}

type RatingSummary struct {
	Distribution map[models.EffectivenessRange]int `json:"distribution"`
	TotalRatings int                               `json:"totalRatings"`
	AverageScore *int                              `json:"averageScore"`
	UserRating   *models.EffectivenessRange        `json:"userRating"`
}

// Summarize groups ratings by bucket and computes the weighted midpoint
// average. Ratings with an unknown bucket are ignored. When callerID is set
// and the caller has rated, UserRating holds their bucket.
func Summarize(ratings []models.Rating, callerID *uint) RatingSummary {
	summary := RatingSummary{
		Distribution: make(map[models.EffectivenessRange]int, len(models.EffectivenessRanges)),
	}
	for _, r := range models.EffectivenessRanges {
		summary.Distribution[r] = 0
	}

	weighted := 0
	for _, rating := range ratings {
		if !rating.EffectivenessRange.Valid() {
			continue
		}
		summary.Distribution[rating.EffectivenessRange]++
		summary.TotalRatings++
		weighted += Midpoint(rating.EffectivenessRange)

		if callerID != nil && rating.UserID == *callerID {
			own := rating.EffectivenessRange
			summary.UserRating = &own
		}
	}

	if summary.TotalRatings > 0 {
		avg := int(math.Round(float64(weighted) / float64(summary.TotalRatings)))
		summary.AverageScore = &avg
	}
	return summary
}

// BuildCommentTree assembles a flat comment list into a forest. Roots keep
// the input order; replies at every depth are sorted oldest first. Replies
// whose parent is not in the list are dropped.
func BuildCommentTree(comments []models.Comment) []*models.CommentNode {
	nodes := make(map[uint]*models.CommentNode, len(comments))
	for _, c := range comments {
		if _, dup := nodes[c.ID]; dup {
			continue
		}
		nodes[c.ID] = &models.CommentNode{Comment: c, Replies: []*models.CommentNode{}}
	}

	roots := make([]*models.CommentNode, 0, len(comments))
	linked := make(map[uint]struct{}, len(comments))
	for _, c := range comments {
		if _, done := linked[c.ID]; done {
			continue
		}
		linked[c.ID] = struct{}{}

		node := nodes[c.ID]
		if c.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[*c.ParentID]; ok && parent != node {
			parent.Replies = append(parent.Replies, node)
		}
	}

	for _, root := range roots {
		sortReplies(root, map[uint]struct{}{})
	}
	return roots
}

func sortReplies(node *models.CommentNode, seen map[uint]struct{}) {
	if _, ok := seen[node.ID]; ok {
		return
	}
	seen[node.ID] = struct{}{}

	sort.SliceStable(node.Replies, func(i, j int) bool {
		a, b := node.Replies[i], node.Replies[j]
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.ID < b.ID
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	for _, reply := range node.Replies {
		sortReplies(reply, seen)
	}
}
