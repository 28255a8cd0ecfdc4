package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"promptmarket/backend/apperr"
	"promptmarket/backend/models"
	"promptmarket/backend/store"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type UpvoteStatus struct {
	Count      int64 `json:"count"`
	HasUpvoted bool  `json:"hasUpvoted"`
}

type EngagementDeps struct {
	Templates store.TemplateStore
	Users     store.UserStore
	Ratings   store.RatingStore
	Upvotes   store.UpvoteStore
	Comments  store.CommentStore
	Scheduler PromotionScheduler
	// BulkConcurrency bounds RatingSummaries fan-out.
	BulkConcurrency int
}

// EngagementService serves ratings, upvotes and comments for templates.
type EngagementService struct {
	templates store.TemplateStore
	users     store.UserStore
	ratings   store.RatingStore
	upvotes   store.UpvoteStore
	comments  store.CommentStore
	scheduler PromotionScheduler
	bulkLimit int
	log       *zap.Logger
}

func NewEngagementService(deps EngagementDeps, log *zap.Logger) *EngagementService {
	limit := deps.BulkConcurrency
	if limit < 1 {
		limit = 4
	}
	return &EngagementService{
		templates: deps.Templates,
		users:     deps.Users,
		ratings:   deps.Ratings,
		upvotes:   deps.Upvotes,
		comments:  deps.Comments,
		scheduler: deps.Scheduler,
		bulkLimit: limit,
		log:       log.Named("engagement"),
	}
}

func (s *EngagementService) requireTemplate(ctx context.Context, templateID uint) (*models.Template, error) {
	tpl, err := s.templates.FindByID(ctx, templateID)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, apperr.NotFound("template %d not found", templateID)
	}
	return tpl, err
}

func (s *EngagementService) requireTemplateExists(ctx context.Context, templateID uint) error {
	ok, err := s.templates.Exists(ctx, templateID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("template %d not found", templateID)
	}
	return nil
}

// ---- ratings ----

func (s *EngagementService) GetRatingSummary(ctx context.Context, templateID uint, callerID *uint) (RatingSummary, error) {
	if err := s.requireTemplateExists(ctx, templateID); err != nil {
		return RatingSummary{}, err
	}
	return s.ratingSummary(ctx, templateID, callerID)
}

// ratingSummary is the one place a template's rating info is computed, for
// the detail endpoint and for listings alike.
func (s *EngagementService) ratingSummary(ctx context.Context, templateID uint, callerID *uint) (RatingSummary, error) {
	ratings, err := s.ratings.ListByTemplate(ctx, templateID)
	if err != nil {
		return RatingSummary{}, err
	}
	return Summarize(ratings, callerID), nil
}

// RatingSummaries attaches rating info to a listing of templates. Every id
// gets an entry, templates with no ratings included.
func (s *EngagementService) RatingSummaries(ctx context.Context, templateIDs []uint, callerID *uint) (map[uint]RatingSummary, error) {
	out := make(map[uint]RatingSummary, len(templateIDs))
	results := make([]RatingSummary, len(templateIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.bulkLimit)
	for i, id := range templateIDs {
		g.Go(func() error {
			summary, err := s.ratingSummary(gctx, id, callerID)
			if err != nil {
				return err
			}
			results[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, id := range templateIDs {
		out[id] = results[i]
	}
	return out, nil
}

// SubmitRating creates or replaces userID's rating of the template and
// queues a verified-expert check for the template owner.
func (s *EngagementService) SubmitRating(ctx context.Context, templateID, userID uint, r models.EffectivenessRange) (models.EffectivenessRange, error) {
	if !r.Valid() {
		return "", apperr.Validation("effectivenessRange must be one of 0-10, 10-50, 50-80, 80-100")
	}
	tpl, err := s.requireTemplate(ctx, templateID)
	if err != nil {
		return "", err
	}

	stored, err := s.ratings.Upsert(ctx, templateID, userID, r)
	if apperr.Is(err, apperr.KindConflict) {
		// lost an insert race; the row exists now, so this lands as an update
		stored, err = s.ratings.Upsert(ctx, templateID, userID, r)
	}
	if err != nil {
		return "", err
	}

	if s.scheduler != nil && !s.scheduler.Schedule(tpl.OwnerID) {
		s.log.Warn("verified-expert check not scheduled",
			zap.Uint("template_id", templateID),
			zap.Uint("owner_id", tpl.OwnerID),
		)
	}
	return stored.EffectivenessRange, nil
}

// ---- upvotes ----

func (s *EngagementService) GetUpvoteStatus(ctx context.Context, templateID uint, callerID *uint) (UpvoteStatus, error) {
	if err := s.requireTemplateExists(ctx, templateID); err != nil {
		return UpvoteStatus{}, err
	}
	count, err := s.upvotes.Count(ctx, templateID)
	if err != nil {
		return UpvoteStatus{}, err
	}
	status := UpvoteStatus{Count: count}
	if callerID != nil {
		if status.HasUpvoted, err = s.upvotes.Exists(ctx, templateID, *callerID); err != nil {
			return UpvoteStatus{}, err
		}
	}
	return status, nil
}

func (s *EngagementService) ToggleUpvote(ctx context.Context, templateID, userID uint) (UpvoteStatus, error) {
	if err := s.requireTemplateExists(ctx, templateID); err != nil {
		return UpvoteStatus{}, err
	}
	hasUpvoted, err := s.upvotes.Toggle(ctx, templateID, userID)
	if err != nil {
		return UpvoteStatus{}, err
	}
	// re-read rather than adjust, concurrent toggles from other users count too
	count, err := s.upvotes.Count(ctx, templateID)
	if err != nil {
		return UpvoteStatus{}, err
	}
	return UpvoteStatus{Count: count, HasUpvoted: hasUpvoted}, nil
}

// ---- comments ----

func (s *EngagementService) GetComments(ctx context.Context, templateID uint) ([]*models.CommentNode, error) {
	if err := s.requireTemplateExists(ctx, templateID); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	return BuildCommentTree(comments), nil
}

func (s *EngagementService) CreateComment(ctx context.Context, templateID, userID uint, content string, parentID *uint) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation("content must not be empty")
	}
	if utf8.RuneCountInString(content) > models.MaxCommentLength {
		return nil, apperr.Validation("content must be at most %d characters", models.MaxCommentLength)
	}

	if err := s.requireTemplateExists(ctx, templateID); err != nil {
		return nil, err
	}

	if parentID != nil {
		parent, err := s.comments.FindByID(ctx, *parentID)
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.NotFound("parent comment %d not found", *parentID)
		}
		if err != nil {
			return nil, err
		}
		if parent.TemplateID != templateID {
			return nil, apperr.Validation("parent comment %d belongs to another template", *parentID)
		}
	}

	author, err := s.users.FindByID(ctx, userID)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, apperr.NotFound("user %d not found", userID)
	}
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		TemplateID: templateID,
		UserID:     userID,
		ParentID:   parentID,
		Content:    content,
		Role:       models.CommentRoleFor(author),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes the comment and every reply beneath it. Only the
// author or an admin may delete.
func (s *EngagementService) DeleteComment(ctx context.Context, commentID, callerID uint, callerIsAdmin bool) (int, error) {
	comment, err := s.comments.FindByID(ctx, commentID)
	if apperr.Is(err, apperr.KindNotFound) {
		return 0, apperr.NotFound("comment %d not found", commentID)
	}
	if err != nil {
		return 0, err
	}
	if comment.UserID != callerID && !callerIsAdmin {
		return 0, apperr.Forbidden("not allowed to delete comment %d", commentID)
	}
	return s.comments.DeleteCascade(ctx, commentID)
}

// ---- experts ----

// ListExperts returns every user holding the Expert role.
func (s *EngagementService) ListExperts(ctx context.Context) ([]models.User, error) {
	return s.users.ListByRole(ctx, models.RoleExpert)
}
