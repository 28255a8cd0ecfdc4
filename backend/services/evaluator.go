package services

import (
	"context"
	"fmt"

	"promptmarket/backend/apperr"
	"promptmarket/backend/models"
	"promptmarket/backend/store"

	"go.uber.org/zap"
)

// PromotionCriteria are the thresholds for the Verified Expert badge.
type PromotionCriteria struct {
	MinApprovedTemplates int
	MinTotalRatings      int
	MinAverageScore      int
}

func DefaultPromotionCriteria() PromotionCriteria {
	return PromotionCriteria{
		MinApprovedTemplates: 3,
		MinTotalRatings:      50,
		MinAverageScore:      70,
	}
}

type Outcome int

const (
	OutcomeNotEligible Outcome = iota
	OutcomeAlreadyVerified
	OutcomeBelowThreshold
	OutcomePromoted
	// OutcomeLostRace means another evaluation flipped the flag first.
	OutcomeLostRace
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAlreadyVerified:
		return "already_verified"
	case OutcomeBelowThreshold:
		return "below_threshold"
	case OutcomePromoted:
		return "promoted"
	case OutcomeLostRace:
		return "lost_race"
	default:
		return "not_eligible"
	}
}

const (
	promotionSubject = "You are now a Verified Expert"
	promotionBody    = "Hi %s,\n\nYour approved templates have earned %d ratings with an average effectiveness of %d. " +
		"Your profile now carries the Verified Expert badge.\n\nThanks for sharing your prompts!"
)

type ExpertEvaluator struct {
	templates store.TemplateStore
	ratings   store.RatingStore
	users     store.UserStore
	notifier  Notifier
	criteria  PromotionCriteria
	log       *zap.Logger
}

func NewExpertEvaluator(
	templates store.TemplateStore,
	ratings store.RatingStore,
	users store.UserStore,
	notifier Notifier,
	criteria PromotionCriteria,
	log *zap.Logger,
) *ExpertEvaluator {
	return &ExpertEvaluator{
		templates: templates,
		ratings:   ratings,
		users:     users,
		notifier:  notifier,
		criteria:  criteria,
		log:       log.Named("expert-evaluator"),
	}
}

// Evaluate checks whether userID qualifies for Verified Expert and, if so,
// flips the flag and notifies the user. Running it again after a promotion
// is a no-op.
func (e *ExpertEvaluator) Evaluate(ctx context.Context, userID uint) (Outcome, error) {
	user, err := e.users.FindByID(ctx, userID)
	if apperr.Is(err, apperr.KindNotFound) {
		return OutcomeNotEligible, nil
	}
	if err != nil {
		return OutcomeNotEligible, fmt.Errorf("load user %d: %w", userID, err)
	}
	if user.Role != models.RoleExpert {
		return OutcomeNotEligible, nil
	}
	if user.IsVerifiedExpert {
		return OutcomeAlreadyVerified, nil
	}

	approved, err := e.templates.ListApprovedIDsByOwner(ctx, userID)
	if err != nil {
		return OutcomeNotEligible, fmt.Errorf("list approved templates of %d: %w", userID, err)
	}
	if len(approved) < e.criteria.MinApprovedTemplates {
		return OutcomeBelowThreshold, nil
	}

	ratings, err := e.ratings.ListByTemplates(ctx, approved)
	if err != nil {
		return OutcomeNotEligible, fmt.Errorf("load ratings of %d: %w", userID, err)
	}
	summary := Summarize(ratings, nil)
	if summary.TotalRatings < e.criteria.MinTotalRatings ||
		summary.AverageScore == nil ||
		*summary.AverageScore < e.criteria.MinAverageScore {
		return OutcomeBelowThreshold, nil
	}

	flipped, err := e.users.SetVerifiedExpert(ctx, userID)
	if err != nil {
		return OutcomeNotEligible, fmt.Errorf("promote %d: %w", userID, err)
	}
	if !flipped {
		return OutcomeLostRace, nil
	}

	e.log.Info("user promoted to verified expert",
		zap.Uint("user_id", userID),
		zap.Int("approved_templates", len(approved)),
		zap.Int("total_ratings", summary.TotalRatings),
		zap.Int("average_score", *summary.AverageScore),
	)
	e.notifyPromotion(ctx, user, summary)
	return OutcomePromoted, nil
}

func (e *ExpertEvaluator) notifyPromotion(ctx context.Context, user *models.User, summary RatingSummary) {
	if e.notifier == nil {
		return
	}
	if user.Email == "" {
		e.log.Warn("promoted user has no email", zap.Uint("user_id", user.ID))
		return
	}
	body := fmt.Sprintf(promotionBody, user.Username, summary.TotalRatings, *summary.AverageScore)
	if err := e.notifier.Notify(ctx, user.Email, promotionSubject, body); err != nil {
		e.log.Warn("promotion notification failed", zap.Uint("user_id", user.ID), zap.Error(err))
	}
}
