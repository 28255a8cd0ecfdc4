package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"promptmarket/backend/models"
	"promptmarket/backend/store"
	"promptmarket/backend/store/storetest"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type sentMessage struct {
	Address, Subject, Body string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, address, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{address, subject, body})
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type recordingScheduler struct {
	mu    sync.Mutex
	users []uint
	full  bool
}

func (s *recordingScheduler) Schedule(userID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.full {
		return false
	}
	s.users = append(s.users, userID)
	return true
}

type fixture struct {
	db        *gorm.DB
	templates store.TemplateStore
	users     store.UserStore
	ratings   store.RatingStore
	upvotes   store.UpvoteStore
	comments  store.CommentStore
	notifier  *recordingNotifier
	scheduler *recordingScheduler
	evaluator *ExpertEvaluator
	svc       *EngagementService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := storetest.NewDB(t)
	f := &fixture{
		db:        db,
		templates: store.NewTemplateStore(db),
		users:     store.NewUserStore(db),
		ratings:   store.NewRatingStore(db),
		upvotes:   store.NewUpvoteStore(db),
		comments:  store.NewCommentStore(db),
		notifier:  &recordingNotifier{},
		scheduler: &recordingScheduler{},
	}
	f.evaluator = NewExpertEvaluator(f.templates, f.ratings, f.users, f.notifier, DefaultPromotionCriteria(), zap.NewNop())
	f.svc = NewEngagementService(EngagementDeps{
		Templates: f.templates,
		Users:     f.users,
		Ratings:   f.ratings,
		Upvotes:   f.upvotes,
		Comments:  f.comments,
		Scheduler: f.scheduler,
	}, zap.NewNop())
	return f
}

// seedRatings spreads ranges round-robin over templateIDs, one distinct
// rater per row.
func (f *fixture) seedRatings(t *testing.T, templateIDs []uint, ranges []models.EffectivenessRange) {
	t.Helper()
	rows := make([]models.Rating, 0, len(ranges))
	for i, r := range ranges {
		rows = append(rows, models.Rating{
			TemplateID:         templateIDs[i%len(templateIDs)],
			UserID:             uint(10000 + i),
			EffectivenessRange: r,
		})
	}
	require.NoError(t, f.db.CreateInBatches(rows, 100).Error)
}

func repeatRange(r models.EffectivenessRange, n int) []models.EffectivenessRange {
	out := make([]models.EffectivenessRange, n)
	for i := range out {
		out[i] = r
	}
	return out
}

func mix(parts ...[]models.EffectivenessRange) []models.EffectivenessRange {
	var out []models.EffectivenessRange
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

var errSendFailed = errors.New("smtp down")
