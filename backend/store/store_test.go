package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"promptmarket/backend/apperr"
	"promptmarket/backend/models"
	"promptmarket/backend/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatingUpsertKeepsOneRowPerRater(t *testing.T) {
	db := storetest.NewDB(t)
	ctx := context.Background()
	ratings := NewRatingStore(db)

	first, err := ratings.Upsert(ctx, 10, 20, models.Range0To10)
	require.NoError(t, err)
	assert.Equal(t, models.Range0To10, first.EffectivenessRange)

	time.Sleep(5 * time.Millisecond)
	second, err := ratings.Upsert(ctx, 10, 20, models.Range80To100)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, models.Range80To100, second.EffectivenessRange)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))

	var count int64
	require.NoError(t, db.Model(&models.Rating{}).Where("template_id = ? AND user_id = ?", 10, 20).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRatingLookups(t *testing.T) {
	db := storetest.NewDB(t)
	ctx := context.Background()
	ratings := NewRatingStore(db)

	_, err := ratings.Upsert(ctx, 1, 100, models.Range10To50)
	require.NoError(t, err)
	_, err = ratings.Upsert(ctx, 1, 101, models.Range50To80)
	require.NoError(t, err)
	_, err = ratings.Upsert(ctx, 2, 100, models.Range80To100)
	require.NoError(t, err)

	missing, err := ratings.FindByTemplateAndUser(ctx, 3, 100)
	require.NoError(t, err)
	assert.Nil(t, missing)

	one, err := ratings.ListByTemplate(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, one, 2)

	both, err := ratings.ListByTemplates(ctx, []uint{1, 2})
	require.NoError(t, err)
	assert.Len(t, both, 3)

	none, err := ratings.ListByTemplates(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpvoteToggleTwiceRestoresState(t *testing.T) {
	db := storetest.NewDB(t)
	ctx := context.Background()
	upvotes := NewUpvoteStore(db)

	before, err := upvotes.Count(ctx, 5)
	require.NoError(t, err)

	on, err := upvotes.Toggle(ctx, 5, 9)
	require.NoError(t, err)
	assert.True(t, on)
	exists, err := upvotes.Exists(ctx, 5, 9)
	require.NoError(t, err)
	assert.True(t, exists)

	off, err := upvotes.Toggle(ctx, 5, 9)
	require.NoError(t, err)
	assert.False(t, off)

	after, err := upvotes.Count(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestUpvoteDuplicateInsertIsRejectedByIndex(t *testing.T) {
	db := storetest.NewDB(t)
	require.NoError(t, db.Create(&models.Upvote{TemplateID: 1, UserID: 2}).Error)

	err := translate(db.Create(&models.Upvote{TemplateID: 1, UserID: 2}).Error, "upvote")
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestCommentDeleteCascadeRemovesDeepChain(t *testing.T) {
	db := storetest.NewDB(t)
	ctx := context.Background()
	comments := NewCommentStore(db)

	root := &models.Comment{TemplateID: 1, UserID: 1, Content: "root", Role: models.CommentRoleUser}
	require.NoError(t, comments.Create(ctx, root))
	parent := root.ID
	var chain []uint
	for i := 0; i < 3; i++ {
		p := parent
		reply := &models.Comment{TemplateID: 1, UserID: 2, ParentID: &p, Content: "reply", Role: models.CommentRoleUser}
		require.NoError(t, comments.Create(ctx, reply))
		chain = append(chain, reply.ID)
		parent = reply.ID
	}
	// sibling branch and an unrelated root
	p := root.ID
	sibling := &models.Comment{TemplateID: 1, UserID: 3, ParentID: &p, Content: "sibling", Role: models.CommentRoleUser}
	require.NoError(t, comments.Create(ctx, sibling))
	other := &models.Comment{TemplateID: 1, UserID: 3, Content: "other", Role: models.CommentRoleUser}
	require.NoError(t, comments.Create(ctx, other))

	n, err := comments.DeleteCascade(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	left, err := comments.ListByTemplate(ctx, 1)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, other.ID, left[0].ID)

	for _, id := range append(chain, root.ID, sibling.ID) {
		_, err := comments.FindByID(ctx, id)
		assert.True(t, apperr.Is(err, apperr.KindNotFound), "comment %d should be gone", id)
	}
}

func TestCommentDeleteCascadeSurvivesCycle(t *testing.T) {
	db := storetest.NewDB(t)
	ctx := context.Background()
	comments := NewCommentStore(db)

	a := &models.Comment{TemplateID: 1, UserID: 1, Content: "a", Role: models.CommentRoleUser}
	require.NoError(t, comments.Create(ctx, a))
	b := &models.Comment{TemplateID: 1, UserID: 1, ParentID: &a.ID, Content: "b", Role: models.CommentRoleUser}
	require.NoError(t, comments.Create(ctx, b))
	require.NoError(t, db.Model(a).Update("parent_id", b.ID).Error)

	n, err := comments.DeleteCascade(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCommentListOrderNewestFirst(t *testing.T) {
	db := storetest.NewDB(t)
	ctx := context.Background()
	comments := NewCommentStore(db)

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		c := &models.Comment{TemplateID: 4, UserID: 1, Content: "c", Role: models.CommentRoleUser, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, comments.Create(ctx, c))
	}

	list, err := comments.ListByTemplate(ctx, 4)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.True(t, list[0].CreatedAt.After(list[1].CreatedAt))
	assert.True(t, list[1].CreatedAt.After(list[2].CreatedAt))
}

func TestSetVerifiedExpertIsConditional(t *testing.T) {
	db := storetest.NewDB(t)
	ctx := context.Background()
	users := NewUserStore(db)
	expert := storetest.CreateUser(t, db, "expert", models.RoleExpert)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			flipped, err := users.SetVerifiedExpert(ctx, expert.ID)
			assert.NoError(t, err)
			if flipped {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, winners)

	reloaded, err := users.FindByID(ctx, expert.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.IsVerifiedExpert)
}

func TestUserAndTemplateLookups(t *testing.T) {
	db := storetest.NewDB(t)
	ctx := context.Background()
	users := NewUserStore(db)
	templates := NewTemplateStore(db)

	owner := storetest.CreateUser(t, db, "owner", models.RoleExpert)
	storetest.CreateUser(t, db, "plain", models.RoleUser)
	approved := storetest.CreateTemplate(t, db, owner.ID, models.TemplateApproved)
	storetest.CreateTemplate(t, db, owner.ID, models.TemplatePending)

	_, err := users.FindByID(ctx, 999)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	experts, err := users.ListByRole(ctx, models.RoleExpert)
	require.NoError(t, err)
	require.Len(t, experts, 1)
	assert.Equal(t, owner.ID, experts[0].ID)

	ids, err := templates.ListApprovedIDsByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{approved.ID}, ids)

	ok, err := templates.Exists(ctx, approved.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = templates.Exists(ctx, 999)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = templates.FindByID(ctx, 999)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
