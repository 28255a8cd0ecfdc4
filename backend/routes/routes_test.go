package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"promptmarket/backend/config"
	"promptmarket/backend/middleware"
	"promptmarket/backend/models"
	"promptmarket/backend/services"
	"promptmarket/backend/store"
	"promptmarket/backend/store/storetest"
	"promptmarket/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type stubScheduler struct {
	mu  sync.Mutex
	ids []uint
}

func (s *stubScheduler) Schedule(userID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = append(s.ids, userID)
	return true
}

func (s *stubScheduler) scheduled() []uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uint(nil), s.ids...)
}

type testEnv struct {
	app       *fiber.App
	db        *gorm.DB
	cfg       *config.Config
	scheduler *stubScheduler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := storetest.NewDB(t)
	cfg := &config.Config{JWTSecret: "test-secret"}
	logger := zap.NewNop()
	users := store.NewUserStore(db)
	sched := &stubScheduler{}

	svc := services.NewEngagementService(services.EngagementDeps{
		Templates: store.NewTemplateStore(db),
		Users:     users,
		Ratings:   store.NewRatingStore(db),
		Upvotes:   store.NewUpvoteStore(db),
		Comments:  store.NewCommentStore(db),
		Scheduler: sched,
	}, logger)

	app := fiber.New(fiber.Config{ErrorHandler: utils.ErrorHandler})
	app.Use(middleware.LoggingMiddleware(logger))
	app.Use(recover.New())
	SetupRoutes(app, cfg, svc, users, logger)
	return &testEnv{app: app, db: db, cfg: cfg, scheduler: sched}
}

func (e *testEnv) token(t *testing.T, u *models.User) string {
	t.Helper()
	tok, err := utils.GenerateJWTToken(u.ID, e.cfg)
	require.NoError(t, err)
	return "Bearer " + tok
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var result map[string]interface{}
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	}
	return resp.StatusCode, result
}

func data(t *testing.T, result map[string]interface{}) map[string]interface{} {
	t.Helper()
	d, ok := result["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %v", result)
	return d
}

func TestRatingsEndpoints(t *testing.T) {
	env := newTestEnv(t)
	owner := storetest.CreateUser(t, env.db, "owner", models.RoleExpert)
	rater := storetest.CreateUser(t, env.db, "rater", models.RoleUser)
	tpl := storetest.CreateTemplate(t, env.db, owner.ID, models.TemplateApproved)
	path := fmt.Sprintf("/api/templates/%d/ratings", tpl.ID)

	t.Run("anonymous summary of unrated template", func(t *testing.T) {
		status, result := env.do(t, "GET", path, "", nil)
		assert.Equal(t, fiber.StatusOK, status)
		d := data(t, result)
		assert.Equal(t, float64(0), d["totalRatings"])
		assert.Nil(t, d["averageScore"])
		assert.Nil(t, d["userRating"])
		assert.Len(t, d["distribution"], 4)
	})

	t.Run("submit requires auth", func(t *testing.T) {
		status, _ := env.do(t, "POST", path, "", map[string]string{"effectivenessRange": "50-80"})
		assert.Equal(t, fiber.StatusUnauthorized, status)
	})

	t.Run("invalid bucket is rejected", func(t *testing.T) {
		status, result := env.do(t, "POST", path, env.token(t, rater), map[string]string{"effectivenessRange": "42"})
		assert.Equal(t, fiber.StatusUnprocessableEntity, status)
		assert.Equal(t, "validation", result["code"])
		assert.Contains(t, result["details"], "effectivenessRange")
	})

	t.Run("submit then resubmit keeps one rating", func(t *testing.T) {
		status, result := env.do(t, "POST", path, env.token(t, rater), map[string]string{"effectivenessRange": "50-80"})
		require.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "50-80", data(t, result)["effectivenessRange"])

		status, _ = env.do(t, "POST", path, env.token(t, rater), map[string]string{"effectivenessRange": "80-100"})
		require.Equal(t, fiber.StatusOK, status)

		status, result = env.do(t, "GET", path, env.token(t, rater), nil)
		require.Equal(t, fiber.StatusOK, status)
		d := data(t, result)
		assert.Equal(t, float64(1), d["totalRatings"])
		assert.Equal(t, float64(90), d["averageScore"])
		assert.Equal(t, "80-100", d["userRating"])
		assert.Equal(t, []uint{owner.ID, owner.ID}, env.scheduler.scheduled())
	})

	t.Run("missing template", func(t *testing.T) {
		status, result := env.do(t, "GET", "/api/templates/99999/ratings", "", nil)
		assert.Equal(t, fiber.StatusNotFound, status)
		assert.Equal(t, "not_found", result["code"])
	})

	t.Run("bad id", func(t *testing.T) {
		status, _ := env.do(t, "GET", "/api/templates/abc/ratings", "", nil)
		assert.Equal(t, fiber.StatusBadRequest, status)
	})

	t.Run("bulk summaries", func(t *testing.T) {
		other := storetest.CreateTemplate(t, env.db, owner.ID, models.TemplateApproved)
		status, result := env.do(t, "GET", fmt.Sprintf("/api/templates/ratings?ids=%d,%d", tpl.ID, other.ID), "", nil)
		require.Equal(t, fiber.StatusOK, status)
		d := data(t, result)
		require.Len(t, d, 2)
		first := d[fmt.Sprint(tpl.ID)].(map[string]interface{})
		assert.Equal(t, float64(1), first["totalRatings"])
		second := d[fmt.Sprint(other.ID)].(map[string]interface{})
		assert.Equal(t, float64(0), second["totalRatings"])

		status, _ = env.do(t, "GET", "/api/templates/ratings?ids=1,x", "", nil)
		assert.Equal(t, fiber.StatusBadRequest, status)
	})
}

func TestUpvoteEndpoints(t *testing.T) {
	env := newTestEnv(t)
	owner := storetest.CreateUser(t, env.db, "owner", models.RoleUser)
	voter := storetest.CreateUser(t, env.db, "voter", models.RoleUser)
	tpl := storetest.CreateTemplate(t, env.db, owner.ID, models.TemplateApproved)
	base := fmt.Sprintf("/api/templates/%d/upvotes", tpl.ID)

	status, result := env.do(t, "POST", base+"/toggle", env.token(t, voter), nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(1), data(t, result)["count"])
	assert.Equal(t, true, data(t, result)["hasUpvoted"])

	status, result = env.do(t, "GET", base, "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(1), data(t, result)["count"])
	assert.Equal(t, false, data(t, result)["hasUpvoted"])

	status, result = env.do(t, "POST", base+"/toggle", env.token(t, voter), nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(0), data(t, result)["count"])
	assert.Equal(t, false, data(t, result)["hasUpvoted"])

	status, _ = env.do(t, "POST", base+"/toggle", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = env.do(t, "POST", "/api/templates/99999/upvotes/toggle", env.token(t, voter), nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestCommentEndpoints(t *testing.T) {
	env := newTestEnv(t)
	author := storetest.CreateUser(t, env.db, "author", models.RoleUser)
	stranger := storetest.CreateUser(t, env.db, "stranger", models.RoleUser)
	admin := storetest.CreateUser(t, env.db, "admin", models.RoleAdmin)
	tpl := storetest.CreateTemplate(t, env.db, author.ID, models.TemplateApproved)
	path := fmt.Sprintf("/api/templates/%d/comments", tpl.ID)

	status, result := env.do(t, "POST", path, env.token(t, author), map[string]interface{}{"content": "  root  "})
	require.Equal(t, fiber.StatusCreated, status)
	root := data(t, result)
	assert.Equal(t, "root", root["content"])
	assert.Equal(t, "user", root["role"])
	rootID := uint(root["id"].(float64))

	status, result = env.do(t, "POST", path, env.token(t, admin), map[string]interface{}{"content": "reply", "parentId": rootID})
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "admin", data(t, result)["role"])

	status, _ = env.do(t, "POST", path, env.token(t, author), map[string]interface{}{"content": "   "})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, _ = env.do(t, "POST", path, env.token(t, author), map[string]interface{}{"content": "x", "parentId": 99999})
	assert.Equal(t, fiber.StatusNotFound, status)

	t.Run("length is measured after trimming", func(t *testing.T) {
		padded := "  " + strings.Repeat("x", models.MaxCommentLength) + "\n"
		status, result := env.do(t, "POST", path, env.token(t, stranger), map[string]interface{}{"content": padded})
		require.Equal(t, fiber.StatusCreated, status)
		created := data(t, result)
		assert.Len(t, created["content"], models.MaxCommentLength)
		require.NoError(t, env.db.Delete(&models.Comment{}, uint(created["id"].(float64))).Error)

		status, result = env.do(t, "POST", path, env.token(t, stranger), map[string]interface{}{
			"content": strings.Repeat("x", models.MaxCommentLength+1),
		})
		assert.Equal(t, fiber.StatusUnprocessableEntity, status)
		assert.Equal(t, "validation", result["code"])
	})

	t.Run("tree is public", func(t *testing.T) {
		req := httptest.NewRequest("GET", path, nil)
		resp, err := env.app.Test(req, -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body struct {
			Data []*models.CommentNode `json:"data"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Len(t, body.Data, 1)
		assert.Equal(t, rootID, body.Data[0].ID)
		require.Len(t, body.Data[0].Replies, 1)
		assert.Equal(t, "reply", body.Data[0].Replies[0].Content)
	})

	t.Run("only author or admin may delete", func(t *testing.T) {
		del := fmt.Sprintf("/api/comments/%d", rootID)
		status, result := env.do(t, "DELETE", del, env.token(t, stranger), nil)
		assert.Equal(t, fiber.StatusForbidden, status)
		assert.Equal(t, "authorization", result["code"])

		status, result = env.do(t, "DELETE", del, env.token(t, author), nil)
		require.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, float64(2), data(t, result)["deleted"])

		status, _ = env.do(t, "DELETE", del, env.token(t, admin), nil)
		assert.Equal(t, fiber.StatusNotFound, status)
	})
}

func TestAdminExpertsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	admin := storetest.CreateUser(t, env.db, "admin", models.RoleAdmin)
	user := storetest.CreateUser(t, env.db, "plain", models.RoleUser)
	expert := storetest.CreateUser(t, env.db, "expert", models.RoleExpert)

	status, _ := env.do(t, "GET", "/api/admin/experts", env.token(t, user), nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = env.do(t, "GET", "/api/admin/experts", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, result := env.do(t, "GET", "/api/admin/experts", env.token(t, admin), nil)
	require.Equal(t, fiber.StatusOK, status)
	list, ok := result["data"].([]interface{})
	require.True(t, ok)
	require.Len(t, list, 1)
	assert.Equal(t, float64(expert.ID), list[0].(map[string]interface{})["id"])
}

func TestAuthRejectsBadTokens(t *testing.T) {
	env := newTestEnv(t)
	owner := storetest.CreateUser(t, env.db, "owner", models.RoleUser)
	tpl := storetest.CreateTemplate(t, env.db, owner.ID, models.TemplateApproved)
	path := fmt.Sprintf("/api/templates/%d/ratings", tpl.ID)

	status, _ := env.do(t, "GET", path, "Bearer not-a-jwt", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	ghost, err := utils.GenerateJWTToken(424242, env.cfg)
	require.NoError(t, err)
	status, _ = env.do(t, "POST", path, "Bearer "+ghost, map[string]string{"effectivenessRange": "0-10"})
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestRequestIDIsEchoed(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest("GET", "/api/templates/1/comments", nil)
	req.Header.Set(fiber.HeaderXRequestID, "req-123")
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "req-123", resp.Header.Get(fiber.HeaderXRequestID))
}

func TestUnknownRouteUsesErrorEnvelope(t *testing.T) {
	env := newTestEnv(t)
	status, result := env.do(t, "GET", "/api/nowhere", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, false, result["success"])
	assert.Equal(t, "Not Found", result["error"])
}
