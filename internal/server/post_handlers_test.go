package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"devconnect/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreatePostHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]string
		mockSetup      func(m *testMocks)
		expectedStatus int
	}{
		{
			name: "Success",
			body: map[string]string{"text": "Hello world"},
			mockSetup: func(m *testMocks) {
				m.users.On("GetByID", mock.Anything, uint(1)).
					Return(&models.User{ID: 1, Name: "Jane"}, nil)
				m.posts.On("Create", mock.Anything, mock.Anything).Return(nil).
					Run(func(args mock.Arguments) {
						args.Get(1).(*models.Post).ID = 1
					})
				m.posts.On("GetByID", mock.Anything, uint(1)).
					Return(&models.Post{ID: 1, UserID: 1, Text: "Hello world", Name: "Jane"}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Missing Text",
			body:           map[string]string{"text": ""},
			mockSetup:      func(m *testMocks) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mocks := newTestServer()
			app := fiber.New()
			app.Post("/api/posts", asUser(1), s.CreatePost)
			tt.mockSetup(mocks)

			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/api/posts", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestGetPostsHandler(t *testing.T) {
	s, mocks := newTestServer()
	app := fiber.New()
	app.Get("/api/posts", asUser(1), s.GetPosts)

	mocks.posts.On("List", mock.Anything).Return([]*models.Post{
		{ID: 2, Text: "newer"},
		{ID: 1, Text: "older"},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body, 2)
	assert.Equal(t, "newer", body[0]["text"])
}

func TestDeletePostHandler(t *testing.T) {
	t.Run("author deletes", func(t *testing.T) {
		s, mocks := newTestServer()
		app := fiber.New()
		app.Delete("/api/posts/:id", asUser(1), s.DeletePost)

		mocks.posts.On("GetByID", mock.Anything, uint(5)).Return(&models.Post{ID: 5, UserID: 1}, nil)
		mocks.posts.On("Delete", mock.Anything, uint(5)).Return(nil)

		req := httptest.NewRequest(http.MethodDelete, "/api/posts/5", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("non-author gets 401", func(t *testing.T) {
		s, mocks := newTestServer()
		app := fiber.New()
		app.Delete("/api/posts/:id", asUser(2), s.DeletePost)

		mocks.posts.On("GetByID", mock.Anything, uint(5)).Return(&models.Post{ID: 5, UserID: 1}, nil)

		req := httptest.NewRequest(http.MethodDelete, "/api/posts/5", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("malformed id gets 404", func(t *testing.T) {
		s, _ := newTestServer()
		app := fiber.New()
		app.Delete("/api/posts/:id", asUser(1), s.DeletePost)

		req := httptest.NewRequest(http.MethodDelete, "/api/posts/oops", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestLikeHandlers(t *testing.T) {
	t.Run("like returns the like list", func(t *testing.T) {
		s, mocks := newTestServer()
		app := fiber.New()
		app.Put("/api/posts/like/:id", asUser(2), s.LikePost)

		mocks.posts.On("GetByID", mock.Anything, uint(3)).
			Return(&models.Post{ID: 3, Likes: []models.Like{{ID: 1, UserID: 2}}}, nil)
		mocks.posts.On("Like", mock.Anything, uint(3), uint(2)).Return(true, nil)

		req := httptest.NewRequest(http.MethodPut, "/api/posts/like/3", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var likes []map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&likes))
		assert.Len(t, likes, 1)
	})

	t.Run("double like gets 400", func(t *testing.T) {
		s, mocks := newTestServer()
		app := fiber.New()
		app.Put("/api/posts/like/:id", asUser(2), s.LikePost)

		mocks.posts.On("GetByID", mock.Anything, uint(3)).Return(&models.Post{ID: 3}, nil)
		mocks.posts.On("Like", mock.Anything, uint(3), uint(2)).Return(false, nil)

		req := httptest.NewRequest(http.MethodPut, "/api/posts/like/3", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		body := decodeErrors(t, resp)
		assert.Equal(t, "Post already liked", body.Errors[0].Msg)
	})

	t.Run("unlike without a like gets 400", func(t *testing.T) {
		s, mocks := newTestServer()
		app := fiber.New()
		app.Put("/api/posts/unlike/:id", asUser(2), s.UnlikePost)

		mocks.posts.On("GetByID", mock.Anything, uint(3)).Return(&models.Post{ID: 3}, nil)
		mocks.posts.On("Unlike", mock.Anything, uint(3), uint(2)).Return(false, nil)

		req := httptest.NewRequest(http.MethodPut, "/api/posts/unlike/3", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		body := decodeErrors(t, resp)
		assert.Equal(t, "Post has not been liked", body.Errors[0].Msg)
	})

	t.Run("liking a missing post gets 404", func(t *testing.T) {
		s, mocks := newTestServer()
		app := fiber.New()
		app.Put("/api/posts/like/:id", asUser(2), s.LikePost)

		mocks.posts.On("GetByID", mock.Anything, uint(404)).Return(nil, gorm.ErrRecordNotFound)

		req := httptest.NewRequest(http.MethodPut, "/api/posts/like/404", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestCommentHandlers(t *testing.T) {
	t.Run("add comment returns the comment list", func(t *testing.T) {
		s, mocks := newTestServer()
		app := fiber.New()
		app.Post("/api/posts/comment/:id", asUser(2), s.AddComment)

		mocks.posts.On("GetByID", mock.Anything, uint(3)).
			Return(&models.Post{ID: 3, Comments: []models.Comment{{ID: 1, Text: "great"}}}, nil)
		mocks.users.On("GetByID", mock.Anything, uint(2)).
			Return(&models.User{ID: 2, Name: "Sam"}, nil)
		mocks.posts.On("AddComment", mock.Anything, mock.Anything).Return(nil)

		body, _ := json.Marshal(map[string]string{"text": "great"})
		req := httptest.NewRequest(http.MethodPost, "/api/posts/comment/3", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var comments []map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&comments))
		assert.Len(t, comments, 1)
	})

	t.Run("delete comment by someone else gets 401", func(t *testing.T) {
		s, mocks := newTestServer()
		app := fiber.New()
		app.Delete("/api/posts/comment/:id/:comment_id", asUser(5), s.DeleteComment)

		mocks.posts.On("GetByID", mock.Anything, uint(3)).Return(&models.Post{ID: 3}, nil)
		mocks.posts.On("GetComment", mock.Anything, uint(3), uint(9)).
			Return(&models.Comment{ID: 9, PostID: 3, UserID: 2}, nil)

		req := httptest.NewRequest(http.MethodDelete, "/api/posts/comment/3/9", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("delete unknown comment gets 404", func(t *testing.T) {
		s, mocks := newTestServer()
		app := fiber.New()
		app.Delete("/api/posts/comment/:id/:comment_id", asUser(2), s.DeleteComment)

		mocks.posts.On("GetByID", mock.Anything, uint(3)).Return(&models.Post{ID: 3}, nil)
		mocks.posts.On("GetComment", mock.Anything, uint(3), uint(9)).
			Return(nil, gorm.ErrRecordNotFound)

		req := httptest.NewRequest(http.MethodDelete, "/api/posts/comment/3/9", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
