package repository

import (
	"context"
	"testing"

	"devconnect/internal/database"
	"devconnect/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, name, email string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: email, Password: "hash"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestUserRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	t.Run("duplicate email is a duplicated key", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, &models.User{
			Name: "Jane", Email: "jane@example.com", Password: "hash"}))

		err := repo.Create(ctx, &models.User{
			Name: "Other Jane", Email: "jane@example.com", Password: "hash"})
		assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	})

	t.Run("GetByEmail returns nil for unknown address", func(t *testing.T) {
		user, err := repo.GetByEmail(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.Nil(t, user)
	})
}

func TestProfileRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("one profile per user", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewProfileRepository(db)
		user := createUser(t, db, "Jane", "jane@example.com")

		require.NoError(t, repo.Create(ctx, &models.Profile{UserID: user.ID, Status: "Developer"}))
		err := repo.Create(ctx, &models.Profile{UserID: user.ID, Status: "Manager"})
		assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	})

	t.Run("experience list is newest-first", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewProfileRepository(db)
		user := createUser(t, db, "Jane", "jane@example.com")

		profile := &models.Profile{UserID: user.ID, Status: "Developer"}
		require.NoError(t, repo.Create(ctx, profile))

		first := &models.Experience{ProfileID: profile.ID, Title: "Junior", Company: "Acme"}
		second := &models.Experience{ProfileID: profile.ID, Title: "Senior", Company: "Acme"}
		require.NoError(t, repo.AddExperience(ctx, first))
		require.NoError(t, repo.AddExperience(ctx, second))

		got, err := repo.GetByUserID(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, got.Experience, 2)
		assert.Equal(t, "Senior", got.Experience[0].Title)
		assert.Equal(t, "Junior", got.Experience[1].Title)
	})

	t.Run("RemoveExperience reports whether a row went away", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewProfileRepository(db)
		user := createUser(t, db, "Jane", "jane@example.com")

		profile := &models.Profile{UserID: user.ID, Status: "Developer"}
		require.NoError(t, repo.Create(ctx, profile))
		exp := &models.Experience{ProfileID: profile.ID, Title: "Junior", Company: "Acme"}
		require.NoError(t, repo.AddExperience(ctx, exp))

		removed, err := repo.RemoveExperience(ctx, profile.ID, exp.ID)
		require.NoError(t, err)
		assert.True(t, removed)

		removed, err = repo.RemoveExperience(ctx, profile.ID, exp.ID)
		require.NoError(t, err)
		assert.False(t, removed)
	})

	t.Run("entries of another profile are out of reach", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewProfileRepository(db)
		jane := createUser(t, db, "Jane", "jane@example.com")
		sam := createUser(t, db, "Sam", "sam@example.com")

		janeProfile := &models.Profile{UserID: jane.ID, Status: "Developer"}
		samProfile := &models.Profile{UserID: sam.ID, Status: "Developer"}
		require.NoError(t, repo.Create(ctx, janeProfile))
		require.NoError(t, repo.Create(ctx, samProfile))

		exp := &models.Experience{ProfileID: janeProfile.ID, Title: "Junior", Company: "Acme"}
		require.NoError(t, repo.AddExperience(ctx, exp))

		removed, err := repo.RemoveExperience(ctx, samProfile.ID, exp.ID)
		require.NoError(t, err)
		assert.False(t, removed)
	})

	t.Run("DeleteAccount removes the whole graph", func(t *testing.T) {
		db := setupTestDB(t)
		profileRepo := NewProfileRepository(db)
		postRepo := NewPostRepository(db)
		jane := createUser(t, db, "Jane", "jane@example.com")
		sam := createUser(t, db, "Sam", "sam@example.com")

		profile := &models.Profile{UserID: jane.ID, Status: "Developer"}
		require.NoError(t, profileRepo.Create(ctx, profile))
		require.NoError(t, profileRepo.AddExperience(ctx, &models.Experience{
			ProfileID: profile.ID, Title: "Junior", Company: "Acme"}))

		post := &models.Post{UserID: jane.ID, Text: "hello", Name: jane.Name}
		require.NoError(t, postRepo.Create(ctx, post))
		_, err := postRepo.Like(ctx, post.ID, sam.ID)
		require.NoError(t, err)
		require.NoError(t, postRepo.AddComment(ctx, &models.Comment{
			PostID: post.ID, UserID: sam.ID, Text: "hi", Name: sam.Name}))

		require.NoError(t, profileRepo.DeleteAccount(ctx, jane.ID))

		for table, model := range map[string]any{
			"users":       &models.User{},
			"profiles":    &models.Profile{},
			"experiences": &models.Experience{},
			"posts":       &models.Post{},
			"likes":       &models.Like{},
			"comments":    &models.Comment{},
		} {
			var count int64
			require.NoError(t, db.Unscoped().Model(model).Count(&count).Error, table)
			if table == "users" {
				assert.EqualValues(t, 1, count, "only the other user remains")
			} else {
				assert.EqualValues(t, 0, count, table)
			}
		}
	})
}

func TestPostRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("second like is swallowed by the unique index", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewPostRepository(db)
		user := createUser(t, db, "Jane", "jane@example.com")

		post := &models.Post{UserID: user.ID, Text: "hello"}
		require.NoError(t, repo.Create(ctx, post))

		inserted, err := repo.Like(ctx, post.ID, user.ID)
		require.NoError(t, err)
		assert.True(t, inserted)

		inserted, err = repo.Like(ctx, post.ID, user.ID)
		require.NoError(t, err)
		assert.False(t, inserted)
	})

	t.Run("unlike without a like reports false", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewPostRepository(db)
		user := createUser(t, db, "Jane", "jane@example.com")

		post := &models.Post{UserID: user.ID, Text: "hello"}
		require.NoError(t, repo.Create(ctx, post))

		removed, err := repo.Unlike(ctx, post.ID, user.ID)
		require.NoError(t, err)
		assert.False(t, removed)
	})

	t.Run("comments come back newest-first", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewPostRepository(db)
		user := createUser(t, db, "Jane", "jane@example.com")

		post := &models.Post{UserID: user.ID, Text: "hello"}
		require.NoError(t, repo.Create(ctx, post))
		require.NoError(t, repo.AddComment(ctx, &models.Comment{
			PostID: post.ID, UserID: user.ID, Text: "first"}))
		require.NoError(t, repo.AddComment(ctx, &models.Comment{
			PostID: post.ID, UserID: user.ID, Text: "second"}))

		got, err := repo.GetByID(ctx, post.ID)
		require.NoError(t, err)
		require.Len(t, got.Comments, 2)
		assert.Equal(t, "second", got.Comments[0].Text)
	})

	t.Run("RemoveComment scopes to the post", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewPostRepository(db)
		user := createUser(t, db, "Jane", "jane@example.com")

		postA := &models.Post{UserID: user.ID, Text: "a"}
		postB := &models.Post{UserID: user.ID, Text: "b"}
		require.NoError(t, repo.Create(ctx, postA))
		require.NoError(t, repo.Create(ctx, postB))

		comment := &models.Comment{PostID: postA.ID, UserID: user.ID, Text: "on a"}
		require.NoError(t, repo.AddComment(ctx, comment))

		removed, err := repo.RemoveComment(ctx, postB.ID, comment.ID)
		require.NoError(t, err)
		assert.False(t, removed)

		removed, err = repo.RemoveComment(ctx, postA.ID, comment.ID)
		require.NoError(t, err)
		assert.True(t, removed)
	})
}
