package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"cardionote-be/internal/entity"
	"cardionote-be/internal/model"
	"cardionote-be/internal/repository/specification"
	"cardionote-be/internal/repository/unitofwork"
	"cardionote-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.UserRepository())
	assert.NotNil(t, uow.NoteRepository())
	assert.NotNil(t, uow.ECGResultRepository())

	sqlDB, _ := gormDB.DB()
	assert.NoError(t, sqlDB.Ping())

	t.Run("Check User Repository", func(t *testing.T) {
		count, err := uow.UserRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("User count: %d", count)
	})

	t.Run("Note CRUD round trip", func(t *testing.T) {
		ctx := context.Background()

		userId := uuid.New()
		user := &entity.User{
			Id:       userId,
			Email:    "test-integration-" + uuid.New().String() + "@example.com",
			FullName: "Integration Test User",
			Status:   entity.UserStatusActive,
		}
		require.NoError(t, uow.UserRepository().Create(ctx, user))

		note := &entity.Note{
			Id:     uuid.New(),
			Title:  "Integration Note",
			Tags:   []string{"integration", "test"},
			UserId: userId,
		}
		require.NoError(t, uow.NoteRepository().Create(ctx, note))

		found, err := uow.NoteRepository().FindOne(ctx,
			specification.ByID{ID: note.Id},
			specification.UserOwnedBy{UserID: userId},
		)
		require.NoError(t, err)
		assert.Equal(t, "Integration Note", found.Title)
		assert.Equal(t, []string{"integration", "test"}, found.Tags)

		require.NoError(t, uow.NoteRepository().UpdateFields(ctx, note.Id, map[string]interface{}{
			"title": "Renamed Note",
		}))

		renamed, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: note.Id})
		require.NoError(t, err)
		assert.Equal(t, "Renamed Note", renamed.Title)
		assert.True(t, renamed.UpdatedAt.After(renamed.CreatedAt) || renamed.UpdatedAt.Equal(renamed.CreatedAt))

		require.NoError(t, uow.NoteRepository().Delete(ctx, note.Id))
	})

	t.Run("Migration provisions every table", func(t *testing.T) {
		// Same model set cmd/migrate runs AutoMigrate over.
		models := []interface{}{
			&model.User{},
			&model.EmailVerificationToken{},
			&model.PasswordResetToken{},
			&model.Note{},
			&model.ECGResult{},
		}
		require.NoError(t, gormDB.AutoMigrate(models...))
		for _, m := range models {
			assert.True(t, gormDB.Migrator().HasTable(m))
		}
	})

	t.Run("ECG results ordered by last update", func(t *testing.T) {
		ctx := context.Background()

		count, err := uow.ECGResultRepository().Count(ctx)
		assert.NoError(t, err)
		t.Logf("ECG result count: %d", count)

		rows, err := uow.ECGResultRepository().FindAll(ctx, specification.UpdatedDesc())
		assert.NoError(t, err)
		for i := 1; i < len(rows); i++ {
			assert.False(t, rows[i].UpdatedAt.After(rows[i-1].UpdatedAt))
		}
	})
}
