package database

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestPersistentModels_Migrate(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(PersistentModels()...))

	for _, tbl := range []string{"users", "posts", "quizzes", "quiz_questions", "quiz_attempts"} {
		require.True(t, db.Migrator().HasTable(tbl), "expected table %s", tbl)
	}
}
