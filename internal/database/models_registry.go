package database

import "atheneum/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Post{},
		&models.Quiz{},
		&models.QuizQuestion{},
		&models.QuizAttempt{},
	}
}
