package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"atheneum/internal/models"
	"atheneum/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestQuiz(t *testing.T, env *testEnv, adminToken string) models.Quiz {
	t.Helper()

	resp := env.request(t, http.MethodPost, "/api/admin/quizzes", adminToken, map[string]any{
		"title":       "Memory Techniques",
		"description": "Covers the spaced repetition post",
		"questions": []map[string]any{
			{"prompt": "What beats cramming?", "options": []string{"More cramming", "Spaced repetition"}, "correct_option": 1},
			{"prompt": "Who charted forgetting curves?", "options": []string{"Ebbinghaus", "Pavlov"}, "correct_option": 0},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var quiz models.Quiz
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&quiz))
	_ = resp.Body.Close()
	require.NotZero(t, quiz.ID)
	return quiz
}

func TestQuizLifecycle(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.createUser(t, "quizadmin", true)
	student, studentToken := env.createUser(t, "student", false)

	quiz := createTestQuiz(t, env, adminToken)

	t.Run("non-admin cannot create quizzes", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, "/api/admin/quizzes", studentToken, map[string]any{
			"title": "Rogue quiz",
		})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("questions never expose the answer key", func(t *testing.T) {
		resp := env.request(t, http.MethodGet, fmt.Sprintf("/api/quizzes/%d", quiz.ID), "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var raw map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
		_ = resp.Body.Close()

		questions, ok := raw["questions"].([]any)
		require.True(t, ok)
		require.Len(t, questions, 2)
		for _, q := range questions {
			_, leaked := q.(map[string]any)["correct_option"]
			assert.False(t, leaked)
		}
	})

	t.Run("perfect attempt passes and credits points", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, fmt.Sprintf("/api/quizzes/%d/attempts", quiz.ID), studentToken, map[string]any{
			"answers": []int{1, 0},
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var attempt models.QuizAttempt
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&attempt))
		_ = resp.Body.Close()

		assert.Equal(t, 2, attempt.Score)
		assert.Equal(t, 100, attempt.Percent)
		assert.True(t, attempt.Passed)

		var refreshed models.User
		require.NoError(t, env.db.First(&refreshed, student.ID).Error)
		assert.Equal(t, 10, refreshed.Points)
	})

	t.Run("failing attempt credits nothing", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, fmt.Sprintf("/api/quizzes/%d/attempts", quiz.ID), studentToken, map[string]any{
			"answers": []int{0, 1},
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var attempt models.QuizAttempt
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&attempt))
		_ = resp.Body.Close()

		assert.Equal(t, 0, attempt.Score)
		assert.False(t, attempt.Passed)

		var refreshed models.User
		require.NoError(t, env.db.First(&refreshed, student.ID).Error)
		assert.Equal(t, 10, refreshed.Points, "points unchanged after a fail")
	})

	t.Run("answer count must match question count", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, fmt.Sprintf("/api/quizzes/%d/attempts", quiz.ID), studentToken, map[string]any{
			"answers": []int{1},
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, models.CodeValidation, decodeErrorCode(t, resp))
	})

	t.Run("attempt history", func(t *testing.T) {
		resp := env.request(t, http.MethodGet, "/api/quizzes/attempts/me", studentToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var attempts []models.QuizAttempt
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&attempts))
		_ = resp.Body.Close()
		assert.Len(t, attempts, 2)
	})
}

func TestLeaderboardEndpoints(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.createUser(t, "boardadmin", true)
	_, aceToken := env.createUser(t, "ace", false)
	_, dncToken := env.createUser(t, "idle", false)

	quiz := createTestQuiz(t, env, adminToken)

	resp := env.request(t, http.MethodPost, fmt.Sprintf("/api/quizzes/%d/attempts", quiz.ID), aceToken, map[string]any{
		"answers": []int{1, 0},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	resp = env.request(t, http.MethodGet, "/api/leaderboard", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var entries []service.LeaderboardEntry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	_ = resp.Body.Close()

	require.Len(t, entries, 1)
	assert.Equal(t, "ace", entries[0].Username)
	assert.Equal(t, 10, entries[0].Points)
	assert.Equal(t, 1, entries[0].Rank)

	resp = env.request(t, http.MethodGet, "/api/leaderboard/me", aceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rankBody struct {
		Rank int `json:"rank"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rankBody))
	_ = resp.Body.Close()
	assert.Equal(t, 1, rankBody.Rank)

	// A user who never attempted anything is unranked.
	resp = env.request(t, http.MethodGet, "/api/leaderboard/me", dncToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rankBody))
	_ = resp.Body.Close()
	assert.Equal(t, 0, rankBody.Rank)
}
