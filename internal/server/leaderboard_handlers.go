// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetLeaderboard handles GET /api/leaderboard
// @Summary Points leaderboard
// @Description Returns the top point earners, highest first
// @Tags leaderboard
// @Produce json
// @Param limit query int false "Number of entries (max 100)"
// @Success 200 {array} service.LeaderboardEntry
// @Router /leaderboard [get]
func (s *Server) GetLeaderboard(c *fiber.Ctx) error {
	n := c.QueryInt("limit", 10)

	entries, err := s.leaderboardService.Top(c.UserContext(), n)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(entries)
}

// GetMyRank handles GET /api/leaderboard/me
// @Summary Own leaderboard rank
// @Description Returns the caller's 1-based rank, or 0 when unranked
// @Tags leaderboard
// @Produce json
// @Success 200 {object} object{rank=int}
// @Router /leaderboard/me [get]
// @Security BearerAuth
func (s *Server) GetMyRank(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	rank, err := s.leaderboardService.Rank(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"rank": rank})
}
