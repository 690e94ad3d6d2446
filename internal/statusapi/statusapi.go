/**
 * @description
 * The status surface: the only HTTP endpoints this repository owns (§13). A
 * thin read-only view over the Orchestrator's health and aggregated
 * sync_state, not the external query API (out of scope).
 *
 * Grounded on the teacher's cmd/api/main.go fiber.New() setup (recover +
 * logger middleware, StrictRouting/CaseSensitive config) and its
 * api.Get("/health", ...) handler shape, narrowed to exactly the two routes
 * SPEC_FULL calls for.
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2, github.com/gofiber/fiber/v2/middleware/{logger,recover}
 */

package statusapi

import (
	"github.com/bankai-project/indexer/internal/orchestrator"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// New builds the status fiber.App backed by orch.
func New(orch *orchestrator.Orchestrator) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:       "indexer-status",
		StrictRouting: true,
		CaseSensitive: true,
	})

	app.Use(recover.New())
	app.Use(logger.New())

	// GET /healthz reports 200 once InitialSync has completed at least once,
	// 503 before (§13).
	app.Get("/healthz", func(c *fiber.Ctx) error {
		if !orch.Ready() {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"ready": false})
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ready": true})
	})

	// GET /status dumps the Orchestrator's aggregated per-entity status (§13).
	app.Get("/status", func(c *fiber.Ctx) error {
		report, err := orch.Status(c.Context())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusOK).JSON(report)
	})

	return app
}
