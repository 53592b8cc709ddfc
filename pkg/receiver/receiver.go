// Package receiver serves inbound HTTP calls for webhook automations.
package receiver

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/xeipuuv/gojsonschema"

	"github.com/givehub/automata/pkg/models"
	"github.com/givehub/automata/pkg/persistence"
	"github.com/givehub/automata/pkg/scheduler"
)

// PathPrefix is the route prefix webhook endpoints hang off.
const PathPrefix = "/hooks"

// Receiver exposes active webhook automations as HTTP endpoints. Endpoints
// are resolved from the store on every request, so activating or editing an
// automation takes effect without a restart.
type Receiver struct {
	store     persistence.AutomationStore
	scheduler *scheduler.Scheduler
	logger    *slog.Logger
}

// NewReceiver creates a webhook receiver.
func NewReceiver(store persistence.AutomationStore, sched *scheduler.Scheduler, logger *slog.Logger) *Receiver {
	return &Receiver{
		store:     store,
		scheduler: sched,
		logger:    logger.With("module", "receiver"),
	}
}

// App builds the HTTP application.
func (r *Receiver) App() *fiber.App {
	app := fiber.New()
	app.Use(recoverer.New())
	app.Use(cors.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.All(PathPrefix+"/*", r.handleHook)

	return app
}

// Start runs the HTTP server until it fails or is shut down.
func (r *Receiver) Start(app *fiber.App, port int) error {
	addr := fmt.Sprintf(":%d", port)
	r.logger.Info("Starting webhook receiver", "addr", addr)

	return app.Listen(addr)
}

func (r *Receiver) handleHook(c fiber.Ctx) error {
	endpoint := strings.TrimPrefix(c.Path(), PathPrefix)
	if endpoint == "" || endpoint == "/" {
		return notFound(c, "missing webhook endpoint in path")
	}

	automation, webhook, err := r.resolve(c, endpoint)
	if err != nil {
		return internalError(c, err)
	}

	if automation == nil {
		return notFound(c, "no webhook automation registered for this endpoint")
	}

	payload, err := r.parsePayload(c)
	if err != nil {
		return badRequest(c, "invalid JSON in request body")
	}

	if len(webhook.Schema) > 0 {
		if err := validateSchema(payload, webhook.Schema); err != nil {
			r.logger.Warn("Webhook payload rejected by schema",
				"automation_id", automation.ID,
				"endpoint", endpoint,
				"error", err)

			return badRequest(c, "schema validation failed: "+err.Error())
		}
	}

	entry, execErr := r.scheduler.ExecuteAutomation(c.Context(), automation, payload)
	if execErr != nil {
		r.logger.Error("Webhook automation failed",
			"automation_id", automation.ID,
			"endpoint", endpoint,
			"error", execErr)

		return internalError(c, execErr)
	}

	if entry == nil {
		// The run completed but could not be recorded; still acknowledge.
		return c.JSON(fiber.Map{
			"status":        string(models.RunStatusSuccess),
			"automation_id": automation.ID,
		})
	}

	return c.JSON(fiber.Map{
		"status":        string(entry.Status),
		"automation_id": automation.ID,
		"run_id":        entry.ID,
	})
}

// resolve finds the active webhook automation bound to endpoint and method.
func (r *Receiver) resolve(c fiber.Ctx, endpoint string) (*models.Automation, *models.WebhookConfig, error) {
	automations, err := r.store.LoadActive(c.Context(), models.AutomationTypeWebhook)
	if err != nil {
		return nil, nil, err
	}

	for _, automation := range automations {
		webhook := automation.Config.Webhook
		if webhook == nil {
			continue
		}

		if webhook.Endpoint == endpoint && strings.EqualFold(webhook.Method, c.Method()) {
			return automation, webhook, nil
		}
	}

	return nil, nil, nil
}

func (r *Receiver) parsePayload(c fiber.Ctx) (map[string]any, error) {
	body := c.Body()
	if len(body) == 0 {
		return map[string]any{}, nil
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}

	return payload, nil
}

func validateSchema(payload map[string]any, schema map[string]any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewGoLoader(payload),
	)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}

		return fmt.Errorf("payload does not match schema: %s", strings.Join(details, "; "))
	}

	return nil
}
