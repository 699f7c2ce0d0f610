// Package handler contains the broker push handlers.
package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"warden/config"
	deliverycontext "warden/internal/delivery/context"
	"warden/internal/domain/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"google.golang.org/api/idtoken"
)

// PubSubMessage represents the structure of a Pub/Sub push message
type PubSubMessage struct {
	Message struct {
		Data        string            `json:"data"`
		Attributes  map[string]string `json:"attributes,omitempty"`
		MessageID   string            `json:"messageId"`
		PublishTime string            `json:"publishTime"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// PushAuthenticator checks that a push request really comes from the broker.
type PushAuthenticator func(req *http.Request) error

// PushHandler receives audit events pushed by the broker and writes them to the audit log.
type PushHandler struct {
	authenticate PushAuthenticator
	logger       *slog.Logger
}

// PushHandlerParams holds dependencies for the PushHandler
type PushHandlerParams struct {
	fx.In

	Config        *config.Config
	Logger        *slog.Logger
	Authenticator PushAuthenticator `optional:"true"`
}

// NewPushHandler creates a new Pub/Sub push handler. Google pushes are
// authenticated outside of development unless an authenticator is injected.
func NewPushHandler(params PushHandlerParams) *PushHandler {
	authenticate := params.Authenticator
	if authenticate == nil &&
		params.Config.PubSub != nil &&
		params.Config.PubSub.Provider == config.PubSubProviderGoogle &&
		params.Config.Env.Env != config.EnvDevelop {
		authenticate = verifyPubSubToken
	}

	return &PushHandler{
		authenticate: authenticate,
		logger:       params.Logger,
	}
}

// HandlePush handles incoming Pub/Sub push messages. Malformed messages are
// answered with 400 so the broker does not redeliver them forever.
func (h *PushHandler) HandlePush(c echo.Context) error {
	ctx := c.Request().Context()

	if h.authenticate != nil {
		if err := h.authenticate(c.Request()); err != nil {
			h.logger.Warn("[AuditSink] Invalid push token", slog.Any("error", err))

			return c.NoContent(http.StatusUnauthorized)
		}
	}

	var pushMsg PubSubMessage
	if err := c.Bind(&pushMsg); err != nil {
		h.logger.Error("[AuditSink] Failed to parse push message", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	data, err := base64.StdEncoding.DecodeString(pushMsg.Message.Data)
	if err != nil {
		h.logger.Error("[AuditSink] Failed to decode message data", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	var event service.AuditEvent
	if err := json.Unmarshal(data, &event); err != nil || event.Type == "" {
		h.logger.Error("[AuditSink] Failed to parse audit event",
			slog.String("message_id", pushMsg.Message.MessageID),
			slog.Any("error", err),
		)

		return c.NoContent(http.StatusBadRequest)
	}

	requestID := h.extractRequestID(ctx, &pushMsg, &event)
	reqLogger := h.logger.With(slog.String("request_id", requestID))

	attrs := []slog.Attr{
		slog.String("type", event.Type),
		slog.String("message_id", pushMsg.Message.MessageID),
		slog.Time("occurred_at", event.OccurredAt),
	}
	if event.AccountID != "" {
		attrs = append(attrs, slog.String("account_id", event.AccountID))
	}
	if event.ResourceID != "" {
		attrs = append(attrs, slog.String("resource_id", event.ResourceID))
	}
	if len(event.Attributes) > 0 {
		attrs = append(attrs, slog.Any("attributes", event.Attributes))
	}
	reqLogger.LogAttrs(ctx, slog.LevelInfo, "[AuditSink] Audit event", attrs...)

	return c.NoContent(http.StatusOK)
}

// extractRequestID prefers the id carried by the message, then the event, then the push request itself.
func (h *PushHandler) extractRequestID(ctx context.Context, pushMsg *PubSubMessage, event *service.AuditEvent) string {
	if requestID, ok := pushMsg.Message.Attributes["request_id"]; ok && requestID != "" {
		return requestID
	}

	if event.RequestID != "" {
		return event.RequestID
	}

	if requestID := deliverycontext.RequestIDFrom(ctx); requestID != "" {
		return requestID
	}

	return uuid.New().String()
}

// verifyPubSubToken verifies the OIDC token Google attaches to push requests.
func verifyPubSubToken(req *http.Request) error {
	authHeader := req.Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return errors.New("missing authorization header")
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return errors.New("invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, bearerPrefix)

	// The audience is the URL of this endpoint.
	scheme := "https"
	if req.TLS == nil {
		scheme = "http"
	}
	audience := scheme + "://" + req.Host + req.URL.Path

	payload, err := idtoken.Validate(req.Context(), token, audience)
	if err != nil {
		return errors.Wrap(err, "failed to validate token")
	}

	if payload.Issuer != "accounts.google.com" && payload.Issuer != "https://accounts.google.com" {
		return errors.Errorf("invalid issuer: %s", payload.Issuer)
	}

	if emailVerified, ok := payload.Claims["email_verified"].(bool); ok && !emailVerified {
		return errors.New("email not verified")
	}

	return nil
}
