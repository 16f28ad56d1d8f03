// Package notification sends the e-mails triggered by tenant events.
package notification

import (
	"context"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/frahmantamala/beacon/internal"
	"github.com/frahmantamala/beacon/internal/core/events"
	"github.com/frahmantamala/beacon/internal/telemetry"
	"github.com/rs/zerolog"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Mailer is the SendGrid client surface.
type Mailer interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type Dispatcher struct {
	mailer Mailer
	cfg    internal.EmailConfig
	logger zerolog.Logger
}

// NewDispatcher builds a SendGrid-backed dispatcher. Without an API key or
// sender address every send is logged and dropped.
func NewDispatcher(cfg internal.EmailConfig, logger zerolog.Logger) *Dispatcher {
	var mailer Mailer
	if cfg.SendGridAPIKey != "" {
		mailer = sendgrid.NewSendClient(cfg.SendGridAPIKey)
	}
	return NewDispatcherWithMailer(mailer, cfg, logger)
}

func NewDispatcherWithMailer(mailer Mailer, cfg internal.EmailConfig, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		mailer: mailer,
		cfg:    cfg,
		logger: logger.With().Str("component", "notification").Logger(),
	}
}

func (d *Dispatcher) configured() bool {
	return d.mailer != nil && d.cfg.FromEmail != ""
}

func (d *Dispatcher) RegisterEventHandlers(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeInvitationCreated, d.HandleInvitationCreated)
}

func (d *Dispatcher) HandleInvitationCreated(ctx context.Context, event events.Event) error {
	created, ok := event.(*events.InvitationCreatedEvent)
	if !ok {
		return fmt.Errorf("expected InvitationCreatedEvent, got %T", event)
	}

	if !d.configured() {
		d.logger.Warn().
			Str("invitation_id", created.InvitationID).
			Msg("email not configured, skipping invitation email")
		return nil
	}

	link := AcceptURL(d.cfg.FrontendBaseURL, created.Token)
	subject := fmt.Sprintf("You're invited to join %s on Beacon", created.OrganizationName)

	html, err := renderInvitation(created, link)
	if err != nil {
		return err
	}

	message := mail.NewSingleEmail(
		mail.NewEmail(d.cfg.FromName, d.cfg.FromEmail),
		subject,
		mail.NewEmail(created.Name, created.Email),
		plainInvitation(created, link),
		html,
	)

	resp, err := d.mailer.SendWithContext(ctx, message)
	if err != nil {
		d.countSend(ctx, "error")
		return fmt.Errorf("send invitation email: %w", err)
	}
	if resp.StatusCode >= 400 {
		d.countSend(ctx, "rejected")
		return fmt.Errorf("sendgrid error: status %d, body: %s", resp.StatusCode, resp.Body)
	}

	d.countSend(ctx, "sent")
	d.logger.Info().
		Str("invitation_id", created.InvitationID).
		Str("organization_id", created.OrganizationID).
		Msg("invitation email sent")
	return nil
}

func (d *Dispatcher) countSend(ctx context.Context, result string) {
	telemetry.GetMetrics().EmailsSentTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("template", "invitation"),
		attribute.String("result", result),
	))
}

// AcceptURL is the link the invitee follows to set a password.
func AcceptURL(frontendBaseURL, token string) string {
	return strings.TrimRight(frontendBaseURL, "/") + "/accept-invite?token=" + url.QueryEscape(token)
}

func plainInvitation(e *events.InvitationCreatedEvent, link string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", e.Name)
	if e.InviterName != "" {
		fmt.Fprintf(&b, "%s has invited you to join %s on Beacon.\n\n", e.InviterName, e.OrganizationName)
	} else {
		fmt.Fprintf(&b, "You have been invited to join %s on Beacon.\n\n", e.OrganizationName)
	}
	fmt.Fprintf(&b, "Accept the invitation: %s\n\n", link)
	fmt.Fprintf(&b, "This link expires on %s.\n", e.ExpiresAt.UTC().Format("January 2, 2006"))
	return b.String()
}

var invitationHTML = template.Must(template.New("invitation").Parse(`<html>
  <body>
    <p>Hi {{.Name}},</p>
    <p>{{if .InviterName}}<strong>{{.InviterName}}</strong> has invited you{{else}}You have been invited{{end}} to join <strong>{{.OrganizationName}}</strong> on Beacon.</p>
    <p><a href="{{.Link}}">Accept invitation</a></p>
    <p>This link expires on {{.Expires}}.</p>
  </body>
</html>`))

func renderInvitation(e *events.InvitationCreatedEvent, link string) (string, error) {
	var b strings.Builder
	err := invitationHTML.Execute(&b, map[string]string{
		"Name":             e.Name,
		"InviterName":      e.InviterName,
		"OrganizationName": e.OrganizationName,
		"Link":             link,
		"Expires":          e.ExpiresAt.UTC().Format("January 2, 2006"),
	})
	if err != nil {
		return "", fmt.Errorf("render invitation email: %w", err)
	}
	return b.String(), nil
}
