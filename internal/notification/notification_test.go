package notification_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/frahmantamala/beacon/internal"
	"github.com/frahmantamala/beacon/internal/core/events"
	"github.com/frahmantamala/beacon/internal/notification"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

func TestNotification(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Notification Suite")
}

type fakeMailer struct {
	sent   []*mail.SGMailV3
	status int
	err    error
}

func (f *fakeMailer) SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	f.sent = append(f.sent, email)
	if f.err != nil {
		return nil, f.err
	}
	return &rest.Response{StatusCode: f.status}, nil
}

var _ = Describe("Dispatcher", func() {
	var (
		mailer *fakeMailer
		cfg    internal.EmailConfig
		event  *events.InvitationCreatedEvent
	)

	BeforeEach(func() {
		mailer = &fakeMailer{status: 202}
		cfg = internal.EmailConfig{
			SendGridAPIKey:  "SG.test",
			FromEmail:       "noreply@beacon.app",
			FromName:        "Beacon",
			FrontendBaseURL: "https://app.beacon.test/",
		}
		event = events.NewInvitationCreatedEvent("inv-1", "org-1", "Acme Corp", "grace@acme.io", "Grace",
			"EMPLOYEE", "tok-123", "Ada", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	})

	It("sends an invitation with the accept link", func() {
		d := notification.NewDispatcherWithMailer(mailer, cfg, zerolog.Nop())

		Expect(d.HandleInvitationCreated(context.Background(), event)).To(Succeed())

		Expect(mailer.sent).To(HaveLen(1))
		msg := mailer.sent[0]
		Expect(msg.Subject).To(ContainSubstring("Acme Corp"))
		Expect(msg.Personalizations[0].To[0].Address).To(Equal("grace@acme.io"))
		Expect(msg.Content).To(HaveLen(2))
		Expect(msg.Content[0].Value).To(ContainSubstring("https://app.beacon.test/accept-invite?token=tok-123"))
		Expect(msg.Content[1].Value).To(ContainSubstring("Ada"))
	})

	It("does nothing when SendGrid is not configured", func() {
		d := notification.NewDispatcher(internal.EmailConfig{}, zerolog.Nop())
		Expect(d.HandleInvitationCreated(context.Background(), event)).To(Succeed())
	})

	It("does nothing without a sender address", func() {
		cfg.FromEmail = ""
		d := notification.NewDispatcherWithMailer(mailer, cfg, zerolog.Nop())

		Expect(d.HandleInvitationCreated(context.Background(), event)).To(Succeed())
		Expect(mailer.sent).To(BeEmpty())
	})

	It("reports rejected sends", func() {
		mailer.status = 401
		d := notification.NewDispatcherWithMailer(mailer, cfg, zerolog.Nop())

		Expect(d.HandleInvitationCreated(context.Background(), event)).To(MatchError(ContainSubstring("status 401")))
	})

	It("wraps transport errors", func() {
		boom := errors.New("dial tcp: timeout")
		mailer.err = boom
		d := notification.NewDispatcherWithMailer(mailer, cfg, zerolog.Nop())

		err := d.HandleInvitationCreated(context.Background(), event)
		Expect(errors.Is(err, boom)).To(BeTrue())
	})

	It("rejects unrelated events", func() {
		d := notification.NewDispatcherWithMailer(mailer, cfg, zerolog.Nop())
		err := d.HandleInvitationCreated(context.Background(), events.NewInvitationAcceptedEvent("inv-1", "org-1", "u-1", "a@b.co"))
		Expect(err).To(HaveOccurred())
	})

	It("is triggered through the event bus", func() {
		bus := events.NewEventBus(zerolog.Nop())
		notification.NewDispatcherWithMailer(mailer, cfg, zerolog.Nop()).RegisterEventHandlers(bus)

		Expect(bus.Publish(context.Background(), event)).To(Succeed())
		bus.Wait()

		Expect(mailer.sent).To(HaveLen(1))
	})
})

var _ = Describe("AcceptURL", func() {
	It("joins base and escaped token", func() {
		Expect(notification.AcceptURL("https://app.test", "a b")).To(Equal("https://app.test/accept-invite?token=a+b"))
	})
})
