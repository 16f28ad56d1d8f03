package billing_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/frahmantamala/beacon/internal"
	"github.com/frahmantamala/beacon/internal/billing"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
)

func TestBilling(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Billing Suite")
}

type fakeCustomers struct {
	params *stripe.CustomerParams
	err    error
}

func (f *fakeCustomers) New(params *stripe.CustomerParams) (*stripe.Customer, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	return &stripe.Customer{ID: "cus_123"}, nil
}

type update struct {
	customerID, status, tier string
}

type fakeUpdater struct {
	updates []update
	err     error
}

func (f *fakeUpdater) UpdateSubscriptionByCustomer(ctx context.Context, customerID, status, tier string) error {
	f.updates = append(f.updates, update{customerID, status, tier})
	return f.err
}

func priced(interval stripe.PriceRecurringInterval, metadata map[string]string) *stripe.Subscription {
	return &stripe.Subscription{
		Items: &stripe.SubscriptionItemList{
			Data: []*stripe.SubscriptionItem{{
				Price: &stripe.Price{
					Metadata:  metadata,
					Recurring: &stripe.PriceRecurring{Interval: interval},
				},
			}},
		},
	}
}

var _ = Describe("MapSubscriptionStatus", func() {
	DescribeTable("maps stripe states",
		func(in stripe.SubscriptionStatus, expected string) {
			Expect(billing.MapSubscriptionStatus(in)).To(Equal(expected))
		},
		Entry("active", stripe.SubscriptionStatusActive, "active"),
		Entry("trialing", stripe.SubscriptionStatusTrialing, "trialing"),
		Entry("past due", stripe.SubscriptionStatusPastDue, "past_due"),
		Entry("unpaid", stripe.SubscriptionStatusUnpaid, "past_due"),
		Entry("canceled", stripe.SubscriptionStatusCanceled, "canceled"),
		Entry("incomplete", stripe.SubscriptionStatusIncomplete, "inactive"),
		Entry("incomplete expired", stripe.SubscriptionStatusIncompleteExpired, "inactive"),
		Entry("unknown", stripe.SubscriptionStatus("something_new"), "inactive"),
	)
})

var _ = Describe("MapSubscriptionTier", func() {
	DescribeTable("reads the plan",
		func(sub *stripe.Subscription, expected string) {
			Expect(billing.MapSubscriptionTier(sub)).To(Equal(expected))
		},
		Entry("pro metadata wins", priced(stripe.PriceRecurringIntervalMonth, map[string]string{"tier": "pro"}), "pro"),
		Entry("monthly", priced(stripe.PriceRecurringIntervalMonth, nil), "monthly"),
		Entry("yearly", priced(stripe.PriceRecurringIntervalYear, nil), "yearly"),
		Entry("weekly falls back to free", priced(stripe.PriceRecurringIntervalWeek, nil), "free"),
		Entry("no items", &stripe.Subscription{}, "free"),
		Entry("nil subscription", nil, "free"),
	)
})

var _ = Describe("Client", func() {
	It("returns ErrNotConfigured without a secret key", func() {
		c := billing.NewClient(internal.BillingConfig{}, zerolog.Nop())
		_, err := c.CreateCustomer(context.Background(), "a@acme.io", "Acme", nil)
		Expect(errors.Is(err, billing.ErrNotConfigured)).To(BeTrue())
	})

	It("creates a customer carrying the metadata", func() {
		api := &fakeCustomers{}
		c := billing.NewClientWithAPI(api, zerolog.Nop())

		id, err := c.CreateCustomer(context.Background(), "a@acme.io", "Acme", map[string]string{"organization_id": "org-1"})

		Expect(err).NotTo(HaveOccurred())
		Expect(id).To(Equal("cus_123"))
		Expect(*api.params.Email).To(Equal("a@acme.io"))
		Expect(api.params.Metadata).To(HaveKeyWithValue("organization_id", "org-1"))
	})

	It("wraps stripe errors", func() {
		boom := errors.New("card network down")
		c := billing.NewClientWithAPI(&fakeCustomers{err: boom}, zerolog.Nop())
		_, err := c.CreateCustomer(context.Background(), "a@acme.io", "Acme", nil)
		Expect(errors.Is(err, boom)).To(BeTrue())
	})
})

var _ = Describe("WebhookHandler", func() {
	const secret = "whsec_test_secret"

	var (
		updater *fakeUpdater
		handler *billing.WebhookHandler
	)

	BeforeEach(func() {
		updater = &fakeUpdater{}
		lg := zerolog.Nop()
		handler = billing.NewWebhookHandler(secret, updater, &lg)
	})

	send := func(payload []byte, signSecret string) *httptest.ResponseRecorder {
		signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
			Payload:   payload,
			Secret:    signSecret,
			Timestamp: time.Now(),
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/webhook", bytes.NewReader(payload))
		req.Header.Set("Stripe-Signature", signed.Header)
		rec := httptest.NewRecorder()
		handler.HandleStripeWebhook(rec, req)
		return rec
	}

	subscriptionEvent := func(eventType, status string) []byte {
		return []byte(`{"id":"evt_1","object":"event","type":"` + eventType + `","data":{"object":{` +
			`"id":"sub_1","object":"subscription","customer":"cus_123","status":"` + status + `",` +
			`"items":{"object":"list","data":[{"id":"si_1","price":{"id":"price_1","recurring":{"interval":"year"}}}]}}}}`)
	}

	It("applies subscription updates", func() {
		rec := send(subscriptionEvent("customer.subscription.updated", "active"), secret)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(updater.updates).To(ConsistOf(update{"cus_123", "active", "yearly"}))
	})

	It("cancels to the free tier on deletion", func() {
		rec := send(subscriptionEvent("customer.subscription.deleted", "canceled"), secret)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(updater.updates).To(ConsistOf(update{"cus_123", "canceled", "free"}))
	})

	It("rejects a bad signature", func() {
		rec := send(subscriptionEvent("customer.subscription.updated", "active"), "whsec_wrong")

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(updater.updates).To(BeEmpty())
	})

	It("ignores unrelated events", func() {
		rec := send([]byte(`{"id":"evt_2","object":"event","type":"invoice.paid","data":{"object":{"id":"in_1"}}}`), secret)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(updater.updates).To(BeEmpty())
	})

	It("surfaces an unknown customer as not found", func() {
		updater.err = internal.ErrOrganizationNotFound
		rec := send(subscriptionEvent("customer.subscription.created", "trialing"), secret)

		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})
})
