package settings_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/frahmantamala/beacon/internal"
	"github.com/frahmantamala/beacon/internal/core/common/testdb"
	"github.com/frahmantamala/beacon/internal/settings"
	settingsPostgres "github.com/frahmantamala/beacon/internal/settings/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestSettings(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Settings Suite")
}

var _ = Describe("Settings Service", func() {
	var (
		ctx     context.Context
		service *settings.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		db, err := testdb.Open()
		Expect(err).NotTo(HaveOccurred())
		service = settings.NewService(settingsPostgres.NewSettingsRepository(db))
	})

	It("falls back to defaults when nothing is stored", func() {
		s, err := service.Get(ctx, "org-1", settings.CategoryReviewDefaults)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.IsDefault).To(BeTrue())

		var review settings.ReviewDefaults
		Expect(json.Unmarshal(s.Value, &review)).To(Succeed())
		Expect(review.CycleLengthDays).To(Equal(90))
		Expect(review.PeerReviewEnabled).To(BeFalse())
	})

	It("seeds every category and reads stored rows", func() {
		Expect(service.SeedDefaults(ctx, "org-1")).To(Succeed())

		for _, category := range settings.Categories {
			s, err := service.Get(ctx, "org-1", category)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.IsDefault).To(BeFalse())
		}

		var flags settings.FeatureFlags
		s, err := service.Get(ctx, "org-1", settings.CategoryFeatureFlags)
		Expect(err).NotTo(HaveOccurred())
		Expect(json.Unmarshal(s.Value, &flags)).To(Succeed())
		Expect(flags.CalendarSync).To(BeFalse())
		Expect(flags.OKRs).To(BeTrue())
	})

	It("keeps existing rows when seeding twice", func() {
		Expect(service.SeedDefaults(ctx, "org-1")).To(Succeed())
		Expect(service.SeedDefaults(ctx, "org-1")).To(Succeed())
	})

	It("rejects unknown categories", func() {
		_, err := service.Get(ctx, "org-1", "billing_secrets")
		Expect(errors.Is(err, internal.ErrUnknownSetting)).To(BeTrue())
	})
})
