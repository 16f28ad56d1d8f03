package postgres_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/frahmantamala/beacon/internal"
	"github.com/frahmantamala/beacon/internal/audit"
	auditPostgres "github.com/frahmantamala/beacon/internal/audit/postgres"
	"github.com/frahmantamala/beacon/internal/core/common/testdb"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestAuditPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Audit Postgres Suite")
}

var _ = Describe("AuditRepository", func() {
	var (
		ctx  context.Context
		repo *auditPostgres.AuditRepository
	)

	BeforeEach(func() {
		ctx = context.Background()
		db, err := testdb.Open()
		Expect(err).NotTo(HaveOccurred())
		repo = auditPostgres.NewAuditRepository(db)
	})

	It("records entries with actor and JSON details", func() {
		err := repo.Record(ctx, audit.Entry{
			OrganizationID: "org-1",
			ActorID:        "user-1",
			Action:         audit.ActionUserJoined,
			EntityType:     "user",
			EntityID:       "user-1",
			Details:        map[string]interface{}{"invited_by": "admin-1", "invitation_id": "inv-1"},
		})
		Expect(err).NotTo(HaveOccurred())

		rows, err := repo.ListByOrganization(ctx, "org-1", 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(1))
		Expect(*rows[0].ActorID).To(Equal("user-1"))

		var details map[string]string
		Expect(json.Unmarshal(rows[0].Details, &details)).To(Succeed())
		Expect(details).To(HaveKeyWithValue("invited_by", "admin-1"))

		exists, err := repo.Exists(ctx, "org-1", audit.ActionUserJoined, "user-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(exists).To(BeTrue())
	})

	It("takes the actor and organization from the request context", func() {
		reqCtx := internal.ContextWithOrganizationID(internal.ContextWithUserID(ctx, "user-9"), "org-9")

		Expect(repo.Record(reqCtx, audit.Entry{
			Action:     audit.ActionInvitationCanceled,
			EntityType: "invitation",
			EntityID:   "inv-9",
		})).To(Succeed())

		rows, err := repo.ListByOrganization(ctx, "org-9", 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(1))
		Expect(*rows[0].ActorID).To(Equal("user-9"))
	})

	It("leaves actor empty for system entries", func() {
		Expect(repo.Record(ctx, audit.Entry{
			OrganizationID: "org-1",
			Action:         audit.ActionInvitationCanceled,
			EntityType:     "invitation",
			EntityID:       "inv-1",
		})).To(Succeed())

		rows, err := repo.ListByOrganization(ctx, "org-1", 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows[0].ActorID).To(BeNil())
	})
})
