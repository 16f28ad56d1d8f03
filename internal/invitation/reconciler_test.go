package invitation_test

import (
	"context"
	"time"

	auditDatamodel "github.com/frahmantamala/beacon/internal/core/datamodel/audit"
	userDatamodel "github.com/frahmantamala/beacon/internal/core/datamodel/user"
	"github.com/frahmantamala/beacon/internal/invitation"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"
)

var _ = Describe("Reconciler", func() {
	var (
		ctx        context.Context
		f          *fixture
		reconciler *invitation.Reconciler
	)

	addMember := func(email, orgID string) *userDatamodel.User {
		u := &userDatamodel.User{
			ID:             uuid.New().String(),
			Email:          email,
			Name:           "Member",
			Role:           userDatamodel.RoleEmployee,
			OrganizationID: orgID,
			IsActive:       true,
		}
		Expect(f.users.Create(ctx, u)).To(Succeed())
		return u
	}

	BeforeEach(func() {
		ctx = context.Background()
		f = newFixture()
		reconciler = invitation.NewReconciler(f.invitations, f.users, f.audit, 0, zerolog.Nop())
	})

	It("accepts pending invitations whose invitee already joined", func() {
		inv := f.invite("grace@acme.io", userDatamodel.RoleEmployee, time.Now().Add(time.Hour))
		member := addMember("grace@acme.io", f.org.ID)

		fixed, err := reconciler.Reconcile(ctx)

		Expect(err).NotTo(HaveOccurred())
		Expect(fixed).To(Equal(1))
		Expect(f.status(inv.ID)).To(Equal(invitation.StatusAccepted))
		Expect(f.count(&auditDatamodel.AuditLog{}, "action = ? AND entity_id = ?", "user.joined", member.ID)).To(Equal(int64(1)))
	})

	It("does not duplicate an existing user.joined entry", func() {
		f.invite("grace@acme.io", userDatamodel.RoleEmployee, time.Now().Add(time.Hour))
		member := addMember("grace@acme.io", f.org.ID)
		Expect(f.db.Create(&auditDatamodel.AuditLog{
			OrganizationID: f.org.ID,
			Action:         "user.joined",
			EntityType:     "user",
			EntityID:       member.ID,
		}).Error).NotTo(HaveOccurred())

		_, err := reconciler.Reconcile(ctx)

		Expect(err).NotTo(HaveOccurred())
		Expect(f.count(&auditDatamodel.AuditLog{}, "action = ? AND entity_id = ?", "user.joined", member.ID)).To(Equal(int64(1)))
	})

	It("leaves invitations alone when the e-mail belongs to another tenant", func() {
		inv := f.invite("grace@acme.io", userDatamodel.RoleEmployee, time.Now().Add(time.Hour))
		addMember("grace@acme.io", "another-org")

		fixed, err := reconciler.Reconcile(ctx)

		Expect(err).NotTo(HaveOccurred())
		Expect(fixed).To(BeZero())
		Expect(f.status(inv.ID)).To(Equal(invitation.StatusPending))
	})

	It("never accepts an invitation that had expired before the member joined", func() {
		stale := f.invite("grace@acme.io", userDatamodel.RoleEmployee, time.Now().Add(-time.Hour))
		live := f.invite("grace@acme.io", userDatamodel.RoleEmployee, time.Now().Add(time.Hour))
		addMember("grace@acme.io", f.org.ID)

		fixed, err := reconciler.Reconcile(ctx)

		Expect(err).NotTo(HaveOccurred())
		Expect(fixed).To(Equal(1))
		Expect(f.status(live.ID)).To(Equal(invitation.StatusAccepted))
		Expect(f.status(stale.ID)).To(Equal(invitation.StatusPending))
	})

	It("leaves the expired invitation pending after a re-invite is accepted", func() {
		stale := f.invite("grace@acme.io", userDatamodel.RoleEmployee, time.Now().Add(-time.Hour))
		fresh, err := f.service().Create(ctx, f.admin, invitation.CreateInvitationDTO{Email: "grace@acme.io", Name: "Grace", Role: "EMPLOYEE"})
		Expect(err).NotTo(HaveOccurred())
		row, err := f.invitations.GetByID(ctx, fresh.ID)
		Expect(err).NotTo(HaveOccurred())
		_, err = f.service().Accept(ctx, invitation.AcceptDTO{Token: row.Token, Password: "Valid1!Pass"})
		Expect(err).NotTo(HaveOccurred())

		fixed, err := reconciler.Reconcile(ctx)

		Expect(err).NotTo(HaveOccurred())
		Expect(fixed).To(BeZero())
		Expect(f.status(stale.ID)).To(Equal(invitation.StatusPending))
		Expect(f.status(fresh.ID)).To(Equal(invitation.StatusAccepted))
	})

	It("is a no-op when nothing is stuck", func() {
		f.invite("grace@acme.io", userDatamodel.RoleEmployee, time.Now().Add(time.Hour))

		fixed, err := reconciler.Reconcile(ctx)

		Expect(err).NotTo(HaveOccurred())
		Expect(fixed).To(BeZero())
	})
})
