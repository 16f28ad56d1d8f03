package postgres_test

import (
	"context"
	"testing"

	"github.com/frahmantamala/beacon/internal/core/common/testdb"
	"github.com/frahmantamala/beacon/internal/identity"
	identityPostgres "github.com/frahmantamala/beacon/internal/identity/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestIdentityPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Identity Postgres Suite")
}

var _ = Describe("AccountRepository", func() {
	var (
		ctx  context.Context
		repo *identityPostgres.AccountRepository
	)

	BeforeEach(func() {
		ctx = context.Background()
		db, err := testdb.Open()
		Expect(err).NotTo(HaveOccurred())
		repo = identityPostgres.NewAccountRepository(db, bcrypt.MinCost)
	})

	It("creates an account and authenticates with the same password", func() {
		id, err := repo.CreateAccount(ctx, identity.AccountRequest{
			Email:         "jane@acme.io",
			Password:      "s3cretpass",
			EmailVerified: true,
			Metadata:      map[string]string{"organization_id": "org-1"},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(id).NotTo(BeEmpty())

		authID, err := repo.Authenticate(ctx, "jane@acme.io", "s3cretpass")
		Expect(err).NotTo(HaveOccurred())
		Expect(authID).To(Equal(id))

		account, err := repo.GetByEmail(ctx, "jane@acme.io")
		Expect(err).NotTo(HaveOccurred())
		Expect(account.EmailVerified).To(BeTrue())
		Expect(string(account.Metadata)).To(ContainSubstring("org-1"))
	})

	It("rejects a second account for the same email", func() {
		_, err := repo.CreateAccount(ctx, identity.AccountRequest{Email: "jane@acme.io", Password: "s3cretpass"})
		Expect(err).NotTo(HaveOccurred())

		_, err = repo.CreateAccount(ctx, identity.AccountRequest{Email: "jane@acme.io", Password: "otherpass"})
		Expect(err).To(MatchError(identity.ErrEmailExists))
	})

	It("rejects a wrong password and an unknown email", func() {
		_, err := repo.CreateAccount(ctx, identity.AccountRequest{Email: "jane@acme.io", Password: "s3cretpass"})
		Expect(err).NotTo(HaveOccurred())

		_, err = repo.Authenticate(ctx, "jane@acme.io", "wrongpass")
		Expect(err).To(MatchError(identity.ErrInvalidCredentials))

		_, err = repo.Authenticate(ctx, "nobody@acme.io", "s3cretpass")
		Expect(err).To(MatchError(identity.ErrInvalidCredentials))
	})

	It("deletes accounts and reports missing ones", func() {
		id, err := repo.CreateAccount(ctx, identity.AccountRequest{Email: "jane@acme.io", Password: "s3cretpass"})
		Expect(err).NotTo(HaveOccurred())

		Expect(repo.DeleteAccount(ctx, id)).To(Succeed())
		Expect(repo.DeleteAccount(ctx, id)).To(MatchError(identity.ErrAccountNotFound))

		account, err := repo.GetByEmail(ctx, "jane@acme.io")
		Expect(err).NotTo(HaveOccurred())
		Expect(account).To(BeNil())
	})
})
