package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/frahmantamala/beacon/api"
	auditPostgres "github.com/frahmantamala/beacon/internal/audit/postgres"
	"github.com/frahmantamala/beacon/internal/auth"
	authPostgres "github.com/frahmantamala/beacon/internal/auth/postgres"
	"github.com/frahmantamala/beacon/internal/billing"
	"github.com/frahmantamala/beacon/internal/core/common/testdb"
	invitationDatamodel "github.com/frahmantamala/beacon/internal/core/datamodel/invitation"
	"github.com/frahmantamala/beacon/internal/core/events"
	"github.com/frahmantamala/beacon/internal/core/saga"
	identityPostgres "github.com/frahmantamala/beacon/internal/identity/postgres"
	"github.com/frahmantamala/beacon/internal/invitation"
	invitationPostgres "github.com/frahmantamala/beacon/internal/invitation/postgres"
	"github.com/frahmantamala/beacon/internal/organization"
	organizationPostgres "github.com/frahmantamala/beacon/internal/organization/postgres"
	"github.com/frahmantamala/beacon/internal/settings"
	settingsPostgres "github.com/frahmantamala/beacon/internal/settings/postgres"
	"github.com/frahmantamala/beacon/internal/transport/middleware"
	"github.com/frahmantamala/beacon/internal/transport/rest"
	"github.com/frahmantamala/beacon/internal/user"
	userPostgres "github.com/frahmantamala/beacon/internal/user/postgres"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func TestBeacon(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Beacon Suite")
}

type apiClient struct {
	router http.Handler
}

func (c *apiClient) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	return rec
}

func (c *apiClient) login(email, password string) string {
	rec := c.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": password})
	Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
	var tokens auth.AuthTokens
	Expect(json.Unmarshal(rec.Body.Bytes(), &tokens)).To(Succeed())
	return tokens.AccessToken
}

func newRouter(db *gorm.DB, bus *events.EventBus) http.Handler {
	lg := zerolog.Nop()

	sqlDB, err := db.DB()
	Expect(err).ToNot(HaveOccurred())

	accounts := identityPostgres.NewAccountRepository(db, bcrypt.MinCost)
	orgs := organizationPostgres.NewOrganizationRepository(db)
	users := userPostgres.NewUserRepository(db)
	auditRepo := auditPostgres.NewAuditRepository(db)
	settingsSvc := settings.NewService(settingsPostgres.NewSettingsRepository(db))
	runner := saga.NewRunner(lg)
	orgSvc := organization.NewService(orgs, lg)

	provisioner := organization.NewProvisioner(organization.ProvisionerDeps{
		Organizations: orgs,
		Users:         users,
		Identity:      accounts,
		Settings:      settingsSvc,
		Audit:         auditRepo,
		Events:        bus,
		Runner:        runner,
	}, lg)
	invitationSvc := invitation.NewService(invitation.Deps{
		Invitations:   invitationPostgres.NewInvitationRepository(db),
		Organizations: orgs,
		Users:         users,
		Identity:      accounts,
		Audit:         auditRepo,
		Events:        bus,
		Runner:        runner,
	}, lg)
	tokenGen := auth.NewJWTTokenGenerator(
		"suite-access-secret-0123456789abcdef",
		"suite-refresh-secret-0123456789abcdef",
		15*time.Minute, time.Hour,
	)
	authSvc := auth.NewService(accounts, authPostgres.NewRepository(db), tokenGen, lg)

	validator, err := middleware.NewOpenAPIValidator(context.Background(), api.OpenAPI)
	Expect(err).ToNot(HaveOccurred())

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, sqlDB, "test", rest.Handlers{
		Auth:         auth.NewHandler(authSvc, &lg),
		User:         user.NewHandler(user.NewService(users), &lg),
		Organization: organization.NewHandler(provisioner, orgSvc, &lg),
		Invitation:   invitation.NewHandler(invitationSvc, &lg),
		Settings:     settings.NewHandler(settingsSvc, &lg),
		Billing:      billing.NewWebhookHandler("", orgSvc, &lg),
		Validator:    validator,
	}, lg)
	return router
}

var _ = Describe("Tenant onboarding over HTTP", func() {
	var (
		db     *gorm.DB
		bus    *events.EventBus
		client *apiClient
	)

	BeforeEach(func() {
		var err error
		db, err = testdb.Open()
		Expect(err).ToNot(HaveOccurred())
		bus = events.NewEventBus(zerolog.Nop())
		client = &apiClient{router: newRouter(db, bus)}
	})

	AfterEach(func() {
		bus.Wait()
		sqlDB, err := db.DB()
		Expect(err).ToNot(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	It("signs up an organization, invites a member and lets them join", func() {
		// Given a fresh signup
		rec := client.do(http.MethodPost, "/api/v1/organizations", "", map[string]string{
			"organization_name": "Acme Robotics",
			"admin_name":        "Ada Admin",
			"admin_email":       "Ada@Acme.io",
			"admin_password":    "s3cret-pass",
		})
		Expect(rec.Code).To(Equal(http.StatusCreated), rec.Body.String())

		var provisioned organization.ProvisionResult
		Expect(json.Unmarshal(rec.Body.Bytes(), &provisioned)).To(Succeed())
		Expect(provisioned.Organization.Slug).To(Equal("acme-robotics"))
		Expect(provisioned.User.Role).To(Equal("SUPER_ADMIN"))
		Expect(provisioned.User.Email).To(Equal("ada@acme.io"))

		adminToken := client.login("ada@acme.io", "s3cret-pass")

		// When the admin invites a manager
		rec = client.do(http.MethodPost, "/api/v1/invitations", adminToken, map[string]string{
			"email": "max@acme.io",
			"name":  "Max Manager",
			"role":  "MANAGER",
		})
		Expect(rec.Code).To(Equal(http.StatusCreated), rec.Body.String())

		var row invitationDatamodel.Invitation
		Expect(db.Where("email = ?", "max@acme.io").First(&row).Error).To(Succeed())

		rec = client.do(http.MethodGet, "/api/v1/invitations/"+row.Token, "", nil)
		Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
		Expect(rec.Body.String()).To(ContainSubstring("Acme Robotics"))

		// And the invitee accepts
		rec = client.do(http.MethodPost, "/api/v1/invitations/accept", "", map[string]string{
			"token":    row.Token,
			"password": "manager-pass",
		})
		Expect(rec.Code).To(Equal(http.StatusCreated), rec.Body.String())

		// Then the member can sign in and sees the tenant
		memberToken := client.login("max@acme.io", "manager-pass")

		rec = client.do(http.MethodGet, "/api/v1/users/me", memberToken, nil)
		Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
		var me user.User
		Expect(json.Unmarshal(rec.Body.Bytes(), &me)).To(Succeed())
		Expect(me.OrganizationID).To(Equal(provisioned.Organization.ID))
		Expect(me.Role).To(Equal("MANAGER"))

		rec = client.do(http.MethodGet, "/api/v1/users", adminToken, nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
		var list user.ListUsersResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &list)).To(Succeed())
		Expect(list.Total).To(Equal(2))

		// And the token cannot be replayed
		rec = client.do(http.MethodPost, "/api/v1/invitations/accept", "", map[string]string{
			"token":    row.Token,
			"password": "manager-pass",
		})
		Expect(rec.Code).To(Equal(http.StatusNotFound), rec.Body.String())
	})

	It("rejects a duplicate organization name with 409", func() {
		body := map[string]string{
			"organization_name": "Acme",
			"admin_name":        "Ada",
			"admin_email":       "ada@acme.io",
			"admin_password":    "s3cret-pass",
		}
		Expect(client.do(http.MethodPost, "/api/v1/organizations", "", body).Code).To(Equal(http.StatusCreated))

		body["admin_email"] = "other@acme.io"
		rec := client.do(http.MethodPost, "/api/v1/organizations", "", body)
		Expect(rec.Code).To(Equal(http.StatusConflict), rec.Body.String())
	})

	It("rejects a signup missing required fields before it reaches the handler", func() {
		rec := client.do(http.MethodPost, "/api/v1/organizations", "", map[string]string{
			"organization_name": "Acme",
		})
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(rec.Body.String()).To(ContainSubstring("VALIDATION_FAILED"))
	})

	It("keeps employees away from invitation management", func() {
		rec := client.do(http.MethodPost, "/api/v1/organizations", "", map[string]string{
			"organization_name": "Acme",
			"admin_name":        "Ada",
			"admin_email":       "ada@acme.io",
			"admin_password":    "s3cret-pass",
		})
		Expect(rec.Code).To(Equal(http.StatusCreated))
		adminToken := client.login("ada@acme.io", "s3cret-pass")

		rec = client.do(http.MethodPost, "/api/v1/invitations", adminToken, map[string]string{
			"email": "eve@acme.io",
			"name":  "Eve",
			"role":  "EMPLOYEE",
		})
		Expect(rec.Code).To(Equal(http.StatusCreated))

		var row invitationDatamodel.Invitation
		Expect(db.Where("email = ?", "eve@acme.io").First(&row).Error).To(Succeed())
		rec = client.do(http.MethodPost, "/api/v1/invitations/accept", "", map[string]string{
			"token":    row.Token,
			"password": "employee-pass",
		})
		Expect(rec.Code).To(Equal(http.StatusCreated))

		employeeToken := client.login("eve@acme.io", "employee-pass")
		rec = client.do(http.MethodGet, "/api/v1/invitations", employeeToken, nil)
		Expect(rec.Code).To(Equal(http.StatusForbidden))
	})

	It("requires a bearer token for tenant reads", func() {
		rec := client.do(http.MethodGet, "/api/v1/organizations/current", "", nil)
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})
})
