package cmd

import (
	"context"
	stdErrors "errors"
	"log"

	errors "github.com/frahmantamala/beacon/internal"
	"github.com/frahmantamala/beacon/internal/auth"
	"github.com/frahmantamala/beacon/internal/invitation"
	"github.com/frahmantamala/beacon/internal/notification"
	"github.com/frahmantamala/beacon/internal/organization"
	"github.com/spf13/cobra"
)

var (
	seedOrgName       string
	seedAdminEmail    string
	seedAdminPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with a demo organization",
	Long:  `Provision a demo organization with its SUPER_ADMIN and a few pending invitations for development.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		deps, err := initializeDependencies(ctx)
		if err != nil {
			log.Fatalf("failed to init dependencies: %v", err)
		}
		defer deps.Close(ctx)
		lg := deps.Logger

		result, err := deps.Provisioner.Provision(ctx, organization.ProvisionDTO{
			OrganizationName: seedOrgName,
			AdminName:        "Demo Admin",
			AdminEmail:       seedAdminEmail,
			AdminPassword:    seedAdminPassword,
		})
		if stdErrors.Is(err, errors.ErrOrganizationExists) || stdErrors.Is(err, errors.ErrUserExists) {
			lg.Info().Str("organization", seedOrgName).Msg("demo organization already exists, nothing to seed")
			return
		}
		if err != nil {
			log.Fatalf("failed to provision demo organization: %v", err)
		}
		lg.Info().
			Str("organization_id", result.Organization.ID).
			Str("slug", result.Organization.Slug).
			Str("admin_email", result.User.Email).
			Msg("seeded demo organization")

		admin := &auth.User{
			ID:             result.User.ID,
			Email:          result.User.Email,
			Name:           result.User.Name,
			OrganizationID: result.User.OrganizationID,
			Role:           result.User.Role,
			IsActive:       result.User.IsActive,
		}

		invitees := []invitation.CreateInvitationDTO{
			{Email: "hr@demo.beacon.local", Name: "Hana Rahma", Title: "People Ops", Role: "HR_ADMIN"},
			{Email: "manager@demo.beacon.local", Name: "Made Wirawan", Title: "Engineering Manager", Role: "MANAGER"},
			{Email: "employee@demo.beacon.local", Name: "Eko Prasetyo", Title: "Engineer", Role: "EMPLOYEE"},
		}
		for _, dto := range invitees {
			inv, err := deps.InvitationSvc.Create(ctx, admin, dto)
			if err != nil {
				log.Fatalf("failed to invite %s: %v", dto.Email, err)
			}

			row, err := deps.Invitations.GetPendingByEmail(ctx, inv.OrganizationID, inv.Email)
			if err != nil || row == nil {
				log.Fatalf("failed to read back invitation for %s: %v", dto.Email, err)
			}
			lg.Info().
				Str("email", inv.Email).
				Str("role", inv.Role).
				Str("accept_url", notification.AcceptURL(deps.Config.Email.FrontendBaseURL, row.Token)).
				Msg("seeded invitation")
		}
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedOrgName, "org", "Beacon Demo", "Demo organization name")
	seedCmd.Flags().StringVar(&seedAdminEmail, "admin-email", "admin@demo.beacon.local", "Demo SUPER_ADMIN email")
	seedCmd.Flags().StringVar(&seedAdminPassword, "admin-password", "password123", "Demo SUPER_ADMIN password")
}
