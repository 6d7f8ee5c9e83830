package cli

import (
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/services"
	"github.com/spf13/cobra"
)

func NewCreateAdminCommand(opts *RootOptions) *cobra.Command {
	var req dto.SignUpRequest

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an ADMIN account, or promote an existing one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.db()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			authService := services.NewAuthService(db, opts.Config, nil, nil)
			user, err := authService.SignUp(ctx, &req)
			switch {
			case errors.Is(err, services.ErrEmailTaken):
				user = &models.User{}
				if err := db.WithContext(ctx).Where("email = ?", req.Email).First(user).Error; err != nil {
					return err
				}
			case err != nil:
				return err
			}

			if err := db.WithContext(ctx).Model(user).Updates(map[string]interface{}{
				"user_role": models.RoleAdmin,
				"status":    models.StatusActive,
			}).Error; err != nil {
				return fmt.Errorf("promote %s: %w", req.Email, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "admin ready: %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "admin email")
	cmd.Flags().StringVar(&req.Password, "password", "", "admin password (min 8 characters)")
	cmd.Flags().StringVar(&req.FirstName, "first-name", "Admin", "first name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&req.Organisation, "organisation", "SensorWatch", "organisation")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
