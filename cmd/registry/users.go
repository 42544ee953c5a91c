package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ronagung/wedding-registry/internal/core/domain"
	"github.com/ronagung/wedding-registry/internal/core/ports"
	"github.com/ronagung/wedding-registry/internal/core/service"
	"github.com/ronagung/wedding-registry/internal/pkg/password"
	"github.com/ronagung/wedding-registry/pkg/logger"
)

func createUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create-user <username> <password> [role]",
		Short: "Provision a CMS account",
		Long: `Create a CMS account that can sign in to the dashboard.

Role is one of owner, admin or editor and defaults to owner.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			role := domain.RoleOwner
			if len(args) == 3 {
				role = args[2]
			}
			return createUser(cmd.Context(), args[0], args[1], role)
		},
	}
}

func createUser(ctx context.Context, username, plaintext, role string) error {
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	hasher := password.NewPool(1, logger.Component("password"))
	hasher.Start()
	defer hasher.Stop()

	// sessions are not used when provisioning
	auth := service.NewAuthService(a.accounts, nil, hasher, nil, logger.Component("auth"))

	account, err := auth.Register(ctx, ports.RegisterInput{Username: username, Password: plaintext, Role: role})
	if err != nil {
		return err
	}

	fmt.Printf("created CMS user %q (id %d, role %s)\n", account.Username, account.ID, account.Role)
	return nil
}
