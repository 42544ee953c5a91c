package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ronagung/wedding-registry/internal/core/service"
	"github.com/ronagung/wedding-registry/pkg/logger"
)

func seedGiftsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-gifts",
		Short: "Insert the sample gift catalogue into an empty registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return seedGifts(cmd.Context())
		},
	}
}

func seedGifts(ctx context.Context) error {
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	n, err := service.NewGiftService(a.gifts, logger.Component("gifts")).SeedDefaults(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Println("registry already has gifts, nothing seeded")
		return nil
	}
	fmt.Printf("seeded %d gifts\n", n)
	return nil
}
