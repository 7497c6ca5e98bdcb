package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh-statuses",
		Short: "Re-derive PENDING/OVERDUE for every owner's open accounts and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			return a.refreshAll(cmd.Context())
		},
	}
}

func (a *app) refreshAll(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	owners, err := a.users.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list owners: %w", err)
	}

	var receivables, payables int
	for _, ownerID := range owners {
		n, err := a.receivables.RefreshStatuses(ctx, ownerID)
		if err != nil {
			return fmt.Errorf("failed to refresh receivables for %s: %w", ownerID, err)
		}
		receivables += n

		n, err = a.payables.RefreshStatuses(ctx, ownerID)
		if err != nil {
			return fmt.Errorf("failed to refresh payables for %s: %w", ownerID, err)
		}
		payables += n
	}

	a.log.Info("statuses refreshed",
		zap.Int("owners", len(owners)),
		zap.Int("receivables_changed", receivables),
		zap.Int("payables_changed", payables),
	)
	return nil
}
