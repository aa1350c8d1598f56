package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-doc-ledger/internal/logger"
	"go-doc-ledger/internal/service"
	"go-doc-ledger/pkg/jwt"
	"go-doc-ledger/pkg/redisx"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRebuildYearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rebuild-year",
		Short:   "Recompute the product annual stats of a fiscal year from its documents",
		Example: `  ledgerctl rebuild-year --tenant 6f1c... --year 2024`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tenantID, err := tenantFlag(cmd)
			if err != nil {
				return err
			}
			year, _ := cmd.Flags().GetInt("year")
			if year < 1900 {
				return fmt.Errorf("--year is required")
			}

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			ctx := context.Background()
			var locker service.RebuildLocker
			if e.cfg.RedisAddress != "" {
				client, err := redisx.Connect(ctx, redisx.Options{
					Address:  e.cfg.RedisAddress,
					Password: e.cfg.RedisPassword,
					DB:       e.cfg.RedisDB,
				}, logger.WithComponent("redis"))
				if err != nil {
					return err
				}
				defer client.Close()
				locker = redisx.NewLocker(client, e.cfg.RebuildLockTTL, service.ErrLockNotObtained, logger.WithComponent("redis"))
			}

			started := time.Now()
			documents, err := service.NewValuationService(e.uow, locker).RebuildYear(ctx, operator(tenantID), year)
			if err != nil {
				return err
			}
			logger.WithComponent("ledgerctl").WithFields(logrus.Fields{
				"tenant_id": tenantID, "year": year, "documents": documents, "elapsed": time.Since(started).String(),
			}).Info("rebuild finished")
			fmt.Fprintln(cmd.OutOrStdout(), rebuildSummary(year, documents))
			return nil
		},
	}
	cmd.Flags().Int("year", 0, "Fiscal year to rebuild")
	return cmd
}

func rebuildSummary(year, documents int) string {
	return fmt.Sprintf("rebuilt %d from %d documents", year, documents)
}

func newStockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stock",
		Short: "Print the current stock of a product, per warehouse",
		RunE: func(cmd *cobra.Command, args []string) error {
			tenantID, err := tenantFlag(cmd)
			if err != nil {
				return err
			}
			raw, _ := cmd.Flags().GetString("product")
			productID, err := uuid.Parse(raw)
			if err != nil {
				return fmt.Errorf("invalid --product: %w", err)
			}

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			ledger := service.NewLedgerService(e.uow)
			ctx := context.Background()
			rows, err := ledger.StockByWarehouse(ctx, operator(tenantID), productID)
			if err != nil {
				return err
			}
			total, err := ledger.CurrentStock(ctx, operator(tenantID), productID, nil)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, r := range rows {
				fmt.Fprintf(out, "%s\t%s\n", r.WarehouseID, r.Quantity.String())
			}
			fmt.Fprintf(out, "total\t%s\n", total.String())
			return nil
		},
	}
	cmd.Flags().String("product", "", "Product ID")
	return cmd
}

func newNumberingCmd() *cobra.Command {
	numbering := &cobra.Command{
		Use:   "numbering",
		Short: "Inspect document numerators",
	}
	peek := &cobra.Command{
		Use:   "peek",
		Short: "Print the next number a numerator would issue, without issuing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			tenantID, err := tenantFlag(cmd)
			if err != nil {
				return err
			}
			code, _ := cmd.Flags().GetString("numerator")
			year, _ := cmd.Flags().GetInt("year")
			if code == "" || year < 1900 {
				return fmt.Errorf("--numerator and --year are required")
			}

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			next, err := service.NewNumberingService(e.uow).Peek(context.Background(), tenantID, code, year)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s/%d/%d\n", code, year, next)
			return nil
		},
	}
	peek.Flags().String("numerator", "", "Numerator code")
	peek.Flags().Int("year", time.Now().Year(), "Fiscal year")
	numbering.AddCommand(peek)
	return numbering
}

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a development token for a tenant user",
		Long: `Sign a JWT with the configured JWT_SECRET. Without --privileges the API
expands the role's seeded privileges.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tenantID, err := tenantFlag(cmd)
			if err != nil {
				return err
			}
			user, _ := cmd.Flags().GetString("user")
			role, _ := cmd.Flags().GetString("role")
			privs, _ := cmd.Flags().GetString("privileges")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			var privileges []string
			for _, p := range strings.Split(privs, ",") {
				if p = strings.TrimSpace(p); p != "" {
					privileges = append(privileges, p)
				}
			}

			token, err := jwt.GenerateToken(tenantID, user, role, privileges, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().String("user", "operator", "User ID")
	cmd.Flags().String("role", "TENANT_ADMIN", "Role code")
	cmd.Flags().String("privileges", "", "Comma separated privilege codes")
	cmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
	return cmd
}
