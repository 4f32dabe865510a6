package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"opsboard/internal/config"
	"opsboard/internal/db"
	"opsboard/internal/db/migrate"
	"opsboard/internal/repository"
	"opsboard/internal/services"
)

var rootCmd = &cobra.Command{
	Use:   "opsboard",
	Short: "Operations board maintenance CLI",
	Long: `opsboard runs maintenance tasks for the operations dashboard service:
schema migrations and metric snapshot recomputes.`,
}

func main() {
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().String("config", "", "path to config file")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func registerCommands() {
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(snapshotCmd())
}

func loadConfig() (*config.Config, error) {
	return config.LoadConfig(viper.GetString("config"))
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "migrate", Short: "Manage database schema"}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := migrate.Run(cfg.DatabaseURL(), "up"); err != nil {
				if errors.Is(err, migrate.ErrNoChange) {
					fmt.Println("schema already up to date")
					return nil
				}
				return err
			}
			fmt.Println("migrations applied")
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Revert all migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := migrate.Run(cfg.DatabaseURL(), "down"); err != nil {
				if errors.Is(err, migrate.ErrNoChange) {
					fmt.Println("nothing to revert")
					return nil
				}
				return err
			}
			fmt.Println("migrations reverted")
			return nil
		},
	})
	return cmd
}

func snapshotCmd() *cobra.Command {
	var orgID string
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Recompute metric snapshots",
		Long:  "Recomputes the metric snapshot for one organization, or for every organization when --org is omitted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := context.Background()
			pool, err := db.Connect(ctx, cfg.DSN())
			if err != nil {
				return err
			}
			defer pool.Close()

			snapshots := services.NewSnapshotService(repository.NewPostgresStore(pool))
			if orgID != "" {
				snap, err := snapshots.Recompute(ctx, orgID)
				if err != nil {
					return err
				}
				fmt.Printf("snapshot for %s: %d tasks, success %.1f%%\n", orgID, snap.TasksTotal, snap.SuccessRate)
				return nil
			}
			if err := snapshots.RecomputeAll(ctx); err != nil {
				return err
			}
			fmt.Println("snapshots recomputed for all organizations")
			return nil
		},
	}
	cmd.Flags().StringVar(&orgID, "org", "", "organization id")
	return cmd
}
