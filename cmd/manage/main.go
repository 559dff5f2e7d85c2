package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"railway/pkg/config"
	"railway/pkg/database"
	"railway/pkg/database/migrations"
	"railway/pkg/repository"
	"railway/pkg/services"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

func init() {
	cobra.MousetrapHelpText = ""
}

func main() {
	var configFile string

	root := &cobra.Command{
		Use:   "manage",
		Short: "Railway administration commands",
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "f", os.Getenv("CONFIG_FILE"), "config file")

	root.AddCommand(&cobra.Command{
		Use:   "migrate [up|down|status|redo|version] [args...]",
		Short: "Run a migration command",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			command := "up"
			if len(args) > 0 {
				command, args = args[0], args[1:]
			}
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			db, err := database.Connect(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()
			return database.RunCommand(db, command, args...)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "migrations",
		Short: "List the embedded migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			goose.SetBaseFS(migrations.FS)
			files, err := goose.CollectMigrations(".", 0, goose.MaxVersion)
			if err != nil {
				return fmt.Errorf("collect migrations: %w", err)
			}
			fmt.Printf("Collected %d migrations\n", len(files))
			for _, f := range files {
				fmt.Printf(" - %v\n", f.Source)
			}
			return nil
		},
	})

	var email, password string
	createSuperuser := &cobra.Command{
		Use:   "createsuperuser",
		Short: "Create a staff account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			db, err := database.Connect(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()

			auth := services.NewAuthService(repository.NewAuthRepository(db), cfg.Auth.JWTSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
			user, err := auth.CreateUser(context.Background(), email, password, true)
			if err != nil {
				return err
			}
			log.Printf("[MANAGE] Superuser %s created (id=%d)", user.Email, user.ID)
			return nil
		},
	}
	createSuperuser.Flags().StringVar(&email, "email", "", "account email")
	createSuperuser.Flags().StringVar(&password, "password", "", "account password")
	createSuperuser.MarkFlagRequired("email")
	createSuperuser.MarkFlagRequired("password")
	root.AddCommand(createSuperuser)

	if err := root.Execute(); err != nil {
		log.Fatalf("[MANAGE] %v", err)
	}
}
