package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/vibast-solutions/ms-go-relay-keys/app/repository"
	"github.com/vibast-solutions/ms-go-relay-keys/app/service"
)

var apiKeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Manage relay API keys",
}

var (
	generateName             string
	generateDescription      string
	generateDays             int
	generateTokenLimit       int64
	generateDailyCostLimit   float64
	generateMonthlyCostLimit float64
)

var apiKeyGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a relay API key",
	RunE: func(_ *cobra.Command, _ []string) error {
		if strings.TrimSpace(generateName) == "" {
			return errors.New("--name is required")
		}

		apiKeyService, db, err := newAPIKeyServiceForCommands()
		if err != nil {
			return err
		}
		defer db.Close()

		params := service.GenerateKeyParams{
			Name:        generateName,
			Description: generateDescription,
			CreatedBy:   "cli",
		}
		if generateTokenLimit > 0 {
			params.TokenLimit = &generateTokenLimit
		}
		if generateDailyCostLimit > 0 {
			params.DailyCostLimit = &generateDailyCostLimit
		}
		if generateMonthlyCostLimit > 0 {
			params.MonthlyCostLimit = &generateMonthlyCostLimit
		}
		if generateDays > 0 {
			expiresAt := time.Now().AddDate(0, 0, generateDays)
			params.ExpiresAt = &expiresAt
		}

		generated, err := apiKeyService.GenerateAPIKey(context.Background(), params)
		if err != nil {
			return err
		}

		fmt.Printf("key_id: %s\n", generated.Key.KeyID)
		fmt.Printf("name: %s\n", generated.Key.Name)
		fmt.Printf("api_key: %s\n", generated.SecretValue)
		fmt.Printf("key_prefix: %s\n", generated.Key.KeyPrefix)
		if generated.Key.ExpiresAt.Valid {
			fmt.Printf("expires_at: %s\n", generated.Key.ExpiresAt.Time.Format(time.RFC3339))
		} else {
			fmt.Println("expires_at: never")
		}
		fmt.Println("The api_key value is shown once and cannot be recovered.")
		return nil
	},
}

var apiKeyDeactivateCmd = &cobra.Command{
	Use:   "deactivate <key_id>",
	Short: "Deactivate a relay API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		apiKeyService, db, err := newAPIKeyServiceForCommands()
		if err != nil {
			return err
		}
		defer db.Close()

		keyID := args[0]
		key, err := apiKeyService.DeactivateAPIKey(context.Background(), keyID)
		if err != nil {
			if errors.Is(err, service.ErrKeyNotFound) {
				return fmt.Errorf("key %q not found", keyID)
			}
			if errors.Is(err, service.ErrKeyAlreadyDisabled) {
				return fmt.Errorf("key %q is already disabled", keyID)
			}
			return err
		}

		fmt.Printf("deactivated key %s (%s)\n", key.KeyID, key.Name)
		return nil
	},
}

var apiKeyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List relay API keys",
	RunE: func(_ *cobra.Command, _ []string) error {
		apiKeyService, db, err := newAPIKeyServiceForCommands()
		if err != nil {
			return err
		}
		defer db.Close()

		keys, err := apiKeyService.ListAPIKeys(context.Background())
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			fmt.Println("no keys found")
			return nil
		}

		for _, key := range keys {
			expires := "never"
			if key.ExpiresAt.Valid {
				expires = key.ExpiresAt.Time.Format(time.RFC3339)
			}
			fmt.Printf("%s  %-8s  %-12s  expires: %s  %s\n", key.KeyID, key.Status, key.KeyPrefix, expires, key.Name)
		}
		return nil
	},
}

func init() {
	apiKeyGenerateCmd.Flags().StringVar(&generateName, "name", "", "human readable key name (required)")
	apiKeyGenerateCmd.Flags().StringVar(&generateDescription, "description", "", "key description")
	apiKeyGenerateCmd.Flags().IntVar(&generateDays, "days", 0, "days until expiry, 0 for a non-expiring key")
	apiKeyGenerateCmd.Flags().Int64Var(&generateTokenLimit, "token-limit", 0, "token usage limit")
	apiKeyGenerateCmd.Flags().Float64Var(&generateDailyCostLimit, "daily-cost-limit", 0, "daily cost limit")
	apiKeyGenerateCmd.Flags().Float64Var(&generateMonthlyCostLimit, "monthly-cost-limit", 0, "monthly cost limit")

	apiKeyCmd.AddCommand(apiKeyGenerateCmd)
	apiKeyCmd.AddCommand(apiKeyDeactivateCmd)
	apiKeyCmd.AddCommand(apiKeyListCmd)
	rootCmd.AddCommand(apiKeyCmd)
}

func newAPIKeyServiceForCommands() (service.APIKeyService, *sql.DB, error) {
	_ = godotenv.Load()

	dsn := strings.TrimSpace(os.Getenv("MYSQL_DSN"))
	if dsn == "" {
		return nil, nil, errors.New("MYSQL_DSN environment variable is required")
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, nil, err
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, nil, err
	}

	apiKeyRepo := repository.NewAPIKeyRepository(db)
	apiKeyService := service.NewAPIKeyService(apiKeyRepo, keyPrefixFromEnv())

	return apiKeyService, db, nil
}

func keyPrefixFromEnv() string {
	if prefix := strings.TrimSpace(os.Getenv("KEY_PREFIX")); prefix != "" {
		return prefix
	}
	return "rk_"
}
