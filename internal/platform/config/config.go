package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// BaseCurrencyCode is the intermediary for cross-rate composition.
	BaseCurrencyCode string

	// ExpenseApprovalThreshold is the amount above which an expense needs
	// explicit approval before the funds leave the balance. Zero disables
	// the approval step.
	ExpenseApprovalThreshold decimal.Decimal

	// DefaultCommissionPct applies to exchanges that do not carry their own
	// commission, as a fraction (0.01 = 1%).
	DefaultCommissionPct decimal.Decimal

	// TransferAutoApproveBranch lets branch-to-branch transfers complete
	// without the approval step. Vault-touching transfers always need it.
	TransferAutoApproveBranch bool

	// TxConflictMaxRetries bounds automatic retries of serialization
	// conflicts before surfacing the error to the caller.
	TxConflictMaxRetries int

	// AMQPURL and AMQPExchange configure the balance movement event
	// publisher. An empty URL disables publishing.
	AMQPURL      string
	AMQPExchange string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("BASE_CURRENCY_CODE", "USD")
	viper.SetDefault("EXPENSE_APPROVAL_THRESHOLD", "0")
	viper.SetDefault("DEFAULT_COMMISSION_PCT", "0")
	viper.SetDefault("TRANSFER_AUTO_APPROVE_BRANCH", false)
	viper.SetDefault("TX_CONFLICT_MAX_RETRIES", 3)
	viper.SetDefault("AMQP_URL", "")
	viper.SetDefault("AMQP_EXCHANGE", "fxbo.balance_movements")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.BaseCurrencyCode = viper.GetString("BASE_CURRENCY_CODE")

	threshold, err := decimal.NewFromString(viper.GetString("EXPENSE_APPROVAL_THRESHOLD"))
	if err != nil {
		log.Printf("Warning: invalid EXPENSE_APPROVAL_THRESHOLD, approval disabled: %v\n", err)
		threshold = decimal.Zero
	}
	cfg.ExpenseApprovalThreshold = threshold

	commission, err := decimal.NewFromString(viper.GetString("DEFAULT_COMMISSION_PCT"))
	if err != nil {
		log.Printf("Warning: invalid DEFAULT_COMMISSION_PCT, defaulting to zero: %v\n", err)
		commission = decimal.Zero
	}
	cfg.DefaultCommissionPct = commission

	cfg.TransferAutoApproveBranch = viper.GetBool("TRANSFER_AUTO_APPROVE_BRANCH")
	cfg.TxConflictMaxRetries = viper.GetInt("TX_CONFLICT_MAX_RETRIES")
	cfg.AMQPURL = viper.GetString("AMQP_URL")
	cfg.AMQPExchange = viper.GetString("AMQP_EXCHANGE")

	return cfg, nil
}
