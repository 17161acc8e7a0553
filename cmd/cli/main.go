package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/greenledger/internal/identity"
	"github.com/iho/greenledger/internal/infrastructure/auth"
	"github.com/iho/greenledger/internal/infrastructure/logger"
	"github.com/iho/greenledger/internal/infrastructure/policy"
	"github.com/iho/greenledger/internal/infrastructure/postgres"
)

// options are the persistent flags shared by every command.
type options struct {
	baseURL  string
	timeout  time.Duration
	secret   string
	caller   string
	audience string
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "greenledger-cli",
		Short:         "GreenLedger operator tool",
		Long:          `A command line interface for operating a GreenLedger service: identity tokens, tier bands, migrations and read-only ledger reports.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.SetOut(out)

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", envOr("GREENLEDGER_URL", "http://localhost:8080"), "Base URL of the GreenLedger API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&opts.secret, "secret", os.Getenv("JWT_SECRET"), "Shared secret for internal routes")
	rootCmd.PersistentFlags().StringVar(&opts.caller, "caller", "ops", "Service name the CLI signs internal calls as")
	rootCmd.PersistentFlags().StringVar(&opts.audience, "service", envOr("SERVICE_NAME", "green"), "Name of the service being called")

	rootCmd.AddCommand(
		newTokenCmd(),
		newTierCmd(),
		newMigrateCmd(),
		newLedgerCmd(opts),
		newSchedulesCmd(opts),
		newSettleCmd(opts),
		newVerifyCmd(opts),
		newBenefitsCmd(opts),
	)
	return rootCmd
}

func newTokenCmd() *cobra.Command {
	codec := identity.NewCodec()

	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Encode and decode identity tokens",
	}
	tokenCmd.AddCommand(
		&cobra.Command{
			Use:   "encode <owner-id>",
			Short: "Turn an owner id into an identity token",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				token, err := codec.Encode(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), token)
				return nil
			},
		},
		&cobra.Command{
			Use:   "decode <token>",
			Short: "Recover the owner id from an identity token",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				owner, err := codec.Decode(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), owner)
				return nil
			},
		},
	)
	return tokenCmd
}

func newTierCmd() *cobra.Command {
	var policyFile string

	evalCmd := &cobra.Command{
		Use:   "eval <lifetime-earned>",
		Short: "Show the tier band for a lifetime earned total",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			earned, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("lifetime earned must be an integer: %w", err)
			}
			rewards, err := policy.Load(policyFile)
			if err != nil {
				return err
			}

			status := rewards.Tiers.Evaluate(earned)
			return printJSON(cmd.OutOrStdout(), struct {
				Tier             string  `json:"tier"`
				NextTier         string  `json:"nextTier,omitempty"`
				Level            int     `json:"level"`
				LifetimeEarned   int64   `json:"lifetimeEarned"`
				BandFloor        int64   `json:"bandFloor"`
				BandCeiling      int64   `json:"bandCeiling,omitempty"`
				AmountToNextTier int64   `json:"amountToNextTier"`
				ProgressFraction float64 `json:"progressFraction"`
			}{
				Tier:             string(status.Tier),
				NextTier:         string(status.NextTier),
				Level:            status.Level,
				LifetimeEarned:   status.LifetimeEarned,
				BandFloor:        status.BandFloor,
				BandCeiling:      status.BandCeiling,
				AmountToNextTier: status.AmountToNextTier,
				ProgressFraction: status.ProgressFraction,
			})
		},
	}
	evalCmd.Flags().StringVar(&policyFile, "policy", os.Getenv("POLICY_FILE"), "Reward policy TOML file")

	tierCmd := &cobra.Command{
		Use:   "tier",
		Short: "Tier band tools",
	}
	tierCmd.AddCommand(evalCmd)
	return tierCmd
}

func newMigrateCmd() *cobra.Command {
	var databaseURL, migrationsPath string

	migrator := func(cmd *cobra.Command) *postgres.Migrator {
		log := logger.New(logger.Config{Level: "info", Format: "console", Output: cmd.ErrOrStderr()})
		return postgres.NewMigrator(databaseURL, migrationsPath, log)
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	migrateCmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")
	migrateCmd.PersistentFlags().StringVar(&migrationsPath, "migrations", envOr("MIGRATIONS_PATH", "migrations"), "Migrations directory")

	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrator(cmd).Up()
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrator(cmd).Down()
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				version, dirty, err := migrator(cmd).Version()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %v)\n", version, dirty)
				return nil
			},
		},
	)
	return migrateCmd
}

func newLedgerCmd(opts *options) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger reports",
	}
	ledgerCmd.AddCommand(&cobra.Command{
		Use:   "query <token>",
		Short: "Show tier and balances for an identity token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return newAPIClient(opts).call(cmd, http.MethodPost, "/internal/v1/ledger/query", true, map[string]string{
				"accountOwnerIdentity": args[0],
			})
		},
	})
	return ledgerCmd
}

func newSchedulesCmd(opts *options) *cobra.Command {
	var accountID string

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recurring transfers for an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if accountID == "" {
				return fmt.Errorf("--account is required")
			}
			path := "/api/v1/scheduled-transfers?accountId=" + url.QueryEscape(accountID)
			return newAPIClient(opts).call(cmd, http.MethodGet, path, false, nil)
		},
	}
	listCmd.Flags().StringVar(&accountID, "account", "", "Source account id")

	schedulesCmd := &cobra.Command{
		Use:   "schedules",
		Short: "Recurring transfer directives",
	}
	schedulesCmd.AddCommand(listCmd)
	return schedulesCmd
}

func newSettleCmd(opts *options) *cobra.Command {
	var date string

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Show settlement outcomes for a run date",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/settlement-runs"
			if date != "" {
				if _, err := time.Parse(time.DateOnly, date); err != nil {
					return fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
				}
				path += "?date=" + date
			}
			return newAPIClient(opts).call(cmd, http.MethodGet, path, false, nil)
		},
	}
	runsCmd.Flags().StringVar(&date, "date", "", "Run date (YYYY-MM-DD), defaults to today")

	settleCmd := &cobra.Command{
		Use:   "settle",
		Short: "Settlement reports",
	}
	settleCmd.AddCommand(runsCmd)
	return settleCmd
}

func newVerifyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <account-id>",
		Short: "Replay an account's entries and compare with its balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return newAPIClient(opts).call(cmd, http.MethodGet, "/api/v1/accounts/"+url.PathEscape(args[0])+"/verify", false, nil)
		},
	}
}

func newBenefitsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "benefits <token>",
		Short: "Estimate monthly tier benefits for an identity token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return newAPIClient(opts).call(cmd, http.MethodGet, "/api/v1/benefits?token="+url.QueryEscape(args[0]), false, nil)
		},
	}
}

type apiClient struct {
	opts   *options
	client *http.Client
}

func newAPIClient(opts *options) *apiClient {
	return &apiClient{opts: opts, client: &http.Client{Timeout: opts.timeout}}
}

// call sends the request and pretty-prints the JSON answer. Non-2xx answers
// are printed too and returned as an error.
func (c *apiClient) call(cmd *cobra.Command, method, path string, internal bool, body any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), c.opts.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.opts.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if internal {
		if c.opts.secret == "" {
			return fmt.Errorf("internal routes need --secret or JWT_SECRET")
		}
		token, err := auth.NewJWTManager(c.opts.secret, c.opts.caller, time.Minute).Generate(c.opts.audience)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), truncate(string(data), 512))
	} else if err := printJSON(cmd.OutOrStdout(), decoded); err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
