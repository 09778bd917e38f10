package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/claims/claims/internal/config"
	"github.com/claims/claims/internal/domain/adjudication"
	"github.com/claims/claims/internal/domain/claim"
	"github.com/claims/claims/internal/domain/policy"
	"github.com/claims/claims/internal/fixtures"
	"github.com/claims/claims/internal/platform/db"
	"github.com/claims/claims/internal/platform/docparse"
	"github.com/claims/claims/internal/platform/llm"
	"github.com/claims/claims/internal/platform/middleware"
	"github.com/claims/claims/internal/platform/reporting"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "claims-server",
		Short: "Insurance claim adjudication service",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(adjudicateCmd())
	rootCmd.AddCommand(sampleCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the adjudication API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required")
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required")
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

// adjudicateCmd runs the full pipeline on local files, without a database.
func adjudicateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "adjudicate",
		Short: "Adjudicate a claim document against a policy file",
		RunE: func(cmd *cobra.Command, args []string) error {
			claimPath, _ := cmd.Flags().GetString("claim")
			policyPath, _ := cmd.Flags().GetString("policy")
			printReport, _ := cmd.Flags().GetBool("report")
			if claimPath == "" || policyPath == "" {
				return fmt.Errorf("--claim and --policy are required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger := newLogger()

			document, err := docparse.ParseFile(claimPath)
			if err != nil {
				return err
			}

			pol, err := loadPolicyFile(policyPath)
			if err != nil {
				return err
			}

			provider, err := llm.New(llm.Config{
				Provider:    cfg.LLMProvider,
				Model:       cfg.LLMModel,
				APIKey:      cfg.LLMAPIKey,
				BaseURL:     cfg.LLMBaseURL,
				Temperature: cfg.LLMTemperature,
				Timeout:     cfg.LLMTimeout(),
			})
			if err != nil {
				return err
			}

			pipeline := adjudication.NewPipeline(provider, cfg.HighValueThreshold, logger)
			result := pipeline.Run(cmd.Context(), document, "", pol)

			out, err := json.MarshalIndent(result.Consolidated, "", "  ")
			if err != nil {
				return fmt.Errorf("encode result: %w", err)
			}
			fmt.Println(string(out))

			if printReport && result.Decision != nil {
				var cl *claim.Claim
				if result.Extraction != nil {
					cl = result.Extraction.Claim
				}
				fmt.Println(reporting.ClaimReport(cl, pol, result.Decision))
			}

			if result.Status == adjudication.RunFailed {
				return fmt.Errorf("adjudication failed: %s", result.Error)
			}
			return nil
		},
	}
	cmd.Flags().String("claim", "", "Path to the claim document (.json or .txt)")
	cmd.Flags().String("policy", "", "Path to the policy JSON file")
	cmd.Flags().Bool("report", false, "Print the plain-text report")
	return cmd
}

func loadPolicyFile(path string) (*policy.Policy, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy %s: %w", path, err)
	}
	var pol policy.Policy
	if err := json.Unmarshal(content, &pol); err != nil {
		return nil, fmt.Errorf("parse policy %s: %w", path, err)
	}
	return &pol, nil
}

// sampleCmd writes seeded synthetic policies and claims for local runs.
func sampleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Generate synthetic sample data",
		RunE: func(cmd *cobra.Command, args []string) error {
			numClaims, _ := cmd.Flags().GetInt("claims")
			numPolicies, _ := cmd.Flags().GetInt("policies")
			outDir, _ := cmd.Flags().GetString("out")
			seed, _ := cmd.Flags().GetInt64("seed")

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}

			gen := fixtures.NewGenerator(seed)
			policies := gen.Policies(numPolicies)
			claims := gen.Claims(numClaims, policies)
			if len(policies) > 0 {
				claims = append(claims, gen.EdgeCaseClaims(policies[0])...)
			}
			for _, c := range claims {
				report := gen.MedicalReport(c)
				c.MedicalReport = &report
			}

			if err := writeJSON(filepath.Join(outDir, "policies.json"), policies); err != nil {
				return err
			}
			if err := writeJSON(filepath.Join(outDir, "claims.json"), claims); err != nil {
				return err
			}

			fmt.Printf("Wrote %d policies and %d claims to %s\n", len(policies), len(claims), outDir)
			return nil
		},
	}
	cmd.Flags().Int("claims", 10, "Number of claims to generate")
	cmd.Flags().Int("policies", 3, "Number of policies to generate")
	cmd.Flags().String("out", "./sample_data", "Output directory")
	cmd.Flags().Int64("seed", 42, "PRNG seed")
	return cmd
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func runServer() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}
	if cfg.DatabaseURL == "" {
		logger.Fatal().Msg("DATABASE_URL is required")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	provider, err := llm.New(llm.Config{
		Provider:    cfg.LLMProvider,
		Model:       cfg.LLMModel,
		APIKey:      cfg.LLMAPIKey,
		BaseURL:     cfg.LLMBaseURL,
		Temperature: cfg.LLMTemperature,
		Timeout:     cfg.LLMTimeout(),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure llm provider")
	}
	if provider == nil {
		logger.Info().Msg("no llm provider configured, using deterministic fallbacks")
	} else {
		logger.Info().Str("provider", provider.Name()).Msg("llm provider configured")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.Recovery(logger))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/healthz/db", db.HealthHandler(pool))

	api := e.Group("/api")

	policyRepo := policy.NewRepoPG(pool)
	policySvc := policy.NewService(policyRepo)
	policy.NewHandler(policySvc).RegisterRoutes(api)

	claimRepo := claim.NewRepoPG(pool)
	claimSvc := claim.NewService(claimRepo)
	claim.NewHandler(claimSvc).RegisterRoutes(api)

	pipeline := adjudication.NewPipeline(provider, cfg.HighValueThreshold, logger)
	adjRepo := adjudication.NewRepoPG(pool)
	adjSvc := adjudication.NewService(pipeline, adjRepo, claimRepo, policyRepo, logger)
	adjudication.NewHandler(adjSvc).RegisterRoutes(api)

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
