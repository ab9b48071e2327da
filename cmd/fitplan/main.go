package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/everstacklabs/fitplan/internal/admission"
	"github.com/everstacklabs/fitplan/internal/cache"
	"github.com/everstacklabs/fitplan/internal/config"
	"github.com/everstacklabs/fitplan/internal/cost"
	"github.com/everstacklabs/fitplan/internal/equipment"
	"github.com/everstacklabs/fitplan/internal/generator"
	"github.com/everstacklabs/fitplan/internal/llm"
	_ "github.com/everstacklabs/fitplan/internal/llm/providers/anthropic" // register Anthropic provider
	_ "github.com/everstacklabs/fitplan/internal/llm/providers/gemini"    // register Gemini provider
	_ "github.com/everstacklabs/fitplan/internal/llm/providers/openai"    // register OpenAI provider
	"github.com/everstacklabs/fitplan/internal/plan"
	"github.com/everstacklabs/fitplan/internal/render"
	"github.com/everstacklabs/fitplan/internal/server"
	"github.com/everstacklabs/fitplan/internal/validate"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:          "fitplan",
		Short:        "AI workout plan generator",
		Long:         "Builds multi-day workout plans from a fitness profile and optional gym photos.",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	rootCmd.AddCommand(
		generateCmd(),
		demoCmd(),
		serveCmd(),
		validateCmd(),
		costCmd(),
		providersCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a workout plan from a profile and gym photos",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			profilePath, _ := cmd.Flags().GetString("profile")
			photoPaths, _ := cmd.Flags().GetStringSlice("photo")
			format, _ := cmd.Flags().GetString("format")

			profile, err := plan.LoadProfile(profilePath)
			if err != nil {
				return err
			}

			gen, err := buildGenerator(cfg)
			if err != nil {
				return err
			}

			photos := make([]equipment.PhotoInput, len(photoPaths))
			for i, path := range photoPaths {
				photos[i] = equipment.FilePath(path)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout())
			defer cancel()

			p := gen.Generate(ctx, profile, photos)
			return writePlan(p, format)
		},
	}

	cmd.Flags().String("profile", "", "Profile file (JSON or YAML)")
	cmd.Flags().StringSlice("photo", nil, "Gym photo path (repeatable, at most 3 are analyzed)")
	cmd.Flags().String("format", "json", "Output format: json, yaml or markdown")
	_ = cmd.MarkFlagRequired("profile")

	return cmd
}

func demoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Print the demo plan for a profile (no network)",
		RunE: func(cmd *cobra.Command, args []string) error {
			profilePath, _ := cmd.Flags().GetString("profile")
			format, _ := cmd.Flags().GetString("format")

			var profile plan.UserProfile
			if profilePath != "" {
				p, err := plan.LoadProfile(profilePath)
				if err != nil {
					return err
				}
				profile = p
			}

			return writePlan(plan.Demo(profile), format)
		},
	}

	cmd.Flags().String("profile", "", "Profile file (JSON or YAML)")
	cmd.Flags().String("format", "json", "Output format: json, yaml or markdown")

	return cmd
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the workout API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.Server.Addr = addr
			}

			gen, err := buildGenerator(cfg)
			if err != nil {
				return err
			}

			var adm admission.Controller = admission.AllowAll{}
			if cfg.RateLimit.Enabled {
				adm = admission.NewLimiter(cfg.RateLimit.Requests, cfg.RateLimitWindow())
			}

			handler := server.New(gen, adm, server.Options{
				RequestTimeout: cfg.RequestTimeout(),
				MaxBodyBytes:   cfg.Server.MaxBodyBytes,
				AllowedOrigins: cfg.Server.AllowedOrigins,
			})
			srv := &http.Server{
				Addr:              cfg.Server.Addr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			return runServer(cmd.Context(), srv, cfg.ShutdownTimeout())
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default: from config)")

	return cmd
}

func runServer(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <plan-file>",
		Short: "Validate a plan document (JSON or YAML)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := plan.LoadPlan(args[0])
			if err != nil {
				return err
			}

			result := validate.ValidatePlan(p)
			fmt.Println(validate.FormatResult(result))

			if result.HasErrors() {
				os.Exit(1)
			}
			return nil
		},
	}
}

func costCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cost",
		Short: "Estimate the cost of a generation",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			tokens, _ := cmd.Flags().GetInt64("tokens")
			photos, _ := cmd.Flags().GetInt("photos")
			if photos > cfg.Vision.MaxPhotos {
				photos = cfg.Vision.MaxPhotos
			}

			pricing := cfg.Pricing
			var photoCost float64
			for range photos {
				photoCost += pricing.ImageCost()
			}
			est := cost.NewEstimate(photoCost, pricing.ChatCost(tokens), tokens)

			fmt.Printf("%-14s %8d   $%.5f\n", "Photos", photos, cost.Round(est.PhotoCost))
			fmt.Printf("%-14s %8d   $%.5f\n", "Chat tokens", est.TokensUsed, cost.Round(est.ChatCost))
			fmt.Printf("%-14s %8s   $%.5f\n", "Total", "", cost.Round(est.TotalCost))
			return nil
		},
	}

	cmd.Flags().Int64("tokens", 2000, "Total tokens of the generation call")
	cmd.Flags().Int("photos", 0, "Number of gym photos")

	return cmd
}

func providersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List registered model providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range llm.List() {
				fmt.Println(name)
			}
			return nil
		},
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	setupLogging(cfg.LogLevel)
	return cfg, nil
}

func setupLogging(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

// buildGenerator wires the configured provider, the optional vision cache and
// the analyzer. Without an API key the generator serves demo plans.
func buildGenerator(cfg *config.Config) (*generator.Generator, error) {
	var (
		text   llm.TextGenerator
		vision llm.VisionGenerator
	)

	if cfg.AIConfigured() {
		pc := cfg.ActiveProvider()
		p, err := llm.New(cfg.Provider, llm.Config{
			APIKey:      pc.APIKey,
			BaseURL:     pc.BaseURL,
			TextModel:   pc.TextModel,
			VisionModel: pc.VisionModel,
			Timeout:     cfg.ProviderTimeout(),
			RateLimit:   pc.RateLimit,
		})
		if err != nil {
			return nil, err
		}
		text, vision = p, p
		slog.Debug("provider configured", "provider", cfg.Provider, "text_model", pc.TextModel, "vision_model", pc.VisionModel)
	} else {
		slog.Warn("no API key for provider, serving demo plans", "provider", cfg.Provider)
	}

	opts := equipment.Options{
		MaxPhotos: cfg.Vision.MaxPhotos,
		Delay:     cfg.VisionDelay(),
		Pricing:   cfg.Pricing,
	}
	if cfg.Vision.CacheEnabled {
		fc, err := cache.New(cfg.Vision.CacheDir, cfg.CacheTTL())
		if err != nil {
			slog.Warn("failed to create vision cache, continuing without", "error", err)
		} else {
			opts.Cache = fc
		}
	}

	return generator.New(text, equipment.NewAnalyzer(vision, opts), generator.Options{
		Temperature: cfg.Generation.Temperature,
		MaxTokens:   cfg.Generation.MaxTokens,
		StrictParse: cfg.Generation.StrictParse,
		Pricing:     cfg.Pricing,
	}), nil
}

func writePlan(p *plan.WorkoutPlan, format string) error {
	out, err := render.Render(p, render.Format(format))
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}
