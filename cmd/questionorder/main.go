// Command questionorder computes the friend-graph question order offline and
// keeps the Neo4j mirror of the friend graph in sync.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"catchUpAPI/internal/cache"
	"catchUpAPI/internal/config"
	"catchUpAPI/internal/graph"
	"catchUpAPI/internal/metrics"
	"catchUpAPI/internal/schedule"
	"catchUpAPI/internal/store/postgres"
)

var (
	sourceFlag string
	seedFlag   string
	dryRunFlag bool
)

var rootCmd = &cobra.Command{
	Use:          "questionorder",
	Short:        "Friend-graph question order tools",
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Compute the next question order and publish it",
	Long: `Loads one snapshot of the friend graph, walks it from a seed user until
every user was visited and publishes the order to the cache the API reads.

Seeds are drawn at random and retried when a seed cannot reach everyone,
unless --seed pins one.`,
	RunE: runOrder,
}

var syncGraphCmd = &cobra.Command{
	Use:   "sync-graph",
	Short: "Copy every user and friendship from Postgres into Neo4j",
	RunE:  runSyncGraph,
}

func init() {
	runCmd.Flags().StringVar(&sourceFlag, "source", "postgres", "friend graph source: postgres or neo4j")
	runCmd.Flags().StringVar(&seedFlag, "seed", "", "user ID to start from")
	runCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "print the order without publishing it")

	rootCmd.AddCommand(runCmd, syncGraphCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func openNeo4j(ctx context.Context, cfg config.Config) (*graph.Neo4jRunner, error) {
	if !cfg.HasNeo4j() {
		return nil, errors.New("NEO4J_URI environment variable is not set")
	}
	return graph.NewNeo4jRunner(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, cfg.Neo4jDatabase)
}

func runOrder(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	metrics.Register()

	var opts schedule.RunOptions
	opts.DryRun = dryRunFlag
	if seedFlag != "" {
		seed, err := uuid.Parse(seedFlag)
		if err != nil {
			return fmt.Errorf("invalid --seed: %w", err)
		}
		opts.Seed = &seed
	}

	var source schedule.GraphSource
	switch sourceFlag {
	case "postgres":
		if err := cfg.RequireDatabase(); err != nil {
			return err
		}
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		source = postgres.New(pool)
	case "neo4j":
		runner, err := openNeo4j(ctx, cfg)
		if err != nil {
			return err
		}
		defer runner.Close(context.Background())
		source = graph.NewMirror(runner)
	default:
		return fmt.Errorf("unknown --source %q", sourceFlag)
	}

	var orderCache cache.Cache = cache.NewMemory()
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		orderCache = redisCache
	} else if !opts.DryRun {
		log.Println("Warning: REDIS_URL not set, the order is only printed")
	}
	defer orderCache.Close()

	res, err := schedule.NewRunner(source, orderCache, cfg.ScheduleAttempts).Run(ctx, opts)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func runSyncGraph(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	runner, err := openNeo4j(ctx, cfg)
	if err != nil {
		return err
	}
	defer runner.Close(context.Background())

	g, err := postgres.New(pool).FriendGraph(ctx)
	if err != nil {
		return err
	}
	edges, err := graph.NewMirror(runner).Sync(ctx, g)
	if err != nil {
		return fmt.Errorf("sync stopped after %d friendships: %w", edges, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Synced %d users and %d friendships\n", len(g), edges)
	return nil
}
