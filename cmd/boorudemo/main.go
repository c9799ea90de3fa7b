package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	rootCmd := &cobra.Command{
		Use:   "boorudemo",
		Short: "Generate, load, and query a synthetic boorudb fixture",
	}

	rootCmd.AddCommand(
		newGenerateCmd(logger),
		newQueryCmd(logger),
		newBenchCmd(logger),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newGenerateCmd(logger *slog.Logger) *cobra.Command {
	var count int
	var out string
	var seed int64

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic post fixture and write it as msgpack",
		RunE: func(cmd *cobra.Command, args []string) error {
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			rng := rand.New(rand.NewSource(seed))
			posts := generatePosts(rng, count)
			if err := writeFixture(out, posts); err != nil {
				return err
			}
			logger.Info("fixture written", "path", out, "posts", len(posts), "seed", seed)
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 1000, "number of posts to generate")
	cmd.Flags().StringVar(&out, "out", "fixture.msgpack", "output fixture path")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (default: derived from current time)")
	return cmd
}

func newQueryCmd(logger *slog.Logger) *cobra.Command {
	var in, query string
	var limit int
	var sorted, random bool

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Load a fixture and run a single tag query against it",
		RunE: func(cmd *cobra.Command, args []string) error {
			posts, err := readFixture(in)
			if err != nil {
				return err
			}
			db, err := buildDb(context.Background(), logger, posts)
			if err != nil {
				return err
			}
			res, err := db.Query("", query)
			if err != nil {
				return err
			}
			logger.Info("query matched", "query", query, "matches", res.Len())
			return printResults(db, res, limit, sorted, random)
		},
	}

	cmd.Flags().StringVar(&in, "in", "fixture.msgpack", "input fixture path")
	cmd.Flags().StringVar(&query, "q", "", "query text (e.g. 'cat -dog rating:safe score:10..50 ai:solo:>=90')")
	cmd.Flags().IntVar(&limit, "limit", 20, "max results to print")
	cmd.Flags().BoolVar(&sorted, "sorted", false, "return results in score order via GetSorted")
	cmd.Flags().BoolVar(&random, "random", false, "return a random sample via GetRandom")
	_ = cmd.MarkFlagRequired("q")
	return cmd
}

func newBenchCmd(logger *slog.Logger) *cobra.Command {
	var in, query string
	var iterations int

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Repeat a query against a loaded fixture and report average latency",
		RunE: func(cmd *cobra.Command, args []string) error {
			posts, err := readFixture(in)
			if err != nil {
				return err
			}
			db, err := buildDb(context.Background(), logger, posts)
			if err != nil {
				return err
			}

			start := time.Now()
			var matches int
			for i := 0; i < iterations; i++ {
				res, err := db.Query("", query)
				if err != nil {
					return err
				}
				matches = res.Len()
			}
			elapsed := time.Since(start)

			fmt.Printf("posts=%d iterations=%d matches=%d total=%s avg=%s\n",
				len(posts), iterations, matches, elapsed, elapsed/time.Duration(iterations))
			return nil
		},
	}

	cmd.Flags().StringVar(&in, "in", "fixture.msgpack", "input fixture path")
	cmd.Flags().StringVar(&query, "q", "", "query text to repeat")
	cmd.Flags().IntVar(&iterations, "iterations", 1000, "number of times to re-run the query")
	_ = cmd.MarkFlagRequired("q")
	return cmd
}
