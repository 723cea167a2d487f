package main

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/systemshift/gg/internal/config"
	"github.com/systemshift/gg/internal/learn"
	"github.com/systemshift/gg/internal/repo"
)

var (
	// Version information (set by build flags)
	Version   = "dev"
	BuildTime = "unknown"

	cfgFile string
	workDir string
	verbose bool
	quiet   bool
	logger  *logrus.Logger
	cfg     *config.Config
	rng     *rand.Rand
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gg",
	Short: "gg - version control built from textbook data structures",
	Long: `gg is a small version-control system for learning. Tracked paths live in
a trie, history in a DAG, branches in an AVL tree, commit ids in a skip list,
merge conflicts in a disjoint set and seen paths in a Bloom filter.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logrus.New()
		logger.SetOutput(os.Stderr)

		path := cfgFile
		if path == "" && workDir != "" {
			candidate := filepath.Join(workDir, repo.DirName, "config.yaml")
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
			}
		}
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			if cfgFile != "" {
				return err
			}
			logger.WithError(err).Warn("Failed to load config, using defaults")
			cfg = config.Default()
		}
		if workDir != "" {
			cfg.Dir = workDir
		}

		if verbose {
			logger.SetLevel(logrus.DebugLevel)
		} else {
			logger.SetLevel(cfg.Level())
		}

		rng = cfg.Rand()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .gg/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&workDir, "dir", "C", "", "working tree (default: current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "skip the commentary")

	rootCmd.SetVersionTemplate(`gg {{.Version}}
Build time: ` + BuildTime + `
`)

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(modifiedCmd)
	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(branchCmd)
	rootCmd.AddCommand(checkoutCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(conflictsCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(learnCmd)
	rootCmd.AddCommand(mountCmd)
}

func repoOptions() []repo.Option {
	return []repo.Option{repo.WithLogger(logger), repo.WithRand(rng)}
}

// openRepo opens the repository for the current command.
func openRepo() (*repo.Repository, error) {
	r, err := repo.Open(cfg, repoOptions()...)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// withRepo opens the repository, runs fn and closes it.
func withRepo(fn func(r *repo.Repository) error) error {
	r, err := openRepo()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := r.Close(); cerr != nil {
			logger.WithError(cerr).Warn("close repository")
		}
	}()
	return fn(r)
}

func quip(o learn.Occasion) {
	if quiet {
		return
	}
	if q := learn.Quip(o, rng); q != "" {
		fmt.Println(q)
	}
}

func shortID(id string) string {
	return id[:min(8, len(id))]
}
