package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	ggfuse "github.com/systemshift/gg/internal/fuse"
	"github.com/systemshift/gg/internal/learn"
)

var learnCmd = &cobra.Command{
	Use:   "learn [topic]",
	Short: "Explain a data structure behind gg",
	Long:  `Explain one of: dag, trie, avl, skiplist, disjoint, bloom. Without a topic, list them.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			fmt.Println("Topics:")
			for _, t := range learn.Topics {
				fmt.Printf("  %-10s %s\n", t, learn.For(t).Title)
			}
			return nil
		}
		t, err := learn.ParseTopic(args[0])
		if err != nil {
			return err
		}
		if err := learn.Render(os.Stdout, t, rng); err != nil {
			return err
		}
		quip(learn.OnLearn)
		return nil
	},
}

var mountDebug bool

var mountCmd = &cobra.Command{
	Use:   "mount <dir>",
	Short: "Mount a read-only view of the repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mountpoint := args[0]
		if err := os.MkdirAll(mountpoint, 0o755); err != nil {
			return fmt.Errorf("create mountpoint: %w", err)
		}
		r, err := openRepo()
		if err != nil {
			return err
		}
		defer r.Close()

		server, err := ggfuse.Mount(mountpoint, r, mountDebug)
		if err != nil {
			return fmt.Errorf("mount failed: %w", err)
		}

		done := make(chan os.Signal, 1)
		signal.Notify(done, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-done
			logger.Info("shutting down")
			if err := server.Unmount(); err != nil {
				logger.WithError(err).Warn("unmount")
			}
		}()

		logger.WithField("mountpoint", mountpoint).Infof("ready (pid %d)", os.Getpid())
		server.Wait()
		logger.Info("stopped")
		return nil
	},
}

func init() {
	mountCmd.Flags().BoolVar(&mountDebug, "debug", false, "log FUSE requests")
}
