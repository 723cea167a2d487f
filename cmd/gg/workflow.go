package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/systemshift/gg/internal/learn"
	"github.com/systemshift/gg/internal/repo"
)

var initCmd = &cobra.Command{
	Use:     "init",
	Aliases: []string{"bruh"},
	Short:   "Create a repository in the working tree",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := repo.Init(cfg, repoOptions()...)
		if err != nil {
			return err
		}
		defer r.Close()
		head, _ := r.Head()
		fmt.Printf("Initialized empty gg repository in %s\n", r.Root())
		fmt.Printf("[%s %s] %s\n", r.CurrentBranch(), shortID(head.ID), head.Message)
		quip(learn.OnInit)
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add <path>...",
	Short: "Stage files for the next commit",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *repo.Repository) error {
			staged, err := r.Add(args...)
			if err != nil {
				return err
			}
			for _, p := range staged {
				fmt.Printf("staged: %s\n", p)
			}
			quip(learn.OnAdd)
			return nil
		})
	},
}

var modifiedCmd = &cobra.Command{
	Use:   "modified <path>...",
	Short: "Mark committed files as modified",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *repo.Repository) error {
			for _, p := range args {
				if err := r.MarkModified(p); err != nil {
					return err
				}
				fmt.Printf("modified: %s\n", p)
			}
			return nil
		})
	},
}

var commitMessage string

var commitCmd = &cobra.Command{
	Use:     "commit",
	Aliases: []string{"kermit"},
	Short:   "Record staged files as a new commit",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *repo.Repository) error {
			c, err := r.Commit(commitMessage)
			if errors.Is(err, repo.ErrNothingToCommit) {
				fmt.Println("nothing to commit (use \"gg add\" first)")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Printf("[%s %s] %s\n", r.CurrentBranch(), shortID(c.ID), firstLine(c.Message))
			quip(learn.OnCommit)
			return nil
		})
	},
}

func init() {
	commitCmd.Flags().StringVarP(&commitMessage, "message", "m", "", "commit message")
	_ = commitCmd.MarkFlagRequired("message")
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show staged, modified and untracked files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *repo.Repository) error {
			st, err := r.Status()
			if err != nil {
				return err
			}
			fmt.Printf("On branch %s at %s\n", st.Branch, shortID(st.Head))
			if st.Clean() {
				fmt.Println("nothing to commit, working tree clean")
			}
			printSection("Changes to be committed:", st.Staged)
			printSection("Changes not staged for commit:", st.Modified)
			printSection("Untracked files:", st.Untracked)
			quip(learn.OnStatus)
			return nil
		})
	},
}

func printSection(title string, paths []string) {
	if len(paths) == 0 {
		return
	}
	fmt.Printf("\n%s\n", title)
	for _, p := range paths {
		fmt.Printf("  %s\n", p)
	}
}

var logLimit int

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show commit history, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		n := cfg.LogLimit
		if cmd.Flags().Changed("limit") {
			n = logLimit
		}
		return withRepo(func(r *repo.Repository) error {
			for _, c := range r.Log(n) {
				fmt.Printf("commit %s\n", c.ID)
				if c.IsMerge() {
					fmt.Printf("Merge: %s\n", strings.Join(c.Parents, " "))
				}
				fmt.Printf("Author: %s\n", c.Author)
				fmt.Printf("Date:   %s\n\n", c.Timestamp.Local().Format("Mon Jan 2 15:04:05 2006"))
				for _, line := range strings.Split(c.Message, "\n") {
					fmt.Printf("    %s\n", line)
				}
				fmt.Println()
			}
			quip(learn.OnLog)
			return nil
		})
	},
}

func init() {
	logCmd.Flags().IntVarP(&logLimit, "limit", "n", 0, "max commits to show (0 = all)")
}
