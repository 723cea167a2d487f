package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systemshift/gg/internal/learn"
	"github.com/systemshift/gg/internal/repo"
)

var (
	branchCheckout bool
	branchDelete   bool
)

var branchCmd = &cobra.Command{
	Use:   "branch [name]",
	Short: "List, create or delete branches",
	Long: `Without a name, list branches. With a name, create a branch at the
current commit; -c also checks it out and -d deletes it instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *repo.Repository) error {
			if len(args) == 0 {
				current := r.CurrentBranch()
				for _, b := range r.Branches() {
					mark := " "
					if b.Name == current {
						mark = "*"
					}
					fmt.Printf("%s %s %s\n", mark, b.Name, shortID(b.CommitID))
				}
				return nil
			}

			name := args[0]
			if branchDelete {
				if err := r.DeleteBranch(name); err != nil {
					return err
				}
				fmt.Printf("Deleted branch %s\n", name)
				return nil
			}
			b, err := r.CreateBranch(name)
			if err != nil {
				return err
			}
			fmt.Printf("Created branch %s at %s\n", b.Name, shortID(b.CommitID))
			if branchCheckout {
				if _, err := r.Checkout(name); err != nil {
					return err
				}
				fmt.Printf("Switched to branch '%s'\n", name)
			}
			quip(learn.OnBranch)
			return nil
		})
	},
}

func init() {
	branchCmd.Flags().BoolVarP(&branchCheckout, "checkout", "c", false, "check out the new branch")
	branchCmd.Flags().BoolVarP(&branchDelete, "delete", "d", false, "delete the branch")
	branchCmd.MarkFlagsMutuallyExclusive("checkout", "delete")
}

var checkoutCmd = &cobra.Command{
	Use:   "checkout <branch>",
	Short: "Switch to another branch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *repo.Repository) error {
			b, err := r.Checkout(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Switched to branch '%s' at %s\n", b.Name, shortID(b.CommitID))
			return nil
		})
	},
}

var mergeCmd = &cobra.Command{
	Use:   "merge <branch>",
	Short: "Merge a branch into the current branch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *repo.Repository) error {
			res, err := r.Merge(args[0])
			if err != nil {
				return err
			}
			if res.Base != "" {
				fmt.Printf("Merge base: %s\n", shortID(res.Base))
			}
			for _, c := range res.Conflicts {
				fmt.Printf("CONFLICT (simulated) in %s: resolved with %s\n", c.Path, c.Resolution)
			}
			fmt.Printf("[%s %s] %s\n", r.CurrentBranch(), shortID(res.Commit.ID), res.Commit.Message)
			quip(learn.OnMerge)
			return nil
		})
	},
}

var conflictsCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "List merge conflicts and their groups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *repo.Repository) error {
			cs := r.Conflicts()
			if len(cs) == 0 {
				fmt.Println("no conflicts recorded")
				return nil
			}
			for _, c := range cs {
				state := "unresolved"
				if c.Resolved {
					state = "resolved: " + c.Resolution
				}
				fmt.Printf("%s (%s)\n", c.Path, state)
			}
			fmt.Println("\nGroups:")
			for _, g := range r.ConflictGroups() {
				fmt.Printf("  %v\n", g)
			}
			return nil
		})
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <path> <resolution>",
	Short: "Record how a conflict was resolved",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *repo.Repository) error {
			if err := r.Resolve(args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("resolved %s with %s\n", args[0], args[1])
			return nil
		})
	},
}
