package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nrosenstein/git-profile/internal/gitconfig"
	"github.com/nrosenstein/git-profile/internal/profile"
)

var version = "1.0.0"

var showDiff bool

var rootCmd = &cobra.Command{
	Use:   "git-profile [profile]",
	Short: "Switch between Git config profiles",
	Long: `git-profile switches the current repository between named sets of
configuration overrides ("profiles").

Profiles are defined in the global git config as sections prefixed with the
profile name:

	[Work.user]
		email = me@work.example
		signingkey = ABCD1234

Running "git-profile Work" applies those keys to the repository's local
config as [user] email/signingkey; switching to "default" removes every key
any profile defines. Without an argument all profiles are listed, the active
one marked with an asterisk.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		gitDir, err := gitconfig.FindGitDir(".")
		if err != nil {
			return err
		}

		store := gitconfig.NewStore(gitDir)
		if err := store.Load(); err != nil {
			return err
		}

		table := profile.Extract(store.Global())

		if len(args) == 0 {
			fmt.Print(formatList(table.Names(), table.Detect(store.Local())))

			return nil
		}

		return switchTo(store, table, args[0])
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("git-profile %s\n", version)
	},
}

func switchTo(store *gitconfig.Store, table *profile.Table, name string) error {
	changes, err := table.Switch(store.Local(), name)
	if err != nil {
		return err
	}

	if len(changes) > 0 {
		if err := store.Flush(); err != nil {
			return err
		}
	}

	// report the profile under its canonical spelling
	p, _ := table.Lookup(name)
	fmt.Printf("Switched to profile %q.\n", p.Name)

	if showDiff && len(changes) > 0 {
		fmt.Print(changes.Render())
	}

	return nil
}

func formatList(names []string, active string) string {
	var b strings.Builder
	for _, name := range names {
		marker := " "
		if name == active {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s %s\n", marker, name)
	}

	return b.String()
}

func init() {
	rootCmd.Flags().BoolVar(&showDiff, "diff", false, "Print the applied changes after switching")
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
