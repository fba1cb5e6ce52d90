package cli

import (
	"github.com/spf13/cobra"

	"github.com/sentra-labs/installer/internal/branding"
	"github.com/sentra-labs/installer/internal/config"
	"github.com/sentra-labs/installer/internal/repo"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string

	repositoryURL string
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` talks to the online update repository to install
new instances and keep existing installations current. Every downloaded file
is verified against the digest published in the repository manifest.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&repositoryURL, "repo-url", "",
		"Base URL of the update repository (overrides config)")
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	return rootCmd.Execute()
}

// newRepoClient builds a repository client for an instance using the
// flag-, config-, or branding-provided base URL.
func newRepoClient(instanceID string) (*repo.Client, error) {
	url := repositoryURL
	if url == "" {
		url = config.RepositoryURL()
	}

	var opts []repo.Option
	if d := config.Timeout(); d > 0 {
		opts = append(opts, repo.WithTimeout(d))
	}
	return repo.New(url, instanceID, opts...)
}
