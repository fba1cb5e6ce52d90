package cli

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sentra-labs/installer/internal/branding"
	"github.com/sentra-labs/installer/internal/deps"
	"github.com/sentra-labs/installer/internal/manifest"
	"github.com/sentra-labs/installer/internal/updater"
)

var (
	installTarget string
	installForce  bool
	installYes    bool
)

var installCmd = &cobra.Command{
	Use:     "install <instance>",
	Aliases: []string{"update"},
	Short:   "Install or update an instance",
	Long: `Install an instance into the target directory, or bring an existing
installation up to the newest published version. Only files that are new,
changed, or removed in the repository are touched; everything downloaded is
verified against the published digest before and after it lands on disk.`,
	Args: cobra.ExactArgs(1),
	RunE: runInstall,
}

func init() {
	installCmd.Flags().StringVarP(&installTarget, "target", "t", "", "Target installation directory (required)")
	installCmd.Flags().BoolVar(&installForce, "force", false, "Skip the dependency check")
	installCmd.Flags().BoolVarP(&installYes, "yes", "y", false, "Skip confirmation prompt")
	installCmd.MarkFlagRequired("target")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	info, err := os.Stat(installTarget)
	if err != nil {
		return fmt.Errorf("target directory %s does not exist", installTarget)
	}
	if !info.IsDir() {
		return fmt.Errorf("target %s is not a directory", installTarget)
	}

	client, err := newRepoClient("")
	if err != nil {
		return err
	}

	repository, err := client.Repository()
	if err != nil {
		return fmt.Errorf("fetching repository manifest: %w", err)
	}

	instanceID, err := matchInstance(repository.Instances, args[0])
	if err != nil {
		return err
	}
	client.SetInstance(instanceID)

	inst, err := client.Instance()
	if err != nil {
		return fmt.Errorf("fetching instance manifest: %w", err)
	}

	ref := repository.Instances[instanceID]
	fmt.Fprintf(out, "Installing %s (%s) version %s into %s.\n",
		ref.Name, instanceID, inst.Identity(), installTarget)

	if installForce {
		fmt.Fprintln(out, "Skipping dependency check (--force).")
	} else {
		checker := &deps.Checker{Out: out}
		if err := checker.Check(inst.Dependencies); err != nil {
			return fmt.Errorf("dependency check failed: %w", err)
		}
	}

	if !installYes {
		fmt.Fprint(out, "? Proceed with installation? (Y/n) ")
		scanner := bufio.NewScanner(os.Stdin)
		if scanner.Scan() {
			answer := strings.TrimSpace(strings.ToLower(scanner.Text()))
			if answer != "" && answer != "y" && answer != "yes" {
				fmt.Fprintln(out, "Installation cancelled.")
				return nil
			}
		}
	}

	u := updater.New(client, installTarget, updater.WithProgress(out))
	if err := u.Update(); err != nil {
		fmt.Fprintf(out, "Installation failed. The installation is incomplete; running '%s install %s' again will resume it.\n",
			branding.CLIName(), instanceID)
		return err
	}

	fmt.Fprintf(out, "✓ %s is up to date at version %s.\n", ref.Name, inst.Identity())
	return nil
}

// matchInstance resolves the operator-supplied name to a repository
// instance ID, case-insensitively.
func matchInstance(instances map[string]manifest.InstanceRef, wanted string) (string, error) {
	if _, ok := instances[wanted]; ok {
		return wanted, nil
	}

	var ids []string
	for id := range instances {
		if strings.EqualFold(id, wanted) {
			return id, nil
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return "", fmt.Errorf("instance %q is not published in the repository (available: %s)",
		wanted, strings.Join(ids, ", "))
}
