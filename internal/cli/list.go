package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all instances published in the repository",
	Long: `Fetch the repository manifest and show every published instance together
with its newest version and dependency advisories.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listCmd)
}

// listEntry represents one published instance for display.
type listEntry struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Version     string   `json:"version"`
	Deps        []string `json:"dependencies,omitempty"`
	Description string   `json:"description"`
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := newRepoClient("")
	if err != nil {
		return err
	}

	repository, err := client.Repository()
	if err != nil {
		return fmt.Errorf("fetching repository manifest: %w", err)
	}

	ids := make([]string, 0, len(repository.Instances))
	for id := range repository.Instances {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	entries := make([]listEntry, 0, len(ids))
	for _, id := range ids {
		ref := repository.Instances[id]
		entry := listEntry{
			ID:          id,
			Name:        ref.Name,
			Type:        ref.Type,
			Description: ref.Description,
		}

		client.SetInstance(id)
		inst, err := client.Instance()
		if err != nil {
			entry.Version = "?"
		} else {
			entry.Version = inst.Identity().String()
			for _, dep := range inst.Dependencies.Pip {
				entry.Deps = append(entry.Deps, dep.Packet)
			}
			for _, dep := range inst.Dependencies.Other {
				entry.Deps = append(entry.Deps, dep.Import)
			}
		}

		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "The repository publishes no instances.")
		return nil
	}

	if listJSON {
		return printListJSON(cmd, entries)
	}
	return printListTable(cmd, entries)
}

func printListTable(cmd *cobra.Command, entries []listEntry) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tVERSION\tDEPENDENCIES\tDESCRIPTION")
	for _, e := range entries {
		deps := "-"
		if len(e.Deps) > 0 {
			deps = strings.Join(e.Deps, ", ")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", e.ID, e.Name, e.Type, e.Version, deps, e.Description)
	}
	return w.Flush()
}

func printListJSON(cmd *cobra.Command, entries []listEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
