package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/franz/relaxis-reader/internal/relaxis"
	"github.com/franz/relaxis-reader/internal/util"
	"github.com/spf13/cobra"
)

var projectsCmd = &cobra.Command{
	Use:   "projects FILE",
	Short: "List the projects of an archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjects,
}

func init() {
	rootCmd.AddCommand(projectsCmd)
}

func runProjects(cmd *cobra.Command, args []string) error {
	a, err := openArchive(args[0])
	if err != nil {
		return err
	}
	defer a.Close()

	projects, err := a.Projects()
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}
	if len(projects) == 0 {
		util.WarnLog("%s contains no projects", args[0])
		return nil
	}

	width := len("NAME")
	for _, p := range projects {
		width = max(width, len(p.Name))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%6s  %-*s  %-16s  %7s  %s\n", "ID", width, "NAME", "CREATED", "SPECTRA", "AGE")
	for _, p := range projects {
		fmt.Fprintf(out, "%6d  %-*s  %-16s  %7s  %s\n",
			p.ID, width, p.Name, p.Date.Format("2006-01-02 15:04"), spectrumCount(a, p), humanize.Time(p.Date))
	}
	return nil
}

// spectrumCount renders the number of spectra, or "-" when listing fails
func spectrumCount(a *relaxis.Archive, p relaxis.Project) string {
	ids, err := a.SpectrumIDs(p)
	switch {
	case err == nil:
		return humanize.Comma(int64(len(ids)))
	case relaxis.CodeOf(err) == relaxis.CodeNoSpectra:
		return "0"
	default:
		util.DebugLog("Counting spectra of project %d failed: %v", p.ID, err)
		return "-"
	}
}
