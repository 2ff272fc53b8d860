package main

import (
	"fmt"

	"github.com/franz/relaxis-reader/internal/relaxis"
	"github.com/franz/relaxis-reader/internal/util"
	"github.com/spf13/cobra"
)

var spectraCmd = &cobra.Command{
	Use:   "spectra FILE",
	Short: "List the spectra of a project",
	Long: `List the spectrum ids of a project.

The project is selected with --project (id or name) and defaults to the
first project of the archive. With --details every spectrum is loaded and
its circuit, fit state and datapoint count are shown.`,
	Args: cobra.ExactArgs(1),
	RunE: runSpectra,
}

func init() {
	rootCmd.AddCommand(spectraCmd)

	spectraCmd.Flags().StringP("project", "p", "", "project id or name (default: first project)")
	spectraCmd.Flags().Bool("details", false, "load each spectrum and show its summary")
}

func runSpectra(cmd *cobra.Command, args []string) error {
	bindFlags(cmd, "project")
	details, _ := cmd.Flags().GetBool("details")

	a, err := openArchive(args[0])
	if err != nil {
		return err
	}
	defer a.Close()

	project, err := selectProject(a, GetConfigString("project", ""))
	if err != nil {
		return err
	}

	ids, err := a.SpectrumIDs(project)
	if err != nil {
		return fmt.Errorf("failed to list spectra of project %d: %w", project.ID, err)
	}

	out := cmd.OutOrStdout()
	if !details {
		for _, id := range ids {
			fmt.Fprintf(out, "PROJECT: %d ID: %d\n", project.ID, id)
		}
		return nil
	}

	fmt.Fprintf(out, "%6s  %-20s  %-6s  %6s  %s\n", "ID", "CIRCUIT", "FITTED", "POINTS", "ADDED")
	for _, id := range ids {
		s, err := a.Spectrum(project, id)
		if err != nil {
			util.ErrorLog("Spectrum %d: %v", id, err)
			continue
		}
		fmt.Fprintf(out, "%6d  %-20s  %-6s  %6d  %s\n",
			s.ID, s.Circuit, fittedLabel(s), s.Len(), s.DateAdded.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func fittedLabel(s *relaxis.Spectrum) string {
	if s.Fitted {
		return "yes"
	}
	return "no"
}
