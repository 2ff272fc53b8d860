package main

import (
	"fmt"

	"github.com/franz/relaxis-reader/internal/relaxis"
	"github.com/franz/relaxis-reader/internal/util"
	"github.com/spf13/cobra"
)

// Exit statuses of the dump command
const (
	exitUsage    = 1
	exitOpen     = 2
	exitSpectra  = 3
	exitProjects = 4
)

var dumpCmd = &cobra.Command{
	Use:   "dump FILE",
	Short: "Print the first spectrum of the first project",
	Long: `Open an archive and print, for its first project:
- every spectrum id
- the datapoints (omega, re, im) of the first spectrum
- the fit parameters of that spectrum

Exit status is 2 when the file cannot be opened, 3 when the project has no
loadable spectra, and 4 when there are no projects or no fit parameters.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return withExitCode(exitUsage, fmt.Errorf("usage: %s", cmd.UseLine()))
		}
		return nil
	},
	RunE: runDump,
}

func init() {
	rootCmd.AddCommand(dumpCmd)
}

func runDump(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	path := args[0]

	a, err := openArchive(path)
	if err != nil {
		return withExitCode(exitOpen, err)
	}
	defer a.Close()

	projects, err := a.Projects()
	if err != nil {
		return withExitCode(exitProjects,
			fmt.Errorf("file contains no projects: %s: %w", relaxis.ErrorString(a.LastError()), err))
	}
	if len(projects) == 0 {
		return withExitCode(exitProjects, fmt.Errorf("file contains no projects: %w", util.ErrNotFound))
	}
	project := projects[0]

	ids, err := a.SpectrumIDs(project)
	if err != nil {
		return withExitCode(exitSpectra,
			fmt.Errorf("no spectra in project %d: %s: %w", project.ID, relaxis.ErrorString(a.LastError()), err))
	}
	for _, id := range ids {
		fmt.Fprintf(out, "PROJECT: %d ID: %d\n", project.ID, id)
	}

	spectrum, err := a.Spectrum(project, ids[0])
	if err != nil {
		return withExitCode(exitSpectra,
			fmt.Errorf("could not load spectrum for %d %d: %s: %w", project.ID, ids[0], relaxis.ErrorString(a.LastError()), err))
	}
	fmt.Fprintf(out, "Spectrum for PROJECT: %d ID: %d\nomega, re, im\n", project.ID, ids[0])
	for _, dp := range spectrum.Datapoints {
		fmt.Fprintf(out, "%f,%f,%f\n", dp.Omega, dp.Re, dp.Im)
	}

	params, err := a.FitParameters(project, ids[0])
	if err != nil {
		return withExitCode(exitProjects,
			fmt.Errorf("could not get parameters for project %d spectrum %d: %s: %w", project.ID, ids[0], relaxis.ErrorString(a.LastError()), err))
	}
	for _, p := range params {
		fmt.Fprintf(out, "Parameter %d: Name: %s Value: %f Error: %f\n", p.Index, p.Name, p.Value, p.Error)
	}

	return nil
}
