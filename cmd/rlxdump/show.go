package main

import (
	"fmt"
	"io"

	"github.com/franz/relaxis-reader/internal/relaxis"
	"github.com/franz/relaxis-reader/internal/util"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show FILE",
	Short: "Show one spectrum with its metadata and fit parameters",
	Long: `Display a single spectrum in a human-readable format.

Shows:
- Circuit, fit state, frequency limits and dates
- Measurement metadata (temperature, voltages, ...)
- Fit parameters with errors and limits
- Datapoints (omega, re, im) with --points

The spectrum defaults to the first spectrum of the selected project.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().StringP("project", "p", "", "project id or name (default: first project)")
	showCmd.Flags().IntP("spectrum", "s", 0, "spectrum id (default: first spectrum of the project)")
	showCmd.Flags().Bool("points", false, "print the datapoints")
	showCmd.Flags().String("precision", "double", "datapoint precision: single or double")
}

func runShow(cmd *cobra.Command, args []string) error {
	bindFlags(cmd, "project", "precision")
	spectrumID, _ := cmd.Flags().GetInt("spectrum")
	showPoints, _ := cmd.Flags().GetBool("points")

	precision, err := configPrecision()
	if err != nil {
		return err
	}

	a, err := openArchive(args[0])
	if err != nil {
		return err
	}
	defer a.Close()

	project, err := selectProject(a, GetConfigString("project", ""))
	if err != nil {
		return err
	}

	if !cmd.Flags().Changed("spectrum") {
		ids, err := a.SpectrumIDs(project)
		if err != nil {
			return fmt.Errorf("failed to list spectra of project %d: %w", project.ID, err)
		}
		spectrumID = ids[0]
	}

	s, err := a.Spectrum(project, spectrumID)
	if err != nil {
		return fmt.Errorf("could not load spectrum %d of project %d: %w", spectrumID, project.ID, err)
	}
	if code := a.LastError(); code != relaxis.CodeSuccess {
		util.WarnLog("Metadata unavailable: %s", relaxis.ErrorString(code))
	}

	params, err := a.FitParameters(project, spectrumID)
	if err != nil {
		util.WarnLog("Fit parameters unavailable: %v", err)
	}

	out := cmd.OutOrStdout()
	printSpectrum(out, project, s)
	printMetadata(out, s)
	printFitParameters(out, params)

	if showPoints {
		arrays, err := relaxis.Float64Arrays(s, precision)
		if err != nil {
			return fmt.Errorf("failed to convert datapoints: %w", err)
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Datapoints (%s precision):\n", precision)
		fmt.Fprintln(out, "omega, re, im")
		for i := range arrays.Re {
			fmt.Fprintf(out, "%g,%g,%g\n", arrays.Omega[i], arrays.Re[i], arrays.Im[i])
		}
	}

	return nil
}

func printSpectrum(out io.Writer, project relaxis.Project, s *relaxis.Spectrum) {
	fmt.Fprintf(out, "Project:   %s (%d)\n", project.Name, project.ID)
	fmt.Fprintf(out, "Spectrum:  %d\n", s.ID)
	fmt.Fprintf(out, "Circuit:   %s\n", s.Circuit)
	fmt.Fprintf(out, "Fitted:    %s", fittedLabel(s))
	if s.Fitted && !s.DateFitted.IsZero() {
		fmt.Fprintf(out, " (%s)", s.DateFitted.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Range:     %g .. %g Hz\n", s.FreqLowerLimit, s.FreqUpperLimit)
	fmt.Fprintf(out, "Added:     %s\n", s.DateAdded.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Points:    %d\n", s.Len())
}

func printMetadata(out io.Writer, s *relaxis.Spectrum) {
	if len(s.Metadata) == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Metadata:")
	for _, m := range s.Metadata {
		tag := ""
		if m.Field() == relaxis.MetaUnknown {
			tag = " (custom)"
		}
		fmt.Fprintf(out, "  %s%s\n", m.Format(), tag)
	}
}

func printFitParameters(out io.Writer, params []relaxis.FitParameter) {
	if len(params) == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Fit parameters:")
	for _, p := range params {
		fmt.Fprintf(out, "  %2d  %-12s %14g ± %-12g [%g, %g]\n",
			p.Index, p.Name, p.Value, p.Error, p.LowerLimit, p.UpperLimit)
	}
}
