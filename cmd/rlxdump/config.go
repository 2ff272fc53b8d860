package main

import (
	"fmt"
	"strings"

	"github.com/franz/relaxis-reader/internal/relaxis"
	"github.com/franz/relaxis-reader/internal/report"
	"github.com/franz/relaxis-reader/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var envKeyReplacer = strings.NewReplacer("-", "_")

// GetConfigString retrieves a string config value with proper precedence:
// 1. Command-line flag (if bound and set)
// 2. Environment variable (RLX_*)
// 3. Config file
// 4. Default value
func GetConfigString(key string, defaultValue string) string {
	val := viper.GetString(key)
	if val == "" {
		return defaultValue
	}
	return val
}

// GetConfigInt retrieves an int config value with proper precedence
func GetConfigInt(key string, defaultValue int) int {
	val := viper.GetInt(key)
	if val == 0 {
		return defaultValue
	}
	return val
}

// bindFlags binds command-local flags to viper keys of the same name
func bindFlags(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		viper.BindPFlag(name, cmd.Flags().Lookup(name))
	}
}

// configPrecision parses --precision / RLX_PRECISION
func configPrecision() (relaxis.Precision, error) {
	p, err := relaxis.ParsePrecision(GetConfigString("precision", "double"))
	if err != nil {
		return relaxis.Double, fmt.Errorf("%w: %v", util.ErrInvalidConfig, err)
	}
	return p, nil
}

// configFormat parses --format / RLX_FORMAT
func configFormat() (report.Format, error) {
	f, err := report.ParseFormat(GetConfigString("format", string(report.FormatCSV)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", util.ErrInvalidConfig, err)
	}
	return f, nil
}
