package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kardex-app/kardex/internal/bundle"
	"github.com/kardex-app/kardex/internal/forms"
)

var (
	bundleFlag  string
	verboseFlag bool
	formsFlag   string
)

var rootCmd = &cobra.Command{
	Use:   "kardex",
	Short: "Local patient chart manager",
	Long: `Kardex manages patient bundles: self-contained directories holding a
SQLite database of patients and clinical form records, plus scanned
documents per patient.

The active bundle comes from --bundle, the KARDEX_BUNDLE environment
variable, or the "bundle" key in kardex.yaml.`,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configureLogger(verboseFlag)
		return loadFormsFile()
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&bundleFlag, bundleFlagName, "b", "",
		"bundle directory to operate on")
	cobra.CheckErr(viper.BindPFlag(bundleConfigKey, rootCmd.PersistentFlags().Lookup(bundleFlagName)))

	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", false,
		"enable debug logging")

	rootCmd.PersistentFlags().StringVar(&formsFlag, formsFlagName, "",
		"YAML file with additional or replacement form definitions")
	cobra.CheckErr(viper.BindPFlag(formsConfigKey, rootCmd.PersistentFlags().Lookup(formsFlagName)))

	rootCmd.AddCommand(patientCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(formsCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadFormsFile registers form definitions from the configured
// vocabulary file, if any.
func loadFormsFile() error {
	path := viper.GetString(formsConfigKey)
	if path == "" {
		return nil
	}
	if err := forms.LoadAndRegister(path); err != nil {
		return fmt.Errorf("load forms file: %w", err)
	}
	return nil
}

// openBundle opens the configured bundle. Every data command goes
// through here.
func openBundle() (*bundle.Bundle, error) {
	root := viper.GetString(bundleConfigKey)
	if root == "" {
		return nil, fmt.Errorf("no bundle selected: pass --bundle, set %s_BUNDLE, or configure %q in %s",
			envPrefix, bundleConfigKey, configFileName)
	}
	b, err := bundle.Open(root)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func exitErr(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
