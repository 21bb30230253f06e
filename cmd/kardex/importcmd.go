package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kardex-app/kardex/internal/bundle"
	"github.com/kardex-app/kardex/internal/ui"
)

var importLibrary string

var importCmd = &cobra.Command{
	Use:   "import <dir-or-zip>",
	Short: "Import a bundle into the library",
	Long: `Copy a bundle (a directory, or a .zip of one) into the managed
library, so the original stays untouched. Name collisions get a
numeric suffix.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		library := importLibrary
		if library == "" {
			library = viper.GetString(libraryConfigKey)
		}

		res, err := bundle.Import(args[0], library)
		if err != nil {
			exitErr(err)
		}

		fmt.Printf("%s imported %d files to %s\n", ui.RenderOK("✓"), res.FilesCopied, res.Path)
		fmt.Printf("  use it with: kardex --bundle %s ...\n", res.Path)
	},
}

func init() {
	importCmd.Flags().StringVar(&importLibrary, "library", "", "library directory (default from config)")
}
