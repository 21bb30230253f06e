// kardex is a local chart manager for a small pediatric practice: one
// bundle directory per practice holding a SQLite database of patients
// and their clinical form records, plus scanned documents.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
