package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kardex-app/kardex/internal/ui"
)

var docsWatch bool

var docsCmd = &cobra.Command{
	Use:   "docs <patientID>",
	Short: "List a patient's documents",
	Long: `List the files under the patient's documents folder. With --watch,
keep running and report files added, changed, or removed, e.g. by a
scanner dropping images into the folder.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		b, err := openBundle()
		if err != nil {
			exitErr(err)
		}
		defer b.Close()

		subject := args[0]
		docs, err := b.Documents(subject)
		if err != nil {
			exitErr(err)
		}
		if len(docs) == 0 {
			fmt.Println(ui.RenderDim("no documents"))
		}
		for _, d := range docs {
			fmt.Printf("%s  %s\n", d.ModTime.Format("2006-01-02 15:04"), d.Name)
		}

		if !docsWatch {
			return
		}

		w, err := b.NewWatcher()
		if err != nil {
			exitErr(err)
		}
		if err := w.Start(); err != nil {
			exitErr(err)
		}
		defer w.Stop()

		fmt.Println(ui.RenderDim("watching for changes, Ctrl-C to stop..."))

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		for {
			select {
			case event, ok := <-w.Events():
				if !ok {
					return
				}
				if event.Subject != subject {
					continue
				}
				fmt.Printf("%s %s\n", ui.RenderAccent(event.Op.String()), event.Path)
			case err, ok := <-w.Errors():
				if !ok {
					return
				}
				fmt.Fprintf(os.Stderr, "%s watch error: %v\n", ui.RenderWarn("!"), err)
			case <-sigCh:
				return
			}
		}
	},
}

func init() {
	docsCmd.Flags().BoolVarP(&docsWatch, "watch", "w", false, "watch for document changes")
}
