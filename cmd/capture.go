package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/deepguide-ai/dg/internal/assets"
	"github.com/deepguide-ai/dg/internal/recorder"
	"github.com/spf13/cobra"
)

var (
	captureTitleFlag       string
	captureNameFlag        string
	captureOverwriteFlag   bool
	captureCommandFlag     string
	captureNoClipboardFlag bool
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Record a new demo",
	Long: `Record a terminal session with asciinema and store it as a demo.

Without --command an interactive shell is recorded: run the commands you want
to show and press Ctrl+D when finished. The last command typed becomes the
command 'dg validate' replays. Recordings that wait for input are marked
manual-only.

After recording, light and dark SVG images are exported with termsvg and a
markdown snippet is written to .dg/snippets/<name>.md and copied to the
clipboard.

Examples:
  dg capture --title "Show Help"
  dg capture --title "Show Help" --command "mycli --help"
  dg capture --title "Show Help" --overwrite`,
	Args: cobra.NoArgs,
	RunE: runCapture,
}

func init() { //nolint:gochecknoinits // Standard cobra pattern
	addCaptureFlags(captureCmd)
	rootCmd.AddCommand(captureCmd)
}

func addCaptureFlags(c *cobra.Command) {
	c.Flags().StringVarP(&captureTitleFlag, "title", "t", "", "demo title (required)")
	c.Flags().StringVarP(&captureNameFlag, "name", "n", "", "demo name (default: slug of the title)")
	c.Flags().BoolVar(&captureOverwriteFlag, "overwrite", false, "replace an existing demo of the same name")
	c.Flags().StringVarP(&captureCommandFlag, "command", "c", "", "record this command instead of an interactive shell")
	c.Flags().BoolVar(&captureNoClipboardFlag, "no-clipboard", false, "do not copy the snippet to the clipboard")
	_ = c.MarkFlagRequired("title")
}

func runCapture(cmd *cobra.Command, _ []string) error {
	if strings.TrimSpace(captureTitleFlag) == "" {
		return fmt.Errorf("--title is required")
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	rec := a.asciinema()
	if c := rec.Check(cmd.Context()); !c.Available {
		return fmt.Errorf("asciinema is required for recording: %s", c.InstallHint)
	}

	if captureCommandFlag == "" {
		fmt.Fprintf(out, "Recording %q - run your commands, then press Ctrl+D when finished.\n", captureTitleFlag)
	}

	session := &recorder.Session{
		Metadata: recorder.SessionMetadata{
			Title:     captureTitleFlag,
			Name:      captureNameFlag,
			Command:   captureCommandFlag,
			Overwrite: captureOverwriteFlag,
		},
		Recorder: rec,
		Store:    a.store,
		Cols:     a.settings.Capture.Cols,
		Rows:     a.settings.Capture.Rows,
		Stdin:    os.Stdin,
		Stdout:   out,
		Logger:   a.logger,
	}
	result, err := session.Run(cmd.Context())
	if err != nil {
		return err
	}

	if result.Warning != "" {
		fmt.Fprintf(errOut, "warning: %s\n", result.Warning)
	}
	demo := result.Demo
	if demo.Interactive {
		fmt.Fprintf(out, "Interactive prompt detected (%q); %s will need manual verification.\n", result.Signal, demo.Name)
	} else if demo.Command != "" {
		fmt.Fprintf(out, "Validation command: %s\n", demo.Command)
	}

	cfg, err := a.store.Load()
	if err != nil {
		return err
	}
	gen := a.generator(cfg)
	for _, r := range gen.GenerateAll(cmd.Context(), demo.Name, a.settings.Capture.Themes) {
		if r.Warning != "" {
			fmt.Fprintf(errOut, "warning: %s (%s)\n", r.Warning, r.Theme)
		}
	}

	snippet, err := gen.Snippet(&demo, a.settings.Capture.Themes)
	if err != nil {
		return err
	}
	path, err := gen.WriteSnippet(demo.Name, snippet)
	if err != nil {
		return err
	}

	copied := false
	if a.settings.Capture.Clipboard && !captureNoClipboardFlag {
		switch err := assets.CopyToClipboard(snippet); {
		case err == nil:
			copied = true
		case errors.Is(err, assets.ErrClipboardUnsupported):
			a.logger.Debug("clipboard unavailable")
		default:
			fmt.Fprintf(errOut, "warning: %v\n", err)
		}
	}

	msg := fmt.Sprintf("Markdown snippet saved to %s", path)
	if copied {
		msg += " and copied to clipboard"
	}
	fmt.Fprintln(out, msg)
	return nil
}
