// cmd/resume-builder/main.go
//
// This is the entry point for resume-builder.
//
// Running `resume-builder` with no subcommand opens the TUI. The subcommands
// drive the same tailor and compile steps without it, which is handy from
// scripts or when the terminal can't host a full-screen program.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kingrea/resume-builder/internal/config"
	"github.com/kingrea/resume-builder/internal/logbook"
	"github.com/kingrea/resume-builder/internal/procexec"
	"github.com/kingrea/resume-builder/internal/session"
	"github.com/kingrea/resume-builder/internal/tui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(procexec.Exec{}).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// globalFlags are shared by every command.
type globalFlags struct {
	dir        string
	configPath string
}

func newRootCmd(runner procexec.Runner) *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:   "resume-builder",
		Short: "Tailor a LaTeX resume to a job description and compile it",
		Long: `resume-builder asks the claude CLI to rewrite the selected LaTeX files of a
resume so they better match a job description, then compiles the main file
with pdflatex and shows the resulting PDF.

Run without a subcommand to open the interactive terminal UI.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			return runTUI(cmd.Context(), cfg, runner)
		},
	}
	root.PersistentFlags().StringVarP(&flags.dir, "dir", "d", "", "resume directory (default from config or $"+config.EnvDir+")")
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default <user config dir>/resume-builder/config.yaml)")

	root.AddCommand(
		newFilesCmd(flags),
		newTailorCmd(flags, runner),
		newCompileCmd(flags, runner),
		newOpenCmd(flags),
	)
	return root
}

func loadConfig(flags *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.dir != "" {
		cfg.SetResumeDir(flags.dir)
	}
	return cfg, nil
}

func runTUI(ctx context.Context, cfg *config.Config, runner procexec.Runner) error {
	app, err := tui.NewApp(cfg, tui.WithRunner(runner), tui.WithContext(ctx))
	if err != nil {
		return err
	}
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}

// openJournal returns a logbook tagged with sess, or nil when the cache
// directory can't be created.
func openJournal(cfg *config.Config, sess *session.Session) *logbook.Logbook {
	lb, err := logbook.New(cfg.LogPath())
	if err != nil {
		return nil
	}
	return lb.WithTag(sess.ShortID())
}
