package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kingrea/resume-builder/internal/config"
	"github.com/kingrea/resume-builder/internal/latex"
	"github.com/kingrea/resume-builder/internal/outcome"
	"github.com/kingrea/resume-builder/internal/procexec"
	"github.com/kingrea/resume-builder/internal/session"
	"github.com/kingrea/resume-builder/internal/tailor"
)

func newFilesCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "files",
		Short: "List the resume's source files and the default selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, sess, err := openSession(flags)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range sess.Files() {
				mark := " "
				if sess.IsSelected(name) {
					mark = "x"
				}
				suffix := ""
				if name == sess.MainFile() {
					suffix = "  (main)"
				}
				fmt.Fprintf(out, "[%s] %s%s\n", mark, name, suffix)
			}
			if len(sess.Files()) == 0 {
				fmt.Fprintf(out, "No source files in %s\n", cfg.ResumeDir())
			}
			return nil
		},
	}
}

func newTailorCmd(flags *globalFlags, runner procexec.Runner) *cobra.Command {
	var (
		jobPath      string
		instructions string
		files        []string
	)
	cmd := &cobra.Command{
		Use:   "tailor",
		Short: "Ask the assistant to tailor the selected files to a job description",
		Long: `Tailor rewrites the selected LaTeX files in place. The job description is
read from --job, or from stdin when --job is "-".

Example:
  resume-builder tailor --job jd.txt --instructions "Emphasize leadership"
  pbpaste | resume-builder tailor --job - --files resume.tex`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, sess, err := openSession(flags)
			if err != nil {
				return err
			}
			job, err := readJob(cmd.InOrStdin(), jobPath)
			if err != nil {
				return err
			}
			if len(files) > 0 {
				sess.SetSelection(files)
			}
			release, err := sess.Begin(session.ActionTailor)
			if err != nil {
				return err
			}
			defer release()

			journal := openJournal(cfg, sess)
			orch := tailor.New(runner)
			assistant := cfg.Assistant()
			orch.Command = assistant.Command
			orch.AllowedTools = assistant.AllowedTools
			orch.Timeout = assistant.Timeout

			req := tailor.Request{
				Dir:            sess.Dir(),
				Selection:      sess.Selection(),
				JobDescription: job,
				Instructions:   instructions,
			}
			journal.Info("Tailor · %d file(s): %s", len(req.Selection), strings.Join(req.Selection, ", "))
			res, err := orch.Run(cmd.Context(), req)
			if err != nil {
				journal.Error("%v", err)
				return withOutput(cmd, err)
			}
			journal.Info("Tailored in %s", res.Duration)
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(res.Output))
			return nil
		},
	}
	cmd.Flags().StringVarP(&jobPath, "job", "j", "", `job description file, or "-" for stdin`)
	cmd.Flags().StringVarP(&instructions, "instructions", "i", "", "additional instructions for the assistant")
	cmd.Flags().StringSliceVarP(&files, "files", "f", nil, "files the assistant may edit (default: all but style files)")
	_ = cmd.MarkFlagRequired("job")
	return cmd
}

func newCompileCmd(flags *globalFlags, runner procexec.Runner) *cobra.Command {
	var (
		mainFile string
		save     bool
	)
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile the main file with pdflatex",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, sess, err := openSession(flags)
			if err != nil {
				return err
			}
			if mainFile != "" {
				if err := sess.SetMainFile(mainFile); err != nil {
					return err
				}
			}
			compilerPath, ok := cfg.Compiler()
			if !ok {
				return outcome.New("compile", outcome.ErrToolNotFound, "pdflatex not found; install TinyTeX or MacTeX")
			}
			release, err := sess.Begin(session.ActionCompile)
			if err != nil {
				return err
			}
			defer release()

			journal := openJournal(cfg, sess)
			journal.Info("Compile · %s with %s", sess.MainFile(), compilerPath)
			compiler := latex.NewCompiler(runner)
			compiler.Timeout = cfg.CompilerTimeout()
			res, err := compiler.Compile(cmd.Context(), sess.Dir(), sess.MainFile(), compilerPath)
			if err != nil {
				journal.Error("%v", err)
				return withOutput(cmd, err)
			}
			sess.SetArtifact(res.ArtifactPath)

			payload, err := latex.Present(res.ArtifactPath)
			if err != nil {
				return err
			}
			journal.Info("Compiled: %s", payload.Name)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Compiled %s\n", payload.Message)
			if save {
				target, err := payload.SaveTo(cfg.DownloadDir())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Saved %s\n", target)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&mainFile, "main", "m", "", "entry point (default: first .tex file)")
	cmd.Flags().BoolVar(&save, "save", false, "copy the PDF into the download directory")
	return cmd
}

func newOpenCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "open",
		Short: "Open the resume directory in the system file manager",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			return latex.OpenInFileManager(cfg.ResumeDir())
		},
	}
}

func openSession(flags *globalFlags) (*config.Config, *session.Session, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, nil, err
	}
	sess := session.New(cfg.ResumeDir())
	if _, err := sess.Scan(cfg.ResumeDir(), cfg.SourceExtensions(), cfg.IsProtected); err != nil {
		return nil, nil, err
	}
	return cfg, sess, nil
}

func readJob(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read job description: %w", err)
	}
	return string(data), nil
}

// withOutput prints the captured process output before the error itself.
func withOutput(cmd *cobra.Command, err error) error {
	if output := outcome.OutputOf(err); output != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), output)
	}
	return err
}
