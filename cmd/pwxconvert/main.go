package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	pwxconv "github.com/lucasjlepore/pwx-converter"
	"github.com/lucasjlepore/pwx-converter/pipeline"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "pwxconvert failed: %v\n", err)
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:           "pwxconvert",
		Short:         "Convert PWX and FIT workouts to GPX or TCX",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "YAML config file (optional)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override log level: debug|info|warn|error")

	root.AddCommand(newConvertCmd(&flags))
	root.AddCommand(newLapsCmd(&flags))
	return root
}

func loadConverter(flags *globalFlags) (*pipeline.Converter, error) {
	cfg := pipeline.DefaultConfig()
	if strings.TrimSpace(flags.configPath) != "" {
		loaded, err := pipeline.LoadConfig(flags.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	logger, err := pipeline.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		return nil, err
	}
	return pipeline.New(cfg, logger)
}

func newConvertCmd(flags *globalFlags) *cobra.Command {
	var (
		target     string
		outDir     string
		overwrite  bool
		copySource bool
	)

	cmd := &cobra.Command{
		Use:   "convert <input.pwx|input.fit>",
		Short: "Convert a workout file and write the document, lap table, notes and manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := pipeline.ParseFormat(target)
			if err != nil {
				return err
			}
			if strings.TrimSpace(outDir) == "" {
				return fmt.Errorf("--out is required")
			}
			c, err := loadConverter(flags)
			if err != nil {
				return err
			}
			result, err := c.Run(pipeline.Options{
				SourcePath: args[0],
				OutDir:     outDir,
				Target:     format,
				Overwrite:  overwrite,
				CopySource: copySource,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "pwxconvert complete\n")
			_, _ = fmt.Fprintf(out, "Output dir:          %s\n", result.OutputDir)
			_, _ = fmt.Fprintf(out, "document:            %s\n", result.DocumentPath)
			if result.LapTablePath != "" {
				_, _ = fmt.Fprintf(out, "lap table:           %s\n", result.LapTablePath)
			}
			_, _ = fmt.Fprintf(out, "conversion notes:    %s\n", result.NotesPath)
			_, _ = fmt.Fprintf(out, "manifest.json:       %s\n", result.ManifestPath)
			if result.SourceCopyPath != "" {
				_, _ = fmt.Fprintf(out, "source copy:         %s\n", result.SourceCopyPath)
			}
			for _, w := range result.Warnings {
				_, _ = fmt.Fprintf(out, "warning:             %s\n", w)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "to", string(pipeline.FormatTCX), "target format: gpx|tcx")
	cmd.Flags().StringVar(&outDir, "out", "", "output directory")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "allow writing into a non-empty output directory")
	cmd.Flags().BoolVar(&copySource, "copy-source", false, "copy the source file into the output directory")
	return cmd
}

func newLapsCmd(flags *globalFlags) *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "laps <input.pwx|input.fit>",
		Short: "Print the lap breakdown a conversion would produce",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := pipeline.ParseFormat(target)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read source file: %w", err)
			}
			c, err := loadConverter(flags)
			if err != nil {
				return err
			}
			conv, err := c.Convert(data, format)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), pwxconv.BuildConversionNotes(string(format), conv.Workouts))
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "to", string(pipeline.FormatTCX), "target format used for lap rules: gpx|tcx")
	return cmd
}
