package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/6801318d8d/proquest-dl/internal/config"
	"github.com/6801318d8d/proquest-dl/internal/pipeline"
	"github.com/6801318d8d/proquest-dl/internal/profile"
	"github.com/6801318d8d/proquest-dl/internal/session"
	"github.com/6801318d8d/proquest-dl/internal/workdir"
)

var (
	continueRun bool
	issueYear   int
	issueMonth  int
	issueIndex  int
)

var downloadCmd = &cobra.Command{
	Use:   "download <publication-id>",
	Short: "Download one issue of a publication as a single PDF",
	Long: `Download every article of a publication's issue and reassemble them
into one page-accurate PDF.

Without --year and --month the latest available issue is downloaded.
The command pauses for login and bot challenges; press Enter at the
prompt once they are cleared in your browser session.

Known publications:
  41716  The Economist
  35850  MIT Technology Review

Examples:
  proquest-dl download 41716
  proquest-dl download 41716 --year 2023 --month 9
  proquest-dl download 35850 --year 2023 --month 7 --issue 1
  proquest-dl download 41716 --continue   # resume an interrupted run`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		// liveConfig layers the --outdir flag over the current config,
		// surviving hot reloads.
		liveConfig := func() *config.Config {
			return overlayOutputDir(cfgManager.Get(), outputDir)
		}
		cfg := liveConfig()

		sel := pipeline.IssueSelection{Year: issueYear, Month: issueMonth, Index: issueIndex}
		if err := sel.Validate(); err != nil {
			return err
		}

		prof, err := profile.ForPublication(args[0], profile.Options{
			MITTRCoverURL: cfg.Covers.MITTechnologyReview,
		})
		if err != nil {
			return err
		}

		run, err := workdir.New(tmpDir)
		if err != nil {
			return err
		}
		if err := run.EnsureExists(continueRun); err != nil {
			return err
		}

		operator := session.ConsoleOperator{In: os.Stdin, Out: os.Stderr}
		sess, err := session.NewHTTP(session.Options{
			UserAgent: cfg.Aggregator.UserAgent,
			Timeout:   time.Duration(cfg.Aggregator.TimeoutSeconds) * time.Second,
			Operator:  operator,
			Logger:    logger,
		})
		if err != nil {
			return err
		}

		// Politeness bounds are read live, so edits to the config file
		// take effect between article downloads.
		cfgManager.WatchConfig()
		cfgManager.OnChange(func(c *config.Config) {
			logger.Info("configuration reloaded",
				"min_delay", c.Politeness.MinDelaySeconds,
				"max_delay", c.Politeness.MaxDelaySeconds)
		})

		p := &pipeline.Pipeline{
			Run:       run,
			Session:   sess,
			Operator:  operator,
			Profile:   prof,
			Config:    liveConfig,
			Selection: sel,
			Logger:    logger,
		}
		return p.Execute(ctx)
	},
}

// overlayOutputDir returns base with dir applied as the output
// directory. The result is a copy; the manager's config is shared with
// the reload goroutine and must not be written to.
func overlayOutputDir(base *config.Config, dir string) *config.Config {
	c := *base
	if dir != "" {
		c.OutputDir = dir
	}
	return &c
}

func init() {
	downloadCmd.Flags().BoolVar(&continueRun, "continue", false, "resume an interrupted run from its working directory")
	downloadCmd.Flags().IntVar(&issueYear, "year", 0, "issue year (0 = latest issue)")
	downloadCmd.Flags().IntVar(&issueMonth, "month", 0, "issue month (0 = latest issue)")
	downloadCmd.Flags().IntVar(&issueIndex, "issue", 0, "issue of the month, newest first (0 = most recent)")

	rootCmd.AddCommand(downloadCmd)
}
