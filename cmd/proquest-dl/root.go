package main

import (
	"github.com/spf13/cobra"

	"github.com/6801318d8d/proquest-dl/internal/config"
	"github.com/6801318d8d/proquest-dl/version"
)

var (
	cfgFile   string
	tmpDir    string
	outputDir string

	cfgManager *config.Manager
)

var rootCmd = &cobra.Command{
	Use:   "proquest-dl",
	Short: "Download complete periodical issues from ProQuest as a single PDF",
	Long: `proquest-dl downloads every article PDF of a periodical issue from
the ProQuest aggregator and reassembles them into one page-accurate
replica of the printed issue.

The pipeline includes:
  - Issue scraping with a manual checkpoint for login and captchas
  - Polite, resumable article downloads
  - Trailing copyright page and crop box removal
  - Page-exact reassembly with blank filler pages and a cover
  - Navigation bookmarks and lossy compression`,
	Version: version.GitRelease,

	// main prints the final error itself.
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.proquest-dl/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&tmpDir, "tmpdir", "", "working directory for intermediate files (default: ./proquest-dl-temp)",
	)
	rootCmd.PersistentFlags().StringVar(
		&outputDir, "outdir", "", "directory for the final PDF (default: current directory)",
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cm, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfgManager = cm
		return nil
	}

	rootCmd.AddCommand(versionCmd)
}
