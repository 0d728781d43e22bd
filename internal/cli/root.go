package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bdahlka1/cec.ai-demo/internal/common"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=...".
var Version = "dev"

// app carries what every subcommand needs once flags and config are resolved.
type app struct {
	cfgFile string
	v       *viper.Viper
	cfg     *common.Config
	logger  *slog.Logger
}

// flagKeys binds command-line flags to configuration keys. A flag overrides env and file.
var flagKeys = map[string]string{
	"rules":      "scoring.rules_path",
	"threshold":  "scoring.threshold",
	"log-level":  "log.level",
	"log-format": "log.format",
	"template":   "output.template_path",
	"out-dir":    "output.dir",
	"location":   "output.location",
	"archive":    "archive.dsn",
	"pdftotext":  "extract.pdftotext",
	"max-pages":  "extract.max_pages",
	"ocr":        "extract.ocr",
	"data-dir":   "harness.data_dir",
	"manifest":   "harness.manifest",
	"workers":    "harness.workers",
}

// NewRootCmd builds the bidscore command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "bidscore",
		Short: "Keyword-rule bid scorecard with a GO/NO-GO recommendation",
		Long: `bidscore scores procurement specification documents against a calibrated rubric of
keyword rules and fills in a Go/No-Go scorecard. Every awarded point carries the page and
line that triggered it.

Matching is literal, case-insensitive substring search. The evaluate command measures the
rubric against historical human-scored projects.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.bidscore/config.yaml)")
	pf.String("rules", "", "rule set: calibration .xlsx or .yaml/.json rule file")
	pf.Float64("threshold", 0, "GO threshold")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: text or json")
	pf.String("archive", "", "run history: sqlite file path or postgres:// URL")

	root.AddCommand(
		newScoreCmd(a),
		newBatchCmd(a),
		newWatchCmd(a),
		newEvaluateCmd(a),
		newRulesCmd(a),
		newHistoryCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command tree with ctx.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func (a *app) init(cmd *cobra.Command) error {
	v, err := common.NewViper(a.cfgFile)
	if err != nil {
		return common.ConfigurationError("load config", err)
	}
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok && f.Changed && bindErr == nil {
			bindErr = v.BindPFlag(key, f)
		}
	})
	if bindErr != nil {
		return fmt.Errorf("bind flags: %w", bindErr)
	}

	cfg, err := common.ConfigFromViper(v)
	if err != nil {
		return err
	}

	a.v = v
	a.cfg = cfg
	a.logger = common.NewLogger(cfg.Log, cmd.ErrOrStderr())
	slog.SetDefault(a.logger)

	if used := v.ConfigFileUsed(); used != "" {
		a.logger.Debug("config.loaded", "path", used)
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "bidscore %s\n", Version)
		},
	}
}
