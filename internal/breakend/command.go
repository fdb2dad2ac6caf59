package breakend

import (
	"fmt"
	"io"
	"os"

	"github.com/alexiswl/gridss/config"
	"github.com/alexiswl/gridss/internal/evidence"
	"github.com/alexiswl/gridss/internal/metrics"
	"github.com/alexiswl/gridss/internal/refdict"
	"github.com/cheggaaa/pb/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// AssembleCmd assembles the evidence file named by the first argument, or
// read from stdin, and writes calls as JSON lines
func AssembleCmd(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	out, _ := flags.GetString("out")
	bamPath, _ := flags.GetString("bam")
	verbose, _ := flags.GetBool("verbose")
	progress, _ := flags.GetBool("progress")

	v := viper.GetViper()
	config.SetDefaults(v)
	if settings := v.GetString("settings"); settings != "" {
		v.SetConfigFile(settings)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read settings file %s: %w", settings, err)
		}
	}
	cfg, err := config.New(v)
	if err != nil {
		return err
	}

	logger, err := cfg.Logger(verbose)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	var in io.Reader = cmd.InOrStdin()
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open evidence: %w", err)
		}
		defer f.Close()
		in = f
	}
	reads, err := evidence.ReadJSONLines(in)
	if err != nil {
		return err
	}

	var dict refdict.Dictionary = refdict.Indexed{}
	if bamPath != "" {
		f, err := os.Open(bamPath)
		if err != nil {
			return fmt.Errorf("failed to open reference dictionary: %w", err)
		}
		defer f.Close()
		if dict, err = refdict.ReadBAM(f); err != nil {
			return err
		}
	}

	reg := prometheus.NewRegistry()
	runner := &Runner{
		Config:     cfg,
		Dictionary: dict,
		Logger:     logger,
		Metrics:    metrics.New(reg),
	}
	if progress {
		runner.Progress = pb.Full.New(len(reads)).SetWriter(cmd.ErrOrStderr()).Start()
	}

	logger.Info("assembling", zap.Int("reads", len(reads)), zap.Int("k", cfg.Assembly.K))
	calls, err := runner.Run(cmd.Context(), Split(reads))
	if runner.Progress != nil {
		runner.Progress.Finish()
	}
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if out != "" && out != "-" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := WriteCalls(w, calls); err != nil {
		return err
	}

	if cfg.Metrics.Enabled {
		return WriteMetrics(cmd.ErrOrStderr(), reg)
	}
	return nil
}
