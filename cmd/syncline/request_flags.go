package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"syncline/internal/align"
	"syncline/internal/config"
	"syncline/internal/features"
	"syncline/internal/syncer"
)

// engineFlags are the per-request overrides shared by align and batch.
// A flag left at its default defers to the configuration file.
type engineFlags struct {
	method    string
	preset    string
	threshold float64
	maxOffset int64
	window    int
	hop       int
	noiseGate float64
	drift     bool
	timeout   time.Duration
}

func (f *engineFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.method, "method", "m", "", "Feature method: energy, flux, chroma, mfcc, or hybrid")
	flags.StringVarP(&f.preset, "preset", "p", "", "Named preset supplying base parameters")
	flags.Float64Var(&f.threshold, "threshold", 0, "Minimum acceptable confidence in [0,1]")
	flags.Int64Var(&f.maxOffset, "max-offset", 0, "Correlation search bound in samples (0 = unbounded)")
	flags.IntVar(&f.window, "window", 0, "Analysis window size in samples")
	flags.IntVar(&f.hop, "hop", 0, "Hop size in samples")
	flags.Float64Var(&f.noiseGate, "noise-gate", 0, "Silence threshold in dBFS")
	flags.BoolVar(&f.drift, "drift", false, "Detect and correct clock drift")
	flags.DurationVar(&f.timeout, "timeout", 0, "Operation deadline (0 = config default)")
}

// request resolves flags against the loaded configuration into a sync
// request without buffers. Explicitly set flags win over both the
// config file and any preset.
func (f *engineFlags) request(cmd *cobra.Command, cfg *config.Config) (syncer.Request, error) {
	alignCfg := cfg.AlignConfig()
	if f.preset != "" {
		preset, err := align.PresetByName(f.preset)
		if err != nil {
			return syncer.Request{}, err
		}
		alignCfg = preset.Config
	}

	flags := cmd.Flags()
	if flags.Changed("threshold") {
		alignCfg.ConfidenceThreshold = f.threshold
	}
	if flags.Changed("max-offset") {
		alignCfg.MaxOffsetSamples = f.maxOffset
	}
	if flags.Changed("window") {
		alignCfg.WindowSize = f.window
	}
	if flags.Changed("hop") {
		alignCfg.HopSize = f.hop
	}
	if flags.Changed("noise-gate") {
		alignCfg.NoiseGateDB = f.noiseGate
	}
	if flags.Changed("drift") {
		alignCfg.DriftCorrection = f.drift
	}

	method := cfg.Method()
	if f.method != "" {
		parsed, err := features.ParseMethod(f.method)
		if err != nil {
			return syncer.Request{}, fmt.Errorf("resolve method: %w", err)
		}
		method = parsed
	}

	timeout := f.timeout
	if !flags.Changed("timeout") && cfg.Engine.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.Engine.TimeoutSeconds) * time.Second
	}

	return syncer.Request{
		Method:  method,
		Config:  alignCfg,
		Timeout: timeout,
	}, nil
}
