package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tensorplex-labs/fare/internal/dataset"
	"github.com/tensorplex-labs/fare/internal/report"
	"github.com/tensorplex-labs/fare/pkg/api"
	"github.com/tensorplex-labs/fare/pkg/client"
)

// inputFlags are shared by every command that reads a ranking.
type inputFlags struct {
	input         string
	format        string
	rankPositions bool
	descending    bool
	server        string
	output        string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.input, "input", "i", "", "Ranking snapshot (.json, .csv, optionally .zst); - reads stdin")
	fl.StringVar(&f.format, "format", "json", "Snapshot format when reading stdin (json|csv)")
	fl.BoolVar(&f.rankPositions, "rank-positions", false, "Replace scores by their rank positions before scoring")
	fl.BoolVar(&f.descending, "descending", false, "With --rank-positions, rank the highest score first")
	fl.StringVar(&f.server, "server", "", "Evaluate on a fare server at this URL instead of locally")
	fl.StringVarP(&f.output, "output", "o", "text", "Output format (text|json|yaml)")
	_ = cmd.MarkFlagRequired("input")
}

func (f *inputFlags) outputFormat() (report.Format, error) {
	return report.ParseFormat(f.output)
}

// load reads the snapshot named by --input.
func (f *inputFlags) load(cmd *cobra.Command) (*dataset.Snapshot, error) {
	var (
		snap *dataset.Snapshot
		err  error
	)
	if f.input == "-" {
		snap, err = dataset.Decode(cmd.InOrStdin(), dataset.Format(f.format))
	} else {
		snap, err = dataset.Load(f.input)
	}
	if err != nil {
		return nil, fmt.Errorf("load ranking: %w", err)
	}
	if f.rankPositions {
		snap = snap.WithRankPositions(f.descending)
	}
	return snap, nil
}

func (f *inputFlags) rankingInput(snap *dataset.Snapshot) api.RankingInput {
	return api.RankingInput{YTrue: snap.YTrue, YPred: snap.YPred, Groups: snap.Groups}
}

// newClient builds a client for --server from the environment config.
func (a *app) newClient(url string) (*client.Client, error) {
	cc := client.ConfigFromEnv(a.cfg)
	cc.BaseURL = url
	return client.NewClient(cc)
}

// windowing fills unset window and step from the environment config.
func (a *app) windowing(window, step int) (int, int) {
	if window == 0 {
		window = a.cfg.Audit.Window
	}
	if step == 0 {
		step = a.cfg.Audit.Step
	}
	return window, step
}
