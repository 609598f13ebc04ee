package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"

	"github.com/fe64/nnuetrain/internal/dataset"
	"github.com/fe64/nnuetrain/internal/domain"
	"github.com/fe64/nnuetrain/internal/eval"
	"github.com/fe64/nnuetrain/internal/lichess"
	"github.com/fe64/nnuetrain/internal/nnue"
	"github.com/fe64/nnuetrain/internal/pgn"
	"github.com/fe64/nnuetrain/internal/target"
	"github.com/fe64/nnuetrain/internal/trainer"
)

const initialPositionFen = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var errNonFinite = errors.New("network has non-finite parameters")

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	var err = run(os.Args)
	if err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var cli = NewCommandArgs(args)
	var netPath = mapPath(cli.GetString("net", "nnue_weights.bin"))

	var handler = NewCommandHandler()
	handler.Add("train", func() error {
		var ctx, cancel = signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()
		return runTrain(ctx, cli, netPath)
	})
	handler.Add("eval", func() error {
		return runEval(cli.GetString("fen", initialPositionFen), netPath)
	})
	handler.Add("verify", func() error {
		return runVerify(netPath)
	})
	return handler.Execute(cli.CommandName())
}

func runTrain(ctx context.Context, cli *CommandArgs, netPath string) error {
	var trainerConfig = trainer.DefaultConfig()
	trainerConfig.Epochs = cli.GetInt("epochs", trainerConfig.Epochs)
	trainerConfig.BatchSize = cli.GetInt("bs", trainerConfig.BatchSize)
	trainerConfig.LearningRate = float32(cli.GetFloat("lr", float64(trainerConfig.LearningRate)))
	trainerConfig.Seed = int64(cli.GetInt("seed", 0))
	trainerConfig.CheckpointPath = netPath

	var providers []dataset.Provider
	if folder := cli.GetString("pgn", ""); folder != "" {
		var p, err = pgn.NewFolderProvider(mapPath(folder))
		if err != nil {
			return err
		}
		p.Filter.MinPly = cli.GetInt("minply", p.Filter.MinPly)
		p.Filter.SampleRate = cli.GetFloat("sample", p.Filter.SampleRate)
		p.Seed = trainerConfig.Seed
		providers = append(providers, p)
	}
	if path := cli.GetString("epd", ""); path != "" {
		providers = append(providers, &dataset.EpdProvider{FilePath: mapPath(path)})
	}
	if username := cli.GetString("lichess", ""); username != "" {
		var p = lichess.NewProvider(username, cli.GetInt("games", 500))
		p.Query.PerfType = cli.GetString("perf", "")
		p.Query.Rated = cli.GetBool("rated", false)
		p.Client.Token = os.Getenv("LICHESS_TOKEN")
		p.Seed = trainerConfig.Seed
		providers = append(providers, p)
	}
	if len(providers) == 0 {
		return fmt.Errorf("no training data, use -pgn, -epd or -lichess")
	}

	var builder = &dataset.Builder{
		Policy: target.Policy{
			Labeler:  target.DefaultLabeler(),
			Material: eval.NewMaterial(),
			Depth:    cli.GetInt("depth", 0),
		},
		OutputScale: nnue.DefaultConfig().OutputScale,
		Threads:     cli.GetInt("threads", runtime.NumCPU()),
		MaxPosCount: cli.GetInt("dms", 0),
		Mirror:      cli.GetBool("mirror", false),
	}
	if enginePath := cli.GetString("engine", ""); enginePath != "" {
		var store *eval.Store
		if cacheDir := cli.GetString("cache", ""); cacheDir != "" {
			var err error
			store, err = eval.OpenStore(mapPath(cacheDir))
			if err != nil {
				return err
			}
			defer store.Close()
		}
		builder.NewEvaluator = func(ctx context.Context) (target.Evaluator, error) {
			var engine, err = eval.NewUciEngine(ctx, mapPath(enginePath))
			if err != nil {
				return nil, err
			}
			if store == nil {
				return engine, nil
			}
			return eval.NewCachedEvaluator(engine, store), nil
		}
	}

	var runConfig = trainer.RunConfig{
		Trainer:         trainerConfig,
		Network:         nnue.DefaultConfig(),
		Builder:         builder,
		ValidationRatio: cli.GetFloat("vr", 0),
		MinSamples:      trainer.DefaultMinSamples,
	}
	if path := cli.GetString("vd", ""); path != "" {
		runConfig.ValidationProviders = []dataset.Provider{&dataset.EpdProvider{FilePath: mapPath(path)}}
	}
	log.Printf("%+v", trainerConfig)
	return trainer.Run(ctx, providers, runConfig)
}

func runEval(fen, netPath string) error {
	var pos, err = domain.NewPositionFromFEN(fen)
	if err != nil {
		return err
	}
	service, err := nnue.NewEvalServiceFromFile(nnue.DefaultConfig(), netPath)
	if err != nil {
		return err
	}
	score, err := service.Evaluate(&pos)
	if err != nil {
		return err
	}
	var material = eval.NewMaterial().Evaluate(&pos)
	fmt.Println(pos.String())
	fmt.Printf("nnue %v material %v (white's point of view)\n", score, material)
	return nil
}

func runVerify(netPath string) error {
	var cfg = nnue.DefaultConfig()
	var net, err = nnue.LoadFile(cfg, netPath)
	if err != nil {
		return err
	}
	if !net.IsFinite() {
		return fmt.Errorf("%w %v", errNonFinite, netPath)
	}
	fmt.Printf("%v ok: %v parameters, %v bytes\n", netPath, cfg.ParamCount(), cfg.ByteSize())
	return nil
}
