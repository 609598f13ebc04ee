package dataset

import (
	"context"
	"errors"
	"io"
	"log"
	"sort"
	"sync"

	"github.com/fe64/nnuetrain/internal/domain"
	"github.com/fe64/nnuetrain/internal/target"
	"golang.org/x/sync/errgroup"
)

// Provider streams dataset items until its source is exhausted.
type Provider interface {
	Load(ctx context.Context, dataset chan<- domain.DatasetItem) error
}

// EvaluatorFactory creates the evaluator of one analysis worker. Evaluators that
// implement io.Closer are closed when the worker finishes.
type EvaluatorFactory func(ctx context.Context) (target.Evaluator, error)

// Builder turns dataset items into training samples.
type Builder struct {
	Policy       target.Policy
	NewEvaluator EvaluatorFactory
	OutputScale  float32
	Threads      int
	MaxPosCount  int
	Mirror       bool
}

type numberedItem struct {
	seq  int
	item domain.DatasetItem
}

type sampleInfo struct {
	seq     int
	samples []domain.Sample
}

// Build runs every provider in order and returns the labelled samples. Repeated
// positions are kept once. The result does not depend on Threads.
func (b *Builder) Build(ctx context.Context, providers ...Provider) ([]domain.Sample, error) {
	log.Println("build dataset started")
	defer log.Println("build dataset finished")

	g, ctx := errgroup.WithContext(ctx)
	loadCtx, cancelLoad := context.WithCancel(ctx)
	defer cancelLoad()

	var items = make(chan domain.DatasetItem, 128)
	var numbered = make(chan numberedItem, 128)
	var results = make(chan sampleInfo, 128)
	var samples []domain.Sample

	g.Go(func() error {
		defer close(items)
		for _, provider := range providers {
			var err = provider.Load(loadCtx, items)
			if err != nil {
				if errors.Is(err, context.Canceled) && ctx.Err() == nil {
					return nil
				}
				return err
			}
		}
		return nil
	})

	g.Go(func() error {
		defer close(numbered)
		return b.mergeDataset(ctx, items, numbered, cancelLoad)
	})

	var threads = max(1, b.Threads)
	var wg = &sync.WaitGroup{}
	for i := 0; i < threads; i++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			return b.analyzeItems(ctx, numbered, results)
		})
	}

	g.Go(func() error {
		wg.Wait()
		close(results)
		return nil
	})

	g.Go(func() error {
		samples = collectSamples(results)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return samples, nil
}

// mergeDataset drops repeated positions and numbers the rest in arrival order.
func (b *Builder) mergeDataset(
	ctx context.Context,
	input <-chan domain.DatasetItem,
	output chan<- numberedItem,
	datasetReady func(),
) error {
	var repeats = make(map[uint64]struct{})
	var positionCount int
	var repeatCount int

	for item := range input {
		if b.MaxPosCount != 0 && positionCount >= b.MaxPosCount {
			datasetReady()
			continue
		}
		item.Key = item.Position.Key()
		if _, found := repeats[item.Key]; found {
			repeatCount++
			continue
		}
		repeats[item.Key] = struct{}{}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case output <- numberedItem{seq: positionCount, item: item}:
		}
		positionCount++
	}
	log.Println("mergeDataset",
		"positionCount", positionCount,
		"repeatCount", repeatCount)
	return nil
}

func (b *Builder) analyzeItems(
	ctx context.Context,
	input <-chan numberedItem,
	output chan<- sampleInfo,
) error {
	var policy = b.Policy
	if b.NewEvaluator != nil {
		var evaluator, err = b.NewEvaluator(ctx)
		if err != nil {
			return err
		}
		if closer, ok := evaluator.(io.Closer); ok {
			defer closer.Close()
		}
		policy.Evaluator = evaluator
	}
	for ni := range input {
		var samples, err = b.analyzeItem(ctx, &policy, &ni.item)
		if err != nil {
			log.Println("skip position", ni.item.Position.FEN(), err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case output <- sampleInfo{seq: ni.seq, samples: samples}:
		}
	}
	return nil
}

func collectSamples(input <-chan sampleInfo) []domain.Sample {
	var infos []sampleInfo
	for info := range input {
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].seq < infos[j].seq
	})
	var result []domain.Sample
	for _, info := range infos {
		result = append(result, info.samples...)
	}
	return result
}
