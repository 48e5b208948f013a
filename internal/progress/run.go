package progress

import (
	"context"
	"fmt"
	"path/filepath"

	"ckd-progress/internal/source"
	"ckd-progress/internal/staging"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Options carries the run configuration the engine needs.
type Options struct {
	Window     Window
	Classifier staging.Classifier
	Specs      []Spec

	// Workers > 1 normalizes and reduces partitions concurrently. Merges
	// stay serialized on one goroutine; because Merge is commutative and
	// associative the result is identical to the sequential fold.
	Workers int
}

// contribution is one partition's fully-computed, not-yet-merged work.
// A partition that fails mid-processing never produces one, so failures
// cannot partially apply to the store.
type contribution struct {
	pm      PartitionMap
	members map[string]struct{}
}

// Run folds every partition of the source through normalize, reduce and
// merge, then derives the result surface. Partition failures are logged
// and skipped; zero usable partitions is a valid empty result.
func Run(ctx context.Context, src source.Source, opts Options) (Result, error) {
	partitions, err := src.Partitions()
	if err != nil {
		return Result{}, fmt.Errorf("failed to list partitions: %w", err)
	}
	log.Info().Int("partitions", len(partitions)).Msg("Starting progression analysis")

	store := NewStore()
	if opts.Workers > 1 {
		err = runParallel(ctx, src, opts, partitions, store)
	} else {
		err = runSequential(ctx, src, opts, partitions, store)
	}
	if err != nil {
		return Result{}, err
	}

	log.Info().
		Int("population", store.PopulationCount()).
		Int("staged", store.StagedCount()).
		Msg("Merge phase complete")
	return BuildResult(store, opts.Specs), nil
}

func runSequential(ctx context.Context, src source.Source, opts Options, partitions []string, store *Store) error {
	for _, partition := range partitions {
		if err := ctx.Err(); err != nil {
			return err
		}
		c, ok := processPartition(src, partition, opts)
		if !ok {
			continue
		}
		store.Merge(c.pm)
		store.AddMembers(c.members)
	}
	return nil
}

func runParallel(ctx context.Context, src source.Source, opts Options, partitions []string, store *Store) error {
	results := make(chan contribution)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for c := range results {
			store.Merge(c.pm)
			store.AddMembers(c.members)
		}
	}()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for _, partition := range partitions {
		partition := partition
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c, ok := processPartition(src, partition, opts)
			if !ok {
				return nil
			}
			select {
			case results <- c:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}

	err := g.Wait()
	close(results)
	<-done
	return err
}

// processPartition computes one partition's contribution in isolation.
// Every source-level failure is recoverable: the partition is skipped and
// the run continues. ok is false when there is nothing to merge.
func processPartition(src source.Source, partition string, opts Options) (contribution, bool) {
	name := filepath.Base(partition)

	rows, err := src.Read(partition)
	if err != nil {
		log.Warn().Err(err).Str("partition", name).Msg("Skipping partition")
		return contribution{}, false
	}

	normalized := Normalize(rows, opts.Classifier, opts.Window)
	if len(normalized.Members) == 0 {
		log.Debug().Str("partition", name).Int("rows", len(rows)).Msg("No CKD conditions in window")
		return contribution{}, false
	}

	pm := Reduce(normalized.Records)
	log.Debug().
		Str("partition", name).
		Int("rows", len(rows)).
		Int("staged_records", len(normalized.Records)).
		Int("patients", len(pm)).
		Msg("Partition reduced")

	return contribution{pm: pm, members: normalized.Members}, true
}
