package video

import (
	"context"
	"fmt"
	"image"
	"log"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/adityagirishh/company-resource-consolidator/common"
)

const (
	maxParallelSlides = 4
	parallelThreshold = 3 // runs with more slides than this go parallel
)

// AssembleOptions are the per-run inputs shared by every slide
type AssembleOptions struct {
	Template Template
	Logo     image.Image
	Language string
	Speed    float64
	Progress ProgressFunc
}

// Coordinator fans clip building out over the slides of a run and puts
// the surviving clips back in input order.
type Coordinator struct {
	Builder Builder
	Metrics *SlideMetrics
}

func NewCoordinator(builder Builder, metrics *SlideMetrics) *Coordinator {
	if metrics == nil {
		metrics = &SlideMetrics{}
	}
	return &Coordinator{Builder: builder, Metrics: metrics}
}

type slideClip struct {
	index int
	clip  *Clip
}

// Assemble builds every slide. Failed slides are dropped and counted; the
// call only errors when nothing survives or ctx is cancelled.
func (c *Coordinator) Assemble(ctx context.Context, slides []common.Slide, opts AssembleOptions) ([]*Clip, error) {
	n := len(slides)
	if n == 0 {
		return nil, ErrNoSlides
	}
	c.Metrics.TotalSlides.Store(int64(n))

	var (
		mu    sync.Mutex
		done  int
		built []slideClip
	)

	buildOne := func(ctx context.Context, i int) {
		res := c.build(ctx, BuildRequest{
			Slide:    slides[i],
			Template: opts.Template,
			Index:    i,
			Total:    n,
			Logo:     opts.Logo,
			Language: opts.Language,
			Speed:    opts.Speed,
		})

		if !res.Ok() || res.Value == nil {
			c.Metrics.FailedSlides.Add(1)
			log.Printf("[VIDEO] Slide %d/%d failed: %v", i+1, n, res.Reason)
		} else {
			c.Metrics.ProcessedSlides.Add(1)
			c.Metrics.AddDuration(res.Value.Duration)
			if res.Status == StatusDegraded {
				c.Metrics.DegradedSlides.Add(1)
			}
			if res.Value.Silent {
				c.Metrics.SilentSlides.Add(1)
			}
		}

		mu.Lock()
		if res.Ok() && res.Value != nil {
			built = append(built, slideClip{index: i, clip: res.Value})
		}
		done++
		if opts.Progress != nil {
			opts.Progress(done, n)
		}
		mu.Unlock()
	}

	if n > parallelThreshold {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(min(maxParallelSlides, n))
		for i := range slides {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				buildOne(gctx, i)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range slides {
			if ctx.Err() != nil {
				break
			}
			buildOne(ctx, i)
		}
	}

	if err := ctx.Err(); err != nil {
		for _, b := range built {
			b.clip.Close()
		}
		return nil, fmt.Errorf("assembly cancelled: %w", err)
	}

	sort.Slice(built, func(a, b int) bool { return built[a].index < built[b].index })
	clips := make([]*Clip, 0, len(built))
	for _, b := range built {
		clips = append(clips, b.clip)
	}

	if len(clips) == 0 {
		return nil, ErrNoClips
	}
	return clips, nil
}

// build turns a panic inside one slide's work into a failed result so the
// remaining slides keep going
func (c *Coordinator) build(ctx context.Context, req BuildRequest) (res Result[*Clip]) {
	defer func() {
		if p := recover(); p != nil {
			res = Failed[*Clip](fmt.Errorf("slide %d panicked: %v", req.Index+1, p))
		}
	}()
	return c.Builder.Build(ctx, req)
}
