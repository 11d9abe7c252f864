package observability

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestDefaultsAreNoop(t *testing.T) {
	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Errorf("Pipeline() = %T, want NoopPipelineHooks", Pipeline())
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("Cache() = %T, want NoopCacheHooks", Cache())
	}
	if _, ok := Fetch().(NoopFetchHooks); !ok {
		t.Errorf("Fetch() = %T, want NoopFetchHooks", Fetch())
	}
}

func TestFuncsAdapter(t *testing.T) {
	defer Reset()

	var stages []string
	var kept int
	SetPipelineHooks(Funcs{
		StageStart:    func(_ context.Context, _, stage string) { stages = append(stages, stage) },
		LayerFiltered: func(_ context.Context, _, _ string, _, k int) { kept = k },
	})

	ctx := context.Background()
	Pipeline().OnStageStart(ctx, "run", "load")
	Pipeline().OnStageStart(ctx, "run", "filter")
	Pipeline().OnLayerFiltered(ctx, "run", "reservoirs", 213, 4)
	// Unset fields are skipped.
	Pipeline().OnStageComplete(ctx, "run", "filter", time.Millisecond, nil)
	Pipeline().OnRenderComplete(ctx, "run", "belton", "SWOT_study_domain.png", time.Second, nil)

	if len(stages) != 2 || stages[1] != "filter" || kept != 4 {
		t.Errorf("stages = %v, kept = %d", stages, kept)
	}
}

type countingCache struct {
	NoopCacheHooks
	mu   sync.Mutex
	hits int
}

func (c *countingCache) OnCacheHit(context.Context, string) {
	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
}

func TestSetKeepsOtherHooks(t *testing.T) {
	defer Reset()

	cc := &countingCache{}
	SetCacheHooks(cc)
	SetFetchHooks(nil)
	SetPipelineHooks(Funcs{})

	if Cache() != cc {
		t.Error("registering pipeline hooks replaced the cache hooks")
	}
	if _, ok := Fetch().(NoopFetchHooks); !ok {
		t.Error("SetFetchHooks(nil) should be ignored")
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Cache().OnCacheHit(context.Background(), "tile")
		}()
	}
	wg.Wait()
	if cc.hits != 8 {
		t.Errorf("hits = %d, want 8", cc.hits)
	}
}
