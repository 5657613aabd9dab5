package gauxc

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestPipelineRunExecutesEveryItem(t *testing.T) {
	var mu sync.Mutex
	var seen []int
	worker := &HostWorker{
		Exec: func(ctx context.Context, item WorkItem) error {
			mu.Lock()
			seen = append(seen, item.Seq)
			mu.Unlock()
			return nil
		},
	}
	p := NewPipeline(worker, 2)
	items := []WorkItem{{Seq: 0}, {Seq: 1}, {Seq: 2}, {Seq: 3}}
	if err := p.Run(context.Background(), items); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(seen) != len(items) {
		t.Fatalf("executed %d items, want %d", len(seen), len(items))
	}
}

func TestPipelineRunPropagatesFirstError(t *testing.T) {
	wantErr := errors.New("boom")
	worker := &HostWorker{
		Exec: func(ctx context.Context, item WorkItem) error {
			if item.Seq == 1 {
				return wantErr
			}
			return nil
		},
	}
	p := NewPipeline(worker, 1)
	items := []WorkItem{{Seq: 0}, {Seq: 1}, {Seq: 2}}
	err := p.Run(context.Background(), items)
	if !errors.Is(err, wantErr) {
		t.Errorf("Run error = %v, want %v", err, wantErr)
	}
}

func TestNewPipelineClampsDepthToAtLeastOne(t *testing.T) {
	worker := &HostWorker{Exec: func(ctx context.Context, item WorkItem) error { return nil }}
	p := NewPipeline(worker, 0)
	if p.depth != 1 {
		t.Errorf("depth = %d, want clamped to 1", p.depth)
	}
	p = NewPipeline(worker, -5)
	if p.depth != 1 {
		t.Errorf("depth = %d, want clamped to 1", p.depth)
	}
}

func TestSerializingAccumulatorSerializesConcurrentWrites(t *testing.T) {
	acc := &SerializingAccumulator{}
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			acc.With(func() {
				counter++
			})
		}()
	}
	wg.Wait()
	if counter != 100 {
		t.Errorf("counter = %d, want 100 (lost updates indicate missing serialization)", counter)
	}
}
