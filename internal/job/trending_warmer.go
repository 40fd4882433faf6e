package job

import (
	"context"
	"log"
	"sync"
	"time"

	"grailify/internal/domain"
	"grailify/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultWarmBatch = 2
	purgeInterval    = time.Hour
)

type ItemRefresher interface {
	Trending(ctx context.Context) (*domain.TrendingResponse, error)
	RefreshItem(ctx context.Context, id int) error
}

type StorePurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// TrendingWarmer keeps the item cache warm for whatever is trending.
type TrendingWarmer struct {
	tracer       trace.Tracer
	items        ItemRefresher
	metrics      *observability.Metrics
	pollInterval time.Duration
	batch        int
	purger       StorePurger

	mu    sync.Mutex
	ids   []int
	index int
}

func NewTrendingWarmer(tracer trace.Tracer, items ItemRefresher, metrics *observability.Metrics, pollIntervalSecs, batch int) *TrendingWarmer {
	if batch <= 0 {
		batch = defaultWarmBatch
	}
	return &TrendingWarmer{
		tracer:       tracer,
		items:        items,
		metrics:      metrics,
		pollInterval: time.Duration(pollIntervalSecs) * time.Second,
		batch:        batch,
	}
}

// SetStorePurger adds an hourly sweep of expired client-store rows.
func (w *TrendingWarmer) SetStorePurger(p StorePurger) {
	w.purger = p
}

// Start blocks until ctx is cancelled.
func (w *TrendingWarmer) Start(ctx context.Context) {
	log.Println("Trending warmer starting...")

	go w.pollLoop(ctx, "warm-trending", w.pollInterval, w.tick)
	if w.purger != nil {
		go w.pollLoop(ctx, "purge-expired", purgeInterval, w.purge)
	}

	<-ctx.Done()
	log.Println("Trending warmer stopped")
}

func (w *TrendingWarmer) pollLoop(ctx context.Context, name string, interval time.Duration, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		log.Printf("job %s initial run error: %v", name, err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := fn(ctx); err != nil {
				log.Printf("job %s error: %v", name, err)
			}
		}
	}
}

// tick reloads the trending list and refreshes the next batch of items. A
// failed trending fetch keeps warming the previous list.
func (w *TrendingWarmer) tick(ctx context.Context) error {
	ctx, span := w.tracer.Start(ctx, "warmer.tick")
	defer span.End()

	trending, err := w.items.Trending(ctx)
	if err == nil {
		w.setIDs(trending.ItemIDs())
	}
	w.warmBatch(ctx)
	return err
}

func (w *TrendingWarmer) setIDs(ids []int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ids = ids
	if w.index >= len(ids) {
		w.index = 0
	}
}

// nextBatch returns up to batch ids, continuing round-robin from the last call.
func (w *TrendingWarmer) nextBatch() []int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.ids) == 0 {
		return nil
	}
	n := min(w.batch, len(w.ids))
	out := make([]int, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, w.ids[w.index%len(w.ids)])
		w.index = (w.index + 1) % len(w.ids)
	}
	return out
}

func (w *TrendingWarmer) warmBatch(ctx context.Context) {
	for _, id := range w.nextBatch() {
		_, span := w.tracer.Start(ctx, "warmer.refresh-item")
		span.SetAttributes(attribute.Int("item_id", id))
		err := w.items.RefreshItem(ctx, id)
		span.End()

		w.metrics.WarmRefreshed(err)
		if err != nil {
			log.Printf("warm refresh error for item %d: %v", id, err)
		}
	}
}

func (w *TrendingWarmer) purge(ctx context.Context) error {
	ctx, span := w.tracer.Start(ctx, "warmer.purge-expired")
	defer span.End()

	n, err := w.purger.PurgeExpired(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Printf("purged %d expired client-store entries", n)
	}
	return nil
}
