package metric

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/uptrace/bun"
)

var databaseEmptyRead = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "nlcal_database_empty_read_microsec",
	Help: "The latency of an empty history database read in microseconds",
})

var databaseWrite = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "nlcal_database_write_microsec",
	Help: "The latency of the last history write in microseconds",
})

func ObserveDatabaseWrite(took time.Duration) {
	databaseWrite.Set(float64(took.Microseconds()))
}

// WatchDatabase samples an empty read every tickerInterval until ctx is done.
func WatchDatabase(ctx context.Context, db *bun.DB, tickerInterval time.Duration) {
	if db == nil {
		return
	}
	databaseEmptyRead.Set(0)
	go func() {
		ticker := time.NewTicker(tickerInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				slog.Debug("database watcher stopped")
				return
			case <-ticker.C:
				start := time.Now()
				if _, err := db.NewSelect().ColumnExpr("1").Exec(ctx); err != nil {
					slog.Error("can't get database latency", "error", err)
					continue
				}
				databaseEmptyRead.Set(float64(time.Since(start).Microseconds()))
			}
		}
	}()
}
