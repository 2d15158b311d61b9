// Package chain enriches and filters the options chain.
package chain

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"deribit-dashboard/internal/models"
)

// QuoteSource supplies per-instrument quote and Greeks data. Both
// methods are best-effort: an error affects only the row being
// enriched, never the pass as a whole.
type QuoteSource interface {
	Summary(ctx context.Context, instrument string) (models.Quote, error)
	Greeks(ctx context.Context, instrument string) (*models.Greeks, error)
}

// Enricher turns raw instruments into chain rows by fetching quote
// summaries and Greeks from a QuoteSource. The two calls per
// instrument run on a bounded worker pool; workers=1 reproduces the
// fully sequential pass.
type Enricher struct {
	source  QuoteSource
	logger  zerolog.Logger
	workers int
}

// NewEnricher creates an Enricher with the given pool size.
func NewEnricher(source QuoteSource, logger zerolog.Logger, workers int) *Enricher {
	if workers < 1 {
		workers = 1
	}
	return &Enricher{
		source:  source,
		logger:  logger,
		workers: workers,
	}
}

// Enrich fetches quotes and Greeks for every instrument. Output order
// matches input order regardless of pool size. A failed summary or
// Greeks call leaves the corresponding fields absent on that row only.
func (e *Enricher) Enrich(ctx context.Context, instruments []models.Instrument) []models.ChainRow {
	rows := make([]models.ChainRow, len(instruments))
	if len(instruments) == 0 {
		return rows
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				rows[i] = e.enrichOne(ctx, instruments[i])
			}
		}()
	}

	for i := range instruments {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return rows
}

func (e *Enricher) enrichOne(ctx context.Context, inst models.Instrument) models.ChainRow {
	row := models.ChainRow{Instrument: inst}

	quote, err := e.source.Summary(ctx, inst.Name)
	if err != nil {
		e.logger.Debug().Err(err).Str("instrument", inst.Name).Msg("quote summary unavailable")
	} else {
		row.Quote = quote
	}

	greeks, err := e.source.Greeks(ctx, inst.Name)
	if err != nil {
		e.logger.Debug().Err(err).Str("instrument", inst.Name).Msg("greeks unavailable")
	} else {
		row.Greeks = greeks
	}

	return row
}
