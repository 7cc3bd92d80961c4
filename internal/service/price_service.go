package service

import (
	"context"
	"sort"
	"sync"

	"dex_go/internal/domain"
)

// PriceService caches the latest ticker for every streamed market. It is the
// read model behind status displays and has no role in execution pricing;
// swaps always fetch a fresh order book.
type PriceService struct {
	mu         sync.RWMutex
	tickers    map[string]domain.Ticker
	tickerChan chan domain.Ticker
}

// NewPriceService creates a new PriceService instance
func NewPriceService() *PriceService {
	return &PriceService{
		tickers:    make(map[string]domain.Ticker),
		tickerChan: make(chan domain.Ticker, 1000), // buffered for bursts
	}
}

// UpdateTicker ingests one ticker update. Implements domain.PriceSink; called
// from stream worker goroutines.
func (s *PriceService) UpdateTicker(t domain.Ticker) {
	select {
	case s.tickerChan <- t:
	default:
		// Channel full: apply inline rather than drop the update.
		s.apply(t)
	}
}

// StartProcessor starts a background goroutine draining the ticker channel
func (s *PriceService) StartProcessor(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case t := <-s.tickerChan:
				s.apply(t)
			}
		}
	}()
}

func (s *PriceService) apply(t domain.Ticker) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Out-of-order delivery: never let a stale update overwrite a newer one.
	if prev, ok := s.tickers[t.MarketID]; ok && prev.UpdatedAtM > t.UpdatedAtM {
		return
	}
	s.tickers[t.MarketID] = t
}

// GetTicker returns the latest ticker for a market
func (s *PriceService) GetTicker(marketID string) (domain.Ticker, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tickers[marketID]
	return t, ok
}

// GetAllTickers returns all cached tickers sorted by pair label
func (s *PriceService) GetAllTickers() []domain.Ticker {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Ticker, 0, len(s.tickers))
	for _, t := range s.tickers {
		result = append(result, t)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Ticker < result[j].Ticker
	})

	return result
}
