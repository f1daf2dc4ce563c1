package engine

import (
	"sync"

	"limitbook/internal/common"
)

// Engine owns one OrderBook per symbol; symbols are opaque strings, not
// a closed enum. Each symbol's book is guarded by its own mutex so that
// unrelated symbols never contend — a single OrderBook instance only
// needs to see strictly serial access, not the whole Engine.
type Engine struct {
	mu        sync.RWMutex
	books     map[string]*bookEntry
	whitelist map[string]struct{} // nil means any non-empty symbol is accepted
}

type bookEntry struct {
	mu   sync.Mutex
	book *OrderBook
}

// New constructs an Engine. If symbols is non-empty it is treated as a
// whitelist; an empty whitelist accepts any non-empty symbol, creating
// its book lazily on first use.
func New(symbols ...string) *Engine {
	e := &Engine{books: make(map[string]*bookEntry)}
	if len(symbols) > 0 {
		e.whitelist = make(map[string]struct{}, len(symbols))
		for _, s := range symbols {
			e.whitelist[s] = struct{}{}
			e.books[s] = &bookEntry{book: NewOrderBook(s)}
		}
	}
	return e
}

func (e *Engine) entry(symbol string) (*bookEntry, error) {
	if symbol == "" {
		return nil, ErrEmptySymbol
	}
	e.mu.RLock()
	b, ok := e.books[symbol]
	e.mu.RUnlock()
	if ok {
		return b, nil
	}

	if e.whitelist != nil {
		if _, ok := e.whitelist[symbol]; !ok {
			return nil, ErrUnknownSymbol
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if b, ok := e.books[symbol]; ok {
		return b, nil
	}
	b = &bookEntry{book: NewOrderBook(symbol)}
	e.books[symbol] = b
	return b, nil
}

// Submit routes req to its symbol's book, serialized behind that book's
// own mutex.
func (e *Engine) Submit(req SubmitRequest) (SubmitResult, error) {
	if req.Symbol == "" {
		return SubmitResult{}, ErrEmptySymbol
	}
	entry, err := e.entry(req.Symbol)
	if err != nil {
		return SubmitResult{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.book.Submit(req)
}

// Cancel removes order id's resting order from symbol's book.
func (e *Engine) Cancel(symbol string, id common.OrderId) (CancelResult, error) {
	entry, err := e.entry(symbol)
	if err != nil {
		return CancelResult{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.book.Cancel(id)
}

// Depth returns symbol's aggregated depth snapshot.
func (e *Engine) Depth(symbol string, maxLevels int) (DepthSnapshot, error) {
	entry, err := e.entry(symbol)
	if err != nil {
		return DepthSnapshot{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.book.Depth(maxLevels), nil
}

// Symbols lists every symbol currently tracked by the engine.
func (e *Engine) Symbols() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	symbols := make([]string, 0, len(e.books))
	for s := range e.books {
		symbols = append(symbols, s)
	}
	return symbols
}
