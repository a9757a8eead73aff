// Package singleflight - защита от параллельных попыток оплаты
// одного заказа. Инвариант живет здесь, а не в занятости UI
package singleflight

import "sync"

type Guard struct {
	mutex    sync.Mutex
	inFlight map[string]struct{}
}

func NewGuard() *Guard {
	return &Guard{
		inFlight: make(map[string]struct{}),
	}
}

// Acquire - захват ключа. false - попытка уже идет
func (g *Guard) Acquire(key string) bool {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.inFlight[key]; ok {
		return false
	}
	g.inFlight[key] = struct{}{}
	return true
}

func (g *Guard) Release(key string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	delete(g.inFlight, key)
}
