// Package bus - шина событий расчетов.
// Заменяет глобальный реестр слушателей: внедряется зависимостью,
// подписка и отписка явные
package bus

import "sync"

type Event struct {
	Order    string
	Customer string
	State    string
	Message  string
}

type Bus interface {
	Subscribe(id string) <-chan Event
	Unsubscribe(id string)
	Publish(event Event)
}

const subscriberBuffer = 16

type bus struct {
	mutex       sync.Mutex
	subscribers map[string]chan Event
}

func NewBus() Bus {
	return &bus{
		subscribers: make(map[string]chan Event),
	}
}

func (b *bus) Subscribe(id string) <-chan Event {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if ch, ok := b.subscribers[id]; ok {
		return ch
	}
	ch := make(chan Event, subscriberBuffer)
	b.subscribers[id] = ch
	return ch
}

func (b *bus) Unsubscribe(id string) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
}

func (b *bus) Publish(event Event) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	for _, ch := range b.subscribers {
		// медленный подписчик не должен блокировать расчет
		select {
		case ch <- event:
		default:
		}
	}
}
