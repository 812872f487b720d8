package snapshot

import (
	"sync/atomic"
	"time"

	"github.com/NastyaGoryachaya/coin-ticker-service/internal/domain"
)

// Snapshot - согласованный список монет на момент публикации. Только для чтения.
type Snapshot struct {
	Coins     []domain.Coin
	UpdatedAt time.Time
}

// Store - последний опубликованный снимок. Публикация заменяет указатель целиком,
// поэтому читатель никогда не видит смесь старых и новых данных.
type Store struct {
	current atomic.Pointer[Snapshot]
	clock   Clock
}

func NewStore() *Store {
	return &Store{clock: NewRealClock()}
}

// NewStoreWithClock - Конструктор для тестов: позволяет подставить фиксированные "часы".
func NewStoreWithClock(clk Clock) *Store {
	return &Store{clock: clk}
}

// Publish - атомарно заменяет снимок. Слайс копируется, вызывающий может его переиспользовать.
func (s *Store) Publish(coins []domain.Coin) {
	s.PublishAt(coins, s.clock.Now())
}

// PublishAt - то же, что Publish, но с заданным временем (восстановление из БД).
func (s *Store) PublishAt(coins []domain.Coin, at time.Time) {
	cp := make([]domain.Coin, len(coins))
	copy(cp, coins)
	s.current.Store(&Snapshot{Coins: cp, UpdatedAt: at})
}

// Current - монеты последнего снимка; false, если публикаций ещё не было.
// Возвращаемый слайс общий для всех читателей и не должен изменяться.
func (s *Store) Current() ([]domain.Coin, bool) {
	snap := s.current.Load()
	if snap == nil {
		return nil, false
	}
	return snap.Coins, true
}

// Snapshot - последний снимок вместе со временем публикации.
func (s *Store) Snapshot() (Snapshot, bool) {
	snap := s.current.Load()
	if snap == nil {
		return Snapshot{}, false
	}
	return *snap, true
}
