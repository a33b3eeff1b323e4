package mtg

import (
	"time"

	"github.com/MixinNetwork/registry/storage"
)

const clockStorePropertyKey = "mtg_clock"

// Tick is the reference point of one transition. Heights increase by one per
// processed output and times never go backwards, even across restarts.
type Tick struct {
	Height uint64
	Time   time.Time
}

type Clock struct {
	last *storage.Item[Tick]
	now  func() time.Time
}

func NewClock() *Clock {
	return &Clock{
		last: storage.NewItem[Tick](clockStorePropertyKey),
		now:  time.Now,
	}
}

func (c *Clock) Next(txn storage.Txn) (Tick, error) {
	last, _, err := c.last.MayLoad(txn)
	if err != nil {
		return last, err
	}
	now := c.now().UTC()
	if !now.After(last.Time) {
		now = last.Time.Add(time.Nanosecond)
	}
	tick := Tick{Height: last.Height + 1, Time: now}
	return tick, c.last.Save(txn, tick)
}

func (c *Clock) Last(txn storage.Txn) (Tick, error) {
	last, _, err := c.last.MayLoad(txn)
	return last, err
}
