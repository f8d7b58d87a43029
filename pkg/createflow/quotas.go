package createflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// CapacityQuotas tracks reserved and committed gigabytes against a fixed
// capacity in memory. A capacity of zero or less means unlimited.
type CapacityQuotas struct {
	mu        sync.Mutex
	capacity  int
	committed int
	reserved  map[string]int
}

// NewCapacityQuotas returns quotas limited to capacityGB gigabytes.
func NewCapacityQuotas(capacityGB int) *CapacityQuotas {
	return &CapacityQuotas{
		capacity: capacityGB,
		reserved: make(map[string]int),
	}
}

func (q *CapacityQuotas) Reserve(_ context.Context, req Request) (Reservation, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.capacity > 0 && q.usedLocked()+req.SizeGB > q.capacity {
		return Reservation{}, errors.Join(ErrQuotaExceeded,
			fmt.Errorf("requested %dGB, %dGB available", req.SizeGB, q.capacity-q.usedLocked()))
	}
	r := Reservation{ID: uuid.NewString(), SizeGB: req.SizeGB}
	q.reserved[r.ID] = r.SizeGB
	return r, nil
}

func (q *CapacityQuotas) Commit(_ context.Context, r Reservation) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	size, ok := q.reserved[r.ID]
	if !ok {
		return ErrReservationNotFound
	}
	delete(q.reserved, r.ID)
	q.committed += size
	return nil
}

func (q *CapacityQuotas) Rollback(_ context.Context, r Reservation) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.reserved[r.ID]; !ok {
		return ErrReservationNotFound
	}
	delete(q.reserved, r.ID)
	return nil
}

// Usage returns the committed and reserved gigabytes.
func (q *CapacityQuotas) Usage() (committed, reserved int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, size := range q.reserved {
		reserved += size
	}
	return q.committed, reserved
}

func (q *CapacityQuotas) usedLocked() int {
	used := q.committed
	for _, size := range q.reserved {
		used += size
	}
	return used
}
