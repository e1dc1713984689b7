package track

import "time"

// TimeGrid is the set of sampling instants around a quantized epoch.
//
// Instants are stored future to past: Instants[0] is Epoch+Future*Interval
// and the last element is Epoch-Past*Interval. Segmentation walks them in
// this order, so "previous sample" means the later instant.
type TimeGrid struct {
	Epoch    time.Time
	Interval time.Duration
	Past     int
	Future   int
	Instants []time.Time
}

// NewTimeGrid builds the instants epoch - interval*i for i = -future..past.
// Negative counts are treated as zero.
func NewTimeGrid(epoch time.Time, interval time.Duration, past, future int) TimeGrid {
	past = max(past, 0)
	future = max(future, 0)

	instants := make([]time.Time, 0, past+future+1)
	for i := -future; i <= past; i++ {
		instants = append(instants, epoch.Add(-time.Duration(i)*interval))
	}
	return TimeGrid{
		Epoch:    epoch,
		Interval: interval,
		Past:     past,
		Future:   future,
		Instants: instants,
	}
}

// Len returns the number of grid instants.
func (g TimeGrid) Len() int { return len(g.Instants) }
