package isochrone

import "container/heap"

// boarding is one exploration record: a boarding event at a stop,
// riding a trip, with the transfer count accumulated to reach it
// (spec §3's "Exploration frontier").
type boarding struct {
	stop             string
	trip             string
	route            string
	departureSecs    int
	boardingSequence int
	transferCount    int
	previousTrip     string
}

// frontier is a priority queue of boarding records ordered by
// departureSecs ascending, tie-broken by fewer transfers (spec §4.6
// step 1, and the "why not a heap keyed on arrival" note).
type frontier []boarding

func (f frontier) Len() int { return len(f) }

func (f frontier) Less(i, j int) bool {
	if f[i].departureSecs != f[j].departureSecs {
		return f[i].departureSecs < f[j].departureSecs
	}
	return f[i].transferCount < f[j].transferCount
}

func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }

func (f *frontier) Push(x any) {
	*f = append(*f, x.(boarding))
}

func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	item := old[n-1]
	*f = old[:n-1]
	return item
}

func newFrontier() *frontier {
	f := frontier(nil)
	heap.Init(&f)
	return &f
}

func (f *frontier) push(b boarding) { heap.Push(f, b) }

func (f *frontier) pop() (boarding, bool) {
	if f.Len() == 0 {
		return boarding{}, false
	}
	return heap.Pop(f).(boarding), true
}
