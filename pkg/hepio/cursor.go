package hepio

import "github.com/Manav02012002/hepconduit/pkg/hepmodel"

// SliceCursor adapts an already-materialised []Event to the EventCursor
// interface. The HepMC3 and Parquet (flat and columnar) readers use it:
// their IterEvents parses the whole file before returning the first event.
type SliceCursor struct {
	events []hepmodel.Event
	pos    int
	closer func() error
}

// NewSliceCursor wraps events as a cursor. closer may be nil.
func NewSliceCursor(events []hepmodel.Event, closer func() error) *SliceCursor {
	return &SliceCursor{events: events, closer: closer}
}

func (c *SliceCursor) Next() (hepmodel.Event, bool, error) {
	if c.pos >= len(c.events) {
		return hepmodel.Event{}, false, nil
	}
	ev := c.events[c.pos]
	c.pos++
	return ev, true, nil
}

func (c *SliceCursor) Close() error {
	if c.closer != nil {
		return c.closer()
	}
	return nil
}

// FuncCursor adapts a next-function and a close-function to EventCursor,
// for readers that stream from the file (LHE, CSV/TSV) and for
// cursor-wrapping adapters.
type FuncCursor struct {
	NextFn  func() (hepmodel.Event, bool, error)
	CloseFn func() error
}

func (c *FuncCursor) Next() (hepmodel.Event, bool, error) { return c.NextFn() }
func (c *FuncCursor) Close() error {
	if c.CloseFn != nil {
		return c.CloseFn()
	}
	return nil
}

// DrainAll reads every event off a cursor into a slice and closes it. Used
// by Reader.Read implementations that need the whole file in memory (e.g.
// to compute RunInfo derived from a full pass).
func DrainAll(cur EventCursor) ([]hepmodel.Event, error) {
	defer cur.Close()
	var out []hepmodel.Event
	for {
		ev, ok, err := cur.Next()
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, ev)
	}
}
