package chat

import "github.com/odvcencio/tripdesk/pkg/render"

// sequencer hands out send tickets and releases replies in ticket order.
// Callers hold the controller mutex.
type sequencer struct {
	issued  uint64
	release uint64
	done    map[uint64]*render.Message
}

func newSequencer() *sequencer {
	return &sequencer{done: make(map[uint64]*render.Message)}
}

func (s *sequencer) next() uint64 {
	t := s.issued
	s.issued++
	return t
}

// complete records the reply for ticket and returns every reply that is now
// releasable, in ticket order.
func (s *sequencer) complete(ticket uint64, msg render.Message) []render.Message {
	s.done[ticket] = &msg
	return s.drain()
}

// skip settles ticket without a reply and returns any replies it unblocks.
func (s *sequencer) skip(ticket uint64) []render.Message {
	s.done[ticket] = nil
	return s.drain()
}

func (s *sequencer) drain() []render.Message {
	var out []render.Message
	for {
		msg, ok := s.done[s.release]
		if !ok {
			return out
		}
		delete(s.done, s.release)
		s.release++
		if msg != nil {
			out = append(out, *msg)
		}
	}
}
