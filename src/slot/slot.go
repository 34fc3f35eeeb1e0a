package slot

import "sync"

// Slot holds the current result published for a panel. Publishing a new
// value disposes the one it replaces.
type Slot[T any] struct {
	mtx     sync.Mutex
	value   T
	set     bool
	dispose func(T)
	subs    []func(T)
}

// New creates an empty slot. dispose may be nil.
func New[T any](dispose func(T)) *Slot[T] {
	return &Slot[T]{dispose: dispose}
}

func (s *Slot[T]) Publish(v T) {
	s.mtx.Lock()
	old, hadOld := s.value, s.set
	s.value, s.set = v, true
	subs := append([]func(T){}, s.subs...)
	s.mtx.Unlock()

	if hadOld && s.dispose != nil {
		s.dispose(old)
	}
	for _, fn := range subs {
		fn(v)
	}
}

func (s *Slot[T]) Get() (T, bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.value, s.set
}

// Clear disposes the held value and leaves the slot empty.
func (s *Slot[T]) Clear() {
	s.mtx.Lock()
	old, hadOld := s.value, s.set
	var zero T
	s.value, s.set = zero, false
	s.mtx.Unlock()

	if hadOld && s.dispose != nil {
		s.dispose(old)
	}
}

// Subscribe registers fn to run after every Publish.
func (s *Slot[T]) Subscribe(fn func(T)) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.subs = append(s.subs, fn)
}
