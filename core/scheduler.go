package core

// Task is a polled job ordered by wake time
type Task struct {
	Wake    Millis
	Handler func(t *Task, now Millis) uint8
	next    *Task
}

// Handler results
const (
	SF_DONE       = 0
	SF_RESCHEDULE = 1
)

// Scheduler runs tasks whose wake time has passed. Handlers that return
// SF_RESCHEDULE are put back in order of their (updated) Wake field.
type Scheduler struct {
	list *Task
}

// Add inserts t in wake order
func (s *Scheduler) Add(t *Task) {
	if s.list == nil || Before(t.Wake, s.list.Wake) {
		t.next = s.list
		s.list = t
		return
	}

	cur := s.list
	for cur.next != nil && !Before(t.Wake, cur.next.Wake) {
		cur = cur.next
	}
	t.next = cur.next
	cur.next = t
}

// Remove unlinks t if it is scheduled
func (s *Scheduler) Remove(t *Task) {
	for p := &s.list; *p != nil; p = &(*p).next {
		if *p == t {
			*p = t.next
			t.next = nil
			return
		}
	}
}

// Dispatch runs every task due at now
func (s *Scheduler) Dispatch(now Millis) {
	for s.list != nil && !Before(now, s.list.Wake) {
		t := s.list
		s.list = t.next
		t.next = nil

		if t.Handler(t, now) == SF_RESCHEDULE {
			s.Add(t)
		}
	}
}

// Next returns the milliseconds until the earliest task is due
func (s *Scheduler) Next(now Millis) (Millis, bool) {
	if s.list == nil {
		return 0, false
	}
	if !Before(now, s.list.Wake) {
		return 0, true
	}
	return s.list.Wake - now, true
}
