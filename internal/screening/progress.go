package screening

import "sync"

type ProgressMessage struct {
	Key    string        `json:"key"`
	Label  string        `json:"label"`
	Status SectionStatus `json:"status"`
}

// ProgressTracker holds one ProgressMessage per section, in declaration order.
type ProgressTracker struct {
	mu       sync.RWMutex
	order    []string
	messages map[string]*ProgressMessage
}

func NewProgressTracker(defs []SectionDefinition) *ProgressTracker {
	t := &ProgressTracker{
		order:    make([]string, 0, len(defs)),
		messages: make(map[string]*ProgressMessage, len(defs)),
	}
	for _, d := range defs {
		if _, dup := t.messages[d.Key]; dup {
			continue
		}
		t.order = append(t.order, d.Key)
		t.messages[d.Key] = &ProgressMessage{Key: d.Key, Label: d.Label, Status: StatusPending}
	}
	return t
}

// Update sets the status for key. Unknown keys are ignored.
func (t *ProgressTracker) Update(key string, status SectionStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if m, ok := t.messages[key]; ok {
		m.Status = status
	}
}

func (t *ProgressTracker) Snapshot() []ProgressMessage {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]ProgressMessage, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, *t.messages[k])
	}
	return out
}

// Done reports whether every section reached a terminal status.
func (t *ProgressTracker) Done() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, m := range t.messages {
		if m.Status == StatusPending {
			return false
		}
	}
	return true
}

// Func adapts the tracker to a ProgressFunc, forwarding to next if set.
func (t *ProgressTracker) Func(next ProgressFunc) ProgressFunc {
	return func(key string, status SectionStatus) {
		t.Update(key, status)
		if next != nil {
			next(key, status)
		}
	}
}
