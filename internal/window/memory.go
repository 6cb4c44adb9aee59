package window

import "sync"

// MemoryStore keeps windows in process memory. Each device gets its own
// entry with its own mutex, so ingestion for unrelated devices never
// contends.
type MemoryStore struct {
	mu      sync.RWMutex
	devices map[string]*deviceWindows
}

type deviceWindows struct {
	mu      sync.Mutex
	windows map[string]Window
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{devices: make(map[string]*deviceWindows)}
}

func (s *MemoryStore) device(deviceId string) *deviceWindows {
	s.mu.RLock()
	d, ok := s.devices[deviceId]
	s.mu.RUnlock()
	if ok {
		return d
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok = s.devices[deviceId]; !ok {
		d = &deviceWindows{windows: make(map[string]Window)}
		s.devices[deviceId] = d
	}
	return d
}

func (s *MemoryStore) Touch(deviceId, category string, ts int64) error {
	d := s.device(deviceId)
	d.mu.Lock()
	defer d.mu.Unlock()

	w, ok := d.windows[category]
	if !ok {
		d.windows[category] = Window{MinTime: ts, MaxTime: ts}
		return nil
	}
	if ts > w.MaxTime {
		w.MaxTime = ts
		d.windows[category] = w
	}
	return nil
}

func (s *MemoryStore) Snapshot(deviceId string) (map[string]Window, error) {
	d := s.device(deviceId)
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make(map[string]Window, len(d.windows))
	for k, v := range d.windows {
		out[k] = v
	}
	return out, nil
}

func (s *MemoryStore) Devices() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.devices))
	for id := range s.devices {
		out = append(out, id)
	}
	return out, nil
}

func (s *MemoryStore) Reset(deviceId, category string, upTo int64) error {
	d := s.device(deviceId)
	d.mu.Lock()
	defer d.mu.Unlock()

	w, ok := d.windows[category]
	if !ok {
		return nil
	}
	w.MinTime = upTo
	if w.MaxTime < upTo {
		w.MaxTime = upTo
	}
	d.windows[category] = w
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
