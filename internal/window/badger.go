package window

import (
	"encoding/json"
	"errors"
	"sync"

	badger "github.com/dgraph-io/badger/v4"
)

// BadgerStore persists windows in a local badger database so open windows
// survive worker restarts. One key per device holds the JSON-encoded window
// set; a per-device mutex serializes read-modify-write cycles (badger's
// optimistic transactions would otherwise surface ErrConflict under
// concurrent ingestion for the same device).
type BadgerStore struct {
	db *badger.DB

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewBadgerStore(dir string) (*BadgerStore, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, err
	}
	return &BadgerStore{
		db:    db,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

// NewBadgerStoreInMemory is used by tests and by deployments that do not
// need windows to survive restarts.
func NewBadgerStoreInMemory() (*BadgerStore, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, err
	}
	return &BadgerStore{
		db:    db,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

func (s *BadgerStore) deviceLock(deviceId string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[deviceId]
	if !ok {
		l = &sync.Mutex{}
		s.locks[deviceId] = l
	}
	return l
}

func (s *BadgerStore) load(txn *badger.Txn, deviceId string) (map[string]Window, error) {
	item, err := txn.Get([]byte(deviceId))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return make(map[string]Window), nil
		}
		return nil, err
	}
	windows := make(map[string]Window)
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &windows)
	})
	if err != nil {
		return nil, err
	}
	return windows, nil
}

func (s *BadgerStore) update(deviceId string, fn func(map[string]Window) bool) error {
	l := s.deviceLock(deviceId)
	l.Lock()
	defer l.Unlock()

	return s.db.Update(func(txn *badger.Txn) error {
		windows, err := s.load(txn, deviceId)
		if err != nil {
			return err
		}
		if !fn(windows) {
			return nil
		}
		val, err := json.Marshal(windows)
		if err != nil {
			return err
		}
		return txn.Set([]byte(deviceId), val)
	})
}

func (s *BadgerStore) Touch(deviceId, category string, ts int64) error {
	return s.update(deviceId, func(windows map[string]Window) bool {
		w, ok := windows[category]
		if !ok {
			windows[category] = Window{MinTime: ts, MaxTime: ts}
			return true
		}
		if ts <= w.MaxTime {
			return false
		}
		w.MaxTime = ts
		windows[category] = w
		return true
	})
}

func (s *BadgerStore) Snapshot(deviceId string) (map[string]Window, error) {
	l := s.deviceLock(deviceId)
	l.Lock()
	defer l.Unlock()

	var windows map[string]Window
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		windows, err = s.load(txn, deviceId)
		return err
	})
	if err != nil {
		return nil, err
	}
	return windows, nil
}

func (s *BadgerStore) Devices() ([]string, error) {
	var devices []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			devices = append(devices, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return devices, nil
}

func (s *BadgerStore) Reset(deviceId, category string, upTo int64) error {
	return s.update(deviceId, func(windows map[string]Window) bool {
		w, ok := windows[category]
		if !ok {
			return false
		}
		w.MinTime = upTo
		if w.MaxTime < upTo {
			w.MaxTime = upTo
		}
		windows[category] = w
		return true
	})
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
