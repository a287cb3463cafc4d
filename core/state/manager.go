package state

import (
	"bytes"
	"fmt"
	"reflect"
	"sort"
	"sync"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"lukechampine.com/blake3"

	"seedswap/storage"
)

var kvNamespace = []byte("kv/")

// Manager provides RLP-encoded key/value access on top of a storage.Database.
// Writes are journaled in memory until Commit flushes them through a single
// batch, so a failed call can Discard everything it touched.
type Manager struct {
	mu    sync.RWMutex
	db    storage.Database
	dirty map[string][]byte
	// deleted keys are tracked separately so a nil value is never ambiguous.
	deleted map[string]struct{}
}

// NewManager creates a state manager operating on the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{
		db:      db,
		dirty:   make(map[string][]byte),
		deleted: make(map[string]struct{}),
	}
}

func kvKey(key []byte) []byte {
	hashed := ethcrypto.Keccak256(key)
	out := make([]byte, 0, len(kvNamespace)+len(hashed))
	out = append(out, kvNamespace...)
	return append(out, hashed...)
}

func (m *Manager) read(hashed []byte) ([]byte, error) {
	k := string(hashed)
	if _, gone := m.deleted[k]; gone {
		return nil, nil
	}
	if v, ok := m.dirty[k]; ok {
		return v, nil
	}
	if m.db == nil {
		return nil, nil
	}
	v, err := m.db.Get(hashed)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return v, nil
}

func (m *Manager) write(hashed []byte, value []byte) {
	k := string(hashed)
	delete(m.deleted, k)
	m.dirty[k] = value
}

// KVPut stores the RLP encoding of value under key.
func (m *Manager) KVPut(key []byte, value interface{}) error {
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.write(kvKey(key), encoded)
	return nil
}

// KVGet retrieves the value stored under the supplied key and decodes it into
// the provided destination. The boolean return value indicates whether the key
// existed in state.
func (m *Manager) KVGet(key []byte, out interface{}) (bool, error) {
	if len(key) == 0 {
		return false, fmt.Errorf("kv: key must not be empty")
	}
	m.mu.RLock()
	data, err := m.read(kvKey(key))
	m.mu.RUnlock()
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, err
	}
	return true, nil
}

// KVDelete removes key from state.
func (m *Manager) KVDelete(key []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := string(kvKey(key))
	delete(m.dirty, k)
	m.deleted[k] = struct{}{}
	return nil
}

// KVAppend appends the provided value to the RLP-encoded byte slice list stored
// under the supplied key. Duplicate values are ignored to keep the index
// deterministic.
func (m *Manager) KVAppend(key []byte, value []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	hashed := kvKey(key)
	data, err := m.read(hashed)
	if err != nil {
		return err
	}
	var list [][]byte
	if len(data) > 0 {
		if err := rlp.DecodeBytes(data, &list); err != nil {
			return err
		}
	}
	for _, existing := range list {
		if bytes.Equal(existing, value) {
			return nil
		}
	}
	list = append(list, append([]byte(nil), value...))
	encoded, err := rlp.EncodeToBytes(list)
	if err != nil {
		return err
	}
	m.write(hashed, encoded)
	return nil
}

// KVGetList decodes the list stored under key into out, which must point to a
// slice. Missing keys yield an empty slice.
func (m *Manager) KVGetList(key []byte, out interface{}) error {
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	m.mu.RLock()
	data, err := m.read(kvKey(key))
	m.mu.RUnlock()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		val := reflect.ValueOf(out)
		if val.Kind() != reflect.Ptr || val.IsNil() {
			return fmt.Errorf("kv: destination must be a non-nil pointer")
		}
		elem := val.Elem()
		if elem.Kind() != reflect.Slice {
			return fmt.Errorf("kv: destination must point to a slice")
		}
		elem.Set(reflect.MakeSlice(elem.Type(), 0, 0))
		return nil
	}
	return rlp.DecodeBytes(data, out)
}

// Pending reports how many keys are waiting to be committed.
func (m *Manager) Pending() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.dirty) + len(m.deleted)
}

// Commit flushes the journal to the database in one atomic batch.
func (m *Manager) Commit() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.dirty) == 0 && len(m.deleted) == 0 {
		return nil
	}
	if m.db == nil {
		return fmt.Errorf("kv: database not configured")
	}
	batch := storage.NewBatch()
	for _, k := range sortedKeys(m.dirty) {
		batch.Put([]byte(k), m.dirty[k])
	}
	for k := range m.deleted {
		batch.Delete([]byte(k))
	}
	if err := m.db.Write(batch); err != nil {
		return err
	}
	m.dirty = make(map[string][]byte)
	m.deleted = make(map[string]struct{})
	return nil
}

// Discard drops every uncommitted write.
func (m *Manager) Discard() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirty = make(map[string][]byte)
	m.deleted = make(map[string]struct{})
}

// Root returns a BLAKE3 digest over the committed key space. Two nodes that
// replayed the same calls report the same root.
func (m *Manager) Root() ([32]byte, error) {
	var root [32]byte
	if m.db == nil {
		return root, fmt.Errorf("kv: database not configured")
	}
	h := blake3.New(32, nil)
	err := m.db.Iterate(kvNamespace, func(key, value []byte) bool {
		h.Write(key)
		h.Write(value)
		return true
	})
	if err != nil {
		return root, err
	}
	copy(root[:], h.Sum(nil))
	return root, nil
}

func sortedKeys(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
