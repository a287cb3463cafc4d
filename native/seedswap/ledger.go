package seedswap

import (
	"fmt"
	"math/big"
)

// Storage is the key/value surface the ledger needs from state.
type Storage interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	KVAppend(key []byte, value []byte) error
	KVGetList(key []byte, out interface{}) error
}

// Ledger is the append-only log of swap records plus the running totals. It
// performs no business validation; the engine decides what gets written.
type Ledger struct {
	store Storage
}

// NewLedger wraps the provided storage.
func NewLedger(store Storage) *Ledger {
	return &Ledger{store: store}
}

func (l *Ledger) ready() error {
	if l == nil || l.store == nil {
		return errNilState
	}
	return nil
}

func (l *Ledger) loadUint(key []byte) (uint64, error) {
	var v uint64
	if _, err := l.store.KVGet(key, &v); err != nil {
		return 0, err
	}
	return v, nil
}

// Count returns the number of records ever appended.
func (l *Ledger) Count() (uint64, error) {
	if err := l.ready(); err != nil {
		return 0, err
	}
	return l.loadUint(countKey)
}

// Cursor returns the lowest id that may still hold an undistributed remainder.
func (l *Ledger) Cursor() (uint64, error) {
	if err := l.ready(); err != nil {
		return 0, err
	}
	return l.loadUint(cursorKey)
}

// SetCursor stores the distribution cursor.
func (l *Ledger) SetCursor(id uint64) error {
	if err := l.ready(); err != nil {
		return err
	}
	return l.store.KVPut(cursorKey, id)
}

// Append assigns the next id to rec, stores it and indexes it under its user.
func (l *Ledger) Append(rec *SwapRecord) (uint64, error) {
	if err := l.ready(); err != nil {
		return 0, err
	}
	if rec == nil {
		return 0, fmt.Errorf("seedswap: nil record")
	}
	id, err := l.Count()
	if err != nil {
		return 0, err
	}
	rec.ID = id
	if err := l.put(rec); err != nil {
		return 0, err
	}
	if err := l.store.KVAppend(userIndexKey(rec.User), encodeID(id)); err != nil {
		return 0, err
	}
	if err := l.store.KVPut(countKey, id+1); err != nil {
		return 0, err
	}
	return id, nil
}

func (l *Ledger) put(rec *SwapRecord) error {
	return l.store.KVPut(recordKey(rec.ID), rec.Clone())
}

// Put overwrites an existing record.
func (l *Ledger) Put(rec *SwapRecord) error {
	if err := l.ready(); err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("seedswap: nil record")
	}
	count, err := l.Count()
	if err != nil {
		return err
	}
	if rec.ID >= count {
		return ErrRecordNotFound
	}
	return l.put(rec)
}

// Get returns a copy of the record with the supplied id.
func (l *Ledger) Get(id uint64) (*SwapRecord, error) {
	if err := l.ready(); err != nil {
		return nil, err
	}
	count, err := l.Count()
	if err != nil {
		return nil, err
	}
	if id >= count {
		return nil, ErrRecordNotFound
	}
	return l.get(id)
}

func (l *Ledger) get(id uint64) (*SwapRecord, error) {
	var rec SwapRecord
	ok, err := l.store.KVGet(recordKey(id), &rec)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRecordNotFound
	}
	return rec.Clone(), nil
}

// Range returns up to limit records starting at offset. A zero limit returns
// everything from offset onwards.
func (l *Ledger) Range(offset, limit uint64) ([]*SwapRecord, error) {
	count, err := l.Count()
	if err != nil {
		return nil, err
	}
	if offset >= count {
		return []*SwapRecord{}, nil
	}
	end := count
	if limit > 0 && offset+limit < count {
		end = offset + limit
	}
	out := make([]*SwapRecord, 0, end-offset)
	for id := offset; id < end; id++ {
		rec, err := l.get(id)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// All returns every record in id order.
func (l *Ledger) All() ([]*SwapRecord, error) {
	return l.Range(0, 0)
}

// UserIDs returns the ids owned by user in ascending order.
func (l *Ledger) UserIDs(user [20]byte) ([]uint64, error) {
	if err := l.ready(); err != nil {
		return nil, err
	}
	var raw [][]byte
	if err := l.store.KVGetList(userIndexKey(user), &raw); err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(raw))
	for _, b := range raw {
		id, ok := decodeID(b)
		if !ok {
			return nil, fmt.Errorf("seedswap: corrupt user index entry")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// UserRecords loads every record owned by user.
func (l *Ledger) UserRecords(user [20]byte) ([]*SwapRecord, error) {
	ids, err := l.UserIDs(user)
	if err != nil {
		return nil, err
	}
	out := make([]*SwapRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := l.get(id)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// UserData aggregates the user's owned records.
func (l *Ledger) UserData(user [20]byte) (*UserSwapData, error) {
	records, err := l.UserRecords(user)
	if err != nil {
		return nil, err
	}
	data := &UserSwapData{
		User:                   user,
		TotalEthAmount:         big.NewInt(0),
		TotalTokenAmount:       big.NewInt(0),
		TotalDistributedAmount: big.NewInt(0),
		TotalRemainingAmount:   big.NewInt(0),
		IDs:                    make([]uint64, 0, len(records)),
		EthAmounts:             make([]*big.Int, 0, len(records)),
		TokenAmounts:           make([]*big.Int, 0, len(records)),
		DistributedAmounts:     make([]*big.Int, 0, len(records)),
		Timestamps:             make([]uint64, 0, len(records)),
	}
	for _, rec := range records {
		data.TotalEthAmount.Add(data.TotalEthAmount, rec.EthAmount)
		data.TotalTokenAmount.Add(data.TotalTokenAmount, rec.TokenAmount)
		data.TotalDistributedAmount.Add(data.TotalDistributedAmount, rec.DistributedAmount)
		data.IDs = append(data.IDs, rec.ID)
		data.EthAmounts = append(data.EthAmounts, rec.EthAmount)
		data.TokenAmounts = append(data.TokenAmounts, rec.TokenAmount)
		data.DistributedAmounts = append(data.DistributedAmounts, rec.DistributedAmount)
		data.Timestamps = append(data.Timestamps, rec.Timestamp)
	}
	data.TotalRemainingAmount.Sub(data.TotalTokenAmount, data.TotalDistributedAmount)
	return data, nil
}

// Totals returns the running sums.
func (l *Ledger) Totals() (*Totals, error) {
	if err := l.ready(); err != nil {
		return nil, err
	}
	var totals Totals
	ok, err := l.store.KVGet(totalsKey, &totals)
	if err != nil {
		return nil, err
	}
	if !ok {
		return newTotals(), nil
	}
	return totals.Clone(), nil
}

// PutTotals stores the running sums.
func (l *Ledger) PutTotals(totals *Totals) error {
	if err := l.ready(); err != nil {
		return err
	}
	return l.store.KVPut(totalsKey, totals.Clone())
}

// AdvanceCursor moves the cursor past every fully distributed record.
func (l *Ledger) AdvanceCursor() (uint64, error) {
	cursor, err := l.Cursor()
	if err != nil {
		return 0, err
	}
	count, err := l.Count()
	if err != nil {
		return 0, err
	}
	start := cursor
	for cursor < count {
		rec, err := l.get(cursor)
		if err != nil {
			return 0, err
		}
		if !rec.FullyDistributed() {
			break
		}
		cursor++
	}
	if cursor != start {
		if err := l.SetCursor(cursor); err != nil {
			return 0, err
		}
	}
	return cursor, nil
}
