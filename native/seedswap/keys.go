package seedswap

import "encoding/binary"

var (
	paramsKey    = []byte("seedswap/params")
	totalsKey    = []byte("seedswap/totals")
	countKey     = []byte("seedswap/count")
	cursorKey    = []byte("seedswap/cursor")
	recordPrefix = []byte("seedswap/record/")
	userPrefix   = []byte("seedswap/user/")
)

func encodeID(id uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], id)
	return buf[:]
}

func decodeID(b []byte) (uint64, bool) {
	if len(b) != 8 {
		return 0, false
	}
	return binary.BigEndian.Uint64(b), true
}

func recordKey(id uint64) []byte {
	buf := make([]byte, 0, len(recordPrefix)+8)
	buf = append(buf, recordPrefix...)
	return append(buf, encodeID(id)...)
}

func userIndexKey(user [20]byte) []byte {
	buf := make([]byte, 0, len(userPrefix)+len(user))
	buf = append(buf, userPrefix...)
	return append(buf, user[:]...)
}
