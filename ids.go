package stoat

import "time"

// ID is a 26-character lexicographically time-ordered identifier (the
// platform calls these ULIDs). The type exists to keep entity identifiers
// distinct from arbitrary strings at the API boundary; it carries no
// validation beyond what the wire codec already guarantees.
type ID string

// String implements fmt.Stringer so IDs print bare in logs.
func (id ID) String() string { return string(id) }

// Mention returns the "<@id>" form used to address a user in message content.
func (id ID) Mention() string { return "<@" + string(id) + ">" }

// crockford32 is the Crockford base32 alphabet ULIDs are encoded with.
const crockford32 = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

var crockford32Index = func() [256]int8 {
	var tbl [256]int8
	for i := range tbl {
		tbl[i] = -1
	}
	for i := 0; i < len(crockford32); i++ {
		tbl[crockford32[i]] = int8(i)
		lower := crockford32[i] | 0x20
		tbl[lower] = int8(i)
	}
	return tbl
}()

// Timestamp decodes the 48-bit millisecond timestamp embedded in the
// first 10 characters of a ULID and reports whether id was well-formed
// enough to decode. A malformed or short id yields the zero time and false.
func (id ID) Timestamp() (time.Time, bool) {
	if len(id) < 10 {
		return time.Time{}, false
	}
	var ms uint64
	for i := 0; i < 10; i++ {
		v := crockford32Index[id[i]]
		if v < 0 {
			return time.Time{}, false
		}
		ms = ms<<5 | uint64(v)
	}
	return time.UnixMilli(int64(ms)).UTC(), true
}

// MemberKey is the composite identity of a server member: the pair
// (server-id, user-id). Members are looked up and cached by this key.
type MemberKey struct {
	Server ID
	User   ID
}
