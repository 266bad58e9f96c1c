// File: internal/usecase/ordernum.go
package usecase

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync/atomic"
	"time"

	"promotion-platform/internal/domain/model"
)

const (
	base36    = "0123456789abcdefghijklmnopqrstuvwxyz"
	tailSpace = 36 * 36 * 36 * 36 // 4 base36 chars
)

// tailSeq starts at a random point and steps once per order number, so tails
// within the same millisecond never repeat until 36^4 numbers have been drawn.
var tailSeq uint64

func init() {
	var b [8]byte
	_, _ = rand.Read(b[:])
	tailSeq = binary.BigEndian.Uint64(b[:])
}

// NewOrderNumber builds a gateway merchant order id:
//
//	<3-letter service prefix><yyyymmdd><last 6 digits of epoch ms><4-char base36 tail>
//
// Sortable by creation time; the randomly-seeded tail keeps concurrent
// generators collision-free without a shared counter service.
func NewOrderNumber(st model.ServiceType, now time.Time) string {
	ms := now.UnixMilli() % 1_000_000
	return fmt.Sprintf("%s%s%06d%s", st.OrderPrefix(), now.Format("20060102"), ms, nextTail())
}

func nextTail() string {
	n := atomic.AddUint64(&tailSeq, 1) % tailSpace
	var out [4]byte
	for i := 3; i >= 0; i-- {
		out[i] = base36[n%36]
		n /= 36
	}
	return string(out[:])
}
