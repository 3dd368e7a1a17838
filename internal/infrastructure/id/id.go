package id

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }

const base36 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// OrderNumbers produces customer-facing order numbers: "DX", the creation time in
// base36 milliseconds, then five random base36 characters.
type OrderNumbers struct {
	now    func() time.Time
	suffix func() string
}

func NewOrderNumbers() *OrderNumbers {
	return &OrderNumbers{now: time.Now, suffix: randomSuffix}
}

func (g *OrderNumbers) NewNumber() string {
	ts := strings.ToUpper(strconv.FormatInt(g.now().UnixMilli(), 36))
	return "DX" + ts + g.suffix()
}

func randomSuffix() string {
	var b [5]byte
	for i := range b {
		b[i] = base36[rand.IntN(len(base36))]
	}
	return string(b[:])
}
