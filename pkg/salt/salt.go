// Package salt generates the salt settings crypt(3) style hashes are created
// with. The on-disk formats are fixed; the random source is injected.
package salt

import (
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mmcdole/pgsql-auth/pkg/radix64"
)

// Format selects the textual salt layout.
type Format int

const (
	// DES is the traditional two character salt.
	DES Format = iota
	// MD5 is "$1$" followed by eight characters.
	MD5
	// SHA512 is "$6$" followed by eight characters.
	SHA512
)

func (f Format) String() string {
	switch f {
	case DES:
		return "des"
	case MD5:
		return "md5"
	case SHA512:
		return "sha512"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

func (f Format) layout() (prefix string, n int) {
	switch f {
	case MD5:
		return "$1$", 8
	case SHA512:
		return "$6$", 8
	}
	return "", 2
}

var seedCounter atomic.Int64

// TimeSource returns a math/rand source seeded from the wall clock and a
// process-wide counter, so sources created in the same microsecond differ.
func TimeSource() rand.Source {
	now := time.Now()
	seed := now.Unix()*10000 + int64(now.Nanosecond()/100000) + seedCounter.Add(1)
	return rand.NewSource(seed)
}

// Generator produces salts from one random source. It is safe for
// concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewGenerator returns a Generator drawing from src. A nil src uses TimeSource.
func NewGenerator(src rand.Source) *Generator {
	if src == nil {
		src = TimeSource()
	}
	return &Generator{rnd: rand.New(src)}
}

// Make returns a fresh salt setting in the given format.
func (g *Generator) Make(f Format) string {
	prefix, n := f.layout()
	buf := make([]byte, 0, len(prefix)+n)
	buf = append(buf, prefix...)

	g.mu.Lock()
	for i := 0; i < n; i++ {
		buf = append(buf, radix64.Char(int(g.rnd.Int63()&63)))
	}
	g.mu.Unlock()

	return string(buf)
}
