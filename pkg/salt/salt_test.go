package salt

import (
	"math/rand"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerator_Formats(t *testing.T) {
	gen := NewGenerator(rand.NewSource(1))

	tests := []struct {
		format  Format
		pattern string
	}{
		{DES, `^[./0-9A-Za-z]{2}$`},
		{MD5, `^\$1\$[./0-9A-Za-z]{8}$`},
		{SHA512, `^\$6\$[./0-9A-Za-z]{8}$`},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			got := gen.Make(tt.format)
			assert.Regexp(t, regexp.MustCompile(tt.pattern), got)
		})
	}
}

func TestGenerator_DeterministicSource(t *testing.T) {
	a := NewGenerator(rand.NewSource(42))
	b := NewGenerator(rand.NewSource(42))

	for i := 0; i < 5; i++ {
		assert.Equal(t, a.Make(SHA512), b.Make(SHA512))
	}

	c := NewGenerator(rand.NewSource(43))
	assert.NotEqual(t, NewGenerator(rand.NewSource(42)).Make(MD5), c.Make(MD5))
}

func TestGenerator_DefaultSource(t *testing.T) {
	gen := NewGenerator(nil)
	assert.Len(t, gen.Make(DES), 2)
}

func TestGenerator_Concurrent(t *testing.T) {
	gen := NewGenerator(nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if s := gen.Make(MD5); len(s) != 11 {
					t.Errorf("unexpected salt %q", s)
				}
			}
		}()
	}
	wg.Wait()
}

func TestFormatString(t *testing.T) {
	assert.Equal(t, "Format(9)", Format(9).String())
}
