// Package query compiles operator supplied query templates into
// parameterized statements. Template placeholders never reach the query
// text as values: each occurrence becomes a positional marker ($1..$n) and
// its value is returned separately for out-of-band binding.
//
// Placeholders:
//
//	%u  user
//	%p  password
//	%s  service
//	%h  remote host
//	%i  remote address
//	%%  literal percent sign
package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxParameters is the largest number of placeholder occurrences a
// template may contain.
const MaxParameters = 128

var (
	// ErrTooManyParameters is returned when a template exceeds MaxParameters
	ErrTooManyParameters = errors.New("too many query parameters")

	// ErrAddressRequired is returned when %i is used, the remote address
	// could not be resolved, and the remote host looks like it should have
	ErrAddressRequired = errors.New("remote address required")

	// ErrUnknownPlaceholder is returned in strict mode for %x sequences
	// outside the placeholder set
	ErrUnknownPlaceholder = errors.New("unknown placeholder")
)

// Placeholder is a symbolic template token.
type Placeholder int

const (
	User Placeholder = iota
	Password
	Service
	RemoteHost
	RemoteAddress
)

func (p Placeholder) String() string {
	switch p {
	case User:
		return "user"
	case Password:
		return "password"
	case Service:
		return "service"
	case RemoteHost:
		return "rhost"
	case RemoteAddress:
		return "raddr"
	}
	return fmt.Sprintf("Placeholder(%d)", int(p))
}

func placeholderFor(c byte) (Placeholder, bool) {
	switch c {
	case 'u':
		return User, true
	case 'p':
		return Password, true
	case 's':
		return Service, true
	case 'h':
		return RemoteHost, true
	case 'i':
		return RemoteAddress, true
	}
	return 0, false
}

// Values are the substitution sources for one authentication attempt. An
// empty RemoteAddress means resolution failed or was not attempted.
type Values struct {
	User          string
	Password      string
	Service       string
	RemoteHost    string
	RemoteAddress string
}

func (v Values) lookup(p Placeholder) string {
	switch p {
	case User:
		return v.User
	case Password:
		return v.Password
	case Service:
		return v.Service
	case RemoteHost:
		return v.RemoteHost
	case RemoteAddress:
		return v.RemoteAddress
	}
	return ""
}

// Query is a compiled template: Text carries only template bytes and
// positional markers, Args holds one value per marker in marker order.
type Query struct {
	Text         string
	Args         []string
	Placeholders []Placeholder
}

// Empty reports whether no query was configured.
func (q *Query) Empty() bool {
	return q == nil || q.Text == ""
}

// Compiler turns templates into queries.
type Compiler struct {
	// Strict rejects %x sequences that are not placeholders instead of
	// copying them through.
	Strict bool
}

// Compile compiles template with the default, permissive compiler.
func Compile(template string, v Values) (*Query, error) {
	return Compiler{}.Compile(template, v)
}

// Compile scans template left to right and emits the parameterized query.
// An empty template yields an empty Query.
func (c Compiler) Compile(template string, v Values) (*Query, error) {
	q := &Query{}
	if template == "" {
		return q, nil
	}

	var b strings.Builder
	b.Grow(len(template) + 8)

	for i := 0; i < len(template); i++ {
		ch := template[i]
		if ch != '%' || i+1 == len(template) {
			b.WriteByte(ch)
			continue
		}

		next := template[i+1]
		i++

		if next == '%' {
			b.WriteByte('%')
			continue
		}

		p, ok := placeholderFor(next)
		if !ok {
			if c.Strict {
				return nil, fmt.Errorf("%w: %%%c at offset %d", ErrUnknownPlaceholder, next, i-1)
			}
			b.WriteByte('%')
			b.WriteByte(next)
			continue
		}

		if len(q.Args) == MaxParameters {
			return nil, fmt.Errorf("%w: limit is %d", ErrTooManyParameters, MaxParameters)
		}
		if p == RemoteAddress && v.RemoteAddress == "" && strings.Contains(v.RemoteHost, ".") {
			return nil, fmt.Errorf("%w: could not resolve %q", ErrAddressRequired, v.RemoteHost)
		}

		q.Args = append(q.Args, v.lookup(p))
		q.Placeholders = append(q.Placeholders, p)
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(len(q.Args)))
	}

	q.Text = b.String()
	return q, nil
}
