package authentication

import (
	"context"
	"fmt"

	golog "github.com/fclairamb/go-log"

	"github.com/mmcdole/pgsql-auth/pkg/backend"
	"github.com/mmcdole/pgsql-auth/pkg/logging"
	"github.com/mmcdole/pgsql-auth/pkg/query"
)

// Outcome is the result of one authentication attempt.
type Outcome int

const (
	// Success means a row verified
	Success Outcome = iota
	// AuthError means rows were found but none verified, or the query
	// template could not be compiled
	AuthError
	// UserUnknown means the query returned no rows
	UserUnknown
	// ServiceUnavailable means there was no query configured or the
	// database could not be used
	ServiceUnavailable
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case AuthError:
		return "auth_error"
	case UserUnknown:
		return "user_unknown"
	case ServiceUnavailable:
		return "service_unavailable"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Request carries the caller supplied values for one attempt.
type Request struct {
	Service    string
	User       string
	Password   string
	RemoteHost string
}

// Config is the read-only configuration of an Authenticator.
type Config struct {
	// Query is the template; empty means no query is configured
	Query  string
	Scheme Scheme
	// StrictPlaceholders rejects unknown %x sequences in Query
	StrictPlaceholders bool

	// Hasher defaults to NewHasher(nil)
	Hasher *Hasher
	// Resolver defaults to NetResolver{}
	Resolver Resolver
	// Logger defaults to logging.App
	Logger golog.Logger
	// AuthLog defaults to logging.Auth
	AuthLog logging.AuthLogger
}

// Authenticator checks credentials against rows returned by a query. It
// keeps no per-attempt state and is safe for concurrent use.
type Authenticator struct {
	executor backend.Executor
	compiler query.Compiler
	query    string
	scheme   Scheme
	hasher   *Hasher
	resolver Resolver
	logger   golog.Logger
	authLog  logging.AuthLogger
}

// NewAuthenticator binds executor to cfg. Unset collaborators fall back to
// NewHasher(nil), NetResolver{}, logging.App and logging.Auth. It fails if
// executor is nil or cfg.Scheme has no verifier.
func NewAuthenticator(executor backend.Executor, cfg Config) (*Authenticator, error) {
	if executor == nil {
		return nil, fmt.Errorf("query executor is required")
	}
	if cfg.Hasher == nil {
		cfg.Hasher = NewHasher(nil)
	}
	if _, err := cfg.Hasher.Verifier(cfg.Scheme); err != nil {
		return nil, err
	}

	a := &Authenticator{
		executor: executor,
		compiler: query.Compiler{Strict: cfg.StrictPlaceholders},
		query:    cfg.Query,
		scheme:   cfg.Scheme,
		hasher:   cfg.Hasher,
		resolver: cfg.Resolver,
		logger:   cfg.Logger,
		authLog:  cfg.AuthLog,
	}
	if a.resolver == nil {
		a.resolver = NetResolver{}
	}
	if a.logger == nil {
		a.logger = logging.App
	}
	if a.authLog == nil {
		a.authLog = logging.Auth
	}
	return a, nil
}

// Authenticate runs the configured query for req and verifies the returned
// rows in order, accepting on the first match. Failures never surface as
// errors: they are logged and folded into the Outcome.
func (a *Authenticator) Authenticate(ctx context.Context, req Request) Outcome {
	outcome := a.authenticate(ctx, req)
	a.authLog.LogAuth("AUTH", req.User, outcome.String(),
		"service", req.Service,
		"rhost", req.RemoteHost,
		"scheme", a.scheme,
	)
	return outcome
}

func (a *Authenticator) authenticate(ctx context.Context, req Request) Outcome {
	log := a.logger.With("user", req.User, "service", req.Service)

	if a.query == "" {
		log.Error("No authentication query configured")
		return ServiceUnavailable
	}

	values := query.Values{
		User:       req.User,
		Password:   req.Password,
		Service:    req.Service,
		RemoteHost: req.RemoteHost,
	}
	if req.RemoteHost != "" {
		addr, err := a.resolver.ResolveIPv4(ctx, req.RemoteHost)
		if err != nil {
			log.Debug("Remote host did not resolve", "rhost", req.RemoteHost, "error", err)
		}
		values.RemoteAddress = addr
	}

	q, err := a.compiler.Compile(a.query, values)
	if err != nil {
		log.Error("Compiling authentication query", "error", err)
		return AuthError
	}
	log.Debug("Executing authentication query", "query", q.Text, "params", len(q.Args))

	rs, err := a.executor.Execute(ctx, q.Text, q.Args)
	if err != nil {
		log.Error("Executing authentication query", "error", err)
		return ServiceUnavailable
	}

	if rs.Len() == 0 {
		return UserUnknown
	}

	for row := 0; row < rs.Len(); row++ {
		if rs.IsNull(row, 0) {
			continue
		}
		stored := Stored{Hash: rs.Text(row, 0)}
		if !rs.IsNull(row, 1) {
			stored.Salt, stored.HasSalt = rs.Text(row, 1), true
		}

		ok, err := a.hasher.Verify(a.scheme, req.User, req.Password, stored)
		if err != nil {
			log.Warn("Row could not be verified", "row", row, "error", err)
			continue
		}
		if ok {
			return Success
		}
	}
	return AuthError
}
