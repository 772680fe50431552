package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/mmcdole/pgsql-auth/pkg/authentication"
	"github.com/mmcdole/pgsql-auth/pkg/backend"
	"github.com/mmcdole/pgsql-auth/pkg/logging"
	"github.com/mmcdole/pgsql-auth/pkg/query"
)

// Exit statuses of the auth command
const (
	exitSuccess            = 0
	exitAuthError          = 1
	exitUserUnknown        = 2
	exitServiceUnavailable = 3
)

var (
	version     = "dev" // Will be set during build
	cfgFile     string
	showVersion bool

	authUser    string
	authService string
	authRHost   string

	hashScheme string
	hashUser   string
	hashSalt   string

	// swapped out by tests
	appFs       = afero.NewOsFs()
	newExecutor = executorFor

	exitStatus int
)

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if exitStatus == exitSuccess {
			exitStatus = exitAuthError
		}
	}
	os.Exit(exitStatus)
}

var rootCmd = &cobra.Command{
	Use:           "pgsql-auth",
	Short:         "PostgreSQL password authenticator",
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `pgsql-auth - verify passwords against a PostgreSQL table

Credentials are checked by running a configured query template and comparing
the returned stored values with the supplied password.

Configuration file must be in JSON format with the following structure:
{
    "host": "db.example.org",
    "database": "accounts",
    "user": "auth",
    "password": "secret",
    "sslmode": "require",
    "connect_timeout": 5,
    "driver": "pgx",
    "auth_query": "select password from users where login = %u",
    "pw_type": "crypt-sha512",
    "auth_log_path": "/var/log/pgsql-auth/auth.log",
    "app_log_path": "/var/log/pgsql-auth/app.log",
    "log_level": "info"
}`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Fprintf(cmd.OutOrStdout(), "pgsql-auth %s\n", version)
			return nil
		}
		return cmd.Help()
	},
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authenticate one user, reading the password from stdin",
	Long: `Authenticate one user. The password is the first line of stdin.

User, service and remote host default to PAM_USER, PAM_SERVICE and PAM_RHOST.
Exit status: 0 success, 1 authentication error, 2 unknown user,
3 service unavailable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// anything failing before the query runs leaves the service unusable
		exitStatus = exitServiceUnavailable

		config, err := loadConfig()
		if err != nil {
			return err
		}
		if err := logging.Initialize(logging.Options{
			Fs:          appFs,
			AuthLogPath: config.AuthLogPath,
			AppLogPath:  config.AppLogPath,
			Level:       config.Level,
		}); err != nil {
			return fmt.Errorf("failed to initialize logging: %v", err)
		}
		defer logging.App.Close()
		defer logging.Auth.Close()

		password, err := readPassword(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read password: %v", err)
		}

		req := authentication.Request{
			User:       firstNonEmpty(authUser, os.Getenv("PAM_USER")),
			Service:    firstNonEmpty(authService, os.Getenv("PAM_SERVICE")),
			RemoteHost: firstNonEmpty(authRHost, os.Getenv("PAM_RHOST")),
			Password:   password,
		}
		if req.User == "" {
			return fmt.Errorf("no user given (use --user or PAM_USER)")
		}

		executor, err := newExecutor(config)
		if err != nil {
			return fmt.Errorf("failed to create query executor: %v", err)
		}

		authenticator, err := authentication.NewAuthenticator(executor, authentication.Config{
			Query:              config.AuthQuery,
			Scheme:             config.Scheme,
			StrictPlaceholders: config.StrictPlaceholders,
			Resolver:           authentication.NetResolver{Timeout: config.ResolveTimeoutDuration()},
		})
		if err != nil {
			return fmt.Errorf("failed to create authenticator: %v", err)
		}

		outcome := authenticator.Authenticate(cmd.Context(), req)
		exitStatus = exitCode(outcome)
		fmt.Fprintln(cmd.OutOrStdout(), outcome)
		return nil
	},
}

var hashCmd = &cobra.Command{
	Use:   "hash",
	Short: "Print a stored value for the password read from stdin",
	RunE: func(cmd *cobra.Command, args []string) error {
		scheme, err := authentication.ParseScheme(hashScheme)
		if err != nil {
			return err
		}

		password, err := readPassword(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read password: %v", err)
		}

		stored, err := authentication.NewHasher(nil).Hash(scheme, hashUser, password, hashSalt)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), stored)
		return nil
	},
}

var checkConfigCmd = &cobra.Command{
	Use:   "check-config",
	Short: "Validate the configuration file and query template",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig()
		if err != nil {
			return err
		}
		if config.AuthQuery == "" {
			return fmt.Errorf("auth_query is not set")
		}

		q, err := query.Compiler{Strict: config.StrictPlaceholders}.Compile(config.AuthQuery, query.Values{
			User:          "user",
			Password:      "password",
			Service:       "service",
			RemoteHost:    "localhost",
			RemoteAddress: "127.0.0.1",
		})
		if err != nil {
			return fmt.Errorf("auth_query: %w", err)
		}

		names := make([]string, len(q.Placeholders))
		for i, p := range q.Placeholders {
			names[i] = p.String()
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "driver: %s\n", config.Driver)
		fmt.Fprintf(out, "pw_type: %s\n", config.Scheme)
		fmt.Fprintf(out, "query: %s\n", q.Text)
		fmt.Fprintf(out, "parameters: %d [%s]\n", len(q.Args), strings.Join(names, " "))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to config file")
	rootCmd.Flags().BoolVarP(&showVersion, "version", "v", false, "show version information")

	authCmd.Flags().StringVarP(&authUser, "user", "u", "", "user name (default $PAM_USER)")
	authCmd.Flags().StringVarP(&authService, "service", "s", "", "service name (default $PAM_SERVICE)")
	authCmd.Flags().StringVarP(&authRHost, "rhost", "r", "", "remote host (default $PAM_RHOST)")

	hashCmd.Flags().StringVar(&hashScheme, "scheme", authentication.CryptSHA512.String(), "password scheme")
	hashCmd.Flags().StringVarP(&hashUser, "user", "u", "", "user name, used by md5-postgres")
	hashCmd.Flags().StringVar(&hashSalt, "salt", "", "salt or crypt setting; required for pbkdf2")

	rootCmd.AddCommand(authCmd, hashCmd, checkConfigCmd)
}

func loadConfig() (*Config, error) {
	if cfgFile == "" {
		return nil, fmt.Errorf("config file is required (use --config)")
	}

	// Convert to absolute path if needed
	path := cfgFile
	if !filepath.IsAbs(path) {
		var err error
		path, err = filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path: %v", err)
		}
	}

	var config Config
	if err := LoadConfig(appFs, path, &config); err != nil {
		return nil, fmt.Errorf("failed to load config: %v", err)
	}
	return &config, nil
}

func executorFor(config *Config) (backend.Executor, error) {
	connString := config.ConnInfo().String()
	switch config.Driver {
	case DriverPgx:
		return backend.NewPgxExecutor(connString), nil
	case DriverPostgres:
		return backend.NewSQLExecutor("postgres", connString), nil
	case DriverPgxSQL:
		return backend.NewSQLExecutor("pgx", connString), nil
	}
	return nil, fmt.Errorf("unknown driver %q", config.Driver)
}

// readPassword returns the first line of r without its line ending
func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func exitCode(o authentication.Outcome) int {
	switch o {
	case authentication.Success:
		return exitSuccess
	case authentication.AuthError:
		return exitAuthError
	case authentication.UserUnknown:
		return exitUserUnknown
	}
	return exitServiceUnavailable
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
