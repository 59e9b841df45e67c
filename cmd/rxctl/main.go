// Command rxctl is an operator CLI for the prescription API. Credentials are kept
// between runs in a token file, or in Redis when RXCLIENT_REDIS_URL is set.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deploymenttheory/go-api-rx-client/httpclient"
	"github.com/deploymenttheory/go-api-rx-client/response"
	"github.com/deploymenttheory/go-api-rx-client/rxapi"
	"github.com/deploymenttheory/go-api-rx-client/tokenstore"
	"github.com/goccy/go-json"
)

const usage = `usage: rxctl <command> [flags]

commands:
  login -email <email> [-password <password>]   sign in (password falls back to RXCTL_PASSWORD)
  profile                                       show the signed-in user
  logout                                        sign out and forget credentials
  prescriptions [-scope mine|patient|all] [-status pending|consumed] [-page n] [-limit n]
  pdf <id> <file>                               save a prescription PDF
  users [-role admin|doctor|patient] [-page n] [-limit n]
  metrics [-preset today|7d|30d]                admin dashboard aggregates
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "help" {
		fmt.Fprint(stderr, usage)
		return 2
	}

	api, err := newService()
	if err != nil {
		fmt.Fprintf(stderr, "rxctl: %v\n", err)
		return 1
	}

	out := json.NewEncoder(stdout)
	out.SetIndent("", "  ")

	if err := dispatch(ctx, api, args[0], args[1:], out, stdout); err != nil {
		var usageErr usageError
		switch {
		case errors.As(err, &usageErr):
			fmt.Fprintf(stderr, "rxctl: %v\n\n%s", err, usage)
			return 2
		case errors.Is(err, response.ErrSessionExpired):
			fmt.Fprintln(stderr, "rxctl: session expired, run `rxctl login` again")
		default:
			fmt.Fprintf(stderr, "rxctl: %v\n", err)
		}
		return 1
	}
	return 0
}

type usageError string

func (e usageError) Error() string { return string(e) }

func dispatch(ctx context.Context, api *rxapi.Service, cmd string, args []string, out *json.Encoder, stdout io.Writer) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	switch cmd {
	case "login":
		email := fs.String("email", "", "account email")
		password := fs.String("password", os.Getenv("RXCTL_PASSWORD"), "account password")
		if err := fs.Parse(args); err != nil {
			return usageError(err.Error())
		}
		login, err := api.Auth.Login(ctx, rxapi.LoginCredentials{Email: *email, Password: *password})
		if err != nil {
			return err
		}
		if login.AccessToken == "" {
			return errors.New("server did not return credentials")
		}
		return out.Encode(login.User)

	case "profile":
		profile, err := api.Auth.Profile(ctx)
		if err != nil {
			return err
		}
		return out.Encode(profile)

	case "logout":
		api.Auth.Logout(ctx)
		fmt.Fprintln(stdout, "signed out")
		return nil

	case "prescriptions":
		scope := fs.String("scope", "mine", "mine (doctor), patient or all (admin)")
		status := fs.String("status", "", "pending or consumed")
		page := fs.Int("page", 0, "page number")
		limit := fs.Int("limit", 0, "page size")
		if err := fs.Parse(args); err != nil {
			return usageError(err.Error())
		}
		st := rxapi.PrescriptionStatus(*status)

		var result response.Page[rxapi.Prescription]
		var err error
		switch *scope {
		case "mine":
			result, err = api.Prescriptions.ListMine(ctx, rxapi.PrescriptionFilters{Status: st, Page: *page, Limit: *limit})
		case "patient":
			result, err = api.Prescriptions.ListForPatient(ctx, rxapi.PatientPrescriptionFilters{Status: st, Page: *page, Limit: *limit})
		case "all":
			result, err = api.Prescriptions.ListAll(ctx, rxapi.AdminPrescriptionFilters{Status: st, Page: *page, Limit: *limit})
		default:
			return usageError(fmt.Sprintf("unknown scope %q", *scope))
		}
		if err != nil {
			return err
		}
		return out.Encode(pageView(result))

	case "pdf":
		if len(args) != 2 {
			return usageError("pdf needs <id> <file>")
		}
		return savePDF(ctx, api, args[0], args[1], stdout)

	case "users":
		role := fs.String("role", "", "admin, doctor or patient")
		page := fs.Int("page", 0, "page number")
		limit := fs.Int("limit", 0, "page size")
		if err := fs.Parse(args); err != nil {
			return usageError(err.Error())
		}
		result, err := api.Admin.ListUsers(ctx, rxapi.UserFilters{Role: rxapi.Role(*role), Page: *page, Limit: *limit})
		if err != nil {
			return err
		}
		return out.Encode(pageView(result))

	case "metrics":
		preset := fs.String("preset", string(rxapi.PresetMonth), "today, 7d or 30d")
		if err := fs.Parse(args); err != nil {
			return usageError(err.Error())
		}
		p, err := rxapi.ParseDateRangePreset(*preset)
		if err != nil {
			return usageError(err.Error())
		}
		metrics, err := api.Admin.Metrics(ctx, rxapi.RangeForPreset(p, time.Now()).Filters())
		if err != nil {
			return err
		}
		return out.Encode(metrics)

	default:
		return usageError(fmt.Sprintf("unknown command %q", cmd))
	}
}

func savePDF(ctx context.Context, api *rxapi.Service, id, path string, stdout io.Writer) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	n, err := api.Prescriptions.DownloadPDF(ctx, id, f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return err
	}
	fmt.Fprintf(stdout, "wrote %d bytes to %s\n", n, path)
	return nil
}

type listView[T any] struct {
	Items []T               `json:"items"`
	Meta  *response.PageMeta `json:"meta,omitempty"`
}

func pageView[T any](p response.Page[T]) listView[T] {
	return listView[T]{Items: p.Items, Meta: p.Meta}
}

// newService builds the client from RXCLIENT_* variables. Without Redis the
// credentials go to the per-user token file.
func newService() (*rxapi.Service, error) {
	config, err := httpclient.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	if config.RedisURL == "" && config.TokenFile == "" {
		path, err := tokenstore.DefaultFilePath()
		if err != nil {
			return nil, fmt.Errorf("locating token file: %w", err)
		}
		config.TokenFile = path
	}

	session := rxapi.NewSession()
	config.OnSessionEnd = session.HandleSessionEnd

	client, err := httpclient.BuildClient(*config, true)
	if err != nil {
		return nil, err
	}
	return rxapi.NewService(client, session), nil
}
