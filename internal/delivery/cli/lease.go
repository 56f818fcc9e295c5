package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tentens-tech/lease-dashboard/internal/application"
	"github.com/tentens-tech/lease-dashboard/internal/bootstrap"
	"github.com/tentens-tech/lease-dashboard/internal/config"
)

const TokenEnv = "LEASE_DASHBOARD_TOKEN"

type applicationFactory func(ctx context.Context) (*application.Application, error)

func newApplication(ctx context.Context) (*application.Application, error) {
	configuration := config.NewConfig()
	if configuration.Debug {
		log.SetLevel(log.DebugLevel)
	}

	return bootstrap.NewApplication(ctx, configuration)
}

type leaseCommand struct {
	newApp applicationFactory
	token  string
}

// NewLease builds the one-shot lease commands. Each invocation is a single
// request context.
func NewLease(newApp applicationFactory) *cobra.Command {
	lc := &leaseCommand{newApp: newApp}

	cmd := &cobra.Command{
		Use:   "lease",
		Short: "Manage reservation leases",
	}
	cmd.PersistentFlags().StringVar(&lc.token, "token", os.Getenv(TokenEnv), "auth token for the reservation service")

	cmd.AddCommand(
		lc.listCommand(),
		lc.getCommand(),
		lc.createCommand(),
		lc.updateCommand(),
		lc.deleteCommand(),
	)

	return cmd
}

func (lc *leaseCommand) run(cmd *cobra.Command, fn func(ctx context.Context, app *application.Application, req *application.Request) (any, error)) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	app, err := lc.newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	req := app.NewRequest(lc.token)
	defer app.Release(req)

	result, err := fn(ctx, app, req)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}

	return printJSON(cmd.OutOrStdout(), result)
}

func (lc *leaseCommand) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List leases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return lc.run(cmd, func(ctx context.Context, app *application.Application, req *application.Request) (any, error) {
				return app.LeaseList(ctx, req)
			})
		},
	}
}

func (lc *leaseCommand) getCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get LEASE_ID",
		Short: "Show a lease",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return lc.run(cmd, func(ctx context.Context, app *application.Application, req *application.Request) (any, error) {
				return app.LeaseGet(ctx, req, args[0])
			})
		},
	}
}

func (lc *leaseCommand) createCommand() *cobra.Command {
	var (
		start        string
		end          string
		reservations []string
		events       []string
	)

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a lease",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			startDate, err := parseDate(start)
			if err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
			endDate, err := parseDate(end)
			if err != nil {
				return fmt.Errorf("invalid --end: %w", err)
			}
			reservationSpecs, err := parseObjects(reservations)
			if err != nil {
				return fmt.Errorf("invalid --reservation: %w", err)
			}
			eventSpecs, err := parseObjects(events)
			if err != nil {
				return fmt.Errorf("invalid --event: %w", err)
			}

			return lc.run(cmd, func(ctx context.Context, app *application.Application, req *application.Request) (any, error) {
				return app.LeaseCreate(ctx, req, args[0], startDate, endDate, reservationSpecs, eventSpecs)
			})
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "lease start, RFC 3339 or \"2006-01-02 15:04\" UTC")
	cmd.Flags().StringVar(&end, "end", "", "lease end, RFC 3339 or \"2006-01-02 15:04\" UTC")
	cmd.Flags().StringArrayVar(&reservations, "reservation", nil, "reservation specification as a JSON object, repeatable")
	cmd.Flags().StringArrayVar(&events, "event", nil, "event specification as a JSON object, repeatable")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func (lc *leaseCommand) updateCommand() *cobra.Command {
	var fields []string

	cmd := &cobra.Command{
		Use:   "update LEASE_ID",
		Short: "Update a lease",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			updates, err := parseFields(fields)
			if err != nil {
				return err
			}

			return lc.run(cmd, func(ctx context.Context, app *application.Application, req *application.Request) (any, error) {
				return app.LeaseUpdate(ctx, req, args[0], updates)
			})
		},
	}
	cmd.Flags().StringArrayVar(&fields, "set", nil, "field update as key=value, the value is read as JSON when it parses, repeatable")

	return cmd
}

func (lc *leaseCommand) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete LEASE_ID",
		Short: "Delete a lease",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return lc.run(cmd, func(ctx context.Context, app *application.Application, req *application.Request) (any, error) {
				if err := app.LeaseDelete(ctx, req, args[0]); err != nil {
					return nil, err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "Lease %s deleted\n", args[0])
				return nil, err
			})
		},
	}
}

func parseDate(value string) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}

	return time.Parse("2006-01-02 15:04", value)
}

func parseObjects(values []string) ([]map[string]any, error) {
	objects := make([]map[string]any, 0, len(values))
	for _, value := range values {
		var object map[string]any
		if err := json.Unmarshal([]byte(value), &object); err != nil {
			return nil, err
		}
		objects = append(objects, object)
	}

	return objects, nil
}

func parseFields(fields []string) (map[string]any, error) {
	updates := make(map[string]any, len(fields))
	for _, field := range fields {
		key, raw, found := strings.Cut(field, "=")
		if !found || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid --set %q, expected key=value", field)
		}

		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		updates[strings.TrimSpace(key)] = value
	}

	return updates, nil
}

func printJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
