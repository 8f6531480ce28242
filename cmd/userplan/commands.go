package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"evolve_backend/internal/api"
	subscriptionusecase "evolve_backend/internal/feature/subscription/usecase"
	usagehandler "evolve_backend/internal/feature/usage/transport/handler"
	usageusecase "evolve_backend/internal/feature/usage/usecase"
	userusecase "evolve_backend/internal/feature/user/usecase"
	jwtmw "evolve_backend/internal/platform/jwt"
)

// backend is an opened store and the settings the commands need.
type backend struct {
	store userusecase.Store
	close func()
}

type backendOpener func(ctx context.Context) (*backend, error)

func newRootCmd(open backendOpener) *cobra.Command {
	root := &cobra.Command{
		Use:           "userplan",
		Short:         "Inspect and change user subscription plans",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newShowCmd(open), newSetCmd(open), newTokenCmd())
	return root
}

func newShowCmd(open backendOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "show <clerkId>",
		Short: "Print a user and today's usage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := open(ctx)
			if err != nil {
				return err
			}
			defer b.close()

			u, err := userusecase.NewUserUsecase(b.store).Get(ctx, args[0])
			if err != nil {
				return err
			}
			st, err := usageusecase.NewGateUsecase(b.store).Status(ctx, args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), struct {
				User        api.User                `json:"user"`
				UsageStatus api.UsageStatusResponse `json:"usageStatus"`
			}{api.NewUser(u), usagehandler.NewStatusResponse(st)})
		},
	}
}

func newSetCmd(open backendOpener) *cobra.Command {
	var (
		start, end string
		paymentID  string
		price      float64
	)
	cmd := &cobra.Command{
		Use:   "set <clerkId> <Free|Starter|Pro>",
		Short: "Change a user's plan",
		Long: `Change a user's plan the same way POST /subscription/update does.

Paid plans reset today's usage and metrics. Without --start and --end the
subscription runs for one month from now. Dates accept YYYY-MM-DD (local
time) or RFC 3339.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := subscriptionusecase.UpdateInput{
				ClerkID:         args[0],
				Plan:            args[1],
				PaymentID:       paymentID,
				PriceAtPurchase: price,
			}
			var err error
			if in.StartDate, err = parseDate(start); err != nil {
				return fmt.Errorf("--start: %w", err)
			}
			if in.EndDate, err = parseDate(end); err != nil {
				return fmt.Errorf("--end: %w", err)
			}

			ctx := cmd.Context()
			b, err := open(ctx)
			if err != nil {
				return err
			}
			defer b.close()

			u, err := subscriptionusecase.NewSubscriptionUsecase(b.store).Update(ctx, in)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), api.NewUser(u))
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "subscription start date")
	cmd.Flags().StringVar(&end, "end", "", "subscription end date")
	cmd.Flags().StringVar(&paymentID, "payment-id", "", "payment reference")
	cmd.Flags().Float64Var(&price, "price", 0, "price at purchase")
	return cmd
}

func newTokenCmd() *cobra.Command {
	var (
		keyFile string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token <clerkId>",
		Short: "Sign a session token for local testing",
		Long: `Sign an RS256 token whose subject is the given Clerk ID.

The server accepts it when CLERK_JWT_KEY holds the matching public key.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pemBytes, err := os.ReadFile(keyFile)
			if err != nil {
				return err
			}
			signer, err := jwtmw.NewSigner(string(pemBytes), ttl)
			if err != nil {
				return err
			}
			token, err := signer.Sign(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&keyFile, "key-file", "", "PEM encoded RSA private key")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("key-file")
	return cmd
}

// parseDate returns nil for an empty value.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q", s)
	}
	return &t, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
