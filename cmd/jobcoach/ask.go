package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jobcoach/jobcoach/internal/client"
	"github.com/jobcoach/jobcoach/internal/countdown"
	"github.com/jobcoach/jobcoach/internal/observability"
	"github.com/jobcoach/jobcoach/internal/types"
	"github.com/spf13/cobra"
)

var (
	askServer string
	askInput  string
	askToken  string
	askWait   bool
	askJSON   bool
)

var askCmd = &cobra.Command{
	Use:   "ask <use-case>",
	Short: "Call one AI use case on a running server",
	Long: `Send a JSON request to a use-case endpoint and print the result.

Use cases: ` + useCaseList() + `

When the server answers 429 a countdown is shown and no further request is sent
until it ends. With --wait the request is retried once when the countdown finishes.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askServer, "server", "s", envOr("JOBCOACH_SERVER", "http://localhost:8080"), "Server base URL")
	askCmd.Flags().StringVarP(&askInput, "input", "i", "-", "Path to the JSON request body, - for stdin")
	askCmd.Flags().StringVar(&askToken, "token", os.Getenv("JOBCOACH_TOKEN"), "Bearer token sent with the request")
	askCmd.Flags().BoolVarP(&askWait, "wait", "w", false, "Wait out a rate limit and retry once")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "Print the raw JSON result instead of a summary")
	rootCmd.AddCommand(askCmd)
}

func useCaseList() string {
	names := make([]string, 0, len(types.AllUseCases()))
	for _, uc := range types.AllUseCases() {
		names = append(names, string(uc))
	}
	return strings.Join(names, ", ")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func runAsk(cmd *cobra.Command, args []string) error {
	uc := types.UseCase(args[0])
	if !uc.Valid() {
		return fmt.Errorf("unknown use case %q (expected one of: %s)", uc, useCaseList())
	}

	raw, err := readInput(cmd.InOrStdin(), askInput)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	return ask(ctx, cmd.OutOrStdout(), askOptions{
		useCase: uc,
		body:    raw,
		client:  client.New(askServer, client.WithToken(askToken)),
		wait:    askWait,
		rawJSON: askJSON,
	})
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read request: %w", err)
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("request is not valid JSON")
	}
	return raw, nil
}

type askOptions struct {
	useCase types.UseCase
	body    json.RawMessage
	client  *client.Client
	wait    bool
	rawJSON bool
	flow    []countdown.Option
}

// ask submits the request through a countdown flow so a rate-limited answer
// blocks any further request until the countdown ends.
func ask(ctx context.Context, out io.Writer, opts askOptions) error {
	printer := observability.NewPrinter(out)

	// The first state after a 429 is always shown; ticks are shown every ten
	// seconds and for the last five.
	var (
		printMu  sync.Mutex
		announce atomic.Bool
	)
	idle := make(chan struct{}, 1)
	flowOpts := append([]countdown.Option{}, opts.flow...)
	flowOpts = append(flowOpts, countdown.WithOnChange(func(s countdown.State) {
		if !s.Active {
			select {
			case idle <- struct{}{}:
			default:
			}
			return
		}
		if announce.Swap(false) || s.RemainingSeconds%10 == 0 || s.RemainingSeconds <= 5 {
			printMu.Lock()
			printer.PrintCountdown(s)
			printMu.Unlock()
		}
	}))
	flow := countdown.NewFlow(flowOpts...)
	defer flow.Close()

	for attempt := 0; ; attempt++ {
		var result json.RawMessage
		announce.Store(true)
		err := flow.Submit(ctx, func(ctx context.Context) error {
			var err error
			result, err = opts.client.Run(ctx, opts.useCase, opts.body)
			return err
		})
		announce.Store(false)

		var rateLimited *countdown.RateLimitedError
		if errors.As(err, &rateLimited) {
			if !opts.wait || attempt > 0 {
				return err
			}
			select {
			case <-idle:
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err != nil {
			return describe(err)
		}

		if opts.rawJSON {
			_, err := fmt.Fprintln(out, string(result))
			return err
		}
		dst := types.NewResult(opts.useCase)
		if err := json.Unmarshal(result, dst); err != nil {
			return fmt.Errorf("failed to decode %s result: %w", opts.useCase, err)
		}
		printer.PrintResult(dst)
		return nil
	}
}

func describe(err error) error {
	var payment *countdown.PaymentRequiredError
	if errors.As(err, &payment) {
		return fmt.Errorf("%s (no retry is attempted)", payment.Error())
	}
	return err
}
