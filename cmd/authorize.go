package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chargenet/roaming/app"
	"github.com/chargenet/roaming/config"
	"github.com/chargenet/roaming/core/backend"
	"github.com/chargenet/roaming/core/model"
)

var authorizeEVSE string

var authorizeCmd = &cobra.Command{
	Use:   "authorize <token>",
	Short: "Check a token against the local authorization pipeline",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthorize,
}

func init() {
	authorizeCmd.Flags().StringVar(&authorizeEVSE, "evse", "", "EVSE identifier to authorize at")
	rootCmd.AddCommand(authorizeCmd)
}

// runAuthorize builds the engine without any registered backend, so the
// verdict reflects the local pipeline only: blacklist, cache and rate limit.
func runAuthorize(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.MQTT.Enabled = false
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	var loc model.ChargingLocation
	if authorizeEVSE != "" {
		loc = model.AtEVSE(model.EVSEID(authorizeEVSE))
	}
	res := svc.Engine.AuthorizeStart(ctx, backend.AuthorizeRequest{
		Auth:     model.LocalAuthentication{Token: model.AuthToken(args[0])},
		Location: loc,
	})
	fmt.Printf("decision: %s", res.Decision)
	if res.Description != "" {
		fmt.Printf(" (%s)", res.Description)
	}
	fmt.Printf(" in %s\n", res.Runtime)
	return nil
}
