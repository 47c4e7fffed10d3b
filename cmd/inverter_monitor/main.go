// Inverter Monitor polls each configured inverter gateway and serves the
// readings over HTTP and websocket.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/NotCoffee418/open_inverter_monitor/pkg/config"
	"github.com/NotCoffee418/open_inverter_monitor/pkg/monitor"
	"github.com/NotCoffee418/open_inverter_monitor/pkg/monitorapi"
	"github.com/NotCoffee418/open_inverter_monitor/pkg/pathing"
	"github.com/NotCoffee418/open_inverter_monitor/pkg/statestore"
	"github.com/NotCoffee418/open_inverter_monitor/pkg/types"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load config
	if err := config.LoadMonitorConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load monitor config")
	}

	// Initialize state database
	pathing.EnsureDataDir()
	statestore.InitializeDatabase()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mon := monitor.New(statestore.New())
	api := monitorapi.NewServer(mon)

	// Register every configured inverter; readings feed the ws clients
	for _, inv := range config.ActiveMonitorConfig.Inverters {
		deviceIp := inv.IpAddress
		_, err := mon.AddDevice(ctx, inv, func(reading types.Reading) {
			api.Broadcast(deviceIp, reading)
		})
		if err != nil {
			log.Fatal().Err(err).Str("device", deviceIp).Msg("Failed to register inverter")
		}
	}

	mux := http.NewServeMux()
	api.RegisterHandlers(mux)

	listener := fmt.Sprintf("%s:%d",
		config.ActiveMonitorConfig.ListenAddress,
		config.ActiveMonitorConfig.ListenPort)
	server := &http.Server{Addr: listener, Handler: mux}

	go func() {
		<-ctx.Done()
		log.Info().Msg("Shutting down")
		server.Shutdown(context.Background())
	}()

	log.Info().Str("listener", listener).Msg("Starting Open Inverter Monitor API")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("HTTP server failed")
	}

	// Let in-flight refreshes finish before exiting
	mon.Shutdown()
}
