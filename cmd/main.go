package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/pflag"

	"pager/app"
	"pager/config"
	"pager/database"
	"pager/services"
)

func main() {
	envFile := pflag.String("env", ".env", "path to the .env configuration file")
	history := pflag.Int("history", 0, "print the last N journaled page outcomes and exit")
	pflag.Parse()

	cfg, err := config.LoadConfig(*envFile)
	if err != nil {
		log.Fatal("Config error:", err)
	}

	var db *sql.DB
	if cfg.JournalEnabled() {
		db, err = database.ConnectDB(cfg)
		if err != nil {
			log.Fatal("Journal database error:", err)
		}
		defer db.Close()
		if err := database.EnsureSchema(db); err != nil {
			log.Fatal(err)
		}
	}

	network := services.NewNetInterface(cfg.NetInterface)

	if *history > 0 {
		if err := printHistory(db, network, *history); err != nil {
			log.Fatal(err)
		}
		return
	}

	// Display and GPIO failures halt startup.
	display, err := services.OpenDisplay(cfg.DisplayDevice)
	if err != nil {
		log.Fatal("Display init failed:", err)
	}
	defer display.Close()

	gpio, err := services.OpenGPIO(cfg.GpioChip)
	if err != nil {
		log.Fatal("GPIO init failed:", err)
	}
	defer gpio.Close()

	hw, err := requestLines(gpio, cfg)
	if err != nil {
		log.Fatal("GPIO init failed:", err)
	}

	var recorders app.Recorders
	var nc *nats.Conn
	if cfg.NatsUrl != "" {
		nc, err = services.InitNats(cfg.NatsUrl)
		if err != nil {
			log.Fatal(err)
		}
		recorders = append(recorders, services.NewNatsMirror(nc))
	}
	var journal *app.PageJournal
	if db != nil {
		journal = app.NewPageJournal(db, nil)
		recorders = append(recorders, journal)
	}

	broker := services.NewMqttService(cfg.MqttBroker, cfg.MqttUser, cfg.MqttPassword)

	badge, err := app.NewBadge(app.BadgeConfig{
		Name:     cfg.BadgeName,
		Debounce: time.Duration(cfg.DebounceMs) * time.Millisecond,
		Recorder: recorders,
	}, app.NewClock(), broker, network, display, hw)
	if err != nil {
		log.Fatal("Failed to initialize badge:", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		badge.Run(ctx)
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Received shutdown signal, shutting down...")
	cancel()

	// A reconnect in progress is never interrupted; give up waiting on it.
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		log.Println("Badge loop still reconnecting, exiting anyway")
	}

	if nc != nil {
		nc.Drain()
	}
	if journal != nil {
		journal.Close()
	}

	log.Println("Shutdown complete.")
}

func requestLines(gpio *services.GPIO, cfg config.Config) (app.Hardware, error) {
	var hw app.Hardware
	var err error
	if hw.Flash, err = gpio.Output("flash", cfg.PinFlash); err != nil {
		return hw, err
	}
	if hw.Vibrate, err = gpio.Output("vibrate", cfg.PinVibrate); err != nil {
		return hw, err
	}
	if hw.ConnLED, err = gpio.Output("conn", cfg.PinConn); err != nil {
		return hw, err
	}
	if hw.Accept, err = gpio.Input("accept", cfg.PinAccept, cfg.ButtonActiveLow); err != nil {
		return hw, err
	}
	if hw.Refuse, err = gpio.Input("refuse", cfg.PinRefuse, cfg.ButtonActiveLow); err != nil {
		return hw, err
	}
	return hw, nil
}

func printHistory(db *sql.DB, network *services.NetInterface, n int) error {
	if db == nil {
		return fmt.Errorf("--history needs DB_HOST to be configured")
	}
	id, err := network.HardwareAddr()
	if err != nil {
		return err
	}
	outcomes, err := app.GetPageOutcomes(db, id, n)
	if err != nil {
		return err
	}
	for _, o := range outcomes {
		fmt.Printf("%s\t%s\t%s\n", o.UUID, o.Kind, o.Response)
	}
	return nil
}
