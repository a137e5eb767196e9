package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"schedlens/internal/app"
)

func main() {
	var opts app.Options
	flag.StringVar(&opts.ConfigPath, "config", "./config.json", "path to config file (json or yaml)")
	flag.StringVar(&opts.Date, "date", "", "target date YYYY-MM-DD (default: today)")
	flag.StringVar(&opts.Domain, "domain", "", "domain for the timeline view")
	flag.StringVar(&opts.View, "view", "report", "view to render: report or timeline")
	flag.BoolVar(&opts.Watch, "watch", false, "keep running and re-evaluate on snapshot changes")
	flag.Parse()
	opts.Out = os.Stdout

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(opts)
	if err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}

	if err := a.Run(ctx); err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}
}
