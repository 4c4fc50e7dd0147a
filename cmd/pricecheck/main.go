// Command pricecheck runs one price lookup from the command line and prints the result as JSON.
//
//	pricecheck [--store-driver sqlite --store-dsn file:prices.db] [--parallel] <product description>
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/pricematrix/backend/config"
	"github.com/pricematrix/backend/internal/app"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("pricecheck", pflag.ContinueOnError)
	flags.String("store-driver", "", "price store driver: postgres, sqlite or memory")
	flags.String("store-dsn", "", "price store connection string")
	flags.Bool("parallel", false, "scrape both retailers concurrently")
	flags.Bool("list", false, "print every cached product instead of looking one up (no LLM key needed)")
	verbose := flags.BoolP("verbose", "v", false, "log workflow progress to stdout")
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: pricecheck [flags] <product description>")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	v := config.NewViper()
	bindings := map[string]string{
		"store.driver":             "store-driver",
		"store.dsn":                "store-dsn",
		"workflow.parallel_scrape": "parallel",
	}
	for key, name := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			fmt.Fprintf(os.Stderr, "failed to bind flag %s: %v\n", name, err)
			return 1
		}
	}

	listOnly, _ := flags.GetBool("list")
	load := config.FromViper
	if listOnly {
		load = config.FromViperWithoutLLM
	}
	cfg, err := load(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return 1
	}

	env := "production"
	if *verbose {
		env = "development"
	}
	app.SetupLogger(env)
	if !*verbose {
		log.Logger = log.Logger.Level(zerolog.Disabled)
	}

	query := strings.Join(flags.Args(), " ")
	if query == "" && !listOnly {
		flags.Usage()
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var components *app.Components
	if listOnly {
		components, err = app.BuildCatalog(cfg)
	} else {
		components, err = app.Build(ctx, cfg)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize: %v\n", err)
		return 1
	}
	defer components.Close()

	var result any
	if listOnly {
		result, err = components.Catalog.ListProducts(ctx)
	} else {
		result, err = components.Service.Lookup(ctx, query)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "lookup failed: %v\n", err)
		return 1
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode result: %v\n", err)
		return 1
	}
	return 0
}
