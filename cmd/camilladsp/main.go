package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/markterrill/camilladsp-go/internal/config"
	"github.com/markterrill/camilladsp-go/internal/engine"
)

func main() {
	verbose := pflag.BoolP("verbose", "v", false, "Enable debug logging.")
	help := pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] CONFIGFILE\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "\nOptions:")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		return
	}

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	if len(pflag.Args()) != 1 {
		fmt.Fprintln(os.Stderr, "Exactly one argument required (path to a configuration file)")
		pflag.Usage()
		os.Exit(1)
	}
	configPath := pflag.Arg(0)

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "Invalid config file!")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	for name, fc := range cfg.Filters {
		if err := engine.ValidateFilterConfig(fc); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid config file! filter %q: %s\n", name, err)
			os.Exit(1)
		}
	}

	if err := engine.Run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
