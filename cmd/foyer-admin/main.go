// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/foyer-systems/foyer/lib/config"
	"github.com/foyer-systems/foyer/lib/envfile"
	"github.com/foyer-systems/foyer/lib/identity"
	"github.com/foyer-systems/foyer/lib/setup"
	"github.com/foyer-systems/foyer/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		printUsage()
		return fmt.Errorf("subcommand required")
	}

	subcommand := os.Args[1]
	switch subcommand {
	case "status":
		return runStatus(os.Args[2:])
	case "get":
		return runGet(os.Args[2:])
	case "set":
		return runSet(os.Args[2:])
	case "provision":
		return runProvision(os.Args[2:])
	case "version":
		fmt.Printf("foyer-admin %s\n", version.Info())
		return nil
	case "-h", "--help", "help":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown subcommand: %q", subcommand)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: foyer-admin <subcommand> [flags]

Subcommands:
  status      Show provisioning state and admin account
  get         Print configuration values from the environment file
  set         Write KEY=VALUE pairs to the environment file
  provision   Create the admin account and mark setup complete
  version     Print version information

All subcommands operate on the state files directly and accept
--config (or FOYER_CONFIG) to locate them. Run them on the host that
owns the files, not against a running foyerd.

Run 'foyer-admin <subcommand> --help' for subcommand flags.
`)
}

// loadConfig resolves the daemon configuration for a subcommand. The
// explicit --config flag wins over FOYER_CONFIG.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func runStatus(args []string) error {
	flags := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := flags.String("config", "", "path to foyer.yaml (overrides FOYER_CONFIG)")
	flags.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	lock := setup.NewLock(cfg.State.SetupLock)
	completedAt, completed, err := lock.CompletedAt()
	if err != nil {
		return fmt.Errorf("reading setup marker: %w", err)
	}

	if !completed {
		fmt.Println("state: unprovisioned")
		return nil
	}
	fmt.Println("state: provisioned")
	if !completedAt.IsZero() {
		fmt.Printf("completed: %s\n", completedAt.Format(time.RFC3339))
	}

	admin, err := identity.NewStore(cfg.State.AdminFile).Load()
	switch {
	case err == nil:
		fmt.Printf("admin: %s (created %s)\n", admin.Username, admin.CreatedAt.Format(time.RFC3339))
	case errors.Is(err, identity.ErrNotProvisioned):
		fmt.Println("admin: missing")
	default:
		return fmt.Errorf("reading admin record: %w", err)
	}
	return nil
}

func runGet(args []string) error {
	flags := flag.NewFlagSet("get", flag.ExitOnError)
	configPath := flags.String("config", "", "path to foyer.yaml (overrides FOYER_CONFIG)")
	flags.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	mapping, err := envfile.NewStore(cfg.State.EnvFile).ReadAll()
	if err != nil {
		return err
	}

	if flags.NArg() > 0 {
		for _, key := range flags.Args() {
			value, found := mapping[key]
			if !found {
				return fmt.Errorf("%s is not set", key)
			}
			fmt.Println(value)
		}
		return nil
	}

	keys := make([]string, 0, len(mapping))
	for key := range mapping {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("%s=%s\n", key, mapping[key])
	}
	return nil
}

func runSet(args []string) error {
	flags := flag.NewFlagSet("set", flag.ExitOnError)
	configPath := flags.String("config", "", "path to foyer.yaml (overrides FOYER_CONFIG)")
	flags.Parse(args)

	if flags.NArg() == 0 {
		return fmt.Errorf("usage: foyer-admin set KEY=VALUE [KEY=VALUE ...]")
	}

	updates := make(map[string]string, flags.NArg())
	for _, argument := range flags.Args() {
		key, value, found := strings.Cut(argument, "=")
		if !found || key == "" {
			return fmt.Errorf("expected KEY=VALUE, got %q", argument)
		}
		updates[key] = value
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	store := envfile.NewStore(cfg.State.EnvFile)
	changed, err := store.UpsertMany(updates)
	if err != nil {
		return err
	}
	if !changed {
		fmt.Println("no change")
		return nil
	}

	digest, err := store.Digest()
	if err != nil {
		return err
	}
	fmt.Printf("updated %d key(s), digest %s\n", len(updates), digest)
	fmt.Fprintln(os.Stderr, "note: restart or reload managed services to apply the change")
	return nil
}

func runProvision(args []string) error {
	flags := flag.NewFlagSet("provision", flag.ExitOnError)
	configPath := flags.String("config", "", "path to foyer.yaml (overrides FOYER_CONFIG)")
	username := flags.String("username", "", "admin username (required)")
	passwordFile := flags.String("password-file", "", "read the password from this file instead of prompting")
	force := flags.Bool("force", false, "replace the admin account even when setup is already complete")
	flags.Parse(args)

	if *username == "" {
		return fmt.Errorf("--username is required")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	lock := setup.NewLock(cfg.State.SetupLock)
	if lock.Completed() && !*force {
		return fmt.Errorf("setup is already complete; use --force to replace the admin account")
	}

	password, err := readPassword(*passwordFile)
	if err != nil {
		return err
	}
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	if err := identity.NewStore(cfg.State.AdminFile).Create(*username, password, time.Now()); err != nil {
		return fmt.Errorf("writing admin record: %w", err)
	}
	if !lock.Completed() {
		if err := lock.Complete(time.Now()); err != nil {
			return fmt.Errorf("marking setup complete: %w", err)
		}
	}

	fmt.Printf("provisioned admin %q\n", *username)
	return nil
}

// readPassword reads the admin password from the given file, or
// prompts on the terminal (with echo disabled) when no file is given.
func readPassword(path string) (string, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading password file: %w", err)
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		// Piped stdin: read a single line so scripts can still
		// drive provisioning without --password-file.
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("reading password from stdin: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(os.Stderr, "Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}

	fmt.Fprint(os.Stderr, "Confirm: ")
	confirmation, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading confirmation: %w", err)
	}
	if string(password) != string(confirmation) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(password), nil
}
