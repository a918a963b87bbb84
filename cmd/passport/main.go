package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/term"

	apiclient "github.com/splax/passport/pkg/api/client"
)

type cliConfig struct {
	AuthBaseURL string `json:"auth_base_url"`
	UserBaseURL string `json:"user_base_url"`
	Token       string `json:"token"`
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "register":
		err = commandRegister(args)
	case "login":
		err = commandLogin(args)
	case "me":
		err = commandMe(args)
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func commandRegister(args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	email := fs.String("email", "", "Email address")
	password := fs.String("password", "", "Password (supply to avoid prompt)")
	authBase := fs.String("auth", "", "Identity authority base URL (default http://localhost:4000)")
	fs.Parse(args)

	secret, cfg, client, err := prepareAuthCommand(*email, *password, *authBase)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	user, err := client.Register(ctx, *email, secret)
	if err != nil {
		return err
	}
	if err := saveConfig(cfg); err != nil {
		return err
	}
	fmt.Printf("registered %s (id %d)\n", user.Email, user.ID)
	return nil
}

func commandLogin(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "Email address")
	password := fs.String("password", "", "Password (supply to avoid prompt)")
	authBase := fs.String("auth", "", "Identity authority base URL (default http://localhost:4000)")
	fs.Parse(args)

	secret, cfg, client, err := prepareAuthCommand(*email, *password, *authBase)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	token, err := client.Login(ctx, *email, secret)
	if err != nil {
		return err
	}
	cfg.Token = token
	if err := saveConfig(cfg); err != nil {
		return err
	}
	fmt.Println("logged in, token stored")
	return nil
}

func commandMe(args []string) error {
	fs := flag.NewFlagSet("me", flag.ExitOnError)
	userBase := fs.String("user", "", "Relying service base URL (default http://localhost:4001)")
	fs.Parse(args)

	cfg, _ := loadConfig()
	if strings.TrimSpace(*userBase) != "" {
		cfg.UserBaseURL = *userBase
	} else if cfg.UserBaseURL == "" {
		cfg.UserBaseURL = "http://localhost:4001"
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return errors.New("no stored token; run `passport login` first")
	}

	client, err := apiclient.New(cfg.UserBaseURL)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	user, err := client.Me(ctx, cfg.Token)
	if err != nil {
		return err
	}
	if err := saveConfig(cfg); err != nil {
		return err
	}
	fmt.Printf("id: %d\nemail: %s\n", user.ID, user.Email)
	return nil
}

func prepareAuthCommand(email, password, authBase string) (string, cliConfig, *apiclient.Client, error) {
	if strings.TrimSpace(email) == "" {
		return "", cliConfig{}, nil, errors.New("--email is required")
	}

	secret := password
	if secret == "" {
		fmt.Print("Password: ")
		bytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Print("\n")
		if err != nil {
			return "", cliConfig{}, nil, fmt.Errorf("read password: %w", err)
		}
		secret = string(bytes)
	}

	cfg, _ := loadConfig()
	if strings.TrimSpace(authBase) != "" {
		cfg.AuthBaseURL = authBase
	} else if cfg.AuthBaseURL == "" {
		cfg.AuthBaseURL = "http://localhost:4000"
	}

	client, err := apiclient.New(cfg.AuthBaseURL)
	if err != nil {
		return "", cliConfig{}, nil, err
	}
	return secret, cfg, client, nil
}

func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".passport.json"), nil
}

func loadConfig() (cliConfig, error) {
	var cfg cliConfig
	path, err := configPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cliConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func saveConfig(cfg cliConfig) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func printUsage() {
	fmt.Println(`passport - identity service CLI

Usage:
  passport register --email <email> [--password <pw>] [--auth <url>]
  passport login    --email <email> [--password <pw>] [--auth <url>]
  passport me       [--user <url>]`)
}
