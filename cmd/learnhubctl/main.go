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

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/splax/learnhub/internal/domain"
	httpx "github.com/splax/learnhub/internal/http"
	"github.com/splax/learnhub/internal/repository"
	"github.com/splax/learnhub/internal/repository/postgres"
	"github.com/splax/learnhub/internal/service/user"
	apiclient "github.com/splax/learnhub/pkg/api/client"
	"github.com/splax/learnhub/pkg/config"
	"github.com/splax/learnhub/pkg/logger"
)

type cliConfig struct {
	APIBaseURL   string `json:"api_base_url"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

var buildVersion = "dev"

const minPasswordLength = 8

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "login":
		err = commandLogin(args)
	case "logout":
		err = commandLogout(args)
	case "whoami":
		err = commandWhoami(args)
	case "courses":
		err = commandCourses(args)
	case "health":
		err = commandHealth(args)
	case "adduser":
		err = commandAddUser(args)
	case "routes":
		err = commandRoutes(args)
	case "purge-tokens":
		err = commandPurgeTokens(args)
	case "version", "--version", "-v":
		printVersion()
		return
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

// commandAddUser creates an account directly in the database, typically the
// first admin of a fresh installation.
func commandAddUser(args []string) error {
	fs := flag.NewFlagSet("adduser", flag.ExitOnError)
	email := fs.String("email", "", "Email address")
	role := fs.String("role", domain.RoleAdmin, "Role (admin|instructor|student)")
	firstName := fs.String("first-name", "", "First name")
	lastName := fs.String("last-name", "", "Last name")
	password := fs.String("password", "", "Password (supply to avoid prompt)")
	fs.Parse(args)

	if err := validator.New().Var(strings.TrimSpace(*email), "required,email"); err != nil {
		return errors.New("--email must be a valid address")
	}
	if !domain.ValidRole(*role) {
		return fmt.Errorf("unknown role %q", *role)
	}

	secret := *password
	if secret == "" {
		fmt.Print("Password: ")
		bytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Print("\n")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		secret = string(bytes)
	}
	if len(secret) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}

	cfg, err := config.LoadAPIConfig()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	svc := user.New(postgres.New(pool), logger.ForEnv("learnhubctl", cfg.Environment, cfg.Debug))
	created, err := svc.Create(ctx, user.CreateInput{
		Email:     *email,
		Password:  secret,
		FirstName: *firstName,
		LastName:  *lastName,
		Role:      *role,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return fmt.Errorf("an account for %s already exists", *email)
		}
		return err
	}
	fmt.Printf("created %s account %d for %s\n", created.Role, created.ID, created.Email)
	return nil
}

type routeDoc struct {
	Method  string   `yaml:"method"`
	Pattern string   `yaml:"pattern"`
	Handler string   `yaml:"handler"`
	Auth    bool     `yaml:"auth"`
	Roles   []string `yaml:"roles,omitempty"`
}

// commandRoutes prints the route table in declaration order.
func commandRoutes(args []string) error {
	fs := flag.NewFlagSet("routes", flag.ExitOnError)
	onlyPublic := fs.Bool("public", false, "List only routes reachable without credentials")
	fs.Parse(args)

	var docs []routeDoc
	for _, route := range httpx.Routes() {
		if *onlyPublic && route.Auth {
			continue
		}
		docs = append(docs, routeDoc{
			Method:  string(route.Method),
			Pattern: route.Pattern,
			Handler: string(route.Handler),
			Auth:    route.Auth,
			Roles:   route.Roles,
		})
	}
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(docs)
}

func commandPurgeTokens(args []string) error {
	fs := flag.NewFlagSet("purge-tokens", flag.ExitOnError)
	fs.Parse(args)

	cfg, err := config.LoadAPIConfig()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	removed, err := postgres.New(pool).PurgeExpiredTokens(ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	fmt.Printf("removed %d expired blacklist entries\n", removed)
	return nil
}

func commandLogin(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "Email address")
	password := fs.String("password", "", "Password (supply to avoid prompt)")
	apiBase := fs.String("api", "", "API base URL (default http://localhost:8080/api)")
	fs.Parse(args)

	if strings.TrimSpace(*email) == "" {
		return errors.New("--email is required")
	}
	secret := strings.TrimSpace(*password)
	if secret == "" {
		fmt.Print("Password: ")
		bytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Print("\n")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		secret = string(bytes)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if strings.TrimSpace(*apiBase) != "" {
		cfg.APIBaseURL = strings.TrimSpace(*apiBase)
	}
	client, err := apiclient.New(cfg.APIBaseURL)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	session, err := client.Login(ctx, *email, secret)
	if err != nil {
		return err
	}
	cfg.AccessToken = session.Tokens.AccessToken
	cfg.RefreshToken = session.Tokens.RefreshToken
	if err := saveConfig(cfg); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	fmt.Printf("logged in as %s (%s)\n", session.User.Email, session.User.Role)
	return nil
}

func commandLogout(args []string) error {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)
	fs.Parse(args)

	cfg, client, err := authenticatedClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := client.Logout(ctx, cfg.AccessToken, cfg.RefreshToken); err != nil {
		return err
	}
	cfg.AccessToken, cfg.RefreshToken = "", ""
	if err := saveConfig(cfg); err != nil {
		return err
	}
	fmt.Println("logged out")
	return nil
}

func commandWhoami(args []string) error {
	fs := flag.NewFlagSet("whoami", flag.ExitOnError)
	fs.Parse(args)

	cfg, client, err := authenticatedClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	user, err := client.Me(ctx, cfg.AccessToken)
	var apiErr apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.Status == 401 && cfg.RefreshToken != "" {
		pair, refreshErr := client.Refresh(ctx, cfg.RefreshToken)
		if refreshErr != nil {
			return fmt.Errorf("session expired, please login again: %w", refreshErr)
		}
		cfg.AccessToken, cfg.RefreshToken = pair.AccessToken, pair.RefreshToken
		if err := saveConfig(cfg); err != nil {
			return err
		}
		user, err = client.Me(ctx, cfg.AccessToken)
	}
	if err != nil {
		return err
	}
	fmt.Printf("%d\t%s\t%s\t%s %s\n", user.ID, user.Email, user.Role, user.FirstName, user.LastName)
	return nil
}

func commandCourses(args []string) error {
	fs := flag.NewFlagSet("courses", flag.ExitOnError)
	category := fs.String("category", "", "Filter by category")
	level := fs.String("level", "", "Filter by level")
	search := fs.String("search", "", "Search titles and descriptions")
	limit := fs.Int("limit", 20, "Maximum number of courses")
	fs.Parse(args)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := apiclient.New(cfg.APIBaseURL)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	courses, err := client.ListCourses(ctx, apiclient.CourseQuery{
		Category: *category,
		Level:    *level,
		Search:   *search,
		Limit:    *limit,
	})
	if err != nil {
		return err
	}
	if len(courses) == 0 {
		fmt.Println("no courses found")
		return nil
	}
	for _, c := range courses {
		fmt.Printf("%d\t%s\t%s\t%s\n", c.ID, c.Title, c.Category, c.Level)
	}
	return nil
}

func commandHealth(args []string) error {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	fs.Parse(args)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := apiclient.New(cfg.APIBaseURL)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status, err := client.Health(ctx)
	if err != nil {
		return err
	}
	fmt.Println(status)
	return nil
}

func authenticatedClient() (cliConfig, *apiclient.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return cliConfig{}, nil, err
	}
	if strings.TrimSpace(cfg.AccessToken) == "" {
		return cliConfig{}, nil, errors.New("please login first using 'learnhubctl login'")
	}
	client, err := apiclient.New(cfg.APIBaseURL)
	if err != nil {
		return cliConfig{}, nil, err
	}
	return cfg, client, nil
}

func loadConfig() (cliConfig, error) {
	path, err := configPath()
	if err != nil {
		return cliConfig{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cliConfig{}, nil
		}
		return cliConfig{}, err
	}
	var cfg cliConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cliConfig{}, err
	}
	return cfg, nil
}

func saveConfig(cfg cliConfig) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func configPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "learnhub", "config.json"), nil
}

func printUsage() {
	fmt.Printf("learnhubctl %s\n\n", buildVersion)
	fmt.Print(`Usage:
	learnhubctl login --email user@example.com [--password secret] [--api http://localhost:8080/api]
	learnhubctl logout
	learnhubctl whoami
	learnhubctl courses [--category C] [--level L] [--search S] [--limit N]
	learnhubctl health
	learnhubctl adduser --email admin@example.com [--role admin|instructor|student] [--first-name N] [--last-name N] [--password secret]
	learnhubctl routes [--public]
	learnhubctl purge-tokens
	learnhubctl version
`)
}

func printVersion() {
	fmt.Println(strings.TrimSpace(buildVersion))
}
