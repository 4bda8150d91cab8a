// Command seedadmin creates an administrator account directly in the
// database. Registration through the API can only create regular users.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"recruitment_portal/internal/config"
	"recruitment_portal/internal/logger"
	"recruitment_portal/internal/model"
	"recruitment_portal/internal/repository"
	"recruitment_portal/internal/service"
	"recruitment_portal/internal/utils"

	"github.com/joho/godotenv"
	"golang.org/x/term"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	email := flag.String("email", os.Getenv("ADMIN_EMAIL"), "admin email")
	firstName := flag.String("first-name", "Admin", "admin first name")
	lastName := flag.String("last-name", "User", "admin last name")
	phone := flag.String("phone", "0000000000", "admin phone number")
	flag.Parse()

	cfg, err := config.Read(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Configure(logger.Config{Level: cfg.Logging.Level, Pretty: true})

	if *email == "" {
		*email = prompt("Admin email: ")
	}
	password, err := readPassword()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to read password")
	}

	ctx := context.Background()
	pool, err := config.ConnectDB(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if err := config.Migrate(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate database")
	}

	// seeding never issues a token, so the secret may be unset here
	authService := service.NewAuthService(repository.NewUserRepository(pool), utils.NewJWTUtil(cfg.JWT.Secret, cfg.JWT.Lifetime), nil)
	admin, err := authService.SeedAdmin(ctx, model.RegisterRequest{
		FirstName: *firstName,
		LastName:  *lastName,
		Email:     *email,
		Phone:     *phone,
		Password:  password,
	})
	if errors.Is(err, service.ErrUserAlreadyExists) {
		logger.Warn().Str("email", *email).Msg("An account with this email already exists, nothing changed")
		return
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create admin")
	}
	logger.Info().Str("id", admin.ID).Str("email", admin.Email).Msg("Admin account created")
}

func prompt(label string) string {
	fmt.Fprint(os.Stderr, label)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(line)
}

// readPassword prefers ADMIN_PASSWORD and otherwise prompts twice without echo
func readPassword() (string, error) {
	if pw := os.Getenv("ADMIN_PASSWORD"); pw != "" {
		return pw, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("ADMIN_PASSWORD is not set and stdin is not a terminal")
	}

	fmt.Fprint(os.Stderr, "Admin password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	fmt.Fprint(os.Stderr, "Repeat password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	if len(first) == 0 {
		return "", errors.New("password must not be empty")
	}
	return string(first), nil
}
