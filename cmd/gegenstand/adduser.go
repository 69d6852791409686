package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/erazemk/gegenstand/internal/auth"
	"github.com/erazemk/gegenstand/internal/config"
	"github.com/erazemk/gegenstand/internal/service"
)

// addUser creates an account from the command line. On a terminal the
// password is prompted twice; otherwise one is generated and printed.
func addUser(cfg *config.Config, database *sql.DB, name, email string) error {
	in := bufio.NewReader(os.Stdin)
	if name == "" {
		name = prompt(in, "Name: ")
	}
	if email == "" {
		email = prompt(in, "Email: ")
	}

	password, generated, err := readPassword()
	if err != nil {
		return err
	}

	accounts := service.NewAccounts(database, auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL))
	user, err := accounts.CreateUser(context.Background(), name, email, password)
	if err != nil {
		return err
	}

	fmt.Println("Account created:")
	fmt.Printf("  Name:  %s\n", user.Name)
	fmt.Printf("  Email: %s\n", user.Email)
	if generated {
		fmt.Printf("  Password: %s\n", password)
		fmt.Println()
		fmt.Println("Save this password, it cannot be recovered.")
	}
	return nil
}

func prompt(in *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}

func readPassword() (password string, generated bool, err error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		password, err = generatePassword(16)
		return password, true, err
	}

	fmt.Print("Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", false, fmt.Errorf("reading password: %w", err)
	}
	fmt.Print("Repeat password: ")
	second, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", false, fmt.Errorf("reading password: %w", err)
	}
	if string(first) != string(second) {
		return "", false, fmt.Errorf("passwords do not match")
	}
	return string(first), false, nil
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
