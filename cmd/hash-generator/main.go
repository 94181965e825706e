// Command hash-generator prints bcrypt hashes for seeding the users table by
// hand, or checks a password against an existing hash.
//
// Usage:
//
//	hash-generator -password s3cret
//	printf 'one\ntwo\n' | hash-generator -cost 12
//	hash-generator -password s3cret -verify '$2a$10$...'
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/phrazzld/tasks-api/internal/domain"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("hash-generator", flag.ContinueOnError)
	password := fs.String("password", "", "password to hash (default: read one password per line from stdin)")
	cost := fs.Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	verify := fs.String("verify", "", "compare -password against this hash instead of hashing")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *cost < bcrypt.MinCost || *cost > bcrypt.MaxCost {
		return fmt.Errorf("cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	if *verify != "" {
		if *password == "" {
			return errors.New("-verify requires -password")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(*verify), []byte(*password)); err != nil {
			return fmt.Errorf("password does not match: %w", err)
		}
		_, err := fmt.Fprintln(stdout, "OK")
		return err
	}

	if *password != "" {
		return printHash(stdout, *password, *cost)
	}

	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if err := printHash(stdout, line, *cost); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func printHash(w io.Writer, password string, cost int) error {
	if len(password) > domain.MaxPasswordLength {
		return domain.ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return fmt.Errorf("error generating hash: %w", err)
	}
	_, err = fmt.Fprintln(w, string(hash))
	return err
}
