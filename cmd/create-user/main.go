// CLI tool to create a user with a bcrypt-hashed password and a starter profile.
// Usage: go run ./cmd/create-user
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Starter profile values; the user edits them from the app.
const (
	defaultWeightKG  = 90.0
	defaultHeightCM  = 175.0
	defaultAge       = 30
	defaultGender    = "male"
	defaultCalTarget = 1800
	defaultGoalKG    = 80.0
)

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	value, _ := reader.ReadString('\n')
	return strings.TrimSpace(value)
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, os.Getenv("DB_URL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	reader := bufio.NewReader(os.Stdin)
	name := prompt(reader, "Name: ")
	email := prompt(reader, "Email: ")
	password := prompt(reader, "Password: ")

	if email == "" || password == "" {
		fmt.Fprintln(os.Stderr, "Email and password are required")
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error hashing password: %v\n", err)
		os.Exit(1)
	}

	userID := uuid.NewString()

	tx, err := conn.Begin(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting transaction: %v\n", err)
		os.Exit(1)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO users (id, email, name, password)
		 VALUES (@id, @email, @name, @password)`,
		pgx.NamedArgs{"id": userID, "email": email, "name": name, "password": string(hash)})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating user: %v\n", err)
		os.Exit(1)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO profiles (user_id, name, weight, height_cm, age, gender, cal_target, goal_kg)
		 VALUES (@userID, @name, @weight, @heightCM, @age, @gender, @calTarget, @goalKG)`,
		pgx.NamedArgs{
			"userID": userID, "name": name,
			"weight": defaultWeightKG, "heightCM": defaultHeightCM, "age": defaultAge,
			"gender": defaultGender, "calTarget": defaultCalTarget, "goalKG": defaultGoalKG,
		})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating profile: %v\n", err)
		os.Exit(1)
	}

	if err := tx.Commit(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error committing: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nUser created successfully!\n")
	fmt.Printf("  ID:    %s\n", userID)
	fmt.Printf("  Email: %s\n", email)
	fmt.Printf("  Log in with POST /api/login to get a token.\n")
}
