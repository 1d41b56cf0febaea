// CLI tool to create a user with a bcrypt-hashed password and metric
// calorie log settings. Goal fields can be changed later through
// PATCH /api/calorie-log/user-settings.
// Usage: go run ./cmd/create-user
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

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
	username := prompt(reader, "Username")
	email := prompt(reader, "Email")
	password := prompt(reader, "Password")
	if username == "" || password == "" {
		fmt.Fprintln(os.Stderr, "Username and password are required")
		os.Exit(1)
	}
	targetKG, err := parseTargetKG(prompt(reader, "Target weight kg (blank for 70)"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid target weight: %v\n", err)
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error hashing password: %v\n", err)
		os.Exit(1)
	}
	authToken := uuid.New().String()

	tx, err := conn.Begin(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting transaction: %v\n", err)
		os.Exit(1)
	}
	defer tx.Rollback(ctx)

	var userID int
	err = tx.QueryRow(ctx,
		`INSERT INTO users (username, email, password, auth_token)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		username, email, string(hash), authToken,
	).Scan(&userID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating user: %v\n", err)
		os.Exit(1)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO calorie_log_user_settings (user_id, target_weight_kg, units)
		 VALUES ($1, $2, 'metric')`, userID, targetKG)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating calorie log settings: %v\n", err)
		os.Exit(1)
	}
	if err := tx.Commit(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error committing: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nUser created successfully!\n")
	fmt.Printf("  ID:         %d\n", userID)
	fmt.Printf("  Username:   %s\n", username)
	fmt.Printf("  Auth Token: %s\n", authToken)
}

func prompt(r *bufio.Reader, label string) string {
	fmt.Printf("%s: ", label)
	line, _ := r.ReadString('\n')
	return strings.TrimSpace(line)
}

// parseTargetKG accepts a blank line (default 70) or a weight in (0, 700].
func parseTargetKG(s string) (float64, error) {
	if s == "" {
		return 70, nil
	}
	kg, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if !(kg > 0 && kg <= 700) {
		return 0, fmt.Errorf("%v is outside (0, 700]", kg)
	}
	return kg, nil
}
