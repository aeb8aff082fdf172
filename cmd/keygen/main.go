package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sigalit/guide-scheduler-api/pkg/auth"
)

// Generates a bcrypt password hash for seeding coordinator or admin accounts
// directly in the database.
func main() {
	_ = godotenv.Load("../.env")

	if len(os.Args) < 2 {
		fmt.Println("Usage: keygen <password>")
		os.Exit(1)
	}

	hash, err := auth.HashPassword(os.Args[1])
	if err != nil {
		fmt.Printf("could not hash password: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
