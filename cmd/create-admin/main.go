package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"syscall"

	"claims_crm_go/config"
	"claims_crm_go/db"
	"claims_crm_go/models"
	"claims_crm_go/services"

	"golang.org/x/term"
)

func main() {
	superAdmin := flag.Bool("super", false, "create a super_admin instead of an admin")
	flag.Parse()

	// Load configuration
	cfg := config.Load()

	// Initialize database
	conn, err := db.Initialize(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close(conn)

	// Run migrations
	if err := db.AutoMigrate(conn); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create Admin ===")
	fmt.Println()

	username := prompt(reader, "Username: ")
	email := prompt(reader, "Email: ")
	firstName := prompt(reader, "First name (optional): ")
	lastName := prompt(reader, "Last name (optional): ")

	// Get password securely
	fmt.Print("Password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		log.Fatalf("Failed to read password: %v", err)
	}
	fmt.Println() // New line after password input

	role := models.AdminRoleAdmin
	if *superAdmin {
		role = models.AdminRoleSuperAdmin
	}

	admin, err := services.CreateAdmin(conn, services.AdminInput{
		Username:  username,
		Email:     email,
		Password:  string(passwordBytes),
		FirstName: firstName,
		LastName:  lastName,
		Role:      role,
	})
	if err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}

	fmt.Println()
	fmt.Println("✓ Admin created successfully!")
	fmt.Printf("  ID: %s\n", admin.ID)
	fmt.Printf("  Username: %s\n", admin.Username)
	fmt.Printf("  Email: %s\n", admin.Email)
	fmt.Printf("  Role: %s\n", admin.Role)
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	value, _ := reader.ReadString('\n')
	return strings.TrimSpace(value)
}
