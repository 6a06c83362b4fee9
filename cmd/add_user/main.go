package main

import (
	"flag"
	"log"

	"tendo-schools/app/config"
	"tendo-schools/app/database"
	"tendo-schools/app/models"
	"tendo-schools/app/routes/auth"
)

// Seeds a user directly into the database. Intended for bootstrapping the
// first admin of a school before the API has anyone who can log in.
func main() {
	email := flag.String("email", "", "user email (required)")
	password := flag.String("password", "", "plaintext password, will be hashed (required)")
	firstName := flag.String("first", "", "first name")
	lastName := flag.String("last", "", "last name")
	phone := flag.String("phone", "", "phone number")
	role := flag.String("role", "admin", "role name")
	schoolID := flag.String("school", "", "school ID to attach the user to")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("Both -email and -password are required")
	}

	config.InitDB()
	db := config.GetDB()
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	hashed, err := auth.HashPassword(*password)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	user := &models.User{
		Email:     *email,
		FirstName: *firstName,
		LastName:  *lastName,
		Phone:     *phone,
	}
	if err := database.CreateUser(db, user, hashed, *role); err != nil {
		log.Fatal("Failed to create user:", err)
	}

	if *schoolID != "" {
		if _, err := db.Exec("UPDATE users SET school_id = $1 WHERE id = $2", *schoolID, user.ID); err != nil {
			log.Fatal("Failed to attach school:", err)
		}
	}

	log.Printf("Created user %s (%s) with role %s", user.Email, user.ID, *role)
}
