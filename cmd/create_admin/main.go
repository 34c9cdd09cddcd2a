package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"library-management-api/internal/bootstrap"
	"library-management-api/internal/config"
	"library-management-api/internal/library"
	"library-management-api/internal/models"
)

func main() {
	// Dane admina
	email := flag.String("email", "admin@biblioteka.pl", "email administratora")
	name := flag.String("name", "Admin System", "imię i nazwisko administratora")
	password := flag.String("password", "admin123", "hasło konta Firebase Auth (tylko AUTH_MODE=firebase)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Błąd konfiguracji: %v", err)
	}
	logger := bootstrap.NewLogger(cfg)
	ctx := context.Background()

	deps := bootstrap.MustOpen(ctx, cfg, logger)
	defer deps.Close()

	svc := library.New(deps.Store, library.WithLogger(logger))

	fmt.Println("=== Tworzenie użytkownika admina ===")

	user, err := svc.CreateUser(ctx, library.UserInput{
		Name:  *name,
		Email: *email,
		Role:  models.RoleAdmin,
	})
	if err != nil {
		log.Fatalf("Błąd tworzenia użytkownika: %v", err)
	}
	fmt.Printf("✓ Utworzono użytkownika: %s (ID: %s)\n", user.Email, user.ID)

	switch cfg.AuthMode {
	case config.AuthFirebase:
		// Konto Auth dostaje ten sam UID, więc token Firebase wskazuje na rekord użytkownika
		if err := deps.Firebase.CreateAuthUser(ctx, user.ID, *email, *password, *name); err != nil {
			log.Fatalf("%v", err)
		}
		fmt.Printf("✓ Utworzono konto Firebase Auth (UID: %s)\n", user.ID)
		fmt.Printf("Hasło: %s\n", *password)
	case config.AuthJWT:
		token, err := deps.JWT.Sign(user.ID, cfg.JWTTTL)
		if err != nil {
			log.Fatalf("%v", err)
		}
		fmt.Printf("Token (ważny %s):\n%s\n", cfg.JWTTTL, token)
	default:
		fmt.Println("AUTH_MODE=none - token nie jest potrzebny")
	}

	fmt.Println("\n=== Użytkownik admin utworzony pomyślnie ===")
	fmt.Printf("Rola: %s\n", user.Role)
}
