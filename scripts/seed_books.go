package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"library-management-api/internal/bootstrap"
	"library-management-api/internal/config"
	"library-management-api/internal/library"
	"library-management-api/internal/models"
)

type seedBook struct {
	ISBN   string
	Title  string
	Author string
	Year   int
	Genre  string
	Copies int
	Fee    string
}

var books = []seedBook{
	{"978-83-8032-464-8", "Wiedźmin: Ostatnie życzenie", "Andrzej Sapkowski", 1993, "Fantasy", 3, "1.50"},
	{"978-83-240-1455-5", "Zbrodnia i kara", "Fiodor Dostojewski", 1866, "Klasyka", 2, "1.00"},
	{"978-83-7686-320-4", "Sapiens: Od zwierząt do bogów", "Yuval Noah Harari", 2011, "Popularnonaukowa", 4, "1.00"},
	{"978-83-7885-585-8", "Rok 1984", "George Orwell", 1949, "Science Fiction", 2, "1.25"},
	{"978-83-8100-234-1", "Atomowe nawyki", "James Clear", 2018, "Rozwój osobisty", 3, "0.75"},
	{"978-83-240-4532-0", "Harry Potter i Kamień Filozoficzny", "J.K. Rowling", 1997, "Fantasy", 5, "1.50"},
	{"978-83-7686-811-7", "Kod da Vinci", "Dan Brown", 2003, "Thriller", 2, "1.00"},
	{"978-83-7506-651-3", "Władca Pierścieni: Drużyna Pierścienia", "J.R.R. Tolkien", 1954, "Fantasy", 3, "2.00"},
	{"978-83-240-5896-2", "Mistrz i Małgorzata", "Michaił Bułhakow", 1967, "Klasyka", 2, "1.00"},
	{"978-83-8100-567-0", "Thinking, Fast and Slow", "Daniel Kahneman", 2011, "Psychologia", 2, "0.50"},
}

var members = []struct {
	Name  string
	Email string
}{
	{"Jan Kowalski", "jan.kowalski@example.com"},
	{"Anna Nowak", "anna.nowak@example.com"},
	{"Piotr Wiśniewski", "piotr.wisniewski@example.com"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Błąd konfiguracji: %v", err)
	}
	logger := bootstrap.NewLogger(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	deps := bootstrap.MustOpen(ctx, cfg, logger)
	defer deps.Close()

	svc := library.New(deps.Store, library.WithLogger(logger))

	log.Println("Dodawanie przykładowych danych do bazy...")

	genres := make(map[string]string)
	for _, b := range books {
		if _, ok := genres[b.Genre]; ok {
			continue
		}
		g, err := svc.CreateGenre(ctx, library.GenreInput{Name: b.Genre})
		if err != nil {
			log.Printf("❌ Błąd dodawania gatunku '%s': %v", b.Genre, err)
			continue
		}
		genres[b.Genre] = g.ID
	}

	user, err := svc.CreateUser(ctx, library.UserInput{
		Name:  "Bibliotekarz",
		Email: "bibliotekarz@example.com",
		Role:  models.RoleAdmin,
	})
	if err != nil {
		log.Fatalf("Błąd tworzenia użytkownika: %v", err)
	}

	for _, m := range members {
		_, err := svc.CreateMember(ctx, library.MemberInput{
			FullName:         m.Name,
			Email:            m.Email,
			MembershipDate:   models.Today(),
			MembershipStatus: "active",
			UserID:           user.ID,
		})
		if err != nil {
			log.Printf("❌ Błąd dodawania członka '%s': %v", m.Name, err)
			continue
		}
		log.Printf("✓ Dodano członka: %s", m.Name)
	}

	successCount := 0
	for _, b := range books {
		genreID, ok := genres[b.Genre]
		if !ok {
			continue
		}
		_, err := svc.CreateBook(ctx, library.BookInput{
			Title:           b.Title,
			Author:          b.Author,
			ISBN:            b.ISBN,
			PublishedYear:   b.Year,
			AvailableCopies: b.Copies,
			LoanFee:         decimal.RequireFromString(b.Fee),
			GenreID:         genreID,
		})
		var ve *library.ValidationError
		switch {
		case errors.As(err, &ve):
			log.Printf("⏭ Pominięto '%s': %v", b.Title, err)
		case err != nil:
			log.Printf("❌ Błąd dodawania książki '%s': %v", b.Title, err)
		default:
			log.Printf("✓ Dodano: %s - %s", b.Title, b.Author)
			successCount++
		}
	}

	log.Printf("\n✅ Pomyślnie dodano %d/%d książek do bazy danych", successCount, len(books))
}
