package main

import (
	"context"
	"database/sql"
	"os"
	"time"

	"github.com/SantaVM/bank-rest/internal/config"
	"github.com/SantaVM/bank-rest/internal/models"
	"github.com/SantaVM/bank-rest/internal/repository"
	"github.com/SantaVM/bank-rest/internal/service"
	"github.com/SantaVM/bank-rest/internal/utils"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Seeds development users and demo cards. Safe to run repeatedly: existing
// emails are skipped and duplicate card numbers are reported as conflicts.
func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	crypto, err := utils.NewCryptoCodec([]byte(cfg.EncryptionKey), []byte(cfg.EncryptionIV))
	if err != nil {
		logger.Fatalf("Failed to initialize crypto codec: %v", err)
	}

	repo := repository.NewRepository(db)
	svc := service.NewService(repo, crypto, nil, logger, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users := []struct {
		email     string
		firstName string
		lastName  string
		role      models.Role
	}{
		{"email@email.com", "TOM", "SMITH", models.RoleAdmin},
		{"email1@email.com", "KATE", "BROWN", models.RoleUser},
	}

	const devPassword = "12345678"
	hash, err := bcrypt.GenerateFromPassword([]byte(devPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Fatalf("Failed to hash password: %v", err)
	}

	for _, u := range users {
		exists, err := repo.UserExistsByEmail(ctx, u.email)
		if err != nil {
			logger.Fatalf("Failed to check user %s: %v", u.email, err)
		}
		if exists {
			logger.Infof("User %s already exists, skipping", u.email)
			continue
		}

		user := &models.User{
			Email:        u.email,
			PasswordHash: string(hash),
			FirstName:    u.firstName,
			LastName:     u.lastName,
			Role:         u.role,
		}
		if err := repo.CreateUser(ctx, user); err != nil {
			logger.Fatalf("Failed to create user %s: %v", u.email, err)
		}
		logger.Infof("Created user %s (%s)", u.email, u.role)

		if u.role != models.RoleUser {
			continue
		}

		// Two demo cards per regular user so transfers can be exercised.
		expiry := time.Now().AddDate(3, 0, 0).Format(utils.ExpiryLayout)
		for _, balance := range []string{"100.00", "0.00"} {
			number, err := svc.GenerateCardNumber()
			if err != nil {
				logger.Fatalf("Failed to generate card number: %v", err)
			}
			card, err := svc.CreateCard(ctx, user.ID, number, expiry, balance)
			if err != nil {
				logger.Fatalf("Failed to create demo card: %v", err)
			}
			logger.Infof("Created card %d (%s) for %s", card.ID, card.CardNumber, u.email)
		}
	}

	logger.Info("Seeding complete")
	os.Exit(0)
}
