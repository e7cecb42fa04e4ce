package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/bmi-service/config"
	"github.com/oksasatya/bmi-service/internal/application"
	"github.com/oksasatya/bmi-service/internal/domain/entity"
	"github.com/oksasatya/bmi-service/internal/infrastructure/storage"
	"github.com/oksasatya/bmi-service/pkg/helpers"
)

const (
	demoEmail    = "demo@example.com"
	demoPassword = "password123"
	demoName     = "demoUser"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	st, err := storage.Open(ctx, cfg, entity.OwnedByUser, logger)
	if err != nil {
		log.Fatalf("failed to open storage: %v", err)
	}
	defer st.Close()

	auth := application.NewAuthService(
		st.Users,
		helpers.NewJWTManager(cfg.JWTSecret, cfg.AccessTTL),
		helpers.NewPasswordHasher(bcrypt.DefaultCost),
		nil,
		logger,
	)
	bmi := application.NewBMIService(st.BMI, nil, logger)

	u, created, err := seed(ctx, auth, bmi)
	if err != nil {
		log.Fatalf("failed to seed: %v", err)
	}
	if !created {
		fmt.Printf("demo user already present: id=%d email=%s\n", u.ID, u.Email)
		return
	}
	fmt.Printf("seeded user: id=%d email=%s name=%s password=%s\n", u.ID, u.Email, u.Name, demoPassword)
}

// seed registers the demo account and makes sure it has a measurement.
// created reports whether the account is new; reruns fill in a missing
// measurement and otherwise leave the data untouched.
func seed(ctx context.Context, auth *application.AuthService, bmi *application.BMIService) (*entity.User, bool, error) {
	created := true
	u, err := auth.Register(ctx, application.RegisterInput{Name: demoName, Email: demoEmail, Password: demoPassword})
	if errors.Is(err, application.ErrEmailInUse) {
		created = false
		u, err = auth.Repo.GetByEmail(ctx, demoEmail)
	}
	if err != nil {
		return nil, false, err
	}

	if !created {
		existing, err := bmi.ListForOwner(ctx, u.ID)
		if err != nil {
			return nil, false, err
		}
		if len(existing) > 0 {
			return u, false, nil
		}
	}
	if _, err := bmi.Create(ctx, application.CreateBMIInput{
		Weight: 70,
		Height: 175,
		BMI:    22.9,
		Status: "Normal",
		UserID: u.ID,
	}); err != nil {
		return nil, false, err
	}
	return u, created, nil
}
