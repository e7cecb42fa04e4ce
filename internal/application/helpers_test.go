package application

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/bmi-service/internal/domain/entity"
	"github.com/oksasatya/bmi-service/internal/infrastructure/memory"
	"github.com/oksasatya/bmi-service/pkg/helpers"
)

// recordingPublisher captures published events as raw JSON.
type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (p *recordingPublisher) PublishJSON(_ context.Context, body any) error {
	if p.err != nil {
		return p.err
	}
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	var evt Event
	if err := json.Unmarshal(b, &evt); err != nil {
		return err
	}
	p.mu.Lock()
	p.events = append(p.events, evt)
	p.mu.Unlock()
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

var errBoom = errors.New("boom")

func newAuthService(t *testing.T, pub EventPublisher) *AuthService {
	t.Helper()
	return NewAuthService(
		memory.NewUserRepository(),
		helpers.NewJWTManager("test-secret", time.Hour),
		helpers.NewPasswordHasher(bcrypt.MinCost),
		pub,
		helpers.NewDiscardLogger(),
	)
}

func newBMIService(t *testing.T, own entity.Ownership, pub EventPublisher) *BMIService {
	t.Helper()
	return NewBMIService(memory.NewBMIRepository(own), pub, helpers.NewDiscardLogger())
}
