package application

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/bmi-service/internal/domain/entity"
)

type fakeMailer struct {
	to, subject, text, html string
	calls                   int
	err                     error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, text, html string) error {
	m.calls++
	m.to, m.subject, m.text, m.html = to, subject, text, html
	return m.err
}

type fakeIndexer struct {
	got []BMIEvent
	err error
}

func (f *fakeIndexer) IndexBMI(_ context.Context, evt BMIEvent) error {
	f.got = append(f.got, evt)
	return f.err
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestHandle_UserRegisteredSendsWelcome(t *testing.T) {
	m := &fakeMailer{}
	h := &EventHandler{Mailer: m, AppName: "bmi-service"}

	body := mustJSON(t, Event{Type: EventUserRegistered, User: &entity.UserView{ID: 1, Name: "Ann", Email: "ann@x.com"}})
	require.NoError(t, h.Handle(context.Background(), body))

	assert.Equal(t, 1, m.calls)
	assert.Equal(t, "ann@x.com", m.to)
	assert.Equal(t, "Welcome to bmi-service", m.subject)
	assert.Contains(t, m.text, "Ann")
}

func TestHandle_MailerFailureIsRetryable(t *testing.T) {
	h := &EventHandler{Mailer: &fakeMailer{err: errBoom}}
	body := mustJSON(t, Event{Type: EventUserRegistered, User: &entity.UserView{ID: 1, Email: "ann@x.com"}})

	err := h.Handle(context.Background(), body)
	require.ErrorIs(t, err, errBoom)
	assert.NotErrorIs(t, err, ErrBadEvent)
}

func TestHandle_BMIRecordedIndexes(t *testing.T) {
	idx := &fakeIndexer{}
	h := &EventHandler{Indexer: idx}

	evt := Event{Type: EventBMIRecorded, BMI: &BMIEvent{
		BMIView: entity.BMIView{ID: 5, Weight: 70, Height: 175, BMI: 22.9, Status: "Normal", BMIDate: time.Now().UTC()},
		UserID:  2,
	}}
	require.NoError(t, h.Handle(context.Background(), mustJSON(t, evt)))

	require.Len(t, idx.got, 1)
	assert.Equal(t, int64(5), idx.got[0].ID)
	assert.Equal(t, int64(2), idx.got[0].UserID)
	assert.Equal(t, 22.9, idx.got[0].BMIView.BMI)
}

func TestHandle_DisabledSinksAreNoops(t *testing.T) {
	h := &EventHandler{}
	assert.NoError(t, h.Handle(context.Background(), mustJSON(t, Event{Type: EventUserRegistered, User: &entity.UserView{Email: "a@x.com"}})))
	assert.NoError(t, h.Handle(context.Background(), mustJSON(t, Event{Type: EventBMIRecorded, BMI: &BMIEvent{BMIView: entity.BMIView{ID: 1}}})))
}

func TestHandle_BadEvents(t *testing.T) {
	h := &EventHandler{Mailer: &fakeMailer{}, Indexer: &fakeIndexer{}}
	bodies := map[string][]byte{
		"not json":      []byte("{"),
		"unknown type":  []byte(`{"type":"user.deleted"}`),
		"no user":       []byte(`{"type":"user.registered"}`),
		"no bmi record": []byte(`{"type":"bmi.recorded","bmi":{}}`),
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, h.Handle(context.Background(), body), ErrBadEvent)
		})
	}
}
