package application

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_Success(t *testing.T) {
	pub := &recordingPublisher{}
	s := newAuthService(t, pub)

	u, err := s.Register(context.Background(), RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "pw1"})
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.NotEqual(t, "pw1", u.Password)

	b, err := json.Marshal(u.View())
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"name":"Ann","email":"ann@x.com"}`, string(b))
	assert.NotContains(t, string(b), u.Password)

	assert.Equal(t, []string{EventUserRegistered}, pub.types())
	require.NotNil(t, pub.events[0].User)
	assert.Equal(t, "ann@x.com", pub.events[0].User.Email)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	s := newAuthService(t, nil)
	ctx := context.Background()

	_, err := s.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "pw1"})
	require.NoError(t, err)

	_, err = s.Register(ctx, RegisterInput{Name: "Imposter", Email: "ann@x.com", Password: "other"})
	assert.ErrorIs(t, err, ErrEmailInUse)

	// existing account is not overwritten
	tok, _, err := s.Login(ctx, "ann@x.com", "pw1")
	require.NoError(t, err)
	u, err := s.ResolveCaller(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, "Ann", u.Name)
}

func TestRegister_EmailCaseSensitive(t *testing.T) {
	s := newAuthService(t, nil)
	ctx := context.Background()

	_, err := s.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "pw1"})
	require.NoError(t, err)
	_, err = s.Register(ctx, RegisterInput{Name: "Ann", Email: "ANN@x.com", Password: "pw1"})
	assert.NoError(t, err)
}

func TestRegister_MissingFields(t *testing.T) {
	s := newAuthService(t, nil)
	cases := map[string]RegisterInput{
		"name":     {Email: "a@x.com", Password: "p"},
		"email":    {Name: "A", Password: "p"},
		"password": {Name: "A", Email: "a@x.com"},
	}
	for field, in := range cases {
		t.Run(field, func(t *testing.T) {
			_, err := s.Register(context.Background(), in)
			require.ErrorIs(t, err, ErrValidation)
			var fe *FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, field, fe.Field)
		})
	}
}

func TestRegister_PublishFailureDoesNotFail(t *testing.T) {
	s := newAuthService(t, &recordingPublisher{err: errBoom})
	_, err := s.Register(context.Background(), RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "pw1"})
	assert.NoError(t, err)
}

func TestLogin_TokenResolvesToSameAccount(t *testing.T) {
	s := newAuthService(t, nil)
	ctx := context.Background()

	u, err := s.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "pw1"})
	require.NoError(t, err)

	tok, exp, err := s.Login(ctx, "ann@x.com", "pw1")
	require.NoError(t, err)
	assert.NotEmpty(t, tok)
	assert.False(t, exp.IsZero())

	caller, err := s.ResolveCaller(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, u.ID, caller.ID)
	assert.Equal(t, u.Email, caller.Email)
}

func TestLogin_FailuresAreUniform(t *testing.T) {
	s := newAuthService(t, nil)
	ctx := context.Background()
	_, err := s.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "pw1"})
	require.NoError(t, err)

	_, _, wrongPw := s.Login(ctx, "ann@x.com", "nope")
	_, _, unknown := s.Login(ctx, "ghost@x.com", "pw1")

	assert.ErrorIs(t, wrongPw, ErrInvalidCredentials)
	assert.ErrorIs(t, unknown, ErrInvalidCredentials)
	assert.Equal(t, wrongPw.Error(), unknown.Error())
}

func TestLogin_MissingFields(t *testing.T) {
	s := newAuthService(t, nil)

	_, _, err := s.Login(context.Background(), "", "pw")
	assert.ErrorIs(t, err, ErrMissingField)
	assert.EqualError(t, err, "missing email parameter")

	_, _, err = s.Login(context.Background(), "ann@x.com", "")
	assert.ErrorIs(t, err, ErrMissingField)
	assert.EqualError(t, err, "missing password parameter")
}

func TestResolveCaller_Rejects(t *testing.T) {
	s := newAuthService(t, nil)
	ctx := context.Background()

	_, err := s.ResolveCaller(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = s.ResolveCaller(ctx, "garbage")
	assert.ErrorIs(t, err, ErrUnauthorized)

	// validly signed, but the account does not exist
	tok, _, err := s.JWT.GenerateAccessToken("ghost@x.com")
	require.NoError(t, err)
	_, err = s.ResolveCaller(ctx, tok)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRegister_PasswordTooLong(t *testing.T) {
	s := newAuthService(t, nil)
	long := make([]byte, 73)
	for i := range long {
		long[i] = 'a'
	}
	_, err := s.Register(context.Background(), RegisterInput{Name: "Ann", Email: "ann@x.com", Password: string(long)})
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}
