package user

import (
	"context"
	"database/sql/driver"
	"regexp"
	"rovify-backend/model"
	"rovify-backend/response"
	"rovify-backend/session"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var userRowCols = []string{"id", "email", "name", "username", "auth_method", "bio", "image", "twitter", "instagram", "website",
	"wallet_address", "interests", "preferences", "followers_count", "following_count", "verified", "email_verified",
	"is_organiser", "is_admin", "last_login_at", "created_at", "updated_at"}

func userRow(id, email, authMethod string) []driver.Value {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return []driver.Value{id, email, "Ada", nil, authMethod, nil, nil, nil, nil, nil,
		nil, "{music,tech}", []byte(`{}`), int64(3), int64(4), false, true,
		true, false, nil, now, now}
}

func newService() *User {
	return NewUser(session.NewIssuer("test-secret", time.Hour), nil)
}

func TestRegisterValidation(t *testing.T) {
	u := newService()
	cases := []struct {
		name string
		req  model.RegisterRequest
	}{
		{"missing email", model.RegisterRequest{Name: "Ada", Password: "secret1"}},
		{"missing name", model.RegisterRequest{Email: "ada@rovify.io", Password: "secret1"}},
		{"bad email", model.RegisterRequest{Name: "Ada", Email: "ada", Password: "secret1"}},
		{"short password", model.RegisterRequest{Name: "Ada", Email: "ada@rovify.io", Password: "12345"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := u.Register(context.Background(), nil, &tc.req)
			require.Error(t, err)
			assert.Equal(t, 400, err.(response.ErrorResponse).StatusCode)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM users WHERE lower(email) = lower($1)`)).
		WithArgs("Ada@Rovify.io").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, err = newService().Register(context.Background(), db, &model.RegisterRequest{Name: "Ada", Email: "Ada@Rovify.io", Password: "secret1"})

	assert.Equal(t, response.UserExists(), err)
	assert.NoError(t, mock.ExpectationsWereMet(), "no insert may follow a duplicate")
}

func TestRegister(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM users`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users (id, email, name, username, password_hash, auth_method, preferences, created_at, updated_at)`)).
		WithArgs(sqlmock.AnyArg(), "ada@rovify.io", "Ada", nil, sqlmock.AnyArg(), AuthMethodEmail, []byte(defaultPreferences), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	auth, err := newService().Register(context.Background(), db, &model.RegisterRequest{Name: "Ada", Email: "ada@rovify.io", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, auth.Token)
	assert.Equal(t, AuthMethodEmail, auth.User.AuthMethod)
	assert.Nil(t, auth.User.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)

	loginQuery := regexp.QuoteMeta(`password_hash FROM users WHERE lower(email) = lower($1)`)
	cols := append(append([]string{}, userRowCols...), "password_hash")

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(loginQuery).WithArgs("ada@rovify.io").
			WillReturnRows(sqlmock.NewRows(cols).AddRow(append(userRow("u1", "ada@rovify.io", AuthMethodEmail), string(hash))...))
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET last_login_at = $1 WHERE id = $2`)).
			WithArgs(sqlmock.AnyArg(), "u1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		auth, err := newService().Login(context.Background(), db, &model.LoginRequest{Email: "ada@rovify.io", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, "u1", auth.User.ID)
		assert.Equal(t, []string{"music", "tech"}, auth.User.Interests)
		assert.NotNil(t, auth.User.LastLoginAt)

		claims, err := newService().Sessions.Parse(auth.Token)
		require.NoError(t, err)
		assert.Equal(t, "u1", claims.Subject)
		assert.True(t, claims.IsOrganiser)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wrong password", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(loginQuery).
			WillReturnRows(sqlmock.NewRows(cols).AddRow(append(userRow("u1", "ada@rovify.io", AuthMethodEmail), string(hash))...))

		_, err = newService().Login(context.Background(), db, &model.LoginRequest{Email: "ada@rovify.io", Password: "nope123"})
		assert.Equal(t, response.CanNotLogin(), err)
	})

	t.Run("unknown email", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(loginQuery).WillReturnRows(sqlmock.NewRows(cols))

		_, err = newService().Login(context.Background(), db, &model.LoginRequest{Email: "who@rovify.io", Password: "secret1"})
		assert.Equal(t, response.CanNotLogin(), err)
	})

	t.Run("social account", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(loginQuery).
			WillReturnRows(sqlmock.NewRows(cols).AddRow(append(userRow("u1", "ada@rovify.io", "google"), nil)...))

		_, err = newService().Login(context.Background(), db, &model.LoginRequest{Email: "ada@rovify.io", Password: "secret1"})
		assert.Equal(t, response.SocialAccount(), err)
	})
}

type stubVerifier struct {
	identity *model.SocialIdentity
}

func (s stubVerifier) Verify(context.Context, string) (*model.SocialIdentity, error) {
	return s.identity, nil
}

func TestSocialLoginCreatesUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	u := NewUser(session.NewIssuer("test-secret", time.Hour), stubVerifier{&model.SocialIdentity{UID: "fb-1", Email: "grace@rovify.io", Name: "Grace", Provider: "google.com"}})

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE firebase_uid = $1`)).WithArgs("fb-1").WillReturnRows(sqlmock.NewRows(userRowCols))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE lower(email) = lower($1)`)).WithArgs("grace@rovify.io").WillReturnRows(sqlmock.NewRows(userRowCols))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users (id, email, name, image, auth_method, firebase_uid, email_verified, preferences, last_login_at, created_at, updated_at)`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	auth, err := u.SocialLogin(context.Background(), db, "token")
	require.NoError(t, err)
	assert.Equal(t, "google", auth.User.AuthMethod)
	assert.True(t, auth.User.EmailVerified)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOnlySelf(t *testing.T) {
	_, err := newService().Update(context.Background(), nil, "u1", "u2", &model.UserUpdate{})
	require.Error(t, err)
	assert.Equal(t, 403, err.(response.ErrorResponse).StatusCode)
}

func TestApplyWritesOnlyProvidedFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	bio := "Builder"
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET bio = $1, updated_at = $2 WHERE id = $3`)).
		WithArgs("Builder", sqlmock.AnyArg(), "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, Apply(context.Background(), db, "u1", &model.UserUpdate{Bio: &bio}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthMethod(t *testing.T) {
	assert.Equal(t, "google", authMethod("google.com"))
	assert.Equal(t, "apple", authMethod("apple.com"))
	assert.Equal(t, "firebase", authMethod(""))
}
