package profile

import (
	"context"
	"database/sql/driver"
	"regexp"
	"rovify-backend/model"
	"rovify-backend/response"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const collectionID = "9d8c7b6a-5f4e-4d3c-8b2a-1f0e9d8c7b61"

func strPtr(s string) *string { return &s }

// converter lets []string arguments through the way the pgx driver accepts them.
type converter struct{}

func (converter) ConvertValue(v interface{}) (driver.Value, error) {
	if _, ok := v.([]string); ok {
		return v, nil
	}
	return driver.DefaultParameterConverter.ConvertValue(v)
}

func TestDeleteCollection(t *testing.T) {
	query := regexp.QuoteMeta(`SELECT is_default FROM user_collections WHERE id = $1 AND user_id = $2`)

	t.Run("default collection is kept", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(query).WithArgs(collectionID, requesterID).
			WillReturnRows(sqlmock.NewRows([]string{"is_default"}).AddRow(true))

		err = NewProfile().DeleteCollection(context.Background(), db, requesterID, collectionID)
		require.Error(t, err)
		assert.Equal(t, 400, err.(response.ErrorResponse).StatusCode)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing collection", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(query).WillReturnRows(sqlmock.NewRows([]string{"is_default"}))

		err = NewProfile().DeleteCollection(context.Background(), db, requesterID, collectionID)
		require.Error(t, err)
		assert.Equal(t, 404, err.(response.ErrorResponse).StatusCode)
	})

	t.Run("deletes", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(query).WillReturnRows(sqlmock.NewRows([]string{"is_default"}).AddRow(false))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM user_collections WHERE id = $1 AND user_id = $2`)).
			WithArgs(collectionID, requesterID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewProfile().DeleteCollection(context.Background(), db, requesterID, collectionID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCreateCollectionDefaults(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.ValueConverterOption(converter{}))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO user_collections`)).
		WithArgs(sqlmock.AnyArg(), requesterID, "Weekend", nil, "#6366f1", "bookmark", false, false, []string{}, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO user_activity`)).
		WithArgs(sqlmock.AnyArg(), requesterID, "collection_created", "collection", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, err := NewProfile().CreateCollection(context.Background(), db, requesterID, &model.CollectionInput{Name: strPtr(" Weekend ")})
	require.NoError(t, err)
	assert.Equal(t, "Weekend", c.Name)
	assert.False(t, c.IsDefault)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCollectionRequiresName(t *testing.T) {
	_, err := NewProfile().CreateCollection(context.Background(), nil, requesterID, &model.CollectionInput{})
	require.Error(t, err)
	assert.Equal(t, 400, err.(response.ErrorResponse).StatusCode)
}

func TestUnlockAchievementDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM user_achievements WHERE user_id = $1 AND achievement_type = $2`)).
		WithArgs(requesterID, "first_event").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, err = NewProfile().UnlockAchievement(context.Background(), db, requesterID, &model.AchievementInput{AchievementType: "first_event", Title: "First event"})
	require.Error(t, err)
	assert.Equal(t, 400, err.(response.ErrorResponse).StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnlockAchievementDefaults(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT`).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO user_achievements`)).
		WithArgs(sqlmock.AnyArg(), requesterID, "first_event", "First event", nil, "award", int64(0), []byte(`{}`), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO user_activity`)).
		WithArgs(sqlmock.AnyArg(), requesterID, "achievement_unlocked", "achievement", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	a, err := NewProfile().UnlockAchievement(context.Background(), db, requesterID, &model.AchievementInput{AchievementType: "first_event", Title: "First event"})
	require.NoError(t, err)
	assert.Equal(t, "award", a.Icon)
	assert.EqualValues(t, 0, a.Points)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityPaging(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM user_activity WHERE user_id = $1 AND activity_type = $2`)).
		WithArgs(requesterID, "friend_added").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY created_at DESC LIMIT $3 OFFSET $4`)).
		WithArgs(requesterID, "friend_added", 2, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "activity_type", "reference_type", "reference_id", "metadata", "created_at"}).
			AddRow("a1", requesterID, "friend_added", "user", addresseeID, []byte(`{"connection_id":"c1"}`), now).
			AddRow("a2", requesterID, "friend_added", nil, nil, nil, now))

	page, err := NewProfile().Activity(context.Background(), db, requesterID, model.ActivityFilter{Type: "friend_added", Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Activities, 2)
	assert.True(t, page.HasMore)
	assert.EqualValues(t, 3, page.Total)
	assert.JSONEq(t, `{}`, string(page.Activities[1].Metadata))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogActivityRequiresType(t *testing.T) {
	err := NewProfile().LogActivity(context.Background(), nil, requesterID, &ActivityInput{})
	require.Error(t, err)
	assert.Equal(t, 400, err.(response.ErrorResponse).StatusCode)
}

func TestRecordTransactionValidation(t *testing.T) {
	cases := []model.WalletInput{
		{TransactionType: "refund", Amount: 1, Currency: "USD"},
		{TransactionType: "deposit", Amount: 0, Currency: "USD"},
		{TransactionType: "deposit", Amount: 5},
	}
	for _, in := range cases {
		in := in
		_, err := NewProfile().RecordTransaction(context.Background(), nil, requesterID, &in)
		require.Error(t, err)
		assert.Equal(t, 400, err.(response.ErrorResponse).StatusCode)
	}
}

func TestRecordTransactionIsPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO user_wallet_transactions`)).
		WithArgs(sqlmock.AnyArg(), requesterID, "deposit", 12.5, "ETH", nil, "pending", nil, nil, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	tx, err := NewProfile().RecordTransaction(context.Background(), db, requesterID, &model.WalletInput{TransactionType: "deposit", Amount: 12.5, Currency: "eth"})
	require.NoError(t, err)
	assert.Equal(t, "pending", tx.Status)
	assert.Equal(t, "ETH", tx.Currency)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletStats(t *testing.T) {
	stats := walletStats(100, 20, 30)
	assert.Equal(t, 50.0, stats.Balance)
	assert.Equal(t, 100.0, stats.TotalDeposits)
	assert.Equal(t, 20.0, stats.TotalWithdrawals)
	assert.Equal(t, 30.0, stats.TotalSpent)
}

func TestUpdatedFields(t *testing.T) {
	upd := &model.ProfileUpdate{
		UserUpdate:  model.UserUpdate{Bio: strPtr("hi"), Username: strPtr("ada")},
		Preferences: &model.PreferencesInput{},
	}
	assert.Equal(t, []string{"username", "bio", "preferences"}, updatedFields(upd))
}

func TestUpdateWithEmptyBody(t *testing.T) {
	_, err := NewProfile().Update(context.Background(), nil, requesterID, &model.ProfileUpdate{})
	require.Error(t, err)
	assert.Equal(t, 400, err.(response.ErrorResponse).StatusCode)
}

func TestPreferencesDefaultWhenAbsent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM user_preference_details`).WithArgs(requesterID).WillReturnRows(sqlmock.NewRows([]string{"theme"}))

	prefs, err := Preferences(context.Background(), db, requesterID)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultPreferences(), prefs)
}

var userFields = []string{
	"id", "email", "name", "username", "auth_method", "bio", "image", "twitter", "instagram", "website", "wallet_address",
	"interests", "preferences", "followers_count", "following_count", "verified", "email_verified",
	"is_organiser", "is_admin", "last_login_at", "created_at", "updated_at",
}

// expectProfileReads registers every read Get fans out except the user row.
func expectProfileReads(mock sqlmock.Sqlmock, now time.Time) {
	mock.ExpectQuery(`FROM user_preference_details`).WithArgs(requesterID).
		WillReturnRows(sqlmock.NewRows([]string{"theme"}))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM user_collections WHERE user_id = $1`)).WithArgs(requesterID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM user_achievements WHERE user_id = $1`)).WithArgs(requesterID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "achievement_type", "title", "description", "icon", "points", "metadata", "unlocked_at"}).
			AddRow("ach1", requesterID, "first_event", "First event", nil, "star", 10, nil, now))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM user_activity WHERE user_id = $1`)).WithArgs(requesterID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM user_activity WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`)).
		WithArgs(requesterID, profileActivityLimit, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM user_connections c`)).WithArgs(requesterID, model.ConnectionAccepted).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM user_wallet_transactions WHERE user_id = $1`)).WithArgs(requesterID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM user_wallet_transactions WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`)).
		WithArgs(requesterID, profileWalletLimit, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM tickets WHERE owner_id = $1`)).WithArgs(requesterID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "owner_id", "type", "tier_name", "price", "currency", "status", "is_nft", "contract_address", "token_id", "purchase_date", "created_at"}).
			AddRow("t1", "e1", requesterID, "general", nil, "25.00", "USD", "valid", false, nil, nil, nil, now))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM event_attendees WHERE user_id = $1 AND status = 'attended'`)).WithArgs(requesterID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM events WHERE organiser_id = $1`)).WithArgs(requesterID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(SUM(usd_value), 0) FROM user_wallet_transactions`)).WithArgs(requesterID).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(42.5))
}

func TestGetAssemblesProfile(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.MatchExpectationsInOrder(false)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1`)).WithArgs(requesterID).
		WillReturnRows(sqlmock.NewRows(userFields).AddRow(
			requesterID, "ada@rovify.io", "Ada", "ada", "email", nil, nil, nil, nil, nil, nil,
			nil, []byte(`{}`), 12, 7, true, true,
			false, false, nil, now, now))
	expectProfileReads(mock, now)

	p, err := NewProfile().Get(context.Background(), db, requesterID)
	require.NoError(t, err)
	assert.Equal(t, requesterID, p.User.ID)
	assert.Equal(t, []string{}, p.User.Interests)
	assert.Equal(t, model.DefaultPreferences(), p.Preferences)
	assert.NotNil(t, p.Collections)
	require.Len(t, p.Achievements, 1)
	assert.JSONEq(t, `{}`, string(p.Achievements[0].Metadata))
	assert.Len(t, p.Tickets, 1)
	assert.Equal(t, model.ProfileStats{
		EventsAttended:    3,
		EventsCreated:     1,
		Followers:         12,
		Following:         7,
		TotalSpent:        42.5,
		AchievementsCount: 1,
		CollectionsCount:  0,
	}, p.Stats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUnknownUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1`)).WithArgs(requesterID).
		WillReturnRows(sqlmock.NewRows(userFields))
	expectProfileReads(mock, time.Now())

	_, err = NewProfile().Get(context.Background(), db, requesterID)
	require.Error(t, err)
	assert.Equal(t, 404, err.(response.ErrorResponse).StatusCode)
}
