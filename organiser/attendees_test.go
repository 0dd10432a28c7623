package organiser

import (
	"context"
	"database/sql/driver"
	"regexp"
	"rovify-backend/model"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// converter lets []string arguments through the way the pgx driver accepts them.
type converter struct{}

func (converter) ConvertValue(v interface{}) (driver.Value, error) {
	if _, ok := v.([]string); ok {
		return v, nil
	}
	return driver.DefaultParameterConverter.ConvertValue(v)
}

var (
	attendeeFields = []string{"id", "event_id", "title", "status", "created_at", "uid", "name", "username", "email", "image", "verified", "interests"}
	ticketFields   = []string{"id", "event_id", "owner_id", "type", "tier_name", "price", "currency", "status", "is_nft", "contract_address", "token_id", "purchase_date", "created_at"}
)

func TestAttendeesEnrichesPageInBatches(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.ValueConverterOption(converter{}))
	require.NoError(t, err)
	defer db.Close()
	mock.MatchExpectationsInOrder(false)

	now := time.Now()
	expectOrganiser(mock, true)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM event_attendees a JOIN events e ON e.id = a.event_id JOIN users u ON u.id = a.user_id WHERE e.organiser_id = $1 AND a.event_id::text = $2 AND (u.name ILIKE $3`)).
		WithArgs(organiserID, "e1", "%ad%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY a.created_at DESC LIMIT $4 OFFSET $5`)).
		WithArgs(organiserID, "e1", "%ad%", 2, 0).
		WillReturnRows(sqlmock.NewRows(attendeeFields).
			AddRow("a1", "e1", "Launch", "going", now, "u1", "Ada", "ada", "ada@rovify.io", nil, true, nil).
			AddRow("a2", "e1", "Launch", "attended", now, "u2", "Adaeze", "adaeze", "adaeze@rovify.io", nil, false, nil))
	mock.ExpectQuery(`COUNT\(\*\) FILTER \(WHERE a.status = 'going'\)`).
		WithArgs(organiserID, "e1").
		WillReturnRows(sqlmock.NewRows([]string{"total", "going", "interested", "attended"}).AddRow(9, 5, 2, 2))
	mock.ExpectQuery(`unnest\(u.interests\)`).
		WithArgs(organiserID, "e1").
		WillReturnRows(sqlmock.NewRows([]string{"interest", "count"}).AddRow("music", 4).AddRow("art", 1))

	users := []string{"u1", "u2"}
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE owner_id = ANY($1) AND event_id = ANY($2)`)).
		WithArgs(users, []string{"e1", "e1"}).
		WillReturnRows(sqlmock.NewRows(ticketFields).
			AddRow("t-new", "e1", "u1", "vip", nil, "80.00", "USD", "valid", false, nil, nil, nil, now).
			AddRow("t-old", "e1", "u1", "general", nil, "25.00", "USD", "valid", false, nil, nil, nil, now.Add(-time.Hour)))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT user_id, COUNT(*) FROM event_attendees WHERE user_id = ANY($1) AND status = 'attended'`)).
		WithArgs(users).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "count"}).AddRow("u2", 4))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM user_connections`)).
		WithArgs(organiserID, users).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "status"}).AddRow("u1", "accepted"))

	list, err := NewOrganiser(nil, nil, nil, testKey, false).Attendees(context.Background(), db, model.AttendeeFilter{
		OrganiserID: organiserID, EventID: "e1", Search: " ad ", Limit: 2,
	})
	require.NoError(t, err)

	require.Len(t, list.Attendees, 2)
	ada, adaeze := list.Attendees[0], list.Attendees[1]
	require.NotNil(t, ada.Ticket)
	assert.Equal(t, "t-new", ada.Ticket.ID, "the newest ticket wins")
	require.NotNil(t, ada.ConnectionStatus)
	assert.Equal(t, "accepted", *ada.ConnectionStatus)
	assert.Zero(t, ada.EventsAttended)

	assert.Nil(t, adaeze.Ticket)
	assert.Nil(t, adaeze.ConnectionStatus)
	assert.EqualValues(t, 4, adaeze.EventsAttended)

	assert.Equal(t, model.AttendeeSummary{Total: 9, Going: 5, Interested: 2, Attended: 2}, list.Summary)
	assert.Equal(t, []model.InterestCount{{Interest: "music", Count: 4}, {Interest: "art", Count: 1}}, list.Demographics.TopInterests)
	assert.Equal(t, model.Pagination{Page: 1, Limit: 2, Total: 5, TotalPages: 3}, list.Pagination)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendeesEmptyPageSkipsEnrichment(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.MatchExpectationsInOrder(false)

	expectOrganiser(mock, true)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM event_attendees`)).WithArgs(organiserID, "going").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`ORDER BY a.created_at DESC`).WithArgs(organiserID, "going", defaultAttendeeLimit, 0).
		WillReturnRows(sqlmock.NewRows(attendeeFields))
	mock.ExpectQuery(`COUNT\(\*\) FILTER`).WithArgs(organiserID).
		WillReturnRows(sqlmock.NewRows([]string{"total", "going", "interested", "attended"}).AddRow(0, 0, 0, 0))
	mock.ExpectQuery(`unnest\(u.interests\)`).WithArgs(organiserID).
		WillReturnRows(sqlmock.NewRows([]string{"interest", "count"}))

	list, err := NewOrganiser(nil, nil, nil, testKey, false).Attendees(context.Background(), db, model.AttendeeFilter{
		OrganiserID: organiserID, Status: "going",
	})
	require.NoError(t, err)
	assert.NotNil(t, list.Attendees)
	assert.Empty(t, list.Attendees)
	assert.NotNil(t, list.Demographics.TopInterests)
	assert.NoError(t, mock.ExpectationsWereMet(), "no enrichment query runs for an empty page")
}
