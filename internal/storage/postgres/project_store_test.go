package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func projectColumns() []string {
	return []string{
		"projectcode",
		"obfuscate_enable",
		"obfuscate_code",
		"telegram_notice_enable",
		"telegram_notice_token",
		"telegram_notice_chatid",
	}
}

func TestProjectStore_GetProjectPlainCode(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewProjectStoreWithPool(mock)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT projectcode").
		WithArgs("ab12").
		WillReturnRows(pgxmock.NewRows(projectColumns()).
			AddRow(ptr("console.log(1)"), false, nil, false, nil, nil))

	cfg, err := store.GetProject(context.Background(), "ab12")
	require.NoError(t, err)
	require.NotNil(t, cfg)
	require.Equal(t, "console.log(1)", cfg.Code)
	require.False(t, cfg.Notification.Enabled)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectStore_GetProjectObfuscated(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewProjectStoreWithPool(mock)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT projectcode").
		WithArgs("ab12").
		WillReturnRows(pgxmock.NewRows(projectColumns()).
			AddRow(ptr("plain()"), true, ptr("obf()"), true, ptr("tok"), ptr("42")))

	cfg, err := store.GetProject(context.Background(), "ab12")
	require.NoError(t, err)
	require.Equal(t, "obf()", cfg.Code)
	require.True(t, cfg.Notification.Enabled)
	require.Equal(t, "tok", cfg.Notification.Token)
	require.Equal(t, "42", cfg.Notification.ChatID)
}

func TestProjectStore_EmptyObfuscatedFallsBackToPlain(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewProjectStoreWithPool(mock)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT projectcode").
		WithArgs("ab12").
		WillReturnRows(pgxmock.NewRows(projectColumns()).
			AddRow(ptr("plain()"), true, ptr(""), false, nil, nil))

	cfg, err := store.GetProject(context.Background(), "ab12")
	require.NoError(t, err)
	require.Equal(t, "plain()", cfg.Code)
}

func TestProjectStore_MissingRowIsAbsent(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewProjectStoreWithPool(mock)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT projectcode").
		WithArgs("zzzz").
		WillReturnRows(pgxmock.NewRows(projectColumns()))

	cfg, err := store.GetProject(context.Background(), "zzzz")
	require.NoError(t, err)
	require.Nil(t, cfg)
}

func TestProjectStore_NullCodeIsAbsent(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewProjectStoreWithPool(mock)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT projectcode").
		WithArgs("ab12").
		WillReturnRows(pgxmock.NewRows(projectColumns()).
			AddRow(nil, false, nil, false, nil, nil))

	cfg, err := store.GetProject(context.Background(), "ab12")
	require.NoError(t, err)
	require.Nil(t, cfg)
}

func TestProjectStore_QueryErrorPropagates(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewProjectStoreWithPool(mock)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT projectcode").
		WithArgs("ab12").
		WillReturnError(errors.New("connection reset"))

	_, err = store.GetProject(context.Background(), "ab12")
	require.Error(t, err)
}

func TestProjectStore_ListExtraArgNamesKeepsOrderAndDuplicates(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewProjectStoreWithPool(mock)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT modules.module_extra_argname").
		WithArgs("ab12").
		WillReturnRows(pgxmock.NewRows([]string{"module_extra_argname"}).
			AddRow("foo").
			AddRow("bar").
			AddRow("foo"))

	names, err := store.ListExtraArgNames(context.Background(), "ab12")
	require.NoError(t, err)
	require.Equal(t, []string{"foo", "bar", "foo"}, names)
}

func TestProjectStore_ListExtraArgNamesEmpty(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewProjectStoreWithPool(mock)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT modules.module_extra_argname").
		WithArgs("ab12").
		WillReturnRows(pgxmock.NewRows([]string{"module_extra_argname"}))

	names, err := store.ListExtraArgNames(context.Background(), "ab12")
	require.NoError(t, err)
	require.Empty(t, names)
}

func ptr(s string) *string {
	return &s
}
