package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/chatgate/internal/server/vectorindex"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStoreWithMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db, "chatbot_docs"), mock
}

func TestSearch_ReturnsRowsInOrder(t *testing.T) {
	s, mock := newStoreWithMock(t)

	rows := sqlmock.NewRows([]string{"id", "content", "score"}).
		AddRow("bot", "My name is Bot", 0.98).
		AddRow("weather", "It is sunny", 0.12)
	mock.ExpectQuery(`SELECT id, content, 1 - \(embedding <=> \$1::vector\) AS score\s+FROM documents\s+WHERE collection = \$2\s+ORDER BY embedding <=> \$1::vector\s+LIMIT \$3`).
		WithArgs("[1,0,0.5]", "chatbot_docs", 2).
		WillReturnRows(rows)

	res, err := s.Search(context.Background(), []float32{1, 0, 0.5}, 2)
	require.NoError(t, err)
	assert.Equal(t, []vectorindex.SearchResult{
		{ID: "bot", Content: "My name is Bot", Score: 0.98},
		{ID: "weather", Content: "It is sunny", Score: 0.12},
	}, res)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSearch_NoRows(t *testing.T) {
	s, mock := newStoreWithMock(t)
	mock.ExpectQuery(`FROM documents`).WillReturnRows(sqlmock.NewRows([]string{"id", "content", "score"}))

	res, err := s.Search(context.Background(), []float32{1}, 1)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestSearch_DBError(t *testing.T) {
	s, mock := newStoreWithMock(t)
	mock.ExpectQuery(`FROM documents`).WillReturnError(errors.New("db down"))

	_, err := s.Search(context.Background(), []float32{1}, 1)
	assert.ErrorContains(t, err, "db down")
}

func TestListCollections(t *testing.T) {
	s, mock := newStoreWithMock(t)
	mock.ExpectQuery(`SELECT name FROM collections ORDER BY name`).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("a").AddRow("chatbot_docs"))

	names, err := s.ListCollections(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "chatbot_docs"}, names)
}

func TestEnsureCollection_Create(t *testing.T) {
	s, mock := newStoreWithMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO collections \(name, dimension\) VALUES \(\$1, \$2\) ON CONFLICT \(name\) DO NOTHING`).
		WithArgs("chatbot_docs", 1536).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT dimension FROM collections WHERE name = \$1`).
		WithArgs("chatbot_docs").
		WillReturnRows(sqlmock.NewRows([]string{"dimension"}).AddRow(1536))
	mock.ExpectCommit()

	require.NoError(t, s.EnsureCollection(context.Background(), 1536, false))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureCollection_RecreateDeletesFirst(t *testing.T) {
	s, mock := newStoreWithMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM collections WHERE name = \$1`).
		WithArgs("chatbot_docs").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO collections`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT dimension FROM collections`).
		WillReturnRows(sqlmock.NewRows([]string{"dimension"}).AddRow(8))
	mock.ExpectCommit()

	require.NoError(t, s.EnsureCollection(context.Background(), 8, true))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureCollection_DimensionMismatchRollsBack(t *testing.T) {
	s, mock := newStoreWithMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO collections`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT dimension FROM collections`).
		WillReturnRows(sqlmock.NewRows([]string{"dimension"}).AddRow(768))
	mock.ExpectRollback()

	err := s.EnsureCollection(context.Background(), 1536, false)
	assert.ErrorIs(t, err, vectorindex.ErrDimensionMismatch)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert(t *testing.T) {
	s, mock := newStoreWithMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT dimension FROM collections WHERE name = \$1`).
		WithArgs("chatbot_docs").
		WillReturnRows(sqlmock.NewRows([]string{"dimension"}).AddRow(2))
	mock.ExpectExec(`INSERT INTO documents`).
		WithArgs("chatbot_docs", "bot", "My name is Bot", `{"lang":"en"}`, "[1,0]").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO documents`).
		WithArgs("chatbot_docs", "sun", "It is sunny", `{}`, "[0,1]").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.Upsert(context.Background(),
		[]vectorindex.Document{
			{ID: "bot", Content: "My name is Bot", Metadata: map[string]string{"lang": "en"}},
			{ID: "sun", Content: "It is sunny"},
		},
		[][]float32{{1, 0}, {0, 1}},
	)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_MissingCollection(t *testing.T) {
	s, mock := newStoreWithMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT dimension FROM collections`).WillReturnRows(sqlmock.NewRows([]string{"dimension"}))
	mock.ExpectRollback()

	err := s.Upsert(context.Background(), []vectorindex.Document{{ID: "a"}}, [][]float32{{1}})
	assert.ErrorContains(t, err, "does not exist")
}

func TestUpsert_LengthMismatch(t *testing.T) {
	s, _ := newStoreWithMock(t)
	err := s.Upsert(context.Background(), []vectorindex.Document{{ID: "a"}}, nil)
	assert.ErrorIs(t, err, vectorindex.ErrLengthMismatch)
}

func TestRunMigrations_UsesGoose(t *testing.T) {
	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, RunMigrations(context.Background(), db))
	assert.Equal(t, ".", gotDir)

	gooseUpContext = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	assert.Error(t, RunMigrations(context.Background(), db))
}

func TestEncodeVector(t *testing.T) {
	assert.Equal(t, "[]", EncodeVector(nil))
	assert.Equal(t, "[1,-0.25,3.5]", EncodeVector([]float32{1, -0.25, 3.5}))
}
