package mysql

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/MounirKhalil/real-time-investigation-graph/internal/domain/analysis"
)

func newAnalysisMock(t *testing.T) (*AnalysisRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewAnalysisRepository(db), mock
}

func TestAnalysisSave(t *testing.T) {
	repo, mock := newAnalysisMock(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO qa_analyses")).
		WithArgs("a1", "s1", "q", "a", "degraded", `{"analysis":"x"}`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Save(context.Background(), &domain.Record{
		ID:        "a1",
		SessionID: "s1",
		Question:  "q",
		Answer:    "a",
		Mode:      domain.ModeDegraded,
		Result:    `{"analysis":"x"}`,
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalysisSaveEmptyResultDefaults(t *testing.T) {
	repo, mock := newAnalysisMock(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO qa_analyses")).
		WithArgs("a1", "s1", "q", "a", "structured", "{}", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Save(context.Background(), &domain.Record{
		ID:        "a1",
		SessionID: "s1",
		Question:  "q",
		Answer:    "a",
		Mode:      domain.ModeStructured,
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalysisBySession(t *testing.T) {
	repo, mock := newAnalysisMock(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "session_id", "question", "answer", "mode", "result_json", "created_at"}).
		AddRow("a2", "s1", "q2", "ans2", "structured", "{}", now).
		AddRow("a1", "s1", "q1", "ans1", "degraded", "{}", now.Add(-time.Minute))

	mock.ExpectQuery(regexp.QuoteMeta("FROM qa_analyses")).
		WithArgs("s1", 20).
		WillReturnRows(rows)

	records, err := repo.BySession(context.Background(), "s1", 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, domain.ModeStructured, records[0].Mode)
	assert.Equal(t, domain.ModeDegraded, records[1].Mode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalysisLatestBySessionNone(t *testing.T) {
	repo, mock := newAnalysisMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM qa_analyses")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "session_id", "question", "answer", "mode", "result_json", "created_at"}))

	rec, err := repo.LatestBySession(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.NoError(t, mock.ExpectationsWereMet())
}
