package db

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{"id", "apelido", "nome", "nascimento", "stack"}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func TestSavePessoa(t *testing.T) {
	mock := newMock(t)

	id := uuid.MustParse("22db9ec4-3ef7-11ee-be56-0242ac120002")
	person := Person{
		ID:        id,
		Nickname:  "jose",
		Name:      "jose vanildo",
		BirthDate: mustParseDate("2012-12-12"),
		Stacks:    []string{"C#"},
	}

	mock.ExpectExec(regexp.QuoteMeta(insertPessoaSQL)).
		WithArgs(id, person.Nickname, person.Name, "2012-12-12", person.Stacks).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, NewPostgresStore(mock).Insert(context.Background(), &person))

	// we make sure that all expectations were met
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSavePessoa_withoutStack(t *testing.T) {
	mock := newMock(t)

	person := Person{ID: uuid.New(), Nickname: "ana", Name: "Ana", BirthDate: mustParseDate("1990-01-01")}

	mock.ExpectExec(regexp.QuoteMeta(insertPessoaSQL)).
		WithArgs(person.ID, "ana", "Ana", "1990-01-01", []string(nil)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, NewPostgresStore(mock).Insert(context.Background(), &person))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSavePessoa_error(t *testing.T) {
	mock := newMock(t)

	person := Person{ID: uuid.New(), Nickname: "ana", Name: "Ana", BirthDate: mustParseDate("1990-01-01")}

	mock.ExpectExec(regexp.QuoteMeta(insertPessoaSQL)).
		WillReturnError(errors.New("connection reset"))

	err := NewPostgresStore(mock).Insert(context.Background(), &person)
	assert.ErrorContains(t, err, "insert pessoa "+person.ID.String())
}

func TestGetPessoaById(t *testing.T) {
	mock := newMock(t)

	id := uuid.MustParse("22db9ec4-3ef7-11ee-be56-0242ac120002")

	rows := mock.NewRows(columns).
		AddRow(id, "jose", "jose", "2000-10-01", []string{"Go"})

	mock.ExpectQuery(regexp.QuoteMeta(selectPessoaSQL)).
		WithArgs(id).
		WillReturnRows(rows)

	person, err := NewPostgresStore(mock).FindByID(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, id, person.ID)
	assert.Equal(t, "2000-10-01", person.BirthDate.String())
	assert.Equal(t, []string{"Go"}, person.Stacks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPessoaById_notFound(t *testing.T) {
	mock := newMock(t)

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(selectPessoaSQL)).
		WithArgs(id).
		WillReturnRows(mock.NewRows(columns))

	_, err := NewPostgresStore(mock).FindByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetPessoaById_error(t *testing.T) {
	mock := newMock(t)

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(selectPessoaSQL)).
		WithArgs(id).
		WillReturnError(errors.New("timeout"))

	_, err := NewPostgresStore(mock).FindByID(context.Background(), id)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestFindPessoas(t *testing.T) {
	mock := newMock(t)

	rows := mock.NewRows(columns).
		AddRow(uuid.New(), "jose", "José Roberto", "2000-10-01", []string{"C#", "Node"}).
		AddRow(uuid.New(), "nodejs", "Ana", "1999-01-01", []string(nil))

	mock.ExpectQuery(regexp.QuoteMeta(searchPessoasSQL)).
		WithArgs("%node%").
		WillReturnRows(rows)

	pessoas, err := NewPostgresStore(mock).Search(context.Background(), "node")
	require.NoError(t, err)

	require.Len(t, pessoas, 2)
	assert.Equal(t, "José Roberto", pessoas[0].Name)
	assert.Nil(t, pessoas[1].Stacks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindPessoas_noMatchIsEmptyNotNil(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(searchPessoasSQL)).
		WithArgs("%zig%").
		WillReturnRows(mock.NewRows(columns))

	pessoas, err := NewPostgresStore(mock).Search(context.Background(), "zig")
	require.NoError(t, err)
	assert.NotNil(t, pessoas)
	assert.Empty(t, pessoas)
}

func TestFindPessoas_escapesWildcards(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(searchPessoasSQL)).
		WithArgs(`%50\%\_off\\%`).
		WillReturnRows(mock.NewRows(columns))

	_, err := NewPostgresStore(mock).Search(context.Background(), `50%_off\`)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindPessoas_badRowFailsTheSearch(t *testing.T) {
	mock := newMock(t)

	rows := mock.NewRows(columns).
		AddRow(uuid.New(), "jose", "José", "2000-10-01", []string(nil)).
		AddRow(uuid.New(), "ana", "Ana", "not-a-date", []string(nil))

	mock.ExpectQuery(regexp.QuoteMeta(searchPessoasSQL)).
		WillReturnRows(rows)

	pessoas, err := NewPostgresStore(mock).Search(context.Background(), "a")
	assert.Error(t, err)
	assert.Nil(t, pessoas)
}

func TestCountPessoa(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(countPessoasSQL)).
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(int64(42)))

	count, err := NewPostgresStore(mock).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), count)
}

func TestCountPessoa_error(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(countPessoasSQL)).
		WillReturnError(errors.New("boom"))

	_, err := NewPostgresStore(mock).Count(context.Background())
	assert.ErrorContains(t, err, "count pessoas")
}
