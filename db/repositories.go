package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	insertPessoaSQL = `insert into pessoas (id, apelido, nome, nascimento, stack) values ($1, $2, $3, $4::date, $5::varchar[])`

	selectPessoaSQL = `select id, apelido, nome, to_char(nascimento, 'YYYY-MM-DD'), stack from pessoas where id = $1`

	searchPessoasSQL = `select id, apelido, nome, to_char(nascimento, 'YYYY-MM-DD'), stack
		from pessoas
		where nome ilike $1
			or apelido ilike $1
			or exists (select 1 from unnest(stack) s where s ilike $1)`

	countPessoasSQL = `select count(*) from pessoas`
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// PostgresStore keeps persons in the pessoas table described by schema.sql.
type PostgresStore struct {
	conn PgxIface
}

func NewPostgresStore(conn PgxIface) *PostgresStore {
	return &PostgresStore{conn: conn}
}

func (s *PostgresStore) Insert(ctx context.Context, person *Person) error {
	_, err := s.conn.Exec(ctx, insertPessoaSQL,
		person.ID,
		person.Nickname,
		person.Name,
		person.BirthDate.String(),
		person.Stacks)
	if err != nil {
		return fmt.Errorf("insert pessoa %s: %w", person.ID, err)
	}

	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*Person, error) {
	person, err := scanPerson(s.conn.QueryRow(ctx, selectPessoaSQL, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find pessoa %s: %w", id, err)
	}

	return person, nil
}

func (s *PostgresStore) Search(ctx context.Context, term string) ([]Person, error) {
	rows, err := s.conn.Query(ctx, searchPessoasSQL, containsPattern(term))
	if err != nil {
		return nil, fmt.Errorf("search pessoas: %w", err)
	}
	defer rows.Close()

	pessoas := []Person{}
	for rows.Next() {
		person, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("search pessoas: %w", err)
		}
		pessoas = append(pessoas, *person)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search pessoas: %w", err)
	}

	return pessoas, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var count int64

	if err := s.conn.QueryRow(ctx, countPessoasSQL).Scan(&count); err != nil {
		return 0, fmt.Errorf("count pessoas: %w", err)
	}

	return count, nil
}

func scanPerson(row pgx.Row) (*Person, error) {
	var (
		person     Person
		nascimento string
	)

	err := row.Scan(
		&person.ID,
		&person.Nickname,
		&person.Name,
		&nascimento,
		&person.Stacks)
	if err != nil {
		return nil, err
	}

	if person.BirthDate, err = ParseDate(nascimento); err != nil {
		return nil, err
	}

	return &person, nil
}

// containsPattern turns a search term into an ILIKE pattern that matches
// the term literally anywhere in the value.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
