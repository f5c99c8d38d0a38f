package handler

import (
	"github.com/google/uuid"

	"pessoas/db"
)

// CreatePessoaRequest is the body of POST /pessoas. Required fields are
// checked with the validate tags once the body decodes.
type CreatePessoaRequest struct {
	Apelido    string   `json:"apelido" validate:"required"`
	Nome       string   `json:"nome" validate:"required"`
	Nascimento *db.Date `json:"nascimento" validate:"required"`
	Stack      []string `json:"stack"`
}

func (r CreatePessoaRequest) person(id uuid.UUID) db.Person {
	return db.Person{
		ID:        id,
		Name:      r.Nome,
		Nickname:  r.Apelido,
		BirthDate: *r.Nascimento,
		Stacks:    r.Stack,
	}
}

type PessoaResponse struct {
	ID         uuid.UUID `json:"id"`
	Apelido    string    `json:"apelido"`
	Nome       string    `json:"nome"`
	Nascimento db.Date   `json:"nascimento"`
	Stack      []string  `json:"stack"`
}

func newPessoaResponse(p db.Person) PessoaResponse {
	return PessoaResponse{
		ID:         p.ID,
		Apelido:    p.Nickname,
		Nome:       p.Name,
		Nascimento: p.BirthDate,
		Stack:      p.Stacks,
	}
}

func newPessoasResponse(pessoas []db.Person) []PessoaResponse {
	out := make([]PessoaResponse, 0, len(pessoas))
	for _, p := range pessoas {
		out = append(out, newPessoaResponse(p))
	}
	return out
}
