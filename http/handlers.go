package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"

	"pessoas/db"
	"pessoas/metrics"
)

const maxBodyBytes = 1 << 20

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Handler struct {
	store    db.Store
	metrics  metrics.Recorder
	validate *validator.Validate
	newID    func() uuid.UUID
}

func New(store db.Store, recorder metrics.Recorder) *Handler {
	if recorder == nil {
		recorder = metrics.Nop{}
	}

	validate := validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)

	return &Handler{
		store:    store,
		metrics:  recorder,
		validate: validate,
		newID:    uuid.New,
	}
}

// HealthCheck answers 200 with an empty body. It never touches the store.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) CreatePessoa(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req CreatePessoaRequest

	if err := decodeBody(w, r, &req); err != nil {
		zerolog.Ctx(r.Context()).Debug().Err(err).Msg("rejecting undecodable pessoa")
		writeProblem(w, http.StatusUnprocessableEntity, "invalid body: "+err.Error())
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		writeProblem(w, http.StatusUnprocessableEntity, validationDetail(err))
		return
	}

	person := req.person(h.newID())

	if err := h.store.Insert(r.Context(), &person); err != nil {
		h.storeFailure(w, r, "insert", err)
		return
	}

	zerolog.Ctx(r.Context()).Debug().Str("id", person.ID.String()).Msg("created pessoa")

	w.Header().Set("Location", fmt.Sprintf("/pessoas/%s", person.ID))
	writeJSON(w, http.StatusCreated, newPessoaResponse(person))
}

func (h *Handler) GetPessoa(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	param := ps.ByName("id")

	id, err := uuid.Parse(param)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, fmt.Sprintf("invalid id %q", param))
		return
	}

	person, err := h.store.FindByID(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, fmt.Sprintf("pessoa %s not found", id))
		return
	}
	if err != nil {
		h.storeFailure(w, r, "find_by_id", err)
		return
	}

	writeJSON(w, http.StatusOK, newPessoaResponse(*person))
}

func (h *Handler) GetPessoas(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	searchTerm := r.URL.Query().Get("t")

	if searchTerm == "" {
		writeProblem(w, http.StatusBadRequest, "query parameter t is required")
		return
	}
	if !utf8.ValidString(searchTerm) || strings.ContainsRune(searchTerm, 0) {
		writeProblem(w, http.StatusBadRequest, "query parameter t must be valid UTF-8 text without NUL bytes")
		return
	}

	pessoas, err := h.store.Search(r.Context(), searchTerm)
	if err != nil {
		h.storeFailure(w, r, "search", err)
		return
	}

	writeJSON(w, http.StatusOK, newPessoasResponse(pessoas))
}

func (h *Handler) GetPessoaCount(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	count, err := h.store.Count(r.Context())
	if err != nil {
		h.storeFailure(w, r, "count", err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(strconv.FormatInt(count, 10)))
}

func (h *Handler) storeFailure(w http.ResponseWriter, r *http.Request, operation string, err error) {
	h.metrics.RecordStoreError(operation)
	zerolog.Ctx(r.Context()).Error().Err(err).Str("operation", operation).Msg("store operation failed")
	writeInternalError(w)
}

// decodeBody reads a size-limited body that must hold exactly one JSON
// value. Unmarshal rejects anything left over after it.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		writeInternalError(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func validationDetail(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}

	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		msgs = append(msgs, fmt.Sprintf("%s is %s", e.Field(), e.Tag()))
	}
	return strings.Join(msgs, "; ")
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return field.Name
	}
	return name
}
