// Package record contains the HTTP handlers for the Record resource.
//
// Handlers follow the factory pattern: each exported function receives
// its dependencies (the store) once at route registration and returns
// the http.HandlerFunc called on every request.
//
//	router.Handle("POST /api/data", record.New(store))
package record

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/record-service/internal/storage"
	"github.com/aanand-mishra/record-service/internal/types"
	"github.com/aanand-mishra/record-service/internal/utils/response"
)

// validate is safe for concurrent use and caches struct metadata, so one
// instance serves every request.
var validate = validator.New(validator.WithRequiredStructEnabled())

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/data
// Appends a record from the JSON request body.
//
// Request body (JSON), all three keys must be present:
//
//	{ "id": 9, "nome": "Test", "idade": 5 }
//
// Responses:
//
//	201 { "message": "Data added successfully" }
//	400 { "message": "Incomplete data" }  a key is missing
//	400 { "message": "Invalid JSON" }     body is not a JSON record
//
// ─────────────────────────────────────────────────────────────────────────────
func New(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a record")

		var in types.RecordInput
		err := json.NewDecoder(r.Body).Decode(&in)
		if errors.Is(err, io.EOF) {
			// An empty body carries none of the required keys.
			response.WriteMessage(w, http.StatusBadRequest, response.MsgIncomplete)
			return
		}
		if err != nil {
			slog.Info("rejecting record", slog.String("error", err.Error()))
			response.WriteMessage(w, http.StatusBadRequest, response.MsgInvalidJSON)
			return
		}

		if err := validate.Struct(in); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				for _, fe := range verrs {
					slog.Info("record field missing", slog.String("field", fe.Field()))
				}
			}
			response.WriteMessage(w, http.StatusBadRequest, response.MsgIncomplete)
			return
		}

		rec := in.Record()
		if err := store.Create(rec); err != nil {
			slog.Error("error creating record", slog.String("error", err.Error()))
			response.WriteMessage(w, http.StatusInternalServerError, response.MsgInternal)
			return
		}

		slog.Info("record created", slog.Int("id", rec.ID))
		response.WriteMessage(w, http.StatusCreated, response.MsgAdded)
	}
}

// GetByID handles GET /api/data/{id}: the first record with the id, or 404.
func GetByID(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		slog.Info("getting a record", slog.Int("id", id))

		rec, err := store.Get(id)
		if err != nil {
			writeStoreError(w, "error getting record", id, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, rec)
	}
}

// GetList handles GET /api/data and returns every record in insertion
// order. An empty store encodes as [] (not null).
func GetList(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all records")

		records, err := store.List()
		if err != nil {
			slog.Error("error getting records", slog.String("error", err.Error()))
			response.WriteMessage(w, http.StatusInternalServerError, response.MsgInternal)
			return
		}

		response.WriteJSON(w, http.StatusOK, records)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/data/{id}
// Merges the supplied keys into the record; absent keys are left as-is.
//
//	{ "idade": 41 }
//
// Responses:
//
//	200 { "message": "Data updated successfully" }
//	404 { "message": "Data not found" }  checked before the body is read
//	400 { "message": "Invalid JSON" }
//
// ─────────────────────────────────────────────────────────────────────────────
func Update(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		slog.Info("updating a record", slog.Int("id", id))

		// An unknown id is 404 whatever the body holds.
		if _, err := store.Get(id); err != nil {
			writeStoreError(w, "error updating record", id, err)
			return
		}

		var patch types.RecordPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			slog.Info("rejecting update",
				slog.Int("id", id),
				slog.String("error", err.Error()))
			response.WriteMessage(w, http.StatusBadRequest, response.MsgInvalidJSON)
			return
		}

		if _, err := store.Update(id, patch); err != nil {
			writeStoreError(w, "error updating record", id, err)
			return
		}

		slog.Info("record updated", slog.Int("id", id))
		response.WriteMessage(w, http.StatusOK, response.MsgUpdated)
	}
}

// Delete handles DELETE /api/data/{id}. It removes every record with the
// id and answers 200 even when nothing matched.
func Delete(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		slog.Info("deleting a record", slog.Int("id", id))

		removed, err := store.Delete(id)
		if err != nil {
			writeStoreError(w, "error deleting record", id, err)
			return
		}

		slog.Info("record deleted", slog.Int("id", id), slog.Int("removed", removed))
		response.WriteMessage(w, http.StatusOK, response.MsgDeleted)
	}
}

// pathID parses the {id} segment. A non-integer id names no record, so
// it is answered with 404 like any other unknown id.
func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.PathValue("id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		slog.Info("invalid record id", slog.String("id", raw))
		response.WriteMessage(w, http.StatusNotFound, response.MsgNotFound)
		return 0, false
	}
	return id, true
}

func writeStoreError(w http.ResponseWriter, msg string, id int, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		response.WriteMessage(w, http.StatusNotFound, response.MsgNotFound)
		return
	}
	slog.Error(msg, slog.Int("id", id), slog.String("error", err.Error()))
	response.WriteMessage(w, http.StatusInternalServerError, response.MsgInternal)
}
