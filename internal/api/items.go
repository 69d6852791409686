package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/erazemk/gegenstand/internal/imaging"
	"github.com/erazemk/gegenstand/internal/model"
	"github.com/erazemk/gegenstand/internal/service"
)

// ItemsHandler handles item endpoints. The owner always comes from the
// token, never from the request.
type ItemsHandler struct {
	Items *service.Items
	Today func() model.Date
}

type itemResponse struct {
	model.Item
	SafeToDiscard bool `json:"safe_to_discard"`
}

func (h *ItemsHandler) present(item *model.Item) itemResponse {
	return itemResponse{Item: *item, SafeToDiscard: model.SafeToDiscard(item.LastUsed, h.Today())}
}

// pathID parses the {id} segment. A non-numeric id names no item.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, service.ErrNotFound
	}
	return id, nil
}

var (
	dateType    = reflect.TypeOf((*model.Date)(nil))
	decimalType = reflect.TypeOf((*decimal.Decimal)(nil))
	boolType    = reflect.TypeOf((*bool)(nil))
)

// decodeItemInput decodes an item payload. A value of the wrong type or
// format is reported against its field; only a body that is not a JSON
// object is rejected as malformed.
func decodeItemInput(r *http.Request) (model.ItemInput, error) {
	var in model.ItemInput
	defer r.Body.Close()

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return in, errMalformedBody
	}
	if err := json.Unmarshal(data, &in); err == nil {
		return in, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return in, errMalformedBody
	}

	errs := model.FieldErrors{}
	t := reflect.TypeOf(in)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		value, ok := raw[name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(value, reflect.New(field.Type).Interface()); err != nil {
			errs.Add(name, invalidValueMessage(field.Type))
		}
	}
	if len(errs) == 0 {
		return in, errMalformedBody
	}
	return in, errs
}

func invalidValueMessage(t reflect.Type) string {
	switch t {
	case dateType:
		return "must be a date in YYYY-MM-DD format"
	case decimalType:
		return "must be a number"
	case boolType:
		return "must be true or false"
	}
	return "must be a string"
}

// List handles GET /gegenstaende.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Items.ListForOwner(r.Context(), GetClaims(r.Context()).UserID())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]itemResponse, 0, len(items))
	for i := range items {
		out = append(out, h.present(&items[i]))
	}
	jsonResponse(w, http.StatusOK, out)
}

// Get handles GET /gegenstaende/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	item, err := h.Items.GetForOwner(r.Context(), GetClaims(r.Context()).UserID(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, h.present(item))
}

// Create handles POST /gegenstaende.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, err := decodeItemInput(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	item, err := h.Items.CreateForOwner(r.Context(), GetClaims(r.Context()).UserID(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/gegenstaende/%d", item.ID))
	jsonResponse(w, http.StatusCreated, h.present(item))
}

// Update handles PUT /gegenstaende/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	in, err := decodeItemInput(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	item, err := h.Items.UpdateForOwner(r.Context(), GetClaims(r.Context()).UserID(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, h.present(item))
}

// Delete handles DELETE /gegenstaende/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.Items.DeleteForOwner(r.Context(), GetClaims(r.Context()).UserID(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadPhoto handles PUT /gegenstaende/{id}/photo.
func (h *ItemsHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(imaging.MaxUploadSize); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "photo file required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "failed to read photo")
		return
	}

	item, err := h.Items.SetPhotoForOwner(r.Context(), GetClaims(r.Context()).UserID(), id, data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, h.present(item))
}

// GetPhoto handles GET /gegenstaende/{id}/photo.
func (h *ItemsHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	data, mime, err := h.Items.PhotoForOwner(r.Context(), GetClaims(r.Context()).UserID(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(data)
}
