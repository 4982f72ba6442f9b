package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

const (
	contentTypeJSON           = "application/json"
	contentTypeFormURLEncoded = "application/x-www-form-urlencoded"
	contentTypeMultipart      = "multipart/form-data"
)

// handleJSONGet handles GET /json.
func (h *Handler) handleJSONGet(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, newSampleDocument())
}

// handleJSONPost handles POST /json.
func (h *Handler) handleJSONPost(w http.ResponseWriter, r *http.Request) {
	var body EchoPost
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeText(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.writeJSON(w, r, http.StatusOK, Response{
		Code: 0,
		Data: body,
		Msg:  r.Method + " is supported.",
	})
}

// handleJSONUnsupported handles PUT and DELETE /json.
func (h *Handler) handleJSONUnsupported(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusBadRequest, r.Method+" is not supported.")
}

// handleFormData handles POST /form/form-data. Multipart parsing is not
// implemented; only the content type is checked.
func (h *Handler) handleFormData(w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		writeText(w, http.StatusBadRequest, "Content-Type header is missing")
		return
	}
	if !strings.HasPrefix(ct, contentTypeMultipart) {
		writeText(w, http.StatusBadRequest, "content-type is not "+contentTypeMultipart)
		return
	}
	h.writeJSON(w, r, http.StatusOK, Response{
		Code: 0,
		Data: "post",
		Msg:  contentTypeMultipart + " has not implemented yet",
	})
}

// handleFormURLEncoded handles POST /form/form-urlencoded.
func (h *Handler) handleFormURLEncoded(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Content-Type") != contentTypeFormURLEncoded {
		writeText(w, http.StatusBadRequest, "content-type is not "+contentTypeFormURLEncoded)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeText(w, http.StatusBadRequest, "invalid request body")
		return
	}

	form := r.PostForm
	err := validation.Errors{
		"id":    validation.Validate(form["id"], validation.Required),
		"value": validation.Validate(form["value"], validation.Required),
		"fact":  validation.Validate(form["fact"], validation.Required),
	}.Filter()
	if err != nil {
		writeText(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	h.writeJSON(w, r, http.StatusOK, FormURLEncodedResponse{
		Code:   0,
		Method: "post",
		ID:     form.Get("id"),
		Value:  form.Get("value"),
		Fact:   form.Get("fact"),
	})
}

// handleFormJSON handles POST /form/json.
func (h *Handler) handleFormJSON(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Content-Type") != contentTypeJSON {
		writeText(w, http.StatusBadRequest, "content-type is not "+contentTypeJSON)
		return
	}

	var body FormJSON
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeText(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.writeJSON(w, r, http.StatusOK, FormJSONResponse{
		Code:   0,
		Method: "post",
		Msg:    fmt.Sprintf("name: %s, age: %d", body.Name, body.Age),
	})
}
