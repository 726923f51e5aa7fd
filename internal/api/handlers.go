package api

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/starford/nnote/internal/apperr"
	"github.com/starford/nnote/internal/checksum"
	"github.com/starford/nnote/internal/filter"
	"github.com/starford/nnote/internal/nnid"
	"github.com/starford/nnote/internal/noteservice"
	"github.com/starford/nnote/internal/render"
)

const (
	maxBodyBytes   = 10 << 20
	maxUploadBytes = 50 << 20 // 50 MB
)

// Handler holds API route handlers.
type Handler struct {
	svc *noteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service) *Handler {
	return &Handler{svc: svc}
}

// noteID parses the {id} URL parameter.
func noteID(r *http.Request) (nnid.ID, error) {
	return nnid.Parse(chi.URLParam(r, "id"))
}

// fileExt reads the {ext} URL parameter. The leading dot is optional so
// both /files/md and /files/.md work.
func fileExt(r *http.Request) string {
	ext := chi.URLParam(r, "ext")
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// queryFromRequest maps URL parameters onto a note query. Parameter names
// follow the CLI flags; select and exclude may repeat.
func queryFromRequest(r *http.Request) (noteservice.Query, error) {
	v := r.URL.Query()
	q := noteservice.Query{
		Note:    v.Get("note"),
		Since:   v.Get("since"),
		Until:   v.Get("until"),
		Index:   v.Get("index"),
		Order:   v.Get("order"),
		Grep:    v.Get("grep"),
		Select:  v["select"],
		Exclude: v["exclude"],
	}
	if raw := v.Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, apperr.ErrInvalidRangeSyntax
		}
		q.Count = n
	}
	return q, nil
}

// ListNotes handles GET /notes.
//
//	@Summary		List notes selected by date, index, attribute and content filters
//	@Tags			notes
//	@Produce		json
//	@Param			since	query		string	false	"Date spec or identifier"
//	@Param			until	query		string	false	"Date spec or identifier"
//	@Param			index	query		string	false	"Index ranges, e.g. 1-3,7"
//	@Param			count	query		int		false	"Maximum number of notes"
//	@Param			order	query		string	false	"Walk order"	Enums(forward, reverse)
//	@Success		200		{object}	NoteListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q, err := queryFromRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("count must be an integer"))
		return
	}
	items, err := h.svc.Query(r.Context(), q)
	if err != nil {
		writeError(w, "list notes", err)
		return
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: items, Total: len(items)})
}

// GetNote handles GET /notes/{id}.
//
//	@Summary		Get a single note with its files and attributes
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		string	true	"Note identifier"
//	@Success		200	{object}	NoteDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id, err := noteID(r)
	if err != nil {
		writeError(w, "get note", err)
		return
	}
	note, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, "get note", err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// CreateNote handles POST /notes.
//
//	@Summary		Create a new note stamped with the current time
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateNoteRequest	true	"Note to create"
//	@Success		201		{object}	NoteDetail
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Ext == "" {
		req.Ext = ".md"
	}
	attrs, err := filter.ParseAttributes(req.Attributes)
	if err != nil {
		writeError(w, "create note", err)
		return
	}
	n, err := h.svc.Add(r.Context(), req.Ext, []byte(req.Content), attrs...)
	if err != nil {
		writeError(w, "create note", err)
		return
	}
	note, err := h.svc.Get(r.Context(), n.ID)
	if err != nil {
		writeError(w, "create note", err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// DeleteNote handles DELETE /notes/{id}.
//
//	@Summary		Delete a note with all its files and attributes
//	@Tags			notes
//	@Param			id	path	string	true	"Note identifier"
//	@Success		204	"Note deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, err := noteID(r)
	if err != nil {
		writeError(w, "delete note", err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, "delete note", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetFile handles GET /notes/{id}/files/{ext}.
//
//	@Summary		Download one file of a note
//	@Tags			files
//	@Param			id	path	string	true	"Note identifier"
//	@Param			ext	path	string	true	"File extension"
//	@Success		200
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/files/{ext} [get]
func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	id, err := noteID(r)
	if err != nil {
		writeError(w, "get file", err)
		return
	}
	ext := fileExt(r)
	data, err := h.svc.ReadFile(r.Context(), id, ext)
	if err != nil {
		writeError(w, "get file", err)
		return
	}
	ctype := mime.TypeByExtension(ext)
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("ETag", checksum.ETag(data))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// RenderNote handles GET /notes/{id}/html.
//
//	@Summary		Render the first text file of a note as HTML
//	@Tags			notes
//	@Produce		html
//	@Param			id	path	string	true	"Note identifier"
//	@Success		200
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/html [get]
func (h *Handler) RenderNote(w http.ResponseWriter, r *http.Request) {
	id, err := noteID(r)
	if err != nil {
		writeError(w, "render note", err)
		return
	}
	data, ext, err := h.svc.Text(r.Context(), id)
	if err != nil {
		writeError(w, "render note", err)
		return
	}
	out, err := render.HTML(ext, data)
	if err != nil {
		writeError(w, "render note", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("ETag", checksum.ETag(data))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// PutFile handles PUT /notes/{id}/files/{ext}. The body is the new file
// content.
//
//	@Summary		Replace one file of a note with optimistic concurrency
//	@Tags			files
//	@Param			id			path	string	true	"Note identifier"
//	@Param			ext			path	string	true	"File extension"
//	@Param			If-Match	header	string	false	"ETag of the content being replaced"
//	@Success		200	{object}	FileInfo
//	@Failure		404	{object}	errResponse
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/files/{ext} [put]
func (h *Handler) PutFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	id, err := noteID(r)
	if err != nil {
		writeError(w, "update file", err)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}
	fi, err := h.svc.UpdateFile(r.Context(), id, fileExt(r), body, r.Header.Get("If-Match"))
	if err != nil {
		writeError(w, "update file", err)
		return
	}
	w.Header().Set("ETag", strconv.Quote(fi.Checksum))
	writeJSON(w, http.StatusOK, fi)
}

// AttachFile handles POST /notes/{id}/files (multipart/form-data, field
// "file"). The extension comes from the "ext" form field, else from the
// uploaded filename.
//
//	@Summary		Attach a file with a new extension to a note
//	@Tags			files
//	@Accept			mpfd
//	@Param			id		path		string	true	"Note identifier"
//	@Param			file	formData	file	true	"File content"
//	@Param			ext		formData	string	false	"Extension"
//	@Success		201	{object}	FileInfo
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/files [post]
func (h *Handler) AttachFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	id, err := noteID(r)
	if err != nil {
		writeError(w, "attach file", err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	ext := r.FormValue("ext")
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(header.Filename))
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to read file"))
		return
	}
	fi, err := h.svc.Attach(r.Context(), id, ext, data)
	if err != nil {
		writeError(w, "attach file", err)
		return
	}
	writeJSON(w, http.StatusCreated, fi)
}

// TagNote handles POST /notes/{id}/attributes.
//
//	@Summary		Remove then assign attributes on a note
//	@Tags			attributes
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string		true	"Note identifier"
//	@Param			body	body		TagRequest	true	"Attributes to change"
//	@Success		200		{object}	TagResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/attributes [post]
func (h *Handler) TagNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	id, err := noteID(r)
	if err != nil {
		writeError(w, "tag note", err)
		return
	}
	var req TagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	assign, err := filter.ParseAttributes(req.Assign)
	if err != nil {
		writeError(w, "tag note", err)
		return
	}
	remove, err := filter.ParseAttributes(req.Remove)
	if err != nil {
		writeError(w, "tag note", err)
		return
	}
	attrs, err := h.svc.TagNote(r.Context(), id, assign, remove)
	if err != nil {
		writeError(w, "tag note", err)
		return
	}
	writeJSON(w, http.StatusOK, TagResponse{Attributes: attrs})
}
