package httpapi

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/blueprint-hub/hub-server/account"
	"github.com/blueprint-hub/hub-server/blob"
	"github.com/blueprint-hub/hub-server/blueprint"
	"github.com/blueprint-hub/hub-server/collection"
	"github.com/blueprint-hub/hub-server/comment"
	"github.com/blueprint-hub/hub-server/model"
	"github.com/blueprint-hub/hub-server/moderation"
	"github.com/blueprint-hub/hub-server/query"
)

const maxUploadSize = 32 << 20

// Server exposes the content servers over HTTP.
type Server struct {
	log *zap.Logger

	authz       *account.Authorizer
	accounts    *account.Server
	blueprints  *blueprint.Server
	collections *collection.Server
	comments    *comment.Server
	blobs       *blob.Uploader
}

func NewServer(
	log *zap.Logger,
	authz *account.Authorizer,
	accounts *account.Server,
	blueprints *blueprint.Server,
	collections *collection.Server,
	comments *comment.Server,
	blobs *blob.Uploader,
) *Server {
	return &Server{
		log:         log,
		authz:       authz,
		accounts:    accounts,
		blueprints:  blueprints,
		collections: collections,
		comments:    comments,
		blobs:       blobs,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(instrument)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authenticate)

		r.Post("/users", s.register)

		r.Get("/blueprints/{id}", s.getBlueprint)
		r.Get("/blueprints/{id}/comments", s.listComments)
		r.Post("/blueprints/{id}/comments", s.createComment)
		r.Get("/collections/{id}", s.getCollection)
		r.Get("/blobs/{id}", s.getBlob)

		r.Group(func(r chi.Router) {
			r.Use(requireUser)

			r.Post("/blueprints", s.createBlueprint)
			r.Patch("/blueprints/{id}", s.updateBlueprint)
			r.Post("/collections", s.createCollection)
			r.Patch("/collections/{id}", s.updateCollection)

			r.Get("/admin/review/blueprints", s.listBlueprintsForReview)
			r.Post("/admin/blueprints/{id}/approve", s.approveBlueprint)
			r.Post("/admin/comments/{id}/approve", s.approveComment)
		})
	})

	return r
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	user, err := s.accounts.Register(r.Context(), req.Username, req.Email, remoteAddr(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) createBlueprint(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	images, err := readImages(r.MultipartForm)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	b, err := s.blueprints.Create(r.Context(), userFromContext(r.Context()), &blueprint.CreateRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Images:      images,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) updateBlueprint(w http.ResponseWriter, r *http.Request) {
	id, err := model.ParseBlueprintID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, blueprint.ErrNotFound.Error())
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	images, err := readImages(r.MultipartForm)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	b, err := s.blueprints.Update(r.Context(), userFromContext(r.Context()), id, &blueprint.UpdateRequest{
		Title:       formField(r.MultipartForm, "title"),
		Description: formField(r.MultipartForm, "description"),
		Images:      images,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) getBlueprint(w http.ResponseWriter, r *http.Request) {
	id, err := model.ParseBlueprintID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, blueprint.ErrNotFound.Error())
		return
	}

	b, err := s.blueprints.Get(r.Context(), userFromContext(r.Context()), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) listBlueprintsForReview(w http.ResponseWriter, r *http.Request) {
	blueprints, err := s.blueprints.ListForReview(r.Context(), userFromContext(r.Context()), query.FromURLValues(r.URL.Query())...)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if blueprints == nil {
		blueprints = []*blueprint.Blueprint{}
	}
	writeJSON(w, http.StatusOK, blueprints)
}

func (s *Server) approveBlueprint(w http.ResponseWriter, r *http.Request) {
	id, err := model.ParseBlueprintID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, blueprint.ErrNotFound.Error())
		return
	}

	if err := s.blueprints.Approve(r.Context(), userFromContext(r.Context()), id); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type collectionRequest struct {
	Title        *string             `json:"title"`
	Description  *string             `json:"description"`
	BlueprintIDs []model.BlueprintID `json:"blueprint_ids"`
}

func (s *Server) createCollection(w http.ResponseWriter, r *http.Request) {
	var req collectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	create := &collection.CreateRequest{BlueprintIDs: req.BlueprintIDs}
	if req.Title != nil {
		create.Title = *req.Title
	}
	if req.Description != nil {
		create.Description = *req.Description
	}

	c, err := s.collections.Create(r.Context(), userFromContext(r.Context()), create)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) updateCollection(w http.ResponseWriter, r *http.Request) {
	id, err := model.ParseCollectionID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, collection.ErrNotFound.Error())
		return
	}

	var req collectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	c, err := s.collections.Update(r.Context(), userFromContext(r.Context()), id, &collection.UpdateRequest{
		Title:        req.Title,
		Description:  req.Description,
		BlueprintIDs: req.BlueprintIDs,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) getCollection(w http.ResponseWriter, r *http.Request) {
	id, err := model.ParseCollectionID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, collection.ErrNotFound.Error())
		return
	}

	c, err := s.collections.Get(r.Context(), userFromContext(r.Context()), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type commentRequest struct {
	Body string `json:"body"`
}

func (s *Server) createComment(w http.ResponseWriter, r *http.Request) {
	id, err := model.ParseBlueprintID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, blueprint.ErrNotFound.Error())
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	c, err := s.comments.Create(r.Context(), userFromContext(r.Context()), id, req.Body, remoteAddr(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) listComments(w http.ResponseWriter, r *http.Request) {
	id, err := model.ParseBlueprintID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, blueprint.ErrNotFound.Error())
		return
	}

	comments, err := s.comments.List(r.Context(), userFromContext(r.Context()), id, query.FromURLValues(r.URL.Query())...)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if comments == nil {
		comments = []*comment.Comment{}
	}
	writeJSON(w, http.StatusOK, comments)
}

func (s *Server) approveComment(w http.ResponseWriter, r *http.Request) {
	id, err := model.ParseCommentID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, comment.ErrNotFound.Error())
		return
	}

	if err := s.comments.Approve(r.Context(), userFromContext(r.Context()), id); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getBlob(w http.ResponseWriter, r *http.Request) {
	id, err := model.ParseBlobID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, blob.ErrNotFound.Error())
		return
	}

	b, data, err := s.blobs.Download(r.Context(), userFromContext(r.Context()), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", b.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.log.Debug("Failed to write blob", zap.Error(err))
	}
}

// formField returns a submitted form value, or nil if the field was absent.
func formField(form *multipart.Form, name string) *string {
	values, ok := form.Value[name]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

func readImages(form *multipart.Form) ([]moderation.Image, error) {
	var images []moderation.Image
	for _, field := range []string{"images", "images[]"} {
		for _, header := range form.File[field] {
			f, err := header.Open()
			if err != nil {
				return nil, err
			}

			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return nil, err
			}

			images = append(images, &moderation.Upload{
				Filename:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Data:        data,
			})
		}
	}
	return images, nil
}
