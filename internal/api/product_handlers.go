package api

import (
	"encoding/json"
	"errors"
	"log"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/NguyenTrongHinh/shop-management-system/internal/api/middleware"
	"github.com/NguyenTrongHinh/shop-management-system/internal/catalog"
	"github.com/NguyenTrongHinh/shop-management-system/internal/infrastructure/store"
	"github.com/NguyenTrongHinh/shop-management-system/internal/media"
	"github.com/NguyenTrongHinh/shop-management-system/internal/model"
)

const maxUploadBytes = 20 << 20 // whole multipart form

// ProductHandlers serves the catalog routes.
type ProductHandlers struct {
	catalog  *catalog.Service
	uploader media.Uploader
}

// productListResponse is the listing envelope.
type productListResponse struct {
	Products   []*model.Product   `json:"products"`
	Pagination catalog.Pagination `json:"pagination"`
}

func (h *ProductHandlers) List(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	products, pagination, err := h.catalog.List(r.Context(), f)
	if err != nil {
		log.Printf("[API] List products failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if products == nil {
		products = []*model.Product{}
	}
	respondJSON(w, http.StatusOK, productListResponse{Products: products, Pagination: pagination})
}

// parseFilter maps the listing query string onto a catalog filter.
func parseFilter(r *http.Request) (catalog.Filter, error) {
	q := r.URL.Query()
	f := catalog.Filter{
		Category: q.Get("category"),
		Brand:    q.Get("brand"),
		Tag:      q.Get("tag"),
		Search:   q.Get("search"),
		Sort:     q.Get("sort"),
	}

	floatParam := func(name string) (*float64, error) {
		raw := q.Get(name)
		if raw == "" {
			return nil, nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errors.New("invalid " + name)
		}
		return &v, nil
	}

	var err error
	if f.MinPrice, err = floatParam("minPrice"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = floatParam("maxPrice"); err != nil {
		return f, err
	}
	if f.MinRating, err = floatParam("minRating"); err != nil {
		return f, err
	}

	if raw := q.Get("featured"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return f, errors.New("invalid featured")
		}
		f.Featured = &v
	}
	if raw := q.Get("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return f, errors.New("invalid page")
		}
		f.Page = v
	}
	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return f, errors.New("invalid limit")
		}
		f.Limit = v
	}
	return f, nil
}

func (h *ProductHandlers) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]*model.Product{"product": product})
}

func (h *ProductHandlers) Create(w http.ResponseWriter, r *http.Request) {
	np, err := h.decodeProduct(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, _ := middleware.UserFromContext(r.Context())
	product, err := h.catalog.Create(r.Context(), np, user.ID)
	if err != nil {
		h.respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]*model.Product{"product": product})
}

func (h *ProductHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var upd catalog.Update
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := h.catalog.Apply(r.Context(), r.PathValue("id"), upd)
	if err != nil {
		h.respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]*model.Product{"product": product})
}

func (h *ProductHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Product deleted"})
}

func (h *ProductHandlers) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		log.Printf("[API] List product categories failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondJSON(w, http.StatusOK, map[string][]string{"categories": categories})
}

func (h *ProductHandlers) Brands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.catalog.Brands(r.Context())
	if err != nil {
		log.Printf("[API] List brands failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondJSON(w, http.StatusOK, map[string][]string{"brands": brands})
}

func (h *ProductHandlers) Featured(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.Featured(r.Context())
	if err != nil {
		log.Printf("[API] List featured products failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if products == nil {
		products = []*model.Product{}
	}
	respondJSON(w, http.StatusOK, map[string][]*model.Product{"products": products})
}

func (h *ProductHandlers) Rate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rating float64 `json:"rating"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, _ := middleware.UserFromContext(r.Context())
	product, err := h.catalog.Rate(r.Context(), r.PathValue("id"), user.ID, req.Rating)
	if err != nil {
		h.respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]*model.Product{"product": product})
}

// decodeProduct accepts either a JSON body or a multipart form carrying
// image files plus scalar fields.
func (h *ProductHandlers) decodeProduct(r *http.Request) (catalog.NewProduct, error) {
	var np catalog.NewProduct

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if err := json.NewDecoder(r.Body).Decode(&np); err != nil {
			return np, errors.New("Invalid request body")
		}
		return np, nil
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return np, errors.New("Invalid multipart form")
	}

	np.Name = r.FormValue("name")
	np.Description = r.FormValue("description")
	np.Category = r.FormValue("category")
	np.Brand = r.FormValue("brand")

	if raw := r.FormValue("price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return np, errors.New("invalid price")
		}
		np.Price = v
	}
	if raw := r.FormValue("countInStock"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return np, errors.New("invalid countInStock")
		}
		np.CountInStock = v
	}
	if raw := r.FormValue("discount"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return np, errors.New("invalid discount")
		}
		np.Discount = v
	}
	if raw := r.FormValue("featured"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return np, errors.New("invalid featured")
		}
		np.Featured = v
	}
	if raw := r.FormValue("tags"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				np.Tags = append(np.Tags, tag)
			}
		}
	}
	if raw := r.FormValue("specifications"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &np.Specifications); err != nil {
			return np, errors.New("invalid specifications")
		}
	}

	files := r.MultipartForm.File["images"]
	if len(files) > 5 {
		return np, catalog.ErrTooManyImages
	}
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return np, errors.New("invalid image upload")
		}
		url, err := h.uploader.Upload(r.Context(), fh.Filename, f)
		f.Close()
		if err != nil {
			return np, errors.New("failed to store image")
		}
		np.Images = append(np.Images, url)
	}

	return np, nil
}

func (h *ProductHandlers) respondCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "Product not found")
	case catalog.IsValidation(err):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("[API] Product operation failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}
