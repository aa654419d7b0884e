package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rapidcart/catalog/internal/services"
	"github.com/rapidcart/catalog/pkg/errors"
	"github.com/rapidcart/catalog/pkg/response"
)

// RecordHandler exposes the catalog CRUD surface over the record service.
type RecordHandler struct {
	service *services.RecordService
}

type recordRequest struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Description string   `json:"description"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
}

// NewRecordHandler constructs a RecordHandler.
func NewRecordHandler(service *services.RecordService) (*RecordHandler, error) {
	if service == nil {
		return nil, errors.New("HANDLER_INIT", "record service is required", http.StatusInternalServerError)
	}
	return &RecordHandler{service: service}, nil
}

// GET /records
func (h *RecordHandler) List(c *gin.Context) {
	records, source, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.DataWithSource(c, http.StatusOK, records, source)
}

// GET /records/:id
func (h *RecordHandler) Get(c *gin.Context) {
	id, ok := recordID(c)
	if !ok {
		return
	}

	record, source, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.DataWithSource(c, http.StatusOK, record, source)
}

// POST /records
func (h *RecordHandler) Create(c *gin.Context) {
	var body recordRequest
	if !bindAndValidate(c, &body) {
		return
	}

	name := strings.TrimSpace(body.Name)
	if name == "" {
		response.Error(c, errors.NewBadRequest("name is required"))
		return
	}

	record, err := h.service.Create(c.Request.Context(), services.CreateRecordInput{
		Name:        name,
		Description: body.Description,
		Price:       *body.Price,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Data(c, http.StatusCreated, record)
}

// PUT /records/:id
func (h *RecordHandler) Update(c *gin.Context) {
	id, ok := recordID(c)
	if !ok {
		return
	}

	var body recordRequest
	if !bindAndValidate(c, &body) {
		return
	}

	name := strings.TrimSpace(body.Name)
	if name == "" {
		response.Error(c, errors.NewBadRequest("name is required"))
		return
	}

	record, err := h.service.Update(c.Request.Context(), id, services.UpdateRecordInput{
		Name:        name,
		Description: body.Description,
		Price:       *body.Price,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Data(c, http.StatusOK, record)
}

// recordID parses the :id path parameter. Non-numeric ids cannot address any
// record, so they are reported as not found rather than bad requests.
func recordID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, errors.ErrNotFound)
		return 0, false
	}
	return id, true
}
