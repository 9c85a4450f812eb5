package service

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strconv"

	"github.com/VictoriaMetrics/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"
	"gitlab.com/dirk.krummacker/contacts-api/internal/config"
	"gitlab.com/dirk.krummacker/contacts-api/internal/model"
	"gitlab.com/dirk.krummacker/contacts-api/internal/storage"
	pubmodel "gitlab.com/dirk.krummacker/contacts-api/pkg/model"
)

// Response texts that clients rely on.
const (
	msgDuplicateEmail = "A contact with this email already exists"
	msgNotFound       = "Contact not found"
	msgDeleted        = "Contact deleted successfully"
)

// ContactStore is the storage the handler works on. It is implemented by *storage.Store.
type ContactStore interface {
	ListAll(ctx context.Context) ([]model.Contact, error)
	GetByID(ctx context.Context, id int64) (model.Contact, error)
	Create(ctx context.Context, fields model.ContactFields) (model.Contact, error)
	Update(ctx context.Context, id int64, fields model.ContactFields) (model.Contact, error)
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}

// Handler translates HTTP requests into calls of the contact store. It keeps no state of its own
// apart from the request metrics.
type Handler struct {
	store   ContactStore
	log     *logrus.Logger
	metrics *metrics.Set
}

// NewHandler returns a handler that serves the contacts of the store.
func NewHandler(store ContactStore, log *logrus.Logger) *Handler {
	return &Handler{
		store:   store,
		log:     log,
		metrics: metrics.NewSet(),
	}
}

// SetupHttpRouter initializes the REST API router and registers all endpoints.
func SetupHttpRouter(h *Handler, cfg config.ServerConfig) (*gin.Engine, error) {
	corsConfig := newCorsConfig(cfg.AllowedOrigins)
	if err := corsConfig.Validate(); err != nil {
		return nil, err
	}

	// Request bodies must not carry fields a contact does not have.
	binding.EnableDecoderDisallowUnknownFields = true

	router := gin.New()
	router.Use(requestID())
	if cfg.RequestLogging() {
		router.Use(logRequests(h.log))
	}
	router.Use(meterRequests(h.metrics), recovery(h.log), cors.New(corsConfig))

	router.GET("/liveness", h.liveness)
	router.GET("/readiness", h.readiness)
	router.GET("/metrics", h.writeMetrics)

	api := router.Group("/api")
	api.GET("/contacts", h.findContacts)
	api.POST("/contacts", h.createContact)
	api.GET("/contacts/:id", h.findContactByID)
	api.PUT("/contacts/:id", h.updateContactByID)
	api.DELETE("/contacts/:id", h.deleteContactByID)
	return router, nil
}

// newCorsConfig allows browser clients from the origins to use every contact endpoint. A "*"
// among the origins allows all of them.
func newCorsConfig(origins []string) cors.Config {
	corsConfig := cors.DefaultConfig()
	if slices.Contains(origins, "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AllowMethods = []string{
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
	}
	corsConfig.AddAllowHeaders(requestIDHeader)
	corsConfig.AddExposeHeaders(requestIDHeader)
	return corsConfig
}

// findContacts responds with the list of all contacts as JSON, the most recently created first.
//
// REST API call:
//
//	> curl "http://localhost:5000/api/contacts"
func (h *Handler) findContacts(c *gin.Context) {
	contacts, err := h.store.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	body := make([]pubmodel.Contact, 0, len(contacts))
	for _, contact := range contacts {
		body = append(body, toResponse(contact))
	}
	c.IndentedJSON(http.StatusOK, body)
}

// findContactByID locates the contact whose ID value matches the id parameter of the request URL,
// then returns that contact as a response.
//
// Example REST API call:
//
//	> curl http://localhost:5000/api/contacts/56
func (h *Handler) findContactByID(c *gin.Context) {
	id, ok := parseId(c)
	if !ok {
		return
	}
	contact, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, toResponse(contact))
}

// createContact inserts the contact specified in the request's JSON into the database. It responds
// with the full contact data including the newly assigned id and the timestamps.
//
// Example REST API call:
//
//	> curl http://localhost:5000/api/contacts --request "POST" --include --header "Content-Type: application/json" --data '{"firstName": "Hans", "lastName": "Wurst", "address": "Hauptstr. 1", "email": "hans@wurst.de", "phoneNumber": "0815 4711"}'
func (h *Handler) createContact(c *gin.Context) {
	fields, ok := bindFields(c)
	if !ok {
		return
	}
	contact, err := h.store.Create(c.Request.Context(), fields)
	if err != nil {
		respondError(c, err)
		return
	}
	c.IndentedJSON(http.StatusCreated, toResponse(contact))
}

// updateContactByID replaces all fields of the contact whose ID value matches the id parameter of
// the request URL and responds with the new version of the contact.
//
// Example REST API call:
//
//	> curl http://localhost:5000/api/contacts/56 --request "PUT" --include --header "Content-Type: application/json" --data '{"firstName": "Hans", "lastName": "Wurst", "address": "Hauptstr. 1", "email": "hans@wurst.de", "phoneNumber": "81970"}'
func (h *Handler) updateContactByID(c *gin.Context) {
	id, ok := parseId(c)
	if !ok {
		return
	}
	fields, ok := bindFields(c)
	if !ok {
		return
	}
	contact, err := h.store.Update(c.Request.Context(), id, fields)
	if err != nil {
		respondError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, toResponse(contact))
}

// deleteContactByID deletes the contact whose ID value matches the id parameter of the request URL
// from the database.
//
// Example REST API call:
//
//	> curl http://localhost:5000/api/contacts/56 --request "DELETE"
func (h *Handler) deleteContactByID(c *gin.Context) {
	id, ok := parseId(c)
	if !ok {
		return
	}
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, pubmodel.Message{Message: msgDeleted})
}

// parseId reads the id parameter of the request URL. An id that is not a number cannot belong to
// any contact, so the request is answered with NOT FOUND without asking the store.
func parseId(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, pubmodel.Error{Error: msgNotFound})
		return 0, false
	}
	return id, true
}

// bindFields decodes the request body into the fields of a contact. Bodies that are not JSON or
// that contain unknown fields are answered with BAD REQUEST.
func bindFields(c *gin.Context) (model.ContactFields, bool) {
	var fields model.ContactFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, pubmodel.Error{Error: "invalid JSON: " + err.Error()})
		return model.ContactFields{}, false
	}
	return fields, true
}

// respondError maps an error of the contact store to the HTTP status code and error body.
func respondError(c *gin.Context, err error) {
	var validationErr *storage.ValidationError
	var duplicateErr *storage.DuplicateEmailError
	var notFoundErr *storage.NotFoundError
	switch {
	case errors.As(err, &validationErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, pubmodel.Error{Error: validationErr.Error()})
	case errors.As(err, &duplicateErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, pubmodel.Error{Error: msgDuplicateEmail})
	case errors.As(err, &notFoundErr):
		c.AbortWithStatusJSON(http.StatusNotFound, pubmodel.Error{Error: msgNotFound})
	default:
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, pubmodel.Error{Error: err.Error()})
	}
}

// toResponse converts a stored contact into its JSON representation.
func toResponse(contact model.Contact) pubmodel.Contact {
	return pubmodel.Contact{
		Id:          strconv.FormatInt(contact.Id, 10),
		FirstName:   contact.FirstName,
		LastName:    contact.LastName,
		Address:     contact.Address,
		Email:       contact.Email,
		PhoneNumber: contact.PhoneNumber,
		CreatedAt:   contact.CreatedAt,
		UpdatedAt:   contact.UpdatedAt,
	}
}
