package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"strategystore/internal/catalog"
	"strategystore/internal/middleware"
	"strategystore/internal/models"
	"strategystore/internal/service"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"
)

// maxPayloadBytes bounds the raw strategy document read from a request.
const maxPayloadBytes = 1 << 20

// StrategyStore is the part of service.StrategyService the handlers use.
type StrategyStore interface {
	CreateMinimal(ctx context.Context, caller, id, goal string) (string, error)
	CreateFull(ctx context.Context, caller string, payload []byte) (string, error)
	Update(ctx context.Context, caller string, payload []byte) (string, error)
	Delete(ctx context.Context, caller, id string) (string, error)
	Get(id string) (models.StrategyRecord, bool)
	ListAll() []models.StrategyRecord
	ListByCreator(identity string) []models.StrategyRecord
	Stats() catalog.Stats
}

// Streamer upgrades a request to the change feed.
type Streamer interface {
	ServeWS(w http.ResponseWriter, r *http.Request) error
}

type StrategyHandler struct {
	store  StrategyStore
	stream Streamer
}

// NewStrategyHandler builds the handler. stream may be nil.
func NewStrategyHandler(store StrategyStore, stream Streamer) *StrategyHandler {
	return &StrategyHandler{store: store, stream: stream}
}

// CreateMinimal stores a strategy with only an id and a goal.
func (h *StrategyHandler) CreateMinimal(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	var req CreateMinimalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: catalog.KindMalformedInput.String()})
		return
	}
	msg, err := h.store.CreateMinimal(c.Request.Context(), caller, req.ID, req.Goal)
	respond(c, http.StatusCreated, msg, err)
}

// CreateFull stores the full strategy document in the request body.
func (h *StrategyHandler) CreateFull(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	payload, ok := readPayload(c)
	if !ok {
		return
	}
	msg, err := h.store.CreateFull(c.Request.Context(), caller, payload)
	respond(c, http.StatusCreated, msg, err)
}

// Update replaces an existing strategy with the document in the request body.
func (h *StrategyHandler) Update(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	payload, ok := readPayload(c)
	if !ok {
		return
	}
	msg, err := h.store.Update(c.Request.Context(), caller, payload)
	respond(c, http.StatusOK, msg, err)
}

func (h *StrategyHandler) Delete(c *gin.Context) {
	h.delete(c, c.Param("id"))
}

// DeleteByID is Delete with the id taken from ?id=, for ids the path form
// cannot carry.
func (h *StrategyHandler) DeleteByID(c *gin.Context) {
	h.delete(c, c.Query("id"))
}

func (h *StrategyHandler) Get(c *gin.Context) {
	h.get(c, c.Param("id"))
}

// GetByID is Get with the id taken from ?id=. It reaches records whose id is
// "stats", "stream", "by-id" or contains a slash.
func (h *StrategyHandler) GetByID(c *gin.Context) {
	h.get(c, c.Query("id"))
}

func (h *StrategyHandler) delete(c *gin.Context, id string) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	msg, err := h.store.Delete(c.Request.Context(), caller, id)
	respond(c, http.StatusOK, msg, err)
}

func (h *StrategyHandler) get(c *gin.Context, id string) {
	rec, ok := h.store.Get(id)
	if !ok {
		writeError(c, &catalog.Error{Kind: catalog.KindNotFound, ID: id})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// List returns every strategy, or only those of ?creator= when given.
func (h *StrategyHandler) List(c *gin.Context) {
	if creator, ok := c.GetQuery("creator"); ok {
		c.JSON(http.StatusOK, h.store.ListByCreator(creator))
		return
	}
	c.JSON(http.StatusOK, h.store.ListAll())
}

func (h *StrategyHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Stats())
}

// Stream upgrades to a websocket that receives every strategy event.
func (h *StrategyHandler) Stream(c *gin.Context) {
	if h.stream == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "change feed disabled", Kind: "not_found"})
		return
	}
	if err := h.stream.ServeWS(c.Writer, c.Request); err != nil {
		logrus.WithField("remote", c.ClientIP()).Warnf("stream closed: %v", err)
	}
}

func callerOrAbort(c *gin.Context) (string, bool) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "missing caller identity", Kind: "unauthorized"})
	}
	return caller, ok
}

func readPayload(c *gin.Context) ([]byte, bool) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxPayloadBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: catalog.KindMalformedInput.String()})
		return nil, false
	}
	return payload, true
}

// respond writes msg with status, or the error mapped to its status.
func respond(c *gin.Context, status int, msg string, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(status, MessageResponse{Message: msg})
}

func writeError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrPersistence) {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Kind: "persistence"})
		return
	}

	kind := catalog.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case catalog.KindMalformedInput, catalog.KindMissingField:
		status = http.StatusBadRequest
	case catalog.KindNotFound:
		status = http.StatusNotFound
	case catalog.KindForbidden:
		status = http.StatusForbidden
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Kind: kind.String()})
}
