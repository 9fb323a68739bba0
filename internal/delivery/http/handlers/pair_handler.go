package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/LavaJover/shvark-rate-service/internal/delivery/http/dto"
	pairRequest "github.com/LavaJover/shvark-rate-service/internal/delivery/http/dto/pair/request"
	pairResponse "github.com/LavaJover/shvark-rate-service/internal/delivery/http/dto/pair/response"
	"github.com/LavaJover/shvark-rate-service/internal/domain"
	"github.com/gin-gonic/gin"
)

type PairService interface {
	AddPair(base, quote string) (*domain.CurrencyPair, error)
	ActivatePair(id int64) error
	DeactivatePair(id int64) error
	RemovePair(id int64) error
	ListAllPairs() ([]*domain.CurrencyPair, error)
}

type SupportedPairsLister interface {
	SupportedPairs() []domain.Pair
}

type PairHandler struct {
	pairs     PairService
	supported SupportedPairsLister
	errs      errorWriter
}

func NewPairHandler(pairs PairService, supported SupportedPairsLister, exposeErrors bool) *PairHandler {
	return &PairHandler{
		pairs:     pairs,
		supported: supported,
		errs:      errorWriter{expose: exposeErrors},
	}
}

func (h *PairHandler) Register(r gin.IRouter) {
	g := r.Group("/pairs")
	g.GET("", h.GetSupportedPairs)
	g.GET("/tracked", h.GetTrackedPairs)
	g.POST("/tracked", h.AddPair)
	g.POST("/tracked/:id/activate", h.ActivatePair)
	g.POST("/tracked/:id/deactivate", h.DeactivatePair)
	g.DELETE("/tracked/:id", h.RemovePair)
}

// GetSupportedPairs lists the pairs that have a storage target.
func (h *PairHandler) GetSupportedPairs(c *gin.Context) {
	pairs := h.supported.SupportedPairs()
	out := make([]pairResponse.SupportedPair, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, pairResponse.SupportedPair{
			Pair:          p.String(),
			BaseCurrency:  p.Base.Code(),
			QuoteCurrency: p.Quote.Code(),
		})
	}
	c.JSON(http.StatusOK, dto.OK(pairResponse.SupportedPairsResponse{Pairs: out, Total: len(out)}, ""))
}

func (h *PairHandler) GetTrackedPairs(c *gin.Context) {
	pairs, err := h.pairs.ListAllPairs()
	if err != nil {
		h.errs.write(c, err)
		return
	}
	out := make([]pairResponse.TrackedPair, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, toTrackedPair(p))
	}
	c.JSON(http.StatusOK, dto.OK(pairResponse.TrackedPairsResponse{Pairs: out, Total: len(out)}, ""))
}

func (h *PairHandler) AddPair(c *gin.Context) {
	var req pairRequest.AddPairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.badRequest(c, err.Error())
		return
	}
	cp, err := h.pairs.AddPair(req.Base, req.Quote)
	if err != nil {
		h.errs.write(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.OK(toTrackedPair(cp), "currency pair added"))
}

func (h *PairHandler) ActivatePair(c *gin.Context) {
	h.withID(c, h.pairs.ActivatePair, "currency pair activated")
}

func (h *PairHandler) DeactivatePair(c *gin.Context) {
	h.withID(c, h.pairs.DeactivatePair, "currency pair deactivated")
}

func (h *PairHandler) RemovePair(c *gin.Context) {
	h.withID(c, h.pairs.RemovePair, "currency pair removed")
}

func (h *PairHandler) withID(c *gin.Context, op func(int64) error, message string) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.errs.badRequest(c, fmt.Sprintf("invalid pair id %q", c.Param("id")))
		return
	}
	if err := op(id); err != nil {
		h.errs.write(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(gin.H{"id": id}, message))
}

func toTrackedPair(p *domain.CurrencyPair) pairResponse.TrackedPair {
	return pairResponse.TrackedPair{
		ID:            p.ID,
		Pair:          p.Pair.String(),
		BaseCurrency:  p.Pair.Base.Code(),
		QuoteCurrency: p.Pair.Quote.Code(),
		Active:        p.Active,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
