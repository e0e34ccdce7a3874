package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	orderdomain "github.com/smallbiznis/mercado/internal/order/domain"
)

type createOrderRequest struct {
	BuyerID     string `json:"buyer_id"`
	ProductID   string `json:"product_id"`
	AmountCents int64  `json:"amount_cents"`
}

func (s *Server) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.orderSvc.Create(c.Request.Context(), orderdomain.CreateRequest{
		BuyerID:     strings.TrimSpace(req.BuyerID),
		ProductID:   strings.TrimSpace(req.ProductID),
		AmountCents: req.AmountCents,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetOrderByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.orderSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetOrderEscrow(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	order, err := s.orderSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	parsed, err := parseSnowflake(order.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.escrowSvc.Get(c.Request.Context(), parsed)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ProcessOrder(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.orderSvc.AdvanceToProcessing(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CompleteOrder(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.orderSvc.Complete(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RefundOrder(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.orderSvc.Refund(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func parseSnowflake(id string) (int64, error) {
	parsed, err := snowflake.ParseString(id)
	if err != nil {
		return 0, invalidRequestError()
	}
	return parsed.Int64(), nil
}

func isOrderValidationError(err error) bool {
	switch err {
	case orderdomain.ErrInvalidBuyer,
		orderdomain.ErrInvalidAmount,
		orderdomain.ErrInvalidID,
		orderdomain.ErrProductInactive:
		return true
	default:
		return false
	}
}
