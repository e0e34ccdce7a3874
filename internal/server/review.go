package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	reviewdomain "github.com/smallbiznis/mercado/internal/review/domain"
)

type submitReviewRequest struct {
	ReviewerID string `json:"reviewer_id"`
	Rating     int    `json:"rating"`
}

func (s *Server) SubmitReview(c *gin.Context) {
	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.reviewSvc.Submit(c.Request.Context(), reviewdomain.SubmitRequest{
		ProductID:  strings.TrimSpace(c.Param("id")),
		ReviewerID: strings.TrimSpace(req.ReviewerID),
		Rating:     req.Rating,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListProductReviews(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.reviewSvc.ListByProduct(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isReviewValidationError(err error) bool {
	switch err {
	case reviewdomain.ErrInvalidRating,
		reviewdomain.ErrInvalidReviewer,
		reviewdomain.ErrInvalidID:
		return true
	default:
		return false
	}
}
