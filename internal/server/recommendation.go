package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	recommendationdomain "github.com/smallbiznis/mercado/internal/recommendation/domain"
)

func (s *Server) GetRecommendations(c *gin.Context) {
	var query struct {
		UserID   string `form:"user_id"`
		Category string `form:"category"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.recommendationSvc.Recommend(
		c.Request.Context(),
		strings.TrimSpace(query.UserID),
		strings.TrimSpace(query.Category),
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isRecommendationValidationError(err error) bool {
	switch err {
	case recommendationdomain.ErrInvalidUser,
		recommendationdomain.ErrInvalidCategory:
		return true
	default:
		return false
	}
}
