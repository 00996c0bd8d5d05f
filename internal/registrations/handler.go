package registrations

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xourcebase/backend/internal/models"
	"github.com/xourcebase/backend/pkg/response"
)

// Pagination is the listing page metadata.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalCount  int  `json:"totalCount"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}

// NewPagination derives page metadata from the clamped page/limit and the
// total row count.
func NewPagination(page, limit, totalCount int) Pagination {
	totalPages := (totalCount + limit - 1) / limit
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCount:  totalCount,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}
}

// Handler handles the admin listing endpoint.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a registrations handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /admin/registrations with pagination, free-text search,
// coupon filter and an inclusive date range.
func (h *Handler) List(c *gin.Context) {
	params, err := parseListParams(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	list, total, err := h.repo.List(c.Request.Context(), params)
	if err != nil {
		h.logger.Error("list registrations failed", zap.Error(err))
		response.Internal(c, "failed to load registrations")
		return
	}
	if list == nil {
		list = []models.Registration{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"registrations": list,
		"pagination":    NewPagination(params.Page, params.Limit, total),
	})
}

// parseListParams reads and clamps listing query parameters. The end date is
// pushed to the last instant of its day so the range stays inclusive.
func parseListParams(c *gin.Context) (ListParams, error) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}

	params := ListParams{
		Page:   page,
		Limit:  limit,
		Search: strings.TrimSpace(c.Query("search")),
		Coupon: c.DefaultQuery("coupon", "all"),
	}

	if v := c.Query("fromDate"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return params, errInvalidDate("fromDate")
		}
		params.From = &t
	}
	if v := c.Query("toDate"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return params, errInvalidDate("toDate")
		}
		end := endOfDay(t)
		params.To = &end
	}
	return params, nil
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

type errInvalidDate string

func (e errInvalidDate) Error() string {
	return "invalid " + string(e) + " (expected YYYY-MM-DD)"
}
