package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gaigenticai/regulens-autoscaler/pkg/database/queries"
)

type DecisionsHandler struct {
	repo         *queries.DecisionRepository
	defaultLimit int
	maxLimit     int
}

func NewDecisionsHandler(repo *queries.DecisionRepository, defaultLimit, maxLimit int) *DecisionsHandler {
	if defaultLimit <= 0 {
		defaultLimit = 50
	}
	if maxLimit <= 0 {
		maxLimit = 500
	}
	return &DecisionsHandler{
		repo:         repo,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// List returns the decision history, newest first. With from/to query
// parameters it returns the decisions inside that range instead.
func (h *DecisionsHandler) List(c *gin.Context) {
	limit := h.parseLimit(c)

	from, to, hasRange, err := parseTimeRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var records interface{}
	if hasRange {
		records, err = h.repo.GetByRange(c.Request.Context(), from, to, limit)
	} else {
		records, err = h.repo.GetRecent(c.Request.Context(), limit)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query decisions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"decisions": records})
}

func (h *DecisionsHandler) Stats(c *gin.Context) {
	from, to, hasRange, err := parseTimeRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !hasRange {
		to = time.Now()
		from = to.Add(-24 * time.Hour)
	}

	stats, err := h.repo.GetStats(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query decision stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *DecisionsHandler) parseLimit(c *gin.Context) int {
	limit := h.defaultLimit
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > h.maxLimit {
		limit = h.maxLimit
	}
	return limit
}

func parseTimeRange(c *gin.Context) (from, to time.Time, ok bool, err error) {
	rawFrom := c.Query("from")
	rawTo := c.Query("to")
	if rawFrom == "" && rawTo == "" {
		return time.Time{}, time.Time{}, false, nil
	}

	from, err = time.Parse(time.RFC3339, rawFrom)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("invalid or missing RFC3339 timestamp in query parameter %q", "from")
	}
	to, err = time.Parse(time.RFC3339, rawTo)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("invalid or missing RFC3339 timestamp in query parameter %q", "to")
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, false, fmt.Errorf("%q must not be before %q", "to", "from")
	}
	return from, to, true, nil
}
