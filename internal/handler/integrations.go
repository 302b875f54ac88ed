package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// IntegrationStore is the persistence surface for per-home enabled
// integration sets.
type IntegrationStore interface {
	ListEnabled(ctx context.Context, homeID uint64) ([]string, error)
	SetEnabled(ctx context.Context, homeID uint64, serverIDs []string) error
}

// IntegrationsHandler manages the set of enabled integration servers for the
// caller's default home. Reads are open to any home member; the mutation is
// restricted to owner/parent roles by middleware at registration time.
type IntegrationsHandler struct {
	Integrations IntegrationStore
}

func NewIntegrationsHandler(integrations IntegrationStore) *IntegrationsHandler {
	return &IntegrationsHandler{Integrations: integrations}
}

type integrationsResp struct {
	EnabledServerIDs []string `json:"enabled_server_ids"`
}
type integrationsReq struct {
	EnabledServerIDs []string `json:"enabled_server_ids"`
}

// List returns the enabled integration server ids for the caller's default
// home. The home id is placed in context by the role middleware.
func (h *IntegrationsHandler) List(c echo.Context) error {
	homeID, ok := c.Get("home_id").(uint64)
	if !ok || homeID == 0 {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ids, err := h.Integrations.ListEnabled(ctx, homeID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	return c.JSON(http.StatusOK, integrationsResp{EnabledServerIDs: ids})
}

// Update replaces the enabled integration set for the caller's default home.
func (h *IntegrationsHandler) Update(c echo.Context) error {
	homeID, ok := c.Get("home_id").(uint64)
	if !ok || homeID == 0 {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	var req integrationsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ids := normalizeServerIDs(req.EnabledServerIDs)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Integrations.SetEnabled(ctx, homeID, ids); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, integrationsResp{EnabledServerIDs: ids})
}

// normalizeServerIDs trims, drops empties and deduplicates while preserving
// order.
func normalizeServerIDs(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := []string{}
	for _, id := range in {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
