package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"irisai/internal/authz"
	"irisai/internal/models"
	"irisai/internal/services"
	"irisai/internal/xerrors"
)

type LeadHandler struct {
	Service *services.LeadService
	logger  *zap.Logger
}

func NewLeadHandler(service *services.LeadService, logger *zap.Logger) *LeadHandler {
	return &LeadHandler{Service: service, logger: logger}
}

type convertLeadRequest struct {
	Notes *string `json:"notes,omitempty"`
}

// canModify lets elevated roles touch any lead and sales users touch leads
// they created or are assigned to.
func canModify(lead *models.Lead, userID string, roleID int) bool {
	if authz.IsElevated(roleID) {
		return true
	}
	owns := func(p *string) bool { return p != nil && *p == userID }
	return owns(lead.AssignedUserID) || owns(lead.CreatedBy)
}

// modifiableLead loads the lead named in the path and writes the error or 403
// response itself when the caller may not change it.
func (h *LeadHandler) modifiableLead(c *gin.Context, userID string, roleID int) (*models.Lead, bool) {
	lead, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return nil, false
	}
	if !canModify(lead, userID, roleID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return nil, false
	}
	return lead, true
}

// @Summary      Create lead
// @Description  Creates a lead in status New. The creator is taken from the token.
// @Tags         Leads
// @Accept       json
// @Produce      json
// @Param        lead  body      models.Lead  true  "Lead"
// @Success      201   {object}  models.Lead
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /leads [post]
func (h *LeadHandler) Create(c *gin.Context) {
	var lead models.Lead
	if err := c.ShouldBindJSON(&lead); err != nil {
		respondError(c, h.logger, badBody(err))
		return
	}

	userID, _ := getUserAndRole(c)
	lead.CreatedBy = nil
	if userID != "" {
		lead.CreatedBy = &userID
	}

	if err := h.Service.Create(c.Request.Context(), &lead); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, lead)
}

// @Summary      List leads
// @Tags         Leads
// @Produce      json
// @Param        status            query  string  false  "Lead status"
// @Param        assigned_user_id  query  string  false  "Assignee"
// @Param        country           query  string  false  "Country"
// @Param        q                 query  string  false  "Search company, contact or email"
// @Param        page              query  int     false  "Page (default 1)"
// @Param        size              query  int     false  "Page size (default 50, max 200)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  errorResponse
// @Router       /leads [get]
func (h *LeadHandler) List(c *gin.Context) {
	filter := models.LeadFilter{
		AssignedUserID: strings.TrimSpace(c.Query("assigned_user_id")),
		Country:        strings.TrimSpace(c.Query("country")),
		Query:          strings.TrimSpace(c.Query("q")),
	}
	if raw := c.Query("status"); raw != "" {
		st, ok := models.ParseLeadStatus(raw)
		if !ok {
			respondError(c, h.logger, xerrors.BadRequest("unknown lead status").With("status", raw))
			return
		}
		filter.Status = st
	}
	page, size := getPaging(c)

	res, err := h.Service.List(c.Request.Context(), filter, page, size)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary      Get lead
// @Tags         Leads
// @Produce      json
// @Param        id   path      string  true  "Lead ID"
// @Success      200  {object}  models.Lead
// @Failure      404  {object}  errorResponse
// @Router       /leads/{id} [get]
func (h *LeadHandler) GetByID(c *gin.Context) {
	lead, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

// @Summary      Update lead profile
// @Description  Status is not writable here; use the status endpoint.
// @Tags         Leads
// @Accept       json
// @Produce      json
// @Param        id    path      string                true  "Lead ID"
// @Param        lead  body      services.LeadUpdate  true  "Changed fields"
// @Success      200   {object}  models.Lead
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /leads/{id} [put]
func (h *LeadHandler) Update(c *gin.Context) {
	userID, roleID := getUserAndRole(c)
	current, ok := h.modifiableLead(c, userID, roleID)
	if !ok {
		return
	}

	var body services.LeadUpdate
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, h.logger, badBody(err))
		return
	}
	// only elevated roles reassign through the profile endpoint
	if !authz.IsElevated(roleID) {
		body.AssignedUserID = nil
	}

	lead, err := h.Service.Update(c.Request.Context(), current.ID, body)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

// @Summary      Delete lead
// @Tags         Leads
// @Param        id  path  string  true  "Lead ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /leads/{id} [delete]
func (h *LeadHandler) Delete(c *gin.Context) {
	userID, roleID := getUserAndRole(c)
	current, ok := h.modifiableLead(c, userID, roleID)
	if !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), current.ID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary      Change lead status
// @Description  Applies a transition permitted by the lead status table. Rejections list the allowed next statuses.
// @Tags         Leads
// @Accept       json
// @Produce      json
// @Param        id    path      string                        true  "Lead ID"
// @Param        body  body      services.StatusChangeRequest  true  "Requested status"
// @Success      200   {object}  services.StatusChangeResult
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /leads/{id}/status [post]
func (h *LeadHandler) UpdateStatus(c *gin.Context) {
	userID, roleID := getUserAndRole(c)
	current, ok := h.modifiableLead(c, userID, roleID)
	if !ok {
		return
	}

	var req services.StatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, badBody(err))
		return
	}
	if req.UpdatedBy == nil && userID != "" {
		req.UpdatedBy = &userID
	}

	res, err := h.Service.UpdateStatus(c.Request.Context(), current.ID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary      Lead status history
// @Tags         Leads
// @Produce      json
// @Param        id   path      string  true  "Lead ID"
// @Success      200  {array}   models.LeadStatusChange
// @Failure      404  {object}  errorResponse
// @Router       /leads/{id}/history [get]
func (h *LeadHandler) History(c *gin.Context) {
	rows, err := h.Service.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// @Summary      Convert lead to account
// @Description  Creates or reactivates the account linked to the lead and marks the lead converted.
// @Tags         Leads
// @Accept       json
// @Produce      json
// @Param        id    path      string              true   "Lead ID"
// @Param        body  body      convertLeadRequest  false  "Optional notes"
// @Success      200   {object}  services.ConversionResult
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /leads/{id}/convert [post]
func (h *LeadHandler) Convert(c *gin.Context) {
	userID, roleID := getUserAndRole(c)
	current, ok := h.modifiableLead(c, userID, roleID)
	if !ok {
		return
	}

	var req convertLeadRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, h.logger, badBody(err))
			return
		}
	}

	res, err := h.Service.ConvertToAccount(c.Request.Context(), current.ID, req.Notes, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary      Assign leads in bulk
// @Description  Assigns every listed lead to one user and notifies the user about each lead whose assignee changed.
// @Tags         Leads
// @Accept       json
// @Produce      json
// @Param        body  body      services.BulkAssignRequest  true  "Lead ids and target user"
// @Success      200   {object}  services.BulkAssignResult
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /leads/bulk-assign [post]
func (h *LeadHandler) BulkAssign(c *gin.Context) {
	var req services.BulkAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, badBody(err))
		return
	}

	res, err := h.Service.BulkAssign(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
