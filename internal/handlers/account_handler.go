package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"irisai/internal/models"
	"irisai/internal/services"
)

type AccountHandler struct {
	Service *services.AccountService
	logger  *zap.Logger
}

func NewAccountHandler(service *services.AccountService, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{Service: service, logger: logger}
}

// @Summary      Create account
// @Tags         Accounts
// @Accept       json
// @Produce      json
// @Param        account  body      models.Account  true  "Account"
// @Success      201      {object}  models.Account
// @Failure      400      {object}  errorResponse
// @Failure      409      {object}  errorResponse
// @Router       /accounts [post]
func (h *AccountHandler) Create(c *gin.Context) {
	var account models.Account
	if err := c.ShouldBindJSON(&account); err != nil {
		respondError(c, h.logger, badBody(err))
		return
	}
	if err := h.Service.Create(c.Request.Context(), &account); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, account)
}

// @Summary      List accounts
// @Tags         Accounts
// @Produce      json
// @Param        status  query  string  false  "Active or Inactive"
// @Param        type    query  string  false  "Client or Channel Partner"
// @Param        q       query  string  false  "Search name or contact email"
// @Param        page    query  int     false  "Page (default 1)"
// @Param        size    query  int     false  "Page size (default 50, max 200)"
// @Success      200  {object}  map[string]interface{}
// @Router       /accounts [get]
func (h *AccountHandler) List(c *gin.Context) {
	filter := models.AccountFilter{
		Status: models.AccountStatus(strings.TrimSpace(c.Query("status"))),
		Type:   models.AccountType(strings.TrimSpace(c.Query("type"))),
		Query:  strings.TrimSpace(c.Query("q")),
	}
	page, size := getPaging(c)

	res, err := h.Service.List(c.Request.Context(), filter, page, size)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary      Get account
// @Tags         Accounts
// @Produce      json
// @Param        id   path      string  true  "Account ID"
// @Success      200  {object}  models.Account
// @Failure      404  {object}  errorResponse
// @Router       /accounts/{id} [get]
func (h *AccountHandler) GetByID(c *gin.Context) {
	account, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

// @Summary      Update account
// @Tags         Accounts
// @Accept       json
// @Produce      json
// @Param        id       path      string                  true  "Account ID"
// @Param        account  body      services.AccountUpdate  true  "Changed fields"
// @Success      200      {object}  models.Account
// @Failure      400      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Failure      409      {object}  errorResponse
// @Router       /accounts/{id} [put]
func (h *AccountHandler) Update(c *gin.Context) {
	var body services.AccountUpdate
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, h.logger, badBody(err))
		return
	}
	account, err := h.Service.Update(c.Request.Context(), c.Param("id"), body)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

// @Summary      Delete account
// @Description  A lead the account was converted from is reset to New.
// @Tags         Accounts
// @Param        id  path  string  true  "Account ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /accounts/{id} [delete]
func (h *AccountHandler) Delete(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	if err := h.Service.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary      Reverse lead conversion
// @Description  Deactivates the account and resets its originating lead to New.
// @Tags         Accounts
// @Produce      json
// @Param        id   path      string  true  "Account ID"
// @Success      200  {object}  services.ReversalResult
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /accounts/{id}/reverse [post]
func (h *AccountHandler) Reverse(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	res, err := h.Service.ReverseConversion(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
