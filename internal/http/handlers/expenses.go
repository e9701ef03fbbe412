package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/geocoder89/expensehub/internal/domain/expense"
	"github.com/geocoder89/expensehub/internal/http/middlewares"
	"github.com/geocoder89/expensehub/internal/service"
	"github.com/gin-gonic/gin"
)

const storeTimeout = 3 * time.Second

type ExpenseService interface {
	List(ctx context.Context, uid string, filter expense.ListFilter) ([]expense.Expense, error)
	Create(ctx context.Context, uid string, in expense.Input) (expense.Expense, error)
	Update(ctx context.Context, uid, id string, in expense.Input) (expense.Expense, error)
	Delete(ctx context.Context, uid, id string) error
}

type ExpensesHandler struct {
	svc ExpenseService
	log *slog.Logger
}

func NewExpensesHandler(svc ExpenseService, log *slog.Logger) *ExpensesHandler {
	return &ExpensesHandler{svc: svc, log: log}
}

func (h *ExpensesHandler) ListExpenses(ctx *gin.Context) {
	uid, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Unauthorized")
		return
	}

	filter, fieldErrs := parseListFilter(ctx)
	if len(fieldErrs) > 0 {
		RespondBadRequest(ctx, "Invalid query parameters", gin.H{"fields": fieldErrs})
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	items, err := h.svc.List(cctx, uid, filter)
	if err != nil {
		RespondAppError(ctx, h.log, err)
		return
	}

	if items == nil {
		items = []expense.Expense{}
	}

	RespondJSONWithETag(ctx, http.StatusOK, items)
}

func (h *ExpensesHandler) CreateExpense(ctx *gin.Context) {
	uid, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Unauthorized")
		return
	}

	var req expense.Input

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	created, err := h.svc.Create(cctx, uid, req)
	if err != nil {
		RespondAppError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

func (h *ExpensesHandler) UpdateExpense(ctx *gin.Context) {
	uid, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Unauthorized")
		return
	}

	id := ctx.Param("id")

	var req expense.Input

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	updated, err := h.svc.Update(cctx, uid, id, req)
	if err != nil {
		RespondAppError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

func (h *ExpensesHandler) DeleteExpense(ctx *gin.Context) {
	uid, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Unauthorized")
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	if err := h.svc.Delete(cctx, uid, ctx.Param("id")); err != nil {
		RespondAppError(ctx, h.log, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// parseListFilter reads month, year and limit. The month filter applies only
// when both month and year are given.
func parseListFilter(ctx *gin.Context) (expense.ListFilter, []FieldError) {
	var (
		filter expense.ListFilter
		errs   []FieldError
	)

	monthRaw := strings.TrimSpace(ctx.Query("month"))
	yearRaw := strings.TrimSpace(ctx.Query("year"))

	if monthRaw != "" && yearRaw != "" {
		month, err := strconv.Atoi(monthRaw)
		if err != nil || month < 1 || month > 12 {
			errs = append(errs, FieldError{Field: "month", Rule: "range", Param: "1-12", Message: "must be an integer between 1 and 12"})
		}

		year, err := strconv.Atoi(yearRaw)
		if err != nil || year < 1 || year > 9999 {
			errs = append(errs, FieldError{Field: "year", Rule: "range", Param: "1-9999", Message: "must be an integer between 1 and 9999"})
		}

		filter.Year = year
		filter.Month = time.Month(month)
	}

	if limitRaw := strings.TrimSpace(ctx.Query("limit")); limitRaw != "" {
		limit, err := strconv.Atoi(limitRaw)
		if err != nil || limit < 1 {
			errs = append(errs, FieldError{Field: "limit", Rule: "min", Param: "1", Message: "must be a positive integer"})
		}
		filter.Limit = limit
	}

	return filter, errs
}

var _ ExpenseService = (*service.LedgerService)(nil)
