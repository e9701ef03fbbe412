package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/expensehub/internal/domain/user"
	"github.com/geocoder89/expensehub/internal/http/middlewares"
	"github.com/geocoder89/expensehub/internal/observability"
	"github.com/geocoder89/expensehub/internal/service"
	"github.com/gin-gonic/gin"
)

const authTimeout = 3 * time.Second

type AuthService interface {
	Register(ctx context.Context, email, password string) (service.Session, error)
	Login(ctx context.Context, email, password string) (service.Session, error)
	SignInFederated(ctx context.Context, assertion string) (service.Session, error)
	Me(ctx context.Context, userID string) (user.Public, error)
}

type AuthHandler struct {
	svc  AuthService
	prom *observability.Prom
	log  *slog.Logger
}

func NewAuthHandler(svc AuthService, prom *observability.Prom, log *slog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, prom: prom, log: log}
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), authTimeout)
	defer cancel()

	sess, err := h.svc.Register(cctx, req.Email, req.Password)
	h.prom.ObserveAuth("register", err)

	if err != nil {
		RespondAppError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusCreated, sess)
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), authTimeout)
	defer cancel()

	sess, err := h.svc.Login(cctx, req.Email, req.Password)
	h.prom.ObserveAuth("login", err)

	if err != nil {
		RespondAppError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, sess)
}

func (h *AuthHandler) Google(ctx *gin.Context) {
	var req user.GoogleSignInRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// the provider's key fetch can be slow on a cold cache
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*authTimeout)
	defer cancel()

	sess, err := h.svc.SignInFederated(cctx, req.IDToken)
	h.prom.ObserveAuth("google", err)

	if err != nil {
		RespondAppError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, sess)
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	uid, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Unauthorized")
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), authTimeout)
	defer cancel()

	u, err := h.svc.Me(cctx, uid)
	if err != nil {
		RespondAppError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": u})
}

var _ AuthService = (*service.AuthService)(nil)
