package router

import (
	"net/http"

	"github.com/Adamsbite/XionXWork/internal/auth"
	"github.com/Adamsbite/XionXWork/internal/marketplace"
	"github.com/Adamsbite/XionXWork/internal/middleware"
)

// New returns an http.Handler serving the API under /api/v1. Auth routes are
// public; every marketplace route requires a bearer token.
func New(authHandler *auth.Handler, mktHandler *marketplace.Handler, authSvc auth.Service) http.Handler {
	mux := http.NewServeMux()
	base := "/api/v1"

	mux.HandleFunc("POST "+base+"/auth/register", authHandler.Register)
	mux.HandleFunc("POST "+base+"/auth/login", authHandler.Login)

	authed := middleware.TokenAuth(authSvc)

	mux.Handle("POST "+base+"/jobs", authed(http.HandlerFunc(mktHandler.PostJob)))
	mux.Handle("GET "+base+"/jobs/{id}", authed(http.HandlerFunc(mktHandler.GetJob)))
	mux.Handle("GET "+base+"/jobs/{id}/proposals", authed(http.HandlerFunc(mktHandler.ListProposals)))
	mux.Handle("POST "+base+"/jobs/{id}/proposals", authed(http.HandlerFunc(mktHandler.SubmitProposal)))
	mux.Handle("POST "+base+"/jobs/{id}/accept", authed(http.HandlerFunc(mktHandler.AcceptProposal)))
	mux.Handle("POST "+base+"/jobs/{id}/complete", authed(http.HandlerFunc(mktHandler.CompleteJob)))
	mux.Handle("GET "+base+"/users/{id}/jobs", authed(http.HandlerFunc(mktHandler.ListUserJobs)))

	mux.Handle("POST "+base+"/escrow/withdraw", authed(http.HandlerFunc(mktHandler.WithdrawEscrow)))
	mux.Handle("GET "+base+"/escrow/balance", authed(http.HandlerFunc(mktHandler.EscrowBalance)))

	mux.Handle("POST "+base+"/wallet/deposit", authed(http.HandlerFunc(mktHandler.Deposit)))
	mux.Handle("GET "+base+"/wallet/balance", authed(http.HandlerFunc(mktHandler.WalletBalance)))

	return mux
}
