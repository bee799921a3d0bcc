package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/imagifine/internal/common"
	"github.com/dmitrijs2005/imagifine/internal/server/gateway"
	"github.com/dmitrijs2005/imagifine/internal/server/models"
)

type transactionView struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"orderId"`
	PaymentID *string   `json:"paymentId,omitempty"`
	PlanID    string    `json:"planId"`
	Amount    int64     `json:"amount"`
	Credits   int64     `json:"creditQuantity"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func transactionViewOf(t *models.Transaction) transactionView {
	return transactionView{
		ID:        t.ID,
		OrderID:   t.OrderID,
		PaymentID: t.PaymentID,
		PlanID:    t.PlanID,
		Amount:    t.Amount,
		Credits:   t.Credits,
		Status:    t.Status,
		CreatedAt: t.CreatedAt,
	}
}

type paymentView struct {
	ID       string `json:"id"`
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	Method   string `json:"method"`
}

func paymentViewOf(p *gateway.Payment) *paymentView {
	if p == nil {
		return nil
	}
	return &paymentView{
		ID:       p.ID,
		OrderID:  p.OrderID,
		Amount:   p.Amount,
		Currency: p.Currency,
		Status:   p.Status,
		Method:   p.Method,
	}
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlanID string `json:"planId"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	res, err := s.credits.CreateOrder(r.Context(), userIDFromContext(r.Context()), req.PlanID)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"orderId":        res.OrderID,
		"amount":         res.Amount,
		"creditQuantity": res.Credits,
	})
}

func (s *Server) handleVerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID   string `json:"orderId"`
		PaymentID string `json:"paymentId"`
		Signature string `json:"signature"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		s.writeError(r.Context(), w, common.ErrorValidation)
		return
	}

	res, err := s.credits.VerifyPayment(r.Context(), req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"credits":       res.Credits,
		"transactionId": res.TransactionID,
	})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	list, err := s.credits.ListTransactions(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	views := make([]transactionView, 0, len(list))
	for _, t := range list {
		views = append(views, transactionViewOf(t))
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": views})
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	detail, err := s.credits.GetTransaction(r.Context(), userIDFromContext(r.Context()), id)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"transaction": transactionViewOf(detail.Transaction),
		"payment":     paymentViewOf(detail.Payment),
	})
}

// handleOverwriteCredits is the administrative balance overwrite. It is
// reachable only through the admin gate.
func (s *Server) handleOverwriteCredits(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID  string `json:"userId"`
		Credits int64  `json:"credits"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	// default to the caller's own account when no target is named
	target := req.UserID
	if target == "" {
		target = userIDFromContext(r.Context())
	}

	credits, err := s.credits.OverwriteCredits(r.Context(), target, req.Credits)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"credits": credits,
	})
}
