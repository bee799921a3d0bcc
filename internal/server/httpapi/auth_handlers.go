package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/imagifine/internal/common"
	"github.com/dmitrijs2005/imagifine/internal/server/models"
)

// userView is the account representation returned to clients. The
// credential hash and OTP state never leave the server.
type userView struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Credits    int64  `json:"credits"`
	IsVerified bool   `json:"isVerified"`
}

func viewOf(u *models.User) userView {
	return userView{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		Credits:    u.Credits,
		IsVerified: u.IsVerified,
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	res, err := s.users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	if res.Resent {
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "verification code resent",
			"userId":  res.UserID,
		})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "verification code sent",
		"userId":  res.UserID,
	})
}

func (s *Server) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
		OTP    string `json:"otp"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	res, err := s.users.VerifyOTP(r.Context(), req.UserID, req.OTP)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "account verified",
		"token":        res.Tokens.AccessToken,
		"refreshToken": res.Tokens.RefreshToken,
		"user":         viewOf(res.User),
	})
}

func (s *Server) handleResendOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	if err := s.users.ResendOTP(r.Context(), req.UserID); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "verification code resent"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		s.writeError(r.Context(), w, common.ErrorValidation)
		return
	}

	res, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token":        res.Tokens.AccessToken,
		"refreshToken": res.Tokens.RefreshToken,
		"user":         viewOf(res.User),
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	if req.RefreshToken == "" {
		s.writeError(r.Context(), w, common.ErrorValidation)
		return
	}

	pair, err := s.users.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"token":        pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.GetUser(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": viewOf(user)})
}
