package inbound

import (
	"github.com/taskgrid/taskgrid/internal/identity/usecase"
	"github.com/taskgrid/taskgrid/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for the OTP-gated auth flows and the
// admin user directory.
type HTTPEndpoint struct {
	uc uc
}

// Register starts a signup and mails a verification code.
// @Summary Start registration
// @Description Validates the signup form, parks it as a pending ticket and emails a one-time code. No account is created yet.
// @Tags Identity, Authentication
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Signup payload"
// @Success 200 {object} router.successResponse{data=RegisterResponse} "Code sent"
// @Failure 409 {object} router.errorResponse "Email or username already registered"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/register [post]
func (h *HTTPEndpoint) Register(r *router.Request) (any, error) {
	var req RegisterRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Register(r.Context(), usecase.RegisterInput{
		SessionID:       router.GetSessionID(r.Context()),
		Username:        req.Username,
		Email:           req.Email,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Role:            req.Role,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		return nil, err
	}

	return RegisterResponse{
		Email:            resp.Email,
		OtpExpiresInSecs: resp.OtpExpiresInSecs,
	}, nil
}

// RegisterVerify completes a signup with the mailed code.
// @Summary Verify registration code
// @Description Checks the one-time code against the pending registration and creates the account on a match.
// @Tags Identity, Authentication
// @Accept json
// @Produce json
// @Param request body VerifyOTPRequest true "Verification payload"
// @Success 200 {object} router.successResponse{data=RegisterVerifyResponse} "Account created"
// @Failure 401 {object} router.errorResponse "Wrong, expired or missing code"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/register/verify [post]
func (h *HTTPEndpoint) RegisterVerify(r *router.Request) (any, error) {
	var req VerifyOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.RegisterVerify(r.Context(), usecase.RegisterVerifyInput{
		SessionID: router.GetSessionID(r.Context()),
		Code:      req.Code,
	})
	if err != nil {
		return nil, err
	}

	return RegisterVerifyResponse{RedirectTo: resp.RedirectTo}, nil
}

// Login checks credentials and mails a verification code.
// @Summary Authenticate user
// @Description Validates credentials and emails a one-time code. Tokens are only issued after the code is verified.
// @Tags Identity, Authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login payload"
// @Success 200 {object} router.successResponse{data=LoginResponse} "Code sent"
// @Failure 401 {object} router.errorResponse "Invalid credentials"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/login [post]
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	var req LoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Login(r.Context(), usecase.LoginInput{
		SessionID: router.GetSessionID(r.Context()),
		Username:  req.Username,
		Password:  req.Password,
		Role:      req.Role,
	})
	if err != nil {
		return nil, err
	}

	return LoginResponse{
		Email:            resp.Email,
		OtpExpiresInSecs: resp.OtpExpiresInSecs,
	}, nil
}

// LoginVerify exchanges the mailed code for tokens.
// @Summary Complete login
// @Description Verifies the one-time code and returns access/refresh tokens plus the role-based dashboard path.
// @Tags Identity, Authentication
// @Accept json
// @Produce json
// @Param request body VerifyOTPRequest true "Verification payload"
// @Success 200 {object} router.successResponse{data=LoginVerifyResponse} "Authentication result"
// @Failure 401 {object} router.errorResponse "Wrong, expired or missing code"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/login/verify [post]
func (h *HTTPEndpoint) LoginVerify(r *router.Request) (any, error) {
	var req VerifyOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.LoginVerify(r.Context(), usecase.LoginVerifyInput{
		SessionID: router.GetSessionID(r.Context()),
		Code:      req.Code,
	})
	if err != nil {
		return nil, err
	}

	return LoginVerifyResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		RedirectTo:   resp.RedirectTo,
	}, nil
}

// ResendOTP mails a fresh code for the session's pending verification.
// @Summary Resend verification code
// @Description Regenerates and mails the code for the pending registration or login. Rejected inside the cooldown window.
// @Tags Identity, Authentication
// @Produce json
// @Success 200 {object} router.successResponse{data=ResendOTPResponse} "Code sent"
// @Failure 401 {object} router.errorResponse "No verification in progress"
// @Failure 429 {object} router.errorResponse "Requested too soon"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/otp/resend [post]
func (h *HTTPEndpoint) ResendOTP(r *router.Request) (any, error) {
	resp, err := h.uc.ResendOTP(r.Context(), usecase.ResendOTPInput{
		SessionID: router.GetSessionID(r.Context()),
	})
	if err != nil {
		return nil, err
	}

	return ResendOTPResponse{
		Email:            resp.Email,
		OtpExpiresInSecs: resp.OtpExpiresInSecs,
	}, nil
}

// Logout revokes the presented refresh token.
func (h *HTTPEndpoint) Logout(r *router.Request) (any, error) {
	var req LogoutRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.Logout(r.Context(), usecase.LogoutInput{RefreshToken: req.RefreshToken}); err != nil {
		return nil, err
	}

	return nil, nil
}

// RefreshToken rotates a refresh token and issues a new access token.
func (h *HTTPEndpoint) RefreshToken(r *router.Request) (any, error) {
	var req RefreshTokenRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.RefreshToken(r.Context(), usecase.RefreshTokenInput{RefreshToken: req.RefreshToken})
	if err != nil {
		return nil, err
	}

	return RefreshTokenResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}, nil
}

// UserList returns the admin user directory.
func (h *HTTPEndpoint) UserList(r *router.Request) (any, error) {
	page, _ := r.GetQueryInt32("page")
	limit, _ := r.GetQueryInt32("limit")

	resp, err := h.uc.UserList(r.Context(), usecase.UserListInput{
		Search: r.GetQuery("search"),
		Role:   r.GetQuery("role"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}

	out := UserListResponse{Total: resp.Total, Users: make([]UserResponse, 0, len(resp.Users))}
	for _, u := range resp.Users {
		out.Users = append(out.Users, UserResponse{
			ID:        u.ID,
			Username:  u.Username,
			Email:     u.Email,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Role:      u.Role,
		})
	}

	return out, nil
}

// UserDetail returns a single user by id.
func (h *HTTPEndpoint) UserDetail(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.UserDetail(r.Context(), usecase.UserDetailInput{ID: id})
	if err != nil {
		return nil, err
	}

	return UserResponse{
		ID:        resp.ID,
		Username:  resp.Username,
		Email:     resp.Email,
		FirstName: resp.FirstName,
		LastName:  resp.LastName,
		Role:      resp.Role,
	}, nil
}

// UserUpdate edits a user's directory fields.
func (h *HTTPEndpoint) UserUpdate(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	var req UserUpdateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.UserUpdate(r.Context(), usecase.UserUpdateInput{
		ID:        id,
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
	}); err != nil {
		return nil, err
	}

	return nil, nil
}

// UserDelete soft-deletes a user.
func (h *HTTPEndpoint) UserDelete(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	if err := h.uc.UserDelete(r.Context(), usecase.UserDeleteInput{ID: id}); err != nil {
		return nil, err
	}

	return nil, nil
}
