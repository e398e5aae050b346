package dto

// ── auth ──

// LoginRequest login credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required,notblank"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest refresh token exchange
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest optional refresh token revoked together with the access token
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse issued token pair
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // access token lifetime in seconds
	User         UserResponse `json:"user"`
}

// ChangePasswordRequest password change of the current user
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=64"`
}

// DeviceTokenRequest push device registration
type DeviceTokenRequest struct {
	DeviceToken string `json:"device_token" binding:"required,notblank,max=500"`
	Platform    string `json:"platform"     binding:"required,oneof=android ios web"`
}

// ── users ──

// CreateUserRequest account creation by an administrator
type CreateUserRequest struct {
	FirstName   string `json:"first_name"   binding:"required,notblank,max=100"`
	LastName    string `json:"last_name"    binding:"required,notblank,max=100"`
	Email       string `json:"email"        binding:"required,email"`
	PhoneNumber string `json:"phone_number" binding:"required,min=9,max=20"`
	Role        string `json:"role"         binding:"required,oneof=Admin Manager Receptionist TechnicianLead Technician Resident"`
}

// UpdateUserRequest profile change; nil fields stay untouched
type UpdateUserRequest struct {
	FirstName   *string `json:"first_name"   binding:"omitempty,notblank,max=100"`
	LastName    *string `json:"last_name"    binding:"omitempty,notblank,max=100"`
	Email       *string `json:"email"        binding:"omitempty,email"`
	PhoneNumber *string `json:"phone_number" binding:"omitempty,min=9,max=20"`
}

// UserListRequest user list query
type UserListRequest struct {
	PaginationRequest
	Role    string `form:"role"    binding:"omitempty,oneof=Admin Manager Receptionist TechnicianLead Technician Resident"`
	Status  string `form:"status"  binding:"omitempty,oneof=Active Inactive"`
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// UserResponse user without credentials
type UserResponse struct {
	ID          string  `json:"id"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	FullName    string  `json:"full_name"`
	Email       string  `json:"email"`
	PhoneNumber string  `json:"phone_number"`
	Role        string  `json:"role"`
	Status      string  `json:"status"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// CreateUserResponse created user with its initial password
type CreateUserResponse struct {
	User            UserResponse `json:"user"`
	Username        string       `json:"username"`
	InitialPassword string       `json:"initial_password"`
}

// ResetPasswordResponse temporary password issued by an administrator
type ResetPasswordResponse struct {
	UserID       string `json:"user_id"`
	TempPassword string `json:"temp_password"`
}
