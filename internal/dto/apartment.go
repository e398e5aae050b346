package dto

// ── floors ──

// CreateFloorRequest floor creation
type CreateFloorRequest struct {
	FloorNumber int    `json:"floor_number" binding:"min=0"`
	Description string `json:"description"  binding:"omitempty,max=500"`
}

// UpdateFloorRequest floor change
type UpdateFloorRequest struct {
	FloorNumber *int    `json:"floor_number" binding:"omitempty,min=0"`
	Description *string `json:"description"  binding:"omitempty,max=500"`
}

// FloorListRequest floor list query
type FloorListRequest struct {
	PaginationRequest
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
	Status  string `form:"status"  binding:"omitempty,oneof=Active Inactive"`
}

// FloorResponse floor
type FloorResponse struct {
	ID          string `json:"id"`
	FloorNumber int    `json:"floor_number"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

// ── apartments ──

// CreateApartmentRequest apartment creation
type CreateApartmentRequest struct {
	FloorID     string  `json:"floor_id"    binding:"required,uuid"`
	Room        string  `json:"room"        binding:"required,notblank,max=20"`
	Type        string  `json:"type"        binding:"omitempty,max=50"`
	Description string  `json:"description" binding:"omitempty,max=500"`
	Area        float64 `json:"area"        binding:"min=0"`
	Limit       int     `json:"limit"       binding:"min=0"`
}

// UpdateApartmentRequest apartment change; nil fields stay untouched
type UpdateApartmentRequest struct {
	FloorID     *string  `json:"floor_id"    binding:"omitempty,uuid"`
	Room        *string  `json:"room"        binding:"omitempty,notblank,max=20"`
	Type        *string  `json:"type"        binding:"omitempty,max=50"`
	Description *string  `json:"description" binding:"omitempty,max=500"`
	Area        *float64 `json:"area"        binding:"omitempty,min=0"`
	Limit       *int     `json:"limit"       binding:"omitempty,min=0"`
}

// ApartmentListRequest apartment list query
type ApartmentListRequest struct {
	PaginationRequest
	Keyword string `form:"keyword"  binding:"omitempty,max=50"`
	FloorID string `form:"floor_id" binding:"omitempty,uuid"`
	Status  string `form:"status"   binding:"omitempty,oneof=Active Inactive"`
}

// ApartmentResponse apartment
type ApartmentResponse struct {
	ID          string         `json:"id"`
	FloorID     string         `json:"floor_id"`
	Floor       *FloorResponse `json:"floor,omitempty"`
	Room        string         `json:"room"`
	Type        string         `json:"type,omitempty"`
	Description string         `json:"description,omitempty"`
	Area        float64        `json:"area"`
	Limit       int            `json:"limit"`
	Status      string         `json:"status"`
	CreatedAt   string         `json:"created_at"`
}

// AddResidentRequest residency creation
type AddResidentRequest struct {
	UserID          string `json:"user_id"           binding:"required,uuid"`
	RoleInApartment string `json:"role_in_apartment" binding:"required,oneof=Owner Family Tenant"`
}

// ResidentResponse resident of an apartment
type ResidentResponse struct {
	UserID          string `json:"user_id"`
	FullName        string `json:"full_name"`
	PhoneNumber     string `json:"phone_number"`
	RoleInApartment string `json:"role_in_apartment"`
}
