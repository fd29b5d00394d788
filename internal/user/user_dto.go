package user

type CreateUserRequest struct {
	FullName      string  `json:"full_name" binding:"required"`
	Email         string  `json:"email" binding:"required,email"`
	Role          string  `json:"role" binding:"required,oneof=REQUESTER MANAGER DRIVER DISPATCHER"`
	DepartmentID  *string `json:"department_id"`
	ManagerID     *string `json:"manager_id"`
	PositionLevel int     `json:"position_level" binding:"omitempty,min=1"`
}

type AssignManagerRequest struct {
	ManagerID string `json:"manager_id" binding:"required,uuid"`
}

type UserResponse struct {
	ID            string  `json:"id"`
	FullName      string  `json:"full_name"`
	Email         string  `json:"email"`
	Role          string  `json:"role"`
	DepartmentID  *string `json:"department_id,omitempty"`
	ManagerID     *string `json:"manager_id,omitempty"`
	ManagerName   string  `json:"manager_name,omitempty"`
	PositionLevel int     `json:"position_level"`
	IsActive      bool    `json:"is_active"`
}
