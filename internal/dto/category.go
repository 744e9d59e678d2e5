package dto

type CreateCategoryRequest struct {
	Name  string  `json:"name" validate:"required,max=60"`
	Icon  *string `json:"icon" validate:"omitempty,max=16"`
	Color *string `json:"color" validate:"omitempty,hexcolor6"`
	Type  string  `json:"type" validate:"required,oneof=expense income"`
}

type CategoryResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Icon      *string `json:"icon"`
	Color     *string `json:"color"`
	Type      string  `json:"type"`
	IsDefault bool    `json:"is_default"`
}
