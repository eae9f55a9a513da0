package request

type CreateAddress struct {
	Street   string `validate:"required,max=255" json:"street"`
	City     string `validate:"required,max=255" json:"city"`
	Province string `validate:"required,max=255" json:"province"`
	Phone    string `validate:"omitempty,max=20" json:"phone"`
}

type UpdateAddress struct {
	Street   string `validate:"required,max=255" json:"street"`
	City     string `validate:"required,max=255" json:"city"`
	Province string `validate:"required,max=255" json:"province"`
	Phone    string `validate:"omitempty,max=20" json:"phone"`
}
