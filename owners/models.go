// Package owners manages car owners.
package owners

import "github.com/axdbertuol/carford/cars"

// Owner holds up to cars.MaxPerOwner cars. Cars is never nil.
type Owner struct {
	ID              int64      `db:"id" json:"id" example:"1"`
	Name            string     `db:"name" json:"name" example:"Ada Lovelace"`
	SaleOpportunity bool       `db:"sale_opportunity" json:"sale_opportunity" example:"true"`
	Cars            []cars.Car `db:"-" json:"cars"`
}

// OwnerRequest is the body of owner create and update requests. An omitted
// sale_opportunity defaults to true on create and is left alone on update.
type OwnerRequest struct {
	Name            string `json:"name" validate:"required,min=1,max=100" example:"Ada Lovelace"`
	SaleOpportunity *bool  `json:"sale_opportunity,omitempty" example:"true"`
}

// ListResponse wraps a list of owners.
type ListResponse struct {
	Data []Owner `json:"data"`
}
