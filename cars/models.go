// Package cars manages cars and enforces the per-owner car limit.
package cars

// MaxPerOwner is the most cars a single owner may hold.
const MaxPerOwner = 3

// Accepted colors and models. The database enums car_color and car_model hold the same values.
const (
	ColorYellow = "yellow"
	ColorBlue   = "blue"
	ColorGray   = "gray"

	ModelHatch       = "hatch"
	ModelSedan       = "sedan"
	ModelConvertible = "convertible"
)

// Car belongs to exactly one owner.
type Car struct {
	ID      int64  `db:"id" json:"id" example:"1"`
	OwnerID int64  `db:"owner_id" json:"owner_id" example:"1"`
	Color   string `db:"color" json:"color" enums:"yellow,blue,gray" example:"blue"`
	Model   string `db:"model" json:"model" enums:"hatch,sedan,convertible" example:"sedan"`
}

// CarRequest is the body of car create and update requests.
type CarRequest struct {
	OwnerID int64  `json:"owner_id" validate:"required,gt=0" example:"1"`
	Color   string `json:"color" validate:"required,oneof=yellow blue gray" example:"blue"`
	Model   string `json:"model" validate:"required,oneof=hatch sedan convertible" example:"sedan"`
}

// ListResponse wraps a list of cars.
type ListResponse struct {
	Data []Car `json:"data"`
}
