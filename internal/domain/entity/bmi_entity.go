package entity

import "time"

// Ownership tells which owner column a bmi table carries.
type Ownership int

const (
	// OwnedByName is the public variant: records carry a free-text name.
	OwnedByName Ownership = iota
	// OwnedByUser is the authenticated variant: records reference user.id.
	OwnedByUser
)

func (o Ownership) String() string {
	if o == OwnedByUser {
		return "user"
	}
	return "name"
}

// BMI is one immutable measurement. Value and Status are caller supplied
// and never recomputed.
type BMI struct {
	ID         int64
	Weight     int
	Height     int
	Value      float64
	Status     string
	RecordedAt time.Time

	Name   string
	UserID int64
}

// BMIView is the JSON shape of a record. Name is only set by the public variant.
type BMIView struct {
	ID      int64     `json:"id"`
	Weight  int       `json:"weight"`
	Height  int       `json:"height"`
	BMI     float64   `json:"bmi"`
	Status  string    `json:"status"`
	BMIDate time.Time `json:"bmi_date"`
	Name    string    `json:"name,omitempty"`
}

func (b *BMI) View() BMIView {
	return BMIView{
		ID:      b.ID,
		Weight:  b.Weight,
		Height:  b.Height,
		BMI:     b.Value,
		Status:  b.Status,
		BMIDate: b.RecordedAt,
		Name:    b.Name,
	}
}

// BMIViews projects a list, never returning nil so it encodes as [].
func BMIViews(list []BMI) []BMIView {
	out := make([]BMIView, 0, len(list))
	for i := range list {
		out = append(out, list[i].View())
	}
	return out
}
