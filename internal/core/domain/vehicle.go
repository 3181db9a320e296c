package domain

// Vehicle is a vehicle register entry joined to orders by plate.
type Vehicle struct {
	Plate    string `json:"plate"`
	Make     string `json:"make,omitempty"`
	Model    string `json:"model,omitempty"`
	Year     int    `json:"year,omitempty"`
	Category string `json:"category,omitempty"`
	Fuel     string `json:"fuel,omitempty"`
}

// BackfillCategory sets the category when it is empty. It never overwrites
// an existing value and reports whether it changed anything.
func (v *Vehicle) BackfillCategory(category string) bool {
	if v == nil || v.Category != "" || category == "" {
		return false
	}
	v.Category = category
	return true
}
