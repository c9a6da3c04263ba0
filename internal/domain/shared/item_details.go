package shared

// ItemDetails identifies a luxury item. Products and buying list items share it.
type ItemDetails struct {
	Brand     string `json:"brand"`
	Model     string `json:"model"`
	Category  string `json:"category"`
	Condition string `json:"condition"`
	Colour    string `json:"colour"`
}

// Validate checks the fields every item must carry.
func (d ItemDetails) Validate(errs *ValidationErrors) {
	errs.Required("brand", d.Brand)
	errs.Required("model", d.Model)
}
