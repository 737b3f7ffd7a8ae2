// Package layout maps entity types to the read-only field groups their
// detail views render. Pure static data, consulted once per open view.
package layout

// Section is one titled group of read-only fields on a detail view
type Section struct {
	Title  string   `json:"title"`
	Fields []string `json:"fields"`
}

// DetailLayout is the ordered list of sections for one entity type
type DetailLayout struct {
	Sections []Section `json:"sections"`
}

var detailLayouts = map[string]DetailLayout{
	"employee": {
		Sections: []Section{
			{Title: "Profile", Fields: []string{"name", "email", "phone"}},
			{Title: "Employment", Fields: []string{"department", "position", "hire_date", "salary", "manager_id", "active"}},
		},
	},
	"product": {
		Sections: []Section{
			{Title: "Product", Fields: []string{"name", "sku", "category", "description"}},
			{Title: "Inventory & Pricing", Fields: []string{"price", "stock", "supplier_id", "available"}},
		},
	},
	"customer": {
		Sections: []Section{
			{Title: "Contact", Fields: []string{"name", "email", "phone"}},
			{Title: "Account", Fields: []string{"company", "address", "vip"}},
		},
	},
	"lead": {
		Sections: []Section{
			{Title: "Lead", Fields: []string{"name", "company", "status", "source"}},
			{Title: "Contact", Fields: []string{"email", "phone"}},
		},
	},
	"opportunity": {
		Sections: []Section{
			{Title: "Opportunity", Fields: []string{"name", "stage", "amount", "close_date"}},
			{Title: "Relations", Fields: []string{"customer_id"}},
		},
	},
	"emission": {
		Sections: []Section{
			{Title: "Emission", Fields: []string{"source", "scope", "amount_tco2e"}},
			{Title: "Reporting", Fields: []string{"period", "verified"}},
		},
	},
}

// GetDetailLayout returns the detail layout for an entity type. Unknown
// types yield an empty layout, never an error.
func GetDetailLayout(entityType string) DetailLayout {
	if l, ok := detailLayouts[entityType]; ok {
		sections := make([]Section, len(l.Sections))
		copy(sections, l.Sections)
		return DetailLayout{Sections: sections}
	}
	return DetailLayout{Sections: []Section{}}
}
