package wizard

type RowKind string

const (
	RowAdult RowKind = "adult"
	RowChild RowKind = "child"
)

// MaxRowsPerKind caps how many rows of one kind a single plan may hold.
const MaxRowsPerKind = 20

type Field struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// Row describes one editable person row of the wizard.
type Row struct {
	Kind     RowKind `json:"kind"`
	Position int     `json:"position"`
	Fields   []Field `json:"fields"`
}

var personFields = []Field{
	{Name: "name", Type: "string", Required: true},
	{Name: "age", Type: "integer", Required: true},
	{Name: "arrival_date", Type: "date"},
	{Name: "departure_date", Type: "date"},
	{Name: "food_preference", Type: "enum"},
	{Name: "services", Type: "set"},
	{Name: "lodging", Type: "enum"},
}

// PlanRows returns one row per requested adult followed by one per child.
// Negative counts count as zero and counts are capped at MaxRowsPerKind.
func PlanRows(adults, children int) []Row {
	adults, children = clampRows(adults), clampRows(children)
	rows := make([]Row, 0, adults+children)
	for i := 1; i <= adults; i++ {
		rows = append(rows, Row{Kind: RowAdult, Position: i, Fields: fieldsCopy()})
	}
	for i := 1; i <= children; i++ {
		rows = append(rows, Row{Kind: RowChild, Position: i, Fields: fieldsCopy()})
	}
	return rows
}

func clampRows(n int) int {
	return max(0, min(n, MaxRowsPerKind))
}

func fieldsCopy() []Field {
	return append([]Field(nil), personFields...)
}
