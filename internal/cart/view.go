package cart

import "fmt"

const (
	EmptyMessage     = "Your cart is empty"
	NoDescription    = "No description"
	PlaceholderImage = "./assets/img/placeholder.jpg"
	currencySymbol   = "$"
)

type Intent string

const (
	IntentIncrease Intent = "increase"
	IntentDecrease Intent = "decrease"
	IntentRemove   Intent = "remove"
)

// IntentFunc maps a user intent on a line to whatever the UI layer uses to
// trigger it (a URL, a command name). nil leaves the targets empty.
type IntentFunc func(intent Intent, id string) string

type Badge struct {
	Count   int  `json:"count"`
	Visible bool `json:"visible"`
}

type Line struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
	UnitPrice   string `json:"unit_price"`
	Quantity    int    `json:"quantity"`
	LineTotal   string `json:"line_total"`

	Increase string `json:"increase,omitempty"`
	Decrease string `json:"decrease,omitempty"`
	Remove   string `json:"remove,omitempty"`
}

type View struct {
	Empty       bool    `json:"empty"`
	Message     string  `json:"message,omitempty"`
	ShowSummary bool    `json:"show_summary"`
	Lines       []Line  `json:"lines"`
	Total       string  `json:"total"`
	TotalValue  float64 `json:"total_value"`
	Badge       Badge   `json:"badge"`
	Warning     string  `json:"warning,omitempty"`
}

func BadgeFor(snap Snapshot) Badge {
	n := snap.Count()
	return Badge{Count: n, Visible: n > 0}
}

// Render is a pure function of the snapshot.
func Render(snap Snapshot, intents IntentFunc) View {
	v := View{
		Lines: []Line{},
		Badge: BadgeFor(snap),
	}
	if snap.Degraded {
		v.Warning = DegradedNotice
	}

	if len(snap.Items) == 0 {
		v.Empty = true
		v.Message = EmptyMessage
		v.Total = money(0)
		return v
	}

	v.ShowSummary = true
	v.Lines = make([]Line, 0, len(snap.Items))

	var total float64
	for _, it := range snap.Items {
		lt := it.LineTotal()
		total += lt

		l := Line{
			ID:          it.ID,
			Name:        it.Name,
			Description: orDefault(it.Description, NoDescription),
			Image:       orDefault(it.Image, PlaceholderImage),
			UnitPrice:   money(it.Price),
			Quantity:    it.Qty(),
			LineTotal:   money(lt),
		}
		if intents != nil {
			l.Increase = intents(IntentIncrease, it.ID)
			l.Decrease = intents(IntentDecrease, it.ID)
			l.Remove = intents(IntentRemove, it.ID)
		}
		v.Lines = append(v.Lines, l)
	}

	v.Total = money(total)
	v.TotalValue = total
	return v
}

func money(v float64) string {
	return fmt.Sprintf("%s%.2f", currencySymbol, v)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
