package present

// Level is the badge of a project maturity level.
type Level struct {
	Name  string
	Label string
	Color string
	Icon  string
}

// Levels holds the known project levels keyed by their indexed value.
var Levels = map[string]Level{
	"flagship":   {Name: "flagship", Label: "Flagship", Color: "#38a047", Icon: "fa-solid fa-flag"},
	"production": {Name: "production", Label: "Production", Color: "#1d7bd7", Icon: "fa-solid fa-rocket"},
	"lab":        {Name: "lab", Label: "Lab", Color: "#e6a817", Icon: "fa-solid fa-flask"},
	"incubator":  {Name: "incubator", Label: "Incubator", Color: "#a9a9a9", Icon: "fa-solid fa-seedling"},
	"other":      {Name: "other", Label: "Other", Color: "#6c757d", Icon: "fa-solid fa-circle-question"},
}

// LevelOf returns the badge for name, or nil when the record has no known level.
func LevelOf(name string) *Level {
	l, ok := Levels[name]
	if !ok {
		return nil
	}
	return &l
}
