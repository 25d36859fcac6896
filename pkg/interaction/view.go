package interaction

// View is the render target of a mounted network. Every panel is optional;
// rendering into a missing panel is a no-op.
type View struct {
	Canvas  *Canvas  `json:"canvas,omitempty"`
	Sidebar *Sidebar `json:"sidebar,omitempty"`
	Tooltip *Tooltip `json:"tooltip,omitempty"`
	Status  *Status  `json:"status,omitempty"`
}

// NewView returns a view with every panel present.
func NewView() *View {
	return &View{
		Canvas:  &Canvas{},
		Sidebar: &Sidebar{},
		Tooltip: &Tooltip{},
		Status:  &Status{},
	}
}

// Canvas is the drawn graph.
type Canvas struct {
	Width      float64      `json:"width"`
	Height     float64      `json:"height"`
	Transform  Transform    `json:"transform"`
	ShowLabels bool         `json:"showLabels"`
	NodeScale  float64      `json:"nodeScale"`
	Nodes      []CanvasNode `json:"nodes"`
	Links      []CanvasLink `json:"links"`
	Tick       int          `json:"tick"`
}

// CanvasNode is a drawn node with its label.
type CanvasNode struct {
	Name   string     `json:"name"`
	X      float64    `json:"x"`
	Y      float64    `json:"y"`
	Radius float64    `json:"radius"`
	Fill   string     `json:"fill"`
	Style  NodeStyle  `json:"style"`
	Label  LabelStyle `json:"label"`
}

// CanvasLink is a drawn link between two nodes.
type CanvasLink struct {
	Source string    `json:"source"`
	Target string    `json:"target"`
	Weight int       `json:"weight"`
	X1     float64   `json:"x1"`
	Y1     float64   `json:"y1"`
	X2     float64   `json:"x2"`
	Y2     float64   `json:"y2"`
	Style  LinkStyle `json:"style"`
}

// SidebarMode tells which sidebar panel is shown.
type SidebarMode string

const (
	SidebarList   SidebarMode = "list"
	SidebarDetail SidebarMode = "detail"
)

// Sidebar shows either the character list or one character's details.
type Sidebar struct {
	Mode   SidebarMode  `json:"mode"`
	List   []ListItem   `json:"list"`
	Detail *DetailPanel `json:"detail,omitempty"`
}

// Status is the passive message area of the view.
type Status struct {
	NoData  bool   `json:"noData"`
	Message string `json:"message,omitempty"`
}

const NoDataMessage = "No character data available."
